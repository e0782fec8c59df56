package native

// Member names shared by the structures below.
const (
	fCbStruct           = "cbStruct"
	fColumnID           = "columnid"
	fColtyp             = "coltyp"
	fCountry            = "wCountry"
	fLangid             = "langid"
	fCP                 = "cp"
	fCollate            = "wCollate"
	fCbMax              = "cbMax"
	fGrbit              = "grbit"
	fColumnName         = "szColumnName"
	fIndexName          = "szIndexName"
	fKey                = "szKey"
	fCbKey              = "cbKey"
	fDensity            = "ulDensity"
	fLcid               = "lcid"
	fErr                = "err"
	fVarSegMac          = "cbVarSegMac"
	fConditionalColumns = "rgconditionalcolumn"
	fConditionalCount   = "cConditionalColumn"
	fData               = "pvData"
	fCbData             = "cbData"
	fLongValueOffset    = "ibLongValue"
	fItagSequence       = "itagSequence"
	fTableID            = "tableid"
	fTagCount           = "ctagSequence"
	fTagSequences       = "rgtagSequence"
	fValueCount         = "cEnumColumnValue"
	fValues             = "rgEnumColumnValue"
	fRecordCount        = "cRecord"
	fBookmarkColumn     = "columnidBookmark"
)

// Catalog holds every structure shape of one Layout.
type Catalog struct {
	Layout Layout

	ColumnDef           *Shape // JET_COLUMNDEF
	ConditionalColumn   *Shape // JET_CONDITIONALCOLUMN
	IndexCreate         *Shape // JET_INDEXCREATE, plain variant
	IndexCreateExtended *Shape // JET_INDEXCREATE with key-size limit and conditional columns
	SetColumn           *Shape // JET_SETCOLUMN
	IndexRange          *Shape // JET_INDEXRANGE
	EnumColumnID        *Shape // JET_ENUMCOLUMNID
	EnumColumnValue     *Shape // JET_ENUMCOLUMNVALUE
	EnumColumn          *Shape // JET_ENUMCOLUMN
	RecordList          *Shape // JET_RECORDLIST
}

// Shapes lists the catalog in a stable order.
func (c *Catalog) Shapes() []*Shape {
	return []*Shape{
		c.ColumnDef, c.ConditionalColumn, c.IndexCreate, c.IndexCreateExtended, c.SetColumn,
		c.IndexRange, c.EnumColumnID, c.EnumColumnValue, c.EnumColumn, c.RecordList,
	}
}

var (
	catalog32 = buildCatalog(4)
	catalog64 = buildCatalog(8)
)

func buildCatalog(ptr int) *Catalog {
	indexCreate := []fieldDecl{
		{fCbStruct, U32},
		{fIndexName, Ptr},
		{fKey, Ptr},
		{fCbKey, U32},
		{fGrbit, U32},
		{fDensity, U32},
		{fLcid, U32},
		{fErr, I32},
	}
	indexCreateExtended := append(append([]fieldDecl{}, indexCreate...),
		fieldDecl{fVarSegMac, Word},
		fieldDecl{fConditionalColumns, Ptr},
		fieldDecl{fConditionalCount, U32},
	)

	return &Catalog{
		Layout: Layout{PointerSize: ptr},
		ColumnDef: newShape("JET_COLUMNDEF", ptr,
			fieldDecl{fCbStruct, U32},
			fieldDecl{fColumnID, U32},
			fieldDecl{fColtyp, U32},
			fieldDecl{fCountry, U16},
			fieldDecl{fLangid, U16},
			fieldDecl{fCP, U16},
			fieldDecl{fCollate, U16},
			fieldDecl{fCbMax, U32},
			fieldDecl{fGrbit, U32},
		),
		ConditionalColumn: newShape("JET_CONDITIONALCOLUMN", ptr,
			fieldDecl{fCbStruct, U32},
			fieldDecl{fColumnName, Ptr},
			fieldDecl{fGrbit, U32},
		),
		IndexCreate:         newShape("JET_INDEXCREATE", ptr, indexCreate...),
		IndexCreateExtended: newShape("JET_INDEXCREATE(extended)", ptr, indexCreateExtended...),
		SetColumn: newShape("JET_SETCOLUMN", ptr,
			fieldDecl{fCbStruct, U32},
			fieldDecl{fColumnID, U32},
			fieldDecl{fData, Ptr},
			fieldDecl{fCbData, U32},
			fieldDecl{fGrbit, U32},
			fieldDecl{fLongValueOffset, U32},
			fieldDecl{fItagSequence, U32},
			fieldDecl{fErr, I32},
		),
		IndexRange: newShape("JET_INDEXRANGE", ptr,
			fieldDecl{fCbStruct, U32},
			fieldDecl{fTableID, Word},
			fieldDecl{fGrbit, U32},
		),
		EnumColumnID: newShape("JET_ENUMCOLUMNID", ptr,
			fieldDecl{fCbStruct, U32},
			fieldDecl{fColumnID, U32},
			fieldDecl{fTagCount, U32},
			fieldDecl{fTagSequences, Ptr},
		),
		EnumColumnValue: newShape("JET_ENUMCOLUMNVALUE", ptr,
			fieldDecl{fCbStruct, U32},
			fieldDecl{fItagSequence, U32},
			fieldDecl{fErr, I32},
			fieldDecl{fCbData, U32},
			fieldDecl{fData, Ptr},
		),
		EnumColumn: newShape("JET_ENUMCOLUMN", ptr,
			fieldDecl{fCbStruct, U32},
			fieldDecl{fColumnID, U32},
			fieldDecl{fErr, I32},
			fieldDecl{fValueCount, U32},
			fieldDecl{fValues, Ptr},
			fieldDecl{fCbData, U32},
			fieldDecl{fData, Ptr},
		),
		RecordList: newShape("JET_RECORDLIST", ptr,
			fieldDecl{fCbStruct, U32},
			fieldDecl{fTableID, Word},
			fieldDecl{fRecordCount, U32},
			fieldDecl{fBookmarkColumn, U32},
		),
	}
}
