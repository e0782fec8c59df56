package engine

import (
	"fmt"
	"math"
)

// --------------------------------------------------------------------------
// Handles
// --------------------------------------------------------------------------

// Session identifies one native engine session.
type Session uint64

// TableID identifies an open table (a cursor) within a session.
type TableID uint64

// ColumnID identifies a column within a table.
type ColumnID uint32

const (
	NilSession Session = 0
	NilTable   TableID = 0
)

func (s Session) String() string  { return fmt.Sprintf("JET_SESID(0x%x)", uint64(s)) }
func (t TableID) String() string  { return fmt.Sprintf("JET_TABLEID(0x%x)", uint64(t)) }
func (c ColumnID) String() string { return fmt.Sprintf("JET_COLUMNID(0x%x)", uint32(c)) }

// --------------------------------------------------------------------------
// Column types and code pages
// --------------------------------------------------------------------------

// Coltyp is the storage type of a column as the engine knows it.
type Coltyp uint32

const (
	ColtypNil           Coltyp = 0
	ColtypBit           Coltyp = 1  // 1 byte, 0 = false
	ColtypUnsignedByte  Coltyp = 2  // 1 byte
	ColtypShort         Coltyp = 3  // 2 bytes, signed
	ColtypLong          Coltyp = 4  // 4 bytes, signed
	ColtypCurrency      Coltyp = 5  // 8 bytes, signed
	ColtypIEEESingle    Coltyp = 6  // 4 bytes
	ColtypIEEEDouble    Coltyp = 7  // 8 bytes
	ColtypDateTime      Coltyp = 8  // 8 bytes, OLE Automation date
	ColtypBinary        Coltyp = 9  // up to 255 bytes
	ColtypText          Coltyp = 10 // up to 255 bytes
	ColtypLongBinary    Coltyp = 11 // long value
	ColtypLongText      Coltyp = 12 // long value
	ColtypUnsignedLong  Coltyp = 14 // 4 bytes
	ColtypLongLong      Coltyp = 15 // 8 bytes, signed
	ColtypGUID          Coltyp = 16 // 16 bytes
	ColtypUnsignedShort Coltyp = 17 // 2 bytes
)

// FixedSize returns the stored width of fixed-size column types.
func (c Coltyp) FixedSize() (size int, fixed bool) {
	switch c {
	case ColtypBit, ColtypUnsignedByte:
		return 1, true
	case ColtypShort, ColtypUnsignedShort:
		return 2, true
	case ColtypLong, ColtypUnsignedLong, ColtypIEEESingle:
		return 4, true
	case ColtypCurrency, ColtypIEEEDouble, ColtypDateTime, ColtypLongLong:
		return 8, true
	case ColtypGUID:
		return 16, true
	default:
		return 0, false
	}
}

// IsLong reports whether values of the type are stored as long values.
func (c Coltyp) IsLong() bool {
	return c == ColtypLongBinary || c == ColtypLongText
}

// IsText reports whether the column holds character data.
func (c Coltyp) IsText() bool {
	return c == ColtypText || c == ColtypLongText
}

// Valid reports whether c is a column type the engine defines.
func (c Coltyp) Valid() bool {
	switch c {
	case ColtypBit, ColtypUnsignedByte, ColtypShort, ColtypLong, ColtypCurrency,
		ColtypIEEESingle, ColtypIEEEDouble, ColtypDateTime, ColtypBinary, ColtypText,
		ColtypLongBinary, ColtypLongText, ColtypUnsignedLong, ColtypLongLong,
		ColtypGUID, ColtypUnsignedShort:
		return true
	default:
		return false
	}
}

func (c Coltyp) String() string {
	switch c {
	case ColtypNil:
		return "Nil"
	case ColtypBit:
		return "Bit"
	case ColtypUnsignedByte:
		return "UnsignedByte"
	case ColtypShort:
		return "Short"
	case ColtypLong:
		return "Long"
	case ColtypCurrency:
		return "Currency"
	case ColtypIEEESingle:
		return "IEEESingle"
	case ColtypIEEEDouble:
		return "IEEEDouble"
	case ColtypDateTime:
		return "DateTime"
	case ColtypBinary:
		return "Binary"
	case ColtypText:
		return "Text"
	case ColtypLongBinary:
		return "LongBinary"
	case ColtypLongText:
		return "LongText"
	case ColtypUnsignedLong:
		return "UnsignedLong"
	case ColtypLongLong:
		return "LongLong"
	case ColtypGUID:
		return "GUID"
	case ColtypUnsignedShort:
		return "UnsignedShort"
	default:
		return fmt.Sprintf("Coltyp(%d)", uint32(c))
	}
}

// CP is the code page of a text column.
type CP uint16

const (
	CPNone    CP = 0
	CPUnicode CP = 1200
	CPASCII   CP = 1252
)

// --------------------------------------------------------------------------
// Option bits
// --------------------------------------------------------------------------

// ColumndefGrbit holds column definition options.
type ColumndefGrbit uint32

const (
	ColumndefNone          ColumndefGrbit = 0
	ColumndefFixed         ColumndefGrbit = 0x1
	ColumndefTagged        ColumndefGrbit = 0x2
	ColumndefNotNULL       ColumndefGrbit = 0x4
	ColumndefVersion       ColumndefGrbit = 0x8
	ColumndefAutoincrement ColumndefGrbit = 0x10
	ColumndefTTKey         ColumndefGrbit = 0x40 // temp tables: column is part of the key
	ColumndefTTDescending  ColumndefGrbit = 0x80 // temp tables: key column sorts descending
	ColumndefMultiValued   ColumndefGrbit = 0x400
	ColumndefEscrowUpdate  ColumndefGrbit = 0x800
)

// CreateIndexGrbit holds index creation options.
type CreateIndexGrbit uint32

const (
	CreateIndexNone            CreateIndexGrbit = 0
	CreateIndexUnique          CreateIndexGrbit = 0x1
	CreateIndexPrimary         CreateIndexGrbit = 0x2
	CreateIndexDisallowNull    CreateIndexGrbit = 0x4
	CreateIndexIgnoreNull      CreateIndexGrbit = 0x8
	CreateIndexIgnoreAnyNull   CreateIndexGrbit = 0x20
	CreateIndexIgnoreFirstNull CreateIndexGrbit = 0x40
)

// ConditionalColumnGrbit holds the condition of a conditional index column.
type ConditionalColumnGrbit uint32

const (
	ConditionalColumnMustBeNull    ConditionalColumnGrbit = 0x1
	ConditionalColumnMustBeNonNull ConditionalColumnGrbit = 0x2
)

// TempTableGrbit holds temporary table options.
type TempTableGrbit uint32

const (
	TempTableNone                 TempTableGrbit = 0
	TempTableIndexed              TempTableGrbit = 0x1
	TempTableUnique               TempTableGrbit = 0x2
	TempTableUpdatable            TempTableGrbit = 0x4
	TempTableScrollable           TempTableGrbit = 0x8
	TempTableForceMaterialization TempTableGrbit = 0x20
)

type CommitGrbit uint32

const (
	CommitNone                 CommitGrbit = 0
	CommitLazyFlush            CommitGrbit = 0x1
	CommitWaitLastLevel0Commit CommitGrbit = 0x2
)

type RollbackGrbit uint32

const (
	RollbackNone RollbackGrbit = 0
	RollbackAll  RollbackGrbit = 0x1 // roll back every nesting level
)

// Prep selects the kind of update prepared on a cursor.
type Prep uint32

const (
	PrepInsert        Prep = 0
	PrepReplaceNoLock Prep = 1
	PrepReplace       Prep = 2
	PrepCancel        Prep = 3
	PrepInsertCopy    Prep = 5
)

func (p Prep) String() string {
	switch p {
	case PrepInsert:
		return "Insert"
	case PrepReplaceNoLock:
		return "ReplaceNoLock"
	case PrepReplace:
		return "Replace"
	case PrepCancel:
		return "Cancel"
	case PrepInsertCopy:
		return "InsertCopy"
	default:
		return fmt.Sprintf("Prep(%d)", uint32(p))
	}
}

type SetColumnGrbit uint32

const (
	SetColumnNone              SetColumnGrbit = 0
	SetColumnAppendLV          SetColumnGrbit = 0x1
	SetColumnOverwriteLV       SetColumnGrbit = 0x4
	SetColumnSizeLV            SetColumnGrbit = 0x8
	SetColumnZeroLength        SetColumnGrbit = 0x20
	SetColumnUniqueMultiValues SetColumnGrbit = 0x80
)

type RetrieveColumnGrbit uint32

const (
	RetrieveColumnNone RetrieveColumnGrbit = 0
	RetrieveCopy       RetrieveColumnGrbit = 0x1 // read the copy buffer of a prepared update
)

type RetrieveKeyGrbit uint32

const (
	RetrieveKeyNone RetrieveKeyGrbit = 0
	RetrieveKeyCopy RetrieveKeyGrbit = 0x1 // return the search key built by MakeKey
)

type MoveGrbit uint32

const (
	MoveNone  MoveGrbit = 0
	MoveKeyNE MoveGrbit = 0x1
)

// Special offsets accepted by Move.
const (
	MoveFirst    int32 = math.MinInt32
	MovePrevious int32 = -1
	MoveNext     int32 = 1
	MoveLast     int32 = math.MaxInt32
)

type MakeKeyGrbit uint32

const (
	MakeKeyNone                    MakeKeyGrbit = 0
	MakeKeyNewKey                  MakeKeyGrbit = 0x1
	MakeKeyNormalizedKey           MakeKeyGrbit = 0x8
	MakeKeyKeyDataZeroLength       MakeKeyGrbit = 0x10
	MakeKeyFullColumnStartLimit    MakeKeyGrbit = 0x100
	MakeKeyFullColumnEndLimit      MakeKeyGrbit = 0x200
	MakeKeyPartialColumnStartLimit MakeKeyGrbit = 0x400
	MakeKeyPartialColumnEndLimit   MakeKeyGrbit = 0x800
)

type SeekGrbit uint32

const (
	SeekEQ            SeekGrbit = 0x1
	SeekLT            SeekGrbit = 0x2
	SeekLE            SeekGrbit = 0x4
	SeekGE            SeekGrbit = 0x8
	SeekGT            SeekGrbit = 0x10
	SeekSetIndexRange SeekGrbit = 0x20
)

type SetIndexRangeGrbit uint32

const (
	RangeNone            SetIndexRangeGrbit = 0
	RangeInclusive       SetIndexRangeGrbit = 0x1
	RangeUpperLimit      SetIndexRangeGrbit = 0x2
	RangeInstantDuration SetIndexRangeGrbit = 0x4
	RangeRemove          SetIndexRangeGrbit = 0x8
)

// IndexRangeGrbit holds options of one JET_INDEXRANGE entry.
type IndexRangeGrbit uint32

const IndexRangeTableID IndexRangeGrbit = 0x1

type IntersectIndexesGrbit uint32

const IntersectIndexesNone IntersectIndexesGrbit = 0

type EnumerateColumnsGrbit uint32

const (
	EnumerateNone           EnumerateColumnsGrbit = 0
	EnumerateCompressOutput EnumerateColumnsGrbit = 0x1
	EnumeratePresenceOnly   EnumerateColumnsGrbit = 0x20000
	EnumerateTaggedOnly     EnumerateColumnsGrbit = 0x40000
)

type EscrowUpdateGrbit uint32

const (
	EscrowUpdateNone       EscrowUpdateGrbit = 0
	EscrowUpdateNoRollback EscrowUpdateGrbit = 0x1
)
