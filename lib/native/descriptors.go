package native

import (
	"unicode/utf16"

	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

// indexCreateExtended marks a JET_INDEXCREATE image as the extended variant.
// Only the converter sets it; a caller-supplied bit is masked off.
const indexCreateExtended engine.CreateIndexGrbit = 0x00100000

// --------------------------------------------------------------------------
// Column definitions
// --------------------------------------------------------------------------

// ColumnDef describes a column. Default and DefaultSize are not part of the
// native structure; they travel next to it when a column is added.
type ColumnDef struct {
	ColumnID    engine.ColumnID // assigned by the engine
	Coltyp      engine.Coltyp
	Country     uint16
	Langid      uint16
	CP          engine.CP
	Collate     uint16
	MaxLength   uint32
	Grbit       engine.ColumndefGrbit
	Default     []byte
	DefaultSize int
}

// Validate checks the default value buffer contract: a nil buffer implies
// a zero length, and the length never exceeds the buffer.
func (cd ColumnDef) Validate(op string) error {
	switch {
	case cd.DefaultSize < 0:
		return engine.RangeError(op, "DefaultSize", "negative length %d", cd.DefaultSize)
	case cd.Default == nil && cd.DefaultSize != 0:
		return engine.RangeError(op, "DefaultSize", "nil default value with length %d", cd.DefaultSize)
	case cd.DefaultSize > len(cd.Default):
		return engine.RangeError(op, "DefaultSize", "length %d exceeds buffer capacity %d", cd.DefaultSize, len(cd.Default))
	}
	return nil
}

// DefaultValue returns the declared default bytes, nil when there is none.
func (cd ColumnDef) DefaultValue() []byte {
	if cd.Default == nil || cd.DefaultSize == 0 {
		return nil
	}
	return cd.Default[:cd.DefaultSize]
}

// --------------------------------------------------------------------------
// Index creation
// --------------------------------------------------------------------------

// ConditionalColumn makes index membership depend on a column being null
// or non-null.
type ConditionalColumn struct {
	Name  string
	Grbit engine.ConditionalColumnGrbit
}

// IndexCreate describes an index. The extended native variant is produced
// when VarSegMac or ConditionalColumns is populated; there is no other way
// to ask for it.
type IndexCreate struct {
	Name string

	// Key lists the segments, each "+column" or "-column" followed by a
	// null, e.g. "+name\x00-age\x00".
	Key string

	// KeyLength is the length of Key in characters including the final
	// terminator. Zero means len(Key)+1.
	KeyLength int

	Grbit   engine.CreateIndexGrbit
	Density int // 0 selects the engine default, otherwise 1..100
	Lcid    uint32

	VarSegMac          int // per-column key-size limit in bytes, 0 for none
	ConditionalColumns []ConditionalColumn

	Err engine.Status // per-index result written by the engine
}

func (ic IndexCreate) extended() bool {
	return ic.VarSegMac > 0 || len(ic.ConditionalColumns) > 0
}

func (ic IndexCreate) keyChars() int {
	return len(utf16.Encode([]rune(ic.Key)))
}

// effectiveKeyLength resolves the zero default.
func (ic IndexCreate) effectiveKeyLength() int {
	if ic.KeyLength == 0 {
		return ic.keyChars() + 1
	}
	return ic.KeyLength
}

// Validate checks every argument precondition of an index descriptor.
func (ic IndexCreate) Validate(op string) error {
	switch {
	case ic.Name == "":
		return engine.NullError(op, "Name")
	case ic.Key == "":
		return engine.NullError(op, "Key")
	case ic.KeyLength < 0:
		return engine.RangeError(op, "KeyLength", "negative length %d", ic.KeyLength)
	case ic.KeyLength > ic.keyChars()+1:
		return engine.RangeError(op, "KeyLength", "length %d exceeds key description length %d", ic.KeyLength, ic.keyChars()+1)
	case ic.Density < 0:
		return engine.RangeError(op, "Density", "negative density %d", ic.Density)
	case ic.Density > 100:
		return engine.RangeError(op, "Density", "density %d exceeds 100", ic.Density)
	case ic.VarSegMac < 0:
		return engine.RangeError(op, "VarSegMac", "negative key-size limit %d", ic.VarSegMac)
	}
	for _, cc := range ic.ConditionalColumns {
		if cc.Name == "" {
			return engine.NullError(op, "ConditionalColumns.Name")
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Set-column requests
// --------------------------------------------------------------------------

// SetColumn is one entry of a batched set-columns request.
type SetColumn struct {
	ColumnID        engine.ColumnID
	Data            []byte
	DataSize        int
	Grbit           engine.SetColumnGrbit
	LongValueOffset int
	ItagSequence    int
	Err             engine.Status // per-entry result written by the engine
}

// Validate checks the buffer contract: DataSize never exceeds Data, and a
// nil Data is only valid with a zero size or SizeLV.
func (sc SetColumn) Validate(op string) error {
	switch {
	case sc.DataSize < 0:
		return engine.RangeError(op, "DataSize", "negative length %d", sc.DataSize)
	case sc.Data == nil && sc.DataSize != 0 && sc.Grbit&engine.SetColumnSizeLV == 0:
		return engine.RangeError(op, "DataSize", "nil data with length %d", sc.DataSize)
	case sc.Data != nil && sc.DataSize > len(sc.Data):
		return engine.RangeError(op, "DataSize", "length %d exceeds buffer capacity %d", sc.DataSize, len(sc.Data))
	case sc.LongValueOffset < 0:
		return engine.RangeError(op, "LongValueOffset", "negative offset %d", sc.LongValueOffset)
	case sc.ItagSequence < 0:
		return engine.RangeError(op, "ItagSequence", "negative tag %d", sc.ItagSequence)
	}
	return nil
}

func (sc SetColumn) payload() []byte {
	if sc.Data == nil {
		return nil
	}
	return sc.Data[:sc.DataSize]
}

// --------------------------------------------------------------------------
// Ranges, enumeration and record lists
// --------------------------------------------------------------------------

// IndexRange names a cursor whose current index range takes part in an
// intersection.
type IndexRange struct {
	TableID engine.TableID
	Grbit   engine.IndexRangeGrbit
}

// EnumColumnID selects a column, and optionally some of its values, for
// enumeration. An empty TagSequences selects every value.
type EnumColumnID struct {
	ColumnID     engine.ColumnID
	TagSequences []int
}

// EnumColumnValue is one value of an enumerated multi-valued column.
type EnumColumnValue struct {
	ItagSequence int
	Err          engine.Status
	Data         []byte
}

// EnumColumn is one column of an enumeration result. Values holds every
// value; Data is additionally set when the column holds a single value and
// the engine compressed the output.
type EnumColumn struct {
	ColumnID engine.ColumnID
	Err      engine.Status
	Values   []EnumColumnValue
	Data     []byte
}

// RecordList names the temporary table holding an intersection result.
type RecordList struct {
	TableID        engine.TableID
	Count          int
	BookmarkColumn engine.ColumnID
}
