package codec

import (
	"fmt"

	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

// Kind is the type tag of a column value. The caller supplies it; the codec
// never looks it up in engine metadata.
type Kind uint8

const (
	KindInvalid Kind = iota
	Int8
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
	Float32
	Float64
	Bool
	DateTime
	Binary
	LongBinary
	Text
	LongText
)

var kindNames = [...]string{
	KindInvalid: "Invalid",
	Int8:        "Int8",
	UInt8:       "UInt8",
	Int16:       "Int16",
	UInt16:      "UInt16",
	Int32:       "Int32",
	UInt32:      "UInt32",
	Int64:       "Int64",
	UInt64:      "UInt64",
	Float32:     "Float32",
	Float64:     "Float64",
	Bool:        "Bool",
	DateTime:    "DateTime",
	Binary:      "Binary",
	LongBinary:  "LongBinary",
	Text:        "Text",
	LongText:    "LongText",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Size returns the encoded width of a fixed-width kind. Variable kinds
// report (0, false).
func (k Kind) Size() (int, bool) {
	switch k {
	case Int8, UInt8, Bool:
		return 1, true
	case Int16, UInt16:
		return 2, true
	case Int32, UInt32, Float32:
		return 4, true
	case Int64, UInt64, Float64, DateTime:
		return 8, true
	default:
		return 0, false
	}
}

// Variable reports whether values of the kind have a length chosen by the
// caller.
func (k Kind) Variable() bool {
	switch k {
	case Binary, LongBinary, Text, LongText:
		return true
	default:
		return false
	}
}

// Coltyp returns the engine column type values of this kind are stored in.
func (k Kind) Coltyp() engine.Coltyp {
	switch k {
	case Int8, UInt8:
		return engine.ColtypUnsignedByte
	case Int16:
		return engine.ColtypShort
	case UInt16:
		return engine.ColtypUnsignedShort
	case Int32:
		return engine.ColtypLong
	case UInt32:
		return engine.ColtypUnsignedLong
	case Int64, UInt64:
		return engine.ColtypCurrency
	case Float32:
		return engine.ColtypIEEESingle
	case Float64:
		return engine.ColtypIEEEDouble
	case Bool:
		return engine.ColtypBit
	case DateTime:
		return engine.ColtypDateTime
	case Binary:
		return engine.ColtypBinary
	case LongBinary:
		return engine.ColtypLongBinary
	case Text:
		return engine.ColtypText
	case LongText:
		return engine.ColtypLongText
	default:
		return engine.ColtypNil
	}
}

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames)-1)
	for k := Int8; k <= LongText; k++ {
		out = append(out, k)
	}
	return out
}
