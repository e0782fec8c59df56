package codec

import (
	"bytes"
	"fmt"
	"math"
	"time"
)

// Value holds one column value together with its Kind. The zero Value is
// invalid.
type Value struct {
	kind Kind
	bits uint64    // integers, floats and bools, two's complement or IEEE bits
	t    time.Time // DateTime
	b    []byte    // Binary, LongBinary
	s    string    // Text, LongText
}

func (v Value) Kind() Kind { return v.kind }

// --------------------------------------------------------------------------
// Constructors
// --------------------------------------------------------------------------

func Int8Value(x int8) Value     { return Value{kind: Int8, bits: uint64(uint8(x))} }
func UInt8Value(x uint8) Value   { return Value{kind: UInt8, bits: uint64(x)} }
func Int16Value(x int16) Value   { return Value{kind: Int16, bits: uint64(uint16(x))} }
func UInt16Value(x uint16) Value { return Value{kind: UInt16, bits: uint64(x)} }
func Int32Value(x int32) Value   { return Value{kind: Int32, bits: uint64(uint32(x))} }
func UInt32Value(x uint32) Value { return Value{kind: UInt32, bits: uint64(x)} }
func Int64Value(x int64) Value   { return Value{kind: Int64, bits: uint64(x)} }
func UInt64Value(x uint64) Value { return Value{kind: UInt64, bits: x} }

func Float32Value(x float32) Value { return Value{kind: Float32, bits: uint64(math.Float32bits(x))} }
func Float64Value(x float64) Value { return Value{kind: Float64, bits: math.Float64bits(x)} }

func BoolValue(x bool) Value {
	if x {
		return Value{kind: Bool, bits: 1}
	}
	return Value{kind: Bool}
}

func DateTimeValue(x time.Time) Value { return Value{kind: DateTime, t: x} }

func BinaryValue(x []byte) Value     { return Value{kind: Binary, b: x} }
func LongBinaryValue(x []byte) Value { return Value{kind: LongBinary, b: x} }
func TextValue(x string) Value       { return Value{kind: Text, s: x} }
func LongTextValue(x string) Value   { return Value{kind: LongText, s: x} }

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// The accessors do not check the kind; reading a value through the wrong
// accessor returns a reinterpretation of its bits.

func (v Value) Int8() int8          { return int8(v.bits) }
func (v Value) UInt8() uint8        { return uint8(v.bits) }
func (v Value) Int16() int16        { return int16(v.bits) }
func (v Value) UInt16() uint16      { return uint16(v.bits) }
func (v Value) Int32() int32        { return int32(v.bits) }
func (v Value) UInt32() uint32      { return uint32(v.bits) }
func (v Value) Int64() int64        { return int64(v.bits) }
func (v Value) UInt64() uint64      { return v.bits }
func (v Value) Float32() float32    { return math.Float32frombits(uint32(v.bits)) }
func (v Value) Float64() float64    { return math.Float64frombits(v.bits) }
func (v Value) Bool() bool          { return v.bits != 0 }
func (v Value) DateTime() time.Time { return v.t }
func (v Value) Bytes() []byte       { return v.b }
func (v Value) Text() string        { return v.s }

// Equal compares two values of the same kind. Dates compare by instant,
// floats by bit pattern.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case DateTime:
		return v.t.Equal(o.t)
	case Binary, LongBinary:
		return bytes.Equal(v.b, o.b)
	case Text, LongText:
		return v.s == o.s
	default:
		return v.bits == o.bits
	}
}

func (v Value) String() string {
	switch v.kind {
	case Int8:
		return fmt.Sprintf("Int8(%d)", v.Int8())
	case Int16:
		return fmt.Sprintf("Int16(%d)", v.Int16())
	case Int32:
		return fmt.Sprintf("Int32(%d)", v.Int32())
	case Int64:
		return fmt.Sprintf("Int64(%d)", v.Int64())
	case UInt8, UInt16, UInt32, UInt64:
		return fmt.Sprintf("%s(%d)", v.kind, v.bits)
	case Float32:
		return fmt.Sprintf("Float32(%g)", v.Float32())
	case Float64:
		return fmt.Sprintf("Float64(%g)", v.Float64())
	case Bool:
		return fmt.Sprintf("Bool(%t)", v.Bool())
	case DateTime:
		return fmt.Sprintf("DateTime(%s)", v.t.Format("2006-01-02T15:04:05.000"))
	case Binary, LongBinary:
		return fmt.Sprintf("%s(%x)", v.kind, v.b)
	case Text, LongText:
		return fmt.Sprintf("%s(%q)", v.kind, v.s)
	default:
		return "Invalid"
	}
}
