package codec

import (
	"encoding/binary"
	"math"

	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

// hostOrder is the byte order of the engine's in-process structures.
var hostOrder = binary.NativeEndian

// Encode returns the column encoding of v.
func Encode(v Value) ([]byte, error) {
	switch v.kind {
	case Int8, UInt8:
		return []byte{byte(v.bits)}, nil
	case Bool:
		if v.bits != 0 {
			return []byte{0xFF}, nil
		}
		return []byte{0x00}, nil
	case Int16, UInt16:
		b := make([]byte, 2)
		hostOrder.PutUint16(b, uint16(v.bits))
		return b, nil
	case Int32, UInt32, Float32:
		b := make([]byte, 4)
		hostOrder.PutUint32(b, uint32(v.bits))
		return b, nil
	case Int64, UInt64, Float64:
		b := make([]byte, 8)
		hostOrder.PutUint64(b, v.bits)
		return b, nil
	case DateTime:
		d, err := ToOADate(v.t)
		if err != nil {
			return nil, err
		}
		b := make([]byte, 8)
		hostOrder.PutUint64(b, math.Float64bits(d))
		return b, nil
	case Binary, LongBinary:
		return append([]byte{}, v.b...), nil
	case Text, LongText:
		return EncodeUnicode(v.s)
	default:
		return nil, engine.RangeError("codec.Encode", "kind", "invalid kind %s", v.kind)
	}
}

// Decode interprets b as a value of kind k. Fixed kinds require exactly
// their width.
func Decode(b []byte, k Kind) (Value, error) {
	const op = "codec.Decode"
	if size, fixed := k.Size(); fixed && len(b) != size {
		return Value{}, engine.RangeError(op, "bytes", "%s needs %d bytes, got %d", k, size, len(b))
	}

	switch k {
	case Int8, UInt8:
		return Value{kind: k, bits: uint64(b[0])}, nil
	case Bool:
		return BoolValue(b[0] != 0), nil
	case Int16, UInt16:
		return Value{kind: k, bits: uint64(hostOrder.Uint16(b))}, nil
	case Int32, UInt32, Float32:
		return Value{kind: k, bits: uint64(hostOrder.Uint32(b))}, nil
	case Int64, UInt64, Float64:
		return Value{kind: k, bits: hostOrder.Uint64(b)}, nil
	case DateTime:
		t, err := FromOADate(math.Float64frombits(hostOrder.Uint64(b)))
		if err != nil {
			return Value{}, err
		}
		return DateTimeValue(t), nil
	case Binary, LongBinary:
		return Value{kind: k, b: append([]byte{}, b...)}, nil
	case Text, LongText:
		s, err := DecodeUnicode(b)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: k, s: s}, nil
	default:
		return Value{}, engine.RangeError(op, "kind", "invalid kind %s", k)
	}
}

// EncodeTo encodes v into the first declared bytes of dst and returns the
// number of bytes written.
//
// A nil dst with declared == 0 is the "set to null" request: nothing is
// encoded and (0, nil) is returned. A non-nil dst with declared == 0 is a
// zero-length value and only valid for kinds that encode to nothing.
func EncodeTo(dst []byte, declared int, v Value) (int, error) {
	const op = "codec.EncodeTo"
	switch {
	case dst == nil && declared != 0:
		return 0, engine.RangeError(op, "declared", "nil buffer with declared length %d", declared)
	case declared < 0:
		return 0, engine.RangeError(op, "declared", "negative length %d", declared)
	case declared > len(dst):
		return 0, engine.RangeError(op, "declared", "length %d exceeds buffer capacity %d", declared, len(dst))
	case dst == nil:
		return 0, nil
	}

	enc, err := Encode(v)
	if err != nil {
		return 0, err
	}
	if len(enc) != declared {
		return 0, engine.RangeError(op, "declared", "%s encodes to %d bytes, declared %d", v.kind, len(enc), declared)
	}
	return copy(dst, enc), nil
}
