package codec

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

func TestRoundTripBoundaries(t *testing.T) {
	cases := map[string]Value{
		"int8 min":     Int8Value(math.MinInt8),
		"int8 max":     Int8Value(math.MaxInt8),
		"uint8 max":    UInt8Value(math.MaxUint8),
		"int16 min":    Int16Value(math.MinInt16),
		"int16 max":    Int16Value(math.MaxInt16),
		"uint16 max":   UInt16Value(math.MaxUint16),
		"int32 min":    Int32Value(math.MinInt32),
		"int32 max":    Int32Value(math.MaxInt32),
		"uint32 max":   UInt32Value(math.MaxUint32),
		"int64 min":    Int64Value(math.MinInt64),
		"int64 max":    Int64Value(math.MaxInt64),
		"uint64 zero":  UInt64Value(0),
		"uint64 max":   UInt64Value(math.MaxUint64),
		"float32 min":  Float32Value(-math.MaxFloat32),
		"float32 max":  Float32Value(math.MaxFloat32),
		"float64 min":  Float64Value(-math.MaxFloat64),
		"float64 max":  Float64Value(math.MaxFloat64),
		"bool true":    BoolValue(true),
		"bool false":   BoolValue(false),
		"date min":     DateTimeValue(time.Date(1899, 12, 30, 23, 59, 59, 0, time.UTC)),
		"date max":     DateTimeValue(time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)),
		"date epoch":   DateTimeValue(MinDateTime),
		"date last ms": DateTimeValue(MaxDateTime),
		"binary":       BinaryValue([]byte{0, 1, 2, 0xFF}),
		"long binary":  LongBinaryValue(bytes.Repeat([]byte{0xAB}, 4096)),
		"text":         TextValue("hello world"),
		"text empty":   TextValue(""),
		"long text":    LongTextValue("ünïcødé ✓ 𝄞"),
	}

	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			enc, err := Encode(v)
			if err != nil {
				t.Fatalf("Encode(%s) failed: %v", v, err)
			}
			got, err := Decode(enc, v.Kind())
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !got.Equal(v) {
				t.Errorf("round trip mismatch: got %s, want %s", got, v)
			}
		})
	}
}

func TestUInt64SharesSignedStorage(t *testing.T) {
	if UInt64.Coltyp() != Int64.Coltyp() {
		t.Fatalf("UInt64 stored in %s, Int64 in %s", UInt64.Coltyp(), Int64.Coltyp())
	}
	enc, err := Encode(UInt64Value(math.MaxUint64))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(enc, bytes.Repeat([]byte{0xFF}, 8)) {
		t.Errorf("unexpected encoding %x", enc)
	}
	v, err := Decode(enc, UInt64)
	if err != nil {
		t.Fatal(err)
	}
	if v.UInt64() != math.MaxUint64 {
		t.Errorf("got %d, want %d", v.UInt64(), uint64(math.MaxUint64))
	}
	signed, _ := Decode(enc, Int64)
	if signed.Int64() != -1 {
		t.Errorf("same bytes as Int64 = %d, want -1", signed.Int64())
	}
}

func TestHostByteOrder(t *testing.T) {
	enc, err := Encode(Int32Value(0x01020304))
	if err != nil {
		t.Fatal(err)
	}
	if got := hostOrder.Uint32(enc); got != 0x01020304 {
		t.Errorf("host order decode = %#x", got)
	}
}

func TestBoolEncoding(t *testing.T) {
	enc, _ := Encode(BoolValue(true))
	if !bytes.Equal(enc, []byte{0xFF}) {
		t.Errorf("true encodes to %x", enc)
	}
	v, err := Decode([]byte{0x01}, Bool)
	if err != nil || !v.Bool() {
		t.Errorf("any non-zero byte must decode to true, got %v (%v)", v, err)
	}
}

func TestDecodeWrongWidth(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3}, Int32)
	if !errors.Is(err, engine.ErrRange) {
		t.Errorf("expected ErrRange, got %v", err)
	}
	_, err = Decode(nil, Float64)
	if !errors.Is(err, engine.ErrCallerParameter) {
		t.Errorf("expected caller parameter error, got %v", err)
	}
}

func TestEncodeTo(t *testing.T) {
	buf := make([]byte, 8)
	v := Int32Value(42)

	tests := []struct {
		name     string
		dst      []byte
		declared int
		wantErr  bool
		wantN    int
	}{
		{"exact", buf[:4], 4, false, 4},
		{"declared within capacity", buf, 4, false, 4},
		{"declared mismatch", buf, 8, true, 0},
		{"declared exceeds capacity", buf[:2], 4, true, 0},
		{"negative", buf, -1, true, 0},
		{"nil with length", nil, 4, true, 0},
		{"nil zero length is null", nil, 0, false, 0},
		{"empty non-nil is zero-length value", []byte{}, 0, true, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := EncodeTo(tc.dst, tc.declared, v)
			if tc.wantErr {
				if !errors.Is(err, engine.ErrRange) {
					t.Errorf("expected ErrRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != tc.wantN {
				t.Errorf("wrote %d bytes, want %d", n, tc.wantN)
			}
		})
	}

	if n, err := EncodeTo([]byte{}, 0, TextValue("")); err != nil || n != 0 {
		t.Errorf("zero-length text: n=%d err=%v", n, err)
	}
}

func TestDateTimeRange(t *testing.T) {
	if _, err := ToOADate(time.Date(1899, 12, 29, 0, 0, 0, 0, time.UTC)); !errors.Is(err, engine.ErrRange) {
		t.Errorf("date before epoch: expected ErrRange, got %v", err)
	}
	if _, err := FromOADate(math.NaN()); !errors.Is(err, engine.ErrRange) {
		t.Errorf("NaN: expected ErrRange, got %v", err)
	}
	if _, err := FromOADate(3_000_000); !errors.Is(err, engine.ErrRange) {
		t.Errorf("past max: expected ErrRange, got %v", err)
	}

	d, err := ToOADate(time.Date(1900, 1, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if d != 2.5 {
		t.Errorf("1900-01-01T12:00 = %v, want 2.5", d)
	}
}

func TestDateTimeIgnoresLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	local := time.Date(2020, 5, 17, 8, 30, 0, 0, loc)
	enc, err := Encode(DateTimeValue(local))
	if err != nil {
		t.Fatal(err)
	}
	v, _ := Decode(enc, DateTime)
	want := time.Date(2020, 5, 17, 8, 30, 0, 0, time.UTC)
	if !v.DateTime().Equal(want) {
		t.Errorf("got %s, want wall clock %s", v.DateTime(), want)
	}
}

func TestText(t *testing.T) {
	enc, err := EncodeUnicode("ab")
	if err != nil {
		t.Fatal(err)
	}
	if len(enc) != 4 {
		t.Fatalf("expected 2 bytes per character, got %d bytes", len(enc))
	}
	if _, err := DecodeUnicode([]byte{1, 2, 3}); !errors.Is(err, engine.ErrRange) {
		t.Errorf("odd length: expected ErrRange, got %v", err)
	}

	ascii, err := EncodeText("café", engine.CPASCII)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ascii, []byte{'c', 'a', 'f', 0xE9}) {
		t.Errorf("1252 encoding = %x", ascii)
	}
	s, _ := DecodeText(ascii, engine.CPASCII)
	if s != "café" {
		t.Errorf("1252 decode = %q", s)
	}
	if _, err := EncodeText("✓", engine.CPASCII); !errors.Is(err, engine.ErrRange) {
		t.Errorf("unrepresentable rune: expected ErrRange, got %v", err)
	}

	name, _ := NullTerminated("idx")
	if len(name) != 8 || name[6] != 0 || name[7] != 0 {
		t.Errorf("null terminated name = %x", name)
	}
	back, err := TrimNull(append(name, 'x', 0))
	if err != nil || back != "idx" {
		t.Errorf("TrimNull = %q, %v", back, err)
	}
}

func TestKindColtyp(t *testing.T) {
	for _, k := range Kinds() {
		if !k.Coltyp().Valid() {
			t.Errorf("%s maps to invalid column type %s", k, k.Coltyp())
		}
		if size, fixed := k.Size(); fixed {
			if colSize, colFixed := k.Coltyp().FixedSize(); !colFixed || colSize != size {
				t.Errorf("%s: codec width %d, column width %d", k, size, colSize)
			}
		}
	}
}
