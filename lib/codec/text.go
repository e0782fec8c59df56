package codec

import (
	"encoding/binary"

	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// hostUTF16 is 2-byte text in the host's byte order, without a byte order mark.
var hostUTF16 encoding.Encoding = func() encoding.Encoding {
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	}
	return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
}()

// EncodeUnicode encodes s as 2-byte characters. Invalid UTF-8 is replaced
// with U+FFFD.
func EncodeUnicode(s string) ([]byte, error) {
	b, err := hostUTF16.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, engine.RangeError("codec.EncodeUnicode", "s", "%v", err)
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

// DecodeUnicode decodes 2-byte characters. An odd length is a Range error.
func DecodeUnicode(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", engine.RangeError("codec.DecodeUnicode", "bytes", "odd length %d", len(b))
	}
	s, err := hostUTF16.NewDecoder().Bytes(b)
	if err != nil {
		return "", engine.RangeError("codec.DecodeUnicode", "bytes", "%v", err)
	}
	return string(s), nil
}

// EncodeText encodes s for a text column with the given code page.
func EncodeText(s string, cp engine.CP) ([]byte, error) {
	if cp != engine.CPASCII {
		return EncodeUnicode(s)
	}
	b, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, engine.RangeError("codec.EncodeText", "s", "not representable in code page %d: %v", cp, err)
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

// DecodeText decodes text stored with the given code page.
func DecodeText(b []byte, cp engine.CP) (string, error) {
	if cp != engine.CPASCII {
		return DecodeUnicode(b)
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", engine.RangeError("codec.DecodeText", "bytes", "%v", err)
	}
	return string(s), nil
}

// NullTerminated encodes s as 2-byte characters followed by a 2-byte null,
// the form names take at the call boundary.
func NullTerminated(s string) ([]byte, error) {
	b, err := EncodeUnicode(s)
	if err != nil {
		return nil, err
	}
	return append(b, 0, 0), nil
}

// TrimNull decodes a null-terminated 2-byte string, stopping at the first
// null character.
func TrimNull(b []byte) (string, error) {
	n := len(b) &^ 1
	for i := 0; i+1 < n; i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			n = i
			break
		}
	}
	return DecodeUnicode(b[:n])
}
