// Package bookmark validates the caller-supplied buffers that carry
// bookmarks and keys across the call surface.
//
// Bookmarks (engine-assigned record identifiers) and keys (caller-built
// index search values) are opaque byte sequences. This package never looks
// inside them; it only enforces the buffer/length contract before a buffer
// is handed to the engine:
//
//   - a nil buffer is only valid with a zero length
//   - a length is never negative
//   - a length never exceeds the buffer's capacity
//
// Validation has no side effects, so repeating it on the same arguments
// always gives the same answer.
package bookmark

import (
	"bytes"

	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

// Validate checks a (buffer, length) pair. A nil buffer with zero length is
// always valid.
func Validate(op, param string, buf []byte, length int) error {
	switch {
	case length < 0:
		return engine.RangeError(op, param, "negative length %d", length)
	case buf == nil && length > 0:
		return engine.RangeError(op, param, "nil buffer with length %d", length)
	case length > len(buf):
		return engine.RangeError(op, param, "length %d exceeds buffer capacity %d", length, len(buf))
	}
	return nil
}

// ValidateMost additionally rejects lengths beyond the engine's limit.
func ValidateMost(op, param string, buf []byte, length, most int) error {
	if err := Validate(op, param, buf, length); err != nil {
		return err
	}
	if most > 0 && length > most {
		return engine.RangeError(op, param, "length %d exceeds engine maximum %d", length, most)
	}
	return nil
}

// Slice returns the first length bytes of buf after validating the pair.
// A nil buffer stays nil.
func Slice(op, param string, buf []byte, length int) ([]byte, error) {
	if err := Validate(op, param, buf, length); err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	return buf[:length], nil
}

// Bookmark is an owned copy of an engine-assigned bookmark.
type Bookmark []byte

// Equal compares two bookmarks byte by byte.
func (b Bookmark) Equal(o Bookmark) bool { return bytes.Equal(b, o) }

// Clone returns an exact-length copy of the first n bytes of buf.
func Clone(buf []byte, n int) Bookmark {
	if n > len(buf) {
		n = len(buf)
	}
	out := make(Bookmark, n)
	copy(out, buf)
	return out
}
