package memtable

import (
	"encoding/binary"
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"strings"
)

// --------------------------------------------------------------------------
// Key normalization
// --------------------------------------------------------------------------
//
// A normalized key is the concatenation of one segment per index column.
// Each segment is a one-byte header (0x00 null, 0x7F present) followed by
// an order-preserving body, so bytes.Compare on two keys matches the
// logical order of their column values. Descending segments are inverted.

const (
	segNull    byte = 0x00
	segPresent byte = 0x7F
	limitByte  byte = 0xFF
)

var hostOrder = binary.NativeEndian

func bmBytes(seq uint64) []byte {
	b := make([]byte, bookmarkSize)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func bmSeq(b []byte) (uint64, bool) {
	if len(b) != bookmarkSize {
		return 0, false
	}
	return binary.BigEndian.Uint64(b), true
}

// normalizeBody turns a stored value (host byte order) into bytes that sort
// like the value.
func normalizeBody(col *column, v []byte) []byte {
	typ := col.def.Coltyp
	if size, fixed := typ.FixedSize(); fixed && len(v) != size {
		return escape(v)
	}
	out := make([]byte, len(v))
	switch typ {
	case engine.ColtypBit:
		if v[0] != 0 {
			out[0] = 1
		}
	case engine.ColtypUnsignedByte:
		out[0] = v[0]
	case engine.ColtypUnsignedShort:
		binary.BigEndian.PutUint16(out, hostOrder.Uint16(v))
	case engine.ColtypUnsignedLong:
		binary.BigEndian.PutUint32(out, hostOrder.Uint32(v))
	case engine.ColtypShort:
		binary.BigEndian.PutUint16(out, hostOrder.Uint16(v)^0x8000)
	case engine.ColtypLong:
		binary.BigEndian.PutUint32(out, hostOrder.Uint32(v)^0x80000000)
	case engine.ColtypCurrency, engine.ColtypLongLong:
		binary.BigEndian.PutUint64(out, hostOrder.Uint64(v)^(1<<63))
	case engine.ColtypIEEESingle:
		bits := hostOrder.Uint32(v)
		if bits&0x80000000 != 0 {
			bits = ^bits
		} else {
			bits ^= 0x80000000
		}
		binary.BigEndian.PutUint32(out, bits)
	case engine.ColtypIEEEDouble, engine.ColtypDateTime:
		bits := hostOrder.Uint64(v)
		if bits&(1<<63) != 0 {
			bits = ^bits
		} else {
			bits ^= 1 << 63
		}
		binary.BigEndian.PutUint64(out, bits)
	case engine.ColtypGUID:
		copy(out, v)
	case engine.ColtypText, engine.ColtypLongText:
		return escape([]byte(foldText(col, v)))
	default:
		return escape(v)
	}
	return out
}

// foldText compares text case-insensitively. Undecodable bytes are kept as
// they are.
func foldText(col *column, v []byte) string {
	s, err := codec.DecodeText(v, col.def.CP)
	if err != nil {
		return string(v)
	}
	return strings.ToLower(s)
}

// escape makes variable-length data self-delimiting: 0x00 becomes 0x00 0xFF
// and the body ends with 0x00 0x00, which sorts below any continuation.
func escape(v []byte) []byte {
	out := make([]byte, 0, len(v)+2)
	for _, b := range v {
		out = append(out, b)
		if b == 0 {
			out = append(out, 0xFF)
		}
	}
	return append(out, 0, 0)
}

func variable(col *column) bool {
	_, fixed := col.def.Coltyp.FixedSize()
	return !fixed
}

// normalizeSegment builds one key segment. present is false for null.
func (ix *index) normalizeSegment(seg segment, v []byte, present bool) []byte {
	var out []byte
	if !present {
		out = []byte{segNull}
	} else {
		body := normalizeBody(seg.col, v)
		if ix.varSegMac > 0 && variable(seg.col) && len(body) > ix.varSegMac {
			body = body[:ix.varSegMac]
		}
		out = append([]byte{segPresent}, body...)
	}
	if seg.desc {
		for i := range out {
			out[i] = ^out[i]
		}
	}
	return out
}

// included applies the conditional columns of an index.
func (ix *index) included(rec *record) bool {
	for i, cc := range ix.conditional {
		_, present := ix.conditions[i].value(rec, 1)
		if cc.Grbit&engine.ConditionalColumnMustBeNull != 0 && present {
			return false
		}
		if cc.Grbit&engine.ConditionalColumnMustBeNonNull != 0 && !present {
			return false
		}
	}
	return true
}

func (ix *index) hasNullSegment(rec *record) bool {
	for _, seg := range ix.segments {
		if _, present := seg.col.value(rec, 1); !present {
			return true
		}
	}
	return false
}

// keyOf returns the normalized key of rec in this ordering, or false when
// the record is not part of it. Multi-valued columns contribute their
// first value.
func (ix *index) keyOf(rec *record, t *table) ([]byte, bool) {
	if len(ix.segments) == 0 {
		return bmBytes(rec.seq), true
	}
	if !ix.included(rec) {
		return nil, false
	}
	var key []byte
	nulls := 0
	for i, seg := range ix.segments {
		v, present := seg.col.value(rec, 1)
		if !present {
			nulls++
			if i == 0 && ix.grbit&engine.CreateIndexIgnoreFirstNull != 0 {
				return nil, false
			}
		}
		key = append(key, ix.normalizeSegment(seg, v, present)...)
	}
	switch {
	case nulls > 0 && ix.grbit&engine.CreateIndexIgnoreAnyNull != 0:
		return nil, false
	case nulls == len(ix.segments) && ix.grbit&engine.CreateIndexIgnoreNull != 0:
		return nil, false
	}
	if t.keyMost > 0 && len(key) > t.keyMost {
		key = key[:t.keyMost]
	}
	return key, true
}

// prefixSuccessor returns the smallest key greater than every key that
// starts with prefix, or nil when there is none.
func prefixSuccessor(prefix []byte) []byte {
	out := append([]byte{}, prefix...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0xFF {
			out[i]++
			return out[:i+1]
		}
	}
	return nil
}
