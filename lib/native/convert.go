package native

import (
	"errors"

	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

// ErrAllocation is returned when an engine.Allocator hands out less memory
// than requested.
var ErrAllocation = errors.New("native: allocator returned too little memory")

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// checkArray verifies that blk holds count images of s, each carrying the
// exact size of s in its size field.
func checkArray(op string, s *Shape, blk *engine.Block, count int) error {
	if count < 0 {
		return engine.RangeError(op, "count", "negative count %d", count)
	}
	if count == 0 {
		return nil
	}
	if blk == nil {
		return engine.NullError(op, s.Name)
	}
	for i := 0; i < count; i++ {
		base := i * s.Size
		if base+4 > blk.Len() {
			return engine.RangeError(op, "count", "%d %s images need %d bytes, have %d", count, s.Name, count*s.Size, blk.Len())
		}
		if cb := hostOrder.Uint32(blk.Bytes[base:]); int(cb) != s.Size {
			return &VersionError{Struct: s.Name, Size: cb}
		}
	}
	if blk.Len() < count*s.Size {
		return engine.RangeError(op, "count", "%d %s images need %d bytes, have %d", count, s.Name, count*s.Size, blk.Len())
	}
	return nil
}

func refBytes(r Rec, field string) []byte {
	if ref := r.Ref(field); ref != nil {
		return ref.Bytes
	}
	return nil
}

func refString(r Rec, field string) (string, error) {
	b := refBytes(r, field)
	if b == nil {
		return "", nil
	}
	return codec.TrimNull(b)
}

func alloc(a engine.Allocator, size int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	b := a(size)
	if len(b) < size {
		return nil, ErrAllocation
	}
	return b[:size], nil
}

// --------------------------------------------------------------------------
// JET_COLUMNDEF
// --------------------------------------------------------------------------

// ColumnDefsToNative builds an array of JET_COLUMNDEF images.
func (l Layout) ColumnDefsToNative(op string, cds []ColumnDef) (*engine.Block, error) {
	s := l.Catalog().ColumnDef
	blk := engine.NewBlock(len(cds) * s.Size)
	for i, cd := range cds {
		if err := cd.Validate(op); err != nil {
			return nil, err
		}
		putColumnDef(s.At(blk, i), cd)
	}
	return blk, nil
}

// ColumnDefToNative builds a single JET_COLUMNDEF image.
func (l Layout) ColumnDefToNative(op string, cd ColumnDef) (*engine.Block, error) {
	return l.ColumnDefsToNative(op, []ColumnDef{cd})
}

// PutColumnDef writes a JET_COLUMNDEF image into dst.
func (l Layout) PutColumnDef(dst []byte, cd ColumnDef) error {
	s := l.Catalog().ColumnDef
	if len(dst) < s.Size {
		return engine.RangeError("native.PutColumnDef", "dst", "need %d bytes, have %d", s.Size, len(dst))
	}
	putColumnDef(s.At(&engine.Block{Bytes: dst}, 0), cd)
	return nil
}

func putColumnDef(r Rec, cd ColumnDef) {
	r.SetU32(fCbStruct, uint32(r.Shape.Size))
	r.SetU32(fColumnID, uint32(cd.ColumnID))
	r.SetU32(fColtyp, uint32(cd.Coltyp))
	r.SetU16(fCountry, cd.Country)
	r.SetU16(fLangid, cd.Langid)
	r.SetU16(fCP, uint16(cd.CP))
	r.SetU16(fCollate, cd.Collate)
	r.SetU32(fCbMax, cd.MaxLength)
	r.SetU32(fGrbit, uint32(cd.Grbit))
}

// ColumnDefsFromNative decodes count JET_COLUMNDEF images.
func (l Layout) ColumnDefsFromNative(blk *engine.Block, count int) ([]ColumnDef, error) {
	s := l.Catalog().ColumnDef
	if err := checkArray("native.ColumnDefsFromNative", s, blk, count); err != nil {
		return nil, err
	}
	out := make([]ColumnDef, count)
	for i := range out {
		r := s.At(blk, i)
		out[i] = ColumnDef{
			ColumnID:  engine.ColumnID(r.U32(fColumnID)),
			Coltyp:    engine.Coltyp(r.U32(fColtyp)),
			Country:   r.U16(fCountry),
			Langid:    r.U16(fLangid),
			CP:        engine.CP(r.U16(fCP)),
			Collate:   r.U16(fCollate),
			MaxLength: r.U32(fCbMax),
			Grbit:     engine.ColumndefGrbit(r.U32(fGrbit)),
		}
	}
	return out, nil
}

// ColumnDefFromNative decodes a single JET_COLUMNDEF image.
func (l Layout) ColumnDefFromNative(b []byte) (ColumnDef, error) {
	cds, err := l.ColumnDefsFromNative(engine.BytesBlock(b), 1)
	if err != nil {
		return ColumnDef{}, err
	}
	return cds[0], nil
}

// --------------------------------------------------------------------------
// JET_INDEXCREATE
// --------------------------------------------------------------------------

// IndexCreatesToNative builds consecutive JET_INDEXCREATE images. Each
// image takes the plain or the extended variant on its own, and its size
// field tells the reader where the next one starts.
func (l Layout) IndexCreatesToNative(op string, ics []IndexCreate) (*engine.Block, error) {
	c := l.Catalog()
	total := 0
	for _, ic := range ics {
		if err := ic.Validate(op); err != nil {
			return nil, err
		}
		total += l.indexCreateShape(ic).Size
	}

	blk := engine.NewBlock(total)
	off := 0
	for _, ic := range ics {
		s := l.indexCreateShape(ic)
		r := Rec{Block: blk, Base: off, Shape: s}
		grbit := ic.Grbit &^ indexCreateExtended

		r.SetU32(fCbStruct, uint32(s.Size))
		r.SetU32(fCbKey, uint32(ic.effectiveKeyLength()))
		r.SetU32(fDensity, uint32(ic.Density))
		r.SetU32(fLcid, ic.Lcid)
		r.SetI32(fErr, int32(ic.Err))

		if s == c.IndexCreateExtended {
			grbit |= indexCreateExtended
			r.SetWord(fVarSegMac, uint64(ic.VarSegMac))
			if n := len(ic.ConditionalColumns); n > 0 {
				cs := c.ConditionalColumn
				child := engine.NewBlock(n * cs.Size)
				for j, cc := range ic.ConditionalColumns {
					cr := cs.At(child, j)
					cr.SetU32(fCbStruct, uint32(cs.Size))
					cr.SetU32(fGrbit, uint32(cc.Grbit))
				}
				r.SetRef(fConditionalColumns, child)
				r.SetU32(fConditionalCount, uint32(n))
			}
		}
		r.SetU32(fGrbit, uint32(grbit))
		off += s.Size
	}
	return blk, nil
}

// IndexCreateToNative builds a single JET_INDEXCREATE image.
func (l Layout) IndexCreateToNative(op string, ic IndexCreate) (*engine.Block, error) {
	return l.IndexCreatesToNative(op, []IndexCreate{ic})
}

func (l Layout) indexCreateShape(ic IndexCreate) *Shape {
	if ic.extended() {
		return l.Catalog().IndexCreateExtended
	}
	return l.Catalog().IndexCreate
}

// indexCreateRecs walks count consecutive JET_INDEXCREATE images.
func (l Layout) indexCreateRecs(op string, blk *engine.Block, count int) ([]Rec, error) {
	c := l.Catalog()
	if count < 0 {
		return nil, engine.RangeError(op, "count", "negative count %d", count)
	}
	if count > 0 && blk == nil {
		return nil, engine.NullError(op, c.IndexCreate.Name)
	}
	recs := make([]Rec, 0, count)
	off := 0
	for i := 0; i < count; i++ {
		if off+4 > blk.Len() {
			return nil, engine.RangeError(op, "count", "image %d starts past the end of the block", i)
		}
		var s *Shape
		switch cb := hostOrder.Uint32(blk.Bytes[off:]); int(cb) {
		case c.IndexCreate.Size:
			s = c.IndexCreate
		case c.IndexCreateExtended.Size:
			s = c.IndexCreateExtended
		default:
			return nil, &VersionError{Struct: c.IndexCreate.Name, Size: cb}
		}
		if off+s.Size > blk.Len() {
			return nil, engine.RangeError(op, "count", "image %d is truncated", i)
		}
		recs = append(recs, Rec{Block: blk, Base: off, Shape: s})
		off += s.Size
	}
	return recs, nil
}

// IndexCreatesFromNative decodes count consecutive JET_INDEXCREATE images.
// Strings are resolved when they were bound.
func (l Layout) IndexCreatesFromNative(blk *engine.Block, count int) ([]IndexCreate, error) {
	const op = "native.IndexCreatesFromNative"
	recs, err := l.indexCreateRecs(op, blk, count)
	if err != nil {
		return nil, err
	}
	out := make([]IndexCreate, len(recs))
	for i, r := range recs {
		ic := IndexCreate{
			KeyLength: int(r.U32(fCbKey)),
			Grbit:     engine.CreateIndexGrbit(r.U32(fGrbit)) &^ indexCreateExtended,
			Density:   int(r.U32(fDensity)),
			Lcid:      r.U32(fLcid),
			Err:       engine.Status(r.I32(fErr)),
		}
		if ic.Name, err = refString(r, fIndexName); err != nil {
			return nil, err
		}
		if key := refBytes(r, fKey); key != nil {
			if n := ic.KeyLength * 2; n < len(key) {
				key = key[:n]
			}
			s, err := codec.DecodeUnicode(key[:len(key)&^1])
			if err != nil {
				return nil, err
			}
			if len(s) > 0 && s[len(s)-1] == 0 {
				s = s[:len(s)-1]
			}
			ic.Key = s
		}
		if r.Shape.Has(fVarSegMac) {
			ic.VarSegMac = int(r.Word(fVarSegMac))
			if ic.ConditionalColumns, err = l.conditionalColumnsFromNative(r); err != nil {
				return nil, err
			}
		}
		out[i] = ic
	}
	return out, nil
}

func (l Layout) conditionalColumnsFromNative(r Rec) ([]ConditionalColumn, error) {
	n := int(r.U32(fConditionalCount))
	if n == 0 {
		return nil, nil
	}
	cs := l.Catalog().ConditionalColumn
	child := r.Ref(fConditionalColumns)
	if err := checkArray("native.IndexCreatesFromNative", cs, child, n); err != nil {
		return nil, err
	}
	out := make([]ConditionalColumn, n)
	for j := range out {
		cr := cs.At(child, j)
		name, err := refString(cr, fColumnName)
		if err != nil {
			return nil, err
		}
		out[j] = ConditionalColumn{Name: name, Grbit: engine.ConditionalColumnGrbit(cr.U32(fGrbit))}
	}
	return out, nil
}

// SetIndexCreateErr stores the per-index result of image i.
func (l Layout) SetIndexCreateErr(blk *engine.Block, count, i int, status engine.Status) error {
	recs, err := l.indexCreateRecs("native.SetIndexCreateErr", blk, count)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(recs) {
		return engine.RangeError("native.SetIndexCreateErr", "i", "index %d out of %d", i, len(recs))
	}
	recs[i].SetI32(fErr, int32(status))
	return nil
}

// --------------------------------------------------------------------------
// JET_SETCOLUMN
// --------------------------------------------------------------------------

// SetColumnsToNative builds an array of JET_SETCOLUMN images with empty
// data references.
func (l Layout) SetColumnsToNative(op string, scs []SetColumn) (*engine.Block, error) {
	s := l.Catalog().SetColumn
	blk := engine.NewBlock(len(scs) * s.Size)
	for i, sc := range scs {
		if err := sc.Validate(op); err != nil {
			return nil, err
		}
		r := s.At(blk, i)
		r.SetU32(fCbStruct, uint32(s.Size))
		r.SetU32(fColumnID, uint32(sc.ColumnID))
		r.SetU32(fCbData, uint32(sc.DataSize))
		r.SetU32(fGrbit, uint32(sc.Grbit))
		r.SetU32(fLongValueOffset, uint32(sc.LongValueOffset))
		r.SetU32(fItagSequence, uint32(sc.ItagSequence))
		r.SetI32(fErr, int32(sc.Err))
	}
	return blk, nil
}

// SetColumnsFromNative decodes count JET_SETCOLUMN images.
func (l Layout) SetColumnsFromNative(blk *engine.Block, count int) ([]SetColumn, error) {
	s := l.Catalog().SetColumn
	if err := checkArray("native.SetColumnsFromNative", s, blk, count); err != nil {
		return nil, err
	}
	out := make([]SetColumn, count)
	for i := range out {
		r := s.At(blk, i)
		out[i] = SetColumn{
			ColumnID:        engine.ColumnID(r.U32(fColumnID)),
			Data:            refBytes(r, fData),
			DataSize:        int(r.U32(fCbData)),
			Grbit:           engine.SetColumnGrbit(r.U32(fGrbit)),
			LongValueOffset: int(r.U32(fLongValueOffset)),
			ItagSequence:    int(r.U32(fItagSequence)),
			Err:             engine.Status(r.I32(fErr)),
		}
	}
	return out, nil
}

// SetSetColumnErr stores the per-entry result of image i.
func (l Layout) SetSetColumnErr(blk *engine.Block, i int, status engine.Status) {
	s := l.Catalog().SetColumn
	s.At(blk, i).SetI32(fErr, int32(status))
}

// --------------------------------------------------------------------------
// JET_INDEXRANGE
// --------------------------------------------------------------------------

// IndexRangesToNative builds an array of JET_INDEXRANGE images.
func (l Layout) IndexRangesToNative(ranges []IndexRange) *engine.Block {
	s := l.Catalog().IndexRange
	blk := engine.NewBlock(len(ranges) * s.Size)
	for i, ir := range ranges {
		r := s.At(blk, i)
		r.SetU32(fCbStruct, uint32(s.Size))
		r.SetWord(fTableID, uint64(ir.TableID))
		r.SetU32(fGrbit, uint32(ir.Grbit|engine.IndexRangeTableID))
	}
	return blk
}

// IndexRangesFromNative decodes count JET_INDEXRANGE images.
func (l Layout) IndexRangesFromNative(blk *engine.Block, count int) ([]IndexRange, error) {
	s := l.Catalog().IndexRange
	if err := checkArray("native.IndexRangesFromNative", s, blk, count); err != nil {
		return nil, err
	}
	out := make([]IndexRange, count)
	for i := range out {
		r := s.At(blk, i)
		out[i] = IndexRange{TableID: engine.TableID(r.Word(fTableID)), Grbit: engine.IndexRangeGrbit(r.U32(fGrbit))}
	}
	return out, nil
}

// --------------------------------------------------------------------------
// JET_ENUMCOLUMNID
// --------------------------------------------------------------------------

// EnumColumnIDsToNative builds an array of JET_ENUMCOLUMNID images. Tag
// lists are numeric and attached directly.
func (l Layout) EnumColumnIDsToNative(op string, ids []EnumColumnID) (*engine.Block, error) {
	s := l.Catalog().EnumColumnID
	blk := engine.NewBlock(len(ids) * s.Size)
	for i, id := range ids {
		r := s.At(blk, i)
		r.SetU32(fCbStruct, uint32(s.Size))
		r.SetU32(fColumnID, uint32(id.ColumnID))
		if n := len(id.TagSequences); n > 0 {
			tags := engine.NewBlock(4 * n)
			for j, tag := range id.TagSequences {
				if tag < 0 {
					return nil, engine.RangeError(op, "TagSequences", "negative tag %d", tag)
				}
				hostOrder.PutUint32(tags.Bytes[4*j:], uint32(tag))
			}
			r.SetU32(fTagCount, uint32(n))
			r.SetRef(fTagSequences, tags)
		}
	}
	return blk, nil
}

// EnumColumnIDsFromNative decodes count JET_ENUMCOLUMNID images.
func (l Layout) EnumColumnIDsFromNative(blk *engine.Block, count int) ([]EnumColumnID, error) {
	const op = "native.EnumColumnIDsFromNative"
	s := l.Catalog().EnumColumnID
	if err := checkArray(op, s, blk, count); err != nil {
		return nil, err
	}
	out := make([]EnumColumnID, count)
	for i := range out {
		r := s.At(blk, i)
		out[i].ColumnID = engine.ColumnID(r.U32(fColumnID))
		n := int(r.U32(fTagCount))
		if n == 0 {
			continue
		}
		tags := refBytes(r, fTagSequences)
		if len(tags) < 4*n {
			return nil, engine.RangeError(op, fTagSequences, "%d tags need %d bytes, have %d", n, 4*n, len(tags))
		}
		out[i].TagSequences = make([]int, n)
		for j := range out[i].TagSequences {
			out[i].TagSequences[j] = int(hostOrder.Uint32(tags[4*j:]))
		}
	}
	return out, nil
}

// --------------------------------------------------------------------------
// JET_ENUMCOLUMN / JET_ENUMCOLUMNVALUE
// --------------------------------------------------------------------------

// EnumColumnsToNative builds an array of JET_ENUMCOLUMN images. Every piece
// of memory, the array included, comes from a.
func (l Layout) EnumColumnsToNative(ecs []EnumColumn, a engine.Allocator) (*engine.Block, error) {
	c := l.Catalog()
	s, vs := c.EnumColumn, c.EnumColumnValue

	top, err := alloc(a, len(ecs)*s.Size)
	if err != nil {
		return nil, err
	}
	blk := &engine.Block{Bytes: top}
	for i, ec := range ecs {
		r := s.At(blk, i)
		r.SetU32(fCbStruct, uint32(s.Size))
		r.SetU32(fColumnID, uint32(ec.ColumnID))
		r.SetI32(fErr, int32(ec.Err))

		if n := len(ec.Values); n > 0 {
			vb, err := alloc(a, n*vs.Size)
			if err != nil {
				return nil, err
			}
			values := &engine.Block{Bytes: vb}
			for j, v := range ec.Values {
				vr := vs.At(values, j)
				vr.SetU32(fCbStruct, uint32(vs.Size))
				vr.SetU32(fItagSequence, uint32(v.ItagSequence))
				vr.SetI32(fErr, int32(v.Err))
				vr.SetU32(fCbData, uint32(len(v.Data)))
				if v.Data != nil {
					data, err := alloc(a, len(v.Data))
					if err != nil {
						return nil, err
					}
					copy(data, v.Data)
					vr.SetRef(fData, &engine.Block{Bytes: data})
				}
			}
			r.SetU32(fValueCount, uint32(n))
			r.SetRef(fValues, values)
		}

		if ec.Data != nil {
			data, err := alloc(a, len(ec.Data))
			if err != nil {
				return nil, err
			}
			copy(data, ec.Data)
			r.SetU32(fCbData, uint32(len(ec.Data)))
			r.SetRef(fData, &engine.Block{Bytes: data})
		}
	}
	return blk, nil
}

// EnumColumnsFromNative decodes count JET_ENUMCOLUMN images.
func (l Layout) EnumColumnsFromNative(blk *engine.Block, count int) ([]EnumColumn, error) {
	const op = "native.EnumColumnsFromNative"
	c := l.Catalog()
	s, vs := c.EnumColumn, c.EnumColumnValue
	if err := checkArray(op, s, blk, count); err != nil {
		return nil, err
	}
	out := make([]EnumColumn, count)
	for i := range out {
		r := s.At(blk, i)
		ec := EnumColumn{
			ColumnID: engine.ColumnID(r.U32(fColumnID)),
			Err:      engine.Status(r.I32(fErr)),
		}
		if n := int(r.U32(fValueCount)); n > 0 {
			values := r.Ref(fValues)
			if err := checkArray(op, vs, values, n); err != nil {
				return nil, err
			}
			ec.Values = make([]EnumColumnValue, n)
			for j := range ec.Values {
				vr := vs.At(values, j)
				ec.Values[j] = EnumColumnValue{
					ItagSequence: int(vr.U32(fItagSequence)),
					Err:          engine.Status(vr.I32(fErr)),
					Data:         clip(refBytes(vr, fData), int(vr.U32(fCbData))),
				}
			}
		}
		ec.Data = clip(refBytes(r, fData), int(r.U32(fCbData)))
		out[i] = ec
	}
	return out, nil
}

func clip(b []byte, n int) []byte {
	if b == nil {
		return nil
	}
	if n < len(b) {
		return b[:n]
	}
	return b
}

// --------------------------------------------------------------------------
// JET_RECORDLIST
// --------------------------------------------------------------------------

// PutRecordList writes a JET_RECORDLIST image into dst.
func (l Layout) PutRecordList(dst []byte, rl RecordList) error {
	s := l.Catalog().RecordList
	if len(dst) < s.Size {
		return engine.RangeError("native.PutRecordList", "dst", "need %d bytes, have %d", s.Size, len(dst))
	}
	r := s.At(&engine.Block{Bytes: dst}, 0)
	r.SetU32(fCbStruct, uint32(s.Size))
	r.SetWord(fTableID, uint64(rl.TableID))
	r.SetU32(fRecordCount, uint32(rl.Count))
	r.SetU32(fBookmarkColumn, uint32(rl.BookmarkColumn))
	return nil
}

// RecordListFromNative decodes a JET_RECORDLIST image.
func (l Layout) RecordListFromNative(b []byte) (RecordList, error) {
	s := l.Catalog().RecordList
	blk := engine.BytesBlock(b)
	if err := checkArray("native.RecordListFromNative", s, blk, 1); err != nil {
		return RecordList{}, err
	}
	r := s.At(blk, 0)
	return RecordList{
		TableID:        engine.TableID(r.Word(fTableID)),
		Count:          int(r.U32(fRecordCount)),
		BookmarkColumn: engine.ColumnID(r.U32(fBookmarkColumn)),
	}, nil
}
