package memtable

import (
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"sort"
)

// --------------------------------------------------------------------------
// Retrieval
// --------------------------------------------------------------------------

func (e *Engine) RetrieveColumn(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, data []byte, grbit engine.RetrieveColumnGrbit, ibLongValue, itagSequence uint32) (uint32, engine.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return 0, status
	}
	var rec *record
	if grbit&engine.RetrieveCopy != 0 {
		if c.upd == nil {
			return 0, engine.ErrUpdateNotPrepared
		}
		rec = c.upd.copy
	} else if rec, status = c.current(); status < 0 {
		return 0, status
	}
	col, ok := c.t.columns[columnid]
	if !ok {
		return 0, engine.ErrColumnNotFound
	}
	v, present := col.value(rec, int(itagSequence))
	if !present {
		return 0, engine.WrnColumnNull
	}
	if ib := int(ibLongValue); ib < len(v) {
		v = v[ib:]
	} else {
		v = v[len(v):]
	}
	copy(data, v)
	if len(data) < len(v) {
		return uint32(len(v)), engine.WrnBufferTruncated
	}
	return uint32(len(v)), engine.StatusSuccess
}

// EnumerateColumns reports every value of the requested columns, or of
// every non-null column when count is zero.
func (e *Engine) EnumerateColumns(ses engine.Session, tid engine.TableID, columnids *engine.Block, count uint32, alloc engine.Allocator, maxDataSize uint32, grbit engine.EnumerateColumnsGrbit) (*engine.Block, uint32, engine.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return nil, 0, status
	}
	if alloc == nil {
		return nil, 0, engine.ErrInvalidParameter
	}
	rec, status := c.current()
	if status < 0 {
		return nil, 0, status
	}

	var ids []native.EnumColumnID
	if count == 0 {
		for id, col := range c.t.columns {
			if grbit&engine.EnumerateTaggedOnly != 0 && col.def.Grbit&engine.ColumndefTagged == 0 {
				continue
			}
			if _, present := col.value(rec, 1); present {
				ids = append(ids, native.EnumColumnID{ColumnID: id})
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].ColumnID < ids[j].ColumnID })
	} else {
		var err error
		if ids, err = e.opts.Layout.EnumColumnIDsFromNative(columnids, int(count)); err != nil {
			return nil, 0, engine.ErrInvalidParameter
		}
	}

	ecs := make([]native.EnumColumn, len(ids))
	for i, id := range ids {
		ecs[i] = enumerate(c.t, rec, id, int(maxDataSize), grbit)
	}
	blk, err := e.opts.Layout.EnumColumnsToNative(ecs, alloc)
	if err != nil {
		return nil, 0, engine.ErrOutOfMemory
	}
	return blk, uint32(len(ecs)), engine.StatusSuccess
}

func enumerate(t *table, rec *record, id native.EnumColumnID, maxDataSize int, grbit engine.EnumerateColumnsGrbit) native.EnumColumn {
	ec := native.EnumColumn{ColumnID: id.ColumnID}
	col, ok := t.columns[id.ColumnID]
	if !ok {
		ec.Err = engine.ErrColumnNotFound
		return ec
	}

	value := func(itag int) native.EnumColumnValue {
		v, present := col.value(rec, itag)
		if !present {
			return native.EnumColumnValue{ItagSequence: itag, Err: engine.WrnColumnNull}
		}
		out := native.EnumColumnValue{ItagSequence: itag}
		if grbit&engine.EnumeratePresenceOnly != 0 {
			return out
		}
		if maxDataSize > 0 && len(v) > maxDataSize {
			v = v[:maxDataSize]
			out.Err = engine.WrnBufferTruncated
		}
		out.Data = append([]byte{}, v...)
		return out
	}

	if len(id.TagSequences) > 0 {
		for _, tag := range id.TagSequences {
			ec.Values = append(ec.Values, value(tag))
		}
		return ec
	}

	n := len(rec.values[col.id])
	if n == 0 && col.defaultValue != nil {
		n = 1
	}
	if n == 0 {
		ec.Err = engine.WrnColumnNull
		return ec
	}
	for itag := 1; itag <= n; itag++ {
		ec.Values = append(ec.Values, value(itag))
	}
	if grbit&engine.EnumerateCompressOutput != 0 && n == 1 && ec.Values[0].Err == engine.StatusSuccess && ec.Values[0].Data != nil {
		ec.Data = ec.Values[0].Data
		ec.Err = engine.WrnColumnSingleValue
	}
	return ec
}
