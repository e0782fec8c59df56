package memtable

import (
	"bytes"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

// --------------------------------------------------------------------------
// Record updates
// --------------------------------------------------------------------------

func (e *Engine) PrepareUpdate(ses engine.Session, tid engine.TableID, prep engine.Prep) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	if prep == engine.PrepCancel {
		if c.upd == nil {
			return engine.ErrUpdateNotPrepared
		}
		c.upd = nil
		return engine.StatusSuccess
	}
	if c.upd != nil {
		return engine.ErrAlreadyPrepared
	}

	upd := &pendingUpdate{prep: prep}
	switch prep {
	case engine.PrepInsert:
		upd.copy = &record{values: make(map[engine.ColumnID][][]byte)}
		c.t.fillAutoincrement(upd.copy)
	case engine.PrepInsertCopy:
		rec, status := c.current()
		if status < 0 {
			return status
		}
		upd.copy = rec.clone()
		upd.copy.seq = 0
		c.t.fillAutoincrement(upd.copy)
	case engine.PrepReplace, engine.PrepReplaceNoLock:
		rec, status := c.current()
		if status < 0 {
			return status
		}
		if prep == engine.PrepReplace {
			if status := e.lock(s, c.t, rec.seq); status < 0 {
				return status
			}
		}
		upd.copy = rec.clone()
		upd.target = rec.seq
	default:
		return engine.ErrInvalidParameter
	}
	c.upd = upd
	return engine.StatusSuccess
}

func (t *table) fillAutoincrement(rec *record) {
	for _, col := range t.columns {
		if col.def.Grbit&engine.ColumndefAutoincrement == 0 {
			continue
		}
		t.autoinc[col.id]++
		n := t.autoinc[col.id]
		var v []byte
		if col.def.Coltyp == engine.ColtypLong || col.def.Coltyp == engine.ColtypUnsignedLong {
			v = make([]byte, 4)
			hostOrder.PutUint32(v, uint32(n))
		} else {
			v = make([]byte, 8)
			hostOrder.PutUint64(v, uint64(n))
		}
		rec.values[col.id] = [][]byte{v}
	}
}

func (e *Engine) SetColumn(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, data []byte, grbit engine.SetColumnGrbit, ibLongValue, itagSequence uint32) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	return e.setColumn(c, columnid, data, grbit, int(ibLongValue), int(itagSequence))
}

func (e *Engine) SetColumns(ses engine.Session, tid engine.TableID, setcolumns *engine.Block, count uint32) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	scs, err := e.opts.Layout.SetColumnsFromNative(setcolumns, int(count))
	if err != nil {
		return engine.ErrInvalidParameter
	}
	for i, sc := range scs {
		var data []byte
		switch {
		case sc.Data != nil:
			if sc.DataSize > len(sc.Data) {
				return engine.ErrInvalidBufferSize
			}
			data = sc.Data[:sc.DataSize]
		case sc.Grbit&engine.SetColumnSizeLV != 0:
			if sc.DataSize > e.opts.LongValueMost {
				e.opts.Layout.SetSetColumnErr(setcolumns, i, engine.ErrInvalidParameter)
				return engine.ErrInvalidParameter
			}
			data = make([]byte, sc.DataSize)
		}
		status := e.setColumn(c, sc.ColumnID, data, sc.Grbit, sc.LongValueOffset, sc.ItagSequence)
		e.opts.Layout.SetSetColumnErr(setcolumns, i, status)
		if status < 0 {
			return status
		}
	}
	return engine.StatusSuccess
}

// setColumn changes one value in the copy buffer of a prepared update.
// itag 0 appends to a multi-valued column; a null value at a tag deletes
// that value.
func (e *Engine) setColumn(c *cursor, columnid engine.ColumnID, data []byte, grbit engine.SetColumnGrbit, ib, itag int) engine.Status {
	if c.upd == nil {
		return engine.ErrUpdateNotPrepared
	}
	col, ok := c.t.columns[columnid]
	if !ok {
		return engine.ErrColumnNotFound
	}
	multi := col.multiValued()
	if !multi && itag > 1 {
		return engine.ErrBadItagSequence
	}

	rec := c.upd.copy
	vals := append([][]byte(nil), rec.values[col.id]...)
	slot := itag - 1 // position replaced, -1 appends
	if !multi {
		slot = 0
	}
	var existing []byte
	if slot >= 0 && slot < len(vals) {
		existing = vals[slot]
	}

	lv := grbit & (engine.SetColumnAppendLV | engine.SetColumnOverwriteLV | engine.SetColumnSizeLV)
	null := len(data) == 0 && grbit&engine.SetColumnZeroLength == 0 && lv == 0

	var value []byte
	switch {
	case null:
	case grbit&engine.SetColumnSizeLV != 0:
		value = make([]byte, len(data))
		copy(value, existing)
	case grbit&engine.SetColumnAppendLV != 0:
		value = append(append([]byte{}, existing...), data...)
	case grbit&engine.SetColumnOverwriteLV != 0:
		if ib > len(existing) {
			return engine.ErrInvalidParameter
		}
		value = append([]byte{}, existing...)
		if end := ib + len(data); end > len(value) {
			value = append(value, make([]byte, end-len(value))...)
		}
		copy(value[ib:], data)
	default:
		value = append([]byte{}, data...)
	}

	if !null {
		if size, fixed := col.def.Coltyp.FixedSize(); fixed && len(value) != size {
			return engine.ErrInvalidBufferSize
		}
		if !col.def.Coltyp.IsLong() && len(value) > e.opts.ColumnMost {
			return engine.ErrInvalidBufferSize
		}
		if len(value) > e.opts.LongValueMost {
			return engine.ErrInvalidParameter
		}
		if grbit&engine.SetColumnUniqueMultiValues != 0 {
			for i, v := range vals {
				if i != slot && bytes.Equal(v, value) {
					return engine.ErrMultiValuedDuplicate
				}
			}
		}
	}

	switch {
	case null && slot >= 0 && slot < len(vals):
		vals = append(vals[:slot], vals[slot+1:]...)
	case null:
	case slot >= 0 && slot < len(vals):
		vals[slot] = value
	default:
		vals = append(vals, value)
	}
	if len(vals) == 0 {
		delete(rec.values, col.id)
	} else {
		rec.values[col.id] = vals
	}
	return engine.StatusSuccess
}

// Update stores the copy buffer. Inserts leave the cursor where it was.
func (e *Engine) Update(ses engine.Session, tid engine.TableID, bookmark []byte) (uint32, engine.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return 0, status
	}
	if c.upd == nil {
		return 0, engine.ErrUpdateNotPrepared
	}
	if bookmark != nil && len(bookmark) < bookmarkSize {
		return bookmarkSize, engine.ErrBufferTooSmall
	}
	t, rec := c.t, c.upd.copy
	for _, col := range t.columns {
		if col.def.Grbit&engine.ColumndefNotNULL == 0 {
			continue
		}
		if _, present := col.value(rec, 1); !present {
			return 0, engine.ErrNullInvalid
		}
	}

	var before *record
	switch c.upd.prep {
	case engine.PrepInsert, engine.PrepInsertCopy:
		rec.seq = t.nextSeq + 1
	default:
		old, ok := t.record(c.upd.target)
		if !ok {
			return 0, engine.ErrRecordDeleted
		}
		before = old
		rec.seq = c.upd.target
	}
	if status := e.lock(s, t, rec.seq); status < 0 {
		return 0, status
	}
	if status := t.checkIndexes(rec); status < 0 {
		return 0, status
	}
	if before == nil {
		t.nextSeq = rec.seq
	}

	s.remember(t, rec.seq, before)
	t.store(rec.seq, rec)
	c.upd = nil

	if bookmark != nil {
		copy(bookmark, bmBytes(rec.seq))
	}
	return bookmarkSize, engine.StatusSuccess
}

func (e *Engine) Delete(ses engine.Session, tid engine.TableID) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	rec, status := c.current()
	if status < 0 {
		return status
	}
	if status := e.lock(s, c.t, rec.seq); status < 0 {
		return status
	}
	s.remember(c.t, rec.seq, rec)
	c.t.store(rec.seq, nil)
	c.deleted = true
	return engine.StatusSuccess
}

// EscrowUpdate adds a 4-byte delta to an escrow column of the current
// record and returns the value it had before.
func (e *Engine) EscrowUpdate(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, delta []byte, previous []byte, grbit engine.EscrowUpdateGrbit) (uint32, engine.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return 0, status
	}
	col, ok := c.t.columns[columnid]
	if !ok {
		return 0, engine.ErrColumnNotFound
	}
	if col.def.Grbit&engine.ColumndefEscrowUpdate == 0 || col.def.Coltyp != engine.ColtypLong {
		return 0, engine.ErrInvalidOperation
	}
	if len(delta) != 4 {
		return 0, engine.ErrInvalidBufferSize
	}
	rec, status := c.current()
	if status < 0 {
		return 0, status
	}

	old := make([]byte, 4)
	if v, present := col.value(rec, 1); present && len(v) == 4 {
		copy(old, v)
	}
	sum := make([]byte, 4)
	hostOrder.PutUint32(sum, uint32(int32(hostOrder.Uint32(old))+int32(hostOrder.Uint32(delta))))

	after := rec.clone()
	after.values[col.id] = [][]byte{sum}
	if grbit&engine.EscrowUpdateNoRollback == 0 {
		s.remember(c.t, rec.seq, rec)
	}
	c.t.store(rec.seq, after)

	copy(previous, old)
	if previous != nil && len(previous) < 4 {
		return 4, engine.WrnBufferTruncated
	}
	return 4, engine.StatusSuccess
}
