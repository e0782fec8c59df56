package memtable

import (
	"bytes"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

// --------------------------------------------------------------------------
// Cursor state
// --------------------------------------------------------------------------

type position int

const (
	beforeFirst position = iota
	onEntry
	afterLast
)

// indexRange bounds Move in one direction.
type indexRange struct {
	limit     []byte
	upper     bool
	inclusive bool
}

func (r *indexRange) contains(key []byte) bool {
	c := bytes.Compare(key, r.limit)
	prefix := bytes.HasPrefix(key, r.limit)
	switch {
	case r.upper && r.inclusive:
		return c <= 0 || prefix
	case r.upper:
		return c < 0 && !prefix
	case r.inclusive:
		return c >= 0
	default:
		return c > 0 && !prefix
	}
}

// pendingUpdate is the copy buffer of a prepared update.
type pendingUpdate struct {
	prep   engine.Prep
	copy   *record
	target uint64 // record being replaced, 0 for inserts
}

// cursor is an open table handle: a position in one ordering of a table
// plus the search key and prepared update that belong to it.
type cursor struct {
	id  engine.TableID
	ses engine.Session
	t   *table
	idx *index // nil selects bookmark order

	pos     position
	cur     entry
	deleted bool // the current record was deleted through some cursor

	key     []byte
	keySegs int
	keyMade bool

	rng *indexRange
	upd *pendingUpdate
}

func (c *cursor) order() *index {
	if c.idx != nil {
		return c.idx
	}
	return c.t.clustered
}

func (c *cursor) setIndex(ix *index) {
	c.idx = ix
	c.pos = beforeFirst
	c.deleted = false
	c.keyMade = false
	c.key = nil
	c.keySegs = 0
	c.rng = nil
}

// refresh re-reads the current entry: a record updated since the cursor
// landed on it keeps the cursor but may carry a new key.
func (c *cursor) refresh() {
	if c.pos != onEntry || c.deleted {
		return
	}
	rec, ok := c.t.record(c.cur.bm)
	if !ok {
		c.deleted = true
		return
	}
	if key, ok := c.order().keyOf(rec, c.t); ok {
		c.cur.key = key
	}
}

func (c *cursor) current() (*record, engine.Status) {
	c.refresh()
	if c.pos != onEntry {
		return nil, engine.ErrNoCurrentRecord
	}
	if c.deleted {
		return nil, engine.ErrRecordDeleted
	}
	rec, _ := c.t.record(c.cur.bm)
	return rec, engine.StatusSuccess
}

func (c *cursor) land(e entry) {
	c.pos = onEntry
	c.cur = entry{key: e.key, bm: e.bm}
	c.deleted = false
}

// ---- walking ----

func (c *cursor) first() (entry, bool) { return c.order().entries.Min() }
func (c *cursor) last() (entry, bool)  { return c.order().entries.Max() }

func (c *cursor) after(from entry) (out entry, ok bool) {
	c.order().entries.AscendGreaterOrEqual(from, func(e entry) bool {
		if !from.less(e) {
			return true
		}
		out, ok = e, true
		return false
	})
	return out, ok
}

func (c *cursor) before(from entry) (out entry, ok bool) {
	c.order().entries.DescendLessOrEqual(from, func(e entry) bool {
		if !e.less(from) {
			return true
		}
		out, ok = e, true
		return false
	})
	return out, ok
}

func (c *cursor) moveFirst() bool {
	c.rng = nil
	e, ok := c.first()
	if !ok {
		c.pos = beforeFirst
		return false
	}
	c.land(e)
	return true
}

func (c *cursor) step(forward bool, keyNE bool) engine.Status {
	var (
		e  entry
		ok bool
	)
	switch {
	case forward && c.pos == beforeFirst:
		e, ok = c.first()
	case !forward && c.pos == afterLast:
		e, ok = c.last()
	case c.pos == onEntry:
		from := c.cur
		for {
			if forward {
				e, ok = c.after(from)
			} else {
				e, ok = c.before(from)
			}
			if !ok || !keyNE || !bytes.Equal(e.key, c.cur.key) {
				break
			}
			from = e
		}
	}
	if ok && c.rng != nil && !c.rng.contains(e.key) {
		ok = false
	}
	if !ok {
		if forward {
			c.pos = afterLast
		} else {
			c.pos = beforeFirst
		}
		c.rng = nil
		return engine.ErrNoCurrentRecord
	}
	c.land(e)
	return engine.StatusSuccess
}

// --------------------------------------------------------------------------
// Navigation
// --------------------------------------------------------------------------

func (e *Engine) Move(ses engine.Session, tid engine.TableID, offset int32, grbit engine.MoveGrbit) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	c.refresh()
	switch offset {
	case engine.MoveFirst:
		if !c.moveFirst() {
			return engine.ErrNoCurrentRecord
		}
		return engine.StatusSuccess
	case engine.MoveLast:
		c.rng = nil
		last, ok := c.last()
		if !ok {
			c.pos = afterLast
			return engine.ErrNoCurrentRecord
		}
		c.land(last)
		return engine.StatusSuccess
	case 0:
		_, status := c.current()
		return status
	}

	forward := offset > 0
	n := int64(offset)
	if n < 0 {
		n = -n
	}
	for ; n > 0; n-- {
		if status := c.step(forward, grbit&engine.MoveKeyNE != 0); status < 0 {
			return status
		}
	}
	return engine.StatusSuccess
}

func (e *Engine) GotoBookmark(ses engine.Session, tid engine.TableID, bookmark []byte) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	seq, ok := bmSeq(bookmark)
	if !ok {
		return engine.ErrInvalidBookmark
	}
	rec, ok := c.t.record(seq)
	if !ok {
		return engine.ErrRecordNotFound
	}
	key, ok := c.order().keyOf(rec, c.t)
	if !ok {
		return engine.ErrRecordNotFound
	}
	c.rng = nil
	c.land(entry{key: key, bm: seq})
	return engine.StatusSuccess
}

func (e *Engine) GetBookmark(ses engine.Session, tid engine.TableID, bookmark []byte) (uint32, engine.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return 0, status
	}
	if _, status := c.current(); status < 0 {
		return 0, status
	}
	if len(bookmark) < bookmarkSize {
		return bookmarkSize, engine.ErrBufferTooSmall
	}
	copy(bookmark, bmBytes(c.cur.bm))
	return bookmarkSize, engine.StatusSuccess
}

func (e *Engine) RetrieveKey(ses engine.Session, tid engine.TableID, key []byte, grbit engine.RetrieveKeyGrbit) (uint32, engine.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return 0, status
	}
	var k []byte
	if grbit&engine.RetrieveKeyCopy != 0 {
		if !c.keyMade {
			return 0, engine.ErrKeyNotMade
		}
		k = c.key
	} else {
		if _, status := c.current(); status < 0 {
			return 0, status
		}
		k = c.cur.key
	}
	copy(key, k)
	if len(key) < len(k) {
		return uint32(len(k)), engine.WrnBufferTruncated
	}
	return uint32(len(k)), engine.StatusSuccess
}

// --------------------------------------------------------------------------
// Keys, seeks and ranges
// --------------------------------------------------------------------------

func (e *Engine) MakeKey(ses engine.Session, tid engine.TableID, data []byte, grbit engine.MakeKeyGrbit) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	if grbit&engine.MakeKeyNewKey != 0 {
		c.key, c.keySegs, c.keyMade = nil, 0, false
	} else if !c.keyMade {
		return engine.ErrKeyNotMade
	}

	ix := c.order()
	if grbit&engine.MakeKeyNormalizedKey != 0 || len(ix.segments) == 0 {
		c.key = append([]byte{}, data...)
		c.keySegs = len(ix.segments)
		c.keyMade = true
		return engine.StatusSuccess
	}
	if c.keySegs >= len(ix.segments) {
		return engine.ErrInvalidParameter
	}

	seg := ix.segments[c.keySegs]
	present := len(data) > 0 || grbit&engine.MakeKeyKeyDataZeroLength != 0
	part := ix.normalizeSegment(seg, data, present)
	partial := grbit&(engine.MakeKeyPartialColumnStartLimit|engine.MakeKeyPartialColumnEndLimit) != 0
	if partial && present && variable(seg.col) && len(part) >= 3 {
		part = part[:len(part)-2] // drop the terminator so longer values match
	}
	c.key = append(c.key, part...)
	if grbit&(engine.MakeKeyFullColumnEndLimit|engine.MakeKeyPartialColumnEndLimit) != 0 {
		c.key = append(c.key, limitByte)
	}
	if c.t.keyMost > 0 && len(c.key) > c.t.keyMost {
		c.key = c.key[:c.t.keyMost]
	}
	c.keySegs++
	c.keyMade = true
	return engine.StatusSuccess
}

// Seek positions the cursor relative to the search key and consumes it.
func (e *Engine) Seek(ses engine.Session, tid engine.TableID, grbit engine.SeekGrbit) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	if !c.keyMade {
		return engine.ErrKeyNotMade
	}
	k := c.key
	c.keyMade, c.key, c.keySegs = false, nil, 0
	c.rng = nil

	entries := c.order().entries
	var (
		found entry
		ok    bool
	)
	ascendFrom := func(pivot []byte) {
		entries.AscendGreaterOrEqual(entry{key: pivot}, func(e entry) bool {
			found, ok = e, true
			return false
		})
	}
	descendBelow := func(pivot []byte) {
		if pivot == nil {
			found, ok = entries.Max()
			return
		}
		entries.DescendLessOrEqual(entry{key: pivot}, func(e entry) bool {
			found, ok = e, true
			return false
		})
	}

	switch {
	case grbit&engine.SeekEQ != 0:
		ascendFrom(k)
		ok = ok && bytes.HasPrefix(found.key, k)
	case grbit&engine.SeekGE != 0:
		ascendFrom(k)
	case grbit&engine.SeekGT != 0:
		if succ := prefixSuccessor(k); succ != nil {
			ascendFrom(succ)
		}
	case grbit&engine.SeekLE != 0:
		descendBelow(prefixSuccessor(k))
	case grbit&engine.SeekLT != 0:
		entries.DescendLessOrEqual(entry{key: k}, func(e entry) bool {
			found, ok = e, true
			return false
		})
	default:
		return engine.ErrInvalidGrbit
	}
	if !ok {
		return engine.ErrRecordNotFound
	}
	c.land(found)

	if grbit&engine.SeekSetIndexRange != 0 && grbit&engine.SeekEQ != 0 {
		c.rng = &indexRange{limit: k, upper: true, inclusive: true}
	}
	if grbit&(engine.SeekGE|engine.SeekLE) != 0 && !bytes.HasPrefix(found.key, k) {
		return engine.WrnSeekNotEqual
	}
	return engine.StatusSuccess
}

func (e *Engine) SetIndexRange(ses engine.Session, tid engine.TableID, grbit engine.SetIndexRangeGrbit) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	if grbit&engine.RangeRemove != 0 {
		c.rng = nil
		return engine.StatusSuccess
	}
	if !c.keyMade {
		return engine.ErrKeyNotMade
	}
	rng := &indexRange{
		limit:     c.key,
		upper:     grbit&engine.RangeUpperLimit != 0,
		inclusive: grbit&engine.RangeInclusive != 0,
	}
	c.keyMade, c.key, c.keySegs = false, nil, 0
	if _, status := c.current(); status < 0 {
		return status
	}
	if !rng.contains(c.cur.key) {
		c.rng = nil
		return engine.ErrNoCurrentRecord
	}
	if grbit&engine.RangeInstantDuration == 0 {
		c.rng = rng
	}
	return engine.StatusSuccess
}

// IndexRecordCount counts entries from the current one to the end of the
// ordering or range, stopping at most when most is not zero.
func (e *Engine) IndexRecordCount(ses engine.Session, tid engine.TableID, most uint32) (uint32, engine.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return 0, status
	}
	if _, status := c.current(); status < 0 {
		return 0, status
	}
	var n uint32
	c.order().entries.AscendGreaterOrEqual(c.cur, func(en entry) bool {
		if c.rng != nil && !c.rng.contains(en.key) {
			return false
		}
		n++
		return most == 0 || n < most
	})
	return n, engine.StatusSuccess
}
