package memtable

import (
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"sort"
	"strconv"
)

// IntersectIndexes collects the bookmarks present in every given range and
// returns them in a new temporary table, one record per bookmark in
// bookmark order. Each range runs from the cursor's current entry to the
// end of its index range.
func (e *Engine) IntersectIndexes(ses engine.Session, ranges *engine.Block, count uint32, grbit engine.IntersectIndexesGrbit, recordlist []byte) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, status := e.session(ses)
	if status < 0 {
		return status
	}
	if count < 2 {
		return engine.ErrInvalidParameter
	}
	if len(recordlist) < e.opts.Layout.Catalog().RecordList.Size {
		return engine.ErrInvalidBufferSize
	}
	irs, err := e.opts.Layout.IndexRangesFromNative(ranges, int(count))
	if err != nil {
		return engine.ErrInvalidParameter
	}

	var (
		base   *table
		counts = make(map[uint64]int)
	)
	for _, ir := range irs {
		c, ok := s.cursors[ir.TableID]
		if !ok {
			return engine.ErrInvalidTableID
		}
		if base == nil {
			base = c.t
		} else if c.t != base {
			return engine.ErrInvalidParameter
		}
		if _, status := c.current(); status < 0 {
			return status
		}
		seen := make(map[uint64]bool)
		c.order().entries.AscendGreaterOrEqual(c.cur, func(en entry) bool {
			if c.rng != nil && !c.rng.contains(en.key) {
				return false
			}
			if !seen[en.bm] {
				seen[en.bm] = true
				counts[en.bm]++
			}
			return true
		})
	}

	var hits []uint64
	for seq, n := range counts {
		if n == len(irs) {
			hits = append(hits, seq)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i] < hits[j] })

	seq := e.nextTemp.Add(1)
	name := "intersect#" + strconv.FormatUint(seq, 10)
	t := newTable(nameKey(name), name, true, e.opts.KeyMost)
	col := t.addColumn("", native.ColumnDef{Coltyp: engine.ColtypBinary, Grbit: engine.ColumndefTTKey}, nil)
	ix := &index{name: "primary", segments: []segment{{col: col}}, grbit: engine.CreateIndexPrimary, entries: newEntryTree()}
	t.indexes[nameKey(ix.name)] = ix
	t.primary = ix
	for _, bm := range hits {
		t.nextSeq++
		t.store(t.nextSeq, &record{seq: t.nextSeq, values: map[engine.ColumnID][][]byte{col.id: {bmBytes(bm)}}})
	}
	e.tables.Store(t.key, t)
	c := e.openCursor(s, t)

	rl := native.RecordList{TableID: c.id, Count: len(hits), BookmarkColumn: col.id}
	if err := e.opts.Layout.PutRecordList(recordlist, rl); err != nil {
		return engine.ErrInvalidBufferSize
	}
	log.Debugf("session %s: intersection of %d ranges holds %d records", ses, len(irs), len(hits))
	return engine.StatusSuccess
}
