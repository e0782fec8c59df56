package memtable

import (
	"bytes"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"github.com/google/btree"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Schema and storage
// --------------------------------------------------------------------------

type column struct {
	id           engine.ColumnID
	name         string
	def          native.ColumnDef
	defaultValue []byte
}

func (c *column) multiValued() bool { return c.def.Grbit&engine.ColumndefMultiValued != 0 }

type segment struct {
	col  *column
	desc bool
}

type index struct {
	name        string
	segments    []segment
	grbit       engine.CreateIndexGrbit
	density     int
	varSegMac   int
	conditional []native.ConditionalColumn
	conditions  []*column // resolved conditional columns, same order
	entries     *btree.BTreeG[entry]
}

func (ix *index) unique() bool {
	return ix.grbit&(engine.CreateIndexUnique|engine.CreateIndexPrimary) != 0
}

// entry is one position of an ordering: the normalized key and the record
// it belongs to. Bookmark order uses the bookmark itself as the key.
type entry struct {
	key []byte
	bm  uint64
}

func (a entry) less(b entry) bool {
	if c := bytes.Compare(a.key, b.key); c != 0 {
		return c < 0
	}
	return a.bm < b.bm
}

// record is immutable once stored; updates store a fresh copy.
type record struct {
	seq    uint64
	values map[engine.ColumnID][][]byte
}

func (r *record) clone() *record {
	out := &record{seq: r.seq, values: make(map[engine.ColumnID][][]byte, len(r.values))}
	for id, vals := range r.values {
		out.values[id] = append([][]byte(nil), vals...)
	}
	return out
}

type table struct {
	key     string // lower-cased name in Engine.tables
	name    string
	temp    bool
	refs    int // open cursors
	nextCol engine.ColumnID
	nextSeq uint64

	columns map[engine.ColumnID]*column
	byName  map[string]*column
	autoinc map[engine.ColumnID]int64

	records   *btree.BTreeG[*record]
	clustered *index // bookmark order
	indexes   map[string]*index
	primary   *index
	keyMost   int

	locks map[uint64]engine.Session // record seq -> session holding the write lock
}

func newTable(key, name string, temp bool, keyMost int) *table {
	return &table{
		key:       key,
		name:      name,
		temp:      temp,
		nextCol:   1,
		columns:   make(map[engine.ColumnID]*column),
		byName:    make(map[string]*column),
		autoinc:   make(map[engine.ColumnID]int64),
		records:   newRecordTree(),
		clustered: &index{entries: newEntryTree()},
		indexes:   make(map[string]*index),
		keyMost:   keyMost,
		locks:     make(map[uint64]engine.Session),
	}
}

// orders returns bookmark order followed by every secondary index.
func (t *table) orders() []*index {
	out := make([]*index, 0, len(t.indexes)+1)
	out = append(out, t.clustered)
	for _, ix := range t.indexes {
		out = append(out, ix)
	}
	return out
}

func (t *table) record(seq uint64) (*record, bool) {
	return t.records.Get(&record{seq: seq})
}

// store replaces whatever is stored under seq with rec (nil deletes) and
// keeps every index in step.
func (t *table) store(seq uint64, rec *record) {
	if old, ok := t.record(seq); ok {
		t.records.Delete(old)
		for _, ix := range t.orders() {
			if key, ok := ix.keyOf(old, t); ok {
				ix.entries.Delete(entry{key: key, bm: seq})
			}
		}
	}
	if rec == nil {
		return
	}
	t.records.ReplaceOrInsert(rec)
	for _, ix := range t.orders() {
		if key, ok := ix.keyOf(rec, t); ok {
			ix.entries.ReplaceOrInsert(entry{key: key, bm: seq})
		}
	}
}

// checkIndexes verifies unique and null constraints for rec.
func (t *table) checkIndexes(rec *record) engine.Status {
	for _, ix := range t.indexes {
		if ix.grbit&engine.CreateIndexDisallowNull != 0 && ix.hasNullSegment(rec) {
			return engine.ErrNullKeyDisallowed
		}
		if !ix.unique() {
			continue
		}
		key, ok := ix.keyOf(rec, t)
		if !ok {
			continue
		}
		dup := false
		ix.entries.AscendGreaterOrEqual(entry{key: key}, func(e entry) bool {
			if !bytes.Equal(e.key, key) {
				return false
			}
			if e.bm != rec.seq {
				dup = true
				return false
			}
			return true
		})
		if dup {
			return engine.ErrKeyDuplicate
		}
	}
	return engine.StatusSuccess
}

// value returns value number itag (1-based) of the column, falling back to
// the column default for the first value.
func (c *column) value(rec *record, itag int) ([]byte, bool) {
	if itag < 1 {
		itag = 1
	}
	vals := rec.values[c.id]
	if itag <= len(vals) {
		return vals[itag-1], true
	}
	if itag == 1 && c.defaultValue != nil {
		return c.defaultValue, true
	}
	return nil, false
}

// --------------------------------------------------------------------------
// Data Definition
// --------------------------------------------------------------------------

func (e *Engine) CreateTable(ses engine.Session, name []byte) (engine.TableID, engine.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, status := e.session(ses)
	if status < 0 {
		return engine.NilTable, status
	}
	n, ok := decodeName(name)
	if !ok || n == "" {
		return engine.NilTable, engine.ErrInvalidParameter
	}
	t := newTable(nameKey(n), n, false, e.opts.KeyMost)
	if _, loaded := e.tables.LoadOrStore(t.key, t); loaded {
		return engine.NilTable, engine.ErrTableDuplicate
	}
	log.Debugf("table %q created", n)
	return e.openCursor(s, t).id, engine.StatusSuccess
}

func (e *Engine) OpenTable(ses engine.Session, name []byte) (engine.TableID, engine.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, status := e.session(ses)
	if status < 0 {
		return engine.NilTable, status
	}
	n, ok := decodeName(name)
	if !ok || n == "" {
		return engine.NilTable, engine.ErrInvalidParameter
	}
	t, found := e.tables.Load(nameKey(n))
	if !found || t.temp {
		return engine.NilTable, engine.ErrObjectNotFound
	}
	return e.openCursor(s, t).id, engine.StatusSuccess
}

// OpenTempTable creates an anonymous table dropped with its last cursor.
// Columns flagged TTKey form the primary index, in declaration order.
func (e *Engine) OpenTempTable(ses engine.Session, columndefs *engine.Block, count uint32, grbit engine.TempTableGrbit, columnids []engine.ColumnID) (engine.TableID, engine.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, status := e.session(ses)
	if status < 0 {
		return engine.NilTable, status
	}
	defs, err := e.opts.Layout.ColumnDefsFromNative(columndefs, int(count))
	if err != nil || len(columnids) < int(count) {
		return engine.NilTable, engine.ErrInvalidParameter
	}

	seq := e.nextTemp.Add(1)
	name := "temp#" + strconv.FormatUint(seq, 10)
	t := newTable(nameKey(name), name, true, e.opts.KeyMost)
	var key []segment
	for i, def := range defs {
		if !def.Coltyp.Valid() {
			return engine.NilTable, engine.ErrInvalidColumnType
		}
		col := t.addColumn("", def, nil)
		columnids[i] = col.id
		if def.Grbit&engine.ColumndefTTKey != 0 {
			key = append(key, segment{col: col, desc: def.Grbit&engine.ColumndefTTDescending != 0})
		}
	}
	if len(key) > 0 {
		ix := &index{name: "primary", segments: key, grbit: engine.CreateIndexPrimary, entries: newEntryTree()}
		if grbit&engine.TempTableUnique == 0 {
			ix.grbit = engine.CreateIndexNone
		}
		t.indexes[nameKey(ix.name)] = ix
		t.primary = ix
	}
	e.tables.Store(t.key, t)
	return e.openCursor(s, t).id, engine.StatusSuccess
}

func (e *Engine) CloseTable(ses engine.Session, tid engine.TableID) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	e.closeCursor(s, tid, c)
	return engine.StatusSuccess
}

func (t *table) addColumn(name string, def native.ColumnDef, defaultValue []byte) *column {
	def.ColumnID = t.nextCol
	t.nextCol++
	if def.MaxLength == 0 && !def.Coltyp.IsLong() {
		if size, fixed := def.Coltyp.FixedSize(); fixed {
			def.MaxLength = uint32(size)
		}
	}
	col := &column{id: def.ColumnID, name: name, def: def}
	if defaultValue != nil {
		col.defaultValue = append([]byte{}, defaultValue...)
	}
	t.columns[col.id] = col
	if name != "" {
		t.byName[nameKey(name)] = col
	}
	return col
}

func (e *Engine) AddColumn(ses engine.Session, tid engine.TableID, name []byte, columndef *engine.Block, defaultValue []byte) (engine.ColumnID, engine.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return 0, status
	}
	n, ok := decodeName(name)
	if !ok || n == "" || columndef == nil {
		return 0, engine.ErrInvalidParameter
	}
	defs, err := e.opts.Layout.ColumnDefsFromNative(columndef, 1)
	if err != nil {
		return 0, engine.ErrInvalidParameter
	}
	def := defs[0]
	if !def.Coltyp.Valid() {
		return 0, engine.ErrInvalidColumnType
	}
	if _, dup := c.t.byName[nameKey(n)]; dup {
		return 0, engine.ErrColumnDuplicate
	}
	if size, fixed := def.Coltyp.FixedSize(); fixed && defaultValue != nil && len(defaultValue) != size {
		return 0, engine.ErrInvalidBufferSize
	}
	col := c.t.addColumn(n, def, defaultValue)
	log.Debugf("column %q (%s) added to %q as %s", n, def.Coltyp, c.t.name, col.id)
	return col.id, engine.StatusSuccess
}

func (e *Engine) DeleteColumn(ses engine.Session, tid engine.TableID, name []byte) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	n, ok := decodeName(name)
	if !ok || n == "" {
		return engine.ErrInvalidParameter
	}
	col, found := c.t.byName[nameKey(n)]
	if !found {
		return engine.ErrColumnNotFound
	}
	for _, ix := range c.t.indexes {
		if ix.uses(col) {
			return engine.ErrColumnInUse
		}
	}
	delete(c.t.byName, nameKey(n))
	delete(c.t.columns, col.id)
	return engine.StatusSuccess
}

func (e *Engine) GetTableColumnInfo(ses engine.Session, tid engine.TableID, name []byte, columndef []byte) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	n, ok := decodeName(name)
	if !ok || n == "" {
		return engine.ErrInvalidParameter
	}
	col, found := c.t.byName[nameKey(n)]
	if !found {
		return engine.ErrColumnNotFound
	}
	if err := e.opts.Layout.PutColumnDef(columndef, col.def); err != nil {
		return engine.ErrInvalidBufferSize
	}
	return engine.StatusSuccess
}

func (e *Engine) CreateIndex(ses engine.Session, tid engine.TableID, indexcreates *engine.Block, count uint32) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	ics, err := e.opts.Layout.IndexCreatesFromNative(indexcreates, int(count))
	if err != nil {
		return engine.ErrInvalidParameter
	}
	for i, ic := range ics {
		status := c.t.createIndex(ic)
		_ = e.opts.Layout.SetIndexCreateErr(indexcreates, len(ics), i, status)
		if status < 0 {
			return status
		}
		log.Debugf("index %q created on %q", ic.Name, c.t.name)
	}
	return engine.StatusSuccess
}

func (t *table) createIndex(ic native.IndexCreate) engine.Status {
	if ic.Name == "" || ic.Density > 100 {
		return engine.ErrInvalidParameter
	}
	if _, dup := t.indexes[nameKey(ic.Name)]; dup {
		return engine.ErrIndexDuplicate
	}
	if ic.Grbit&engine.CreateIndexPrimary != 0 && t.primary != nil {
		return engine.ErrIndexDuplicate
	}

	ix := &index{
		name:        ic.Name,
		grbit:       ic.Grbit,
		density:     ic.Density,
		varSegMac:   ic.VarSegMac,
		conditional: ic.ConditionalColumns,
		entries:     newEntryTree(),
	}
	for _, spec := range strings.Split(ic.Key, "\x00") {
		if spec == "" {
			continue
		}
		desc := false
		switch spec[0] {
		case '-':
			desc = true
			spec = spec[1:]
		case '+':
			spec = spec[1:]
		}
		col, ok := t.byName[nameKey(spec)]
		if !ok {
			return engine.ErrColumnNotFound
		}
		ix.segments = append(ix.segments, segment{col: col, desc: desc})
	}
	if len(ix.segments) == 0 {
		return engine.ErrIndexInvalidDef
	}
	for _, cc := range ic.ConditionalColumns {
		col, ok := t.byName[nameKey(cc.Name)]
		if !ok {
			return engine.ErrColumnNotFound
		}
		ix.conditions = append(ix.conditions, col)
	}

	var failed engine.Status
	t.records.Ascend(func(rec *record) bool {
		if ix.grbit&engine.CreateIndexDisallowNull != 0 && ix.hasNullSegment(rec) {
			failed = engine.ErrNullKeyDisallowed
			return false
		}
		key, ok := ix.keyOf(rec, t)
		if !ok {
			return true
		}
		if ix.unique() {
			if ix.hasKey(key) {
				failed = engine.ErrKeyDuplicate
				return false
			}
		}
		ix.entries.ReplaceOrInsert(entry{key: key, bm: rec.seq})
		return true
	})
	if failed < 0 {
		return failed
	}

	t.indexes[nameKey(ix.name)] = ix
	if ix.grbit&engine.CreateIndexPrimary != 0 {
		t.primary = ix
	}
	return engine.StatusSuccess
}

func (ix *index) uses(col *column) bool {
	for _, seg := range ix.segments {
		if seg.col == col {
			return true
		}
	}
	for _, c := range ix.conditions {
		if c == col {
			return true
		}
	}
	return false
}

// hasKey reports whether any entry carries exactly key.
func (ix *index) hasKey(key []byte) bool {
	found := false
	ix.entries.AscendGreaterOrEqual(entry{key: key}, func(e entry) bool {
		found = bytes.Equal(e.key, key)
		return false
	})
	return found
}

func (e *Engine) DeleteIndex(ses engine.Session, tid engine.TableID, name []byte) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	n, ok := decodeName(name)
	if !ok || n == "" {
		return engine.ErrInvalidParameter
	}
	ix, found := c.t.indexes[nameKey(n)]
	if !found {
		return engine.ErrIndexNotFound
	}
	delete(c.t.indexes, nameKey(n))
	if c.t.primary == ix {
		c.t.primary = nil
	}
	e.cursors.Range(func(_ engine.TableID, other *cursor) bool {
		if other.idx == ix {
			other.setIndex(c.t.primary)
		}
		return true
	})
	return engine.StatusSuccess
}

// SetCurrentIndex switches the cursor's ordering and moves it to the first
// entry of the new ordering.
func (e *Engine) SetCurrentIndex(ses engine.Session, tid engine.TableID, name []byte) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, c, status := e.cursorOf(ses, tid)
	if status < 0 {
		return status
	}
	n, ok := decodeName(name)
	if !ok {
		return engine.ErrInvalidParameter
	}
	var ix *index
	if n != "" {
		found := false
		if ix, found = c.t.indexes[nameKey(n)]; !found {
			return engine.ErrIndexNotFound
		}
	}
	c.setIndex(ix)
	c.moveFirst()
	return engine.StatusSuccess
}
