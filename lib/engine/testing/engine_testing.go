package testing

import (
	"bytes"
	"errors"
	"github.com/DamirAinullin/ManagedEsent/lib/bookmark"
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/cursor"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/engine/instrumented"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"github.com/DamirAinullin/ManagedEsent/lib/scope"
	"io"
	"math"
	"testing"
	"time"
)

// EngineFactory creates a fresh engine for one test.
type EngineFactory func() engine.CallSurface

// RunEngineTests runs the conformance suite against an engine
// implementation, through the checked call boundary and the scopes.
func RunEngineTests(t *testing.T, name string, factory EngineFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("InsertCommitRetrieve", func(t *testing.T) {
			testInsertCommitRetrieve(t, newFixture(t, factory))
		})

		t.Run("ReplaceRollback", func(t *testing.T) {
			testReplaceRollback(t, newFixture(t, factory))
		})

		t.Run("NegativeDensity", func(t *testing.T) {
			testNegativeDensity(t, newFixture(t, factory))
		})

		t.Run("ImplicitCancel", func(t *testing.T) {
			testImplicitCancel(t, newFixture(t, factory))
		})

		t.Run("ImplicitRollback", func(t *testing.T) {
			testImplicitRollback(t, newFixture(t, factory))
		})

		t.Run("NestedTransactions", func(t *testing.T) {
			testNestedTransactions(t, newFixture(t, factory))
		})

		t.Run("TypeBoundaries", func(t *testing.T) {
			testTypeBoundaries(t, newFixture(t, factory))
		})

		t.Run("NullAndZeroLength", func(t *testing.T) {
			testNullAndZeroLength(t, newFixture(t, factory))
		})

		t.Run("IndexSeek", func(t *testing.T) {
			testIndexSeek(t, newFixture(t, factory))
		})

		t.Run("IndexRange", func(t *testing.T) {
			testIndexRange(t, newFixture(t, factory))
		})

		t.Run("Intersection", func(t *testing.T) {
			testIntersection(t, newFixture(t, factory))
		})

		t.Run("MultiValues", func(t *testing.T) {
			testMultiValues(t, newFixture(t, factory))
		})

		t.Run("ColumnStream", func(t *testing.T) {
			testColumnStream(t, newFixture(t, factory))
		})

		t.Run("Escrow", func(t *testing.T) {
			testEscrow(t, newFixture(t, factory))
		})

		t.Run("EnumerateColumns", func(t *testing.T) {
			testEnumerateColumns(t, newFixture(t, factory))
		})

		t.Run("DuplicateKey", func(t *testing.T) {
			testDuplicateKey(t, newFixture(t, factory))
		})

		t.Run("ParameterChecks", func(t *testing.T) {
			testParameterChecks(t, newFixture(t, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

type fixture struct {
	t       *testing.T
	surface *instrumented.Surface
	api     *jet.API
	ses     engine.Session
}

func newFixture(t *testing.T, factory EngineFactory) *fixture {
	t.Helper()
	surface := instrumented.New(factory())
	api, err := jet.NewAPI(surface)
	if err != nil {
		t.Fatalf("NewAPI failed: %v", err)
	}
	ses, err := api.BeginSession()
	if err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	t.Cleanup(func() {
		if err := api.EndSession(ses); err != nil {
			t.Errorf("EndSession failed: %v", err)
		}
	})
	return &fixture{t: t, surface: surface, api: api, ses: ses}
}

type column struct {
	name string
	def  native.ColumnDef
}

func col(name string, typ engine.Coltyp) column {
	def := native.ColumnDef{Coltyp: typ}
	if typ.IsText() {
		def.CP = engine.CPUnicode
	}
	return column{name: name, def: def}
}

func (c column) with(grbit engine.ColumndefGrbit) column {
	c.def.Grbit |= grbit
	return c
}

// createTable creates a table and returns its cursor and column ids.
func (f *fixture) createTable(name string, columns ...column) (engine.TableID, map[string]engine.ColumnID) {
	f.t.Helper()
	tid, err := f.api.CreateTable(f.ses, name)
	if err != nil {
		f.t.Fatalf("CreateTable(%s) failed: %v", name, err)
	}
	ids := make(map[string]engine.ColumnID)
	for _, c := range columns {
		def := c.def
		id, err := f.api.AddColumn(f.ses, tid, c.name, &def)
		if err != nil {
			f.t.Fatalf("AddColumn(%s) failed: %v", c.name, err)
		}
		ids[c.name] = id
	}
	return tid, ids
}

// insert stores one record inside its own transaction and returns its
// bookmark.
func (f *fixture) insert(tid engine.TableID, values map[engine.ColumnID]codec.Value) bookmark.Bookmark {
	f.t.Helper()
	var bm bookmark.Bookmark
	err := scope.RunInTransaction(f.api, f.ses, func(tx *scope.Transaction) error {
		upd, err := tx.NewUpdate(tid, engine.PrepInsert)
		if err != nil {
			return err
		}
		defer upd.Close()
		for id, v := range values {
			if err := upd.SetValue(id, v); err != nil {
				return err
			}
		}
		bm, err = upd.SaveBookmark()
		return err
	})
	if err != nil {
		f.t.Fatalf("insert failed: %v", err)
	}
	return bm
}

func (f *fixture) gotoBookmark(tid engine.TableID, bm bookmark.Bookmark) {
	f.t.Helper()
	if err := f.api.GotoBookmark(f.ses, tid, bm, len(bm)); err != nil {
		f.t.Fatalf("GotoBookmark failed: %v", err)
	}
}

func (f *fixture) countRecords(tid engine.TableID) int {
	f.t.Helper()
	it := cursor.NewRecords(f.api, f.ses, tid)
	defer it.Close()
	n := 0
	for it.Next() {
		n++
	}
	if err := it.Err(); err != nil {
		f.t.Fatalf("iterating records failed: %v", err)
	}
	return n
}

func (f *fixture) text(tid engine.TableID, id engine.ColumnID) string {
	f.t.Helper()
	s, _, err := f.api.RetrieveColumnAsString(f.ses, tid, id, engine.CPUnicode, engine.RetrieveColumnNone)
	if err != nil {
		f.t.Fatalf("RetrieveColumnAsString failed: %v", err)
	}
	return s
}

func (f *fixture) int32(tid engine.TableID, id engine.ColumnID) int32 {
	f.t.Helper()
	v, ok, err := f.api.RetrieveColumnAsInt32(f.ses, tid, id, engine.RetrieveColumnNone)
	if err != nil || !ok {
		f.t.Fatalf("RetrieveColumnAsInt32 = (%v, %v)", ok, err)
	}
	return v
}

func encode(t *testing.T, v codec.Value) []byte {
	t.Helper()
	b, err := codec.Encode(v)
	if err != nil {
		t.Fatalf("Encode(%s) failed: %v", v, err)
	}
	return b
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testInsertCommitRetrieve(t *testing.T, f *fixture) {
	tid, cols := f.createTable("scenario_a",
		col("id", engine.ColtypLong),
		col("name", engine.ColtypText),
		col("score", engine.ColtypIEEEDouble))

	id := encode(t, codec.Int32Value(42))
	name := encode(t, codec.TextValue("Ada Lovelace"))
	score := encode(t, codec.Float64Value(98.25))

	tx, err := scope.NewTransaction(f.api, f.ses)
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}
	defer tx.Close()

	upd, err := tx.NewUpdate(tid, engine.PrepInsert)
	if err != nil {
		t.Fatalf("NewUpdate failed: %v", err)
	}
	defer upd.Close()

	scs := []native.SetColumn{
		{ColumnID: cols["id"], Data: id, DataSize: len(id)},
		{ColumnID: cols["name"], Data: name, DataSize: len(name)},
		{ColumnID: cols["score"], Data: score, DataSize: len(score)},
	}
	if err := upd.SetColumns(scs); err != nil {
		t.Fatalf("SetColumns failed: %v", err)
	}
	for i, sc := range scs {
		if sc.Err != engine.StatusSuccess {
			t.Errorf("SetColumns entry %d: expected success, got %s", i, sc.Err)
		}
	}
	bm, err := upd.SaveBookmark()
	if err != nil {
		t.Fatalf("SaveBookmark failed: %v", err)
	}
	if err := tx.Commit(engine.CommitNone); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if tx.State() != scope.TxCommitted || upd.State() != scope.UpdateSaved {
		t.Errorf("Expected Committed/Saved, got %s/%s", tx.State(), upd.State())
	}

	f.gotoBookmark(tid, bm)
	if got := f.int32(tid, cols["id"]); got != 42 {
		t.Errorf("Expected id 42, got %d", got)
	}
	if got := f.text(tid, cols["name"]); got != "Ada Lovelace" {
		t.Errorf("Expected name %q, got %q", "Ada Lovelace", got)
	}
	got, ok, err := f.api.RetrieveColumnAsFloat64(f.ses, tid, cols["score"], engine.RetrieveColumnNone)
	if err != nil || !ok || got != 98.25 {
		t.Errorf("Expected score 98.25, got (%v, %v, %v)", got, ok, err)
	}

	current, err := f.api.GetBookmarkBytes(f.ses, tid)
	if err != nil {
		t.Fatalf("GetBookmarkBytes failed: %v", err)
	}
	if !current.Equal(bm) {
		t.Errorf("Expected bookmark %x, got %x", bm, current)
	}
}

func testReplaceRollback(t *testing.T, f *fixture) {
	tid, cols := f.createTable("scenario_b", col("name", engine.ColtypText))
	bm := f.insert(tid, map[engine.ColumnID]codec.Value{cols["name"]: codec.TextValue("before")})

	tx, err := scope.NewTransaction(f.api, f.ses)
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}
	f.gotoBookmark(tid, bm)
	upd, err := tx.NewUpdate(tid, engine.PrepReplace)
	if err != nil {
		t.Fatalf("NewUpdate(Replace) failed: %v", err)
	}
	if err := upd.SetString(cols["name"], "after", engine.CPUnicode); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}
	n, err := upd.Save(nil, 0)
	if err != nil || n != 0 {
		t.Fatalf("Save without bookmark = (%d, %v)", n, err)
	}
	if got := f.text(tid, cols["name"]); got != "after" {
		t.Errorf("Expected %q inside the transaction, got %q", "after", got)
	}
	if err := tx.Rollback(engine.RollbackNone); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	f.gotoBookmark(tid, bm)
	if got := f.text(tid, cols["name"]); got != "before" {
		t.Errorf("Expected %q after rollback, got %q", "before", got)
	}
	if err := tx.Commit(engine.CommitNone); !errors.Is(err, engine.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState committing a rolled back transaction, got %v", err)
	}
}

func testNegativeDensity(t *testing.T, f *fixture) {
	tid, _ := f.createTable("scenario_c", col("name", engine.ColtypText))

	ic := native.IndexCreate{Name: "byName", Key: "+name\x00", Density: -1}
	if _, err := f.api.Layout().IndexCreateToNative("test", ic); !errors.Is(err, engine.ErrRange) {
		t.Errorf("Expected range error from the converter, got %v", err)
	}

	before := f.surface.TotalCalls()
	err := f.api.CreateIndex2(f.ses, tid, []native.IndexCreate{ic}, 1)
	if !errors.Is(err, engine.ErrCallerParameter) {
		t.Errorf("Expected caller-parameter error, got %v", err)
	}
	if f.surface.TotalCalls() != before {
		t.Errorf("Expected no engine call, %d were issued", f.surface.TotalCalls()-before)
	}
}

func testImplicitCancel(t *testing.T, f *fixture) {
	tid, cols := f.createTable("implicit_cancel", col("n", engine.ColtypLong))

	func() {
		upd, err := scope.NewUpdate(f.api, f.ses, tid, engine.PrepInsert)
		if err != nil {
			t.Fatalf("NewUpdate failed: %v", err)
		}
		defer upd.Close()
		if err := upd.SetValue(cols["n"], codec.Int32Value(7)); err != nil {
			t.Fatalf("SetValue failed: %v", err)
		}
		v, ok, err := f.api.RetrieveColumnAsInt32(f.ses, tid, cols["n"], engine.RetrieveCopy)
		if err != nil || !ok || v != 7 {
			t.Errorf("Expected staged value 7 in the copy buffer, got (%d, %v, %v)", v, ok, err)
		}
	}()

	if n := f.countRecords(tid); n != 0 {
		t.Errorf("Expected no records after implicit cancel, got %d", n)
	}
	// the cursor is free for a new update
	upd, err := scope.NewUpdate(f.api, f.ses, tid, engine.PrepInsert)
	if err != nil {
		t.Fatalf("NewUpdate after implicit cancel failed: %v", err)
	}
	if err := upd.Cancel(); err != nil {
		t.Errorf("Cancel failed: %v", err)
	}
	if err := upd.SetValue(cols["n"], codec.Int32Value(1)); !errors.Is(err, engine.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState after Cancel, got %v", err)
	}
	if err := upd.Close(); err != nil {
		t.Errorf("Close after Cancel failed: %v", err)
	}
}

func testImplicitRollback(t *testing.T, f *fixture) {
	tid, cols := f.createTable("implicit_rollback", col("n", engine.ColtypLong))

	func() {
		tx, err := scope.NewTransaction(f.api, f.ses)
		if err != nil {
			t.Fatalf("NewTransaction failed: %v", err)
		}
		defer tx.Close()
		upd, err := tx.NewUpdate(tid, engine.PrepInsert)
		if err != nil {
			t.Fatalf("NewUpdate failed: %v", err)
		}
		defer upd.Close()
		if err := upd.SetValue(cols["n"], codec.Int32Value(1)); err != nil {
			t.Fatalf("SetValue failed: %v", err)
		}
		if _, err := upd.Save(nil, 0); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}()

	if n := f.countRecords(tid); n != 0 {
		t.Errorf("Expected no records after implicit rollback, got %d", n)
	}

	failure := errors.New("application failure")
	err := scope.RunInTransaction(f.api, f.ses, func(tx *scope.Transaction) error {
		upd, err := tx.NewUpdate(tid, engine.PrepInsert)
		if err != nil {
			return err
		}
		if err := upd.SetValue(cols["n"], codec.Int32Value(2)); err != nil {
			return err
		}
		if _, err := upd.Save(nil, 0); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Errorf("Expected the application failure, got %v", err)
	}
	if n := f.countRecords(tid); n != 0 {
		t.Errorf("Expected no records after a failed RunInTransaction, got %d", n)
	}
}

func testNestedTransactions(t *testing.T, f *fixture) {
	tid, cols := f.createTable("nested", col("n", engine.ColtypLong))

	outer, err := scope.NewTransaction(f.api, f.ses)
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}
	defer outer.Close()

	err = scope.RunInTransaction(f.api, f.ses, func(inner *scope.Transaction) error {
		upd, err := inner.NewUpdate(tid, engine.PrepInsert)
		if err != nil {
			return err
		}
		if err := upd.SetValue(cols["n"], codec.Int32Value(1)); err != nil {
			return err
		}
		_, err = upd.Save(nil, 0)
		return err
	})
	if err != nil {
		t.Fatalf("inner transaction failed: %v", err)
	}
	if n := f.countRecords(tid); n != 1 {
		t.Errorf("Expected the inner commit to be visible, got %d records", n)
	}
	if err := outer.Rollback(engine.RollbackNone); err != nil {
		t.Fatalf("outer Rollback failed: %v", err)
	}
	if n := f.countRecords(tid); n != 0 {
		t.Errorf("Expected the outer rollback to undo the inner commit, got %d records", n)
	}

	// nesting is bounded by the engine
	tx, err := scope.NewTransaction(f.api, f.ses)
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}
	defer tx.Close()
	most := f.api.Limits().MaxTransactionDepth
	for tx.Depth() < most {
		if err := tx.Begin(); err != nil {
			t.Fatalf("Begin at depth %d failed: %v", tx.Depth(), err)
		}
	}
	if err := tx.Begin(); !engine.IsStatus(err, engine.ErrTransTooDeep) {
		t.Errorf("Expected ErrTransTooDeep beyond depth %d, got %v", most, err)
	}
	if err := tx.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if tx.State() != scope.TxRolledBack || tx.Depth() != 0 {
		t.Errorf("Expected RolledBack at depth 0, got %s at %d", tx.State(), tx.Depth())
	}
}

func testTypeBoundaries(t *testing.T, f *fixture) {
	kinds := codec.Kinds()
	defs := make([]native.ColumnDef, len(kinds))
	for i, k := range kinds {
		defs[i] = native.ColumnDef{Coltyp: k.Coltyp()}
		if k == codec.Text || k == codec.LongText {
			defs[i].CP = engine.CPUnicode
		}
	}
	tid, ids, err := f.api.OpenTempTable(f.ses, defs, engine.TempTableScrollable)
	if err != nil {
		t.Fatalf("OpenTempTable failed: %v", err)
	}
	defer f.api.CloseTable(f.ses, tid)

	columnOf := make(map[codec.Kind]engine.ColumnID)
	for i, k := range kinds {
		columnOf[k] = ids[i]
	}

	long := bytes.Repeat([]byte{0xA5}, 4096)
	cases := map[codec.Kind][]codec.Value{
		codec.Int8:       {codec.Int8Value(math.MinInt8), codec.Int8Value(math.MaxInt8)},
		codec.UInt8:      {codec.UInt8Value(0), codec.UInt8Value(math.MaxUint8)},
		codec.Int16:      {codec.Int16Value(math.MinInt16), codec.Int16Value(math.MaxInt16)},
		codec.UInt16:     {codec.UInt16Value(0), codec.UInt16Value(math.MaxUint16)},
		codec.Int32:      {codec.Int32Value(math.MinInt32), codec.Int32Value(math.MaxInt32)},
		codec.UInt32:     {codec.UInt32Value(0), codec.UInt32Value(math.MaxUint32)},
		codec.Int64:      {codec.Int64Value(math.MinInt64), codec.Int64Value(math.MaxInt64)},
		codec.UInt64:     {codec.UInt64Value(0), codec.UInt64Value(math.MaxUint64)},
		codec.Float32:    {codec.Float32Value(-math.MaxFloat32), codec.Float32Value(math.MaxFloat32)},
		codec.Float64:    {codec.Float64Value(-math.MaxFloat64), codec.Float64Value(math.MaxFloat64)},
		codec.Bool:       {codec.BoolValue(false), codec.BoolValue(true)},
		codec.DateTime:   {codec.DateTimeValue(time.Date(1899, 12, 30, 23, 59, 59, 0, time.UTC)), codec.DateTimeValue(time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC))},
		codec.Binary:     {codec.BinaryValue([]byte{}), codec.BinaryValue(bytes.Repeat([]byte{0xFF}, 255))},
		codec.LongBinary: {codec.LongBinaryValue([]byte{0}), codec.LongBinaryValue(long)},
		codec.Text:       {codec.TextValue(""), codec.TextValue("Ünïcödé ✓ text")},
		codec.LongText:   {codec.LongTextValue("x"), codec.LongTextValue(string(bytes.Repeat([]byte("long text "), 300)))},
	}

	for _, k := range kinds {
		for _, want := range cases[k] {
			bm := f.insert(tid, map[engine.ColumnID]codec.Value{columnOf[k]: want})
			f.gotoBookmark(tid, bm)
			got, ok, err := f.api.RetrieveColumnValue(f.ses, tid, columnOf[k], k, engine.RetrieveColumnNone)
			if err != nil || !ok {
				t.Errorf("%s: retrieve %s = (%v, %v)", k, want, ok, err)
				continue
			}
			if !got.Equal(want) {
				t.Errorf("%s: expected %s, got %s", k, want, got)
			}
		}
	}
}

func testNullAndZeroLength(t *testing.T, f *fixture) {
	tid, cols := f.createTable("nulls", col("data", engine.ColtypBinary), col("other", engine.ColtypLong))

	bm := f.insert(tid, map[engine.ColumnID]codec.Value{cols["data"]: codec.BinaryValue([]byte{})})
	f.gotoBookmark(tid, bm)

	b, err := f.api.RetrieveColumnBytes(f.ses, tid, cols["data"], engine.RetrieveColumnNone, nil)
	if err != nil || b == nil || len(b) != 0 {
		t.Errorf("Expected a zero-length value, got (%v, %v)", b, err)
	}
	b, err = f.api.RetrieveColumnBytes(f.ses, tid, cols["other"], engine.RetrieveColumnNone, nil)
	if err != nil || b != nil {
		t.Errorf("Expected null, got (%v, %v)", b, err)
	}
	_, status, err := f.api.RetrieveColumn(f.ses, tid, cols["other"], nil, 0, engine.RetrieveColumnNone, nil)
	if err != nil || status != engine.WrnColumnNull {
		t.Errorf("Expected WrnColumnNull, got (%s, %v)", status, err)
	}

	// a truncated read reports the full size
	bm = f.insert(tid, map[engine.ColumnID]codec.Value{cols["data"]: codec.BinaryValue([]byte("0123456789"))})
	f.gotoBookmark(tid, bm)
	buf := make([]byte, 4)
	n, status, err := f.api.RetrieveColumn(f.ses, tid, cols["data"], buf, len(buf), engine.RetrieveColumnNone, nil)
	if err != nil || status != engine.WrnBufferTruncated || n != 10 || string(buf) != "0123" {
		t.Errorf("Expected truncated read of 10 bytes, got (%d, %s, %q, %v)", n, status, buf, err)
	}

	// setting null clears the value
	err = scope.RunInTransaction(f.api, f.ses, func(tx *scope.Transaction) error {
		upd, err := tx.NewUpdate(tid, engine.PrepReplace)
		if err != nil {
			return err
		}
		if err := upd.SetColumn(cols["data"], nil, engine.SetColumnNone, nil); err != nil {
			return err
		}
		_, err = upd.Save(nil, 0)
		return err
	})
	if err != nil {
		t.Fatalf("replace with null failed: %v", err)
	}
	f.gotoBookmark(tid, bm)
	if b, err := f.api.RetrieveColumnBytes(f.ses, tid, cols["data"], engine.RetrieveColumnNone, nil); err != nil || b != nil {
		t.Errorf("Expected null after setting null, got (%v, %v)", b, err)
	}
}

// people creates a table of (name, age, city) with three indexes.
func (f *fixture) people() (engine.TableID, map[string]engine.ColumnID) {
	f.t.Helper()
	tid, cols := f.createTable("people",
		col("name", engine.ColtypText),
		col("age", engine.ColtypLong),
		col("city", engine.ColtypText))
	for _, ix := range []struct{ name, key string }{
		{"byName", "+name\x00"},
		{"byAge", "+age\x00"},
		{"byCity", "+city\x00-age\x00"},
	} {
		if err := f.api.CreateIndex(f.ses, tid, ix.name, ix.key, 0, 100, engine.CreateIndexNone); err != nil {
			f.t.Fatalf("CreateIndex(%s) failed: %v", ix.name, err)
		}
	}
	for _, p := range []struct {
		name string
		age  int32
		city string
	}{
		{"alice", 31, "berlin"},
		{"bob", 25, "paris"},
		{"carol", 47, "berlin"},
		{"dave", 25, "rome"},
		{"erin", 39, "paris"},
	} {
		f.insert(tid, map[engine.ColumnID]codec.Value{
			cols["name"]: codec.TextValue(p.name),
			cols["age"]:  codec.Int32Value(p.age),
			cols["city"]: codec.TextValue(p.city),
		})
	}
	return tid, cols
}

func testIndexSeek(t *testing.T, f *fixture) {
	tid, cols := f.people()

	if err := f.api.SetCurrentIndex(f.ses, tid, "byName"); err != nil {
		t.Fatalf("SetCurrentIndex failed: %v", err)
	}
	var names []string
	it := cursor.NewRecords(f.api, f.ses, tid)
	for it.Next() {
		names = append(names, f.text(tid, cols["name"]))
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	want := []string{"alice", "bob", "carol", "dave", "erin"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, names)
			break
		}
	}

	// equality seek
	if err := f.api.MakeKeyString(f.ses, tid, "CAROL", engine.CPUnicode, engine.MakeKeyNewKey); err != nil {
		t.Fatalf("MakeKey failed: %v", err)
	}
	found, err := f.api.TrySeek(f.ses, tid, engine.SeekEQ)
	if err != nil || !found {
		t.Fatalf("Expected to find carol, got (%v, %v)", found, err)
	}
	if got := f.text(tid, cols["name"]); got != "carol" {
		t.Errorf("Expected carol, got %s", got)
	}

	// a missing key is not an error for TrySeek
	if err := f.api.MakeKeyString(f.ses, tid, "zed", engine.CPUnicode, engine.MakeKeyNewKey); err != nil {
		t.Fatalf("MakeKey failed: %v", err)
	}
	if found, err := f.api.TrySeek(f.ses, tid, engine.SeekEQ); err != nil || found {
		t.Errorf("Expected not found, got (%v, %v)", found, err)
	}

	// inequality seeks on a signed column
	if err := f.api.SetCurrentIndex(f.ses, tid, "byAge"); err != nil {
		t.Fatalf("SetCurrentIndex failed: %v", err)
	}
	if err := f.api.MakeKeyValue(f.ses, tid, codec.Int32Value(30), engine.MakeKeyNewKey); err != nil {
		t.Fatalf("MakeKey failed: %v", err)
	}
	status, err := f.api.Seek(f.ses, tid, engine.SeekGE)
	if err != nil || status != engine.WrnSeekNotEqual {
		t.Fatalf("Expected WrnSeekNotEqual, got (%s, %v)", status, err)
	}
	if got := f.int32(tid, cols["age"]); got != 31 {
		t.Errorf("Expected age 31 after SeekGE 30, got %d", got)
	}
	if err := f.api.MakeKeyValue(f.ses, tid, codec.Int32Value(30), engine.MakeKeyNewKey); err != nil {
		t.Fatalf("MakeKey failed: %v", err)
	}
	if _, err := f.api.Seek(f.ses, tid, engine.SeekLE); err != nil {
		t.Fatalf("SeekLE failed: %v", err)
	}
	if got := f.int32(tid, cols["age"]); got != 25 {
		t.Errorf("Expected age 25 after SeekLE 30, got %d", got)
	}

	// Seek without a key
	if _, err := f.api.Seek(f.ses, tid, engine.SeekEQ); !engine.IsStatus(err, engine.ErrKeyNotMade) {
		t.Errorf("Expected ErrKeyNotMade, got %v", err)
	}

	// composite key with a descending segment: berlin 47 before berlin 31
	if err := f.api.SetCurrentIndex(f.ses, tid, "byCity"); err != nil {
		t.Fatalf("SetCurrentIndex failed: %v", err)
	}
	if ok, err := f.api.TryMoveFirst(f.ses, tid); err != nil || !ok {
		t.Fatalf("TryMoveFirst = (%v, %v)", ok, err)
	}
	if got := f.int32(tid, cols["age"]); got != 47 {
		t.Errorf("Expected berlin/47 first, got age %d", got)
	}
	key, err := f.api.RetrieveKeyBytes(f.ses, tid, engine.RetrieveKeyNone)
	if err != nil || len(key) == 0 {
		t.Errorf("Expected a normalized key, got (%x, %v)", key, err)
	}
}

func testIndexRange(t *testing.T, f *fixture) {
	tid, cols := f.people()
	if err := f.api.SetCurrentIndex(f.ses, tid, "byAge"); err != nil {
		t.Fatalf("SetCurrentIndex failed: %v", err)
	}

	// every record aged 25
	if err := f.api.MakeKeyValue(f.ses, tid, codec.Int32Value(25), engine.MakeKeyNewKey); err != nil {
		t.Fatalf("MakeKey failed: %v", err)
	}
	if _, err := f.api.Seek(f.ses, tid, engine.SeekEQ|engine.SeekSetIndexRange); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	n, err := f.api.IndexRecordCount(f.ses, tid, 0)
	if err != nil || n != 2 {
		t.Errorf("Expected 2 records aged 25, got (%d, %v)", n, err)
	}

	// [31, 39] with an explicit upper limit
	if err := f.api.MakeKeyValue(f.ses, tid, codec.Int32Value(31), engine.MakeKeyNewKey); err != nil {
		t.Fatalf("MakeKey failed: %v", err)
	}
	if _, err := f.api.Seek(f.ses, tid, engine.SeekGE); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if err := f.api.MakeKeyValue(f.ses, tid, codec.Int32Value(39), engine.MakeKeyNewKey); err != nil {
		t.Fatalf("MakeKey failed: %v", err)
	}
	if err := f.api.SetIndexRange(f.ses, tid, engine.RangeUpperLimit|engine.RangeInclusive); err != nil {
		t.Fatalf("SetIndexRange failed: %v", err)
	}
	var ages []int32
	it := cursor.NewRecordsFromCurrent(f.api, f.ses, tid)
	for it.Next() {
		ages = append(ages, f.int32(tid, cols["age"]))
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	if len(ages) != 2 || ages[0] != 31 || ages[1] != 39 {
		t.Errorf("Expected [31 39], got %v", ages)
	}
	if n, err := f.api.IndexRecordCount(f.ses, tid, -1); !errors.Is(err, engine.ErrRange) || n != 0 {
		t.Errorf("Expected range error for a negative maximum, got (%d, %v)", n, err)
	}
}

func testIntersection(t *testing.T, f *fixture) {
	tid, cols := f.people()

	byAge, err := f.api.OpenTable(f.ses, "people")
	if err != nil {
		t.Fatalf("OpenTable failed: %v", err)
	}
	defer f.api.CloseTable(f.ses, byAge)
	byCity, err := f.api.OpenTable(f.ses, "people")
	if err != nil {
		t.Fatalf("OpenTable failed: %v", err)
	}
	defer f.api.CloseTable(f.ses, byCity)

	// age in [25, 40)
	if err := f.api.SetCurrentIndex(f.ses, byAge, "byAge"); err != nil {
		t.Fatalf("SetCurrentIndex failed: %v", err)
	}
	if err := f.api.MakeKeyValue(f.ses, byAge, codec.Int32Value(25), engine.MakeKeyNewKey); err != nil {
		t.Fatalf("MakeKey failed: %v", err)
	}
	if _, err := f.api.Seek(f.ses, byAge, engine.SeekGE); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if err := f.api.MakeKeyValue(f.ses, byAge, codec.Int32Value(40), engine.MakeKeyNewKey); err != nil {
		t.Fatalf("MakeKey failed: %v", err)
	}
	if err := f.api.SetIndexRange(f.ses, byAge, engine.RangeUpperLimit); err != nil {
		t.Fatalf("SetIndexRange failed: %v", err)
	}

	// city = paris
	if err := f.api.SetCurrentIndex(f.ses, byCity, "byCity"); err != nil {
		t.Fatalf("SetCurrentIndex failed: %v", err)
	}
	if err := f.api.MakeKeyString(f.ses, byCity, "paris", engine.CPUnicode, engine.MakeKeyNewKey); err != nil {
		t.Fatalf("MakeKey failed: %v", err)
	}
	if _, err := f.api.Seek(f.ses, byCity, engine.SeekEQ|engine.SeekSetIndexRange); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	it, err := cursor.IntersectIndexes(f.api, f.ses, byAge, byCity)
	if err != nil {
		t.Fatalf("IntersectIndexes failed: %v", err)
	}
	defer it.Close()
	if it.Count() != 2 {
		t.Errorf("Expected 2 records (bob, erin), got %d", it.Count())
	}
	var names []string
	for it.Next() {
		f.gotoBookmark(tid, it.Bookmark())
		names = append(names, f.text(tid, cols["name"]))
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	if len(names) != 2 || names[0] != "bob" || names[1] != "erin" {
		t.Errorf("Expected [bob erin], got %v", names)
	}
	if err := it.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	before := f.surface.TotalCalls()
	if _, err := cursor.IntersectIndexes(f.api, f.ses, byAge); !errors.Is(err, engine.ErrCallerParameter) {
		t.Errorf("Expected caller-parameter error for one range, got %v", err)
	}
	if f.surface.TotalCalls() != before {
		t.Errorf("Expected no engine call for one range")
	}
}

func testMultiValues(t *testing.T, f *fixture) {
	tid, cols := f.createTable("tags", col("tag", engine.ColtypText).with(engine.ColumndefTagged|engine.ColumndefMultiValued))

	var bm bookmark.Bookmark
	err := scope.RunInTransaction(f.api, f.ses, func(tx *scope.Transaction) error {
		upd, err := tx.NewUpdate(tid, engine.PrepInsert)
		if err != nil {
			return err
		}
		for _, tag := range []string{"red", "green", "blue"} {
			if err := upd.SetString(cols["tag"], tag, engine.CPUnicode); err != nil {
				return err
			}
		}
		dup := encode(t, codec.TextValue("green"))
		if err := upd.SetColumn(cols["tag"], dup, engine.SetColumnUniqueMultiValues, nil); !engine.IsStatus(err, engine.ErrMultiValuedDuplicate) {
			t.Errorf("Expected ErrMultiValuedDuplicate, got %v", err)
		}
		bm, err = upd.SaveBookmark()
		return err
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	f.gotoBookmark(tid, bm)
	var tags []string
	it := cursor.NewValues(f.api, f.ses, tid, cols["tag"], engine.RetrieveColumnNone)
	for it.Next() {
		s, err := codec.DecodeUnicode(it.Value())
		if err != nil {
			t.Fatalf("DecodeUnicode failed: %v", err)
		}
		tags = append(tags, s)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	if len(tags) != 3 || tags[0] != "red" || tags[1] != "green" || tags[2] != "blue" {
		t.Errorf("Expected [red green blue], got %v", tags)
	}
}

func testColumnStream(t *testing.T, f *fixture) {
	tid, cols := f.createTable("blobs", col("blob", engine.ColtypLongBinary))

	payload := bytes.Repeat([]byte("0123456789abcdef"), 64)
	var bm bookmark.Bookmark
	err := scope.RunInTransaction(f.api, f.ses, func(tx *scope.Transaction) error {
		upd, err := tx.NewUpdate(tid, engine.PrepInsert)
		if err != nil {
			return err
		}
		s, err := f.api.NewColumnStream(f.ses, tid, cols["blob"], 0)
		if err != nil {
			return err
		}
		for off := 0; off < len(payload); off += 100 {
			end := min(off+100, len(payload))
			if _, err := s.Write(payload[off:end]); err != nil {
				return err
			}
		}
		if n, err := s.Length(); err != nil || n != int64(len(payload)) {
			t.Errorf("Expected length %d, got (%d, %v)", len(payload), n, err)
		}
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return err
		}
		staged, err := io.ReadAll(s)
		if err != nil {
			return err
		}
		if !bytes.Equal(staged, payload) {
			t.Errorf("Expected the staged value to read back unchanged")
		}
		if err := s.SetLength(10); err != nil {
			return err
		}
		bm, err = upd.SaveBookmark()
		return err
	})
	if err != nil {
		t.Fatalf("stream insert failed: %v", err)
	}

	f.gotoBookmark(tid, bm)
	b, err := f.api.RetrieveColumnBytes(f.ses, tid, cols["blob"], engine.RetrieveColumnNone, nil)
	if err != nil || !bytes.Equal(b, payload[:10]) {
		t.Errorf("Expected %q after SetLength(10), got (%q, %v)", payload[:10], b, err)
	}
	tail, err := f.api.RetrieveColumnBytes(f.ses, tid, cols["blob"], engine.RetrieveColumnNone, &jet.RetrieveInfo{LongValueOffset: 6})
	if err != nil || string(tail) != "6789" {
		t.Errorf("Expected %q from offset 6, got (%q, %v)", "6789", tail, err)
	}
}

func testEscrow(t *testing.T, f *fixture) {
	tid, cols := f.createTable("counters", col("hits", engine.ColtypLong).with(engine.ColumndefEscrowUpdate))
	bm := f.insert(tid, map[engine.ColumnID]codec.Value{cols["hits"]: codec.Int32Value(10)})
	f.gotoBookmark(tid, bm)

	delta := encode(t, codec.Int32Value(5))
	previous := make([]byte, 4)
	n, err := f.api.EscrowUpdate(f.ses, tid, cols["hits"], delta, len(delta), previous, len(previous), engine.EscrowUpdateNone)
	if err != nil || n != 4 {
		t.Fatalf("EscrowUpdate = (%d, %v)", n, err)
	}
	if v, _ := codec.Decode(previous, codec.Int32); v.Int32() != 10 {
		t.Errorf("Expected previous value 10, got %d", v.Int32())
	}
	if got := f.int32(tid, cols["hits"]); got != 15 {
		t.Errorf("Expected 15 after escrow, got %d", got)
	}
	if _, err := f.api.EscrowUpdate(f.ses, tid, cols["hits"], nil, 0, nil, 0, engine.EscrowUpdateNone); !errors.Is(err, engine.ErrNullArgument) {
		t.Errorf("Expected null-argument error for a nil delta, got %v", err)
	}
}

func testEnumerateColumns(t *testing.T, f *fixture) {
	tid, cols := f.createTable("enum",
		col("a", engine.ColtypLong),
		col("b", engine.ColtypText),
		col("c", engine.ColtypLong))
	bm := f.insert(tid, map[engine.ColumnID]codec.Value{
		cols["a"]: codec.Int32Value(1),
		cols["b"]: codec.TextValue("two"),
	})
	f.gotoBookmark(tid, bm)

	alloc := func(size int) []byte { return make([]byte, size) }
	ecs, err := f.api.EnumerateColumns(f.ses, tid, nil, 0, alloc, 0, engine.EnumerateNone)
	if err != nil {
		t.Fatalf("EnumerateColumns failed: %v", err)
	}
	if len(ecs) != 2 || ecs[0].ColumnID != cols["a"] || ecs[1].ColumnID != cols["b"] {
		t.Fatalf("Expected columns a and b, got %+v", ecs)
	}
	if v, _ := codec.Decode(ecs[0].Values[0].Data, codec.Int32); v.Int32() != 1 {
		t.Errorf("Expected a = 1, got %s", v)
	}

	ids := []native.EnumColumnID{{ColumnID: cols["c"]}, {ColumnID: cols["b"]}}
	ecs, err = f.api.EnumerateColumns(f.ses, tid, ids, len(ids), alloc, 0, engine.EnumerateCompressOutput)
	if err != nil {
		t.Fatalf("EnumerateColumns failed: %v", err)
	}
	if ecs[0].Err != engine.WrnColumnNull {
		t.Errorf("Expected WrnColumnNull for c, got %s", ecs[0].Err)
	}
	if ecs[1].Err != engine.WrnColumnSingleValue || string(ecs[1].Data) != string(encode(t, codec.TextValue("two"))) {
		t.Errorf("Expected b inline as a single value, got %+v", ecs[1])
	}

	failing := func(size int) []byte { return nil }
	if _, err := f.api.EnumerateColumns(f.ses, tid, nil, 0, failing, 0, engine.EnumerateNone); !engine.IsStatus(err, engine.ErrOutOfMemory) {
		t.Errorf("Expected ErrOutOfMemory from a failing allocator, got %v", err)
	}
}

func testDuplicateKey(t *testing.T, f *fixture) {
	tid, cols := f.createTable("unique", col("email", engine.ColtypText))
	if err := f.api.CreateIndex(f.ses, tid, "byEmail", "+email\x00", 0, 0, engine.CreateIndexUnique); err != nil {
		t.Fatalf("CreateIndex failed: %v", err)
	}
	f.insert(tid, map[engine.ColumnID]codec.Value{cols["email"]: codec.TextValue("a@example.com")})

	err := scope.RunInTransaction(f.api, f.ses, func(tx *scope.Transaction) error {
		upd, err := tx.NewUpdate(tid, engine.PrepInsert)
		if err != nil {
			return err
		}
		defer upd.Close()
		if err := upd.SetString(cols["email"], "A@example.com", engine.CPUnicode); err != nil {
			return err
		}
		_, err = upd.Save(nil, 0)
		if upd.State() != scope.UpdatePrepared {
			t.Errorf("Expected a failed save to leave the update prepared, got %s", upd.State())
		}
		return err
	})
	if !engine.IsStatus(err, engine.ErrKeyDuplicate) {
		t.Errorf("Expected ErrKeyDuplicate, got %v", err)
	}
	var engineErr *engine.Error
	if errors.As(err, &engineErr) && engineErr.Category != engine.CategoryRecord {
		t.Errorf("Expected category %s, got %s", engine.CategoryRecord, engineErr.Category)
	}
	if n := f.countRecords(tid); n != 1 {
		t.Errorf("Expected 1 record, got %d", n)
	}

	ics := []native.IndexCreate{
		{Name: "byEmail", Key: "+email\x00"},
		{Name: "other", Key: "+email\x00"},
	}
	if err := f.api.CreateIndex2(f.ses, tid, ics, 2); !engine.IsStatus(err, engine.ErrIndexDuplicate) {
		t.Errorf("Expected ErrIndexDuplicate, got %v", err)
	}
	if ics[0].Err != engine.ErrIndexDuplicate {
		t.Errorf("Expected the per-index result to be written back, got %s", ics[0].Err)
	}
}

func testParameterChecks(t *testing.T, f *fixture) {
	tid, cols := f.createTable("params", col("n", engine.ColtypLong), col("s", engine.ColtypText))
	id := cols["n"]
	buf := make([]byte, 8)

	cases := map[string]func() error{
		"AddColumn nil name": func() error {
			_, err := f.api.AddColumn(f.ses, tid, "", &native.ColumnDef{Coltyp: engine.ColtypLong})
			return err
		},
		"AddColumn nil columndef": func() error {
			_, err := f.api.AddColumn(f.ses, tid, "x", nil)
			return err
		},
		"AddColumn negative default size": func() error {
			_, err := f.api.AddColumn(f.ses, tid, "x", &native.ColumnDef{Coltyp: engine.ColtypLong, Default: buf, DefaultSize: -1})
			return err
		},
		"AddColumn default size too long": func() error {
			_, err := f.api.AddColumn(f.ses, tid, "x", &native.ColumnDef{Coltyp: engine.ColtypLong, Default: buf, DefaultSize: 9})
			return err
		},
		"AddColumn nil default with size": func() error {
			_, err := f.api.AddColumn(f.ses, tid, "x", &native.ColumnDef{Coltyp: engine.ColtypLong, DefaultSize: 4})
			return err
		},
		"CreateIndex nil name": func() error {
			return f.api.CreateIndex(f.ses, tid, "", "+n\x00", 0, 100, engine.CreateIndexNone)
		},
		"CreateIndex negative density": func() error {
			return f.api.CreateIndex(f.ses, tid, "ix", "+n\x00", 0, -1, engine.CreateIndexNone)
		},
		"CreateIndex negative key length": func() error {
			return f.api.CreateIndex(f.ses, tid, "ix", "+n\x00", -1, 100, engine.CreateIndexNone)
		},
		"CreateIndex key length too long": func() error {
			return f.api.CreateIndex(f.ses, tid, "ix", "+n\x00", 10, 100, engine.CreateIndexNone)
		},
		"CreateIndex2 nil": func() error {
			return f.api.CreateIndex2(f.ses, tid, nil, 0)
		},
		"CreateIndex2 negative count": func() error {
			return f.api.CreateIndex2(f.ses, tid, []native.IndexCreate{}, -1)
		},
		"CreateIndex2 count too long": func() error {
			return f.api.CreateIndex2(f.ses, tid, []native.IndexCreate{{Name: "ix", Key: "+n\x00"}}, 2)
		},
		"DeleteColumn nil name": func() error {
			return f.api.DeleteColumn(f.ses, tid, "")
		},
		"DeleteIndex nil name": func() error {
			return f.api.DeleteIndex(f.ses, tid, "")
		},
		"GetTableColumnInfo nil name": func() error {
			_, err := f.api.GetTableColumnInfo(f.ses, tid, "")
			return err
		},
		"GotoBookmark nil": func() error {
			return f.api.GotoBookmark(f.ses, tid, nil, 0)
		},
		"GotoBookmark negative size": func() error {
			return f.api.GotoBookmark(f.ses, tid, buf, -1)
		},
		"GotoBookmark size too long": func() error {
			return f.api.GotoBookmark(f.ses, tid, buf, len(buf)+1)
		},
		"MakeKey nil with size": func() error {
			return f.api.MakeKey(f.ses, tid, nil, 1, engine.MakeKeyNewKey)
		},
		"MakeKey size too long": func() error {
			return f.api.MakeKey(f.ses, tid, buf, len(buf)+1, engine.MakeKeyNewKey)
		},
		"GetBookmark negative size": func() error {
			_, err := f.api.GetBookmark(f.ses, tid, buf, -1)
			return err
		},
		"GetBookmark size too long": func() error {
			_, err := f.api.GetBookmark(f.ses, tid, buf, len(buf)+1)
			return err
		},
		"RetrieveKey size too long": func() error {
			_, err := f.api.RetrieveKey(f.ses, tid, buf, len(buf)+1, engine.RetrieveKeyNone)
			return err
		},
		"RetrieveColumn nil with size": func() error {
			_, _, err := f.api.RetrieveColumn(f.ses, tid, id, nil, 4, engine.RetrieveColumnNone, nil)
			return err
		},
		"RetrieveColumn size too long": func() error {
			_, _, err := f.api.RetrieveColumn(f.ses, tid, id, buf, len(buf)+1, engine.RetrieveColumnNone, nil)
			return err
		},
		"SetColumn nil with size": func() error {
			return f.api.SetColumn(f.ses, tid, id, nil, 4, engine.SetColumnNone, nil)
		},
		"SetColumn negative size": func() error {
			return f.api.SetColumn(f.ses, tid, id, buf, -1, engine.SetColumnNone, nil)
		},
		"SetColumn size too long": func() error {
			return f.api.SetColumn(f.ses, tid, id, buf, len(buf)+1, engine.SetColumnNone, nil)
		},
		"Update negative size": func() error {
			_, err := f.api.Update(f.ses, tid, buf, -1)
			return err
		},
		"Update nil with size": func() error {
			_, err := f.api.Update(f.ses, tid, nil, 8)
			return err
		},
		"Update size too long": func() error {
			_, err := f.api.Update(f.ses, tid, buf, len(buf)+1)
			return err
		},
		"SetColumns nil": func() error {
			return f.api.SetColumns(f.ses, tid, nil, 0)
		},
		"SetColumns negative count": func() error {
			return f.api.SetColumns(f.ses, tid, []native.SetColumn{}, -1)
		},
		"SetColumns count too long": func() error {
			return f.api.SetColumns(f.ses, tid, []native.SetColumn{{ColumnID: id}}, 2)
		},
		"SetColumns entry data too long": func() error {
			return f.api.SetColumns(f.ses, tid, []native.SetColumn{{ColumnID: id, Data: buf, DataSize: 9}}, 1)
		},
		"IndexRecordCount negative": func() error {
			_, err := f.api.IndexRecordCount(f.ses, tid, -1)
			return err
		},
		"IntersectIndexes nil": func() error {
			_, err := f.api.IntersectIndexes(f.ses, nil, engine.IntersectIndexesNone)
			return err
		},
		"IntersectIndexes one range": func() error {
			_, err := f.api.IntersectIndexes(f.ses, []native.IndexRange{{TableID: tid}}, engine.IntersectIndexesNone)
			return err
		},
		"EnumerateColumns nil allocator": func() error {
			_, err := f.api.EnumerateColumns(f.ses, tid, nil, 0, nil, 0, engine.EnumerateNone)
			return err
		},
		"EnumerateColumns negative max size": func() error {
			_, err := f.api.EnumerateColumns(f.ses, tid, nil, 0, func(n int) []byte { return make([]byte, n) }, -1, engine.EnumerateNone)
			return err
		},
		"EnumerateColumns nil ids with count": func() error {
			_, err := f.api.EnumerateColumns(f.ses, tid, nil, 1, func(n int) []byte { return make([]byte, n) }, 0, engine.EnumerateNone)
			return err
		},
		"EnumerateColumns count too long": func() error {
			_, err := f.api.EnumerateColumns(f.ses, tid, []native.EnumColumnID{{ColumnID: id}}, 2, func(n int) []byte { return make([]byte, n) }, 0, engine.EnumerateNone)
			return err
		},
		"EscrowUpdate nil delta": func() error {
			_, err := f.api.EscrowUpdate(f.ses, tid, id, nil, 0, nil, 0, engine.EscrowUpdateNone)
			return err
		},
		"EscrowUpdate delta too long": func() error {
			_, err := f.api.EscrowUpdate(f.ses, tid, id, buf, 9, nil, 0, engine.EscrowUpdateNone)
			return err
		},
		"EscrowUpdate nil previous with size": func() error {
			_, err := f.api.EscrowUpdate(f.ses, tid, id, buf, 4, nil, 4, engine.EscrowUpdateNone)
			return err
		},
		"EscrowUpdate negative previous size": func() error {
			_, err := f.api.EscrowUpdate(f.ses, tid, id, buf, 4, buf, -1, engine.EscrowUpdateNone)
			return err
		},
		"NewUpdate with Cancel": func() error {
			_, err := scope.NewUpdate(f.api, f.ses, tid, engine.PrepCancel)
			return err
		},
	}

	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			before := f.surface.TotalCalls()
			err := call()
			if !errors.Is(err, engine.ErrCallerParameter) {
				t.Errorf("Expected a caller-parameter error, got %v", err)
			}
			var pe *engine.ParamError
			if !errors.As(err, &pe) {
				t.Errorf("Expected *engine.ParamError, got %T", err)
			}
			if calls := f.surface.TotalCalls() - before; calls != 0 {
				t.Errorf("Expected no engine call, %d were issued", calls)
			}
		})
	}

	// a zero-length nil buffer is always a valid request
	if err := bookmark.Validate("test", "buf", nil, 0); err != nil {
		t.Errorf("Expected a nil buffer of length 0 to be valid, got %v", err)
	}
}
