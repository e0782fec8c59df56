package cursor

import (
	"errors"
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/engine/engines/memtable"
	"github.com/DamirAinullin/ManagedEsent/lib/engine/instrumented"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"reflect"
	"testing"
)

func setup(t *testing.T) (*jet.API, engine.Session, engine.TableID, engine.ColumnID) {
	t.Helper()
	return setupOn(t, memtable.New(nil))
}

func setupOn(t *testing.T, surface engine.CallSurface) (*jet.API, engine.Session, engine.TableID, engine.ColumnID) {
	t.Helper()
	api, err := jet.NewAPI(surface)
	if err != nil {
		t.Fatalf("NewAPI failed: %v", err)
	}
	ses, err := api.BeginSession()
	if err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	t.Cleanup(func() { _ = api.EndSession(ses) })
	tid, err := api.CreateTable(ses, "t")
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	id, err := api.AddColumn(ses, tid, "n", &native.ColumnDef{Coltyp: engine.ColtypLong, Grbit: engine.ColumndefTagged | engine.ColumndefMultiValued})
	if err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	if err := api.CreateIndex(ses, tid, "byN", "+n\x00", 0, 100, engine.CreateIndexNone); err != nil {
		t.Fatalf("CreateIndex failed: %v", err)
	}
	return api, ses, tid, id
}

func insert(t *testing.T, api *jet.API, ses engine.Session, tid engine.TableID, id engine.ColumnID, values ...int32) {
	t.Helper()
	if err := api.PrepareUpdate(ses, tid, engine.PrepInsert); err != nil {
		t.Fatalf("PrepareUpdate failed: %v", err)
	}
	for _, v := range values {
		if err := api.SetColumnInt32(ses, tid, id, v); err != nil {
			t.Fatalf("SetColumnInt32 failed: %v", err)
		}
	}
	if _, err := api.Update(ses, tid, nil, 0); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
}

func TestRecords(t *testing.T) {
	api, ses, tid, id := setup(t)
	for _, v := range []int32{3, 1, 2} {
		insert(t, api, ses, tid, id, v)
	}
	if err := api.SetCurrentIndex(ses, tid, "byN"); err != nil {
		t.Fatalf("SetCurrentIndex failed: %v", err)
	}

	var got []int32
	it := NewRecords(api, ses, tid)
	for it.Next() {
		v, _, err := api.RetrieveColumnAsInt32(it.Session(), it.Table(), id, engine.RetrieveColumnNone)
		if err != nil {
			t.Fatalf("RetrieveColumnAsInt32 failed: %v", err)
		}
		got = append(got, v)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int32{1, 2, 3}) {
		t.Errorf("Expected [1 2 3], got %v", got)
	}
	if it.Next() {
		t.Errorf("Expected a finished iteration to stay finished")
	}
}

func TestRecordsClose(t *testing.T) {
	api, ses, tid, id := setup(t)
	insert(t, api, ses, tid, id, 1)
	insert(t, api, ses, tid, id, 2)

	it := NewRecords(api, ses, tid)
	if !it.Next() {
		t.Fatalf("Expected a first record, err %v", it.Err())
	}
	if err := it.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if it.Next() {
		t.Errorf("Expected no record after Close")
	}
}

func TestRecordsFromCurrentWithoutPosition(t *testing.T) {
	api, ses, tid, _ := setup(t)
	it := NewRecordsFromCurrent(api, ses, tid)
	if it.Next() {
		t.Errorf("Expected no record on an empty table")
	}
	if err := it.Err(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestValues(t *testing.T) {
	api, ses, tid, id := setup(t)
	insert(t, api, ses, tid, id, 10, 20, 30)
	if ok, err := api.TryMoveFirst(ses, tid); err != nil || !ok {
		t.Fatalf("TryMoveFirst = (%v, %v)", ok, err)
	}

	var got []int32
	var tags []int
	it := NewValues(api, ses, tid, id, engine.RetrieveColumnNone)
	for it.Next() {
		v, err := codec.Decode(it.Value(), codec.Int32)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		got = append(got, v.Int32())
		tags = append(tags, it.ItagSequence())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int32{10, 20, 30}) || !reflect.DeepEqual(tags, []int{1, 2, 3}) {
		t.Errorf("Expected [10 20 30] at [1 2 3], got %v at %v", got, tags)
	}
	_ = it.Close()
}

func TestValuesOfCopyBuffer(t *testing.T) {
	api, ses, tid, id := setup(t)
	if err := api.PrepareUpdate(ses, tid, engine.PrepInsert); err != nil {
		t.Fatalf("PrepareUpdate failed: %v", err)
	}
	for _, v := range []int32{7, 8} {
		if err := api.SetColumnInt32(ses, tid, id, v); err != nil {
			t.Fatalf("SetColumnInt32 failed: %v", err)
		}
	}
	n := 0
	it := NewValues(api, ses, tid, id, engine.RetrieveCopy)
	for it.Next() {
		n++
	}
	if it.Err() != nil || n != 2 {
		t.Errorf("Expected 2 staged values, got (%d, %v)", n, it.Err())
	}
}

func TestIntersectIndexesNeedsTwoRanges(t *testing.T) {
	api, ses, tid, _ := setup(t)
	for _, tids := range [][]engine.TableID{nil, {tid}} {
		if _, err := IntersectIndexes(api, ses, tids...); !errors.Is(err, engine.ErrRange) {
			t.Errorf("Expected range error for %d ranges, got %v", len(tids), err)
		}
	}
}

func TestIntersectIndexesOnForeignTable(t *testing.T) {
	api, ses, tid, id := setup(t)
	insert(t, api, ses, tid, id, 1)
	other, err := api.CreateTable(ses, "other")
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if _, err := IntersectIndexes(api, ses, tid, other); err == nil {
		t.Errorf("Expected an engine error intersecting cursors of different tables")
	}
}

func TestIntersection(t *testing.T) {
	api, ses, tid, id := setup(t)
	for _, v := range []int32{1, 2, 3, 4} {
		insert(t, api, ses, tid, id, v)
	}
	second, err := api.OpenTable(ses, "t")
	if err != nil {
		t.Fatalf("OpenTable failed: %v", err)
	}

	// n >= 2 on the first cursor, n <= 3 on the second
	bound := func(tid engine.TableID, v int32, seek engine.SeekGrbit, upper bool) {
		if err := api.SetCurrentIndex(ses, tid, "byN"); err != nil {
			t.Fatalf("SetCurrentIndex failed: %v", err)
		}
		if upper {
			if _, err := api.TryMoveFirst(ses, tid); err != nil {
				t.Fatalf("TryMoveFirst failed: %v", err)
			}
			if err := api.MakeKeyValue(ses, tid, codec.Int32Value(v), engine.MakeKeyNewKey); err != nil {
				t.Fatalf("MakeKey failed: %v", err)
			}
			if err := api.SetIndexRange(ses, tid, engine.RangeUpperLimit|engine.RangeInclusive); err != nil {
				t.Fatalf("SetIndexRange failed: %v", err)
			}
			return
		}
		if err := api.MakeKeyValue(ses, tid, codec.Int32Value(v), engine.MakeKeyNewKey); err != nil {
			t.Fatalf("MakeKey failed: %v", err)
		}
		if _, err := api.Seek(ses, tid, seek); err != nil {
			t.Fatalf("Seek failed: %v", err)
		}
	}
	bound(tid, 2, engine.SeekGE, false)
	bound(second, 3, 0, true)

	it, err := IntersectIndexes(api, ses, tid, second)
	if err != nil {
		t.Fatalf("IntersectIndexes failed: %v", err)
	}
	if it.Count() != 2 {
		t.Errorf("Expected 2 records, got %d", it.Count())
	}
	var got []int32
	for it.Next() {
		if err := api.GotoBookmark(ses, tid, it.Bookmark(), len(it.Bookmark())); err != nil {
			t.Fatalf("GotoBookmark failed: %v", err)
		}
		v, _, err := api.RetrieveColumnAsInt32(ses, tid, id, engine.RetrieveColumnNone)
		if err != nil {
			t.Fatalf("RetrieveColumnAsInt32 failed: %v", err)
		}
		got = append(got, v)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int32{2, 3}) {
		t.Errorf("Expected [2 3], got %v", got)
	}
	if err := it.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := it.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if it.Next() {
		t.Errorf("Expected no record after Close")
	}
}

func TestIntersectionStaysFinished(t *testing.T) {
	surface := instrumented.New(memtable.New(nil))
	api, ses, tid, id := setupOn(t, surface)
	insert(t, api, ses, tid, id, 1)
	insert(t, api, ses, tid, id, 2)
	second, err := api.OpenTable(ses, "t")
	if err != nil {
		t.Fatalf("OpenTable failed: %v", err)
	}
	for _, c := range []engine.TableID{tid, second} {
		if err := api.SetCurrentIndex(ses, c, "byN"); err != nil {
			t.Fatalf("SetCurrentIndex failed: %v", err)
		}
		if _, err := api.TryMoveFirst(ses, c); err != nil {
			t.Fatalf("TryMoveFirst failed: %v", err)
		}
	}

	it, err := IntersectIndexes(api, ses, tid, second)
	if err != nil {
		t.Fatalf("IntersectIndexes failed: %v", err)
	}
	defer it.Close()
	n := 0
	for it.Next() {
		n++
	}
	if n != 2 {
		t.Errorf("Expected 2 records, got %d", n)
	}

	calls := surface.TotalCalls()
	for i := 0; i < 3; i++ {
		if it.Next() {
			t.Fatalf("Expected no record after the end")
		}
	}
	if got := surface.TotalCalls(); got != calls {
		t.Errorf("Expected no engine call after the end, got %d", got-calls)
	}
	if it.Bookmark() != nil || it.Err() != nil {
		t.Errorf("Expected no bookmark and no error, got %v and %v", it.Bookmark(), it.Err())
	}
}
