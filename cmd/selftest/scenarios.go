package selftest

import (
	"errors"
	"fmt"
	"github.com/DamirAinullin/ManagedEsent/lib/bookmark"
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/cursor"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/engine/instrumented"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"github.com/DamirAinullin/ManagedEsent/lib/scope"
	"github.com/hashicorp/go-multierror"
)

// env is what a scenario runs with: the checked API, its own session and the
// counters of the engine underneath.
type env struct {
	api     *jet.API
	ses     engine.Session
	surface *instrumented.Surface
}

type scenario struct {
	name string
	fn   func(e *env) error
}

var scenarios = []scenario{
	{"insert-retrieve", insertRetrieve},
	{"rollback", rollback},
	{"implicit-cancel", implicitCancel},
	{"index-seek", indexSeek},
	{"index-range", indexRange},
	{"intersection", intersection},
	{"argument-checks", argumentChecks},
}

func runScenario(api *jet.API, surface *instrumented.Surface, sc scenario) (err error) {
	ses, err := api.BeginSession()
	if err != nil {
		return err
	}
	defer func() {
		if endErr := api.EndSession(ses); endErr != nil {
			err = multierror.Append(err, endErr).ErrorOrNil()
		}
	}()
	return sc.fn(&env{api: api, ses: ses, surface: surface})
}

// --------------------------------------------------------------------------
// Fixtures
// --------------------------------------------------------------------------

type person struct {
	name string
	age  int32
	city string
}

var people = []person{
	{"alice", 31, "berlin"},
	{"bob", 25, "paris"},
	{"carol", 47, "berlin"},
	{"dave", 25, "rome"},
	{"erin", 39, "paris"},
}

type peopleTable struct {
	tid             engine.TableID
	name, age, city engine.ColumnID
	bookmarks       []bookmark.Bookmark
}

// createPeople creates and fills a table of (name, age, city) with an index
// on each column and a composite city/age index.
func (e *env) createPeople(table string) (*peopleTable, error) {
	tid, err := e.api.CreateTable(e.ses, table)
	if err != nil {
		return nil, err
	}
	pt := &peopleTable{tid: tid}
	for _, c := range []struct {
		name string
		def  native.ColumnDef
		id   *engine.ColumnID
	}{
		{"name", native.ColumnDef{Coltyp: engine.ColtypText, CP: engine.CPUnicode}, &pt.name},
		{"age", native.ColumnDef{Coltyp: engine.ColtypLong}, &pt.age},
		{"city", native.ColumnDef{Coltyp: engine.ColtypText, CP: engine.CPUnicode}, &pt.city},
	} {
		def := c.def
		if *c.id, err = e.api.AddColumn(e.ses, tid, c.name, &def); err != nil {
			return nil, err
		}
	}
	err = e.api.CreateIndex2(e.ses, tid, []native.IndexCreate{
		{Name: "byName", Key: "+name\x00", Density: 100},
		{Name: "byAge", Key: "+age\x00", Density: 100},
		{Name: "byCity", Key: "+city\x00-age\x00", Density: 100},
	}, 3)
	if err != nil {
		return nil, err
	}

	err = scope.RunInTransaction(e.api, e.ses, func(tx *scope.Transaction) error {
		for _, p := range people {
			upd, err := tx.NewUpdate(tid, engine.PrepInsert)
			if err != nil {
				return err
			}
			if err := upd.SetString(pt.name, p.name, engine.CPUnicode); err != nil {
				return err
			}
			if err := upd.SetValue(pt.age, codec.Int32Value(p.age)); err != nil {
				return err
			}
			if err := upd.SetString(pt.city, p.city, engine.CPUnicode); err != nil {
				return err
			}
			bm, err := upd.SaveBookmark()
			if err != nil {
				return err
			}
			pt.bookmarks = append(pt.bookmarks, bm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pt, nil
}

func (e *env) count(tid engine.TableID) (int, error) {
	it := cursor.NewRecords(e.api, e.ses, tid)
	defer it.Close()
	n := 0
	for it.Next() {
		n++
	}
	return n, it.Err()
}

func (e *env) names(pt *peopleTable, it *cursor.Records) ([]string, error) {
	defer it.Close()
	var out []string
	for it.Next() {
		s, _, err := e.api.RetrieveColumnAsString(e.ses, pt.tid, pt.name, engine.CPUnicode, engine.RetrieveColumnNone)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, it.Err()
}

func expect[T comparable](what string, want, got T) error {
	if want != got {
		return fmt.Errorf("%s: expected %v, got %v", what, want, got)
	}
	return nil
}

func expectNames(want, got []string) error {
	if len(want) != len(got) {
		return fmt.Errorf("expected %v, got %v", want, got)
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("expected %v, got %v", want, got)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Scenarios
// --------------------------------------------------------------------------

func insertRetrieve(e *env) error {
	pt, err := e.createPeople("insert_retrieve")
	if err != nil {
		return err
	}
	for i, p := range people {
		bm := pt.bookmarks[i]
		if err := e.api.GotoBookmark(e.ses, pt.tid, bm, len(bm)); err != nil {
			return err
		}
		name, ok, err := e.api.RetrieveColumnAsString(e.ses, pt.tid, pt.name, engine.CPUnicode, engine.RetrieveColumnNone)
		if err != nil {
			return err
		}
		if err := expect("name present", true, ok); err != nil {
			return err
		}
		if err := expect("name", p.name, name); err != nil {
			return err
		}
		age, _, err := e.api.RetrieveColumnAsInt32(e.ses, pt.tid, pt.age, engine.RetrieveColumnNone)
		if err != nil {
			return err
		}
		if err := expect("age of "+p.name, p.age, age); err != nil {
			return err
		}
	}
	return nil
}

func rollback(e *env) error {
	pt, err := e.createPeople("rollback")
	if err != nil {
		return err
	}
	tx, err := scope.NewTransaction(e.api, e.ses)
	if err != nil {
		return err
	}
	defer tx.Close()
	bm := pt.bookmarks[0]
	if err := e.api.GotoBookmark(e.ses, pt.tid, bm, len(bm)); err != nil {
		return err
	}
	if err := e.api.Delete(e.ses, pt.tid); err != nil {
		return err
	}
	if n, err := e.count(pt.tid); err != nil {
		return err
	} else if err := expect("records after delete", len(people)-1, n); err != nil {
		return err
	}
	if err := tx.Rollback(engine.RollbackNone); err != nil {
		return err
	}
	n, err := e.count(pt.tid)
	if err != nil {
		return err
	}
	return expect("records after rollback", len(people), n)
}

func implicitCancel(e *env) error {
	pt, err := e.createPeople("implicit_cancel")
	if err != nil {
		return err
	}
	upd, err := scope.NewUpdate(e.api, e.ses, pt.tid, engine.PrepInsert)
	if err != nil {
		return err
	}
	if err := upd.SetString(pt.name, "mallory", engine.CPUnicode); err != nil {
		return err
	}
	if err := upd.Close(); err != nil {
		return err
	}
	if err := expect("update state", scope.UpdateCanceled, upd.State()); err != nil {
		return err
	}
	n, err := e.count(pt.tid)
	if err != nil {
		return err
	}
	return expect("records after an unsaved update", len(people), n)
}

func indexSeek(e *env) error {
	pt, err := e.createPeople("index_seek")
	if err != nil {
		return err
	}
	if err := e.api.SetCurrentIndex(e.ses, pt.tid, "byName"); err != nil {
		return err
	}
	names, err := e.names(pt, cursor.NewRecords(e.api, e.ses, pt.tid))
	if err != nil {
		return err
	}
	if err := expectNames([]string{"alice", "bob", "carol", "dave", "erin"}, names); err != nil {
		return err
	}

	// text keys fold case
	if err := e.api.MakeKeyString(e.ses, pt.tid, "CAROL", engine.CPUnicode, engine.MakeKeyNewKey); err != nil {
		return err
	}
	found, err := e.api.TrySeek(e.ses, pt.tid, engine.SeekEQ)
	if err != nil {
		return err
	}
	if err := expect("carol found", true, found); err != nil {
		return err
	}

	if err := e.api.SetCurrentIndex(e.ses, pt.tid, "byAge"); err != nil {
		return err
	}
	if err := e.api.MakeKeyValue(e.ses, pt.tid, codec.Int32Value(30), engine.MakeKeyNewKey); err != nil {
		return err
	}
	status, err := e.api.Seek(e.ses, pt.tid, engine.SeekGE)
	if err != nil {
		return err
	}
	if err := expect("seek status", engine.WrnSeekNotEqual, status); err != nil {
		return err
	}
	age, _, err := e.api.RetrieveColumnAsInt32(e.ses, pt.tid, pt.age, engine.RetrieveColumnNone)
	if err != nil {
		return err
	}
	return expect("age after seeking >= 30", int32(31), age)
}

func indexRange(e *env) error {
	pt, err := e.createPeople("index_range")
	if err != nil {
		return err
	}
	if err := e.api.SetCurrentIndex(e.ses, pt.tid, "byCity"); err != nil {
		return err
	}
	if err := e.api.MakeKeyString(e.ses, pt.tid, "berlin", engine.CPUnicode, engine.MakeKeyNewKey); err != nil {
		return err
	}
	if _, err := e.api.Seek(e.ses, pt.tid, engine.SeekEQ|engine.SeekSetIndexRange); err != nil {
		return err
	}
	n, err := e.api.IndexRecordCount(e.ses, pt.tid, 0)
	if err != nil {
		return err
	}
	if err := expect("records in berlin", 2, n); err != nil {
		return err
	}

	names, err := e.names(pt, cursor.NewRecordsFromCurrent(e.api, e.ses, pt.tid))
	if err != nil {
		return err
	}
	// the age segment descends
	return expectNames([]string{"carol", "alice"}, names)
}

func intersection(e *env) error {
	pt, err := e.createPeople("intersection")
	if err != nil {
		return err
	}
	var tids [2]engine.TableID
	for i := range tids {
		if tids[i], err = e.api.OpenTable(e.ses, "intersection"); err != nil {
			return err
		}
		defer e.api.CloseTable(e.ses, tids[i])
	}

	// age in [25, 40)
	byAge := tids[0]
	if err := e.api.SetCurrentIndex(e.ses, byAge, "byAge"); err != nil {
		return err
	}
	if err := e.api.MakeKeyValue(e.ses, byAge, codec.Int32Value(25), engine.MakeKeyNewKey); err != nil {
		return err
	}
	if _, err := e.api.Seek(e.ses, byAge, engine.SeekGE); err != nil {
		return err
	}
	if err := e.api.MakeKeyValue(e.ses, byAge, codec.Int32Value(40), engine.MakeKeyNewKey); err != nil {
		return err
	}
	if err := e.api.SetIndexRange(e.ses, byAge, engine.RangeUpperLimit); err != nil {
		return err
	}

	// city = paris
	byCity := tids[1]
	if err := e.api.SetCurrentIndex(e.ses, byCity, "byCity"); err != nil {
		return err
	}
	if err := e.api.MakeKeyString(e.ses, byCity, "paris", engine.CPUnicode, engine.MakeKeyNewKey); err != nil {
		return err
	}
	if _, err := e.api.Seek(e.ses, byCity, engine.SeekEQ|engine.SeekSetIndexRange); err != nil {
		return err
	}

	it, err := cursor.IntersectIndexes(e.api, e.ses, byAge, byCity)
	if err != nil {
		return err
	}
	defer it.Close()
	var names []string
	for it.Next() {
		bm := it.Bookmark()
		if err := e.api.GotoBookmark(e.ses, pt.tid, bm, len(bm)); err != nil {
			return err
		}
		s, _, err := e.api.RetrieveColumnAsString(e.ses, pt.tid, pt.name, engine.CPUnicode, engine.RetrieveColumnNone)
		if err != nil {
			return err
		}
		names = append(names, s)
	}
	if err := it.Err(); err != nil {
		return err
	}
	return expectNames([]string{"bob", "erin"}, names)
}

// argumentChecks verifies that rejected arguments never reach the engine.
func argumentChecks(e *env) error {
	pt, err := e.createPeople("argument_checks")
	if err != nil {
		return err
	}
	checks := []struct {
		name string
		call func() error
	}{
		{"negative density", func() error {
			return e.api.CreateIndex(e.ses, pt.tid, "bad", "+age\x00", 0, -1, engine.CreateIndexNone)
		}},
		{"short bookmark buffer", func() error {
			return e.api.GotoBookmark(e.ses, pt.tid, make([]byte, 2), 4)
		}},
		{"empty table name", func() error {
			_, err := e.api.OpenTable(e.ses, "")
			return err
		}},
		{"negative record count maximum", func() error {
			_, err := e.api.IndexRecordCount(e.ses, pt.tid, -1)
			return err
		}},
	}
	var result *multierror.Error
	for _, c := range checks {
		before := e.surface.TotalCalls()
		err := c.call()
		if !errors.Is(err, engine.ErrCallerParameter) {
			result = multierror.Append(result, fmt.Errorf("%s: expected a caller-parameter error, got %v", c.name, err))
		}
		if e.surface.TotalCalls() != before {
			result = multierror.Append(result, fmt.Errorf("%s: the engine was called", c.name))
		}
	}
	return result.ErrorOrNil()
}
