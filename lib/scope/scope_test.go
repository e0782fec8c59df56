package scope

import (
	"errors"
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/engine/engines/memtable"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"testing"
)

func setup(t *testing.T) (*jet.API, engine.Session, engine.TableID, engine.ColumnID) {
	t.Helper()
	api, err := jet.NewAPI(memtable.New(nil))
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
	id, err := api.AddColumn(ses, tid, "n", &native.ColumnDef{Coltyp: engine.ColtypLong})
	if err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	return api, ses, tid, id
}

func count(t *testing.T, api *jet.API, ses engine.Session, tid engine.TableID) int {
	t.Helper()
	n := 0
	ok, err := api.TryMoveFirst(ses, tid)
	for ; ok && err == nil; ok, err = api.TryMoveNext(ses, tid) {
		n++
	}
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestStateStrings(t *testing.T) {
	tests := map[string]string{
		TxOpen.String():         "Open",
		TxCommitted.String():    "Committed",
		TxRolledBack.String():   "RolledBack",
		UpdatePrepared.String(): "Prepared",
		UpdateSaved.String():    "Saved",
		UpdateCanceled.String(): "Canceled",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}
}

func TestTransactionLifecycle(t *testing.T) {
	api, ses, _, _ := setup(t)

	tx, err := NewTransaction(api, ses)
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}
	if tx.State() != TxOpen || tx.Depth() != 1 || tx.Session() != ses {
		t.Fatalf("Expected an open transaction at depth 1, got %s at %d", tx.State(), tx.Depth())
	}
	if err := tx.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := tx.Commit(engine.CommitNone); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if tx.State() != TxOpen || tx.Depth() != 1 {
		t.Errorf("Expected the outer level to stay open, got %s at %d", tx.State(), tx.Depth())
	}
	if err := tx.Commit(engine.CommitLazyFlush); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if tx.State() != TxCommitted {
		t.Errorf("Expected Committed, got %s", tx.State())
	}

	if err := tx.Rollback(engine.RollbackNone); !errors.Is(err, engine.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState rolling back a committed transaction, got %v", err)
	}
	if _, err := tx.NewUpdate(1, engine.PrepInsert); !errors.Is(err, engine.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState preparing on a committed transaction, got %v", err)
	}
	if err := tx.Close(); err != nil {
		t.Errorf("Close of a committed transaction failed: %v", err)
	}

	// a terminal transaction can be begun again
	if err := tx.Begin(); err != nil {
		t.Fatalf("Begin after commit failed: %v", err)
	}
	if err := tx.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if tx.State() != TxRolledBack {
		t.Errorf("Expected RolledBack after Close, got %s", tx.State())
	}
}

func TestCommitCancelsPreparedUpdates(t *testing.T) {
	api, ses, tid, id := setup(t)

	tx, err := NewTransaction(api, ses)
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}
	defer tx.Close()

	saved, err := tx.NewUpdate(tid, engine.PrepInsert)
	if err != nil {
		t.Fatalf("NewUpdate failed: %v", err)
	}
	if err := saved.SetValue(id, codec.Int32Value(1)); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if _, err := saved.Save(nil, 0); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	pending, err := tx.NewUpdate(tid, engine.PrepInsert)
	if err != nil {
		t.Fatalf("NewUpdate failed: %v", err)
	}
	if err := pending.SetValue(id, codec.Int32Value(2)); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	if err := tx.Commit(engine.CommitNone); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if saved.State() != UpdateSaved || pending.State() != UpdateCanceled {
		t.Errorf("Expected Saved/Canceled, got %s/%s", saved.State(), pending.State())
	}
	if n := count(t, api, ses, tid); n != 1 {
		t.Errorf("Expected 1 record, got %d", n)
	}
}

func TestRollbackDetachesUpdates(t *testing.T) {
	api, ses, tid, id := setup(t)

	tx, err := NewTransaction(api, ses)
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}
	upd, err := tx.NewUpdate(tid, engine.PrepInsert)
	if err != nil {
		t.Fatalf("NewUpdate failed: %v", err)
	}
	if err := upd.SetValue(id, codec.Int32Value(1)); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := tx.Rollback(engine.RollbackNone); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	if upd.State() != UpdateCanceled {
		t.Errorf("Expected Canceled, got %s", upd.State())
	}
	if _, err := upd.Save(nil, 0); !errors.Is(err, engine.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState saving a detached update, got %v", err)
	}
	if err := upd.Close(); err != nil {
		t.Errorf("Close of a detached update failed: %v", err)
	}

	// the cursor holds no update any more
	if err := api.PrepareUpdate(ses, tid, engine.PrepInsert); err != nil {
		t.Errorf("Expected the cursor to be free, got %v", err)
	}
}

func TestRollbackAllEndsTransaction(t *testing.T) {
	api, ses, tid, id := setup(t)

	tx, err := NewTransaction(api, ses)
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}
	if err := tx.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	upd, err := tx.NewUpdate(tid, engine.PrepInsert)
	if err != nil {
		t.Fatalf("NewUpdate failed: %v", err)
	}
	if err := upd.SetValue(id, codec.Int32Value(1)); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	if err := tx.Rollback(engine.RollbackAll); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	if tx.State() != TxRolledBack || tx.Depth() != 0 {
		t.Fatalf("Expected RolledBack at depth 0, got %s at %d", tx.State(), tx.Depth())
	}
	if upd.State() != UpdateCanceled {
		t.Errorf("Expected Canceled, got %s", upd.State())
	}
	if err := tx.Close(); err != nil {
		t.Errorf("Close after rolling back all levels failed: %v", err)
	}
	if err := tx.Rollback(engine.RollbackNone); !errors.Is(err, engine.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}

	// the engine left every level as well
	if err := api.CommitTransaction(ses, engine.CommitNone); !engine.IsStatus(err, engine.ErrNotInTransaction) {
		t.Errorf("Expected ErrNotInTransaction, got %v", err)
	}
	if n := count(t, api, ses, tid); n != 0 {
		t.Errorf("Expected 0 records, got %d", n)
	}
}

func TestNestedCommitKeepsOuterUpdate(t *testing.T) {
	api, ses, tid, id := setup(t)

	tx, err := NewTransaction(api, ses)
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}
	defer tx.Close()

	outer, err := tx.NewUpdate(tid, engine.PrepInsert)
	if err != nil {
		t.Fatalf("NewUpdate failed: %v", err)
	}
	if err := outer.SetValue(id, codec.Int32Value(7)); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	if err := tx.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := tx.Commit(engine.CommitNone); err != nil {
		t.Fatalf("nested Commit failed: %v", err)
	}
	if tx.State() != TxOpen || tx.Depth() != 1 {
		t.Fatalf("Expected Open at depth 1, got %s at %d", tx.State(), tx.Depth())
	}
	if outer.State() != UpdatePrepared {
		t.Fatalf("Expected the outer update to stay Prepared, got %s", outer.State())
	}
	if _, err := outer.Save(nil, 0); err != nil {
		t.Fatalf("Save after the nested commit failed: %v", err)
	}
	if err := tx.Commit(engine.CommitNone); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if n := count(t, api, ses, tid); n != 1 {
		t.Errorf("Expected 1 record, got %d", n)
	}
}

func TestNestedCommitCancelsInnerUpdate(t *testing.T) {
	api, ses, tid, id := setup(t)

	tx, err := NewTransaction(api, ses)
	if err != nil {
		t.Fatalf("NewTransaction failed: %v", err)
	}
	defer tx.Close()

	if err := tx.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	inner, err := tx.NewUpdate(tid, engine.PrepInsert)
	if err != nil {
		t.Fatalf("NewUpdate failed: %v", err)
	}
	if err := inner.SetValue(id, codec.Int32Value(7)); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := tx.Commit(engine.CommitNone); err != nil {
		t.Fatalf("nested Commit failed: %v", err)
	}
	if inner.State() != UpdateCanceled {
		t.Errorf("Expected the inner update to be Canceled, got %s", inner.State())
	}
	if err := tx.Commit(engine.CommitNone); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if n := count(t, api, ses, tid); n != 0 {
		t.Errorf("Expected 0 records, got %d", n)
	}
}

func TestUpdateOutsideTransaction(t *testing.T) {
	api, ses, tid, id := setup(t)

	upd, err := NewUpdate(api, ses, tid, engine.PrepInsert)
	if err != nil {
		t.Fatalf("NewUpdate failed: %v", err)
	}
	if upd.Prep() != engine.PrepInsert {
		t.Errorf("Expected Insert, got %s", upd.Prep())
	}
	if _, err := NewUpdate(api, ses, tid, engine.PrepInsert); !engine.IsStatus(err, engine.ErrAlreadyPrepared) {
		t.Errorf("Expected ErrAlreadyPrepared for a second update, got %v", err)
	}
	if err := upd.SetValue(id, codec.Int32Value(4)); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := upd.SaveAndGotoBookmark(); err != nil {
		t.Fatalf("SaveAndGotoBookmark failed: %v", err)
	}
	v, ok, err := api.RetrieveColumnAsInt32(ses, tid, id, engine.RetrieveColumnNone)
	if err != nil || !ok || v != 4 {
		t.Errorf("Expected 4 on the saved record, got (%d, %v, %v)", v, ok, err)
	}
	if err := upd.Cancel(); !errors.Is(err, engine.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState canceling a saved update, got %v", err)
	}

	for _, prep := range []engine.Prep{engine.PrepCancel, engine.Prep(9)} {
		if _, err := NewUpdate(api, ses, tid, prep); !errors.Is(err, engine.ErrRange) {
			t.Errorf("Expected range error for %s, got %v", prep, err)
		}
	}
}

func TestRunInTransactionCommits(t *testing.T) {
	api, ses, tid, id := setup(t)

	err := RunInTransaction(api, ses, func(tx *Transaction) error {
		upd, err := tx.NewUpdate(tid, engine.PrepInsert)
		if err != nil {
			return err
		}
		if err := upd.SetColumns([]native.SetColumn{{ColumnID: id, Data: []byte{1, 0, 0, 0}, DataSize: 4}}); err != nil {
			return err
		}
		_, err = upd.Save(nil, 0)
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction failed: %v", err)
	}
	if err := api.CommitTransaction(ses, engine.CommitNone); !engine.IsStatus(err, engine.ErrNotInTransaction) {
		t.Errorf("Expected no open transaction, got %v", err)
	}
	if n := count(t, api, ses, tid); n != 1 {
		t.Errorf("Expected 1 record, got %d", n)
	}
}

func TestRunInTransactionPanicsRollBack(t *testing.T) {
	api, ses, tid, id := setup(t)

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("Expected the panic to propagate")
			}
		}()
		_ = RunInTransaction(api, ses, func(tx *Transaction) error {
			upd, err := tx.NewUpdate(tid, engine.PrepInsert)
			if err != nil {
				return err
			}
			if err := upd.SetValue(id, codec.Int32Value(1)); err != nil {
				return err
			}
			if _, err := upd.Save(nil, 0); err != nil {
				return err
			}
			panic("boom")
		})
	}()

	if n := count(t, api, ses, tid); n != 0 {
		t.Errorf("Expected the deferred Close to roll back, got %d records", n)
	}
}
