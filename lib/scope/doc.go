// Package scope provides the two scoped resources of the call boundary:
// Transaction, guarding a begin / commit-or-rollback pair on a session, and
// Update, guarding a prepare / save-or-cancel pair on a cursor.
//
// Both follow the same pattern: a constructor opens the resource, explicit
// terminal methods close it, and Close performs the fallback (implicit
// rollback, implicit cancel) when no terminal method was called. Close is
// idempotent and meant to be deferred right after the constructor:
//
//	tx, err := scope.NewTransaction(api, ses)
//	if err != nil {
//		return err
//	}
//	defer tx.Close()
//
//	upd, err := tx.NewUpdate(tid, engine.PrepInsert)
//	if err != nil {
//		return err
//	}
//	defer upd.Close()
//	...
//	if _, err := upd.Save(nil, 0); err != nil {
//		return err
//	}
//	return tx.Commit(engine.CommitNone)
//
// Calling a method in the wrong state (setting a column after Save,
// committing twice) is a caller error: an *engine.ParamError of kind
// engine.ErrInvalidState, raised without calling the engine.
//
// Thread-safety: scopes are not safe for concurrent use. They belong to the
// goroutine driving their session.
package scope
