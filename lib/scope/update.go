package scope

import (
	"github.com/DamirAinullin/ManagedEsent/lib/bookmark"
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
)

// UpdateState is the lifecycle state of an Update.
type UpdateState int

const (
	UpdateClosed UpdateState = iota
	UpdatePrepared
	UpdateSaved
	UpdateCanceled
)

func (s UpdateState) String() string {
	switch s {
	case UpdateClosed:
		return "Closed"
	case UpdatePrepared:
		return "Prepared"
	case UpdateSaved:
		return "Saved"
	case UpdateCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Update guards an insert or replace being built on a cursor. While it is
// prepared, column values are staged into the engine's copy buffer.
type Update struct {
	api    *jet.API
	ses    engine.Session
	tid    engine.TableID
	prep   engine.Prep
	state  UpdateState
	parent *Transaction
	level  int // transaction level the update was prepared at
}

// NewUpdate prepares an update on tid. prep is one of PrepInsert,
// PrepInsertCopy, PrepReplace or PrepReplaceNoLock; replacing requires the
// cursor to be on a record.
func NewUpdate(api *jet.API, ses engine.Session, tid engine.TableID, prep engine.Prep) (*Update, error) {
	switch prep {
	case engine.PrepInsert, engine.PrepInsertCopy, engine.PrepReplace, engine.PrepReplaceNoLock:
	default:
		return nil, engine.RangeError("scope.NewUpdate", "prep", "%s does not prepare an update", prep)
	}
	if err := api.PrepareUpdate(ses, tid, prep); err != nil {
		return nil, err
	}
	return &Update{api: api, ses: ses, tid: tid, prep: prep, state: UpdatePrepared}, nil
}

// State returns the lifecycle state.
func (u *Update) State() UpdateState { return u.state }

// Prep returns the kind of update.
func (u *Update) Prep() engine.Prep { return u.prep }

func (u *Update) requirePrepared(op string) error {
	if u.state != UpdatePrepared {
		return engine.StateError(op, "update is %s", u.state)
	}
	return nil
}

// ---- staging ----

// SetColumn stages raw column data; see jet.API.SetColumn.
func (u *Update) SetColumn(columnid engine.ColumnID, data []byte, grbit engine.SetColumnGrbit, info *jet.SetInfo) error {
	if err := u.requirePrepared("Update.SetColumn"); err != nil {
		return err
	}
	return u.api.SetColumn(u.ses, u.tid, columnid, data, len(data), grbit, info)
}

// SetValue stages a typed value.
func (u *Update) SetValue(columnid engine.ColumnID, v codec.Value) error {
	if err := u.requirePrepared("Update.SetValue"); err != nil {
		return err
	}
	return u.api.SetColumnValue(u.ses, u.tid, columnid, v, engine.SetColumnNone)
}

// SetString stages text in code page cp.
func (u *Update) SetString(columnid engine.ColumnID, s string, cp engine.CP) error {
	if err := u.requirePrepared("Update.SetString"); err != nil {
		return err
	}
	return u.api.SetColumnString(u.ses, u.tid, columnid, s, cp)
}

// SetColumns stages a batch of requests in one engine call.
func (u *Update) SetColumns(scs []native.SetColumn) error {
	if err := u.requirePrepared("Update.SetColumns"); err != nil {
		return err
	}
	return u.api.SetColumns(u.ses, u.tid, scs, len(scs))
}

// ---- terminal transitions ----

// Save stores the record. When buf is not nil the bookmark of the record is
// written into its first size bytes and its length returned. A failed save
// leaves the update prepared.
func (u *Update) Save(buf []byte, size int) (int, error) {
	if err := u.requirePrepared("Update.Save"); err != nil {
		return 0, err
	}
	n, err := u.api.Update(u.ses, u.tid, buf, size)
	if err != nil {
		return n, err
	}
	u.finish(UpdateSaved)
	return n, nil
}

// SaveBookmark stores the record and returns an owned copy of its
// bookmark.
func (u *Update) SaveBookmark() (bookmark.Bookmark, error) {
	buf := make([]byte, u.api.Limits().BookmarkMost)
	n, err := u.Save(buf, len(buf))
	if err != nil {
		return nil, err
	}
	return bookmark.Clone(buf, n), nil
}

// SaveAndGotoBookmark stores the record and positions the cursor on it.
// Inserts otherwise leave the cursor where it was.
func (u *Update) SaveAndGotoBookmark() error {
	bm, err := u.SaveBookmark()
	if err != nil {
		return err
	}
	return u.api.GotoBookmark(u.ses, u.tid, bm, len(bm))
}

// Cancel discards the staged values. An update the engine no longer holds
// (its transaction was rolled back) counts as canceled.
func (u *Update) Cancel() error {
	if err := u.requirePrepared("Update.Cancel"); err != nil {
		return err
	}
	err := u.api.PrepareUpdate(u.ses, u.tid, engine.PrepCancel)
	if err != nil && !engine.IsStatus(err, engine.ErrUpdateNotPrepared) {
		return err
	}
	u.finish(UpdateCanceled)
	return nil
}

// Close cancels the update if it was neither saved nor canceled.
func (u *Update) Close() error {
	if u.state != UpdatePrepared {
		return nil
	}
	log.Warningf("session %s: update on %s closed while prepared, canceling it", u.ses, u.tid)
	return u.Cancel()
}

func (u *Update) finish(state UpdateState) {
	u.state = state
	if u.parent != nil {
		u.parent.forget(u)
		u.parent = nil
	}
}

// detach marks an update canceled by its transaction's rollback.
func (u *Update) detach() {
	if u.state == UpdatePrepared {
		u.state = UpdateCanceled
	}
	u.parent = nil
}
