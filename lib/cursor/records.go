package cursor

import (
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("cursor")

// Records walks the records of a cursor in the order of its current index,
// positioning the cursor on each one in turn.
type Records struct {
	api         *jet.API
	ses         engine.Session
	tid         engine.TableID
	fromCurrent bool
	started     bool
	done        bool
	err         error
}

// NewRecords starts at the first entry of the current index.
func NewRecords(api *jet.API, ses engine.Session, tid engine.TableID) *Records {
	return &Records{api: api, ses: ses, tid: tid}
}

// NewRecordsFromCurrent starts at the entry the cursor is on, typically
// after a Seek. An index range on the cursor bounds the walk.
func NewRecordsFromCurrent(api *jet.API, ses engine.Session, tid engine.TableID) *Records {
	return &Records{api: api, ses: ses, tid: tid, fromCurrent: true}
}

// Next moves to the next record and reports whether there is one.
func (r *Records) Next() bool {
	if r.done {
		return false
	}
	var (
		ok  bool
		err error
	)
	switch {
	case r.started:
		ok, err = r.api.TryMoveNext(r.ses, r.tid)
	case r.fromCurrent:
		ok, err = r.api.TryMove(r.ses, r.tid, 0, engine.MoveNone)
	default:
		ok, err = r.api.TryMoveFirst(r.ses, r.tid)
	}
	r.started = true
	if err != nil {
		r.err = err
	}
	if !ok {
		r.done = true
	}
	return ok
}

// Err returns the first error met while iterating.
func (r *Records) Err() error { return r.err }

// Session and Table let the loop body read the current record.
func (r *Records) Session() engine.Session { return r.ses }
func (r *Records) Table() engine.TableID   { return r.tid }

// Close ends the iteration. The cursor itself stays open.
func (r *Records) Close() error {
	r.done = true
	return nil
}
