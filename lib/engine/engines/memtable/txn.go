package memtable

import (
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

// --------------------------------------------------------------------------
// Transactions
// --------------------------------------------------------------------------

// undoEntry restores one record to its image before a change. A nil before
// image removes the record.
type undoEntry struct {
	t      *table
	seq    uint64
	before *record
}

type lockRef struct {
	t   *table
	seq uint64
}

func (e *Engine) BeginTransaction(ses engine.Session) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, status := e.session(ses)
	if status < 0 {
		return status
	}
	if s.depth() >= e.opts.MaxTransactionDepth {
		return engine.ErrTransTooDeep
	}
	s.levels = append(s.levels, nil)
	log.Debugf("session %s: begin level %d", ses, s.depth())
	return engine.StatusSuccess
}

// CommitTransaction makes the innermost level part of its parent, or
// durable when it is the outermost one.
func (e *Engine) CommitTransaction(ses engine.Session, grbit engine.CommitGrbit) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, status := e.session(ses)
	if status < 0 {
		return status
	}
	if s.depth() == 0 {
		return engine.ErrNotInTransaction
	}
	top := s.levels[len(s.levels)-1]
	s.levels = s.levels[:len(s.levels)-1]
	if s.depth() > 0 {
		parent := len(s.levels) - 1
		s.levels[parent] = append(s.levels[parent], top...)
	} else {
		e.releaseLocks(s)
	}
	log.Debugf("session %s: commit to level %d", ses, s.depth())
	return engine.StatusSuccess
}

func (e *Engine) Rollback(ses engine.Session, grbit engine.RollbackGrbit) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, status := e.session(ses)
	if status < 0 {
		return status
	}
	if s.depth() == 0 {
		return engine.ErrNotInTransaction
	}
	e.rollbackLevel(s)
	for grbit&engine.RollbackAll != 0 && s.depth() > 0 {
		e.rollbackLevel(s)
	}
	log.Debugf("session %s: rolled back to level %d", ses, s.depth())
	return engine.StatusSuccess
}

// rollbackLevel undoes the innermost level in reverse order. Updates
// prepared on the session's cursors are canceled.
func (e *Engine) rollbackLevel(s *session) {
	top := s.levels[len(s.levels)-1]
	s.levels = s.levels[:len(s.levels)-1]
	for i := len(top) - 1; i >= 0; i-- {
		u := top[i]
		u.t.store(u.seq, u.before)
	}
	for _, c := range s.cursors {
		c.upd = nil
	}
	if s.depth() == 0 {
		e.releaseLocks(s)
	}
}

func (e *Engine) releaseLocks(s *session) {
	for _, l := range s.locks {
		if l.t.locks[l.seq] == s.id {
			delete(l.t.locks, l.seq)
		}
	}
	s.locks = nil
}

// lock takes the write lock of a record for the rest of the outermost
// transaction. Outside a transaction it only checks for a conflict.
func (e *Engine) lock(s *session, t *table, seq uint64) engine.Status {
	if holder, held := t.locks[seq]; held {
		if holder != s.id {
			return engine.ErrWriteConflict
		}
		return engine.StatusSuccess
	}
	if s.depth() > 0 {
		t.locks[seq] = s.id
		s.locks = append(s.locks, lockRef{t: t, seq: seq})
	}
	return engine.StatusSuccess
}

// remember logs the image of a record before it changes.
func (s *session) remember(t *table, seq uint64, before *record) {
	if s.depth() == 0 {
		return
	}
	top := len(s.levels) - 1
	s.levels[top] = append(s.levels[top], undoEntry{t: t, seq: seq, before: before})
}
