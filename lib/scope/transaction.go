package scope

import (
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/jet"
	"github.com/hashicorp/go-multierror"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("scope")

// TxState is the lifecycle state of a Transaction.
type TxState int

const (
	TxClosed TxState = iota
	TxOpen
	TxCommitted
	TxRolledBack
)

func (s TxState) String() string {
	switch s {
	case TxClosed:
		return "Closed"
	case TxOpen:
		return "Open"
	case TxCommitted:
		return "Committed"
	case TxRolledBack:
		return "RolledBack"
	default:
		return "Unknown"
	}
}

// Transaction guards transaction levels opened on a session. Begin on an
// open transaction opens a nested level; Commit and Rollback close the
// innermost level, and the transaction reaches its terminal state when the
// last level it opened is closed.
type Transaction struct {
	api     *jet.API
	ses     engine.Session
	state   TxState
	depth   int
	updates []*Update
}

// NewTransaction begins a transaction on ses.
func NewTransaction(api *jet.API, ses engine.Session) (*Transaction, error) {
	tx := &Transaction{api: api, ses: ses}
	if err := tx.Begin(); err != nil {
		return nil, err
	}
	return tx, nil
}

// State returns the lifecycle state.
func (tx *Transaction) State() TxState { return tx.state }

// Depth returns the number of levels this transaction holds open.
func (tx *Transaction) Depth() int { return tx.depth }

// Session returns the session the transaction runs on.
func (tx *Transaction) Session() engine.Session { return tx.ses }

// Begin opens the transaction, or a nested level when it is already open.
// A terminal transaction can be begun again.
func (tx *Transaction) Begin() error {
	if err := tx.api.BeginTransaction(tx.ses); err != nil {
		return err
	}
	tx.depth++
	tx.state = TxOpen
	return nil
}

// Commit closes the innermost level. Updates still prepared through
// NewUpdate at that level are canceled first; updates of outer levels stay
// prepared.
func (tx *Transaction) Commit(grbit engine.CommitGrbit) error {
	if tx.state != TxOpen {
		return engine.StateError("Transaction.Commit", "transaction is %s", tx.state)
	}
	if err := tx.cancelUpdates("commit", tx.depth); err != nil {
		return err
	}
	if err := tx.api.CommitTransaction(tx.ses, grbit); err != nil {
		return err
	}
	tx.closeLevel(TxCommitted)
	return nil
}

// Rollback undoes the innermost level. With RollbackAll the engine undoes
// every level of the session and the transaction becomes RolledBack.
func (tx *Transaction) Rollback(grbit engine.RollbackGrbit) error {
	if tx.state != TxOpen {
		return engine.StateError("Transaction.Rollback", "transaction is %s", tx.state)
	}
	return tx.rollback(grbit)
}

func (tx *Transaction) rollback(grbit engine.RollbackGrbit) error {
	if err := tx.api.Rollback(tx.ses, grbit); err != nil {
		return err
	}
	// the engine cancels prepared updates as part of the rollback
	for _, u := range tx.updates {
		u.detach()
	}
	tx.updates = nil
	if grbit&engine.RollbackAll != 0 {
		tx.depth = 0
		tx.state = TxRolledBack
		return nil
	}
	tx.closeLevel(TxRolledBack)
	return nil
}

func (tx *Transaction) closeLevel(terminal TxState) {
	tx.depth--
	if tx.depth == 0 {
		tx.state = terminal
	}
}

// Close rolls back every level the transaction still holds open. It is a
// no-op on a terminal transaction.
func (tx *Transaction) Close() error {
	if tx.state != TxOpen {
		return nil
	}
	log.Warningf("session %s: transaction closed while open, rolling back %d level(s)", tx.ses, tx.depth)
	var result *multierror.Error
	for tx.state == TxOpen {
		if err := tx.rollback(engine.RollbackNone); err != nil {
			result = multierror.Append(result, err)
			break
		}
	}
	return result.ErrorOrNil()
}

// NewUpdate prepares an update that belongs to the current level of this
// transaction: if it was not saved, it is canceled by the Commit of that
// level and discarded by any Rollback.
func (tx *Transaction) NewUpdate(tid engine.TableID, prep engine.Prep) (*Update, error) {
	if tx.state != TxOpen {
		return nil, engine.StateError("Transaction.NewUpdate", "transaction is %s", tx.state)
	}
	u, err := NewUpdate(tx.api, tx.ses, tid, prep)
	if err != nil {
		return nil, err
	}
	u.parent = tx
	u.level = tx.depth
	tx.updates = append(tx.updates, u)
	return u, nil
}

// cancelUpdates cancels the prepared updates opened at level or deeper.
func (tx *Transaction) cancelUpdates(reason string, level int) error {
	var result *multierror.Error
	var pending []*Update
	kept := tx.updates[:0]
	for _, u := range tx.updates {
		if u.level >= level {
			pending = append(pending, u)
		} else {
			kept = append(kept, u)
		}
	}
	tx.updates = kept
	for _, u := range pending {
		if u.state != UpdatePrepared {
			continue
		}
		log.Warningf("session %s: %s with update still prepared on %s, canceling it", tx.ses, reason, u.tid)
		if err := u.Cancel(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (tx *Transaction) forget(u *Update) {
	for i, other := range tx.updates {
		if other == u {
			tx.updates = append(tx.updates[:i], tx.updates[i+1:]...)
			return
		}
	}
}

// RunInTransaction runs fn inside a new transaction. The transaction is
// committed when fn returns nil and rolled back otherwise; a failing
// rollback is reported together with the error of fn.
func RunInTransaction(api *jet.API, ses engine.Session, fn func(tx *Transaction) error) (err error) {
	tx, err := NewTransaction(api, ses)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := tx.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr)
		}
	}()

	if err := fn(tx); err != nil {
		if tx.state == TxOpen {
			if rbErr := tx.rollback(engine.RollbackNone); rbErr != nil {
				return multierror.Append(err, rbErr)
			}
		}
		return err
	}
	if tx.state != TxOpen {
		return nil
	}
	return tx.Commit(engine.CommitNone)
}
