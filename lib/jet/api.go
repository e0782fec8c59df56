package jet

import (
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/DamirAinullin/ManagedEsent/lib/native"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("jet")

// API issues checked calls against one engine call surface.
type API struct {
	surface engine.CallSurface
	layout  native.Layout
	limits  engine.Limits
}

// NewAPI binds to an engine. Structure images are built for the pointer size
// the engine reports.
func NewAPI(surface engine.CallSurface) (*API, error) {
	if surface == nil {
		return nil, engine.NullError("jet.NewAPI", "surface")
	}
	limits := surface.Limits()
	layout := native.Layout{PointerSize: limits.PointerSize}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &API{surface: surface, layout: layout, limits: limits}, nil
}

// Surface returns the engine the API calls.
func (a *API) Surface() engine.CallSurface { return a.surface }

// Layout returns the native layout structure images are built for.
func (a *API) Layout() native.Layout { return a.layout }

// Limits returns the engine-defined constants.
func (a *API) Limits() engine.Limits { return a.limits }

// check maps a status to an error and logs engine failures.
func (a *API) check(op string, status engine.Status) error {
	err := engine.Check(op, status)
	if err != nil {
		log.Debugf("%v", err)
	}
	return err
}

// name marshals a required name.
func name(op, param, s string) ([]byte, error) {
	if s == "" {
		return nil, engine.NullError(op, param)
	}
	return codec.NullTerminated(s)
}

func checkCount(op, param string, count, length int) error {
	switch {
	case count < 0:
		return engine.RangeError(op, param, "negative count %d", count)
	case count > length:
		return engine.RangeError(op, param, "count %d exceeds array length %d", count, length)
	}
	return nil
}

// --------------------------------------------------------------------------
// Sessions
// --------------------------------------------------------------------------

func (a *API) BeginSession() (engine.Session, error) {
	ses, status := a.surface.BeginSession()
	if err := a.check("JetBeginSession", status); err != nil {
		return engine.NilSession, err
	}
	return ses, nil
}

func (a *API) EndSession(ses engine.Session) error {
	return a.check("JetEndSession", a.surface.EndSession(ses))
}

// --------------------------------------------------------------------------
// Transactions
// --------------------------------------------------------------------------

func (a *API) BeginTransaction(ses engine.Session) error {
	return a.check("JetBeginTransaction", a.surface.BeginTransaction(ses))
}

func (a *API) CommitTransaction(ses engine.Session, grbit engine.CommitGrbit) error {
	return a.check("JetCommitTransaction", a.surface.CommitTransaction(ses, grbit))
}

func (a *API) Rollback(ses engine.Session, grbit engine.RollbackGrbit) error {
	return a.check("JetRollback", a.surface.Rollback(ses, grbit))
}
