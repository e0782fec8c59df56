package memtable

import (
	"github.com/DamirAinullin/ManagedEsent/lib/codec"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	"github.com/google/btree"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"strings"
	"sync"
	"sync/atomic"
)

var log = logger.GetLogger("memtable")

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	bookmarkSize = 8  // bookmarks are big-endian record sequence numbers
	btreeDegree  = 32 // degree of every record and index tree
)

// --------------------------------------------------------------------------
// Core engine structure
// --------------------------------------------------------------------------

// Engine is an in-process ISAM engine implementing engine.CallSurface.
//
// Every call runs under one engine-wide mutex, so sessions may be driven
// from different goroutines. Readers see uncommitted changes of other
// sessions; writers are kept apart by record locks held until the owning
// transaction ends (a second writer gets ErrWriteConflict).
type Engine struct {
	opts *Options
	mu   sync.Mutex

	sessions *xsync.MapOf[engine.Session, *session]
	cursors  *xsync.MapOf[engine.TableID, *cursor]
	tables   *xsync.MapOf[string, *table]

	nextSession atomic.Uint64
	nextCursor  atomic.Uint64
	nextTemp    atomic.Uint64
}

// New creates an engine with the specified options (optional)
func New(opts *Options) *Engine {
	if opts == nil {
		opts = DefaultOptions()
	}
	e := &Engine{
		opts:     opts,
		sessions: xsync.NewMapOf[engine.Session, *session](),
		cursors:  xsync.NewMapOf[engine.TableID, *cursor](),
		tables:   xsync.NewMapOf[string, *table](),
	}
	// distinct ranges make a session id passed as a table id fail loudly
	e.nextSession.Store(0x1000)
	e.nextCursor.Store(0x8000)
	return e
}

// Limits implements engine.CallSurface.
func (e *Engine) Limits() engine.Limits {
	return engine.Limits{
		BookmarkMost:        e.opts.BookmarkMost,
		KeyMost:             e.opts.KeyMost,
		MaxTransactionDepth: e.opts.MaxTransactionDepth,
		ColumnMost:          e.opts.ColumnMost,
		LongValueMost:       e.opts.LongValueMost,
		PointerSize:         e.opts.Layout.PointerSize,
	}
}

// --------------------------------------------------------------------------
// Sessions
// --------------------------------------------------------------------------

// session holds the per-session transaction stack and owned cursors
type session struct {
	id      engine.Session
	levels  [][]undoEntry // one undo log per open transaction level
	locks   []lockRef     // record locks released when the outermost level ends
	cursors map[engine.TableID]*cursor
}

func (s *session) depth() int { return len(s.levels) }

func (e *Engine) BeginSession() (engine.Session, engine.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sessions.Size() >= e.opts.MaxSessions {
		return engine.NilSession, engine.ErrTooManyActiveUsers
	}
	id := engine.Session(e.nextSession.Add(1))
	e.sessions.Store(id, &session{id: id, cursors: make(map[engine.TableID]*cursor)})
	log.Debugf("session %s started", id)
	return id, engine.StatusSuccess
}

// EndSession rolls back every open level and closes the session's cursors.
func (e *Engine) EndSession(ses engine.Session) engine.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, status := e.session(ses)
	if status < 0 {
		return status
	}
	for s.depth() > 0 {
		e.rollbackLevel(s)
	}
	for id, c := range s.cursors {
		e.closeCursor(s, id, c)
	}
	e.sessions.Delete(ses)
	log.Debugf("session %s ended", ses)
	return engine.StatusSuccess
}

func (e *Engine) session(ses engine.Session) (*session, engine.Status) {
	s, ok := e.sessions.Load(ses)
	if !ok {
		return nil, engine.ErrInvalidSesid
	}
	return s, engine.StatusSuccess
}

// cursorOf resolves a cursor that must belong to the session.
func (e *Engine) cursorOf(ses engine.Session, tid engine.TableID) (*session, *cursor, engine.Status) {
	s, status := e.session(ses)
	if status < 0 {
		return nil, nil, status
	}
	c, ok := s.cursors[tid]
	if !ok {
		return nil, nil, engine.ErrInvalidTableID
	}
	return s, c, engine.StatusSuccess
}

func (e *Engine) openCursor(s *session, t *table) *cursor {
	c := &cursor{id: engine.TableID(e.nextCursor.Add(1)), ses: s.id, t: t}
	if t.primary != nil {
		c.idx = t.primary
	}
	t.refs++
	s.cursors[c.id] = c
	e.cursors.Store(c.id, c)
	return c
}

func (e *Engine) closeCursor(s *session, id engine.TableID, c *cursor) {
	delete(s.cursors, id)
	e.cursors.Delete(id)
	c.t.refs--
	if c.t.temp && c.t.refs == 0 {
		e.tables.Delete(c.t.key)
		log.Debugf("temporary table %s dropped", c.t.name)
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// decodeName reads a null-terminated 2-byte name. A nil or empty name
// yields "".
func decodeName(b []byte) (string, bool) {
	if b == nil {
		return "", true
	}
	s, err := codec.TrimNull(b)
	if err != nil {
		return "", false
	}
	return s, true
}

func nameKey(name string) string { return strings.ToLower(name) }

func newRecordTree() *btree.BTreeG[*record] {
	return btree.NewG[*record](btreeDegree, func(a, b *record) bool { return a.seq < b.seq })
}

func newEntryTree() *btree.BTreeG[entry] {
	return btree.NewG[entry](btreeDegree, entry.less)
}
