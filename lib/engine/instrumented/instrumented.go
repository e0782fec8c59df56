// Package instrumented wraps an engine.CallSurface and records, per entry
// point, how often it was called, how often it failed and how long it
// took. Counters are VictoriaMetrics counters in a private set (exported in
// Prometheus text format); latencies are go-metrics timers in a private
// registry.
//
// The wrapper is also how tests prove that a caller-parameter error was
// raised before the engine was reached: TotalCalls does not move.
//
// Column payloads are tracked as well: Written and Read hold the size
// distribution of values passed to SetColumn and returned by RetrieveColumn.
package instrumented

import (
	"fmt"
	"github.com/DamirAinullin/ManagedEsent/lib/engine"
	vm "github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
	"io"
	"sort"
	"sync/atomic"
	"time"
)

// Surface is an engine.CallSurface decorator.
type Surface struct {
	next     engine.CallSurface
	set      *vm.Set
	registry gometrics.Registry
	total    atomic.Uint64
	written  *ValueSizes
	read     *ValueSizes
}

var _ engine.CallSurface = (*Surface)(nil)

// New wraps next.
func New(next engine.CallSurface) *Surface {
	return &Surface{
		next:     next,
		set:      vm.NewSet(),
		registry: gometrics.NewRegistry(),
		written:  newValueSizes(),
		read:     newValueSizes(),
	}
}

// Written returns the sizes of values set through SetColumn.
func (s *Surface) Written() *ValueSizes { return s.written }

// Read returns the sizes of non-null values returned by RetrieveColumn.
// Truncated reads count with their full size.
func (s *Surface) Read() *ValueSizes { return s.read }

func callsName(op string) string  { return fmt.Sprintf(`isam_engine_calls_total{op=%q}`, op) }
func errorsName(op string) string { return fmt.Sprintf(`isam_engine_errors_total{op=%q}`, op) }

func (s *Surface) observe(op string, start time.Time, status engine.Status) {
	s.total.Add(1)
	s.set.GetOrCreateCounter(callsName(op)).Inc()
	if status < 0 {
		s.set.GetOrCreateCounter(errorsName(op)).Inc()
	}
	gometrics.GetOrRegisterTimer(op, s.registry).UpdateSince(start)
}

// TotalCalls returns the number of calls forwarded to the engine.
func (s *Surface) TotalCalls() uint64 { return s.total.Load() }

// Calls returns the number of calls of one entry point, e.g. "JetSeek".
func (s *Surface) Calls(op string) uint64 { return s.set.GetOrCreateCounter(callsName(op)).Get() }

// Errors returns the number of failed calls of one entry point.
func (s *Surface) Errors(op string) uint64 { return s.set.GetOrCreateCounter(errorsName(op)).Get() }

// WritePrometheus writes the call and error counters in Prometheus text
// format.
func (s *Surface) WritePrometheus(w io.Writer) { s.set.WritePrometheus(w) }

// OpStats summarizes one entry point.
type OpStats struct {
	Op     string
	Calls  uint64
	Errors uint64
	Mean   time.Duration
	P99    time.Duration
}

// Snapshot returns the statistics of every entry point called so far,
// sorted by name.
func (s *Surface) Snapshot() []OpStats {
	var out []OpStats
	s.registry.Each(func(op string, m interface{}) {
		t, ok := m.(gometrics.Timer)
		if !ok {
			return
		}
		snap := t.Snapshot()
		out = append(out, OpStats{
			Op:     op,
			Calls:  s.Calls(op),
			Errors: s.Errors(op),
			Mean:   time.Duration(snap.Mean()),
			P99:    time.Duration(snap.Percentile(0.99)),
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Op < out[j].Op })
	return out
}

// --------------------------------------------------------------------------
// Sessions and transactions
// --------------------------------------------------------------------------

func (s *Surface) BeginSession() (engine.Session, engine.Status) {
	start := time.Now()
	ses, status := s.next.BeginSession()
	s.observe("JetBeginSession", start, status)
	return ses, status
}

func (s *Surface) EndSession(ses engine.Session) engine.Status {
	start := time.Now()
	status := s.next.EndSession(ses)
	s.observe("JetEndSession", start, status)
	return status
}

func (s *Surface) BeginTransaction(ses engine.Session) engine.Status {
	start := time.Now()
	status := s.next.BeginTransaction(ses)
	s.observe("JetBeginTransaction", start, status)
	return status
}

func (s *Surface) CommitTransaction(ses engine.Session, grbit engine.CommitGrbit) engine.Status {
	start := time.Now()
	status := s.next.CommitTransaction(ses, grbit)
	s.observe("JetCommitTransaction", start, status)
	return status
}

func (s *Surface) Rollback(ses engine.Session, grbit engine.RollbackGrbit) engine.Status {
	start := time.Now()
	status := s.next.Rollback(ses, grbit)
	s.observe("JetRollback", start, status)
	return status
}

// --------------------------------------------------------------------------
// Data Definition
// --------------------------------------------------------------------------

func (s *Surface) CreateTable(ses engine.Session, name []byte) (engine.TableID, engine.Status) {
	start := time.Now()
	tid, status := s.next.CreateTable(ses, name)
	s.observe("JetCreateTable", start, status)
	return tid, status
}

func (s *Surface) OpenTable(ses engine.Session, name []byte) (engine.TableID, engine.Status) {
	start := time.Now()
	tid, status := s.next.OpenTable(ses, name)
	s.observe("JetOpenTable", start, status)
	return tid, status
}

func (s *Surface) OpenTempTable(ses engine.Session, columndefs *engine.Block, count uint32, grbit engine.TempTableGrbit, columnids []engine.ColumnID) (engine.TableID, engine.Status) {
	start := time.Now()
	tid, status := s.next.OpenTempTable(ses, columndefs, count, grbit, columnids)
	s.observe("JetOpenTempTable", start, status)
	return tid, status
}

func (s *Surface) CloseTable(ses engine.Session, tid engine.TableID) engine.Status {
	start := time.Now()
	status := s.next.CloseTable(ses, tid)
	s.observe("JetCloseTable", start, status)
	return status
}

func (s *Surface) AddColumn(ses engine.Session, tid engine.TableID, name []byte, columndef *engine.Block, defaultValue []byte) (engine.ColumnID, engine.Status) {
	start := time.Now()
	id, status := s.next.AddColumn(ses, tid, name, columndef, defaultValue)
	s.observe("JetAddColumn", start, status)
	return id, status
}

func (s *Surface) DeleteColumn(ses engine.Session, tid engine.TableID, name []byte) engine.Status {
	start := time.Now()
	status := s.next.DeleteColumn(ses, tid, name)
	s.observe("JetDeleteColumn", start, status)
	return status
}

func (s *Surface) GetTableColumnInfo(ses engine.Session, tid engine.TableID, name []byte, columndef []byte) engine.Status {
	start := time.Now()
	status := s.next.GetTableColumnInfo(ses, tid, name, columndef)
	s.observe("JetGetTableColumnInfo", start, status)
	return status
}

func (s *Surface) CreateIndex(ses engine.Session, tid engine.TableID, indexcreates *engine.Block, count uint32) engine.Status {
	start := time.Now()
	status := s.next.CreateIndex(ses, tid, indexcreates, count)
	s.observe("JetCreateIndex", start, status)
	return status
}

func (s *Surface) DeleteIndex(ses engine.Session, tid engine.TableID, name []byte) engine.Status {
	start := time.Now()
	status := s.next.DeleteIndex(ses, tid, name)
	s.observe("JetDeleteIndex", start, status)
	return status
}

func (s *Surface) SetCurrentIndex(ses engine.Session, tid engine.TableID, name []byte) engine.Status {
	start := time.Now()
	status := s.next.SetCurrentIndex(ses, tid, name)
	s.observe("JetSetCurrentIndex", start, status)
	return status
}

// --------------------------------------------------------------------------
// Record Lifecycle
// --------------------------------------------------------------------------

func (s *Surface) PrepareUpdate(ses engine.Session, tid engine.TableID, prep engine.Prep) engine.Status {
	start := time.Now()
	status := s.next.PrepareUpdate(ses, tid, prep)
	s.observe("JetPrepareUpdate", start, status)
	return status
}

func (s *Surface) Update(ses engine.Session, tid engine.TableID, bookmark []byte) (uint32, engine.Status) {
	start := time.Now()
	n, status := s.next.Update(ses, tid, bookmark)
	s.observe("JetUpdate", start, status)
	return n, status
}

func (s *Surface) Delete(ses engine.Session, tid engine.TableID) engine.Status {
	start := time.Now()
	status := s.next.Delete(ses, tid)
	s.observe("JetDelete", start, status)
	return status
}

func (s *Surface) SetColumn(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, data []byte, grbit engine.SetColumnGrbit, ibLongValue, itagSequence uint32) engine.Status {
	start := time.Now()
	status := s.next.SetColumn(ses, tid, columnid, data, grbit, ibLongValue, itagSequence)
	s.observe("JetSetColumn", start, status)
	if status >= 0 {
		s.written.Add(len(data))
	}
	return status
}

func (s *Surface) SetColumns(ses engine.Session, tid engine.TableID, setcolumns *engine.Block, count uint32) engine.Status {
	start := time.Now()
	status := s.next.SetColumns(ses, tid, setcolumns, count)
	s.observe("JetSetColumns", start, status)
	return status
}

func (s *Surface) EscrowUpdate(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, delta []byte, previous []byte, grbit engine.EscrowUpdateGrbit) (uint32, engine.Status) {
	start := time.Now()
	n, status := s.next.EscrowUpdate(ses, tid, columnid, delta, previous, grbit)
	s.observe("JetEscrowUpdate", start, status)
	return n, status
}

// --------------------------------------------------------------------------
// Retrieval
// --------------------------------------------------------------------------

func (s *Surface) RetrieveColumn(ses engine.Session, tid engine.TableID, columnid engine.ColumnID, data []byte, grbit engine.RetrieveColumnGrbit, ibLongValue, itagSequence uint32) (uint32, engine.Status) {
	start := time.Now()
	n, status := s.next.RetrieveColumn(ses, tid, columnid, data, grbit, ibLongValue, itagSequence)
	s.observe("JetRetrieveColumn", start, status)
	if status >= 0 && status != engine.WrnColumnNull {
		s.read.Add(int(n))
	}
	return n, status
}

func (s *Surface) EnumerateColumns(ses engine.Session, tid engine.TableID, columnids *engine.Block, count uint32, alloc engine.Allocator, maxDataSize uint32, grbit engine.EnumerateColumnsGrbit) (*engine.Block, uint32, engine.Status) {
	start := time.Now()
	blk, n, status := s.next.EnumerateColumns(ses, tid, columnids, count, alloc, maxDataSize, grbit)
	s.observe("JetEnumerateColumns", start, status)
	return blk, n, status
}

func (s *Surface) GetBookmark(ses engine.Session, tid engine.TableID, bookmark []byte) (uint32, engine.Status) {
	start := time.Now()
	n, status := s.next.GetBookmark(ses, tid, bookmark)
	s.observe("JetGetBookmark", start, status)
	return n, status
}

func (s *Surface) RetrieveKey(ses engine.Session, tid engine.TableID, key []byte, grbit engine.RetrieveKeyGrbit) (uint32, engine.Status) {
	start := time.Now()
	n, status := s.next.RetrieveKey(ses, tid, key, grbit)
	s.observe("JetRetrieveKey", start, status)
	return n, status
}

// --------------------------------------------------------------------------
// Navigation
// --------------------------------------------------------------------------

func (s *Surface) Move(ses engine.Session, tid engine.TableID, offset int32, grbit engine.MoveGrbit) engine.Status {
	start := time.Now()
	status := s.next.Move(ses, tid, offset, grbit)
	s.observe("JetMove", start, status)
	return status
}

func (s *Surface) GotoBookmark(ses engine.Session, tid engine.TableID, bookmark []byte) engine.Status {
	start := time.Now()
	status := s.next.GotoBookmark(ses, tid, bookmark)
	s.observe("JetGotoBookmark", start, status)
	return status
}

func (s *Surface) MakeKey(ses engine.Session, tid engine.TableID, data []byte, grbit engine.MakeKeyGrbit) engine.Status {
	start := time.Now()
	status := s.next.MakeKey(ses, tid, data, grbit)
	s.observe("JetMakeKey", start, status)
	return status
}

func (s *Surface) Seek(ses engine.Session, tid engine.TableID, grbit engine.SeekGrbit) engine.Status {
	start := time.Now()
	status := s.next.Seek(ses, tid, grbit)
	s.observe("JetSeek", start, status)
	return status
}

func (s *Surface) SetIndexRange(ses engine.Session, tid engine.TableID, grbit engine.SetIndexRangeGrbit) engine.Status {
	start := time.Now()
	status := s.next.SetIndexRange(ses, tid, grbit)
	s.observe("JetSetIndexRange", start, status)
	return status
}

func (s *Surface) IndexRecordCount(ses engine.Session, tid engine.TableID, max uint32) (uint32, engine.Status) {
	start := time.Now()
	n, status := s.next.IndexRecordCount(ses, tid, max)
	s.observe("JetIndexRecordCount", start, status)
	return n, status
}

func (s *Surface) IntersectIndexes(ses engine.Session, ranges *engine.Block, count uint32, grbit engine.IntersectIndexesGrbit, recordlist []byte) engine.Status {
	start := time.Now()
	status := s.next.IntersectIndexes(ses, ranges, count, grbit, recordlist)
	s.observe("JetIntersectIndexes", start, status)
	return status
}

// Limits is not counted; it reads engine constants.
func (s *Surface) Limits() engine.Limits { return s.next.Limits() }
