package engine

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMemtable Implementation = "memtable"
)

// Allocator hands out memory for results the engine produces on the
// caller's behalf (EnumerateColumns). It must return a slice of exactly size
// bytes, or nil if the memory cannot be provided.
type Allocator func(size int) []byte

// Limits holds the engine-defined constants callers must respect.
type Limits struct {
	BookmarkMost        int // longest bookmark the engine hands out
	KeyMost             int // longest normalized key
	MaxTransactionDepth int // deepest transaction nesting level
	ColumnMost          int // longest value of a non-long column
	LongValueMost       int // longest long value, also the largest SetColumnSizeLV size
	PointerSize         int // width of reference fields in native structures (4 or 8)
}

// --------------------------------------------------------------------------
// Call Surface
// --------------------------------------------------------------------------

// CallSurface is the flat catalog of entry points a native ISAM engine
// exposes. Every method returns a Status; retrieval methods also return the
// number of bytes the value actually needs, which may exceed the buffer.
//
// Conventions shared by all methods:
//   - A nil []byte is a null pointer; an empty non-nil slice is a zero-length
//     buffer. Engines must keep the two apart.
//   - Names are null-terminated character sequences in the engine's string
//     width (2 bytes per character).
//   - Buffers are owned by the caller and never retained past the call.
//   - Structured arguments arrive as *Block images built by the native
//     package for the pointer size reported in Limits.
//
// Implementations are not required to be safe for concurrent use of one
// Session. Different sessions may be driven concurrently.
type CallSurface interface {

	// --------------------------------------------------------------------------
	// Sessions
	// --------------------------------------------------------------------------

	BeginSession() (Session, Status)
	EndSession(ses Session) Status

	// --------------------------------------------------------------------------
	// Transactions
	// --------------------------------------------------------------------------

	// BeginTransaction opens a transaction or a nested level of the open one.
	BeginTransaction(ses Session) Status

	// CommitTransaction commits the innermost level. Changes become durable
	// only once the outermost level commits.
	CommitTransaction(ses Session, grbit CommitGrbit) Status

	// Rollback undoes the innermost level, or every level with RollbackAll.
	// Updates prepared in the session are canceled.
	Rollback(ses Session, grbit RollbackGrbit) Status

	// --------------------------------------------------------------------------
	// Data Definition
	// --------------------------------------------------------------------------

	CreateTable(ses Session, name []byte) (TableID, Status)
	OpenTable(ses Session, name []byte) (TableID, Status)

	// OpenTempTable creates a table from count JET_COLUMNDEF images and
	// writes the assigned column ids to columnids.
	OpenTempTable(ses Session, columndefs *Block, count uint32, grbit TempTableGrbit, columnids []ColumnID) (TableID, Status)
	CloseTable(ses Session, tid TableID) Status

	AddColumn(ses Session, tid TableID, name []byte, columndef *Block, defaultValue []byte) (ColumnID, Status)
	DeleteColumn(ses Session, tid TableID, name []byte) Status

	// GetTableColumnInfo writes a JET_COLUMNDEF image describing the column
	// into columndef.
	GetTableColumnInfo(ses Session, tid TableID, name []byte, columndef []byte) Status

	CreateIndex(ses Session, tid TableID, indexcreates *Block, count uint32) Status
	DeleteIndex(ses Session, tid TableID, name []byte) Status

	// SetCurrentIndex selects the index the cursor navigates. A nil name
	// selects bookmark order.
	SetCurrentIndex(ses Session, tid TableID, name []byte) Status

	// --------------------------------------------------------------------------
	// Record Lifecycle
	// --------------------------------------------------------------------------

	PrepareUpdate(ses Session, tid TableID, prep Prep) Status

	// Update saves the prepared update and writes the bookmark of the
	// affected record into bookmark when it is not nil.
	Update(ses Session, tid TableID, bookmark []byte) (uint32, Status)
	Delete(ses Session, tid TableID) Status

	SetColumn(ses Session, tid TableID, columnid ColumnID, data []byte, grbit SetColumnGrbit, ibLongValue, itagSequence uint32) Status
	SetColumns(ses Session, tid TableID, setcolumns *Block, count uint32) Status

	// EscrowUpdate atomically adds delta to the column and writes the
	// previous value into previous when it is not nil.
	EscrowUpdate(ses Session, tid TableID, columnid ColumnID, delta []byte, previous []byte, grbit EscrowUpdateGrbit) (uint32, Status)

	// --------------------------------------------------------------------------
	// Retrieval
	// --------------------------------------------------------------------------

	RetrieveColumn(ses Session, tid TableID, columnid ColumnID, data []byte, grbit RetrieveColumnGrbit, ibLongValue, itagSequence uint32) (uint32, Status)

	// EnumerateColumns returns an array of JET_ENUMCOLUMN images and its
	// length. A nil columnids block enumerates every column holding a value.
	EnumerateColumns(ses Session, tid TableID, columnids *Block, count uint32, alloc Allocator, maxDataSize uint32, grbit EnumerateColumnsGrbit) (*Block, uint32, Status)

	GetBookmark(ses Session, tid TableID, bookmark []byte) (uint32, Status)
	RetrieveKey(ses Session, tid TableID, key []byte, grbit RetrieveKeyGrbit) (uint32, Status)

	// --------------------------------------------------------------------------
	// Navigation
	// --------------------------------------------------------------------------

	Move(ses Session, tid TableID, offset int32, grbit MoveGrbit) Status
	GotoBookmark(ses Session, tid TableID, bookmark []byte) Status
	MakeKey(ses Session, tid TableID, data []byte, grbit MakeKeyGrbit) Status
	Seek(ses Session, tid TableID, grbit SeekGrbit) Status
	SetIndexRange(ses Session, tid TableID, grbit SetIndexRangeGrbit) Status
	IndexRecordCount(ses Session, tid TableID, max uint32) (uint32, Status)

	// IntersectIndexes intersects count JET_INDEXRANGE images and writes a
	// JET_RECORDLIST image into recordlist. The caller owns the temporary
	// table named by the record list and must close it.
	IntersectIndexes(ses Session, ranges *Block, count uint32, grbit IntersectIndexesGrbit, recordlist []byte) Status

	// --------------------------------------------------------------------------
	// Engine Info
	// --------------------------------------------------------------------------

	Limits() Limits
}
