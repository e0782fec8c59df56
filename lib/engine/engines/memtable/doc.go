// Package memtable implements an in-process ISAM engine behind the
// engine.CallSurface interface. It speaks the same handle-based protocol as
// a native engine: sessions, cursors (table ids), structured arguments as
// native images in engine.Block values, and numeric status codes. This lets
// the marshaling and scope layers above it be exercised end to end without
// a native library.
//
// Key Components:
//
//   - Engine: The call surface. Every call takes one engine-wide mutex.
//     Handle tables (sessions, cursors, tables) are xsync maps so lookups
//     from metrics and debugging helpers do not need the mutex.
//
//   - table: Columns, records and orderings. Records live in a B-tree keyed
//     by a sequence number that doubles as the 8-byte bookmark. Every
//     ordering (bookmark order and each secondary index) is a B-tree of
//     (normalized key, bookmark) entries kept in step on every store.
//
//   - cursor: A position in one ordering plus the search key built by
//     MakeKey, an optional index range and the copy buffer of a prepared
//     update. Positions are entries, so a cursor stays valid while records
//     around it change.
//
//   - session: A stack of undo logs, one per open transaction level, and
//     the record locks taken by Replace and Delete.
//
// Internal Mechanisms:
//
//   - Key normalization: Each key segment is a null/present header and an
//     order-preserving body (big-endian integers with flipped sign bit,
//     sortable float bits, escaped and terminated variable data, folded
//     text). Descending segments are bit-inverted, so byte comparison gives
//     index order.
//
//   - Transactions: A change inside a transaction records the before image
//     of the record. Nested commits merge their log into the parent;
//     rollback replays the log backwards. DDL is not transactional.
//
//   - Isolation: Readers see uncommitted data. Writers conflict through
//     record locks held to the end of the outermost transaction, reported
//     as JET_errWriteConflict.
//
// Limitations:
//
//   - Data lives in memory only; there is no instance, database file or log.
//   - Indexes over multi-valued columns use the first value.
//   - Long values are stored whole; AppendLV and OverwriteLV copy them.
package memtable
