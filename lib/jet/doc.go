// Package jet is the call boundary between Go code and an engine call
// surface. Every entry point of engine.CallSurface has a counterpart here
// that
//
//   - checks its arguments and fails with an *engine.ParamError before the
//     engine is called when a precondition does not hold,
//   - marshals names into null-terminated 2-byte strings and descriptors
//     into native structure images (attaching the referenced memory only
//     for the duration of the call),
//   - maps the returned status: negative codes become *engine.Error,
//     warnings are returned as values where the entry point defines them.
//
// Typed helpers (SetColumnInt32, RetrieveColumnAsString, TrySeek, ...) and
// ColumnStream are built on top of the checked entry points.
//
// Thread-safety: an API value holds no mutable state and may be shared. The
// usual engine rule applies to handles: one session, and everything opened
// in it, is driven by one goroutine at a time.
package jet
