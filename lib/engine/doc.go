// Package engine describes the call surface of a native ISAM storage engine
// as seen from Go: opaque handles, status codes, option bits, column types,
// engine-defined limits and the CallSurface interface itself.
//
// The package focuses on:
//   - A flat, handle-based contract that any linked engine can satisfy
//   - Status codes that keep the native numbering (0 success, negative error,
//     positive warning)
//   - An error taxonomy that separates caller mistakes from engine failures
//
// Key Components:
//
//   - Handles: Session, TableID and ColumnID are integer newtypes. They cannot
//     be dereferenced, only passed back to the engine that issued them.
//
//   - CallSurface: The entry points of the engine. Every method returns a
//     Status; retrieval calls additionally return an output byte count.
//     Methods that take a structured argument receive a *Block, the image of
//     the native structure produced by the native package.
//
//   - Status: The signed status code returned by every call. Check maps a
//     negative Status to an *Error carrying the original code and a category;
//     warnings and success map to nil.
//
//   - ParamError: A caller-parameter error, detected before any engine call is
//     issued. All parameter errors match ErrCallerParameter with errors.Is, and
//     additionally one of ErrRange, ErrNullArgument or ErrInvalidState.
//
// Concurrency:
//
// A Session and everything reachable from it (tables, prepared updates, open
// transactions) must be used by one goroutine at a time. Nothing in this
// package or the packages built on it locks on behalf of the caller; violating
// the rule yields whatever the linked engine does, not an error. Distinct
// sessions are independent.
//
// Related Packages:
//
// The engines/memtable package provides an in-process reference engine. The
// testing package provides the conformance suite every engine must pass, and
// the instrumented package wraps any CallSurface with call metrics.
package engine
