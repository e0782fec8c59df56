// Package testing provides the conformance suite and benchmarks for engines
// that satisfy the engine.CallSurface interface.
//
// The suite drives the engine through the checked call layer (jet, scope and
// cursor) and wraps it with the instrumented decorator, so a test can prove
// that a rejected argument never reached the engine.
//
// The package contains:
//   - RunEngineTests: transactions, updates, typed values, indexes, ranges,
//     intersections, long values, escrow, enumeration and argument checks
//   - RunEngineBenchmarks: inserts, batched column sets, seeks and retrieval
//
// Example usage:
//
//	factory := func() engine.CallSurface {
//		return memtable.New(nil)
//	}
//
//	enginetesting.RunEngineTests(t, "Memtable", factory)
//	enginetesting.RunEngineBenchmarks(b, "Memtable", factory)
package testing
