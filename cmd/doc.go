// Package cmd implements the isam command-line interface. It drives the
// checked call layer against the in-memory reference engine, which makes it
// useful for inspecting native structure layouts and for smoke-testing a
// build.
//
// The package is organized into several subpackages:
//
//   - layout: Prints the computed native structure shapes for a pointer size
//   - selftest: Runs end-to-end scenarios and reports per-entry-point call statistics
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See isam -help for a list of all commands.
package cmd
