// Package workspace holds the shared per-workspace handle used by queries.
//
// All store access goes through a Guard, which serializes calls and runs
// them on an ants worker pool. A panic inside guarded work is recovered,
// reported to that caller as ErrPanicked, and marks the guard poisoned;
// later callers log a warning and continue.
//
// The embedding engine and vector index are created on first use. Concurrent
// first callers share one initialization.
package workspace
