// Package goroutine implements per-worker race witness state.
//
// RaceContext maintains the logical clock and cached epoch for each worker
// goroutine. Each worker gets its own RaceContext which stores:
//   - TID: Task ID assigned by the driver (0 is the driver itself)
//   - C: Full vector clock tracking all tasks
//   - Epoch: Cached C[TID] for O(1) fast-path access
//
// Workers do not run under an instrumented runtime, so there is no goroutine
// ID lookup. The driver forks a child context for each worker it starts and
// joins it back when the worker finishes, which is exactly the happens-before
// edge that `go` and errgroup.Wait provide. The context travels to the
// calculator through context.Context (NewContext / FromContext).
//
// A RaceContext is owned by one goroutine at a time and is not safe for
// concurrent use.
package goroutine
