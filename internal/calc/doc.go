// Package calc implements the calculators of the thread safety demonstration.
//
// Every calculator performs the same business logic: announce the input,
// wait for a delay, add Offset to the input and compare the result with the
// caller's expectation.
//
//   - StatelessCalculator receives the input as a call parameter. Concurrent
//     callers never interfere with each other.
//   - SharedStateCalculator keeps the input in a Cell that all callers share.
//     A caller sets the value, waits, and reads it back; any other caller may
//     overwrite the value in between.
//   - GuardedCalculator wraps a SharedStateCalculator and holds a mutex across
//     the whole set, wait, read sequence.
//
// Cells report their accesses to an optional race witness
// (internal/race/detector). The worker's logical clock travels in the
// context, see goroutine.NewContext.
package calc
