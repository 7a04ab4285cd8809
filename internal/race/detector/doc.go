// Package detector implements the race witness: a FastTrack (PLDI 2009)
// happens-before checker for the shared cells of the calculators.
//
// Calculators report their cell accesses with OnWrite and OnRead, and the
// guarded variants report their synchronization with OnAcquire and OnRelease.
// The driver supplies each worker's logical clock (see package goroutine), so
// the witness does not depend on scheduling: two accesses race when neither
// happens-before the other, whether or not they overlapped in wall time on a
// particular run.
//
// # Race Detection Rules
//
// [FT WRITE]:
//
//  1. Same-epoch fast path: If vs.W == current epoch, skip checks
//  2. Write-write race: If !vs.W.HappensBefore(Ct), report race
//  3. Read-write race: If the last read(s) did not happen-before Ct, report race
//  4. Update shadow: vs.W = current epoch, clear read state
//  5. Advance clock: ctx.IncrementClock()
//
// [FT READ]:
//
//  1. Write-read race: If !vs.W.HappensBefore(Ct), report race
//  2. Record the read as an epoch, or promote to a read vector clock when
//     another reader is concurrent
//  3. Advance clock: ctx.IncrementClock()
//
// Races are deduplicated per (type, address, task pair) and kept in memory;
// the caller decides how many reports to print.
package detector
