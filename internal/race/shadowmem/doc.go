// Package shadowmem implements shadow memory cells for the race witness.
//
// For every shared cell a calculator reports to the witness, shadow memory
// keeps a VarState that records:
//   - W: The last write epoch (task ID + logical clock)
//   - R: The last read epoch, promoted to a read vector clock when several
//     workers read concurrently
//
// The detector compares these epochs with the accessing task's vector clock.
// If an earlier conflicting access did not happen-before the current one, and
// at least one of them is a write, the pair is a data race.
//
// # Usage
//
//	sm := shadowmem.NewShadowMemory()
//	vs := sm.GetOrCreate(addr)
//	vs.Lock()
//	defer vs.Unlock()
//	if vs.W != 0 && !vs.W.HappensBefore(ctx.C) { /* race */ }
package shadowmem
