package syncshadow

import (
	"sync"

	"github.com/kolkov/threadsafety/internal/race/vectorclock"
)

// SyncVar holds the release clock of one synchronization object.
//
// Unlike a mutex, an atomic cell is released and acquired by many tasks at
// once, so the release clock has its own lock.
type SyncVar struct {
	mu sync.Mutex

	// releaseClock is the vector clock from the last Release operation.
	// nil means no Release has occurred yet.
	releaseClock *vectorclock.VectorClock
}

// GetReleaseClock returns a copy of the release clock, or nil if the object
// was never released.
func (sv *SyncVar) GetReleaseClock() *vectorclock.VectorClock {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	if sv.releaseClock == nil {
		return nil
	}
	return sv.releaseClock.Clone()
}

// AcquireInto joins the release clock into clock: Ct := Ct ⊔ Lm.
func (sv *SyncVar) AcquireInto(clock *vectorclock.VectorClock) {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	clock.Join(sv.releaseClock)
}

// SetReleaseClock replaces the release clock with a copy of clock: Lm := Ct.
//
// Example:
//
//	sv := &SyncVar{}
//	ctx := goroutine.Alloc(0)
//	sv.SetReleaseClock(ctx.C)
//	ctx.IncrementClock()
func (sv *SyncVar) SetReleaseClock(clock *vectorclock.VectorClock) {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	sv.releaseClock = clock.Clone()
}

// MergeReleaseClock merges clock into the release clock: Lm := Lm ⊔ Ct.
//
// Used for atomic stores, where earlier releases by other tasks must stay
// visible to later acquirers.
func (sv *SyncVar) MergeReleaseClock(clock *vectorclock.VectorClock) {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	if sv.releaseClock == nil {
		sv.releaseClock = clock.Clone()
		return
	}
	sv.releaseClock.Join(clock)
}
