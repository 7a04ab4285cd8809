package shadowmem

import (
	"sync"

	"github.com/kolkov/threadsafety/internal/race/epoch"
	"github.com/kolkov/threadsafety/internal/race/vectorclock"
)

// VarState stores the access state for a single cell using an adaptive
// representation:
//   - Common case: one reader at a time, tracked by readEpoch
//   - Concurrent readers: promoted to readClock, a full vector clock
//
// A write demotes the cell back to the epoch representation.
//
// All fields are guarded by the cell lock. The detector holds it for the whole
// check-and-update of one access, so a race check never observes a half
// updated cell.
type VarState struct {
	mu sync.Mutex

	// W is the last write epoch. Zero means never written.
	W epoch.Epoch

	// WStack is the stack depot hash of the last write.
	WStack uint64

	readEpoch epoch.Epoch
	readStack uint64
	readClock *vectorclock.VectorClock
}

// NewVarState creates a never-accessed cell.
func NewVarState() *VarState {
	return &VarState{}
}

// Lock acquires the cell lock.
func (vs *VarState) Lock() { vs.mu.Lock() }

// Unlock releases the cell lock.
func (vs *VarState) Unlock() { vs.mu.Unlock() }

// IsPromoted reports whether reads are tracked by a vector clock.
// Caller holds the lock.
func (vs *VarState) IsPromoted() bool {
	return vs.readClock != nil
}

// ReadEpoch returns the single-reader epoch (zero when promoted or unread).
// Caller holds the lock.
func (vs *VarState) ReadEpoch() epoch.Epoch {
	return vs.readEpoch
}

// ReadStack returns the stack hash of the single reader (zero when promoted
// or unread). Caller holds the lock.
func (vs *VarState) ReadStack() uint64 {
	return vs.readStack
}

// SetReadEpoch records a single reader and its stack hash. No-op once
// promoted. Caller holds the lock.
func (vs *VarState) SetReadEpoch(e epoch.Epoch, stack uint64) {
	if vs.readClock == nil {
		vs.readEpoch = e
		vs.readStack = stack
	}
}

// ReadClock returns the read vector clock (nil unless promoted).
// Caller holds the lock.
func (vs *VarState) ReadClock() *vectorclock.VectorClock {
	return vs.readClock
}

// PromoteToReadClock upgrades from a single reader epoch to a read vector
// clock that holds both the existing reader and newReader.
// Caller holds the lock.
func (vs *VarState) PromoteToReadClock(newReader epoch.Epoch) {
	vs.readClock = vectorclock.New()
	if vs.readEpoch != 0 {
		tid, clock := vs.readEpoch.Decode()
		vs.readClock.Set(uint16(tid), clock)
	}
	tid, clock := newReader.Decode()
	vs.readClock.Set(uint16(tid), clock)
	vs.readEpoch = 0
	vs.readStack = 0
}

// AddReader records another concurrent reader in the promoted read clock.
// Caller holds the lock.
func (vs *VarState) AddReader(reader epoch.Epoch) {
	if vs.readClock == nil {
		vs.PromoteToReadClock(reader)
		return
	}
	tid, clock := reader.Decode()
	if clock > vs.readClock.Get(uint16(tid)) {
		vs.readClock.Set(uint16(tid), clock)
	}
}

// Demote clears all read tracking. Called after a write, which dominates
// every earlier read. Caller holds the lock.
func (vs *VarState) Demote() {
	vs.readEpoch = 0
	vs.readStack = 0
	vs.readClock = nil
}

// String returns a debug representation of the cell.
//
// Format:
//   - Unpromoted: "W:<epoch> R:<epoch>"
//   - Promoted: "W:<epoch> R:<vectorclock> [PROMOTED]"
//
// Caller holds the lock.
func (vs *VarState) String() string {
	wStr := "W:" + vs.W.String()
	if vs.readClock != nil {
		return wStr + " R:" + vs.readClock.String() + " [PROMOTED]"
	}
	return wStr + " R:" + vs.readEpoch.String()
}
