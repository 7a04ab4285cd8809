// Package vectorclock implements vector clocks for tracking happens-before relations
// between the driver and its workers.
//
// Key operations:
//   - Join: Synchronization (point-wise maximum) - used on fork/join and lock acquire
//   - LessOrEqual: Happens-before check (partial order) - used for race detection
//
// The clock is a dense slice indexed by TID. A demonstration never runs more
// than a few hundred workers per scenario, so the slice grows on demand instead
// of reserving the full TID space up front.
package vectorclock

import (
	"strconv"
	"strings"
)

// MaxThreads is the maximum number of tasks a single clock can describe.
// It matches the 8-bit TID field of an epoch.
const MaxThreads = 256

// VectorClock represents logical time across multiple tasks.
//
// Element clocks[tid] stores the clock value for task tid. Missing
// trailing elements are implicitly zero.
//
// Example: {0: 5, 1: 3, 7: 2} means Driver@5, Worker1@3, Worker7@2.
type VectorClock struct {
	clocks []uint32
}

// New creates a zero-initialized vector clock.
func New() *VectorClock {
	return &VectorClock{}
}

// Clone creates a deep copy of the vector clock.
//
// Used on fork: the child task starts with a snapshot of its parent's view
// of logical time.
func (vc *VectorClock) Clone() *VectorClock {
	clone := &VectorClock{clocks: make([]uint32, len(vc.clocks))}
	copy(clone.clocks, vc.clocks)
	return clone
}

// Join performs point-wise maximum: vc = vc ⊔ other.
//
// Algorithm: For each task i, vc[i] = max(vc[i], other[i])
func (vc *VectorClock) Join(other *VectorClock) {
	if other == nil {
		return
	}
	vc.grow(len(other.clocks))
	for i, c := range other.clocks {
		if c > vc.clocks[i] {
			vc.clocks[i] = c
		}
	}
}

// LessOrEqual checks partial order: vc ⊑ other.
//
// Returns true if vc[i] <= other[i] for all tasks i.
func (vc *VectorClock) LessOrEqual(other *VectorClock) bool {
	for i, c := range vc.clocks {
		if c > other.Get(uint16(i)) { //nolint:gosec // G115: len(clocks) <= MaxThreads.
			return false
		}
	}
	return true
}

// HappensBefore is an alias for LessOrEqual.
func (vc *VectorClock) HappensBefore(other *VectorClock) bool {
	return vc.LessOrEqual(other)
}

// Increment advances the clock for task tid.
func (vc *VectorClock) Increment(tid uint16) {
	vc.grow(int(tid) + 1)
	vc.clocks[tid]++
}

// Get returns the clock value for task tid.
func (vc *VectorClock) Get(tid uint16) uint32 {
	if int(tid) >= len(vc.clocks) {
		return 0
	}
	return vc.clocks[tid]
}

// Set sets the clock value for task tid.
func (vc *VectorClock) Set(tid uint16, clock uint32) {
	vc.grow(int(tid) + 1)
	vc.clocks[tid] = clock
}

// Len returns the number of tracked task slots.
func (vc *VectorClock) Len() int {
	return len(vc.clocks)
}

// String returns a debug representation of the vector clock.
//
// Format: "{tid1:clock1, tid2:clock2, ...}" showing only non-zero clocks.
func (vc *VectorClock) String() string {
	var parts []string
	for i, c := range vc.clocks {
		if c != 0 {
			parts = append(parts, strconv.Itoa(i)+":"+strconv.FormatUint(uint64(c), 10))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (vc *VectorClock) grow(n int) {
	if n > MaxThreads {
		panic("vectorclock: tid out of range")
	}
	if n <= len(vc.clocks) {
		return
	}
	grown := make([]uint32, n)
	copy(grown, vc.clocks)
	vc.clocks = grown
}
