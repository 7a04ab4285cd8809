// Package epoch implements 32-bit logical timestamps for the race witness.
//
// Epoch represents a single task's logical time as a compact 32-bit value:
// - Top 8 bits: Task ID (0-255)
// - Bottom 24 bits: Clock value (0-16M)
//
// This encoding enables O(1) happens-before checks against a vector clock.
package epoch

import (
	"strconv"

	"github.com/kolkov/threadsafety/internal/race/vectorclock"
)

// Epoch is a 32-bit logical timestamp encoding both task ID and clock value.
// Layout: [TID:8][Clock:24]
//
// Example: 0x05001234 represents TID=5, Clock=0x1234 (4660 decimal).
//
// The zero Epoch means "never accessed"; task clocks start at 1 so that no
// real access encodes to zero.
type Epoch uint32

const (
	// TIDBits is the number of bits allocated for the task ID.
	TIDBits = 8

	// ClockBits is the number of bits allocated for the clock value.
	ClockBits = 24

	// ClockMask is the bitmask for extracting the clock value (0x00FFFFFF).
	ClockMask = (1 << ClockBits) - 1

	// MaxTID is the largest task ID an epoch can carry.
	MaxTID = (1 << TIDBits) - 1
)

// NewEpoch creates an epoch from task ID and clock value.
//
// Clock values beyond 24 bits are truncated (wraps at 16M).
func NewEpoch(tid uint8, clock uint32) Epoch {
	return Epoch(uint32(tid)<<ClockBits | (clock & ClockMask))
}

// Decode extracts the task ID and clock value from an epoch.
func (e Epoch) Decode() (tid uint8, clock uint32) {
	tid = uint8(e >> ClockBits) //nolint:gosec // G115: top 8 bits are the TID.
	clock = uint32(e) & ClockMask
	return
}

// TID returns the task ID part of the epoch.
func (e Epoch) TID() uint8 {
	tid, _ := e.Decode()
	return tid
}

// HappensBefore checks if this epoch happened before a vector clock.
//
// Returns true if epoch's clock <= vc[epoch's TID].
func (e Epoch) HappensBefore(vc *vectorclock.VectorClock) bool {
	tid, clock := e.Decode()
	return clock <= vc.Get(uint16(tid))
}

// Same checks if two epochs are identical (same TID and clock).
func (e Epoch) Same(other Epoch) bool {
	return e == other
}

// String returns a human-readable representation of the epoch.
//
// Format: "clock@tid" (e.g., "42@5" means clock=42, tid=5).
func (e Epoch) String() string {
	tid, clock := e.Decode()
	return strconv.FormatUint(uint64(clock), 10) + "@" + strconv.Itoa(int(tid))
}
