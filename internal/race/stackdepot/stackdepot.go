// Package stackdepot stores the stacks of recorded accesses for race reports.
//
// A race is only detected at the second of two conflicting accesses. By then
// the goroutine that made the first access has moved on, so its stack must be
// captured when the access happens. The depot keeps each unique stack once,
// keyed by a 64-bit hash; shadow cells store only the hash.
//
// Usage:
//
//	depot := stackdepot.New()
//	hash := depot.Capture(0)
//
//	// Later, when reporting.
//	pcs := depot.Get(hash)
package stackdepot

import (
	"encoding/binary"
	"hash/fnv"
	"runtime"
	"sync"
)

// MaxFrames is the number of frames kept per stack. The top frames are
// enough to locate an access to a shared cell.
const MaxFrames = 8

// stackTrace is a fixed-size trace, 64 bytes.
type stackTrace struct {
	pc [MaxFrames]uintptr
	n  int
}

// Depot deduplicates stack traces. The zero value is not usable, call New.
//
// Thread Safety: Safe for concurrent use.
type Depot struct {
	stacks sync.Map // uint64 (hash) → *stackTrace
}

// New creates an empty depot.
func New() *Depot {
	return &Depot{}
}

// Capture records the stack of its caller and returns its hash. skip counts
// additional frames to drop above the caller. A zero hash means no stack
// was available.
func (d *Depot) Capture(skip int) uint64 {
	var st stackTrace
	// Skip runtime.Callers and Capture itself.
	st.n = runtime.Callers(skip+2, st.pc[:])
	if st.n == 0 {
		return 0
	}

	hash := hashStack(st.pc[:st.n])
	if _, exists := d.stacks.Load(hash); !exists {
		d.stacks.Store(hash, &st)
	}
	return hash
}

// Get returns the program counters stored under hash, or nil.
func (d *Depot) Get(hash uint64) []uintptr {
	if hash == 0 {
		return nil
	}
	v, ok := d.stacks.Load(hash)
	if !ok {
		return nil
	}
	st := v.(*stackTrace)
	pcs := make([]uintptr, st.n)
	copy(pcs, st.pc[:st.n])
	return pcs
}

// Len returns the number of unique stacks stored.
func (d *Depot) Len() int {
	n := 0
	d.stacks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// hashStack computes the FNV-1a hash of program counters.
func hashStack(pcs []uintptr) uint64 {
	h := fnv.New64a()
	var b [8]byte
	for _, pc := range pcs {
		binary.LittleEndian.PutUint64(b[:], uint64(pc))
		_, _ = h.Write(b[:]) // hash.Hash never returns an error.
	}
	return h.Sum64()
}
