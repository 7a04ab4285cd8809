package calc

import (
	"context"
	"sync/atomic"
	"unsafe"

	"github.com/kolkov/threadsafety/internal/race/detector"
	"github.com/kolkov/threadsafety/internal/race/goroutine"
)

// Cell is a shared integer, passed to a SharedStateCalculator by handle.
type Cell interface {
	Store(ctx context.Context, v int)
	Load(ctx context.Context) int
}

// witness forwards accesses to an optional race detector. Accesses made with
// a context that carries no RaceContext are not reported.
type witness struct {
	d *detector.Detector
}

func (w witness) task(ctx context.Context) *goroutine.RaceContext {
	if w.d == nil {
		return nil
	}
	return goroutine.FromContext(ctx)
}

func (w witness) write(ctx context.Context, addr uintptr) {
	if rc := w.task(ctx); rc != nil {
		w.d.OnWrite(addr, rc)
	}
}

func (w witness) read(ctx context.Context, addr uintptr) {
	if rc := w.task(ctx); rc != nil {
		w.d.OnRead(addr, rc)
	}
}

func (w witness) acquire(ctx context.Context, addr uintptr) {
	if rc := w.task(ctx); rc != nil {
		w.d.OnAcquire(addr, rc)
	}
}

func (w witness) release(ctx context.Context, addr uintptr) {
	if rc := w.task(ctx); rc != nil {
		w.d.OnRelease(addr, rc)
	}
}

func (w witness) releaseMerge(ctx context.Context, addr uintptr) {
	if rc := w.task(ctx); rc != nil {
		w.d.OnReleaseMerge(addr, rc)
	}
}

// UnguardedCell is a plain int without any synchronization.
//
// Concurrent Store and Load calls are a data race. That is the point: the
// unsafe scenarios exist to show it.
type UnguardedCell struct {
	value   int
	witness witness
}

// NewUnguardedCell creates a cell. When d is non-nil every access is reported
// to it as a plain read or write.
func NewUnguardedCell(d *detector.Detector) *UnguardedCell {
	c := &UnguardedCell{witness: witness{d: d}}
	if d != nil {
		d.Describe(c.addr(), "SharedStateCalculator.value")
	}
	return c
}

func (c *UnguardedCell) addr() uintptr {
	return uintptr(unsafe.Pointer(&c.value))
}

// Store sets the value.
func (c *UnguardedCell) Store(ctx context.Context, v int) {
	c.witness.write(ctx, c.addr())
	c.value = v
}

// Load returns the value.
func (c *UnguardedCell) Load(ctx context.Context) int {
	c.witness.read(ctx, c.addr())
	return c.value
}

// AtomicCell stores the value in an atomic.Int64.
//
// It has no data race, yet a SharedStateCalculator built on it still
// mismatches: the set and the later read are two separate atomic operations.
type AtomicCell struct {
	value   atomic.Int64
	witness witness
}

// NewAtomicCell creates a cell. When d is non-nil stores are reported as
// releases and loads as acquires.
func NewAtomicCell(d *detector.Detector) *AtomicCell {
	c := &AtomicCell{witness: witness{d: d}}
	if d != nil {
		d.Describe(c.addr(), "AtomicCell.value")
	}
	return c
}

func (c *AtomicCell) addr() uintptr {
	return uintptr(unsafe.Pointer(&c.value))
}

// Store sets the value.
func (c *AtomicCell) Store(ctx context.Context, v int) {
	c.witness.releaseMerge(ctx, c.addr())
	c.value.Store(int64(v))
}

// Load returns the value.
func (c *AtomicCell) Load(ctx context.Context) int {
	v := c.value.Load()
	c.witness.acquire(ctx, c.addr())
	return int(v)
}
