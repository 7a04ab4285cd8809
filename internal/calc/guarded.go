package calc

import (
	"context"
	"sync"
	"time"
	"unsafe"

	"github.com/kolkov/threadsafety/internal/race/detector"
)

// GuardedCalculator serializes whole calculations on a SharedStateCalculator.
//
// Locking each cell access is not enough: the value must not change between
// SetValue and the read after the delay, so the mutex covers both.
type GuardedCalculator struct {
	mu      sync.Mutex
	calc    *SharedStateCalculator
	witness witness
}

// NewGuardedCalculator wraps calc. When d is non-nil the mutex is reported to
// it as acquire and release.
func NewGuardedCalculator(calc *SharedStateCalculator, d *detector.Detector) *GuardedCalculator {
	return &GuardedCalculator{calc: calc, witness: witness{d: d}}
}

// Run sets v and runs the business logic while holding the lock.
func (g *GuardedCalculator) Run(ctx context.Context, label string, v int, delay time.Duration, expected int) error {
	g.lock(ctx)
	defer g.unlock(ctx)

	g.calc.SetValue(ctx, v)
	return g.calc.RunBusinessLogic(ctx, label, delay, expected)
}

func (g *GuardedCalculator) addr() uintptr {
	return uintptr(unsafe.Pointer(&g.mu))
}

func (g *GuardedCalculator) lock(ctx context.Context) {
	g.mu.Lock()
	g.witness.acquire(ctx, g.addr())
}

// The release is reported before the real unlock so that the next holder
// acquires this holder's clock.
func (g *GuardedCalculator) unlock(ctx context.Context) {
	g.witness.release(ctx, g.addr())
	g.mu.Unlock()
}
