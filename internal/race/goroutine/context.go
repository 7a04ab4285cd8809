package goroutine

import (
	"context"
	"errors"
	"sync"

	"github.com/kolkov/threadsafety/internal/race/epoch"
	"github.com/kolkov/threadsafety/internal/race/vectorclock"
)

// ErrTIDExhausted is returned when a scenario starts more workers than an
// epoch can address.
var ErrTIDExhausted = errors.New("goroutine: task id space exhausted")

// RaceContext represents the race witness state for a single worker.
//
// Invariant: Epoch must ALWAYS equal epoch.NewEpoch(TID, C[TID]).
// This invariant is maintained by IncrementClock() which updates both.
type RaceContext struct {
	// TID is the task identifier (0-255).
	TID uint8

	// C is the full vector clock tracking logical time for all tasks.
	C *vectorclock.VectorClock

	// Epoch is the cached epoch for this task: Epoch == C[TID].
	Epoch epoch.Epoch
}

// Alloc creates and initializes a new RaceContext for the given task ID.
//
// The own clock starts at 1 so that the first access never encodes to the
// zero epoch, which shadow memory reserves for "never accessed".
//
// Example:
//
//	ctx := Alloc(5)
//	// ctx.C = {5:1}
//	// ctx.Epoch = 1@5
func Alloc(tid uint8) *RaceContext {
	ctx := &RaceContext{
		TID: tid,
		C:   vectorclock.New(),
	}
	ctx.C.Set(uint16(tid), 1)
	ctx.Epoch = epoch.NewEpoch(tid, 1)
	return ctx
}

// IncrementClock advances the logical clock for this task.
func (rc *RaceContext) IncrementClock() {
	rc.C.Increment(uint16(rc.TID))
	rc.Epoch = epoch.NewEpoch(rc.TID, rc.C.Get(uint16(rc.TID)))
}

// GetEpoch returns the cached epoch for this task.
func (rc *RaceContext) GetEpoch() epoch.Epoch {
	return rc.Epoch
}

// Fork creates the context of a child task started by rc.
//
// Everything rc did so far happens-before everything the child does:
// the child inherits a snapshot of rc's clock. rc then advances so that its
// own later accesses are concurrent with the child.
//
// [FT FORK]: Cu := Cu ⊔ Ct; Ct := inc_t(Ct)
func (rc *RaceContext) Fork(childTID uint8) *RaceContext {
	child := &RaceContext{
		TID: childTID,
		C:   rc.C.Clone(),
	}
	child.C.Increment(uint16(childTID))
	child.Epoch = epoch.NewEpoch(childTID, child.C.Get(uint16(childTID)))
	rc.IncrementClock()
	return child
}

// Join merges a finished child task back into rc.
//
// Everything the child did happens-before rc's subsequent accesses.
//
// [FT JOIN]: Ct := Ct ⊔ Cu; Cu := inc_u(Cu)
func (rc *RaceContext) Join(child *RaceContext) {
	if child == nil {
		return
	}
	rc.C.Join(child.C)
	rc.IncrementClock()
	child.IncrementClock()
}

// Allocator hands out task IDs for one scenario. TID 0 is reserved for the
// driver, so workers receive 1..MaxTID.
type Allocator struct {
	mu   sync.Mutex
	next int
}

// NewAllocator creates an allocator whose first worker TID is 1.
func NewAllocator() *Allocator {
	return &Allocator{next: 1}
}

// Next returns the next free task ID.
func (a *Allocator) Next() (uint8, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.next > epoch.MaxTID {
		return 0, ErrTIDExhausted
	}
	tid := uint8(a.next) //nolint:gosec // G115: bounded by epoch.MaxTID above.
	a.next++
	return tid, nil
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying rc.
func NewContext(ctx context.Context, rc *RaceContext) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// FromContext returns the RaceContext carried by ctx, or nil when the caller
// runs without a race witness.
func FromContext(ctx context.Context) *RaceContext {
	rc, _ := ctx.Value(contextKey{}).(*RaceContext)
	return rc
}
