package calc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/threadsafety/internal/race/detector"
	"github.com/kolkov/threadsafety/internal/race/goroutine"
)

const (
	slowDelay = 50 * time.Millisecond
	fastDelay = time.Millisecond
)

func asError(err error, target **Error) bool { return errors.As(err, target) }

// interleaving makes the slow worker wait inside its delay until the fast
// worker has set its value. All hand-offs go through channels.
type interleaving struct {
	slowSleeping chan struct{}
	fastSet      chan struct{}
}

func newInterleaving() *interleaving {
	return &interleaving{
		slowSleeping: make(chan struct{}),
		fastSet:      make(chan struct{}),
	}
}

func (il *interleaving) sleep(ctx context.Context, d time.Duration) error {
	if d != slowDelay {
		return nil
	}
	close(il.slowSleeping)
	select {
	case <-il.fastSet:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// forceLostUpdate runs worker 1 (set 10, slow) and worker 2 (set 5, fast) so
// that worker 2 sets its value while worker 1 waits.
func forceLostUpdate(t *testing.T, c *SharedStateCalculator, il *interleaving, d *detector.Detector) (slow, fast error) {
	t.Helper()

	driver := goroutine.Alloc(0)
	ctx1 := goroutine.NewContext(context.Background(), driver.Fork(1))
	ctx2 := goroutine.NewContext(context.Background(), driver.Fork(2))
	if d == nil {
		ctx1, ctx2 = context.Background(), context.Background()
	}

	done := make(chan error, 1)
	go func() {
		c.SetValue(ctx1, 10)
		done <- c.RunBusinessLogic(ctx1, "NOT Thread Safe Thread 1", slowDelay, 65)
	}()

	<-il.slowSleeping
	c.SetValue(ctx2, 5)
	close(il.fastSet)
	fast = c.RunBusinessLogic(ctx2, "NOT Thread Safe Thread 2", fastDelay, 60)

	return <-done, fast
}

// TestShared_ForcedInterleaving tests the lost update: the slow worker reads
// the fast worker's value.
func TestShared_ForcedInterleaving(t *testing.T) {
	il := newInterleaving()
	c := NewSharedStateCalculator(NewUnguardedCell(nil), zerolog.Nop(), il.sleep)

	slow, fast := forceLostUpdate(t, c, il, nil)

	require.NoError(t, fast)
	require.True(t, IsRaceMismatch(slow), "slow worker: %v", slow)

	var e *Error
	require.True(t, asError(slow, &e))
	require.Equal(t, 65, e.Expected)
	require.Equal(t, 60, e.Actual)
}

// TestShared_ForcedInterleaving_Witnessed tests that the witness reports the
// conflicting accesses of the two workers.
func TestShared_ForcedInterleaving_Witnessed(t *testing.T) {
	d := detector.NewDetector()
	il := newInterleaving()
	c := NewSharedStateCalculator(NewUnguardedCell(d), zerolog.Nop(), il.sleep)

	slow, _ := forceLostUpdate(t, c, il, d)

	require.True(t, IsRaceMismatch(slow))
	require.GreaterOrEqual(t, d.RacesDetected(), 1)
	require.Equal(t, "SharedStateCalculator.value", d.Reports()[0].Name)
}

// TestShared_AtomicCell tests a race condition without a data race: the
// calculation still mismatches, the witness reports nothing.
func TestShared_AtomicCell(t *testing.T) {
	d := detector.NewDetector()
	il := newInterleaving()
	c := NewSharedStateCalculator(NewAtomicCell(d), zerolog.Nop(), il.sleep)

	slow, fast := forceLostUpdate(t, c, il, d)

	require.NoError(t, fast)
	require.True(t, IsRaceMismatch(slow))
	require.Zero(t, d.RacesDetected())
}

// TestShared_AdjacentSetAndRead tests that a set immediately followed by the
// calculation never mismatches.
func TestShared_AdjacentSetAndRead(t *testing.T) {
	c := NewSharedStateCalculator(nil, zerolog.Nop(), noSleep)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		c.SetValue(ctx, i)
		require.NoError(t, c.RunBusinessLogic(ctx, "Thread", time.Millisecond, i+Offset))
	}
	require.Equal(t, 99, c.Value(ctx))
}

// TestShared_Interrupted tests that an interrupted wait is fatal, not a
// mismatch.
func TestShared_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewSharedStateCalculator(nil, zerolog.Nop(), nil)
	c.SetValue(ctx, 1)
	err := c.RunBusinessLogic(ctx, "Thread1", time.Hour, 56)

	require.True(t, IsUnreachable(err), "got %v", err)
	require.ErrorIs(t, err, context.Canceled)
}
