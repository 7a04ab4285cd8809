package calc

import (
	"context"
	"time"
)

// Offset is added to the input of every calculation.
const Offset = 55

// Sleeper blocks for d, or until ctx is done.
//
// Tests replace the default with channel driven sleepers to force a
// particular interleaving of workers.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper. It returns ctx.Err() when ctx is done before
// d elapses.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
