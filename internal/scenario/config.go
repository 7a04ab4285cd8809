package scenario

import (
	"time"

	"github.com/pkg/errors"

	"github.com/kolkov/threadsafety/internal/race/epoch"
)

// Dispatch selects how workers of a scenario are started.
type Dispatch int

const (
	// Parallel starts all workers at once, each on its own goroutine.
	Parallel Dispatch = iota

	// Sequential runs workers one after another. Each worker is forked from
	// and joined back into the driver before the next one starts.
	Sequential
)

func (d Dispatch) String() string {
	switch d {
	case Parallel:
		return "parallel"
	case Sequential:
		return "sequential"
	default:
		return "unknown"
	}
}

// Guard selects the protection of the shared calculator in the unsafe
// scenarios.
type Guard int

const (
	// Unguarded shares a plain int. This is the demonstration.
	Unguarded Guard = iota

	// Atomic shares an atomic int. Data race free, still mismatches.
	Atomic

	// Mutex serializes whole calculations.
	Mutex
)

func (g Guard) String() string {
	switch g {
	case Unguarded:
		return "unguarded"
	case Atomic:
		return "atomic"
	case Mutex:
		return "mutex"
	default:
		return "unknown"
	}
}

// Config holds the fixed timings of the demonstration.
type Config struct {
	PreDelay  time.Duration // Pause before a scenario dispatches its workers
	PostDelay time.Duration // Pause after all workers finished
	Workers   int           // Worker count of the exhaustive scenarios
	MaxJitter time.Duration // Exclusive bound of the random worker delay
	Dispatch  Dispatch
	Guard     Guard
	Witness   bool // Attach a race witness to the unsafe scenarios
}

// DefaultConfig returns the timings the program runs with.
func DefaultConfig() Config {
	return Config{
		PreDelay:  3 * time.Second,
		PostDelay: 100 * time.Millisecond,
		Workers:   100,
		MaxJitter: 10 * time.Millisecond,
		Dispatch:  Parallel,
		Guard:     Unguarded,
		Witness:   true,
	}
}

// Validate checks that the configuration can be run. Every worker needs its
// own task ID in the race witness, which limits Workers to epoch.MaxTID.
func (c Config) Validate() error {
	switch {
	case c.PreDelay < 0 || c.PostDelay < 0 || c.MaxJitter < 0:
		return errors.Errorf("negative delay in config: pre %s, post %s, jitter %s", c.PreDelay, c.PostDelay, c.MaxJitter)
	case c.Workers < 2:
		return errors.Errorf("need at least 2 workers, have %d", c.Workers)
	case c.Workers > epoch.MaxTID:
		return errors.Errorf("%d workers exceed the %d task IDs of the race witness", c.Workers, epoch.MaxTID)
	case c.Dispatch != Parallel && c.Dispatch != Sequential:
		return errors.Errorf("unknown dispatch %d", c.Dispatch)
	case c.Guard < Unguarded || c.Guard > Mutex:
		return errors.Errorf("unknown guard %d", c.Guard)
	}
	return nil
}
