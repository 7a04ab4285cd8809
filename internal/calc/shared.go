package calc

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SharedStateCalculator keeps its input in a Cell shared by every caller.
//
// The calculation assumes that the value it reads after the delay is the one
// the same caller set just before. Nothing enforces that, so concurrent
// callers overwrite each other's input.
type SharedStateCalculator struct {
	cell  Cell
	log   zerolog.Logger
	sleep Sleeper
}

// NewSharedStateCalculator creates a calculator over cell. A nil cell uses an
// UnguardedCell without witness, a nil sleep uses Sleep.
func NewSharedStateCalculator(cell Cell, log zerolog.Logger, sleep Sleeper) *SharedStateCalculator {
	if cell == nil {
		cell = NewUnguardedCell(nil)
	}
	if sleep == nil {
		sleep = Sleep
	}
	return &SharedStateCalculator{cell: cell, log: log, sleep: sleep}
}

// SetValue stores v into the shared cell.
func (c *SharedStateCalculator) SetValue(ctx context.Context, v int) {
	c.cell.Store(ctx, v)
}

// Value returns the current content of the shared cell.
func (c *SharedStateCalculator) Value(ctx context.Context) int {
	return c.cell.Load(ctx)
}

// RunBusinessLogic waits for delay, then checks that the current cell value
// plus Offset equals expected.
//
// Returns an ExpectedRaceMismatch error when another caller changed the cell
// in between, or an Unreachable error when the wait is interrupted.
func (c *SharedStateCalculator) RunBusinessLogic(ctx context.Context, label string, delay time.Duration, expected int) error {
	if delay < 0 {
		delay = 0
	}

	c.log.Info().Str("worker", label).Dur("delay", delay).Int("value", c.cell.Load(ctx)).Msg("SLEEP before calculation")
	if err := c.sleep(ctx, delay); err != nil {
		return interrupted(label, err)
	}

	current := c.cell.Load(ctx)
	c.log.Info().Str("worker", label).Int("value", current).Msg("doing calculation")
	result := current + Offset
	if result != expected {
		return raceMismatch(label, expected, result)
	}

	c.log.Info().Str("worker", label).Int("result", result).Msg("Calculation correct")
	return nil
}
