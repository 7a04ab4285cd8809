package calc

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StatelessCalculator computes from call parameters only. It is safe for
// concurrent use.
type StatelessCalculator struct {
	log   zerolog.Logger
	sleep Sleeper
}

// NewStatelessCalculator creates a calculator. A nil sleep uses Sleep.
func NewStatelessCalculator(log zerolog.Logger, sleep Sleeper) *StatelessCalculator {
	if sleep == nil {
		sleep = Sleep
	}
	return &StatelessCalculator{log: log, sleep: sleep}
}

// RunBusinessLogic waits for delay, then checks that value + Offset equals
// expected. A negative delay is treated as zero.
//
// Returns an Unreachable error when the check fails or the wait is
// interrupted.
func (c *StatelessCalculator) RunBusinessLogic(ctx context.Context, label string, value int, delay time.Duration, expected int) error {
	if delay < 0 {
		delay = 0
	}

	c.log.Info().Str("worker", label).Dur("delay", delay).Int("value", value).Msg("SLEEP before calculation")
	if err := c.sleep(ctx, delay); err != nil {
		return interrupted(label, err)
	}

	c.log.Info().Str("worker", label).Int("value", value).Msg("doing calculation")
	result := value + Offset
	if result != expected {
		return unreachable(label, expected, result)
	}

	c.log.Info().Str("worker", label).Int("result", result).Msg("Calculation correct")
	return nil
}
