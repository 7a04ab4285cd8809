package scenario

import (
	"context"
	"strconv"
	"time"

	"github.com/kolkov/threadsafety/internal/calc"
	"github.com/kolkov/threadsafety/internal/race/detector"
)

// work is one set-then-calculate call on the shared state path.
type work func(ctx context.Context, label string, v int, delay time.Duration, expected int) error

// sharedWork builds the shared calculator selected by Config.Guard.
func (d *Driver) sharedWork(witness *detector.Detector) work {
	switch d.cfg.Guard {
	case Mutex:
		shared := calc.NewSharedStateCalculator(calc.NewUnguardedCell(witness), d.log, d.sleep)
		return calc.NewGuardedCalculator(shared, witness).Run
	case Atomic:
		return setThenRun(calc.NewSharedStateCalculator(calc.NewAtomicCell(witness), d.log, d.sleep))
	default:
		return setThenRun(calc.NewSharedStateCalculator(calc.NewUnguardedCell(witness), d.log, d.sleep))
	}
}

func setThenRun(c *calc.SharedStateCalculator) work {
	return func(ctx context.Context, label string, v int, delay time.Duration, expected int) error {
		c.SetValue(ctx, v)
		return c.RunBusinessLogic(ctx, label, delay, expected)
	}
}

func label(i int) string {
	return "Thread" + strconv.Itoa(i)
}

// SafeSimple runs two workers on one StatelessCalculator.
func (d *Driver) SafeSimple(ctx context.Context) (Report, error) {
	r := d.newRun("safe simple", 2, false)
	c := calc.NewStatelessCalculator(d.log, d.sleep)

	return d.scenario(ctx, r,
		"Starting single instance, thread safe",
		"Finished single instance, thread safe",
		func(ctx context.Context) error {
			return r.group.run(ctx,
				func(ctx context.Context) error {
					return d.settle(r, c.RunBusinessLogic(ctx, "Thread Safe Thread 1", 10, 50*time.Millisecond, 65))
				},
				func(ctx context.Context) error {
					return d.settle(r, c.RunBusinessLogic(ctx, "Thread Safe Thread 2", 5, time.Millisecond, 60))
				},
			)
		})
}

// UnsafeSimple runs two workers on one shared calculator. The slow worker
// usually reads the value the fast worker set.
func (d *Driver) UnsafeSimple(ctx context.Context) (Report, error) {
	r := d.newRun("unsafe simple", 2, true)
	do := d.sharedWork(r.witness)

	return d.scenario(ctx, r,
		"Starting single instance, NOT thread safe, classic Servlet problem",
		"Finished single instance, NOT thread safe",
		func(ctx context.Context) error {
			return r.group.run(ctx,
				func(ctx context.Context) error {
					return d.settle(r, do(ctx, "NOT Thread Safe Thread 1", 10, 50*time.Millisecond, 65))
				},
				func(ctx context.Context) error {
					return d.settle(r, do(ctx, "NOT Thread Safe Thread 2", 5, time.Millisecond, 60))
				},
			)
		})
}

// SafeExhaustive runs Config.Workers workers on one StatelessCalculator.
func (d *Driver) SafeExhaustive(ctx context.Context) (Report, error) {
	r := d.newRun("safe exhaustive", d.cfg.Workers, false)
	c := calc.NewStatelessCalculator(d.log, d.sleep)

	return d.scenario(ctx, r,
		"Starting exhaustive single instance, thread safe",
		"Finished exhaustive single instance, thread safe",
		func(ctx context.Context) error {
			return r.group.forEach(ctx, d.cfg.Workers, func(ctx context.Context, i int) error {
				return d.settle(r, c.RunBusinessLogic(ctx, label(i), i, d.jitter(d.cfg.MaxJitter), i+calc.Offset))
			})
		})
}

// UnsafeExhaustive runs Config.Workers workers on one shared calculator.
func (d *Driver) UnsafeExhaustive(ctx context.Context) (Report, error) {
	r := d.newRun("unsafe exhaustive", d.cfg.Workers, true)
	do := d.sharedWork(r.witness)

	return d.scenario(ctx, r,
		"Starting exhaustive single instance, NOT thread safe",
		"Finished exhaustive single instance, NOT thread safe",
		func(ctx context.Context) error {
			return r.group.forEach(ctx, d.cfg.Workers, func(ctx context.Context, i int) error {
				return d.settle(r, do(ctx, label(i), i, d.jitter(d.cfg.MaxJitter), i+calc.Offset))
			})
		})
}
