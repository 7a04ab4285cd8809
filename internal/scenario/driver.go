package scenario

import (
	"context"
	"io"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/kolkov/threadsafety/internal/calc"
	"github.com/kolkov/threadsafety/internal/race/detector"
)

var separator = strings.Repeat("-", 72)

// Report summarizes one scenario.
type Report struct {
	Name       string
	Workers    int
	Mismatches int // Recoverable wrong calculations
	Races      int // Unique data races seen by the witness
}

// MarshalZerologObject logs the report as fields.
func (r Report) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", r.Name).
		Int("workers", r.Workers).
		Int("mismatches", r.Mismatches).
		Int("races", r.Races)
}

// Option configures a Driver.
type Option func(*Driver)

// WithSleeper replaces the sleeper used for scenario pauses and worker
// delays.
func WithSleeper(s calc.Sleeper) Option {
	return func(d *Driver) { d.sleep = s }
}

// WithJitter replaces the random worker delay of the exhaustive scenarios.
// fn receives Config.MaxJitter.
func WithJitter(fn func(bound time.Duration) time.Duration) Option {
	return func(d *Driver) { d.jitter = fn }
}

// WithErrorOutput sets where race reports are written. Defaults to
// io.Discard.
func WithErrorOutput(w io.Writer) Option {
	return func(d *Driver) { d.errOut = w }
}

// Driver runs scenarios.
type Driver struct {
	cfg    Config
	log    zerolog.Logger
	sleep  calc.Sleeper
	jitter func(bound time.Duration) time.Duration
	errOut io.Writer
}

// NewDriver creates a driver. The driver keeps its own copy of cfg.
func NewDriver(cfg Config, log zerolog.Logger, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid scenario config")
	}

	d := &Driver{
		cfg:    deepcopy.Copy(cfg).(Config),
		log:    log,
		sleep:  calc.Sleep,
		jitter: randomDelay,
		errOut: io.Discard,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config returns the driver's configuration.
func (d *Driver) Config() Config {
	return d.cfg
}

// randomDelay returns a whole number of milliseconds in [0, bound).
func randomDelay(bound time.Duration) time.Duration {
	ms := int64(bound / time.Millisecond)
	if ms <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(ms)) * time.Millisecond
}

// Run executes all four scenarios in order. It stops at the first fatal
// error and returns the reports of the scenarios that completed.
func (d *Driver) Run(ctx context.Context) ([]Report, error) {
	steps := []func(context.Context) (Report, error){
		d.SafeSimple,
		d.UnsafeSimple,
		d.SafeExhaustive,
		d.UnsafeExhaustive,
	}

	reports := make([]Report, 0, len(steps))
	for _, step := range steps {
		r, err := step(ctx)
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// run is the state of one scenario execution.
type run struct {
	name       string
	workers    int
	group      *group
	witness    *detector.Detector
	mismatches atomic.Int64
}

// settle applies the worker result policy. A mismatch on the shared state
// path is logged and counted; anything else aborts the scenario.
func (d *Driver) settle(r *run, err error) error {
	if err == nil {
		return nil
	}

	var ce *calc.Error
	if calc.IsRaceMismatch(err) && errors.As(err, &ce) {
		d.log.Warn().
			Str("worker", ce.Label).
			Int("expected", ce.Expected).
			Int("actual", ce.Actual).
			Msg("Wrong calculation")
		r.mismatches.Add(1)
		return nil
	}
	return err
}

// scenario wraps body with the banners, pauses and witness summary.
func (d *Driver) scenario(ctx context.Context, r *run, start, finish string, body func(ctx context.Context) error) (Report, error) {
	d.log.Info().Msg(start)

	if err := d.sleep(ctx, d.cfg.PreDelay); err != nil {
		return Report{}, errors.Wrapf(err, "%s: interrupted before dispatch", r.name)
	}
	if err := body(ctx); err != nil {
		return Report{}, errors.Wrapf(err, "%s: worker failed", r.name)
	}
	if err := d.sleep(ctx, d.cfg.PostDelay); err != nil {
		return Report{}, errors.Wrapf(err, "%s: interrupted after dispatch", r.name)
	}

	report := Report{
		Name:       r.name,
		Workers:    r.workers,
		Mismatches: int(r.mismatches.Load()),
	}
	if r.witness != nil {
		report.Races = r.witness.RacesDetected()
		d.log.Info().Int("races", report.Races).Msg("Race witness finished")
		if reports := r.witness.Reports(); len(reports) > 0 {
			reports[0].Format(d.errOut)
		}
	}

	d.log.Info().Msg(finish)
	d.log.Info().Msg(separator)
	return report, nil
}

func (d *Driver) newRun(name string, workers int, witnessed bool) *run {
	r := &run{
		name:    name,
		workers: workers,
		group:   newGroup(d.cfg.Dispatch),
	}
	if witnessed && d.cfg.Witness {
		r.witness = detector.NewDetector()
	}
	return r
}
