package scenario

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/kolkov/threadsafety/internal/race/goroutine"
)

// task is the body of one worker. ctx carries the worker's RaceContext.
type task func(ctx context.Context) error

// group starts the workers of one scenario and waits for them.
//
// Worker clocks are forked from the driver clock on the driver goroutine and
// joined back after the workers finished, so the driver's later accesses are
// ordered after every worker.
type group struct {
	driver   *goroutine.RaceContext
	alloc    *goroutine.Allocator
	dispatch Dispatch
}

func newGroup(dispatch Dispatch) *group {
	return &group{
		driver:   goroutine.Alloc(0),
		alloc:    goroutine.NewAllocator(),
		dispatch: dispatch,
	}
}

func (g *group) fork() (*goroutine.RaceContext, error) {
	tid, err := g.alloc.Next()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return g.driver.Fork(tid), nil
}

// run executes tasks and returns the first error. In parallel mode the
// remaining workers see a cancelled context once one fails.
func (g *group) run(ctx context.Context, tasks ...task) error {
	if g.dispatch == Sequential {
		return g.runSequential(ctx, tasks)
	}

	children := make([]*goroutine.RaceContext, len(tasks))
	for i := range tasks {
		child, err := g.fork()
		if err != nil {
			return err
		}
		children[i] = child
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(len(tasks))
	for i, t := range tasks {
		wctx := goroutine.NewContext(gctx, children[i])
		eg.Go(func() error {
			return t(wctx)
		})
	}
	err := eg.Wait()

	for _, child := range children {
		g.driver.Join(child)
	}
	return err
}

func (g *group) runSequential(ctx context.Context, tasks []task) error {
	for _, t := range tasks {
		child, err := g.fork()
		if err != nil {
			return err
		}
		err = t(goroutine.NewContext(ctx, child))
		g.driver.Join(child)
		if err != nil {
			return err
		}
	}
	return nil
}

// forEach runs fn for every index in [0, n).
func (g *group) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	tasks := make([]task, n)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) error {
			return fn(ctx, i)
		}
	}
	return g.run(ctx, tasks...)
}
