package build

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/opmodel/refgraph/internal/output"
)

// Executor runs independent jobs in parallel with an all-or-nothing join.
type Executor struct {
	workers int
}

// NewExecutor creates an Executor running at most workers jobs at once.
// Zero or less is unbounded.
func NewExecutor(workers int) *Executor {
	return &Executor{workers: workers}
}

// Workers returns the configured bound.
func (e *Executor) Workers() int { return e.workers }

// execute runs fn for every item and returns the results in item order. The
// first failing job cancels the others and its error is returned alone.
func execute[T, R any](ctx context.Context, e *Executor, phase string, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	output.Debug("executing jobs", "phase", phase, "count", len(items), "workers", e.workers)

	g, gctx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
