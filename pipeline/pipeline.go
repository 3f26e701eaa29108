// Package pipeline runs independent simulation units on a bounded pool of
// workers.
//
// Each unit owns its grids, so units never share mutable state. A failing or
// panicking unit is reported in its own Outcome and does not stop the
// others; cancelling the context stops units that have not started yet.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrPanic is wrapped by the error of a unit that panicked.
var ErrPanic = errors.New("pipeline: unit panicked")

// Outcome is the result of one unit.
type Outcome[T any] struct {
	Index int
	Value T
	Err   error
}

// Run calls fn once per unit on at most workers goroutines and returns the
// outcomes in input order. workers <= 0 uses GOMAXPROCS.
func Run[U, T any](ctx context.Context, units []U, workers int, fn func(ctx context.Context, unit U) (T, error)) []Outcome[T] {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]Outcome[T], len(units))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, unit := range units {
		out[i].Index = i
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Value, out[i].Err = call(ctx, fn, unit)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func call[U, T any](ctx context.Context, fn func(context.Context, U) (T, error), unit U) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn(ctx, unit)
}

// Err joins the errors of all failed outcomes, annotated with their index.
// It returns nil when every unit succeeded.
func Err[T any](outcomes []Outcome[T]) error {
	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("unit %d: %w", o.Index, o.Err))
		}
	}
	return errors.Join(errs...)
}

// Values returns the values of successful outcomes in input order.
func Values[T any](outcomes []Outcome[T]) []T {
	var vals []T
	for _, o := range outcomes {
		if o.Err == nil {
			vals = append(vals, o.Value)
		}
	}
	return vals
}
