package screens

import (
	"context"
	"sync"

	"github.com/meetfeed/meetfeed-client/pkg/apierror"
)

// Effect runs one fetch at a time on behalf of a screen. Starting a new run
// cancels the previous one, and Stop cancels the current one for good
// (the screen was unmounted). Results are applied only while the run is still
// current and its context is live.
type Effect[T any] struct {
	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	stopped bool
}

// Run executes fetch and hands the result to apply, or the error to fail.
// Canceled and superseded runs reach neither callback. The returned error is
// the fetch error, if any, so callers can report it.
func (e *Effect[T]) Run(parent context.Context, fetch func(context.Context) (T, error), apply func(T), fail func(error)) error {
	ctx, gen, ok := e.begin(parent)
	if !ok {
		return apierror.ErrCanceled
	}

	res, err := fetch(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	current := gen == e.gen && ctx.Err() == nil
	if gen == e.gen {
		e.cancel()
		e.cancel = nil
	}
	if err != nil {
		if current && !apierror.IsCanceled(err) && fail != nil {
			fail(err)
		}
		return err
	}
	if !current {
		return apierror.ErrCanceled
	}
	if apply != nil {
		apply(res)
	}
	return nil
}

func (e *Effect[T]) begin(parent context.Context) (context.Context, uint64, bool) {
	if parent == nil {
		parent = context.Background()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil, 0, false
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.gen++
	ctx, cancel := context.WithCancel(parent)
	e.cancel = cancel
	return ctx, e.gen, true
}

// Stop cancels the current run and refuses new ones. Once Stop returns no
// callback of an earlier run will be invoked.
func (e *Effect[T]) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Stopped reports whether Stop was called.
func (e *Effect[T]) Stopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}
