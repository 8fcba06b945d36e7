// internal/background/runner.go
//
// Deferred work that outlives the HTTP response.
//
// Context
// -------
// Edge runtimes expose a `waitUntil` hook: the handler returns, the client
// gets its response, and the platform keeps the promise alive until it
// settles.  Runner is the Go equivalent.  WaitUntil starts fn on its own
// goroutine and returns at once; a weighted semaphore caps how many tasks
// run concurrently, and Drain lets the server wait for in-flight tasks
// during graceful shutdown.
//
// Notes
// -----
// • Tasks never receive the request context.  They get the runner's base
//   context, which is cancelled only when Drain's deadline expires.
// • A nil *Runner is valid; callers check Available() and run inline.
// • Oxford commas, two spaces after periods.
package background

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/yanizio/storefront/internal/metrics"
)

// Executor is what request-scoped code sees.  *Runner satisfies it.
type Executor interface {
	WaitUntil(ctx context.Context, fn func(ctx context.Context))
}

// Runner schedules fire-and-forget tasks.
type Runner struct {
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	base   context.Context
	cancel context.CancelFunc
}

// New returns a Runner allowing at most limit concurrent tasks.
func New(limit int64) *Runner {
	if limit < 1 {
		limit = 1
	}
	base, cancel := context.WithCancel(context.Background())
	return &Runner{
		sem:    semaphore.NewWeighted(limit),
		base:   base,
		cancel: cancel,
	}
}

// Available reports whether r can accept tasks.
func (r *Runner) Available() bool { return r != nil }

// WaitUntil runs fn after the caller returns.  Values carried by ctx are
// preserved, its cancellation is not, so the task survives the end of the
// request that scheduled it.
func (r *Runner) WaitUntil(ctx context.Context, fn func(ctx context.Context)) {
	if r == nil {
		fn(context.WithoutCancel(ctx))
		return
	}
	taskCtx, stop := mergeValues(r.base, ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer stop()
		if err := r.sem.Acquire(taskCtx, 1); err != nil {
			zap.L().Warn("background task dropped", zap.Error(err))
			return
		}
		defer r.sem.Release(1)

		metrics.BackgroundInFlight.Inc()
		defer metrics.BackgroundInFlight.Dec()
		defer func() {
			if p := recover(); p != nil {
				zap.L().Error("background task panic", zap.Any("panic", p))
			}
		}()
		fn(taskCtx)
	}()
}

// Drain waits for in-flight tasks.  When ctx ends first, remaining tasks
// are cancelled and ctx.Err() is returned.
func (r *Runner) Drain(ctx context.Context) error {
	if r == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	}
}

// mergeValues returns a context with the values of vals and the
// cancellation of base.
func mergeValues(base, vals context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(vals))
	stop := context.AfterFunc(base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
