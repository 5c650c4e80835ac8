package runtime

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Runtime hosts every component task for the lifetime of the process, across
// reloads. Go spawns a task; Wait blocks until every spawned task has returned,
// yielding the first non-nil error. Cancel triggers the runtime-wide context so
// cmd/vector or the control plane can force an abort without waiting on a graceful
// topology.Shutdown to finish first (spec §5: "tasks exceeding the deadline are
// forcibly aborted").
type Runtime struct {
	mu     sync.Mutex
	g      *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Runtime whose root context derives from parent. Components run
// under per-node child contexts that pkg/topology derives from whatever parent it
// is given; pkg/reload is given this Runtime's context, so Cancel, or the first
// task to return a non-nil error, also cancels every component.
func New(parent context.Context) *Runtime {
	ctx, cancel := context.WithCancel(parent)
	g, gctx := errgroup.WithContext(ctx)
	return &Runtime{g: g, ctx: gctx, cancel: cancel}
}

// Go implements topology.Runner: it spawns fn on the shared errgroup. fn receives
// Runtime's own context, available to tasks that have no tier context of their own
// (e.g. pkg/controlplane's listener loop).
func (r *Runtime) Go(fn func(ctx context.Context) error) {
	r.mu.Lock()
	ctx := r.ctx
	g := r.g
	r.mu.Unlock()
	g.Go(func() error { return fn(ctx) })
}

// Wait blocks until every task spawned so far has returned, and returns the first
// non-nil error among them.
func (r *Runtime) Wait() error {
	r.mu.Lock()
	g := r.g
	r.mu.Unlock()
	return g.Wait()
}

// Context returns the runtime-wide context; cancelled by Cancel or by the parent
// context passed to New.
func (r *Runtime) Context() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx
}

// Cancel triggers the runtime-wide context immediately, independent of any graceful
// per-tier shutdown in progress.
func (r *Runtime) Cancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	cancel()
}

// Done reports the runtime-wide context's cancellation channel, for callers that
// want to select on a forced abort alongside their own work.
func (r *Runtime) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx.Done()
}
