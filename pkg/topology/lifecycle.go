package topology

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/component"
	"github.com/vectorflow/vector/pkg/event"
	"github.com/vectorflow/vector/pkg/log"
	"github.com/vectorflow/vector/pkg/obs"
)

// Runner is the narrow contract topology needs from pkg/runtime to host a node's
// task; satisfied directly by (*runtime.Runtime).Go, and by NewErrgroupRunner for
// callers that don't need the full cooperative scheduler.
type Runner interface {
	Go(fn func(ctx context.Context) error)
}

// Start spawns one task per node (spec §4.3: "spawns one task per adapter on the
// runtime"). Each node gets its own context derived from parent so pkg/reload can
// later stop or replace a single node without disturbing its tier-mates.
func (t *Topology) Start(parent context.Context, run Runner) {
	for _, n := range t.Nodes() {
		t.StartNode(parent, run, n)
	}
}

// StartNode spawns n's task under a fresh child of parent. Used both by Start (for
// every node at initial startup) and by pkg/reload (for just the added/changed nodes
// of a new generation, spec §4.5 step 3: "start its new instance alongside the old").
func (t *Topology) StartNode(parent context.Context, run Runner, n *Node) {
	ctx, cancel := context.WithCancel(parent)
	n.cancel = cancel
	transition(n, component.StateStarting)
	run.Go(func(context.Context) error {
		transition(n, component.StateRunning)
		err := n.run(ctx)
		if err != nil && ctx.Err() == nil {
			transition(n, component.StateFailed)
			log.WithComponentKey(n.Key).Error().Err(err).Msg("component failed")
			obs.EventsDropped.WithLabelValues(n.Key, "component_failed").Inc()
			if !n.Descriptor.Optional {
				return fmt.Errorf("topology: component %q failed: %w", n.Key, err)
			}
			return nil
		}
		transition(n, component.StateStopped)
		return nil
	})
}

func (n *Node) run(ctx context.Context) error {
	switch {
	case n.source != nil:
		return n.source.Run(ctx, n.Output)
	case n.sink != nil:
		return n.sink.Run(ctx, n.Input)
	case n.transform != nil:
		return runTransform(ctx, n)
	default:
		return fmt.Errorf("topology: node %q has no adapter", n.Key)
	}
}

// runTransform drives the per-event Mapper loop, or hands the buffers straight to a
// TaskTransform's own Run. Per-event transforms preserve input order (spec §4.1) by
// construction: one goroutine, one Recv-Apply-Send cycle at a time.
func runTransform(ctx context.Context, n *Node) error {
	if task, ok := n.transform.(component.TaskTransform); ok {
		return task.Run(ctx, n.Input, n.Output)
	}
	mapper, ok := n.transform.(component.Mapper)
	if !ok {
		return fmt.Errorf("topology: transform %q is neither Mapper nor TaskTransform", n.Key)
	}

	for {
		in, err := n.Input.Recv(ctx)
		if err != nil {
			if errors.Is(err, buffer.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("topology: transform %q recv: %w", n.Key, err)
		}
		obs.EventsIn.WithLabelValues(n.Key).Inc()

		bodies, err := mapper.Apply(in)
		if err != nil {
			event.Settle(in.Ack(), event.OutcomeRejected)
			obs.EventsDropped.WithLabelValues(n.Key, "apply_error").Inc()
			continue
		}

		for _, out := range component.Emit(in, bodies) {
			if sendErr := n.Output.Send(ctx, out); sendErr != nil {
				if errors.Is(sendErr, buffer.ErrClosed) || ctx.Err() != nil {
					return nil
				}
				obs.SendErrors.WithLabelValues(n.Key).Inc()
				return fmt.Errorf("topology: transform %q send: %w", n.Key, sendErr)
			}
			obs.EventsOut.WithLabelValues(n.Key).Inc()
		}
	}
}

func transition(n *Node, to component.State) {
	if err := n.sm.Transition(to); err != nil {
		log.WithComponentKey(n.Key).Error().Err(err).Msg("invalid state transition")
	}
	healthy := to == component.StateRunning || to == component.StateStarting || to == component.StateDraining
	message := ""
	if to == component.StateFailed {
		message = "component entered Failed state"
	}
	obs.RegisterComponent(n.Key, healthy, n.Descriptor.Optional, message)
}

// Shutdown stops every node in source -> transform -> sink order (spec §4.3),
// stopping one node at a time and waiting up to deadline for each node to reach a
// terminal state before moving to the next. A node still running past its deadline
// is logged and abandoned; Shutdown does not block on it further.
func (t *Topology) Shutdown(deadline time.Duration) {
	for _, tier := range [][]*Node{t.sources, t.transforms, t.sinks} {
		for _, n := range tier {
			t.StopNode(n, deadline)
		}
	}
}

// StopNode cancels n's context and waits up to deadline for it to reach a terminal
// state, closing its input buffer once drained so any still-blocked Recv unblocks
// with ErrClosed. Used by Shutdown per tier and by pkg/reload for an individual
// removed or superseded component (spec §4.5 step 5).
func (t *Topology) StopNode(n *Node, deadline time.Duration) {
	if !n.State().Terminal() {
		transition(n, component.StateDraining)
	}
	if n.cancel != nil {
		n.cancel()
	}
	waitDrained(n, time.After(deadline))
	if n.Input != nil {
		n.Input.Close()
	}
	obs.RemoveComponent(n.Key)
}

func waitDrained(n *Node, timeout <-chan time.Time) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		if n.State().Terminal() {
			return
		}
		select {
		case <-timeout:
			log.WithComponentKey(n.Key).Warn().Msg("component exceeded shutdown deadline, abandoning drain wait")
			return
		case <-ticker.C:
		}
	}
}

// errgroupRunner adapts *errgroup.Group to Runner, for callers (tests, cmd/vector
// before pkg/runtime is wired in) that don't need the full cooperative scheduler.
type errgroupRunner struct {
	g *errgroup.Group
}

// NewErrgroupRunner returns a Runner backed by golang.org/x/sync/errgroup, and a Wait
// function that returns the first fatal error from any task.
func NewErrgroupRunner() (Runner, func() error) {
	g := &errgroup.Group{}
	return &errgroupRunner{g: g}, g.Wait
}

func (r *errgroupRunner) Go(fn func(ctx context.Context) error) {
	r.g.Go(func() error { return fn(context.Background()) })
}
