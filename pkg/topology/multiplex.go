package topology

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/event"
	"github.com/vectorflow/vector/pkg/events"
)

// Multiplexer is the engine's edge router (spec §4.3): a producer's single logical
// output, fanned out to every downstream consumer's input buffer. It implements
// buffer.Buffer so a Source or TaskTransform can write to it exactly as it would a
// plain buffer; the fan-out and ack-share splitting happen underneath.
//
// Send delivers to each target in order. A target under "block" suspends Send until
// it has room, which cascades backpressure to the producer (spec §4.2); a target
// under "drop_newest" returns immediately with that target's share settled dropped,
// and the remaining targets still receive their copy.
type Multiplexer struct {
	mu        sync.RWMutex
	targets   []buffer.Buffer
	closed    atomic.Bool
	tap       *events.Broker
	component string
}

func newMultiplexer(targets []buffer.Buffer) *Multiplexer {
	return &Multiplexer{targets: targets}
}

// SetTap attaches the shared tap broker this multiplexer publishes a sample to on
// every send, tagged with component. A nil broker disables tapping (the default,
// zero-cost for topologies that never attach a control-plane tap client).
func (m *Multiplexer) SetTap(b *events.Broker, component string) {
	m.mu.Lock()
	m.tap = b
	m.component = component
	m.mu.Unlock()
}

// SetTargets atomically replaces the full set of downstream targets. pkg/reload uses
// this to rewire a producer onto its new generation's consumers in one step (spec
// §4.5 step 4: "atomically rewire downstream references"), so no in-flight Send ever
// observes a partially-updated target list.
func (m *Multiplexer) SetTargets(targets []buffer.Buffer) {
	m.mu.Lock()
	m.targets = targets
	m.mu.Unlock()
}

// Send fans e out to every target, splitting e's ack share N ways (spec §4.4: "each
// fan-out multiplies the share count by the number of downstream copies"). With a
// single target the original ack handle is forwarded unchanged — no extra share is
// created for a 1:1 edge.
func (m *Multiplexer) Send(ctx context.Context, e event.Event) error {
	if m.closed.Load() {
		return buffer.ErrClosed
	}
	m.mu.RLock()
	targets := m.targets
	tap := m.tap
	component := m.component
	m.mu.RUnlock()

	if tap != nil {
		tap.Publish(&events.TapEvent{Component: component, Variant: e.Variant(), Preview: previewEvent(e)})
	}

	if len(targets) == 0 {
		event.Settle(e.Ack(), event.OutcomeDelivered)
		return nil
	}

	clones := make([]event.Event, len(targets))
	last := len(targets) - 1
	for i := range targets {
		if i == last {
			clones[i] = e
		} else {
			clones[i] = e.Clone(event.CloneAck(e.Ack()))
		}
	}

	for i, target := range targets {
		err := target.Send(ctx, clones[i])
		if err == nil {
			continue
		}
		if errors.Is(err, buffer.ErrDropped) {
			event.Settle(clones[i].Ack(), event.OutcomeDropped)
			continue
		}
		// ErrClosed or ctx cancellation: the remaining not-yet-sent shares can never
		// be delivered, so resolve them rejected rather than leaking the ack group.
		for j := i + 1; j < len(targets); j++ {
			event.Settle(clones[j].Ack(), event.OutcomeRejected)
		}
		return err
	}
	return nil
}

// Recv is unused: a Multiplexer is a write-only fan-out, never a consumer's read
// side. It exists only so Multiplexer satisfies buffer.Buffer.
func (m *Multiplexer) Recv(ctx context.Context) (event.Event, error) {
	<-ctx.Done()
	return event.Event{}, ctx.Err()
}

func (m *Multiplexer) Len() int {
	m.mu.RLock()
	targets := m.targets
	m.mu.RUnlock()
	total := 0
	for _, t := range targets {
		total += t.Len()
	}
	return total
}

func (m *Multiplexer) Close() { m.closed.Store(true) }

func (m *Multiplexer) Closed() bool { return m.closed.Load() }

var _ buffer.Buffer = (*Multiplexer)(nil)

// previewEvent renders a short, human-readable summary of e for the tap stream —
// never the full body, since tap exists for debugging, not for replaying data.
func previewEvent(e event.Event) string {
	switch e.Variant() {
	case event.VariantLog:
		if b, ok := e.Log(); ok {
			return fmt.Sprintf("log fields=%d", len(b.Fields))
		}
	case event.VariantMetric:
		if b, ok := e.Metric(); ok {
			return fmt.Sprintf("metric name=%s", b.Name)
		}
	case event.VariantTrace:
		if b, ok := e.Trace(); ok {
			return fmt.Sprintf("trace fields=%d", len(b.Fields))
		}
	}
	return "unknown"
}
