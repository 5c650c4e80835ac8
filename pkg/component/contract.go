package component

import (
	"context"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/event"
)

// Kind distinguishes the three capability contracts a descriptor can describe.
type Kind uint8

const (
	KindSource Kind = iota
	KindTransform
	KindSink
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindTransform:
		return "transform"
	case KindSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Descriptor is the static declaration every adapter exposes (spec §4.1): what event
// variants it accepts and produces, whether it can participate in ack propagation,
// and whether a Failed terminal state should bring the process down.
type Descriptor struct {
	Type        string
	Kind        Kind
	Accepts     event.VariantSet
	Produces    event.VariantSet
	SupportsAck bool
	// Optional marks a component whose Failed terminal does not trigger process-level
	// shutdown (spec §4.3).
	Optional bool
}

// Source pushes events into out until ctx is done, then must stop accepting new
// input, flush anything in flight, and return (spec §4.1). A non-nil error is a
// terminal failure that the topology surfaces and may disable the component under
// reload policy.
type Source interface {
	Descriptor() Descriptor
	Run(ctx context.Context, out buffer.Buffer) error
}

// Transform is the common marker for the two transform shapes spec §4.1 allows.
// pkg/topology type-switches on the concrete interface to decide which driver loop
// to run.
type Transform interface {
	Descriptor() Descriptor
}

// Mapper is the per-event transform contract. The engine guarantees output order
// matches input order; ack-share splitting across 0..N emitted events is handled by
// Emit, not by the Mapper implementation itself.
type Mapper interface {
	Transform
	Apply(e event.Event) ([]event.Body, error)
}

// TaskTransform is the task-based transform contract for transforms needing internal
// state or timers (windowing, batching, rate limiting). It owns its own ack-share
// handling via event.CloneAck and event.Settle.
type TaskTransform interface {
	Transform
	Run(ctx context.Context, in, out buffer.Buffer) error
}

// Sink drains in, batches according to policy, delivers to a remote endpoint, and
// settles each consumed event's ack share as delivered or rejected (spec §4.1). It
// must return promptly once ctx is done, after flushing any batch whose acks are
// still owed.
type Sink interface {
	Descriptor() Descriptor
	Run(ctx context.Context, in buffer.Buffer) error
}

// Emit applies a Mapper's 0..N output bodies to an input event's ack share per
// spec §4.1: emitting zero events settles the input share as delivered; emitting N
// events splits it into N shares, one per output event, preserving the input's
// creation time. The Nth share reuses the input's own ack handle instead of cloning
// it an extra time and settling the original separately.
func Emit(in event.Event, bodies []event.Body) []event.Event {
	if len(bodies) == 0 {
		event.Settle(in.Ack(), event.OutcomeDelivered)
		return nil
	}
	out := make([]event.Event, len(bodies))
	last := len(bodies) - 1
	for i, b := range bodies {
		var ack event.AckHandle
		if i == last {
			ack = in.Ack()
		} else {
			ack = event.CloneAck(in.Ack())
		}
		out[i] = event.New(b, in.Created(), ack)
	}
	return out
}
