// Package topotest provides small, deterministic test adapters registered under the
// component registry, so topology/reload/runtime tests can build literal topologies
// without depending on pkg/adapters' real I/O-bound ones.
package topotest

import (
	"context"
	"fmt"
	"time"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/component"
	"github.com/vectorflow/vector/pkg/event"
)

func init() {
	component.RegisterSource("test_emit_n", component.SourceSpec{
		Summary: "Emits a fixed number of Log events then returns.",
		New:     newEmitN,
	})
	component.RegisterSink("test_outcome", component.SinkSpec{
		Summary: "Settles every received event's ack with a fixed outcome and counts receipts.",
		New:     newOutcomeSink,
	})
	component.RegisterTransform("test_passthrough", component.TransformSpec{
		Summary: "Forwards every event unchanged.",
		New:     newPassthrough,
	})
	component.RegisterSource("test_emit_forever", component.SourceSpec{
		Summary: "Emits events on a fixed interval until its context is cancelled.",
		New:     newEmitForever,
	})
}

// Passthrough is a Mapper that forwards every event's body unchanged, for topology
// tests that need a transform node without exercising any real remapping logic.
type Passthrough struct{ id string }

func newPassthrough(id string, _ component.Raw) (component.Transform, error) {
	return &Passthrough{id: id}, nil
}

func (p *Passthrough) Descriptor() component.Descriptor {
	variants := event.NewVariantSet(event.VariantLog, event.VariantMetric, event.VariantTrace)
	return component.Descriptor{
		Type:        "test_passthrough",
		Kind:        component.KindTransform,
		Accepts:     variants,
		Produces:    variants,
		SupportsAck: true,
	}
}

func (p *Passthrough) Apply(e event.Event) ([]event.Body, error) {
	return []event.Body{e.Body()}, nil
}

// EmitN is a source that emits exactly Count events, each carrying an ack handle
// built from AckFactory if set, then returns nil. Tests construct it directly (not
// through the registry) when they need to hook AckFactory.
type EmitN struct {
	id         string
	Count      int
	AckFactory func() event.AckHandle
}

func newEmitN(id string, raw component.Raw) (component.Source, error) {
	count, _ := raw["count"].(int)
	if count == 0 {
		if f, ok := raw["count"].(float64); ok {
			count = int(f)
		}
	}
	return &EmitN{id: id, Count: count}, nil
}

func (e *EmitN) Descriptor() component.Descriptor {
	return component.Descriptor{
		Type:        "test_emit_n",
		Kind:        component.KindSource,
		Produces:    event.NewVariantSet(event.VariantLog),
		SupportsAck: true,
	}
}

func (e *EmitN) Run(ctx context.Context, out buffer.Buffer) error {
	for i := 0; i < e.Count; i++ {
		var ack event.AckHandle
		if e.AckFactory != nil {
			ack = e.AckFactory()
		}
		evt := event.New(&event.LogBody{Fields: map[string]any{"i": i}}, time.Now(), ack)
		if err := out.Send(ctx, evt); err != nil {
			return fmt.Errorf("topotest: emit_n %s: %w", e.id, err)
		}
	}
	return nil
}

// EmitForever is a source that sends one event every Interval until ctx is
// cancelled, for tests that need a node that only stops in response to StopNode.
type EmitForever struct {
	id       string
	Interval time.Duration
}

func newEmitForever(id string, _ component.Raw) (component.Source, error) {
	return &EmitForever{id: id, Interval: time.Millisecond}, nil
}

func (e *EmitForever) Descriptor() component.Descriptor {
	return component.Descriptor{
		Type:        "test_emit_forever",
		Kind:        component.KindSource,
		Produces:    event.NewVariantSet(event.VariantLog),
		SupportsAck: true,
	}
}

func (e *EmitForever) Run(ctx context.Context, out buffer.Buffer) error {
	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			evt := event.New(&event.LogBody{Fields: map[string]any{"src": e.id}}, time.Now(), nil)
			if err := out.Send(ctx, evt); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("topotest: emit_forever %s: %w", e.id, err)
			}
		}
	}
}

// OutcomeSink settles every received event with a fixed Outcome and records every
// event it has seen, for assertions.
type OutcomeSink struct {
	id       string
	Outcome  event.Outcome
	Received []event.Event
}

func newOutcomeSink(id string, raw component.Raw) (component.Sink, error) {
	outcome := event.OutcomeDelivered
	if v, ok := raw["outcome"].(string); ok && v == "rejected" {
		outcome = event.OutcomeRejected
	}
	return &OutcomeSink{id: id, Outcome: outcome}, nil
}

func (s *OutcomeSink) Descriptor() component.Descriptor {
	return component.Descriptor{
		Type:        "test_outcome",
		Kind:        component.KindSink,
		Accepts:     event.NewVariantSet(event.VariantLog, event.VariantMetric, event.VariantTrace),
		SupportsAck: true,
	}
}

func (s *OutcomeSink) Run(ctx context.Context, in buffer.Buffer) error {
	for {
		e, err := in.Recv(ctx)
		if err != nil {
			return nil
		}
		s.Received = append(s.Received, e)
		event.Settle(e.Ack(), s.Outcome)
	}
}
