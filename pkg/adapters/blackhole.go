package adapters

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/component"
	"github.com/vectorflow/vector/pkg/event"
)

func init() {
	component.RegisterSink("blackhole", component.SinkSpec{
		Summary: "Discards every event, settling each ack as delivered. Useful for load testing upstream components.",
		New:     newBlackhole,
	})
}

// Blackhole is the reference discard sink.
type Blackhole struct {
	id       string
	received atomic.Int64
}

func newBlackhole(id string, _ component.Raw) (component.Sink, error) {
	return &Blackhole{id: id}, nil
}

func (b *Blackhole) Descriptor() component.Descriptor {
	return component.Descriptor{
		Type:        "blackhole",
		Kind:        component.KindSink,
		Accepts:     event.NewVariantSet(event.VariantLog, event.VariantMetric, event.VariantTrace),
		SupportsAck: true,
	}
}

func (b *Blackhole) Run(ctx context.Context, in buffer.Buffer) error {
	for {
		e, err := in.Recv(ctx)
		if err != nil {
			if errors.Is(err, buffer.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("adapters: blackhole %s: %w", b.id, err)
		}
		b.received.Add(1)
		event.Settle(e.Ack(), event.OutcomeDelivered)
	}
}

// Received reports how many events this sink has discarded, for tests and the
// status control-plane endpoint.
func (b *Blackhole) Received() int64 {
	return b.received.Load()
}

var _ component.Sink = (*Blackhole)(nil)
