package adapters

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/component"
	"github.com/vectorflow/vector/pkg/event"
)

func init() {
	component.RegisterSink("console", component.SinkSpec{
		Summary: "Writes each event as a line-delimited JSON record to stdout or stderr.",
		New:     newConsole,
	})
}

// ConsoleConfig configures the console sink.
type ConsoleConfig struct {
	// Target selects the output stream: "stdout" (default) or "stderr".
	Target string `yaml:"target"`
}

// Console is the reference sink adapter (spec §4.1's Sink contract). It has no
// batching policy of its own — every event is written and acked individually — since
// its purpose is local inspection, not throughput.
type Console struct {
	id string
	w  *bufio.Writer
}

func newConsole(id string, raw component.Raw) (component.Sink, error) {
	cfg, err := decodeRaw[ConsoleConfig](raw)
	if err != nil {
		return nil, fmt.Errorf("adapters: console %s: %w", id, err)
	}
	var w io.Writer = os.Stdout
	if cfg.Target == "stderr" {
		w = os.Stderr
	}
	return &Console{id: id, w: bufio.NewWriter(w)}, nil
}

func (c *Console) Descriptor() component.Descriptor {
	return component.Descriptor{
		Type:        "console",
		Kind:        component.KindSink,
		Accepts:     event.NewVariantSet(event.VariantLog, event.VariantMetric, event.VariantTrace),
		SupportsAck: true,
	}
}

func (c *Console) Run(ctx context.Context, in buffer.Buffer) error {
	defer c.w.Flush()
	for {
		e, err := in.Recv(ctx)
		if err != nil {
			if errors.Is(err, buffer.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("adapters: console %s: %w", c.id, err)
		}

		line, encErr := renderEvent(e)
		if encErr != nil {
			event.Settle(e.Ack(), event.OutcomeRejected)
			continue
		}
		if _, werr := c.w.Write(append(line, '\n')); werr != nil {
			event.Settle(e.Ack(), event.OutcomeRejected)
			continue
		}
		if err := c.w.Flush(); err != nil {
			event.Settle(e.Ack(), event.OutcomeRejected)
			continue
		}
		event.Settle(e.Ack(), event.OutcomeDelivered)
	}
}

func renderEvent(e event.Event) ([]byte, error) {
	view := map[string]any{"variant": e.Variant().String(), "created": e.Created()}
	switch e.Variant() {
	case event.VariantLog:
		body, _ := e.Log()
		view["fields"] = body.Fields
		view["metadata"] = body.Metadata
	case event.VariantTrace:
		body, _ := e.Trace()
		view["fields"] = body.Fields
		view["metadata"] = body.Metadata
	case event.VariantMetric:
		body, _ := e.Metric()
		view["name"] = body.Name
		view["tags"] = body.Tags
	}
	return json.Marshal(view)
}

var _ component.Sink = (*Console)(nil)
