package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/component"
	"github.com/vectorflow/vector/pkg/event"
)

func init() {
	component.RegisterSource("generator", component.SourceSpec{
		Summary: "Emits synthetic log events at a configured rate, for demos and topology testing.",
		New:     newGenerator,
	})
}

// GeneratorConfig configures the generator source.
type GeneratorConfig struct {
	// EventsPerSecond is the emission rate; non-positive defaults to 1.
	EventsPerSecond float64 `yaml:"events_per_second"`
	// Lines cycles through a fixed set of log lines; empty defaults to one line.
	Lines []string `yaml:"lines"`
}

// Generator is the reference source adapter: it owns no real upstream receipt, so
// every event it emits carries a nil ack handle (spec §4.4 only requires ack groups
// where a real upstream receipt exists to acknowledge).
type Generator struct {
	id  string
	cfg GeneratorConfig
}

func newGenerator(id string, raw component.Raw) (component.Source, error) {
	cfg, err := decodeRaw[GeneratorConfig](raw)
	if err != nil {
		return nil, fmt.Errorf("adapters: generator %s: %w", id, err)
	}
	if len(cfg.Lines) == 0 {
		cfg.Lines = []string{"synthetic log line"}
	}
	return &Generator{id: id, cfg: cfg}, nil
}

func (g *Generator) Descriptor() component.Descriptor {
	return component.Descriptor{
		Type:     "generator",
		Kind:     component.KindSource,
		Produces: event.NewVariantSet(event.VariantLog),
	}
}

func (g *Generator) Run(ctx context.Context, out buffer.Buffer) error {
	rate := g.cfg.EventsPerSecond
	if rate <= 0 {
		rate = 1
	}
	interval := time.Duration(float64(time.Second) / rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var sequence int64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			line := g.cfg.Lines[int(sequence)%len(g.cfg.Lines)]
			sequence++
			e := event.Synthesize(&event.LogBody{
				Timestamp: time.Now(),
				Fields: map[string]any{
					"message":  line,
					"sequence": sequence,
				},
				Metadata: map[string]any{"source_type": "generator", "source_id": g.id},
			}, time.Now())

			if err := out.Send(ctx, e); err != nil {
				if errors.Is(err, buffer.ErrClosed) || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("adapters: generator %s: %w", g.id, err)
			}
		}
	}
}

var _ component.Source = (*Generator)(nil)
