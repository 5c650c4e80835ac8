package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/component"
	"github.com/vectorflow/vector/pkg/event"
	"github.com/vectorflow/vector/pkg/obs"
)

func init() {
	component.RegisterSource("internal_metrics", component.SourceSpec{
		Summary: "Emits the engine's own Prometheus counters and histograms as Metric events on a fixed interval.",
		New:     newInternalMetrics,
	})
}

// InternalMetricsConfig configures the internal_metrics source.
type InternalMetricsConfig struct {
	// ScrapeInterval is how often the registry is snapshotted; non-positive defaults
	// to 10s.
	ScrapeInterval time.Duration `yaml:"scrape_interval"`
}

// InternalMetrics turns obs.Snapshot's view of the process's own instrumentation
// into ordinary events so the same topology that ships log and trace data can also
// ship Vector's own health to a metrics sink, without a side-channel scrape target.
type InternalMetrics struct {
	id  string
	cfg InternalMetricsConfig
}

func newInternalMetrics(id string, raw component.Raw) (component.Source, error) {
	cfg, err := decodeRaw[InternalMetricsConfig](raw)
	if err != nil {
		return nil, fmt.Errorf("adapters: internal_metrics %s: %w", id, err)
	}
	if cfg.ScrapeInterval <= 0 {
		cfg.ScrapeInterval = 10 * time.Second
	}
	return &InternalMetrics{id: id, cfg: cfg}, nil
}

func (m *InternalMetrics) Descriptor() component.Descriptor {
	return component.Descriptor{
		Type:     "internal_metrics",
		Kind:     component.KindSource,
		Produces: event.NewVariantSet(event.VariantMetric),
		Optional: true,
	}
}

func (m *InternalMetrics) Run(ctx context.Context, out buffer.Buffer) error {
	ticker := time.NewTicker(m.cfg.ScrapeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			bodies, err := obs.Snapshot()
			if err != nil {
				return fmt.Errorf("adapters: internal_metrics %s: snapshot: %w", m.id, err)
			}
			now := time.Now()
			for _, body := range bodies {
				e := event.Synthesize(body, now)
				if err := out.Send(ctx, e); err != nil {
					if errors.Is(err, buffer.ErrClosed) || ctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("adapters: internal_metrics %s: %w", m.id, err)
				}
			}
		}
	}
}

var _ component.Source = (*InternalMetrics)(nil)
