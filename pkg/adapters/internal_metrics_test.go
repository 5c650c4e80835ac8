package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/component"
	"github.com/vectorflow/vector/pkg/obs"
)

func TestInternalMetricsEmitsSnapshotOnInterval(t *testing.T) {
	obs.EventsIn.WithLabelValues("source.test").Inc()

	src, err := newInternalMetrics("internal_metrics.test", component.Raw{
		"scrape_interval": "10ms",
	})
	require.NoError(t, err)

	out := buffer.NewMemory(64, buffer.PolicyBlock)
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, out) }()
	<-ctx.Done()
	require.NoError(t, <-done)

	assert.Greater(t, out.Len(), 0)
}

func TestInternalMetricsDescriptorIsOptional(t *testing.T) {
	src, err := newInternalMetrics("internal_metrics.test", component.Raw{})
	require.NoError(t, err)
	assert.True(t, src.Descriptor().Optional)
}
