package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/component"
)

func TestGeneratorEmitsConfiguredLines(t *testing.T) {
	src, err := newGenerator("gen.test", component.Raw{
		"events_per_second": 200.0,
		"lines":             []any{"alpha", "beta"},
	})
	require.NoError(t, err)

	out := buffer.NewMemory(8, buffer.PolicyBlock)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, out) }()
	<-ctx.Done()
	require.NoError(t, <-done)

	assert.Greater(t, out.Len(), 0)
	e, err := out.Recv(context.Background())
	require.NoError(t, err)
	body, ok := e.Log()
	require.True(t, ok)
	assert.Contains(t, []any{"alpha", "beta"}, body.Fields["message"])
}

func TestGeneratorDescriptorProducesLog(t *testing.T) {
	src, err := newGenerator("gen.test", component.Raw{})
	require.NoError(t, err)
	assert.Equal(t, component.KindSource, src.Descriptor().Kind)
}
