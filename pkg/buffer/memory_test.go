package buffer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorflow/vector/pkg/event"
)

func logEvent(msg string) event.Event {
	return event.Synthesize(&event.LogBody{Fields: map[string]any{"message": msg}}, time.Now())
}

func TestMemorySendRecvFIFO(t *testing.T) {
	m := NewMemory(4, PolicyBlock)
	ctx := context.Background()

	require.NoError(t, m.Send(ctx, logEvent("a")))
	require.NoError(t, m.Send(ctx, logEvent("b")))
	assert.Equal(t, 2, m.Len())

	got, err := m.Recv(ctx)
	require.NoError(t, err)
	body, _ := got.Log()
	assert.Equal(t, "a", body.Fields["message"])

	got, err = m.Recv(ctx)
	require.NoError(t, err)
	body, _ = got.Log()
	assert.Equal(t, "b", body.Fields["message"])
}

func TestMemoryBlockPolicySuspendsUntilCancel(t *testing.T) {
	m := NewMemory(1, PolicyBlock)
	ctx := context.Background()
	require.NoError(t, m.Send(ctx, logEvent("full")))

	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := m.Send(cctx, logEvent("blocked"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryDropNewestPolicy(t *testing.T) {
	m := NewMemory(1, PolicyDropNewest)
	ctx := context.Background()
	require.NoError(t, m.Send(ctx, logEvent("kept")))

	err := m.Send(ctx, logEvent("dropped"))
	assert.ErrorIs(t, err, ErrDropped)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryCloseDrainsThenErrClosed(t *testing.T) {
	m := NewMemory(4, PolicyBlock)
	ctx := context.Background()
	require.NoError(t, m.Send(ctx, logEvent("a")))
	m.Close()

	assert.True(t, m.Closed())
	_, err := m.Recv(ctx)
	require.NoError(t, err)

	_, err = m.Recv(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	err = m.Send(ctx, logEvent("late"))
	assert.ErrorIs(t, err, ErrClosed)
}
