package adapters

import (
	"bufio"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/event"
)

type settleRecorder struct{ outcome event.Outcome }

func (s *settleRecorder) Settle(o event.Outcome) { s.outcome = o }
func (s *settleRecorder) Clone() event.AckHandle { return &settleRecorder{} }

func TestConsoleWritesLineDelimitedJSON(t *testing.T) {
	var buf bytes.Buffer
	c := &Console{id: "console.test", w: bufio.NewWriter(&buf)}

	in := buffer.NewMemory(1, buffer.PolicyBlock)
	ack := &settleRecorder{}
	require.NoError(t, in.Send(context.Background(), event.New(&event.LogBody{
		Fields: map[string]any{"message": "hello"},
	}, time.Now(), ack)))
	in.Close()

	require.NoError(t, c.Run(context.Background(), in))
	assert.Contains(t, buf.String(), "hello")
	assert.Equal(t, event.OutcomeDelivered, ack.outcome)
}
