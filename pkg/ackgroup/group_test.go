package ackgroup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorflow/vector/pkg/event"
)

func TestSingleShareDeliveredFiresCallback(t *testing.T) {
	var got *Result
	_, h := New(time.Time{}, func(r Result) { got = &r })

	h.Settle(event.OutcomeDelivered)

	require.NotNil(t, got)
	assert.Equal(t, event.OutcomeDelivered, got.Outcome)
	assert.False(t, got.TimedOut)
}

func TestFanOutWaitsForAllShares(t *testing.T) {
	fired := 0
	var got Result
	_, h := New(time.Time{}, func(r Result) {
		fired++
		got = r
	})

	h2 := h.Clone()
	h3 := h.Clone()

	h.Settle(event.OutcomeDelivered)
	assert.Equal(t, 0, fired)
	h2.Settle(event.OutcomeDelivered)
	assert.Equal(t, 0, fired)
	h3.Settle(event.OutcomeDelivered)

	require.Equal(t, 1, fired)
	assert.Equal(t, event.OutcomeDelivered, got.Outcome)
}

func TestOneRejectedShareDowngradesGroup(t *testing.T) {
	var got Result
	_, h := New(time.Time{}, func(r Result) { got = r })
	h2 := h.Clone()

	h.Settle(event.OutcomeDelivered)
	h2.Settle(event.OutcomeRejected)

	assert.Equal(t, event.OutcomeRejected, got.Outcome)
}

func TestDroppedLosesToRejected(t *testing.T) {
	var got Result
	_, h := New(time.Time{}, func(r Result) { got = r })
	h2 := h.Clone()

	h.Settle(event.OutcomeDropped)
	h2.Settle(event.OutcomeRejected)

	assert.Equal(t, event.OutcomeRejected, got.Outcome)
}

func TestSettleIsIdempotentPerHandle(t *testing.T) {
	fired := 0
	_, h := New(time.Time{}, func(Result) { fired++ })

	h.Settle(event.OutcomeDelivered)
	h.Settle(event.OutcomeDelivered) // duplicate settle on the same handle must not double-fire

	assert.Equal(t, 1, fired)
}

func TestSweeperExpiresWedgedGroup(t *testing.T) {
	sweeper := NewSweeper(time.Millisecond)
	var got *Result
	done := make(chan struct{})

	g := &Group{pending: 1, deadline: time.Now().Add(-time.Minute), onDone: func(r Result) {
		got = &r
		close(done)
	}}
	sweeper.track(g)

	sweeper.sweep(time.Now())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sweep callback")
	}

	require.NotNil(t, got)
	assert.Equal(t, event.OutcomeRejected, got.Outcome)
	assert.True(t, got.TimedOut)
	assert.Equal(t, 0, sweeper.Len())
}

func TestSweeperIgnoresGroupsWithoutDeadline(t *testing.T) {
	sweeper := NewSweeper(time.Millisecond)
	_, h := New(time.Time{}, func(Result) {})
	sweeper.track(&Group{pending: 1})

	sweeper.sweep(time.Now())
	assert.Equal(t, 1, sweeper.Len())
	h.Settle(event.OutcomeDelivered)
}
