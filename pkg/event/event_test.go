package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingAck struct {
	settled  []Outcome
	clones   int
	settleFn func(Outcome)
}

func (r *recordingAck) Settle(o Outcome) {
	r.settled = append(r.settled, o)
	if r.settleFn != nil {
		r.settleFn(o)
	}
}

func (r *recordingAck) Clone() AckHandle {
	r.clones++
	return &recordingAck{}
}

func TestVariantSetIntersects(t *testing.T) {
	producer := NewVariantSet(VariantLog, VariantTrace)
	consumer := NewVariantSet(VariantMetric)
	assert.False(t, producer.Intersects(consumer))

	consumer = NewVariantSet(VariantTrace)
	assert.True(t, producer.Intersects(consumer))
}

func TestCloneSharesBodyNotAck(t *testing.T) {
	body := &LogBody{Timestamp: time.Now(), Fields: map[string]any{"a": 1}}
	ack := &recordingAck{}
	e := New(body, time.Now(), ack)

	share := CloneAck(e.Ack())
	clone := e.Clone(share)

	assert.Same(t, body, clone.Body())
	assert.Equal(t, 1, ack.clones)
	assert.NotSame(t, e.Ack(), clone.Ack())
}

func TestSettleNilHandleIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		Settle(nil, OutcomeDelivered)
	})
	assert.Nil(t, CloneAck(nil))
}

func TestSynthesizeHasNilAck(t *testing.T) {
	e := Synthesize(&LogBody{Timestamp: time.Now()}, time.Now())
	assert.Nil(t, e.Ack())
}

func TestWithBodyForwardsAck(t *testing.T) {
	ack := &recordingAck{}
	e := New(&LogBody{Fields: map[string]any{"a": 1}}, time.Now(), ack)
	mutated := e.WithBody(&LogBody{Fields: map[string]any{"a": 2}})
	assert.Same(t, ack, mutated.Ack())
	assert.NotSame(t, e.Body(), mutated.Body())
}
