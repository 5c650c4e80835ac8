package buffer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vectorflow/vector/pkg/event"
)

// Memory is a fixed-capacity FIFO queue of events (spec §4.2). Send and Recv are
// O(1); capacity is bounded by the channel's buffer size.
//
// Close assumes the conventional shutdown order from spec §4.3: a buffer's producer
// is drained and stopped before the topology closes the buffer, so no Send races a
// Close. Close closes the underlying channel, so any events already enqueued are
// still delivered to Recv before it starts returning ErrClosed.
type Memory struct {
	ch     chan event.Event
	policy WhenFull
	closed atomic.Bool
	once   sync.Once
}

// NewMemory constructs a Memory buffer with the given capacity and full policy. A
// non-positive capacity is treated as 1.
func NewMemory(capacity int, policy WhenFull) *Memory {
	if capacity <= 0 {
		capacity = 1
	}
	return &Memory{ch: make(chan event.Event, capacity), policy: policy}
}

func (m *Memory) Send(ctx context.Context, e event.Event) error {
	if m.closed.Load() {
		return ErrClosed
	}
	switch m.policy {
	case PolicyDropNewest:
		select {
		case m.ch <- e:
			return nil
		default:
			return ErrDropped
		}
	default:
		select {
		case m.ch <- e:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Memory) Recv(ctx context.Context) (event.Event, error) {
	select {
	case e, ok := <-m.ch:
		if !ok {
			return event.Event{}, ErrClosed
		}
		return e, nil
	case <-ctx.Done():
		return event.Event{}, ctx.Err()
	}
}

func (m *Memory) Len() int {
	return len(m.ch)
}

func (m *Memory) Close() {
	m.once.Do(func() {
		m.closed.Store(true)
		close(m.ch)
	})
}

func (m *Memory) Closed() bool {
	return m.closed.Load()
}

var _ Buffer = (*Memory)(nil)
