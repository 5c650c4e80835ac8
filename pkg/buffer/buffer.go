package buffer

import (
	"context"
	"errors"

	"github.com/vectorflow/vector/pkg/event"
)

// WhenFull selects what happens when Send would exceed a buffer's capacity.
type WhenFull uint8

const (
	// PolicyBlock suspends the caller until capacity is available.
	PolicyBlock WhenFull = iota
	// PolicyDropNewest discards the event being sent rather than suspending.
	PolicyDropNewest
)

// ErrClosed is returned by Send and Recv once a buffer has been closed.
var ErrClosed = errors.New("buffer: closed")

// ErrDropped is returned by Send when PolicyDropNewest discarded the event instead of
// enqueuing it. Callers should settle the event's ack handle as event.OutcomeDropped.
var ErrDropped = errors.New("buffer: dropped under full policy")

// Buffer is the channel contract shared by the memory and disk implementations
// (spec §4.2). Send and Recv may suspend the calling task; per spec §5 that
// suspension is the only place a buffer cooperatively yields.
type Buffer interface {
	// Send enqueues e, suspending if the buffer is full under PolicyBlock. Under
	// PolicyDropNewest a full buffer returns ErrDropped without blocking.
	Send(ctx context.Context, e event.Event) error
	// Recv dequeues the next event in FIFO order, suspending if the buffer is empty.
	Recv(ctx context.Context) (event.Event, error)
	// Len reports the number of events currently enqueued.
	Len() int
	// Close marks the buffer closed: Send always returns ErrClosed. On a Memory
	// buffer, Recv drains remaining events then returns ErrClosed; on a Disk buffer,
	// Recv returns ErrClosed at once and unread records stay in its segment files.
	Close()
	// Closed reports whether Close has been called.
	Closed() bool
}
