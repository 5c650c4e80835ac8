// Package events is the engine's internal tap bus: a lightweight pub/sub broker that
// lets pkg/controlplane's "tap" operation stream a live sample of events flowing
// through a component without coupling the hot path to however many debug clients
// happen to be attached.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vectorflow/vector/pkg/event"
)

// TapEvent is a point-in-time sample handed to every attached tap subscriber: enough
// to render a human-readable line (component, variant, a short body preview) without
// forcing the bus to retain the full event.Event and its ack handle.
type TapEvent struct {
	ID        uuid.UUID
	Component string
	Variant   event.Variant
	Timestamp time.Time
	Preview   string
}

// Subscriber is a channel that receives tap samples for as long as a "tap" control
// request stays open.
type Subscriber chan *TapEvent

// Broker fans out tap samples published by any component to every attached
// subscriber, dropping samples for a subscriber whose buffer is full rather than
// blocking the publishing component (spec §6: tap is best-effort debug output, never
// a second acknowledged delivery path).
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *TapEvent
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewBroker creates a tap broker with a fixed internal publish buffer depth of 256.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *TapEvent, 256),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's distribution loop.
func (b *Broker) Start() {
	go b.run()
}

// Stop halts distribution and is safe to call more than once.
func (b *Broker) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
}

// Subscribe registers a new tap client and returns the channel it should range over.
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 64)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe detaches a tap client, for when a control-plane stream's context is
// cancelled.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[sub]; ok {
		delete(b.subscribers, sub)
		close(sub)
	}
}

// Publish hands a sample to the distribution loop. A component calling Publish never
// blocks on a slow tap client: if the broker's own buffer is full the sample is
// dropped rather than stalling the data path.
func (b *Broker) Publish(e *TapEvent) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case b.eventCh <- e:
	default:
	}
}

func (b *Broker) run() {
	for {
		select {
		case e := <-b.eventCh:
			b.broadcast(e)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(e *TapEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- e:
		default:
			// Subscriber's own buffer is full; drop rather than block the broker loop.
		}
	}
}

// SubscriberCount reports the number of attached tap clients, for status reporting.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
