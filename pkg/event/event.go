package event

import "time"

// Variant identifies which of the three event shapes a Body carries.
type Variant uint8

const (
	VariantLog Variant = iota
	VariantMetric
	VariantTrace
)

func (v Variant) String() string {
	switch v {
	case VariantLog:
		return "log"
	case VariantMetric:
		return "metric"
	case VariantTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// VariantSet is a small bitset used by component descriptors to declare which
// variants they accept or produce (§4.1).
type VariantSet uint8

func NewVariantSet(variants ...Variant) VariantSet {
	var s VariantSet
	for _, v := range variants {
		s |= 1 << v
	}
	return s
}

func (s VariantSet) Has(v Variant) bool { return s&(1<<v) != 0 }

// Intersects reports whether two variant sets share at least one variant. The
// topology builder uses this to validate edge legality (spec §3, Topology invariants).
func (s VariantSet) Intersects(other VariantSet) bool { return s&other != 0 }

// Outcome is the terminal disposition of one ack share (§4.4).
type Outcome uint8

const (
	OutcomeDelivered Outcome = iota
	OutcomeRejected
	OutcomeDropped
)

// AckHandle is the narrow contract an Event carries alongside its body. Settling a
// handle resolves one share of the originating ack group; Clone produces a new handle
// representing one additional share, for fan-out. Both must be nil-safe: a fire-and-
// forget event's handle is nil, and nil.Settle()/nil.Clone() must not panic, so callers
// always go through the package-level helpers below rather than invoking directly.
type AckHandle interface {
	Settle(outcome Outcome)
	Clone() AckHandle
}

// Settle resolves h if non-nil. Safe to call on a nil handle.
func Settle(h AckHandle, outcome Outcome) {
	if h != nil {
		h.Settle(outcome)
	}
}

// CloneAck returns a new share of h, or nil if h is nil (synthesized events with no
// originating ack share stay nil forever, per spec §9).
func CloneAck(h AckHandle) AckHandle {
	if h == nil {
		return nil
	}
	return h.Clone()
}

// Body is the immutable payload carried by an Event. Exactly one of the three
// concrete types (*LogBody, *MetricBody, *TraceBody) satisfies it for a given Event.
type Body interface {
	variant() Variant
}

// Event is the unit of data flowing between components. Its Body is shared,
// immutable, copy-on-write state: cloning an Event for fan-out never touches the
// Body, only the ack handle.
type Event struct {
	body    Body
	created time.Time
	ack     AckHandle
}

// New wraps a body with a creation timestamp and an optional ack handle (nil for
// fire-and-forget sources, per spec §3 invariants).
func New(body Body, created time.Time, ack AckHandle) Event {
	return Event{body: body, created: created, ack: ack}
}

func (e Event) Variant() Variant   { return e.body.variant() }
func (e Event) Created() time.Time { return e.created }
func (e Event) Ack() AckHandle     { return e.ack }
func (e Event) Body() Body         { return e.body }

// Log returns the LogBody and true if this event is a Log.
func (e Event) Log() (*LogBody, bool) {
	b, ok := e.body.(*LogBody)
	return b, ok
}

// Metric returns the MetricBody and true if this event is a Metric.
func (e Event) Metric() (*MetricBody, bool) {
	b, ok := e.body.(*MetricBody)
	return b, ok
}

// Trace returns the TraceBody and true if this event is a Trace.
func (e Event) Trace() (*TraceBody, bool) {
	b, ok := e.body.(*TraceBody)
	return b, ok
}

// Clone produces a fan-out copy of e: the Body pointer is shared, and share carries
// the new ack handle (one more share of the original group, or nil for both if e was
// fire-and-forget). The engine's edge multiplexer calls this once per downstream
// consumer (§4.3).
func (e Event) Clone(share AckHandle) Event {
	return Event{body: e.body, created: e.created, ack: share}
}

// WithBody returns a new Event with a different Body but the same creation time and
// ack handle forwarded. Used by transforms that mutate a payload in place from the
// caller's perspective: the original Event.Body is untouched (it may still be held by
// another fan-out branch), and a fresh Body is produced instead (§3 invariants).
func (e Event) WithBody(body Body) Event {
	return Event{body: body, created: e.created, ack: e.ack}
}

// Synthesize creates a brand-new event with no originating ack share, for transforms
// that emit events not derived 1:1 from an input (timers, joins, enrichment lookups).
// Per spec §9's resolved open question, synthesized events can never affect upstream
// ack resolution.
func Synthesize(body Body, created time.Time) Event {
	return Event{body: body, created: created, ack: nil}
}
