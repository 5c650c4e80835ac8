package ackgroup

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vectorflow/vector/pkg/event"
)

// Result is delivered to a Group's completion callback exactly once, when every
// share has been settled (or the group's deadline expired, whichever comes first).
type Result struct {
	// Outcome is event.OutcomeDelivered only if every settled share was Delivered.
	// Any Rejected or Dropped share downgrades the aggregate to that outcome, with
	// Rejected taking priority over Dropped (spec §4.4: a group is only "delivered"
	// end-to-end if nothing in its fan-out was rejected or dropped).
	Outcome event.Outcome
	// TimedOut is true if the sweeper force-settled the remaining shares because the
	// group outlived its configured maximum lifetime.
	TimedOut bool
}

// downgrade returns the more severe of two outcomes, where Rejected > Dropped > Delivered.
func downgrade(a, b event.Outcome) event.Outcome {
	rank := func(o event.Outcome) int {
		switch o {
		case event.OutcomeRejected:
			return 2
		case event.OutcomeDropped:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// Group accounts for the shares of a single upstream-acknowledgeable unit of work as
// it fans out across the topology. Create one with New per originating event, mint a
// Handle for each copy emitted, and Settle each Handle exactly once.
type Group struct {
	id       uuid.UUID
	mu       sync.Mutex
	pending  int64 // atomic: outstanding unsettled shares
	outcome  event.Outcome
	deadline time.Time
	done     bool
	onDone   func(Result)
}

// New creates a Group with a single initial share and registers it with the default
// Sweeper if deadline is non-zero, starting that Sweeper's loop if it is not already
// running. onDone fires exactly once, synchronously from whichever Settle or sweep
// call resolves the last outstanding share.
func New(deadline time.Time, onDone func(Result)) (*Group, event.AckHandle) {
	g := &Group{id: uuid.New(), pending: 1, deadline: deadline, onDone: onDone}
	if !deadline.IsZero() {
		defaultSweeper.track(g)
		go defaultSweeper.Run()
	}
	return g, &Handle{group: g}
}

// ID identifies this group for correlation in logs and the tap debug stream.
func (g *Group) ID() uuid.UUID { return g.id }

func (g *Group) settle(outcome event.Outcome) {
	g.mu.Lock()
	g.outcome = downgrade(g.outcome, outcome)
	g.mu.Unlock()
	g.resolveOne(false)
}

func (g *Group) resolveOne(timedOut bool) {
	remaining := atomic.AddInt64(&g.pending, -1)
	if remaining > 0 {
		return
	}
	if remaining < 0 {
		// Already resolved by the sweeper or a duplicate Settle; never double-fire.
		return
	}
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		return
	}
	g.done = true
	result := Result{Outcome: g.outcome, TimedOut: timedOut}
	cb := g.onDone
	g.mu.Unlock()
	if cb != nil {
		cb(result)
	}
}

func (g *Group) addShare() {
	atomic.AddInt64(&g.pending, 1)
}

// expireRemaining is invoked by the sweeper for groups past their deadline: every
// outstanding share is settled as Rejected and the completion callback fires with
// Result.TimedOut set, even if real settlements arrive for this group afterward.
func (g *Group) expireRemaining() {
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		return
	}
	g.done = true
	g.outcome = downgrade(g.outcome, event.OutcomeRejected)
	result := Result{Outcome: g.outcome, TimedOut: true}
	cb := g.onDone
	g.mu.Unlock()
	atomic.StoreInt64(&g.pending, -1)
	if cb != nil {
		cb(result)
	}
}

func (g *Group) expired(now time.Time) bool {
	return !g.deadline.IsZero() && now.After(g.deadline)
}

// Handle is an event.AckHandle bound to a share of a Group. Clone mints a new share
// (incrementing the group's outstanding count) before handing the clone its own
// Handle, matching the fan-out accounting spec §4.4 describes: the group only
// completes once every minted share has settled.
type Handle struct {
	group *Group
	once  sync.Once
}

var _ event.AckHandle = (*Handle)(nil)

func (h *Handle) Settle(outcome event.Outcome) {
	h.once.Do(func() {
		h.group.settle(outcome)
	})
}

func (h *Handle) Clone() event.AckHandle {
	h.group.addShare()
	return &Handle{group: h.group}
}
