package reload

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vectorflow/vector/pkg/config"
	"github.com/vectorflow/vector/pkg/events"
	"github.com/vectorflow/vector/pkg/log"
	"github.com/vectorflow/vector/pkg/obs"
	"github.com/vectorflow/vector/pkg/topology"
)

// Plan is the result of diffing two generations of a configuration document by
// per-component content hash (spec §4.5 step 1).
type Plan struct {
	Generation uint64
	Added      []string
	Changed    []string
	Removed    []string
	Unchanged  []string
}

func (p Plan) String() string {
	return fmt.Sprintf("generation %d: +%d added, ~%d changed, -%d removed, %d unchanged",
		p.Generation, len(p.Added), len(p.Changed), len(p.Removed), len(p.Unchanged))
}

// AuditLog records the outcome of an applied or rolled-back reload plan, for anyone
// wanting a durable trail across restarts. pkg/reloadlog implements this against
// bbolt; Reloader treats it as optional and never fails a reload because the audit
// write failed.
type AuditLog interface {
	Append(plan Plan, applied bool, errMsg string) error
}

// Reloader serializes reloads against a single live Topology. Bootstrap establishes
// the first generation; every subsequent Apply diffs against whatever generation is
// currently live.
type Reloader struct {
	dataDir    string
	parent     context.Context
	runner     topology.Runner
	drain      time.Duration
	tap        *events.Broker
	audit      AuditLog
	generation atomic.Uint64

	mu     sync.Mutex
	live   *topology.Topology
	hashes map[string]string
}

// New returns a Reloader that builds disk buffers under dataDir, spawns component
// tasks on runner under parent, and allows each stopped node up to drain to reach a
// terminal state before its task is abandoned. tap and audit may both be nil.
func New(parent context.Context, runner topology.Runner, dataDir string, drain time.Duration, tap *events.Broker, audit AuditLog) *Reloader {
	return &Reloader{parent: parent, runner: runner, dataDir: dataDir, drain: drain, tap: tap, audit: audit}
}

// Bootstrap builds and starts the first generation from doc. It must be called
// exactly once, before any Apply.
func (r *Reloader) Bootstrap(doc *config.Document) error {
	t, err := topology.Build(doc, r.dataDir)
	if err != nil {
		return err
	}
	t.SetTap(r.tap)
	t.Start(r.parent, r.runner)

	r.mu.Lock()
	r.live = t
	r.hashes = hashAll(doc)
	r.mu.Unlock()
	return nil
}

// Current returns the presently-live topology, for status reporting and the control
// plane's graph dump.
func (r *Reloader) Current() *topology.Topology {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Plan diffs doc against the live generation without applying anything, as a preview
// of what Apply would add, change, remove, and keep.
func (r *Reloader) Plan(doc *config.Document) Plan {
	r.mu.Lock()
	oldHashes := r.hashes
	r.mu.Unlock()
	added, changed, removed, unchanged := diffHashes(oldHashes, hashAll(doc))
	return Plan{Generation: r.generation.Load() + 1, Added: added, Changed: changed, Removed: removed, Unchanged: unchanged}
}

// Apply reloads the engine onto doc (spec §4.5). The new document is first validated
// in full isolation; components whose content hash hasn't changed are carried over
// unmodified, buffered events and all, while added and changed components are built
// fresh and started alongside whatever is already running. Once the merged graph is
// wired, removed and superseded components are drained and stopped. Any error before
// the rewire step leaves the previously-live topology completely untouched.
func (r *Reloader) Apply(doc *config.Document) (Plan, error) {
	start := time.Now()
	gen := r.generation.Add(1)
	logger := log.WithReloadGeneration(gen)

	newHashes := hashAll(doc)
	r.mu.Lock()
	oldHashes := r.hashes
	r.mu.Unlock()
	added, changed, removed, unchanged := diffHashes(oldHashes, newHashes)
	plan := Plan{Generation: gen, Added: added, Changed: changed, Removed: removed, Unchanged: unchanged}

	// Components whose hash is unchanged keep their live buffer; the candidate never
	// opens a second one at the same path, which would race the survivor's own open
	// segment files.
	skipBuffer := make(map[string]bool, len(unchanged))
	for _, key := range unchanged {
		skipBuffer[key] = true
	}

	candidate, err := topology.BuildSurvivors(doc, r.dataDir, skipBuffer)
	if err != nil {
		obs.ReloadsTotal.WithLabelValues("rejected").Inc()
		rollbackErr := fmt.Errorf("reload: new topology failed validation, rolled back: %w", err)
		r.recordAudit(Plan{Generation: gen}, false, rollbackErr)
		return Plan{Generation: gen}, rollbackErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	logger.Info().Str("plan", plan.String()).Msg("applying reload")

	merged := make(map[string]*topology.Node, len(newHashes))
	for _, key := range unchanged {
		if n, ok := r.live.Node(key); ok {
			merged[key] = n
		}
	}
	for _, key := range append(append([]string{}, added...), changed...) {
		if n, ok := candidate.Node(key); ok {
			merged[key] = n
		}
	}

	rewired, err := topology.Rewire(r.dataDir, doc, merged, r.tap)
	if err != nil {
		obs.ReloadsTotal.WithLabelValues("rejected").Inc()
		rollbackErr := fmt.Errorf("reload: merged graph failed to wire, rolled back: %w", err)
		r.recordAudit(plan, false, rollbackErr)
		return plan, rollbackErr
	}

	// Start every added/changed node before stopping anything being replaced, so a
	// downstream producer's Multiplexer never points at a buffer nobody is reading.
	for _, key := range append(append([]string{}, added...), changed...) {
		if n, ok := rewired.Node(key); ok {
			rewired.StartNode(r.parent, r.runner, n)
		}
	}

	for _, key := range changed {
		if old, ok := r.live.Node(key); ok {
			rewired.StopNode(old, r.drain)
		}
	}
	for _, key := range removed {
		if old, ok := r.live.Node(key); ok {
			rewired.StopNode(old, r.drain)
		}
	}

	r.live = rewired
	r.hashes = newHashes

	obs.ReloadsTotal.WithLabelValues("applied").Inc()
	obs.ReloadDuration.Observe(time.Since(start).Seconds())
	logger.Info().Dur("elapsed", time.Since(start)).Msg("reload applied")
	r.recordAudit(plan, true, nil)
	return plan, nil
}

// recordAudit writes to the optional audit log and logs (but never propagates) any
// failure to do so — an audit-trail write is never allowed to affect the outcome of
// the reload it's recording.
func (r *Reloader) recordAudit(plan Plan, applied bool, applyErr error) {
	if r.audit == nil {
		return
	}
	msg := ""
	if applyErr != nil {
		msg = applyErr.Error()
	}
	if err := r.audit.Append(plan, applied, msg); err != nil {
		log.WithReloadGeneration(plan.Generation).Warn().Err(err).Msg("failed to persist reload audit record")
	}
}

func hashAll(doc *config.Document) map[string]string {
	hashes := make(map[string]string, len(doc.Sources)+len(doc.Transforms)+len(doc.Sinks))
	for _, section := range []map[string]config.ComponentSpec{doc.Sources, doc.Transforms, doc.Sinks} {
		for key, spec := range section {
			hashes[key] = config.ComponentHash(spec)
		}
	}
	return hashes
}

func diffHashes(old, next map[string]string) (added, changed, removed, unchanged []string) {
	for key, hash := range next {
		oldHash, existed := old[key]
		switch {
		case !existed:
			added = append(added, key)
		case oldHash != hash:
			changed = append(changed, key)
		default:
			unchanged = append(unchanged, key)
		}
	}
	for key := range old {
		if _, stillPresent := next[key]; !stillPresent {
			removed = append(removed, key)
		}
	}
	return added, changed, removed, unchanged
}
