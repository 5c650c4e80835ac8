package topology

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/component"
	"github.com/vectorflow/vector/pkg/config"
	"github.com/vectorflow/vector/pkg/events"
	"github.com/vectorflow/vector/pkg/verrors"
)

// Topology is a built, validated graph of components (spec §4.3). Each Node owns its
// own cancel function (see node.go), so Start/Shutdown and pkg/reload can drive
// individual components independently of their tier-mates.
type Topology struct {
	DataDir    string
	Tap        *events.Broker
	nodes      map[string]*Node
	sources    []*Node
	transforms []*Node
	sinks      []*Node
}

// Node looks up a node by key, for status reporting and the control plane.
func (t *Topology) Node(key string) (*Node, bool) { n, ok := t.nodes[key]; return n, ok }

// SetTap attaches (or detaches, with nil) the tap broker every producer in the
// topology publishes a sample to, for the control plane's "tap" operation (spec §6).
func (t *Topology) SetTap(tap *events.Broker) {
	t.Tap = tap
	for _, n := range append(append([]*Node{}, t.sources...), t.transforms...) {
		if n.Output != nil {
			n.Output.SetTap(tap, n.Key)
		}
	}
}

// Nodes returns every node in the topology, sources first, then transforms, then
// sinks, each group sorted by key — a stable order for graph dumps and tests.
func (t *Topology) Nodes() []*Node {
	out := make([]*Node, 0, len(t.nodes))
	out = append(out, t.sources...)
	out = append(out, t.transforms...)
	out = append(out, t.sinks...)
	return out
}

// Build resolves wildcards, type-checks edges, and instantiates adapters and buffers
// for every component in doc (spec §4.3). All problems are accumulated and returned
// together; dataDir roots any disk buffers a component declares.
func Build(doc *config.Document, dataDir string) (*Topology, error) {
	return build(doc, dataDir, nil)
}

// BuildSurvivors is Build, except it never opens a disk buffer for a key present in
// skipBuffer — used by pkg/reload to validate a candidate document without a second
// *buffer.Disk racing the still-running survivor's own open segment files for any
// component whose content hash is unchanged (spec §5's single-owner invariant for a
// disk buffer's directory). A skipped node's Input is a throwaway in-memory
// placeholder; it is only ever used to type-check wiring within this candidate and is
// discarded once pkg/reload merges in the real survivor node from the live topology.
func BuildSurvivors(doc *config.Document, dataDir string, skipBuffer map[string]bool) (*Topology, error) {
	return build(doc, dataDir, skipBuffer)
}

func build(doc *config.Document, dataDir string, skipBuffer map[string]bool) (*Topology, error) {
	var errs verrors.MultiError
	t := &Topology{DataDir: dataDir, nodes: map[string]*Node{}}

	addNode := func(key string, n *Node) {
		if _, exists := t.nodes[key]; exists {
			errs.Add(verrors.New(verrors.KindConfig, key, fmt.Errorf("duplicate component key %q", key)))
			return
		}
		t.nodes[key] = n
	}

	for _, key := range sortedKeys(doc.Sources) {
		spec := doc.Sources[key]
		src, err := component.NewSource(spec.Type, key, spec.Raw)
		if err != nil {
			errs.Add(verrors.New(verrors.KindConfig, key, err))
			continue
		}
		n := newNode(key, src.Descriptor(), spec)
		n.source = src
		addNode(key, n)
		t.sources = append(t.sources, n)
	}

	for _, key := range sortedKeys(doc.Transforms) {
		spec := doc.Transforms[key]
		tr, err := component.NewTransform(spec.Type, key, spec.Raw)
		if err != nil {
			errs.Add(verrors.New(verrors.KindConfig, key, err))
			continue
		}
		n := newNode(key, tr.Descriptor(), spec)
		n.transform = tr
		addNode(key, n)
		t.transforms = append(t.transforms, n)
	}

	for _, key := range sortedKeys(doc.Sinks) {
		spec := doc.Sinks[key]
		sk, err := component.NewSink(spec.Type, key, spec.Raw)
		if err != nil {
			errs.Add(verrors.New(verrors.KindConfig, key, err))
			continue
		}
		n := newNode(key, sk.Descriptor(), spec)
		n.sink = sk
		addNode(key, n)
		t.sinks = append(t.sinks, n)
	}

	if !errs.Empty() {
		return nil, &errs
	}

	// Every consumer (transform, sink) gets its own input buffer before any edge is
	// wired, so producers can be multiplexed straight into it.
	for _, n := range append(append([]*Node{}, t.transforms...), t.sinks...) {
		if skipBuffer[n.Key] {
			n.Input = buffer.NewMemory(1, buffer.PolicyBlock)
			continue
		}
		buf, err := newBuffer(n.Key, n.Spec.Buffer, dataDir)
		if err != nil {
			errs.Add(verrors.New(verrors.KindConfig, n.Key, fmt.Errorf("buffer: %w", err)))
			continue
		}
		n.Input = buf
	}
	if !errs.Empty() {
		return nil, &errs
	}

	if err := wire(t, doc); err != nil {
		return nil, err
	}
	return t, nil
}

// Rewire rebuilds edges and multiplexer targets for an already-instantiated node set
// against doc, without touching adapters or buffers. pkg/reload uses this to merge
// survivor nodes (kept across a reload, buffers and all) with freshly built
// added/changed nodes into one consistent graph (spec §4.5 step 4: "atomically
// rewire downstream references").
func Rewire(dataDir string, doc *config.Document, nodes map[string]*Node, tap *events.Broker) (*Topology, error) {
	t := &Topology{DataDir: dataDir, nodes: nodes, Tap: tap}
	for _, key := range sortedKeys(doc.Sources) {
		if n, ok := nodes[key]; ok {
			n.downstream = nil
			t.sources = append(t.sources, n)
		}
	}
	for _, key := range sortedKeys(doc.Transforms) {
		if n, ok := nodes[key]; ok {
			n.downstream = nil
			t.transforms = append(t.transforms, n)
		}
	}
	for _, key := range sortedKeys(doc.Sinks) {
		if n, ok := nodes[key]; ok {
			n.downstream = nil
			t.sinks = append(t.sinks, n)
		}
	}
	if err := wire(t, doc); err != nil {
		return nil, err
	}
	return t, nil
}

// wire resolves every consumer's inputs against t's already-instantiated nodes,
// detects cycles, and assigns each producer's Multiplexer over its resolved
// downstream set. Shared by Build (fresh nodes) and Rewire (merged survivor +
// freshly built nodes).
func wire(t *Topology, doc *config.Document) error {
	var errs verrors.MultiError
	producers := append(append([]*Node{}, t.sources...), t.transforms...)

	resolveInputs := func(n *Node) []*Node {
		var resolved []*Node
		seen := map[string]bool{}
		for _, pattern := range n.Spec.Inputs {
			matches := matchProducers(producers, pattern, n.Key)
			if len(matches) == 0 {
				errs.Add(verrors.New(verrors.KindConfig, n.Key, fmt.Errorf("input %q matches no component", pattern)))
				continue
			}
			for _, p := range matches {
				if seen[p.Key] {
					continue
				}
				seen[p.Key] = true
				if !p.Descriptor.Produces.Intersects(n.Descriptor.Accepts) {
					errs.Add(verrors.New(verrors.KindConfig, n.Key,
						fmt.Errorf("input %q produces no event variant %q accepts", p.Key, n.Key)))
					continue
				}
				resolved = append(resolved, p)
			}
		}
		return resolved
	}

	for _, n := range t.transforms {
		ups := resolveInputs(n)
		if len(ups) == 0 {
			errs.Add(verrors.New(verrors.KindConfig, n.Key, fmt.Errorf("transform %q has no upstream", n.Key)))
		}
		for _, p := range ups {
			p.downstream = append(p.downstream, n)
		}
	}
	for _, n := range t.sinks {
		ups := resolveInputs(n)
		if len(ups) == 0 {
			errs.Add(verrors.New(verrors.KindConfig, n.Key, fmt.Errorf("sink %q has no upstream", n.Key)))
		}
		for _, p := range ups {
			p.downstream = append(p.downstream, n)
		}
	}

	if cyclePath := detectCycle(t.transforms); cyclePath != "" {
		errs.Add(verrors.New(verrors.KindConfig, "", fmt.Errorf("cycle detected: %s", cyclePath)))
	}

	if !errs.Empty() {
		return &errs
	}

	for _, n := range producers {
		targets := make([]buffer.Buffer, len(n.downstream))
		for i, d := range n.downstream {
			targets[i] = d.Input
		}
		if n.Output == nil {
			n.Output = newMultiplexer(targets)
		} else {
			n.Output.SetTargets(targets)
		}
		n.Output.SetTap(t.Tap, n.Key)
	}
	return nil
}

func newBuffer(key string, spec *config.BufferSpec, dataDir string) (buffer.Buffer, error) {
	maxEvents := 1000
	policy := buffer.PolicyBlock
	if spec != nil {
		if spec.MaxEvents > 0 {
			maxEvents = spec.MaxEvents
		}
		policy = spec.Policy()
	}
	if spec != nil && spec.Type == "disk" {
		cfg := buffer.DiskConfig{Dir: filepath.Join(dataDir, "buffers", key)}
		if spec.MaxBytes > 0 {
			cfg.MaxTotalBytes = spec.MaxBytes
		}
		if policy == buffer.PolicyDropNewest {
			cfg.Overflow = buffer.OverflowDropOldestSegment
		}
		return buffer.OpenDisk(cfg)
	}
	return buffer.NewMemory(maxEvents, policy), nil
}

// matchProducers expands a literal key or a "prefix.*" / "*" wildcard against the
// producer set, excluding self (spec §4.3: "wildcards expanded at build time").
func matchProducers(producers []*Node, pattern, self string) []*Node {
	if pattern == "*" {
		var out []*Node
		for _, p := range producers {
			if p.Key != self {
				out = append(out, p)
			}
		}
		return out
	}
	if strings.HasSuffix(pattern, ".*") {
		prefix := strings.TrimSuffix(pattern, "*")
		var out []*Node
		for _, p := range producers {
			if p.Key != self && strings.HasPrefix(p.Key, prefix) {
				out = append(out, p)
			}
		}
		return out
	}
	for _, p := range producers {
		if p.Key == pattern {
			return []*Node{p}
		}
	}
	return nil
}

// detectCycle runs a DFS over the transform subgraph's dependency edges (consumer ->
// producer, restricted to other transforms) and returns a description of the first
// cycle found, or "" if the graph is acyclic.
func detectCycle(transforms []*Node) string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(transforms))
	byKey := make(map[string]*Node, len(transforms))
	for _, n := range transforms {
		byKey[n.Key] = n
	}

	var path []string
	var visit func(n *Node) string
	visit = func(n *Node) string {
		color[n.Key] = gray
		path = append(path, n.Key)
		for _, up := range n.Spec.Inputs {
			upNode, ok := byKey[up]
			if !ok {
				continue
			}
			switch color[upNode.Key] {
			case gray:
				return strings.Join(append(path, upNode.Key), " -> ")
			case white:
				if cyc := visit(upNode); cyc != "" {
					return cyc
				}
			}
		}
		path = path[:len(path)-1]
		color[n.Key] = black
		return ""
	}

	for _, n := range transforms {
		if color[n.Key] == white {
			if cyc := visit(n); cyc != "" {
				return cyc
			}
		}
	}
	return ""
}

func sortedKeys(m map[string]config.ComponentSpec) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
