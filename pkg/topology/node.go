package topology

import (
	"context"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/component"
	"github.com/vectorflow/vector/pkg/config"
)

// Node is one instantiated adapter in a built topology: its descriptor, its
// concrete adapter value (exactly one of source/transform/sink is set), its state
// machine, its input buffer (nil for sources), and the multiplexer fanning its
// output to every downstream consumer's input buffer (nil for sinks).
type Node struct {
	Key        string
	Descriptor component.Descriptor
	Spec       config.ComponentSpec

	source    component.Source
	transform component.Transform
	sink      component.Sink

	Input  buffer.Buffer // the buffer this node reads from; nil for sources
	Output *Multiplexer  // fans this node's produced events out; nil for sinks

	downstream []*Node // resolved consumer nodes, populated during Build
	sm         *component.StateMachine

	// cancel stops this node's own task independent of any other node — what lets
	// pkg/reload stop or start a single component during a hot reload instead of an
	// entire tier (spec §4.5 step 4/5).
	cancel context.CancelFunc
}

func newNode(key string, desc component.Descriptor, spec config.ComponentSpec) *Node {
	return &Node{Key: key, Descriptor: desc, Spec: spec, sm: component.NewStateMachine()}
}

// State reports the node's current lifecycle state.
func (n *Node) State() component.State { return n.sm.State() }

// Source returns the node's adapter and true if it is a source.
func (n *Node) Source() (component.Source, bool) { return n.source, n.source != nil }

// TransformAdapter returns the node's adapter and true if it is a transform.
func (n *Node) TransformAdapter() (component.Transform, bool) {
	return n.transform, n.transform != nil
}

// Sink returns the node's adapter and true if it is a sink.
func (n *Node) Sink() (component.Sink, bool) { return n.sink, n.sink != nil }

// Downstream returns the consumer nodes this node's Multiplexer fans out to, for the
// CLI's "graph" dump.
func (n *Node) Downstream() []*Node { return n.downstream }

// isProducer reports whether this node can have downstream consumers wired to it.
func (n *Node) isProducer() bool { return n.source != nil || n.transform != nil }

// isConsumer reports whether this node declares Inputs and owns an input buffer.
func (n *Node) isConsumer() bool { return n.transform != nil || n.sink != nil }
