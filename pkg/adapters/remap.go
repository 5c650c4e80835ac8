package adapters

import (
	"fmt"

	"github.com/vectorflow/vector/pkg/component"
	"github.com/vectorflow/vector/pkg/event"
)

func init() {
	component.RegisterTransform("remap", component.TransformSpec{
		Summary: "Assigns literal field values and optionally drops events matching an equality predicate.",
		New:     newRemap,
	})
}

// RemapConfig configures the remap transform. It deliberately implements a small
// fixed vocabulary (set/drop_if) rather than a full expression language — enough to
// exercise the Mapper contract's ordering and ack-splitting guarantees without
// pulling in an expression evaluator the rest of the engine doesn't need.
type RemapConfig struct {
	// Set assigns literal string values onto named log fields.
	Set map[string]string `yaml:"set"`
	// DropIf drops the event when any one named field, rendered as a string, equals
	// its configured value.
	DropIf map[string]string `yaml:"drop_if"`
}

// Remap is the reference per-event transform (spec §4.1's Mapper contract).
type Remap struct {
	id  string
	cfg RemapConfig
}

func newRemap(id string, raw component.Raw) (component.Transform, error) {
	cfg, err := decodeRaw[RemapConfig](raw)
	if err != nil {
		return nil, fmt.Errorf("adapters: remap %s: %w", id, err)
	}
	return &Remap{id: id, cfg: cfg}, nil
}

func (r *Remap) Descriptor() component.Descriptor {
	variants := event.NewVariantSet(event.VariantLog, event.VariantMetric, event.VariantTrace)
	return component.Descriptor{
		Type:        "remap",
		Kind:        component.KindTransform,
		Accepts:     variants,
		Produces:    variants,
		SupportsAck: true,
	}
}

// Apply returns zero output bodies to drop the event, matching one of the DropIf
// predicates; otherwise it returns exactly one body, the input's with Set fields
// applied for Log events, or an unmodified pass-through for Metric and Trace events.
func (r *Remap) Apply(e event.Event) ([]event.Body, error) {
	body, ok := e.Log()
	if !ok {
		return []event.Body{e.Body()}, nil
	}

	for field, want := range r.cfg.DropIf {
		got, present := body.Fields[field]
		if present && fmt.Sprint(got) == want {
			return nil, nil
		}
	}

	out := body.Clone()
	for field, value := range r.cfg.Set {
		if out.Fields == nil {
			out.Fields = make(map[string]any, len(r.cfg.Set))
		}
		out.Fields[field] = value
	}
	return []event.Body{out}, nil
}

var _ component.Mapper = (*Remap)(nil)
