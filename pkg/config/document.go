package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vectorflow/vector/pkg/buffer"
	"github.com/vectorflow/vector/pkg/component"
)

// BufferSpec configures the buffer sitting on a component's input or output edge
// (spec §6).
type BufferSpec struct {
	Type      string `yaml:"type"` // "memory" (default) or "disk"
	MaxEvents int    `yaml:"max_events"`
	MaxBytes  int64  `yaml:"max_bytes"`
	WhenFull  string `yaml:"when_full"` // "block" (default) or "drop_newest"
}

// Policy translates the document's string policy into buffer.WhenFull.
func (b *BufferSpec) Policy() buffer.WhenFull {
	if b != nil && b.WhenFull == "drop_newest" {
		return buffer.PolicyDropNewest
	}
	return buffer.PolicyBlock
}

// ComponentSpec is one entry in the sources/transforms/sinks map. Type, Buffer, and
// Inputs are the engine's own fields; everything else in the YAML object is opaque
// and handed to the adapter's constructor verbatim as Raw (spec §6: "the core treats
// the non-engine fields as opaque data").
type ComponentSpec struct {
	Type   string
	Buffer *BufferSpec
	Inputs []string
	Raw    component.Raw
}

func (c *ComponentSpec) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if t, ok := raw["type"]; ok {
		c.Type, _ = t.(string)
		delete(raw, "type")
	}
	if in, ok := raw["inputs"]; ok {
		if list, ok := in.([]any); ok {
			for _, v := range list {
				if s, ok := v.(string); ok {
					c.Inputs = append(c.Inputs, s)
				}
			}
		}
		delete(raw, "inputs")
	}
	if b, ok := raw["buffer"]; ok {
		delete(raw, "buffer")
		buf, err := yaml.Marshal(b)
		if err != nil {
			return fmt.Errorf("config: component buffer: %w", err)
		}
		var spec BufferSpec
		if err := yaml.Unmarshal(buf, &spec); err != nil {
			return fmt.Errorf("config: component buffer: %w", err)
		}
		c.Buffer = &spec
	}

	c.Raw = component.Raw(raw)
	return nil
}

// Document is the engine's view of a parsed configuration (spec §6).
type Document struct {
	Sources    map[string]ComponentSpec `yaml:"sources"`
	Transforms map[string]ComponentSpec `yaml:"transforms"`
	Sinks      map[string]ComponentSpec `yaml:"sinks"`
}

// Load reads and parses a configuration document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &doc, nil
}

// Hash returns a content hash of the whole document. The Reloader does not use it;
// reload diffing compares per-component ComponentHash values instead (spec §4.5). It
// round-trips through a canonical re-marshal so field order in the source file never
// affects the result.
func (d *Document) Hash() string {
	h := sha256.New()
	for _, section := range []map[string]ComponentSpec{d.Sources, d.Transforms, d.Sinks} {
		keys := make([]string, 0, len(section))
		for k := range section {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.Write([]byte(k))
			buf, _ := yaml.Marshal(canonicalSpec(section[k]))
			h.Write(buf)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalSpec re-renders a ComponentSpec's Raw map with sorted keys so Hash is
// stable regardless of the source document's own key order.
func canonicalSpec(c ComponentSpec) map[string]any {
	out := map[string]any{"type": c.Type, "inputs": c.Inputs}
	if c.Buffer != nil {
		out["buffer"] = *c.Buffer
	}
	keys := make([]string, 0, len(c.Raw))
	for k := range c.Raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = c.Raw[k]
	}
	return out
}

// ComponentHash returns the content hash of a single component's spec, used by
// reload's per-component diff (spec §4.5 step 1: "changed" by content hash of
// adapter config + input list).
func ComponentHash(c ComponentSpec) string {
	buf, _ := yaml.Marshal(canonicalSpec(c))
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}
