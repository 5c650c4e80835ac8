package component

import (
	"fmt"
	"sort"
	"sync"
)

// Raw is an adapter's configuration as decoded from YAML, before the adapter's own
// factory unmarshals it into a typed struct.
type Raw map[string]any

// SourceSpec registers a source adapter's constructor under a type discriminator.
type SourceSpec struct {
	Summary string
	New     func(id string, raw Raw) (Source, error)
}

// TransformSpec registers a transform adapter's constructor under a type discriminator.
type TransformSpec struct {
	Summary string
	New     func(id string, raw Raw) (Transform, error)
}

// SinkSpec registers a sink adapter's constructor under a type discriminator.
type SinkSpec struct {
	Summary string
	New     func(id string, raw Raw) (Sink, error)
}

var (
	registryMu sync.RWMutex
	sources    = map[string]SourceSpec{}
	transforms = map[string]TransformSpec{}
	sinks      = map[string]SinkSpec{}
)

// RegisterSource adds a source constructor to the registry. Adapters call this from
// an init() function; registering the same type twice panics, since that can only
// happen from a programming error at build time.
func RegisterSource(typeName string, spec SourceSpec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := sources[typeName]; exists {
		panic(fmt.Sprintf("component: source type %q already registered", typeName))
	}
	sources[typeName] = spec
}

func RegisterTransform(typeName string, spec TransformSpec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := transforms[typeName]; exists {
		panic(fmt.Sprintf("component: transform type %q already registered", typeName))
	}
	transforms[typeName] = spec
}

func RegisterSink(typeName string, spec SinkSpec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := sinks[typeName]; exists {
		panic(fmt.Sprintf("component: sink type %q already registered", typeName))
	}
	sinks[typeName] = spec
}

// NewSource dispatches to the registered constructor for typeName.
func NewSource(typeName, id string, raw Raw) (Source, error) {
	registryMu.RLock()
	spec, ok := sources[typeName]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("component: unknown source type %q (known: %v)", typeName, SourceTypes())
	}
	return spec.New(id, raw)
}

func NewTransform(typeName, id string, raw Raw) (Transform, error) {
	registryMu.RLock()
	spec, ok := transforms[typeName]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("component: unknown transform type %q (known: %v)", typeName, TransformTypes())
	}
	return spec.New(id, raw)
}

func NewSink(typeName, id string, raw Raw) (Sink, error) {
	registryMu.RLock()
	spec, ok := sinks[typeName]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("component: unknown sink type %q (known: %v)", typeName, SinkTypes())
	}
	return spec.New(id, raw)
}

func SourceTypes() []string    { return sortedKeysSource(sources) }
func TransformTypes() []string { return sortedKeysTransform(transforms) }
func SinkTypes() []string      { return sortedKeysSink(sinks) }

func sortedKeysSource(m map[string]SourceSpec) []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysTransform(m map[string]TransformSpec) []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysSink(m map[string]SinkSpec) []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
