package adapters

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vectorflow/vector/pkg/component"
)

// decodeRaw round-trips a component.Raw map through YAML into a typed config struct,
// so each adapter can declare its configuration as a normal Go struct with `yaml`
// tags instead of hand-walking the map.
func decodeRaw[T any](raw component.Raw) (T, error) {
	var cfg T
	buf, err := yaml.Marshal(raw)
	if err != nil {
		return cfg, fmt.Errorf("adapters: marshal config: %w", err)
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("adapters: decode config: %w", err)
	}
	return cfg, nil
}
