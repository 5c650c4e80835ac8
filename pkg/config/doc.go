/*
Package config loads the document the core treats as opaque (spec §6): a `sources`,
`transforms`, `sinks` map of component key to `{type, buffer, inputs, ...}`, parsed
with gopkg.in/yaml.v3 the way the teacher's cmd/warren/apply.go parses cluster
manifests. pkg/topology.Build consumes a *Document directly; pkg/reload diffs
documents by ComponentHash, one hash per component key.
*/
package config
