/*
Package component defines the three capability contracts every adapter implements
(spec §4.1) — Source, Mapper/TaskTransform, and Sink — plus the factory registry
adapters register themselves into and the per-component state machine the topology
drives (spec §4.3).

The registry mirrors the type-discriminator pattern used for pluggable adapter kinds
elsewhere in the ecosystem: each adapter package calls RegisterSource/RegisterTransform/
RegisterSink from an init() function, keyed by the string `type` a config document
names; pkg/topology resolves a component's config against this registry at build time
and reports every unknown type as a build error rather than failing on the first one.
*/
package component
