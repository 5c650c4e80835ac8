/*
Package adapters provides the built-in reference source, transform, and sink
implementations: generator (synthetic log source), internal_metrics (emits the
engine's own operational counters as Metric events), remap (field assignment and
conditional drop transform), console (renders events as line-delimited JSON), and
blackhole (discards everything, settling every ack as delivered).

Each adapter registers itself with pkg/component's registry from an init() function,
keyed by the type name a topology config document names.
*/
package adapters
