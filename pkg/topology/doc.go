/*
Package topology builds, starts, and shuts down the directed acyclic graph of
components wired by buffers (spec §4.3). Build resolves wildcard inputs, checks
event-variant compatibility on every edge, instantiates adapters and buffers, and
reports every problem it finds rather than stopping at the first (spec §4.3:
"errors report all problems, not just the first").

Under reload, pkg/reload builds a new Topology value that reuses the unchanged nodes
and replaces its mutex-guarded reference to the live one (spec §9, "Topology mutation
under reload"). Rewire updates those reused nodes' downstream lists and Multiplexer
targets in place.
*/
package topology
