/*
Package reload owns the engine's live topology.Topology and applies configuration
changes to it without restarting the process (spec §4.5). A reload diffs the new
document against the running one by per-component content hash, validates the new
generation in isolation before touching anything live, rewires downstream references
onto the merged graph, starts what's added or changed alongside what's already
running, and only then drains and stops what's been removed or replaced. Any failure up to the rewire
step leaves the running topology untouched.
*/
package reload
