/*
Package runtime is the cooperative task executor hosting every topology component
(spec §5): one goroutine per adapter task, a shared shutdown broadcast, and the first
fatal error from any task propagated to every other task's context, grounded in
golang.org/x/sync/errgroup the way the rest of the pack's Go services supervise
worker pools. It implements topology.Runner so pkg/topology.Start can host its nodes
on a long-lived Runtime shared across reloads, instead of each reload spinning up an
independent errgroup.
*/
package runtime
