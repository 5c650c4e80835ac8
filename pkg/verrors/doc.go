/*
Package verrors defines the error taxonomy the rest of the engine classifies every
failure into (spec §7): config/build errors, adapter transient errors, adapter
permanent errors, buffer errors, and ack timeout/rejection. Classifying an error as a
Kind, rather than inventing a type hierarchy per package, lets cmd/vector map any
error back to an exit code and lets the topology decide whether a failure is routine
(retried, counted) or fatal (Failed, process shutdown) without type-switching on
concrete error types from a dozen packages.
*/
package verrors
