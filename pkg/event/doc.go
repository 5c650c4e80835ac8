/*
Package event defines the typed value that flows through every buffer, topology edge,
and adapter in the engine.

An Event is a tagged variant over three shapes — Log, Metric, and Trace — carried
behind a single immutable Body. Fan-out never deep-copies a Body: a clone shares the
same Body pointer and gets its own AckHandle share, so N downstream copies of one
source event cost N small struct allocations, not N field-by-field copies.

# Acknowledgement handles

Event never imports the ack-accounting package. Instead it depends on the narrow
AckHandle interface (Settle, Clone) so that pkg/ackgroup can implement it without
pkg/event depending back on pkg/ackgroup. Sources that do not support acknowledgement
leave the handle nil; the package-level Settle and CloneAck helpers treat a nil
handle as a no-op.

# Serialization

codec.go implements the bit-exact binary payload format disk buffers persist records
in: big-endian integers, IEEE-754 floats, a leading variant tag. The length prefix
and CRC32C checksum that frame each record belong to pkg/buffer. Encode/Decode
round-trip is the identity law the disk buffer tests rely on.
*/
package event
