/*
Package buffer implements the two buffer kinds described in spec §4.2 behind one
channel-shaped contract: Send (may suspend), Recv (may suspend), Len, and Closed.

Memory buffers are a fixed-capacity ring of event.Event values; Disk buffers are a
segmented append-only log under a per-buffer directory, using pkg/event's codec for
the payload and framing each record with a length prefix and a CRC32C (Castagnoli)
checksum so a crash mid-write leaves a detectable, discardable tail record rather than
a corrupt stream.

Memory buffers implement WhenFull, the backpressure policy applied when Send would
exceed capacity: PolicyBlock suspends the caller until room is freed (propagating
backpressure upstream per spec §4.2 and §5), PolicyDropNewest discards the incoming
event instead of blocking and reports the drop to the caller so ack accounting can
settle the dropped share immediately. Disk buffers take an OverflowPolicy instead:
the blocking policy likewise suspends the caller, while OverflowDropOldestSegment
frees room by deleting the oldest segment that is neither being read nor written,
and reports ErrDropped for the incoming event only when no such segment exists.
*/
package buffer
