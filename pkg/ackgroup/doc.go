/*
Package ackgroup implements the end-to-end acknowledgement accounting described in
spec §4.4: a source that owns an acknowledgeable upstream receipt creates a Group with
one share per emitted event; fan-out and transform emission multiply the share count;
each sink settles the shares it owns. When the share count reaches zero the group's
callback fires exactly once with the aggregated outcome.

Per the design notes (spec §9), ack state never rides in the data path — a Group's
Handle is a small struct carried alongside an event.Event, not inside its Body. The
accounting itself is an atomic counter plus a resolution tally, matching the "atomic
counter plus a resolution bitmap" sketch in spec §9: once every expected settlement has
arrived, the callback is invoked with Delivered iff every settlement was Delivered.

Groups also enforce the configurable maximum lifetime from spec §4.4: Sweeper runs
groups past their deadline through an implicit Rejected settlement of all unresolved
shares. No metric is incremented when a group expires this way.
*/
package ackgroup
