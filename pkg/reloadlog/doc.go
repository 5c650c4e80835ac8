/*
Package reloadlog persists a durable audit trail of reload plans (spec §4.5): the
diff that was computed, whether it was applied or rolled back, and when. It is the one
piece of control-plane state worth surviving a process restart beyond the disk
buffers themselves, backed by go.etcd.io/bbolt the way the teacher persists its own
cluster state.
*/
package reloadlog
