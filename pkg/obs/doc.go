/*
Package obs is Vector's internal metrics registry and health surface: the exact
per-component counter and histogram set spec §6 requires (events_in, events_out,
events_dropped, send_errors, buffer_byte_size, ack_{delivered,rejected,dropped,
timeout}, processing_time), exposed over Prometheus's text exposition format, plus
HTTP health/readiness/liveness handlers, of which cmd/vector run serves the health
and readiness ones.

Snapshot converts the current state of the registry back into event.MetricBody
values, which pkg/adapters' internal_metrics source turns into ordinary Metric
events — feeding the engine's own operational data back through the same topology
it observes, the way the teacher's pkg/metrics exposed counters for Prometheus
scraping but with a reflection path added for in-topology consumption.
*/
package obs
