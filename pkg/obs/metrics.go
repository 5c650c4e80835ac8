package obs

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_events_in_total",
			Help: "Total number of events received by a component.",
		},
		[]string{"component"},
	)

	EventsOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_events_out_total",
			Help: "Total number of events emitted by a component.",
		},
		[]string{"component"},
	)

	EventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_events_dropped_total",
			Help: "Total number of events dropped by a component, by reason.",
		},
		[]string{"component", "reason"},
	)

	SendErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_send_errors_total",
			Help: "Total number of errors encountered sending to a downstream buffer or sink endpoint.",
		},
		[]string{"component"},
	)

	BufferByteSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vector_buffer_byte_size",
			Help: "Current size in bytes of a component's output buffer.",
		},
		[]string{"component"},
	)

	AckDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_ack_delivered_total",
			Help: "Total number of ack groups that resolved delivered.",
		},
		[]string{"component"},
	)

	AckRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_ack_rejected_total",
			Help: "Total number of ack groups that resolved rejected.",
		},
		[]string{"component"},
	)

	AckDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_ack_dropped_total",
			Help: "Total number of ack groups that resolved dropped.",
		},
		[]string{"component"},
	)

	AckTimeout = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_ack_timeout_total",
			Help: "Total number of ack groups force-resolved by the sweeper after exceeding their deadline.",
		},
		[]string{"component"},
	)

	ProcessingTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vector_processing_time_seconds",
			Help:    "Time a component spent processing a batch or single event.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"component"},
	)

	ReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_reloads_total",
			Help: "Total number of reload attempts by outcome.",
		},
		[]string{"outcome"},
	)

	ReloadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vector_reload_duration_seconds",
			Help:    "Time taken to compute and apply a reload plan.",
			Buckets: prometheus.DefBuckets,
		},
	)

	BufferCorruptRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_buffer_corrupt_records_total",
			Help: "Total number of disk buffer records skipped due to a checksum mismatch or broken framing.",
		},
		[]string{"buffer"},
	)
)

func init() {
	prometheus.MustRegister(
		EventsIn,
		EventsOut,
		EventsDropped,
		SendErrors,
		BufferByteSize,
		AckDelivered,
		AckRejected,
		AckDropped,
		AckTimeout,
		ProcessingTime,
		ReloadsTotal,
		ReloadDuration,
		BufferCorruptRecordsTotal,
	)
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations against a ProcessingTime-shaped histogram.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
