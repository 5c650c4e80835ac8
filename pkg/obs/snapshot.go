package obs

import (
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vectorflow/vector/pkg/event"
)

// Snapshot gathers the current state of the default Prometheus registry and
// converts every series into an event.MetricBody, so the internal_metrics source
// adapter can feed the engine's own counters and histograms back through an
// ordinary topology edge (spec §6's "internal instrumentation is itself a
// source").
func Snapshot() ([]*event.MetricBody, error) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var bodies []*event.MetricBody
	for _, mf := range families {
		name := mf.GetName()
		kind := metricKindOf(mf.GetType())
		for _, m := range mf.GetMetric() {
			tags := labelsToTags(m.GetLabel())
			value, ok := metricValueOf(mf.GetType(), m)
			if !ok {
				continue
			}
			ts := now
			if m.GetTimestampMs() != 0 {
				ts = time.UnixMilli(m.GetTimestampMs())
			}
			bodies = append(bodies, &event.MetricBody{
				Name:      name,
				Timestamp: ts,
				Tags:      tags,
				Kind:      kind,
				Value:     value,
			})
		}
	}
	return bodies, nil
}

func metricKindOf(t dto.MetricType) event.MetricKind {
	switch t {
	case dto.MetricType_COUNTER:
		return event.MetricIncremental
	default:
		return event.MetricAbsolute
	}
}

func labelsToTags(labels []*dto.LabelPair) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	tags := make(map[string]string, len(labels))
	for _, l := range labels {
		tags[l.GetName()] = l.GetValue()
	}
	return tags
}

func metricValueOf(t dto.MetricType, m *dto.Metric) (event.MetricValue, bool) {
	switch t {
	case dto.MetricType_COUNTER:
		return event.CounterValue{Value: m.GetCounter().GetValue()}, true
	case dto.MetricType_GAUGE:
		return event.GaugeValue{Value: m.GetGauge().GetValue()}, true
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		buckets := make([]event.HistogramBucket, 0, len(h.GetBucket()))
		for _, b := range h.GetBucket() {
			buckets = append(buckets, event.HistogramBucket{
				UpperBound: b.GetUpperBound(),
				Count:      b.GetCumulativeCount(),
			})
		}
		return event.HistogramValue{
			Buckets: buckets,
			Count:   h.GetSampleCount(),
			Sum:     h.GetSampleSum(),
		}, true
	case dto.MetricType_SUMMARY:
		s := m.GetSummary()
		quantiles := make([]event.Quantile, 0, len(s.GetQuantile()))
		for _, q := range s.GetQuantile() {
			quantiles = append(quantiles, event.Quantile{
				Quantile: q.GetQuantile(),
				Value:    q.GetValue(),
			})
		}
		return event.SummaryValue{
			Quantiles: quantiles,
			Count:     s.GetSampleCount(),
			Sum:       s.GetSampleSum(),
		}, true
	default:
		return nil, false
	}
}
