package event

import "time"

// MetricKind distinguishes whether a metric value replaces or accumulates onto the
// previous value observed for the same series (spec §3).
type MetricKind uint8

const (
	MetricAbsolute MetricKind = iota
	MetricIncremental
)

// MetricValue is the sealed set of value shapes a MetricBody can carry. A transform
// that changes a metric's shape must produce a new Event (spec §3 invariant): the
// kind and shape of a MetricBody, once constructed, are never mutated in place.
type MetricValue interface {
	isMetricValue()
}

type CounterValue struct{ Value float64 }

func (CounterValue) isMetricValue() {}

type GaugeValue struct{ Value float64 }

func (GaugeValue) isMetricValue() {}

type SetValue struct{ Values []string }

func (SetValue) isMetricValue() {}

type HistogramBucket struct {
	UpperBound float64
	Count      uint64
}

type HistogramValue struct {
	Buckets []HistogramBucket
	Count   uint64
	Sum     float64
}

func (HistogramValue) isMetricValue() {}

type Quantile struct {
	Quantile float64
	Value    float64
}

type SummaryValue struct {
	Quantiles []Quantile
	Count     uint64
	Sum       float64
}

func (SummaryValue) isMetricValue() {}

// DistributionStatistic controls how a distribution's raw samples should be
// aggregated downstream (histogram buckets vs. summary quantiles).
type DistributionStatistic uint8

const (
	DistributionHistogram DistributionStatistic = iota
	DistributionSummary
)

type Sample struct {
	Value float64
	Rate  uint32 // number of original observations this sample represents
}

type DistributionValue struct {
	Samples   []Sample
	Statistic DistributionStatistic
}

func (DistributionValue) isMetricValue() {}

// MetricBody is the payload for Metric events (spec §3).
type MetricBody struct {
	Name      string
	Timestamp time.Time
	Tags      map[string]string
	Kind      MetricKind
	Value     MetricValue
}

func (*MetricBody) variant() Variant { return VariantMetric }

func (b *MetricBody) Clone() *MetricBody {
	var tags map[string]string
	if b.Tags != nil {
		tags = make(map[string]string, len(b.Tags))
		for k, v := range b.Tags {
			tags[k] = v
		}
	}
	return &MetricBody{
		Name:      b.Name,
		Timestamp: b.Timestamp,
		Tags:      tags,
		Kind:      b.Kind,
		Value:     b.Value,
	}
}
