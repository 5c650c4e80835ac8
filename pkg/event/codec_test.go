package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeLogRoundTrip(t *testing.T) {
	now := time.Now().UTC().Round(time.Nanosecond)
	in := New(&LogBody{
		Timestamp: now,
		Fields: map[string]any{
			"message": "hello",
			"count":   int64(42),
			"nested":  map[string]any{"ok": true, "ratio": 0.5},
			"list":    []any{"a", int64(1), nil},
		},
		Metadata: map[string]any{"source_type": "generator"},
	}, now, nil)

	payload, err := EncodePayload(in)
	require.NoError(t, err)

	out, err := DecodePayload(payload)
	require.NoError(t, err)

	assert.Equal(t, VariantLog, out.Variant())
	assert.True(t, out.Created().Equal(now))
	gotBody, ok := out.Log()
	require.True(t, ok)
	assert.Equal(t, "hello", gotBody.Fields["message"])
	assert.Equal(t, int64(42), gotBody.Fields["count"])
	assert.Equal(t, map[string]any{"ok": true, "ratio": 0.5}, gotBody.Fields["nested"])
	assert.Equal(t, []any{"a", int64(1), nil}, gotBody.Fields["list"])
	assert.Equal(t, "generator", gotBody.Metadata["source_type"])
}

func TestEncodeDecodeMetricRoundTrip(t *testing.T) {
	now := time.Now().UTC().Round(time.Nanosecond)
	cases := []MetricValue{
		CounterValue{Value: 12.5},
		GaugeValue{Value: -3},
		SetValue{Values: []string{"a", "b"}},
		HistogramValue{Buckets: []HistogramBucket{{UpperBound: 1, Count: 2}}, Count: 2, Sum: 1.5},
		SummaryValue{Quantiles: []Quantile{{Quantile: 0.5, Value: 3.2}}, Count: 10, Sum: 32},
		DistributionValue{Samples: []Sample{{Value: 1.1, Rate: 1}}, Statistic: DistributionHistogram},
	}

	for _, v := range cases {
		in := New(&MetricBody{
			Name:      "requests_total",
			Timestamp: now,
			Tags:      map[string]string{"env": "prod"},
			Kind:      MetricIncremental,
			Value:     v,
		}, now, nil)

		payload, err := EncodePayload(in)
		require.NoError(t, err)
		out, err := DecodePayload(payload)
		require.NoError(t, err)

		gotBody, ok := out.Metric()
		require.True(t, ok)
		assert.Equal(t, "requests_total", gotBody.Name)
		assert.Equal(t, "prod", gotBody.Tags["env"])
		assert.Equal(t, MetricIncremental, gotBody.Kind)
		assert.Equal(t, v, gotBody.Value)
	}
}

func TestEncodeDecodeTraceRoundTrip(t *testing.T) {
	now := time.Now().UTC().Round(time.Nanosecond)
	in := New(&TraceBody{Timestamp: now, Fields: map[string]any{"span_id": "abc"}}, now, nil)

	payload, err := EncodePayload(in)
	require.NoError(t, err)
	out, err := DecodePayload(payload)
	require.NoError(t, err)

	assert.Equal(t, VariantTrace, out.Variant())
	gotBody, ok := out.Trace()
	require.True(t, ok)
	assert.Equal(t, "abc", gotBody.Fields["span_id"])
}

func TestDecodeTruncatedRecordErrors(t *testing.T) {
	_, err := DecodePayload([]byte{0})
	assert.Error(t, err)
}
