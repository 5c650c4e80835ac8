package event

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// This file implements the canonical binary payload encoding disk buffers persist
// (spec §4.2): variant tag plus fields, length-prefixed strings, big-endian integers,
// IEEE-754 floats. Record framing (length prefix, CRC32C, segment headers) is owned by
// pkg/buffer, which treats EncodePayload's output as an opaque byte string.
//
// Ack handles are never part of the encoding: they are in-process bookkeeping tied to
// a live source callback and do not survive a crash (spec §4.4 lifecycle). Events
// decoded off disk always come back with a nil ack handle.

type valueTag byte

const (
	tagNil valueTag = iota
	tagBool
	tagInt
	tagFloat
	tagString
	tagArray
	tagMap
	tagTime
)

// EncodePayload serializes an Event's body and creation time into the canonical
// binary format. The ack handle, if any, is dropped.
func EncodePayload(e Event) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(e.Variant()))
	writeTime(&buf, e.created)

	switch e.Variant() {
	case VariantLog:
		b, _ := e.Log()
		if err := writeLogLike(&buf, b.Timestamp, b.Fields, b.Metadata); err != nil {
			return nil, err
		}
	case VariantTrace:
		b, _ := e.Trace()
		if err := writeLogLike(&buf, b.Timestamp, b.Fields, b.Metadata); err != nil {
			return nil, err
		}
	case VariantMetric:
		b, _ := e.Metric()
		if err := writeMetric(&buf, b); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("event: unknown variant %d", e.Variant())
	}
	return buf.Bytes(), nil
}

// DecodePayload is the inverse of EncodePayload.
func DecodePayload(data []byte) (Event, error) {
	r := bytes.NewReader(data)
	tagByte, err := r.ReadByte()
	if err != nil {
		return Event{}, fmt.Errorf("event: truncated record: %w", err)
	}
	variant := Variant(tagByte)

	created, err := readTime(r)
	if err != nil {
		return Event{}, fmt.Errorf("event: bad creation time: %w", err)
	}

	switch variant {
	case VariantLog:
		ts, fields, meta, err := readLogLike(r)
		if err != nil {
			return Event{}, err
		}
		return New(&LogBody{Timestamp: ts, Fields: fields, Metadata: meta}, created, nil), nil
	case VariantTrace:
		ts, fields, meta, err := readLogLike(r)
		if err != nil {
			return Event{}, err
		}
		return New(&TraceBody{Timestamp: ts, Fields: fields, Metadata: meta}, created, nil), nil
	case VariantMetric:
		body, err := readMetric(r)
		if err != nil {
			return Event{}, err
		}
		return New(body, created, nil), nil
	default:
		return Event{}, fmt.Errorf("event: unknown variant tag %d", tagByte)
	}
}

func writeLogLike(buf *bytes.Buffer, ts time.Time, fields, meta map[string]any) error {
	writeTime(buf, ts)
	if err := writeAny(buf, fields); err != nil {
		return err
	}
	return writeAny(buf, meta)
}

func readLogLike(r *bytes.Reader) (time.Time, map[string]any, map[string]any, error) {
	ts, err := readTime(r)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	fieldsAny, err := readAny(r)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	metaAny, err := readAny(r)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	fields, _ := fieldsAny.(map[string]any)
	meta, _ := metaAny.(map[string]any)
	return ts, fields, meta, nil
}

func writeMetric(buf *bytes.Buffer, m *MetricBody) error {
	writeString(buf, m.Name)
	writeTime(buf, m.Timestamp)
	writeU32(buf, uint32(len(m.Tags)))
	for k, v := range m.Tags {
		writeString(buf, k)
		writeString(buf, v)
	}
	buf.WriteByte(byte(m.Kind))

	switch v := m.Value.(type) {
	case CounterValue:
		buf.WriteByte(0)
		writeFloat(buf, v.Value)
	case GaugeValue:
		buf.WriteByte(1)
		writeFloat(buf, v.Value)
	case SetValue:
		buf.WriteByte(2)
		writeU32(buf, uint32(len(v.Values)))
		for _, s := range v.Values {
			writeString(buf, s)
		}
	case HistogramValue:
		buf.WriteByte(3)
		writeU32(buf, uint32(len(v.Buckets)))
		for _, b := range v.Buckets {
			writeFloat(buf, b.UpperBound)
			writeU64(buf, b.Count)
		}
		writeU64(buf, v.Count)
		writeFloat(buf, v.Sum)
	case SummaryValue:
		buf.WriteByte(4)
		writeU32(buf, uint32(len(v.Quantiles)))
		for _, q := range v.Quantiles {
			writeFloat(buf, q.Quantile)
			writeFloat(buf, q.Value)
		}
		writeU64(buf, v.Count)
		writeFloat(buf, v.Sum)
	case DistributionValue:
		buf.WriteByte(5)
		writeU32(buf, uint32(len(v.Samples)))
		for _, s := range v.Samples {
			writeFloat(buf, s.Value)
			writeU32(buf, s.Rate)
		}
		buf.WriteByte(byte(v.Statistic))
	default:
		return fmt.Errorf("event: unknown metric value type %T", m.Value)
	}
	return nil
}

func readMetric(r *bytes.Reader) (*MetricBody, error) {
	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	ts, err := readTime(r)
	if err != nil {
		return nil, err
	}
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	tags := make(map[string]string, n)
	for i := uint32(0); i < n; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, err
		}
		v, err := readString(r)
		if err != nil {
			return nil, err
		}
		tags[k] = v
	}
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	valueTagByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	var value MetricValue
	switch valueTagByte {
	case 0:
		f, err := readFloat(r)
		if err != nil {
			return nil, err
		}
		value = CounterValue{Value: f}
	case 1:
		f, err := readFloat(r)
		if err != nil {
			return nil, err
		}
		value = GaugeValue{Value: f}
	case 2:
		count, err := readU32(r)
		if err != nil {
			return nil, err
		}
		values := make([]string, count)
		for i := range values {
			values[i], err = readString(r)
			if err != nil {
				return nil, err
			}
		}
		value = SetValue{Values: values}
	case 3:
		count, err := readU32(r)
		if err != nil {
			return nil, err
		}
		buckets := make([]HistogramBucket, count)
		for i := range buckets {
			ub, err := readFloat(r)
			if err != nil {
				return nil, err
			}
			c, err := readU64(r)
			if err != nil {
				return nil, err
			}
			buckets[i] = HistogramBucket{UpperBound: ub, Count: c}
		}
		total, err := readU64(r)
		if err != nil {
			return nil, err
		}
		sum, err := readFloat(r)
		if err != nil {
			return nil, err
		}
		value = HistogramValue{Buckets: buckets, Count: total, Sum: sum}
	case 4:
		count, err := readU32(r)
		if err != nil {
			return nil, err
		}
		quantiles := make([]Quantile, count)
		for i := range quantiles {
			q, err := readFloat(r)
			if err != nil {
				return nil, err
			}
			v, err := readFloat(r)
			if err != nil {
				return nil, err
			}
			quantiles[i] = Quantile{Quantile: q, Value: v}
		}
		total, err := readU64(r)
		if err != nil {
			return nil, err
		}
		sum, err := readFloat(r)
		if err != nil {
			return nil, err
		}
		value = SummaryValue{Quantiles: quantiles, Count: total, Sum: sum}
	case 5:
		count, err := readU32(r)
		if err != nil {
			return nil, err
		}
		samples := make([]Sample, count)
		for i := range samples {
			v, err := readFloat(r)
			if err != nil {
				return nil, err
			}
			rate, err := readU32(r)
			if err != nil {
				return nil, err
			}
			samples[i] = Sample{Value: v, Rate: rate}
		}
		statByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		value = DistributionValue{Samples: samples, Statistic: DistributionStatistic(statByte)}
	default:
		return nil, fmt.Errorf("event: unknown metric value tag %d", valueTagByte)
	}

	return &MetricBody{Name: name, Timestamp: ts, Tags: tags, Kind: MetricKind(kindByte), Value: value}, nil
}

func writeAny(buf *bytes.Buffer, v any) error {
	switch vv := v.(type) {
	case nil:
		buf.WriteByte(byte(tagNil))
	case bool:
		buf.WriteByte(byte(tagBool))
		if vv {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case int:
		buf.WriteByte(byte(tagInt))
		writeI64(buf, int64(vv))
	case int64:
		buf.WriteByte(byte(tagInt))
		writeI64(buf, vv)
	case float64:
		buf.WriteByte(byte(tagFloat))
		writeFloat(buf, vv)
	case string:
		buf.WriteByte(byte(tagString))
		writeString(buf, vv)
	case time.Time:
		buf.WriteByte(byte(tagTime))
		writeTime(buf, vv)
	case []any:
		buf.WriteByte(byte(tagArray))
		writeU32(buf, uint32(len(vv)))
		for _, item := range vv {
			if err := writeAny(buf, item); err != nil {
				return err
			}
		}
	case map[string]any:
		buf.WriteByte(byte(tagMap))
		writeU32(buf, uint32(len(vv)))
		for k, item := range vv {
			writeString(buf, k)
			if err := writeAny(buf, item); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("event: unsupported field value type %T", v)
	}
	return nil
}

func readAny(r *bytes.Reader) (any, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch valueTag(tagByte) {
	case tagNil:
		return nil, nil
	case tagBool:
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return b != 0, nil
	case tagInt:
		return readI64(r)
	case tagFloat:
		return readFloat(r)
	case tagString:
		return readString(r)
	case tagTime:
		return readTime(r)
	case tagArray:
		n, err := readU32(r)
		if err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := range out {
			out[i], err = readAny(r)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case tagMap:
		n, err := readU32(r)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, n)
		for i := uint32(0); i < n; i++ {
			k, err := readString(r)
			if err != nil {
				return nil, err
			}
			v, err := readAny(r)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("event: unknown value tag %d", tagByte)
	}
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := readFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readU64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func writeI64(buf *bytes.Buffer, v int64) { writeU64(buf, uint64(v)) }

func readI64(r *bytes.Reader) (int64, error) {
	u, err := readU64(r)
	return int64(u), err
}

func writeFloat(buf *bytes.Buffer, v float64) { writeU64(buf, math.Float64bits(v)) }

func readFloat(r *bytes.Reader) (float64, error) {
	u, err := readU64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

func writeTime(buf *bytes.Buffer, t time.Time) { writeI64(buf, t.UnixNano()) }

func readTime(r *bytes.Reader) (time.Time, error) {
	n, err := readI64(r)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n).UTC(), nil
}

func readFull(r *bytes.Reader, b []byte) (int, error) {
	if r.Len() < len(b) {
		return 0, fmt.Errorf("event: unexpected end of record (need %d, have %d)", len(b), r.Len())
	}
	return r.Read(b)
}
