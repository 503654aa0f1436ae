package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/d21d3q/goceos/internal/fieldreader"
	"github.com/d21d3q/goceos/internal/record"
)

// Metrics counts decode outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	decoded  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		decoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ceos_records_decoded_total",
				Help: "Total number of records decoded, by variant",
			},
			[]string{"variant"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ceos_record_decode_failures_total",
				Help: "Total number of failed record decodes, by reason",
			},
			[]string{"reason"},
		),
	}
	for _, c := range []prometheus.Collector{m.decoded, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Decoded(variant string) {
	if m == nil {
		return
	}
	m.decoded.WithLabelValues(variant).Inc()
}

func (m *Metrics) Failed(err error) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(Reason(err)).Inc()
}

// DecodedCounter and FailureCounter expose the vectors for scraping in tests.
// Both return nil on a nil *Metrics.
func (m *Metrics) DecodedCounter() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.decoded
}

func (m *Metrics) FailureCounter() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.failures
}

// Reason maps a decode error to a low-cardinality label.
func Reason(err error) string {
	switch {
	case errors.Is(err, fieldreader.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, fieldreader.ErrTruncatedRead):
		return "truncated_read"
	case errors.Is(err, fieldreader.ErrMalformedNumeric):
		return "malformed_numeric"
	case errors.Is(err, record.ErrUnknownRecordType):
		return "unknown_record_type"
	case errors.Is(err, record.ErrInvalidRecordLength):
		return "invalid_record_length"
	default:
		return "other"
	}
}
