package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Batch outcome labels.
const (
	outcomeOK        = "ok"
	outcomePartial   = "partial"
	outcomeFailed    = "failed"
	outcomeEmpty     = "empty"
	outcomeRejected  = "rejected"
	outcomeTransport = "transport_error"
)

// Metrics records batch counters and round-trip latency. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	batches   *prometheus.CounterVec
	items     *prometheus.CounterVec
	roundTrip *prometheus.HistogramVec
}

// NewMetrics creates the batch collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "figma_batch_batches_total",
				Help: "Batches handled, by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "figma_batch_items_total",
				Help: "Batch items reported by Figma, by operation and status",
			},
			[]string{"operation", "status"},
		),
		roundTrip: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "figma_batch_round_trip_seconds",
				Help:    "Duration of the single Figma round trip per batch",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(m.batches, m.items, m.roundTrip)
	return m
}

func (m *Metrics) observeBatch(op Operation, outcome string) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(string(op), outcome).Inc()
}

func (m *Metrics) observeResult(res Result, elapsed time.Duration) {
	if m == nil {
		return
	}
	op := string(res.Operation)
	m.roundTrip.WithLabelValues(op).Observe(elapsed.Seconds())
	m.items.WithLabelValues(op, "succeeded").Add(float64(res.Succeeded))
	m.items.WithLabelValues(op, "failed").Add(float64(res.Failed))
	if res.NotAttempted > 0 {
		m.items.WithLabelValues(op, "not_attempted").Add(float64(res.NotAttempted))
	}

	outcome := outcomeOK
	switch {
	case res.Failed > 0 && res.Succeeded == 0:
		outcome = outcomeFailed
	case res.Failed > 0 || res.NotAttempted > 0:
		outcome = outcomePartial
	}
	m.batches.WithLabelValues(op, outcome).Inc()
}
