package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Consume call outcomes, used as the outcome label value.
const (
	OutcomeSatisfied = "satisfied"
	OutcomeShort     = "short"
	OutcomeError     = "error"
)

// Metrics collects counters for the inventory engine. A nil *Metrics is
// safe to call; every method no-ops, which keeps tests free of registry
// bookkeeping.
type Metrics struct {
	consumeCalls    *prometheus.CounterVec
	consumeDuration prometheus.Histogram
	lotsDepleted    prometheus.Counter
	lotsCreated     prometheus.Counter
}

// New registers the inventory collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		consumeCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bakehouse",
			Subsystem: "inventory",
			Name:      "consume_calls_total",
			Help:      "Consumption calls by outcome.",
		}, []string{"outcome"}),
		consumeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bakehouse",
			Subsystem: "inventory",
			Name:      "consume_duration_seconds",
			Help:      "Wall time of one consumption call, lock wait included.",
			Buckets:   prometheus.DefBuckets,
		}),
		lotsDepleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bakehouse",
			Subsystem: "inventory",
			Name:      "lots_depleted_total",
			Help:      "Lots fully exhausted by consumption.",
		}),
		lotsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bakehouse",
			Subsystem: "inventory",
			Name:      "lots_created_total",
			Help:      "Lots added by purchases and pantry additions.",
		}),
	}
}

// ObserveConsume records the outcome and duration of one consume call.
func (m *Metrics) ObserveConsume(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.consumeCalls.WithLabelValues(outcome).Inc()
	m.consumeDuration.Observe(elapsed.Seconds())
}

// AddDepletedLots counts lots a consume call drove to zero.
func (m *Metrics) AddDepletedLots(n int) {
	if m == nil || n == 0 {
		return
	}
	m.lotsDepleted.Add(float64(n))
}

// IncLotsCreated counts one new lot.
func (m *Metrics) IncLotsCreated() {
	if m == nil {
		return
	}
	m.lotsCreated.Inc()
}
