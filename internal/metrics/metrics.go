package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "crypto_notifier"

// Cycle step names used as the "step" label.
const (
	StepFetch   = "fetch"
	StepStore   = "store"
	StepInsight = "insight"
	StepNotify  = "notify"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	Cycles        prometheus.Counter
	CycleDuration prometheus.Histogram
	LastCycle     prometheus.Gauge
	FetchErrors   *prometheus.CounterVec
	StepFailures  *prometheus.CounterVec
	Messages      prometheus.Counter
	Price         *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed poll cycles.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one poll cycle.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		LastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last cycle completed.",
		}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed price fetches by symbol.",
		}, []string{"symbol"}),
		StepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_failures_total",
			Help:      "Cycle step failures by step.",
		}, []string{"step"}),
		Messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Messages delivered to the chat.",
		}),
		Price: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "price",
			Help:      "Latest fetched spot price by symbol.",
		}, []string{"symbol"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Cycles,
			m.CycleDuration,
			m.LastCycle,
			m.FetchErrors,
			m.StepFailures,
			m.Messages,
			m.Price,
		)
	}

	return m
}

// ObserveCycle records a completed cycle.
func (m *Metrics) ObserveCycle(start, end time.Time) {
	if m == nil {
		return
	}
	m.Cycles.Inc()
	m.CycleDuration.Observe(end.Sub(start).Seconds())
	m.LastCycle.Set(float64(end.Unix()))
}

// FetchFailed counts a symbol with no data this cycle.
func (m *Metrics) FetchFailed(symbol string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(symbol).Inc()
}

// StepFailed counts a failed cycle step.
func (m *Metrics) StepFailed(step string) {
	if m == nil {
		return
	}
	m.StepFailures.WithLabelValues(step).Inc()
}

// MessageSent counts a delivered message.
func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.Messages.Inc()
}

// SetPrice records the latest price for symbol.
func (m *Metrics) SetPrice(symbol string, price decimal.Decimal) {
	if m == nil {
		return
	}
	m.Price.WithLabelValues(symbol).Set(price.InexactFloat64())
}
