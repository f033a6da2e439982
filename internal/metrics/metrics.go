// Package metrics exposes Prometheus instrumentation for the contact flow.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Contact outcomes.
const (
	OutcomeRecorded   = "recorded"
	OutcomeReview     = "review"
	OutcomeUnmetered  = "unmetered"
	OutcomeRejected   = "quota_exceeded"
	OutcomeLedgerFail = "ledger_unavailable"
)

// Metrics holds the collectors registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	// Contact attempts by outcome
	ContactOutcomes *prometheus.CounterVec

	// Ledger round trips by operation
	LedgerLatency *prometheus.HistogramVec

	// Quota consumed at the end of each metered contact
	QuotaConsumed prometheus.Histogram
}

// New creates a Metrics instance with every collector registered, including
// the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ContactOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "devdir_contact_outcomes_total",
			Help: "Contact attempts by outcome",
		}, []string{"outcome"}),

		LedgerLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "devdir_ledger_duration_seconds",
			Help:    "Duration of contact ledger operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 3},
		}, []string{"op"}),

		QuotaConsumed: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "devdir_quota_consumed",
			Help:    "Distinct developers contacted today after a metered contact",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}
}

// IncContact records a contact outcome.
func (m *Metrics) IncContact(outcome string) {
	if m != nil {
		m.ContactOutcomes.WithLabelValues(outcome).Inc()
	}
}

// ObserveLedger records the duration of a ledger operation.
func (m *Metrics) ObserveLedger(op string, d time.Duration) {
	if m != nil {
		m.LedgerLatency.WithLabelValues(op).Observe(d.Seconds())
	}
}

// ObserveConsumed records how much of the daily quota a viewer has used.
func (m *Metrics) ObserveConsumed(consumed int) {
	if m != nil {
		m.QuotaConsumed.Observe(float64(consumed))
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
