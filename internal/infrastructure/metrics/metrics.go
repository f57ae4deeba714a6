package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors fed by the use cases.
type Metrics struct {
	EngineDuration    *prometheus.HistogramVec
	RecurringPostings *prometheus.CounterVec
	BudgetAlerts      prometheus.Counter
	CacheLookups      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		EngineDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fincore_engine_duration_seconds",
				Help:    "Duration of derived computations",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"engine"},
		),
		RecurringPostings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincore_recurring_postings_total",
				Help: "Recurring postings by disposition",
			},
			[]string{"disposition"},
		),
		BudgetAlerts: factory.NewCounter(prometheus.CounterOpts{
			Name: "fincore_budget_alerts_fired_total",
			Help: "Budget alerts fired",
		}),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincore_report_cache_lookups_total",
				Help: "Report cache lookups by view and result",
			},
			[]string{"view", "result"},
		),
	}
}

// ObserveEngine records how long an engine took.
func (m *Metrics) ObserveEngine(engine string, d time.Duration) {
	m.EngineDuration.WithLabelValues(engine).Observe(d.Seconds())
}

// RecurringPosted counts postings written by a due-check sweep.
func (m *Metrics) RecurringPosted(disposition string, n int) {
	if n <= 0 {
		return
	}
	m.RecurringPostings.WithLabelValues(disposition).Add(float64(n))
}

// AlertsFired counts newly fired budget alerts.
func (m *Metrics) AlertsFired(n int) {
	if n <= 0 {
		return
	}
	m.BudgetAlerts.Add(float64(n))
}

// CacheLookup counts a report cache hit or miss.
func (m *Metrics) CacheLookup(view string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(view, result).Inc()
}
