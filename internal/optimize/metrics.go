package optimize

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts rule activity. One Metrics value may be shared by any
// number of optimizers running concurrently.
type Metrics struct {
	// Examined counts rule applications by rule.
	Examined *prometheus.CounterVec
	// Fired counts rule applications that changed the plan.
	Fired *prometheus.CounterVec
	// Duration is the latency of whole Optimize calls.
	Duration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Examined: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qopt_rule_examined_total",
				Help: "Total number of rule applications",
			},
			[]string{"rule"},
		),
		Fired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qopt_rule_fired_total",
				Help: "Total number of rule applications that rewrote the plan",
			},
			[]string{"rule"},
		),
		Duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qopt_optimize_duration_seconds",
				Help:    "Optimize latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
	}
}

func (m *Metrics) observeRule(rule string, fired bool) {
	if m == nil {
		return
	}
	m.Examined.WithLabelValues(rule).Inc()
	if fired {
		m.Fired.WithLabelValues(rule).Inc()
	}
}

func (m *Metrics) observeDuration(seconds float64) {
	if m == nil {
		return
	}
	m.Duration.Observe(seconds)
}
