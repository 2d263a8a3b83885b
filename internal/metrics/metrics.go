package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ricirt/tier-probe/internal/domain"
	"github.com/ricirt/tier-probe/internal/probe"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	ProbesTotal   *prometheus.CounterVec
	ProbeDuration *prometheus.HistogramVec
	DatabaseUp    *prometheus.GaugeVec
}

// New registers all instruments with the given Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProbesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "db_probes_total",
			Help: "Total number of database probes by outcome.",
		}, []string{"driver", "outcome"}),

		ProbeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_probe_duration_seconds",
			Help:    "Wall time of a database probe, connect through close.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"driver"}),

		DatabaseUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_up",
			Help: "1 if the most recent probe connected, 0 otherwise.",
		}, []string{"driver"}),
	}

	reg.MustRegister(m.ProbesTotal, m.ProbeDuration, m.DatabaseUp)
	return m
}

// ProbeHooks returns the callbacks expected by probe.MetricHooks.
func (m *Metrics) ProbeHooks() probe.MetricHooks {
	return probe.MetricHooks{
		OnProbe: func(driver domain.Driver, outcome probe.Outcome, took time.Duration) {
			d := string(driver)
			m.ProbesTotal.WithLabelValues(d, string(outcome)).Inc()
			m.ProbeDuration.WithLabelValues(d).Observe(took.Seconds())
			up := 0.0
			if outcome == probe.OutcomeConnected {
				up = 1
			}
			m.DatabaseUp.WithLabelValues(d).Set(up)
		},
	}
}
