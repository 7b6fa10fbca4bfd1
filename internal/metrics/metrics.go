// Package metrics exposes the engine's Prometheus instrumentation.
// Engine packages stay metrics-free; callers record outcomes here.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the collectors behind one Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	classifications   *prometheus.CounterVec
	alerts            *prometheus.CounterVec
	identityImbalance prometheus.Gauge
	stepDuration      *prometheus.HistogramVec
}

// NewRegistry creates and registers all collectors.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.classifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liquidrun",
		Name:      "classifications_total",
		Help:      "Regime classifications by primary regime.",
	}, []string{"regime"})

	r.alerts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liquidrun",
		Name:      "alerts_fired_total",
		Help:      "Alerts fired by rule and severity level.",
	}, []string{"rule", "level"})

	r.identityImbalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "liquidrun",
		Name:      "identity_imbalance_billions",
		Help:      "Latest absolute balance-sheet identity residual in billions.",
	})

	r.stepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "liquidrun",
		Name:      "step_duration_seconds",
		Help:      "Duration of pipeline steps.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"step"})

	r.registry.MustRegister(r.classifications, r.alerts, r.identityImbalance, r.stepDuration)
	return r
}

// Handler returns the scrape endpoint for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordClassification counts a classification outcome.
func (r *Registry) RecordClassification(regime string) {
	r.classifications.WithLabelValues(regime).Inc()
}

// RecordAlert counts a fired alert.
func (r *Registry) RecordAlert(rule, level string) {
	r.alerts.WithLabelValues(rule, level).Inc()
}

// SetIdentityImbalance publishes the latest identity residual.
func (r *Registry) SetIdentityImbalance(abs float64) {
	r.identityImbalance.Set(abs)
}

// StepTimer returns a stop function observing the elapsed time for a
// named pipeline step.
func (r *Registry) StepTimer(step string) func() {
	start := time.Now()
	return func() {
		r.stepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	}
}
