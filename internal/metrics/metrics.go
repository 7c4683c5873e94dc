// Package metrics exposes Prometheus metrics for guardrail events and
// reconfigurations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the guardrail metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	events           *prometheus.CounterVec
	reconfigurations *prometheus.CounterVec
	thresholds       *prometheus.GaugeVec
	generated        prometheus.Counter
}

// NewRecorder registers the guardrail metrics to reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guardrails_events_total",
			Help: "Guardrail warnings and failures",
		}, []string{"guardrail", "kind"}),
		reconfigurations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guardrails_reconfigurations_total",
			Help: "Reconfiguration attempts by source and result",
		}, []string{"source", "result"}),
		thresholds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "guardrails_threshold_value",
			Help: "Configured threshold values; -1 means disabled",
		}, []string{"guardrail", "side"}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guardrails_generated_values_total",
			Help: "Values produced by guardrail generators",
		}),
	}
	reg.MustRegister(r.events, r.reconfigurations, r.thresholds, r.generated)
	return r
}

// Handler returns HTTP handler serving /metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ObserveEvent counts a guardrail notification.
func (r *Recorder) ObserveEvent(guardrail, kind string) {
	if r == nil {
		return
	}
	r.events.WithLabelValues(guardrail, kind).Inc()
}

// ObserveReconfiguration counts a reconfiguration attempt from source
// ("file", "grpc", "mcp", "cli").
func (r *Recorder) ObserveReconfiguration(source string, err error) {
	if r == nil {
		return
	}
	result := "applied"
	if err != nil {
		result = "rejected"
	}
	r.reconfigurations.WithLabelValues(source, result).Inc()
}

// SetThreshold publishes the current pair of a threshold guardrail.
func (r *Recorder) SetThreshold(guardrail string, warn, fail int64) {
	if r == nil {
		return
	}
	r.thresholds.WithLabelValues(guardrail, "warn").Set(float64(warn))
	r.thresholds.WithLabelValues(guardrail, "fail").Set(float64(fail))
}

// ObserveGenerated counts a generated value.
func (r *Recorder) ObserveGenerated() {
	if r == nil {
		return
	}
	r.generated.Inc()
}
