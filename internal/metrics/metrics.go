// Package metrics holds the Prometheus collectors of the limit service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several servers can coexist in one
// process (and in tests).
type Metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	toolCalls   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "golimit_resolutions_total",
				Help: "Total number of limit resolutions by outcome",
			},
			[]string{"side", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "golimit_resolution_duration_seconds",
				Help:    "Duration of limit resolutions",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"side"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "golimit_tool_calls_total",
				Help: "Total number of symbolic tool calls",
			},
			[]string{"tool", "is_error"},
		),
	}
	m.registry.MustRegister(m.resolutions, m.duration, m.toolCalls)
	return m
}

// ObserveResolution records one call to the resolver. outcome is "ok" or
// the failure kind.
func (m *Metrics) ObserveResolution(side, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(side, outcome).Inc()
	m.duration.WithLabelValues(side).Observe(d.Seconds())
}

func (m *Metrics) ObserveToolCall(tool string, isError bool) {
	if m == nil {
		return
	}
	label := "false"
	if isError {
		label = "true"
	}
	m.toolCalls.WithLabelValues(tool, label).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests and for embedding in a larger registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
