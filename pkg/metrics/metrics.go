// Package metrics provides Prometheus metrics for the warden service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	registry *prometheus.Registry

	// Agent holds behavior controller metrics.
	Agent *AgentMetrics

	// HTTP holds API server metrics.
	HTTP *HTTPMetrics
}

// New creates a Metrics instance with all collectors registered on a
// fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	// Register default Go and process collectors
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return &Metrics{
		registry: registry,
		Agent:    newAgentMetrics(registry),
		HTTP:     newHTTPMetrics(registry),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		m.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics:   true,
			MaxRequestsInFlight: 10,
		},
	)
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
