package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics holds metrics for the API server.
type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// newHTTPMetrics creates and registers all API server metrics.
func newHTTPMetrics(registry *prometheus.Registry) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "warden",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests by method, path, and status code.",
			},
			[]string{"method", "path", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "warden",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(m.RequestsTotal, m.RequestDuration)

	return m
}
