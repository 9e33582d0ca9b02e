package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AgentMetrics holds all metrics for the behavior controller.
type AgentMetrics struct {
	// Connection metrics
	ConnectAttempts *prometheus.CounterVec
	Connected       prometheus.Gauge
	Disconnects     *prometheus.CounterVec

	// Patrol metrics
	WanderSteps         prometheus.Counter
	WanderFailures      prometheus.Counter
	BoundaryCorrections prometheus.Counter
	WatchdogKicks       prometheus.Counter

	// Rest metrics
	RestEntries  prometheus.Counter
	RestSearches *prometheus.CounterVec
	WakeAttempts *prometheus.CounterVec

	// Diagnostics
	LogEntries *prometheus.CounterVec
}

// newAgentMetrics creates and registers all controller metrics.
func newAgentMetrics(registry *prometheus.Registry) *AgentMetrics {
	m := &AgentMetrics{
		ConnectAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "warden",
				Subsystem: "agent",
				Name:      "connect_attempts_total",
				Help:      "Total connection attempts by result.",
			},
			[]string{"result"},
		),

		Connected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "warden",
				Subsystem: "agent",
				Name:      "connected",
				Help:      "Whether the agent currently has an active session (0 or 1).",
			},
		),

		Disconnects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "warden",
				Subsystem: "agent",
				Name:      "disconnects_total",
				Help:      "Total session terminations by cause.",
			},
			[]string{"cause"},
		),

		WanderSteps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "warden",
				Subsystem: "agent",
				Name:      "wander_steps_total",
				Help:      "Total wander steps issued.",
			},
		),

		WanderFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "warden",
				Subsystem: "agent",
				Name:      "wander_failures_total",
				Help:      "Total wander steps that failed and were retried.",
			},
		),

		BoundaryCorrections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "warden",
				Subsystem: "agent",
				Name:      "boundary_corrections_total",
				Help:      "Total corrective moves back toward home.",
			},
		),

		WatchdogKicks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "warden",
				Subsystem: "agent",
				Name:      "watchdog_kicks_total",
				Help:      "Total wander steps forced by the liveness watchdog.",
			},
		),

		RestEntries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "warden",
				Subsystem: "agent",
				Name:      "rest_entries_total",
				Help:      "Total successful rest entries.",
			},
		),

		RestSearches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "warden",
				Subsystem: "agent",
				Name:      "rest_searches_total",
				Help:      "Total rest site searches by result.",
			},
			[]string{"result"},
		),

		WakeAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "warden",
				Subsystem: "agent",
				Name:      "wake_attempts_total",
				Help:      "Total wake attempts by kind (emergency, standard).",
			},
			[]string{"kind"},
		),

		LogEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "warden",
				Subsystem: "agent",
				Name:      "log_entries_total",
				Help:      "Total event log entries by severity.",
			},
			[]string{"severity"},
		),
	}

	registry.MustRegister(
		m.ConnectAttempts,
		m.Connected,
		m.Disconnects,
		m.WanderSteps,
		m.WanderFailures,
		m.BoundaryCorrections,
		m.WatchdogKicks,
		m.RestEntries,
		m.RestSearches,
		m.WakeAttempts,
		m.LogEntries,
	)

	return m
}
