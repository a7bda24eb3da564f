// Package metric provides Prometheus metric registration and the core
// SecWatch platform metrics.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not domain-specific)
type Metrics struct {
	// Service metrics
	ServiceStatus *prometheus.GaugeVec

	// Scheduler metrics
	CheckExecutions *prometheus.CounterVec
	CheckFailures   *prometheus.CounterVec
	CheckDuration   *prometheus.HistogramVec

	// Sink metrics
	SinkPublished *prometheus.CounterVec
	SinkFailures  *prometheus.CounterVec

	// NATS metrics
	NATSConnected  prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ServiceStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "secwatch",
				Subsystem: "service",
				Name:      "status",
				Help:      "Service status (0=stopped, 1=starting, 2=running, 3=stopping)",
			},
			[]string{"service"},
		),

		CheckExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "secwatch",
				Subsystem: "checks",
				Name:      "executions_total",
				Help:      "Total scheduled check executions",
			},
			[]string{"check"},
		),

		CheckFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "secwatch",
				Subsystem: "checks",
				Name:      "failures_total",
				Help:      "Total scheduled check executions that reported an error",
			},
			[]string{"check"},
		),

		CheckDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "secwatch",
				Subsystem: "checks",
				Name:      "duration_seconds",
				Help:      "Scheduled check execution duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"check"},
		),

		SinkPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "secwatch",
				Subsystem: "sink",
				Name:      "published_total",
				Help:      "Total batches published to the telemetry sink",
			},
			[]string{"kind"},
		),

		SinkFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "secwatch",
				Subsystem: "sink",
				Name:      "failures_total",
				Help:      "Total batches the telemetry sink failed to publish",
			},
			[]string{"kind"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "secwatch",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "Whether the NATS connection is established (0 or 1)",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "secwatch",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total NATS reconnections",
			},
		),
	}
}

// RecordServiceStatus records the lifecycle status of a named service
func (m *Metrics) RecordServiceStatus(service string, status int) {
	m.ServiceStatus.WithLabelValues(service).Set(float64(status))
}

// RecordCheckExecution records one scheduled check execution
func (m *Metrics) RecordCheckExecution(check string, duration time.Duration, err error) {
	m.CheckExecutions.WithLabelValues(check).Inc()
	m.CheckDuration.WithLabelValues(check).Observe(duration.Seconds())
	if err != nil {
		m.CheckFailures.WithLabelValues(check).Inc()
	}
}

// RecordSinkPublish records the outcome of one sink publish
func (m *Metrics) RecordSinkPublish(kind string, err error) {
	m.SinkPublished.WithLabelValues(kind).Inc()
	if err != nil {
		m.SinkFailures.WithLabelValues(kind).Inc()
	}
}

// RecordNATSConnected records the NATS connection state
func (m *Metrics) RecordNATSConnected(connected bool) {
	if connected {
		m.NATSConnected.Set(1)
	} else {
		m.NATSConnected.Set(0)
	}
}
