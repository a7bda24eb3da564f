package testutil

import (
	"context"
	"sync"

	"github.com/c360/secwatch/health"
)

// CaptureSink records every batch it receives. Set FailMetrics or
// FailAlerts to inject send failures.
type CaptureSink struct {
	mu            sync.Mutex
	metricBatches [][]health.Metric
	alertBatches  [][]health.Alert
	closed        bool

	FailMetrics error
	FailAlerts  error
}

// NewCaptureSink creates an empty capture sink.
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{}
}

// SendMetrics records the batch, or fails with FailMetrics when set.
func (s *CaptureSink) SendMetrics(_ context.Context, metrics []health.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailMetrics != nil {
		return s.FailMetrics
	}
	batch := make([]health.Metric, len(metrics))
	copy(batch, metrics)
	s.metricBatches = append(s.metricBatches, batch)
	return nil
}

// SendAlerts records the batch, or fails with FailAlerts when set.
func (s *CaptureSink) SendAlerts(_ context.Context, alerts []health.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAlerts != nil {
		return s.FailAlerts
	}
	batch := make([]health.Alert, len(alerts))
	copy(batch, alerts)
	s.alertBatches = append(s.alertBatches, batch)
	return nil
}

// Close marks the sink closed.
func (s *CaptureSink) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// MetricBatches returns a copy of the recorded metric batches.
func (s *CaptureSink) MetricBatches() [][]health.Metric {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]health.Metric, len(s.metricBatches))
	copy(out, s.metricBatches)
	return out
}

// AlertBatches returns a copy of the recorded alert batches.
func (s *CaptureSink) AlertBatches() [][]health.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]health.Alert, len(s.alertBatches))
	copy(out, s.alertBatches)
	return out
}

// Closed reports whether Close has been called.
func (s *CaptureSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
