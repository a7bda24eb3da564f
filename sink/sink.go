// Package sink defines the outbound telemetry boundary. Generated metric
// and alert batches leave the process through a Sink: NATS in production,
// a slog-backed sink for development, and a capture sink (in testutil)
// for assertions.
package sink

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360/secwatch/health"
)

// Batch kinds reported to metrics instrumentation.
const (
	KindMetrics = "metrics"
	KindAlerts  = "alerts"
)

// Sink receives generated health batches. Implementations must be safe
// for concurrent use; the scheduler sends metric and alert batches in
// parallel.
type Sink interface {
	// SendMetrics publishes one metric batch.
	SendMetrics(ctx context.Context, metrics []health.Metric) error
	// SendAlerts publishes one alert batch.
	SendAlerts(ctx context.Context, alerts []health.Alert) error
	// Close releases any resources held by the sink.
	Close(ctx context.Context) error
}

// LogSink writes batch summaries to a structured logger. It stands in
// for a real ingestion endpoint during local development; an optional
// artificial delay mimics network latency.
type LogSink struct {
	logger *slog.Logger
	delay  time.Duration
}

// NewLogSink creates a LogSink. A nil logger falls back to slog.Default.
func NewLogSink(logger *slog.Logger, delay time.Duration) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("sink", "log"), delay: delay}
}

// SendMetrics logs the metric batch summary.
func (s *LogSink) SendMetrics(ctx context.Context, metrics []health.Metric) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.logger.Info("metrics batch sent", "count", len(metrics))
	return nil
}

// SendAlerts logs the alert batch summary.
func (s *LogSink) SendAlerts(ctx context.Context, alerts []health.Alert) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.logger.Info("alerts batch sent", "count", len(alerts))
	return nil
}

// Close is a no-op for LogSink.
func (s *LogSink) Close(_ context.Context) error {
	return nil
}

func (s *LogSink) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
