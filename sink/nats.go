package sink

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/secwatch/errors"
	"github.com/c360/secwatch/health"
	"github.com/c360/secwatch/metric"
	"github.com/c360/secwatch/pkg/retry"
)

// Default subjects for published health batches.
const (
	DefaultMetricsSubject = "secwatch.health.metrics"
	DefaultAlertsSubject  = "secwatch.health.alerts"
)

// metricsBatch is the wire envelope for a published metric batch.
type metricsBatch struct {
	Timestamp time.Time       `json:"timestamp"`
	Metrics   []health.Metric `json:"metrics"`
}

// alertsBatch is the wire envelope for a published alert batch.
type alertsBatch struct {
	Timestamp time.Time      `json:"timestamp"`
	Alerts    []health.Alert `json:"alerts"`
}

// NATSSink publishes health batches to NATS subjects as JSON envelopes.
type NATSSink struct {
	url            string
	conn           *nats.Conn
	metricsSubject string
	alertsSubject  string
	logger         *slog.Logger
	metrics        *metric.Metrics

	// Connection options
	clientName    string
	maxReconnects int
	reconnectWait time.Duration
	connectRetry  retry.Config
	flushTimeout  time.Duration

	closed atomic.Bool
}

// NATSOption configures a NATSSink
type NATSOption func(*NATSSink)

// WithLogger sets a custom logger for the sink
func WithLogger(logger *slog.Logger) NATSOption {
	return func(s *NATSSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires connection and publish instrumentation
func WithMetrics(m *metric.Metrics) NATSOption {
	return func(s *NATSSink) {
		s.metrics = m
	}
}

// WithSubjects overrides the metric and alert subjects
func WithSubjects(metricsSubject, alertsSubject string) NATSOption {
	return func(s *NATSSink) {
		if metricsSubject != "" {
			s.metricsSubject = metricsSubject
		}
		if alertsSubject != "" {
			s.alertsSubject = alertsSubject
		}
	}
}

// WithClientName sets the NATS client name
func WithClientName(name string) NATSOption {
	return func(s *NATSSink) {
		s.clientName = name
	}
}

// WithConnectRetry overrides the initial-connection retry policy
func WithConnectRetry(cfg retry.Config) NATSOption {
	return func(s *NATSSink) {
		s.connectRetry = cfg
	}
}

// newNATSSink builds a sink with defaults and options applied, without
// connecting. The default connect policy derives from the shared retry
// configuration so sink and scheduler classify failures the same way.
func newNATSSink(url string, opts ...NATSOption) *NATSSink {
	s := &NATSSink{
		url:            url,
		metricsSubject: DefaultMetricsSubject,
		alertsSubject:  DefaultAlertsSubject,
		logger:         slog.Default().With("sink", "nats"),
		clientName:     "secwatch",
		maxReconnects:  -1, // infinite
		reconnectWait:  2 * time.Second,
		connectRetry:   errors.DefaultRetryConfig().ToRetryConfig(),
		flushTimeout:   5 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewNATSSink connects to NATS and returns a sink publishing to the
// configured subjects. The initial connection is retried with backoff;
// once established, reconnection is delegated to the NATS client.
func NewNATSSink(ctx context.Context, url string, opts ...NATSOption) (*NATSSink, error) {
	s := newNATSSink(url, opts...)

	natsOpts := []nats.Option{
		nats.Name(s.clientName),
		nats.MaxReconnects(s.maxReconnects),
		nats.ReconnectWait(s.reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			s.logger.Warn("NATS disconnected", "error", err)
			if s.metrics != nil {
				s.metrics.RecordNATSConnected(false)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			s.logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
			if s.metrics != nil {
				s.metrics.RecordNATSConnected(true)
				s.metrics.NATSReconnects.Inc()
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if s.metrics != nil {
				s.metrics.RecordNATSConnected(false)
			}
		}),
	}

	conn, err := retry.DoWithResult(ctx, s.connectRetry, func() (*nats.Conn, error) {
		return nats.Connect(url, natsOpts...)
	})
	if err != nil {
		return nil, errors.WrapTransient(err, "NATSSink", "NewNATSSink", "connect")
	}

	s.conn = conn
	if s.metrics != nil {
		s.metrics.RecordNATSConnected(true)
	}
	s.logger.Info("NATS sink connected", "url", conn.ConnectedUrl())
	return s, nil
}

// SendMetrics publishes one metric batch as a JSON envelope.
func (s *NATSSink) SendMetrics(ctx context.Context, metrics []health.Metric) error {
	err := s.publish(ctx, s.metricsSubject, metricsBatch{
		Timestamp: time.Now().UTC(),
		Metrics:   metrics,
	})
	if s.metrics != nil {
		s.metrics.RecordSinkPublish(KindMetrics, err)
	}
	return err
}

// SendAlerts publishes one alert batch as a JSON envelope.
func (s *NATSSink) SendAlerts(ctx context.Context, alerts []health.Alert) error {
	err := s.publish(ctx, s.alertsSubject, alertsBatch{
		Timestamp: time.Now().UTC(),
		Alerts:    alerts,
	})
	if s.metrics != nil {
		s.metrics.RecordSinkPublish(KindAlerts, err)
	}
	return err
}

func (s *NATSSink) publish(ctx context.Context, subject string, payload any) error {
	if s.closed.Load() {
		return errors.WrapInvalid(errors.ErrSinkClosed, "NATSSink", "publish", "sink closed")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.WrapInvalid(err, "NATSSink", "publish", "marshal batch")
	}

	if err := s.conn.Publish(subject, data); err != nil {
		return errors.WrapTransient(err, "NATSSink", "publish", "publish to "+subject)
	}

	// Bound the flush by both the caller's context and the sink timeout
	flushCtx, cancel := context.WithTimeout(ctx, s.flushTimeout)
	defer cancel()
	if err := s.conn.FlushWithContext(flushCtx); err != nil {
		return errors.WrapTransient(err, "NATSSink", "publish", "flush")
	}

	return nil
}

// IsConnected reports whether the underlying connection is established.
func (s *NATSSink) IsConnected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

// Close drains the connection. Safe to call more than once.
func (s *NATSSink) Close(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- s.conn.Drain()
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.WrapTransient(err, "NATSSink", "Close", "drain")
		}
		return nil
	case <-ctx.Done():
		s.conn.Close()
		return errors.WrapTransient(ctx.Err(), "NATSSink", "Close", "drain timeout")
	}
}
