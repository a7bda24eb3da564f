package sink

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/c360/secwatch/errors"
	"github.com/c360/secwatch/pkg/retry"
)

func TestNATSSink_Defaults(t *testing.T) {
	s := newNATSSink("nats://localhost:4222")

	assert.Equal(t, DefaultMetricsSubject, s.metricsSubject)
	assert.Equal(t, DefaultAlertsSubject, s.alertsSubject)
	assert.Equal(t, "secwatch", s.clientName)
	assert.Equal(t, -1, s.maxReconnects)
	assert.Equal(t, errors.DefaultRetryConfig().ToRetryConfig(), s.connectRetry,
		"connect policy derives from the shared retry configuration")
}

func TestNATSSink_Options(t *testing.T) {
	custom := retry.Config{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	s := newNATSSink("nats://localhost:4222",
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSubjects("telemetry.metrics", "telemetry.alerts"),
		WithClientName("console"),
		WithConnectRetry(custom),
	)

	assert.Equal(t, "telemetry.metrics", s.metricsSubject)
	assert.Equal(t, "telemetry.alerts", s.alertsSubject)
	assert.Equal(t, "console", s.clientName)
	assert.Equal(t, custom, s.connectRetry)
}

func TestNATSSink_EmptySubjectOverridesKeepDefaults(t *testing.T) {
	s := newNATSSink("nats://localhost:4222", WithSubjects("", ""))

	assert.Equal(t, DefaultMetricsSubject, s.metricsSubject)
	assert.Equal(t, DefaultAlertsSubject, s.alertsSubject)
}
