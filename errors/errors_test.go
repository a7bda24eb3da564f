package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_Format(t *testing.T) {
	base := stderrors.New("connection refused")
	err := Wrap(base, "NATSSink", "SendMetrics", "publish")

	require.Error(t, err)
	assert.Equal(t, "NATSSink.SendMetrics: publish failed: connection refused", err.Error())
	assert.ErrorIs(t, err, base)
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.Nil(t, Wrap(nil, "c", "m", "a"))
	assert.Nil(t, WrapTransient(nil, "c", "m", "a"))
	assert.Nil(t, WrapFatal(nil, "c", "m", "a"))
	assert.Nil(t, WrapInvalid(nil, "c", "m", "a"))
}

func TestClassifiedWrappers(t *testing.T) {
	base := stderrors.New("boom")

	transient := WrapTransient(base, "Sink", "Send", "publish")
	assert.True(t, IsTransient(transient))
	assert.False(t, IsFatal(transient))
	assert.Equal(t, ErrorTransient, Classify(transient))

	fatal := WrapFatal(base, "Monitor", "New", "history")
	assert.True(t, IsFatal(fatal))
	assert.False(t, IsTransient(fatal))
	assert.Equal(t, ErrorFatal, Classify(fatal))

	invalid := WrapInvalid(base, "Monitor", "ScheduleCheck", "validation")
	assert.True(t, IsInvalid(invalid))
	assert.Equal(t, ErrorInvalid, Classify(invalid))
}

func TestClassifiedError_CarriesContext(t *testing.T) {
	base := stderrors.New("boom")
	err := WrapTransient(base, "Sink", "Send", "publish")

	var ce *ClassifiedError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, "Sink", ce.Component)
	assert.Equal(t, "Send", ce.Operation)
	assert.ErrorIs(t, ce, base)
}

func TestIsTransient_SentinelsAndPatterns(t *testing.T) {
	assert.True(t, IsTransient(ErrConnectionTimeout))
	assert.True(t, IsTransient(ErrConnectionLost))
	assert.True(t, IsTransient(ErrPublishFailed))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(fmt.Errorf("dial tcp: i/o timeout")))
	assert.True(t, IsTransient(stderrors.New("service temporarily unavailable")))

	assert.False(t, IsTransient(nil))
}

func TestIsFatal_Sentinels(t *testing.T) {
	assert.True(t, IsFatal(ErrInvalidConfig))
	assert.True(t, IsFatal(ErrMissingConfig))
	assert.True(t, IsFatal(ErrResourceExhausted))
	assert.False(t, IsFatal(nil))
}

func TestIsInvalid_Sentinels(t *testing.T) {
	assert.True(t, IsInvalid(ErrInvalidData))
	assert.True(t, IsInvalid(ErrInvalidInterval))
	assert.True(t, IsInvalid(ErrParsingFailed))
	assert.False(t, IsInvalid(nil))
}

func TestClassify_UnknownDefaultsToTransient(t *testing.T) {
	assert.Equal(t, ErrorTransient, Classify(stderrors.New("something odd")))
}

func TestErrorClass_String(t *testing.T) {
	assert.Equal(t, "transient", ErrorTransient.String())
	assert.Equal(t, "invalid", ErrorInvalid.String())
	assert.Equal(t, "fatal", ErrorFatal.String())
	assert.Equal(t, "unknown", ErrorClass(99).String())
}

func TestRetryConfig_ShouldRetry(t *testing.T) {
	rc := DefaultRetryConfig()

	assert.True(t, rc.ShouldRetry(ErrConnectionLost, 0))
	assert.False(t, rc.ShouldRetry(ErrConnectionLost, rc.MaxRetries), "attempts exhausted")
	assert.False(t, rc.ShouldRetry(nil, 0))
	assert.False(t, rc.ShouldRetry(WrapInvalid(stderrors.New("bad"), "c", "m", "a"), 0))
}

func TestRetryConfig_SpecificRetryableErrors(t *testing.T) {
	rc := DefaultRetryConfig()
	rc.RetryableErrors = []error{ErrConnectionLost}

	assert.True(t, rc.ShouldRetry(fmt.Errorf("wrapped: %w", ErrConnectionLost), 0))
	assert.False(t, rc.ShouldRetry(ErrConnectionTimeout, 0), "transient but not in the allow list")
}

func TestRetryConfig_ToRetryConfig(t *testing.T) {
	rc := RetryConfig{
		MaxRetries:    4,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 1.5,
	}

	cfg := rc.ToRetryConfig()
	assert.Equal(t, 5, cfg.MaxAttempts, "retries plus the initial attempt")
	assert.Equal(t, 50*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, 2*time.Second, cfg.MaxDelay)
	assert.Equal(t, 1.5, cfg.Multiplier)
	assert.True(t, cfg.AddJitter)
}
