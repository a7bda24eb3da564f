package monitor

import (
	"errors"
	"time"

	"github.com/c360/secwatch/health"
)

// Result carries everything one check execution produced. Send errors
// are recorded rather than propagated so that a flaky sink never stops
// the scheduler, while still being observable to callers and tests.
type Result struct {
	CheckID        string          `json:"check_id"`
	Timestamp      time.Time       `json:"timestamp"`
	Duration       time.Duration   `json:"duration"`
	Metrics        []health.Metric `json:"metrics"`
	Alerts         []health.Alert  `json:"alerts"`
	MetricsSendErr error           `json:"-"`
	AlertsSendErr  error           `json:"-"`
}

// Err aggregates the send errors, nil when both sends succeeded.
func (r Result) Err() error {
	return errors.Join(r.MetricsSendErr, r.AlertsSendErr)
}
