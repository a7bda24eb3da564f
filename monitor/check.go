package monitor

import (
	"context"
	"time"

	"github.com/c360/secwatch/pkg/clock"
)

// Handler is the closure a scheduled check runs on each tick.
type Handler func(ctx context.Context) error

// Check describes a periodic check to register with the Monitor.
type Check struct {
	ID       string
	Name     string
	Interval time.Duration
	Handler  Handler
}

// CheckInfo is a read-only snapshot of one scheduled check.
type CheckInfo struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Interval   time.Duration `json:"interval"`
	LastRun    time.Time     `json:"last_run"`
	NextRun    time.Time     `json:"next_run"`
	Active     bool          `json:"active"`
	Executions int64         `json:"executions"`
	Failures   int64         `json:"failures"`
	LastError  string        `json:"last_error,omitempty"`
}

// scheduledCheck is the Monitor's internal per-check state. The ticker
// and stop channel are owned by the check's goroutine; counters are
// guarded by the Monitor mutex.
type scheduledCheck struct {
	check  Check
	ticker clock.Ticker
	stop   chan struct{}

	active     bool
	lastRun    time.Time
	nextRun    time.Time
	executions int64
	failures   int64
	lastErr    error
}

func (sc *scheduledCheck) info() CheckInfo {
	ci := CheckInfo{
		ID:         sc.check.ID,
		Name:       sc.check.Name,
		Interval:   sc.check.Interval,
		LastRun:    sc.lastRun,
		NextRun:    sc.nextRun,
		Active:     sc.active,
		Executions: sc.executions,
		Failures:   sc.failures,
	}
	if sc.lastErr != nil {
		ci.LastError = sc.lastErr.Error()
	}
	return ci
}
