package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/c360/secwatch/compliance"
	"github.com/c360/secwatch/monitor"
)

// FixtureFramework builds a framework with an exact score and the given
// controls, for tests that assert threshold behavior.
func FixtureFramework(id string, score float64, controls ...compliance.Control) compliance.Framework {
	for i := range controls {
		controls[i].FrameworkID = id
	}
	return compliance.Framework{
		ID:           id,
		Name:         "Fixture " + id,
		Version:      "1.0",
		Controls:     controls,
		OverallScore: score,
		Status:       compliance.StatusPartiallyCompliant,
		LastUpdated:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// FixtureControl builds a control with the given status and priority.
func FixtureControl(id string, status compliance.Status, priority compliance.Priority) compliance.Control {
	return compliance.Control{
		ID:       id,
		Category: "Access Control",
		Code:     fmt.Sprintf("FX-%s", id),
		Status:   status,
		Score:    75,
		Priority: priority,
	}
}

// WithDueDate returns a copy of the control with the due date set.
func WithDueDate(c compliance.Control, due time.Time) compliance.Control {
	c.DueDate = &due
	return c
}

// WithRemediation returns a copy of the control with a remediation plan.
func WithRemediation(c compliance.Control, plan string) compliance.Control {
	c.RemediationPlan = plan
	return c
}

// RecordingListener captures every check result handed to the monitor
// listener, for assertions on notification behavior.
type RecordingListener struct {
	mu      sync.Mutex
	results []monitor.Result
}

// NewRecordingListener creates an empty recording listener.
func NewRecordingListener() *RecordingListener {
	return &RecordingListener{}
}

// Listen is the monitor.Listener to register.
func (l *RecordingListener) Listen(res monitor.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, res)
}

// Results returns a copy of the captured results.
func (l *RecordingListener) Results() []monitor.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]monitor.Result, len(l.results))
	copy(out, l.results)
	return out
}

// Count returns how many results have been captured.
func (l *RecordingListener) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.results)
}
