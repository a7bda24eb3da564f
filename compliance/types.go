package compliance

import (
	"fmt"
	"time"

	"github.com/c360/secwatch/errors"
)

// Status represents the compliance state of a framework or control
type Status string

// Possible compliance statuses
const (
	StatusCompliant          Status = "compliant"
	StatusNonCompliant       Status = "non-compliant"
	StatusPartiallyCompliant Status = "partially-compliant"
	StatusPending            Status = "pending"
)

// Valid reports whether s is a known compliance status
func (s Status) Valid() bool {
	switch s {
	case StatusCompliant, StatusNonCompliant, StatusPartiallyCompliant, StatusPending:
		return true
	default:
		return false
	}
}

// Priority represents the remediation priority of a control
type Priority string

// Possible control priorities
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Framework is a point-in-time snapshot of one compliance standard.
// Snapshots are replaced wholesale on refresh, never mutated in place.
type Framework struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Version      string     `json:"version"`
	Controls     []Control  `json:"controls"`
	OverallScore float64    `json:"overall_score"` // 0-100 aggregate
	Status       Status     `json:"status"`
	LastUpdated  time.Time  `json:"last_updated"`
	NextAudit    *time.Time `json:"next_audit,omitempty"`
}

// Control is a single requirement within a framework. The FrameworkID is
// a non-owning back-reference to the containing framework.
type Control struct {
	ID              string     `json:"id"`
	FrameworkID     string     `json:"framework_id"`
	Category        string     `json:"category"`
	Code            string     `json:"code"`
	Status          Status     `json:"status"`
	Score           float64    `json:"score"`
	Priority        Priority   `json:"priority"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	RemediationPlan string     `json:"remediation_plan,omitempty"`
	Owner           string     `json:"owner,omitempty"`
}

// Validate checks the framework snapshot for structural problems
func (f *Framework) Validate() error {
	if f.ID == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Framework", "Validate", "missing framework id")
	}
	if f.Name == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Framework", "Validate", "missing framework name")
	}
	if !f.Status.Valid() {
		return errors.WrapInvalid(
			fmt.Errorf("unknown status %q", f.Status),
			"Framework", "Validate", "status check")
	}
	if f.OverallScore < 0 || f.OverallScore > 100 {
		return errors.WrapInvalid(
			fmt.Errorf("score %.1f outside 0-100", f.OverallScore),
			"Framework", "Validate", "score range check")
	}
	for i := range f.Controls {
		if err := f.Controls[i].Validate(); err != nil {
			return errors.Wrap(err, "Framework", "Validate", fmt.Sprintf("control %d", i))
		}
	}
	return nil
}

// Validate checks the control for structural problems
func (c *Control) Validate() error {
	if c.ID == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Control", "Validate", "missing control id")
	}
	if !c.Status.Valid() {
		return errors.WrapInvalid(
			fmt.Errorf("unknown status %q", c.Status),
			"Control", "Validate", "status check")
	}
	if !c.Priority.Valid() {
		return errors.WrapInvalid(
			fmt.Errorf("unknown priority %q", c.Priority),
			"Control", "Validate", "priority check")
	}
	return nil
}

// CriticalControls returns the controls with critical priority
func (f *Framework) CriticalControls() []Control {
	var out []Control
	for _, c := range f.Controls {
		if c.Priority == PriorityCritical {
			out = append(out, c)
		}
	}
	return out
}

// NonCompliantControls returns the controls with non-compliant status
func (f *Framework) NonCompliantControls() []Control {
	var out []Control
	for _, c := range f.Controls {
		if c.Status == StatusNonCompliant {
			out = append(out, c)
		}
	}
	return out
}
