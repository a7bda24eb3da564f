package health

import (
	"fmt"
	"strings"
	"time"
)

// MetricStatus buckets a metric value by severity
type MetricStatus string

// Possible metric statuses
const (
	MetricCritical MetricStatus = "critical"
	MetricWarning  MetricStatus = "warning"
	MetricNormal   MetricStatus = "normal"
	MetricInfo     MetricStatus = "info"
)

// Severity represents the urgency of an alert
type Severity string

// Possible alert severities
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// AlertStatus represents the lifecycle state of an alert
type AlertStatus string

// Possible alert statuses
const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
)

// Metric is a single derived health measurement. Metrics are immutable
// once created and appended to a bounded history.
type Metric struct {
	ID        string            `json:"id"` // derived from name + timestamp
	Name      string            `json:"name"`
	Timestamp time.Time         `json:"timestamp"`
	Category  string            `json:"category"`
	Value     float64           `json:"value"`
	Unit      string            `json:"unit"`
	Status    MetricStatus      `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Alert is a derived health finding requiring attention. Alerts carry
// the IDs of the items that triggered them.
type Alert struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Severity      Severity          `json:"severity"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Source        string            `json:"source"`
	AffectedItems []string          `json:"affected_items,omitempty"`
	Status        AlertStatus       `json:"status"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// metricID derives a stable identifier from the metric name and the
// generation timestamp.
func metricID(name string, ts time.Time) string {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	return fmt.Sprintf("%s-%d", slug, ts.UnixMilli())
}
