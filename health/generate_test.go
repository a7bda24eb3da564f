package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/secwatch/compliance"
)

var testNow = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

func framework(id string, score float64, controls ...compliance.Control) compliance.Framework {
	for i := range controls {
		controls[i].FrameworkID = id
	}
	return compliance.Framework{
		ID:           id,
		Name:         "Framework " + id,
		Version:      "1.0",
		Controls:     controls,
		OverallScore: score,
		Status:       compliance.StatusPartiallyCompliant,
		LastUpdated:  testNow,
	}
}

func control(id string, status compliance.Status, priority compliance.Priority) compliance.Control {
	return compliance.Control{
		ID:       id,
		Category: "Access Control",
		Code:     "TST-" + id,
		Status:   status,
		Score:    50,
		Priority: priority,
	}
}

func findMetric(t *testing.T, metrics []Metric, name string) Metric {
	t.Helper()
	for _, m := range metrics {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("metric %q not found", name)
	return Metric{}
}

func alertsOfType(alerts []Alert, alertType string) []Alert {
	var out []Alert
	for _, a := range alerts {
		if a.Metadata["type"] == alertType {
			out = append(out, a)
		}
	}
	return out
}

func TestGenerateMetrics_EmptyInput(t *testing.T) {
	assert.Empty(t, GenerateMetrics(testNow, nil))
	assert.Empty(t, GenerateMetrics(testNow, []compliance.Framework{}))
}

func TestGenerateMetrics_OverallScoreIsRoundedMean(t *testing.T) {
	frameworks := []compliance.Framework{
		framework("a", 80),
		framework("b", 71),
	}

	metrics := GenerateMetrics(testNow, frameworks)
	overall := findMetric(t, metrics, "Overall Compliance Score")

	// (80+71)/2 = 75.5, rounds to 76
	assert.Equal(t, 76.0, overall.Value)
	assert.Equal(t, "percent", overall.Unit)
	assert.Equal(t, "2", overall.Metadata["framework_count"])
}

func TestGenerateMetrics_ScoreStatusBuckets(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		status MetricStatus
	}{
		{"critical below 50", 49, MetricCritical},
		{"warning at 50", 50, MetricWarning},
		{"warning below 70", 69, MetricWarning},
		{"normal at 70", 70, MetricNormal},
		{"normal below 90", 89, MetricNormal},
		{"info at 90", 90, MetricInfo},
		{"info at 100", 100, MetricInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := GenerateMetrics(testNow, []compliance.Framework{framework("a", tt.score)})
			overall := findMetric(t, metrics, "Overall Compliance Score")
			assert.Equal(t, tt.status, overall.Status)

			perFramework := findMetric(t, metrics, "Framework a Score")
			assert.Equal(t, tt.status, perFramework.Status)
		})
	}
}

func TestGenerateMetrics_VacuousCasesAre100(t *testing.T) {
	// No controls at all: both percentage metrics are vacuously 100
	metrics := GenerateMetrics(testNow, []compliance.Framework{framework("a", 75)})

	critical := findMetric(t, metrics, "Framework a Critical Controls Compliance")
	assert.Equal(t, 100.0, critical.Value)
	assert.Equal(t, MetricInfo, critical.Status)

	remediation := findMetric(t, metrics, "Framework a Remediation Coverage")
	assert.Equal(t, 100.0, remediation.Value)
	assert.Equal(t, MetricInfo, remediation.Status)
}

func TestGenerateMetrics_CriticalControlsCompliance(t *testing.T) {
	fw := framework("a", 75,
		control("c1", compliance.StatusCompliant, compliance.PriorityCritical),
		control("c2", compliance.StatusNonCompliant, compliance.PriorityCritical),
		control("c3", compliance.StatusCompliant, compliance.PriorityCritical),
		control("c4", compliance.StatusNonCompliant, compliance.PriorityCritical),
		// Non-critical controls must not influence the metric
		control("c5", compliance.StatusNonCompliant, compliance.PriorityLow),
	)

	metrics := GenerateMetrics(testNow, []compliance.Framework{fw})
	m := findMetric(t, metrics, "Framework a Critical Controls Compliance")

	assert.Equal(t, 50.0, m.Value) // 2 of 4 critical controls compliant
	assert.Equal(t, MetricWarning, m.Status)
	assert.Equal(t, "4", m.Metadata["critical_controls"])
}

func TestGenerateMetrics_CriticalControlsBuckets(t *testing.T) {
	tests := []struct {
		name      string
		compliant int
		total     int
		status    MetricStatus
	}{
		{"critical below 50", 1, 3, MetricCritical},  // 33%
		{"warning below 80", 3, 4, MetricWarning},    // 75%
		{"normal below 95", 9, 10, MetricNormal},     // 90%
		{"info at 100", 4, 4, MetricInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var controls []compliance.Control
			for i := 0; i < tt.total; i++ {
				status := compliance.StatusNonCompliant
				if i < tt.compliant {
					status = compliance.StatusCompliant
				}
				controls = append(controls, control(string(rune('a'+i)), status, compliance.PriorityCritical))
			}

			metrics := GenerateMetrics(testNow, []compliance.Framework{framework("fw", 75, controls...)})
			m := findMetric(t, metrics, "Framework fw Critical Controls Compliance")
			assert.Equal(t, tt.status, m.Status)
		})
	}
}

func TestGenerateMetrics_RemediationCoverage(t *testing.T) {
	fw := framework("a", 75,
		control("c1", compliance.StatusNonCompliant, compliance.PriorityHigh),
		control("c2", compliance.StatusNonCompliant, compliance.PriorityHigh),
	)
	fw.Controls[0].RemediationPlan = "Rotate credentials"
	// c2 has no plan; whitespace-only plans must not count
	fw.Controls[1].RemediationPlan = "   "

	metrics := GenerateMetrics(testNow, []compliance.Framework{fw})
	m := findMetric(t, metrics, "Framework a Remediation Coverage")

	assert.Equal(t, 50.0, m.Value)
	assert.Equal(t, "2", m.Metadata["non_compliant_controls"])
}

func TestGenerateMetrics_IDDerivedFromNameAndTimestamp(t *testing.T) {
	metrics := GenerateMetrics(testNow, []compliance.Framework{framework("a", 75)})
	overall := findMetric(t, metrics, "Overall Compliance Score")

	assert.Contains(t, overall.ID, "overall-compliance-score")
	assert.Contains(t, overall.ID, "1787572800000") // testNow in unix millis
	assert.Equal(t, testNow, overall.Timestamp)
}

func TestGenerateAlerts_ScoreBucketsAreMutuallyExclusive(t *testing.T) {
	t.Run("below 50 fires only critical", func(t *testing.T) {
		alerts := GenerateAlerts(testNow, []compliance.Framework{framework("a", 45)})
		scoreAlerts := alertsOfType(alerts, AlertTypeScore)

		require.Len(t, scoreAlerts, 1)
		assert.Equal(t, SeverityCritical, scoreAlerts[0].Severity)
		assert.Equal(t, []string{"a"}, scoreAlerts[0].AffectedItems)
	})

	t.Run("between 50 and 70 fires only high", func(t *testing.T) {
		alerts := GenerateAlerts(testNow, []compliance.Framework{framework("a", 55)})
		scoreAlerts := alertsOfType(alerts, AlertTypeScore)

		require.Len(t, scoreAlerts, 1)
		assert.Equal(t, SeverityHigh, scoreAlerts[0].Severity)
	})

	t.Run("at 70 and above fires nothing", func(t *testing.T) {
		alerts := GenerateAlerts(testNow, []compliance.Framework{framework("a", 70)})
		assert.Empty(t, alertsOfType(alerts, AlertTypeScore))
	})

	t.Run("boundary at exactly 50 is high", func(t *testing.T) {
		alerts := GenerateAlerts(testNow, []compliance.Framework{framework("a", 50)})
		scoreAlerts := alertsOfType(alerts, AlertTypeScore)

		require.Len(t, scoreAlerts, 1)
		assert.Equal(t, SeverityHigh, scoreAlerts[0].Severity)
	})
}

func TestGenerateAlerts_CriticalControlsAggregatedPerFramework(t *testing.T) {
	fw := framework("a", 45,
		control("c1", compliance.StatusNonCompliant, compliance.PriorityCritical),
		control("c2", compliance.StatusNonCompliant, compliance.PriorityCritical),
		control("c3", compliance.StatusCompliant, compliance.PriorityCritical),
	)

	alerts := GenerateAlerts(testNow, []compliance.Framework{fw})

	// Low score plus failing critical controls: at least two alerts
	scoreAlerts := alertsOfType(alerts, AlertTypeScore)
	require.Len(t, scoreAlerts, 1)
	assert.Equal(t, SeverityCritical, scoreAlerts[0].Severity)

	ctrlAlerts := alertsOfType(alerts, AlertTypeCriticalControls)
	require.Len(t, ctrlAlerts, 1)
	assert.Equal(t, SeverityCritical, ctrlAlerts[0].Severity)
	assert.ElementsMatch(t, []string{"c1", "c2"}, ctrlAlerts[0].AffectedItems)
}

func TestGenerateAlerts_DueSoonWindow(t *testing.T) {
	inThreeDays := testNow.Add(3 * 24 * time.Hour)
	inTenDays := testNow.Add(10 * 24 * time.Hour)
	overdue := testNow.Add(-2 * 24 * time.Hour)

	c1 := control("c1", compliance.StatusNonCompliant, compliance.PriorityHigh)
	c1.DueDate = &inThreeDays
	c2 := control("c2", compliance.StatusNonCompliant, compliance.PriorityHigh)
	c2.DueDate = &inTenDays
	c3 := control("c3", compliance.StatusNonCompliant, compliance.PriorityHigh)
	c3.DueDate = &overdue
	// Compliant controls are excluded even with a near due date
	c4 := control("c4", compliance.StatusCompliant, compliance.PriorityHigh)
	c4.DueDate = &inThreeDays

	alerts := GenerateAlerts(testNow, []compliance.Framework{framework("a", 90, c1, c2, c3, c4)})
	dueAlerts := alertsOfType(alerts, AlertTypeDueDate)

	require.Len(t, dueAlerts, 1)
	assert.Equal(t, SeverityHigh, dueAlerts[0].Severity)
	assert.ElementsMatch(t, []string{"c1", "c3"}, dueAlerts[0].AffectedItems)
}

func TestGenerateAlerts_HealthyFrameworkProducesNone(t *testing.T) {
	fw := framework("a", 95,
		control("c1", compliance.StatusCompliant, compliance.PriorityCritical),
	)
	assert.Empty(t, GenerateAlerts(testNow, []compliance.Framework{fw}))
}

func TestGenerateAlerts_AllActiveWithSource(t *testing.T) {
	alerts := GenerateAlerts(testNow, []compliance.Framework{framework("a", 45)})
	require.NotEmpty(t, alerts)
	for _, a := range alerts {
		assert.Equal(t, AlertActive, a.Status)
		assert.Equal(t, AlertSource, a.Source)
		assert.Equal(t, testNow, a.Timestamp)
		assert.NotEmpty(t, a.ID)
	}
}
