package health

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c360/secwatch/compliance"
)

// AlertSource identifies alerts produced by the compliance generators.
const AlertSource = "compliance-health"

// Alert type tags carried in alert metadata so consumers can distinguish
// findings without parsing titles.
const (
	AlertTypeScore            = "score"
	AlertTypeCriticalControls = "critical-controls"
	AlertTypeDueDate          = "due-date"
)

// DueSoonWindow is how far ahead the due-date check looks. Overdue
// controls also fall inside the window.
const DueSoonWindow = 7 * 24 * time.Hour

// scoreStatus buckets a framework score: <50 critical, <70 warning,
// <90 normal, otherwise info.
func scoreStatus(score float64) MetricStatus {
	switch {
	case score < 50:
		return MetricCritical
	case score < 70:
		return MetricWarning
	case score < 90:
		return MetricNormal
	default:
		return MetricInfo
	}
}

// complianceStatus buckets a compliance percentage: <50 critical,
// <80 warning, <95 normal, otherwise info.
func complianceStatus(pct float64) MetricStatus {
	switch {
	case pct < 50:
		return MetricCritical
	case pct < 80:
		return MetricWarning
	case pct < 95:
		return MetricNormal
	default:
		return MetricInfo
	}
}

// GenerateMetrics folds framework snapshots into derived health metrics:
// the overall compliance score, a per-framework score, per-framework
// critical-control compliance, and per-framework remediation coverage.
// The reference time is explicit so output is deterministic under test.
func GenerateMetrics(now time.Time, frameworks []compliance.Framework) []Metric {
	if len(frameworks) == 0 {
		return nil
	}

	metrics := make([]Metric, 0, 1+3*len(frameworks))

	var scoreSum float64
	for _, fw := range frameworks {
		scoreSum += fw.OverallScore
	}
	overall := math.Round(scoreSum / float64(len(frameworks)))

	metrics = append(metrics, Metric{
		ID:        metricID("overall-compliance-score", now),
		Name:      "Overall Compliance Score",
		Timestamp: now,
		Category:  "compliance",
		Value:     overall,
		Unit:      "percent",
		Status:    scoreStatus(overall),
		Metadata: map[string]string{
			"framework_count": fmt.Sprintf("%d", len(frameworks)),
		},
	})

	for _, fw := range frameworks {
		metrics = append(metrics,
			frameworkScoreMetric(now, fw),
			criticalControlsMetric(now, fw),
			remediationCoverageMetric(now, fw),
		)
	}

	return metrics
}

func frameworkScoreMetric(now time.Time, fw compliance.Framework) Metric {
	return Metric{
		ID:        metricID(fw.Name+"-score", now),
		Name:      fw.Name + " Score",
		Timestamp: now,
		Category:  "compliance",
		Value:     fw.OverallScore,
		Unit:      "percent",
		Status:    scoreStatus(fw.OverallScore),
		Metadata: map[string]string{
			"framework_id":   fw.ID,
			"framework_name": fw.Name,
		},
	}
}

// criticalControlsMetric measures the share of critical-priority controls
// that are compliant. A framework with no critical controls is vacuously
// at 100.
func criticalControlsMetric(now time.Time, fw compliance.Framework) Metric {
	critical := fw.CriticalControls()

	pct := 100.0
	if len(critical) > 0 {
		compliant := 0
		for _, c := range critical {
			if c.Status == compliance.StatusCompliant {
				compliant++
			}
		}
		pct = math.Round(float64(compliant) / float64(len(critical)) * 100)
	}

	return Metric{
		ID:        metricID(fw.Name+"-critical-controls", now),
		Name:      fw.Name + " Critical Controls Compliance",
		Timestamp: now,
		Category:  "compliance",
		Value:     pct,
		Unit:      "percent",
		Status:    complianceStatus(pct),
		Metadata: map[string]string{
			"framework_id":      fw.ID,
			"framework_name":    fw.Name,
			"critical_controls": fmt.Sprintf("%d", len(critical)),
		},
	}
}

// remediationCoverageMetric measures the share of non-compliant controls
// that carry a remediation plan. A framework with no non-compliant
// controls is vacuously at 100.
func remediationCoverageMetric(now time.Time, fw compliance.Framework) Metric {
	nonCompliant := fw.NonCompliantControls()

	pct := 100.0
	if len(nonCompliant) > 0 {
		planned := 0
		for _, c := range nonCompliant {
			if strings.TrimSpace(c.RemediationPlan) != "" {
				planned++
			}
		}
		pct = math.Round(float64(planned) / float64(len(nonCompliant)) * 100)
	}

	return Metric{
		ID:        metricID(fw.Name+"-remediation-coverage", now),
		Name:      fw.Name + " Remediation Coverage",
		Timestamp: now,
		Category:  "compliance",
		Value:     pct,
		Unit:      "percent",
		Status:    complianceStatus(pct),
		Metadata: map[string]string{
			"framework_id":           fw.ID,
			"framework_name":         fw.Name,
			"non_compliant_controls": fmt.Sprintf("%d", len(nonCompliant)),
		},
	}
}

// GenerateAlerts folds framework snapshots into health alerts. Per
// framework it emits at most one score alert (critical below 50, high
// below 70, never both), one alert aggregating critical-priority
// non-compliant controls, and one alert aggregating non-compliant
// controls due within DueSoonWindow of now.
func GenerateAlerts(now time.Time, frameworks []compliance.Framework) []Alert {
	var alerts []Alert

	for _, fw := range frameworks {
		if a, ok := scoreAlert(now, fw); ok {
			alerts = append(alerts, a)
		}
		if a, ok := criticalControlsAlert(now, fw); ok {
			alerts = append(alerts, a)
		}
		if a, ok := dueSoonAlert(now, fw); ok {
			alerts = append(alerts, a)
		}
	}

	return alerts
}

// scoreAlert fires on low framework scores. The buckets are mutually
// exclusive: a score below 50 yields only the critical alert.
func scoreAlert(now time.Time, fw compliance.Framework) (Alert, bool) {
	var severity Severity
	switch {
	case fw.OverallScore < 50:
		severity = SeverityCritical
	case fw.OverallScore < 70:
		severity = SeverityHigh
	default:
		return Alert{}, false
	}

	return Alert{
		ID:        uuid.NewString(),
		Timestamp: now,
		Severity:  severity,
		Title:     fmt.Sprintf("Low compliance score for %s", fw.Name),
		Description: fmt.Sprintf("%s is scoring %.0f%%, below the acceptable threshold",
			fw.Name, fw.OverallScore),
		Source:        AlertSource,
		AffectedItems: []string{fw.ID},
		Status:        AlertActive,
		Metadata: map[string]string{
			"type":           AlertTypeScore,
			"framework_id":   fw.ID,
			"framework_name": fw.Name,
			"score":          fmt.Sprintf("%.0f", fw.OverallScore),
		},
	}, true
}

// criticalControlsAlert aggregates every critical-priority non-compliant
// control of a framework into a single alert.
func criticalControlsAlert(now time.Time, fw compliance.Framework) (Alert, bool) {
	var affected []string
	for _, c := range fw.Controls {
		if c.Priority == compliance.PriorityCritical && c.Status == compliance.StatusNonCompliant {
			affected = append(affected, c.ID)
		}
	}
	if len(affected) == 0 {
		return Alert{}, false
	}

	return Alert{
		ID:        uuid.NewString(),
		Timestamp: now,
		Severity:  SeverityCritical,
		Title:     fmt.Sprintf("Critical controls failing in %s", fw.Name),
		Description: fmt.Sprintf("%d critical-priority controls in %s are non-compliant",
			len(affected), fw.Name),
		Source:        AlertSource,
		AffectedItems: affected,
		Status:        AlertActive,
		Metadata: map[string]string{
			"type":           AlertTypeCriticalControls,
			"framework_id":   fw.ID,
			"framework_name": fw.Name,
			"control_count":  fmt.Sprintf("%d", len(affected)),
		},
	}, true
}

// dueSoonAlert aggregates non-compliant controls whose remediation due
// date falls within DueSoonWindow of now. Overdue controls are included.
func dueSoonAlert(now time.Time, fw compliance.Framework) (Alert, bool) {
	cutoff := now.Add(DueSoonWindow)

	var affected []string
	for _, c := range fw.Controls {
		if c.Status != compliance.StatusNonCompliant || c.DueDate == nil {
			continue
		}
		if c.DueDate.Before(cutoff) {
			affected = append(affected, c.ID)
		}
	}
	if len(affected) == 0 {
		return Alert{}, false
	}

	return Alert{
		ID:        uuid.NewString(),
		Timestamp: now,
		Severity:  SeverityHigh,
		Title:     fmt.Sprintf("Remediation deadlines approaching in %s", fw.Name),
		Description: fmt.Sprintf("%d non-compliant controls in %s are due within 7 days",
			len(affected), fw.Name),
		Source:        AlertSource,
		AffectedItems: affected,
		Status:        AlertActive,
		Metadata: map[string]string{
			"type":           AlertTypeDueDate,
			"framework_id":   fw.ID,
			"framework_name": fw.Name,
			"control_count":  fmt.Sprintf("%d", len(affected)),
		},
	}, true
}
