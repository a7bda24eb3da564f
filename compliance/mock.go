package compliance

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Catalog of framework identities used by the mock generator. Versions
// track the published revisions of each standard.
var mockCatalog = []struct {
	name    string
	version string
	prefix  string
}{
	{"SOC 2 Type II", "2017", "CC"},
	{"ISO 27001", "2022", "A"},
	{"NIST CSF", "2.0", "PR"},
	{"PCI DSS", "4.0", "REQ"},
	{"HIPAA Security Rule", "2013", "164"},
	{"GDPR", "2018", "ART"},
}

var mockCategories = []string{
	"Access Control",
	"Data Protection",
	"Incident Response",
	"Network Security",
	"Risk Management",
	"Vendor Management",
}

var mockOwners = []string{
	"security-team",
	"platform-team",
	"grc-team",
	"it-ops",
}

// GenerateFrameworks produces count mock framework snapshots for demos
// and tests. Both the random source and the reference time are explicit
// so callers control determinism.
func GenerateFrameworks(rng *rand.Rand, now time.Time, count int) []Framework {
	if count <= 0 {
		return nil
	}
	if count > len(mockCatalog) {
		count = len(mockCatalog)
	}

	frameworks := make([]Framework, 0, count)
	for i := 0; i < count; i++ {
		entry := mockCatalog[i]
		fw := Framework{
			ID:          uuid.NewString(),
			Name:        entry.name,
			Version:     entry.version,
			LastUpdated: now.Add(-time.Duration(rng.Intn(72)) * time.Hour),
		}

		controlCount := 8 + rng.Intn(13)
		fw.Controls = make([]Control, 0, controlCount)
		var scoreSum float64
		for j := 0; j < controlCount; j++ {
			c := generateControl(rng, now, fw.ID, entry.prefix, j+1)
			scoreSum += c.Score
			fw.Controls = append(fw.Controls, c)
		}

		fw.OverallScore = float64(int(scoreSum/float64(controlCount) + 0.5))
		fw.Status = statusForScore(fw.OverallScore)

		if rng.Intn(2) == 0 {
			audit := now.Add(time.Duration(30+rng.Intn(150)) * 24 * time.Hour)
			fw.NextAudit = &audit
		}

		frameworks = append(frameworks, fw)
	}
	return frameworks
}

func generateControl(rng *rand.Rand, now time.Time, frameworkID, prefix string, seq int) Control {
	c := Control{
		ID:          uuid.NewString(),
		FrameworkID: frameworkID,
		Category:    mockCategories[rng.Intn(len(mockCategories))],
		Code:        fmt.Sprintf("%s-%d.%d", prefix, 1+seq/10, seq%10),
		Priority:    mockPriority(rng),
		Owner:       mockOwners[rng.Intn(len(mockOwners))],
	}

	// Weighted toward compliant so mock dashboards look plausible
	switch rng.Intn(10) {
	case 0, 1:
		c.Status = StatusNonCompliant
		c.Score = float64(rng.Intn(50))
	case 2, 3:
		c.Status = StatusPartiallyCompliant
		c.Score = 50 + float64(rng.Intn(30))
	case 4:
		c.Status = StatusPending
		c.Score = 0
	default:
		c.Status = StatusCompliant
		c.Score = 80 + float64(rng.Intn(21))
	}

	if c.Status == StatusNonCompliant {
		if rng.Intn(3) > 0 {
			c.RemediationPlan = fmt.Sprintf("Remediate %s finding %s", c.Category, c.Code)
		}
		due := now.Add(time.Duration(rng.Intn(30)-5) * 24 * time.Hour)
		c.DueDate = &due
	}

	return c
}

func mockPriority(rng *rand.Rand) Priority {
	switch rng.Intn(10) {
	case 0:
		return PriorityCritical
	case 1, 2:
		return PriorityHigh
	case 3, 4, 5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func statusForScore(score float64) Status {
	switch {
	case score >= 90:
		return StatusCompliant
	case score >= 60:
		return StatusPartiallyCompliant
	case score > 0:
		return StatusNonCompliant
	default:
		return StatusPending
	}
}
