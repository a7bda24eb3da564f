package compliance

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mockNow = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

func TestGenerateFrameworks_Count(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	assert.Nil(t, GenerateFrameworks(rng, mockNow, 0))
	assert.Nil(t, GenerateFrameworks(rng, mockNow, -1))
	assert.Len(t, GenerateFrameworks(rng, mockNow, 3), 3)

	// Count is capped at the catalog size
	assert.Len(t, GenerateFrameworks(rng, mockNow, 50), len(mockCatalog))
}

func TestGenerateFrameworks_ProducesValidSnapshots(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	frameworks := GenerateFrameworks(rng, mockNow, 6)

	seen := make(map[string]bool)
	for _, fw := range frameworks {
		require.NoError(t, fw.Validate(), "framework %s", fw.Name)
		assert.False(t, seen[fw.ID], "framework ids are unique")
		seen[fw.ID] = true

		assert.NotEmpty(t, fw.Controls)
		assert.GreaterOrEqual(t, fw.OverallScore, 0.0)
		assert.LessOrEqual(t, fw.OverallScore, 100.0)

		for _, c := range fw.Controls {
			assert.Equal(t, fw.ID, c.FrameworkID)
			if c.Status == StatusNonCompliant {
				require.NotNil(t, c.DueDate, "non-compliant controls carry a due date")
			}
		}
	}
}

func TestGenerateFrameworks_Deterministic(t *testing.T) {
	a := GenerateFrameworks(rand.New(rand.NewSource(7)), mockNow, 4)
	b := GenerateFrameworks(rand.New(rand.NewSource(7)), mockNow, 4)

	require.Len(t, b, len(a))
	for i := range a {
		// IDs are random uuids; everything else repeats for equal seeds
		assert.Equal(t, a[i].Name, b[i].Name)
		assert.Equal(t, a[i].OverallScore, b[i].OverallScore)
		assert.Len(t, b[i].Controls, len(a[i].Controls))
	}
}

func TestStatusForScore(t *testing.T) {
	assert.Equal(t, StatusCompliant, statusForScore(95))
	assert.Equal(t, StatusCompliant, statusForScore(90))
	assert.Equal(t, StatusPartiallyCompliant, statusForScore(75))
	assert.Equal(t, StatusNonCompliant, statusForScore(40))
	assert.Equal(t, StatusPending, statusForScore(0))
}
