package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/student-records-api/internal/models"
)

func snapshot(cgpa float64, credits int) models.SemesterSnapshot {
	return models.SemesterSnapshot{
		CumulativeCGPA:          cgpa,
		CumulativeCreditsEarned: credits,
	}
}

func TestClassifyEmptyHistory(t *testing.T) {
	assert.Equal(t, models.StatusActive, Classify(nil))
}

func TestClassifyDeansListBoundary(t *testing.T) {
	// Exactly 3.75 with exactly 12 credits qualifies.
	assert.Equal(t, models.StatusDeansList, Classify([]models.SemesterSnapshot{snapshot(3.75, 12)}))
	// Just under the CGPA bar does not.
	assert.Equal(t, models.StatusActive, Classify([]models.SemesterSnapshot{snapshot(3.74999, 12)}))
	// Under the credit bar does not.
	assert.Equal(t, models.StatusActive, Classify([]models.SemesterSnapshot{snapshot(3.9, 11)}))
}

func TestClassifyDeansListScenario(t *testing.T) {
	history := []models.SemesterSnapshot{snapshot(3.6, 9), snapshot(3.8, 15)}
	assert.Equal(t, models.StatusDeansList, Classify(history))
}

func TestClassifyProbationRequiresTwoConsecutiveLows(t *testing.T) {
	// One low semester is not probation.
	assert.Equal(t, models.StatusActive, Classify([]models.SemesterSnapshot{snapshot(1.5, 6)}))
	// Two consecutive lows are.
	history := []models.SemesterSnapshot{snapshot(1.5, 6), snapshot(1.5, 12)}
	assert.Equal(t, models.StatusProbation, Classify(history))
}

func TestClassifyProbationStrictThreshold(t *testing.T) {
	// Exactly 2.00 is not below the bar.
	history := []models.SemesterSnapshot{snapshot(2.0, 6), snapshot(2.0, 12)}
	assert.Equal(t, models.StatusActive, Classify(history))

	history = []models.SemesterSnapshot{snapshot(1.999999, 6), snapshot(1.999999, 12)}
	assert.Equal(t, models.StatusProbation, Classify(history))
}

func TestClassifyProbationNeedsLatestLow(t *testing.T) {
	// A recovery above 2.0 in the latest semester clears the trigger even if
	// earlier semesters were low.
	history := []models.SemesterSnapshot{snapshot(1.8, 6), snapshot(1.9, 12), snapshot(2.1, 18)}
	assert.Equal(t, models.StatusActive, Classify(history))
}

func TestClassifyDeansListPrecedesProbationHistory(t *testing.T) {
	// Dean's List looks only at the latest snapshot, so a historical dip
	// below 2.0 does not block it.
	history := []models.SemesterSnapshot{snapshot(1.9, 6), snapshot(1.95, 12), snapshot(3.8, 24)}
	assert.Equal(t, models.StatusDeansList, Classify(history))
}
