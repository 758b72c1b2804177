package grading

import "github.com/noah-isme/student-records-api/internal/models"

// Thresholds for the standing rules.
const (
	deansListCGPA    = 3.75
	deansListCredits = 12
	probationCGPA    = 2.0
)

// Classify derives the academic standing from a chronological CGPA history.
// It only ever proposes Active, Dean's List or Probation; administrative
// states (Suspended, Graduated) are outside its remit and callers must not
// let its result clobber them.
//
// Dean's List is evaluated against the latest snapshot only and takes
// precedence, so a student meeting it is classified Dean's List even with a
// historical dip below 2.0. Probation requires the two most recent snapshots
// both strictly below 2.0; a single low semester never triggers it.
func Classify(history []models.SemesterSnapshot) models.StatusLabel {
	if len(history) == 0 {
		return models.StatusActive
	}
	latest := history[len(history)-1]
	if latest.CumulativeCGPA >= deansListCGPA && latest.CumulativeCreditsEarned >= deansListCredits {
		return models.StatusDeansList
	}
	if latest.CumulativeCGPA < probationCGPA && len(history) >= 2 {
		previous := history[len(history)-2]
		if previous.CumulativeCGPA < probationCGPA {
			return models.StatusProbation
		}
	}
	return models.StatusActive
}
