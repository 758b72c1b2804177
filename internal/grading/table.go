// Package grading holds the pure computation core: the grade point table,
// the per-semester CGPA aggregator and the academic standing classifier.
// Nothing here touches storage and nothing here can fail on well-typed
// input.
package grading

// gradePoints maps letter grades onto the 4.0 scale.
var gradePoints = map[string]float64{
	"A+": 4.0,
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"F":  0.0,
	"XF": 0.0,
}

// PointForGrade returns the grade point value for a letter grade. Unknown
// grades report ok=false and contribute nothing: an unrecognised grade is
// ungraded, not zero.
func PointForGrade(grade string) (float64, bool) {
	point, ok := gradePoints[grade]
	return point, ok
}

// KnownGrades lists the letter grades in rank order, best first. Used by the
// grade distribution view to produce a stable ordering.
func KnownGrades() []string {
	return []string{"A+", "A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "F", "XF"}
}
