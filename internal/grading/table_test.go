package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointForGrade(t *testing.T) {
	cases := []struct {
		grade string
		point float64
	}{
		{"A+", 4.0}, {"A", 4.0}, {"A-", 3.7},
		{"B+", 3.3}, {"B", 3.0}, {"B-", 2.7},
		{"C+", 2.3}, {"C", 2.0}, {"C-", 1.7},
		{"D+", 1.3}, {"D", 1.0}, {"F", 0.0}, {"XF", 0.0},
	}
	for _, tc := range cases {
		point, ok := PointForGrade(tc.grade)
		assert.True(t, ok, tc.grade)
		assert.Equal(t, tc.point, point, tc.grade)
	}
}

func TestPointForGradeUnknown(t *testing.T) {
	_, ok := PointForGrade("E")
	assert.False(t, ok)
	_, ok = PointForGrade("")
	assert.False(t, ok)
}

func TestKnownGradesCoversTable(t *testing.T) {
	grades := KnownGrades()
	assert.Len(t, grades, len(gradePoints))
	for _, g := range grades {
		_, ok := gradePoints[g]
		assert.True(t, ok, g)
	}
}
