package models

import "time"

// CgpaRecord is the persisted per-semester CGPA snapshot for a student.
// Unique on (student_id, semester, year); recomputation upserts in place.
type CgpaRecord struct {
	ID                    string    `db:"id" json:"id"`
	StudentID             string    `db:"student_id" json:"student_id"`
	Semester              int       `db:"semester" json:"semester"`
	Year                  int       `db:"year" json:"year"`
	SemesterGPA           float64   `db:"semester_gpa" json:"semester_gpa"`
	CumulativeCGPA        float64   `db:"cumulative_cgpa" json:"cumulative_cgpa"`
	TotalCreditsEarned    int       `db:"total_credits_earned" json:"total_credits_earned"`
	TotalCreditsAttempted int       `db:"total_credits_attempted" json:"total_credits_attempted"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}

// SemesterSnapshot is one semester's computed standing within a student's
// chronological CGPA history. The last snapshot reflects the student's
// current figures.
type SemesterSnapshot struct {
	Semester                   int     `json:"semester"`
	Year                       int     `json:"year"`
	SemesterGPA                float64 `json:"semester_gpa"`
	CumulativeCGPA             float64 `json:"cumulative_cgpa"`
	CumulativeCreditsEarned    int     `json:"cumulative_credits_earned"`
	CumulativeCreditsAttempted int     `json:"cumulative_credits_attempted"`
}
