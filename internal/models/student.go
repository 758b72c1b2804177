package models

import "time"

// StatusLabel classifies a student's academic standing. Active, Dean's List
// and Probation are derived by reconciliation; Suspended and Graduated are
// administrative states set outside the computation and never overwritten by
// it.
type StatusLabel string

const (
	StatusActive    StatusLabel = "Active"
	StatusDeansList StatusLabel = "Dean's List"
	StatusProbation StatusLabel = "Probation"
	StatusSuspended StatusLabel = "Suspended"
	StatusGraduated StatusLabel = "Graduated"
)

// Administrative reports whether the label is owned by administrators rather
// than the reconciler.
func (s StatusLabel) Administrative() bool {
	return s == StatusSuspended || s == StatusGraduated
}

// Valid reports whether the label is a known status value.
func (s StatusLabel) Valid() bool {
	switch s {
	case StatusActive, StatusDeansList, StatusProbation, StatusSuspended, StatusGraduated:
		return true
	}
	return false
}

// Student represents a learner registered on a programme. The ID is
// externally assigned (registry number), not generated.
type Student struct {
	ID              string      `db:"id" json:"id"`
	FirstName       string      `db:"first_name" json:"first_name"`
	LastName        string      `db:"last_name" json:"last_name"`
	Email           string      `db:"email" json:"email"`
	Programme       string      `db:"programme" json:"programme"`
	IntakeYear      int         `db:"intake_year" json:"intake_year"`
	CurrentSemester int         `db:"current_semester" json:"current_semester"`
	Status          StatusLabel `db:"status" json:"status"`
	ProfileImageURL *string     `db:"profile_image_url" json:"profile_image_url,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
// Default ordering is created_at descending.
type StudentFilter struct {
	Programme string
	Semester  int
	Status    string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentDetail combines a student with their results, CGPA history, open
// alerts and the derived credit figures used by the dashboard.
type StudentDetail struct {
	Student
	Results            []ResultWithModule `json:"results"`
	CgpaRecords        []CgpaRecord       `json:"cgpa_records"`
	Alerts             []AcademicAlert    `json:"alerts"`
	CurrentCGPA        float64            `json:"current_cgpa"`
	TotalCreditsEarned int                `json:"total_credits_earned"`
	RemainingCredits   int                `json:"remaining_credits"`
	SemestersLeft      int                `json:"semesters_left"`
}

// ProgrammeCreditTarget is the credit total required to graduate; the
// derived remaining-credit figures are computed against it.
const ProgrammeCreditTarget = 120

// CreditsPerSemester is the nominal full-time credit load used to estimate
// semesters left.
const CreditsPerSemester = 18

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
