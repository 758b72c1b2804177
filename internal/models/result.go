package models

import "time"

// ResultStatus is the completion state of a module attempt.
type ResultStatus string

const (
	ResultCompleted      ResultStatus = "Completed"
	ResultInProgress     ResultStatus = "In Progress"
	ResultFailed         ResultStatus = "Failed"
	ResultExempted       ResultStatus = "Exempted"
	ResultCreditTransfer ResultStatus = "Credit Transfer"
)

// Valid reports whether the status is a known value.
func (s ResultStatus) Valid() bool {
	switch s {
	case ResultCompleted, ResultInProgress, ResultFailed, ResultExempted, ResultCreditTransfer:
		return true
	}
	return false
}

// Result records one attempt at a module by a student. Grade and GradePoint
// are nil while the module is in progress.
type Result struct {
	ID            string       `db:"id" json:"id"`
	StudentID     string       `db:"student_id" json:"student_id"`
	ModuleID      string       `db:"module_id" json:"module_id"`
	Semester      int          `db:"semester" json:"semester"`
	Year          int          `db:"year" json:"year"`
	Grade         *string      `db:"grade" json:"grade,omitempty"`
	GradePoint    *float64     `db:"grade_point" json:"grade_point,omitempty"`
	Status        ResultStatus `db:"status" json:"status"`
	AttemptNumber int          `db:"attempt_number" json:"attempt_number"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// Qualifies reports whether the result contributes to CGPA: only completed
// attempts with a recorded grade point count.
func (r Result) Qualifies() bool {
	return r.Status == ResultCompleted && r.GradePoint != nil
}

// ResultWithModule joins a result to its module for credit lookups and
// display.
type ResultWithModule struct {
	Result
	ModuleCode    string `db:"module_code" json:"module_code"`
	ModuleName    string `db:"module_name" json:"module_name"`
	ModuleCredits int    `db:"module_credits" json:"module_credits"`
}
