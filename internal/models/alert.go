package models

import "time"

// Alert severities.
const (
	AlertSeverityLow      = "low"
	AlertSeverityMedium   = "medium"
	AlertSeverityHigh     = "high"
	AlertSeverityCritical = "critical"
)

// AcademicAlert flags a student condition requiring attention (probation,
// repeated failure, at-risk).
type AcademicAlert struct {
	ID         string     `db:"id" json:"id"`
	StudentID  string     `db:"student_id" json:"student_id"`
	AlertType  string     `db:"alert_type" json:"alert_type"`
	Message    string     `db:"message" json:"message"`
	Severity   string     `db:"severity" json:"severity"`
	IsResolved bool       `db:"is_resolved" json:"is_resolved"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}
