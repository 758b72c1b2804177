package dto

// DashboardMetrics is the headline rollup shown on the dashboard landing
// view. AvgCGPA is the mean of each student's latest cumulative CGPA;
// CGPATrend is the delta between the two most recent semester averages.
type DashboardMetrics struct {
	TotalStudents  int     `json:"total_students"`
	DeansListCount int     `json:"deans_list_count"`
	ProbationCount int     `json:"probation_count"`
	AvgCGPA        float64 `json:"avg_cgpa"`
	CGPATrend      float64 `json:"cgpa_trend"`
}

// CGPATrendPoint is the mean cumulative CGPA for one (semester, year) cell,
// chronologically ordered.
type CGPATrendPoint struct {
	Label        string  `db:"label" json:"label"`
	Semester     int     `db:"semester" json:"semester"`
	Year         int     `db:"year" json:"year"`
	AvgCGPA      float64 `db:"avg_cgpa" json:"avg_cgpa"`
	StudentCount int     `db:"student_count" json:"student_count"`
}

// GradeDistributionSlice is one letter grade's share of all graded results.
type GradeDistributionSlice struct {
	Grade      string  `db:"grade" json:"grade"`
	Count      int     `db:"count" json:"count"`
	Percentage float64 `db:"percentage" json:"percentage"`
}

// Insight kinds.
const (
	InsightPositive = "positive"
	InsightWarning  = "warning"
	InsightCritical = "critical"
)

// Insight is a rule-based natural language observation. Informational only;
// never consumed downstream.
type Insight struct {
	Type           string `json:"type"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	ActionRequired bool   `json:"action_required,omitempty"`
}

// AtRiskStudent is a dashboard row for a student flagged as needing
// intervention, with their latest cumulative CGPA attached.
type AtRiskStudent struct {
	ID         string   `db:"id" json:"id"`
	FirstName  string   `db:"first_name" json:"first_name"`
	LastName   string   `db:"last_name" json:"last_name"`
	Programme  string   `db:"programme" json:"programme"`
	Semester   int      `db:"current_semester" json:"current_semester"`
	Status     string   `db:"status" json:"status"`
	LatestCGPA *float64 `db:"latest_cgpa" json:"latest_cgpa,omitempty"`
	OpenAlerts int      `db:"open_alerts" json:"open_alerts"`
}

// ModuleFailureRate is the failure share for one module over its graded
// attempts, used by the insights view.
type ModuleFailureRate struct {
	ModuleCode  string  `db:"module_code" json:"module_code"`
	ModuleName  string  `db:"module_name" json:"module_name"`
	Attempts    int     `db:"attempts" json:"attempts"`
	FailureRate float64 `db:"failure_rate" json:"failure_rate"`
}

// ImportReport summarises a CSV student import.
type ImportReport struct {
	Success int      `json:"success"`
	Errors  []string `json:"errors"`
}
