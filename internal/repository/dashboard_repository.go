package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
)

// DashboardRepository runs the aggregate queries behind the dashboard
// rollups. All reads; reconciliation owns the writes these queries observe.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// CountStudents returns the total number of registered students.
func (r *DashboardRepository) CountStudents(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of students with the given status label.
func (r *DashboardRepository) CountByStatus(ctx context.Context, status models.StatusLabel) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM students WHERE status = $1", status); err != nil {
		return 0, fmt.Errorf("count by status: %w", err)
	}
	return count, nil
}

// AvgLatestCGPA returns the mean of each student's most recent cumulative
// CGPA. Students with no CGPA history are excluded from the average.
func (r *DashboardRepository) AvgLatestCGPA(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(AVG(latest.cumulative_cgpa), 0)
        FROM (
            SELECT DISTINCT ON (student_id) cumulative_cgpa
            FROM cgpa_records
            ORDER BY student_id, year DESC, semester DESC
        ) latest`
	var avg float64
	if err := r.db.GetContext(ctx, &avg, query); err != nil {
		return 0, fmt.Errorf("avg cgpa: %w", err)
	}
	return avg, nil
}

// TrendPoints returns the mean cumulative CGPA per (semester, year) in
// chronological order, capped at the most recent limit cells.
func (r *DashboardRepository) TrendPoints(ctx context.Context, limit int) ([]dto.CGPATrendPoint, error) {
	if limit <= 0 {
		limit = 8
	}
	const query = `SELECT label, semester, year, avg_cgpa, student_count FROM (
            SELECT CONCAT('Sem ', semester, ' ', year) AS label,
                semester, year,
                ROUND(AVG(cumulative_cgpa)::numeric, 2)::float8 AS avg_cgpa,
                COUNT(DISTINCT student_id) AS student_count
            FROM cgpa_records
            GROUP BY semester, year
            ORDER BY year DESC, semester DESC
            LIMIT $1
        ) recent ORDER BY year ASC, semester ASC`
	var points []dto.CGPATrendPoint
	if err := r.db.SelectContext(ctx, &points, query, limit); err != nil {
		return nil, fmt.Errorf("cgpa trend: %w", err)
	}
	return points, nil
}

// GradeDistribution returns the share of each letter grade across all graded
// results, highest grade point first.
func (r *DashboardRepository) GradeDistribution(ctx context.Context) ([]dto.GradeDistributionSlice, error) {
	const query = `SELECT grade, COUNT(*) AS count,
            ROUND(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER (), 1)::float8 AS percentage
        FROM student_results
        WHERE grade IS NOT NULL
        GROUP BY grade
        ORDER BY MIN(COALESCE(grade_point, 0)) DESC, grade ASC`
	var slices []dto.GradeDistributionSlice
	if err := r.db.SelectContext(ctx, &slices, query); err != nil {
		return nil, fmt.Errorf("grade distribution: %w", err)
	}
	return slices, nil
}

// AtRiskStudents returns students on probation or with any CGPA record below
// the risk threshold, worst standing first. A student who dipped under the
// threshold in an earlier semester stays on the list even after recovering.
func (r *DashboardRepository) AtRiskStudents(ctx context.Context, threshold float64, limit int) ([]dto.AtRiskStudent, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT s.id, s.first_name, s.last_name, s.programme, s.current_semester, s.status,
            latest.cumulative_cgpa AS latest_cgpa,
            (SELECT COUNT(*) FROM academic_alerts a WHERE a.student_id = s.id AND a.is_resolved = FALSE) AS open_alerts
        FROM students s
        LEFT JOIN LATERAL (
            SELECT cumulative_cgpa FROM cgpa_records c
            WHERE c.student_id = s.id
            ORDER BY c.year DESC, c.semester DESC LIMIT 1
        ) latest ON TRUE
        WHERE s.status = $1
            OR EXISTS (SELECT 1 FROM cgpa_records h WHERE h.student_id = s.id AND h.cumulative_cgpa < $2)
        ORDER BY latest.cumulative_cgpa ASC NULLS LAST
        LIMIT $3`
	var students []dto.AtRiskStudent
	if err := r.db.SelectContext(ctx, &students, query, models.StatusProbation, threshold, limit); err != nil {
		return nil, fmt.Errorf("at-risk students: %w", err)
	}
	return students, nil
}

// LatestSemesterAverages returns the two most recent trend cells, newest
// first, for computing the headline trend delta.
func (r *DashboardRepository) LatestSemesterAverages(ctx context.Context) ([]dto.CGPATrendPoint, error) {
	const query = `SELECT CONCAT('Sem ', semester, ' ', year) AS label,
            semester, year,
            ROUND(AVG(cumulative_cgpa)::numeric, 2)::float8 AS avg_cgpa,
            COUNT(DISTINCT student_id) AS student_count
        FROM cgpa_records
        GROUP BY semester, year
        ORDER BY year DESC, semester DESC
        LIMIT 2`
	var points []dto.CGPATrendPoint
	if err := r.db.SelectContext(ctx, &points, query); err != nil {
		return nil, fmt.Errorf("latest semester averages: %w", err)
	}
	return points, nil
}

// HighestFailureRate returns the module with the largest failure share over
// its finished attempts, or nil when no module has enough attempts to judge.
func (r *DashboardRepository) HighestFailureRate(ctx context.Context, minAttempts int) (*dto.ModuleFailureRate, error) {
	if minAttempts <= 0 {
		minAttempts = 5
	}
	const query = `SELECT m.code AS module_code, m.name AS module_name,
            COUNT(*) AS attempts,
            (COUNT(*) FILTER (WHERE r.status = 'Failed' OR r.grade IN ('F', 'XF')))::float8 / COUNT(*) AS failure_rate
        FROM student_results r
        JOIN modules m ON m.id = r.module_id
        WHERE r.status IN ('Completed', 'Failed')
        GROUP BY m.code, m.name
        HAVING COUNT(*) >= $1
        ORDER BY failure_rate DESC, attempts DESC
        LIMIT 1`
	var rate dto.ModuleFailureRate
	if err := r.db.GetContext(ctx, &rate, query, minAttempts); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("module failure rate: %w", err)
	}
	return &rate, nil
}

// StudentIDs returns every student ID, used by the bulk recompute job.
func (r *DashboardRepository) StudentIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, "SELECT id FROM students ORDER BY id ASC"); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("student ids: %w", err)
	}
	return ids, nil
}
