package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/models"
)

// ResultRepository manages persistence for module results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs a ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

const resultColumns = `r.id, r.student_id, r.module_id, r.semester, r.year, r.grade, r.grade_point, r.status, r.attempt_number, r.created_at, r.updated_at,
        m.code AS module_code, m.name AS module_name, m.credits AS module_credits`

// ListByStudent returns all results for a student joined to their modules,
// newest semester first.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ResultWithModule, error) {
	query := fmt.Sprintf(`SELECT %s
        FROM student_results r
        JOIN modules m ON m.id = r.module_id
        WHERE r.student_id = $1
        ORDER BY r.year DESC, r.semester DESC`, resultColumns)
	var results []models.ResultWithModule
	if err := r.db.SelectContext(ctx, &results, query, studentID); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// FindByID fetches a single result joined to its module.
func (r *ResultRepository) FindByID(ctx context.Context, id string) (*models.ResultWithModule, error) {
	query := fmt.Sprintf(`SELECT %s
        FROM student_results r
        JOIN modules m ON m.id = r.module_id
        WHERE r.id = $1`, resultColumns)
	var result models.ResultWithModule
	if err := r.db.GetContext(ctx, &result, query, id); err != nil {
		return nil, err
	}
	return &result, nil
}

// Create inserts a new result row.
func (r *ResultRepository) Create(ctx context.Context, result *models.Result) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now
	if result.AttemptNumber < 1 {
		result.AttemptNumber = 1
	}
	const query = `INSERT INTO student_results (id, student_id, module_id, semester, year, grade, grade_point, status, attempt_number, created_at, updated_at)
        VALUES (:id, :student_id, :module_id, :semester, :year, :grade, :grade_point, :status, :attempt_number, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

// Update modifies an existing result row.
func (r *ResultRepository) Update(ctx context.Context, result *models.Result) error {
	result.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_results SET semester = :semester, year = :year, grade = :grade, grade_point = :grade_point, status = :status, attempt_number = :attempt_number, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, result)
	if err != nil {
		return fmt.Errorf("update result: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a result row.
func (r *ResultRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM student_results WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}
