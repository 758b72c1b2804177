package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/models"
)

// CgpaRepository manages the per-semester CGPA ledger and the reconciliation
// write path.
type CgpaRepository struct {
	db *sqlx.DB
}

// NewCgpaRepository constructs a CgpaRepository.
func NewCgpaRepository(db *sqlx.DB) *CgpaRepository {
	return &CgpaRepository{db: db}
}

const cgpaColumns = `id, student_id, semester, year, semester_gpa, cumulative_cgpa, total_credits_earned, total_credits_attempted, created_at`

// History returns a student's CGPA records in chronological order.
func (r *CgpaRepository) History(ctx context.Context, studentID string) ([]models.CgpaRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM cgpa_records WHERE student_id = $1 ORDER BY year ASC, semester ASC`, cgpaColumns)
	var records []models.CgpaRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("cgpa history: %w", err)
	}
	return records, nil
}

// ApplyReconciliation upserts the CGPA record for its (student, semester,
// year) key and, when updateStatus is set, writes the derived status label.
// Both happen inside one transaction so a failure leaves neither applied.
// The status write skips rows already marked Suspended or Graduated, so an
// administrative label set concurrently is never clobbered.
func (r *CgpaRepository) ApplyReconciliation(ctx context.Context, studentID string, record *models.CgpaRecord, status models.StatusLabel, updateStatus bool) error {
	if record == nil {
		return fmt.Errorf("reconciliation requires a record")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	record.StudentID = studentID

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reconciliation: %w", err)
	}
	const upsert = `INSERT INTO cgpa_records (id, student_id, semester, year, semester_gpa, cumulative_cgpa, total_credits_earned, total_credits_attempted, created_at)
        VALUES (:id, :student_id, :semester, :year, :semester_gpa, :cumulative_cgpa, :total_credits_earned, :total_credits_attempted, :created_at)
        ON CONFLICT (student_id, semester, year)
        DO UPDATE SET semester_gpa = EXCLUDED.semester_gpa, cumulative_cgpa = EXCLUDED.cumulative_cgpa, total_credits_earned = EXCLUDED.total_credits_earned, total_credits_attempted = EXCLUDED.total_credits_attempted`
	if _, err := tx.NamedExecContext(ctx, upsert, record); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("upsert cgpa record: %w", err)
	}
	if updateStatus {
		const setStatus = `UPDATE students SET status = $1, updated_at = $2
            WHERE id = $3 AND status NOT IN ('Suspended', 'Graduated')`
		if _, err := tx.ExecContext(ctx, setStatus, status, time.Now().UTC(), studentID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("update student status: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reconciliation: %w", err)
	}
	return nil
}
