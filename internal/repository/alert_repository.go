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

// AlertRepository manages persistence for academic alerts.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository constructs an AlertRepository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `id, student_id, alert_type, message, severity, is_resolved, created_at, resolved_at`

// ListActive returns all unresolved alerts, newest first.
func (r *AlertRepository) ListActive(ctx context.Context) ([]models.AcademicAlert, error) {
	query := fmt.Sprintf(`SELECT %s FROM academic_alerts WHERE is_resolved = FALSE ORDER BY created_at DESC`, alertColumns)
	var alerts []models.AcademicAlert
	if err := r.db.SelectContext(ctx, &alerts, query); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// ActiveByStudent returns a student's unresolved alerts, newest first.
func (r *AlertRepository) ActiveByStudent(ctx context.Context, studentID string) ([]models.AcademicAlert, error) {
	query := fmt.Sprintf(`SELECT %s FROM academic_alerts WHERE student_id = $1 AND is_resolved = FALSE ORDER BY created_at DESC`, alertColumns)
	var alerts []models.AcademicAlert
	if err := r.db.SelectContext(ctx, &alerts, query, studentID); err != nil {
		return nil, fmt.Errorf("student alerts: %w", err)
	}
	return alerts, nil
}

// Create inserts a new alert.
func (r *AlertRepository) Create(ctx context.Context, alert *models.AcademicAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO academic_alerts (id, student_id, alert_type, message, severity, is_resolved, created_at, resolved_at)
        VALUES (:id, :student_id, :alert_type, :message, :severity, :is_resolved, :created_at, :resolved_at)`
	if _, err := r.db.NamedExecContext(ctx, query, alert); err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// Resolve marks an alert resolved.
func (r *AlertRepository) Resolve(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE academic_alerts SET is_resolved = TRUE, resolved_at = $1 WHERE id = $2 AND is_resolved = FALSE", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
