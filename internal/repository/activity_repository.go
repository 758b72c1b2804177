package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/models"
)

// ActivityRepository appends to and reads the display-only activity log.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append inserts a new activity entry.
func (r *ActivityRepository) Append(ctx context.Context, entry *models.ActivityEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activity_log (id, action, entity_type, entity_id, description, performed_by, created_at)
        VALUES (:id, :action, :entity_type, :entity_id, :description, :performed_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, action, entity_type, entity_id, description, performed_by, created_at
        FROM activity_log ORDER BY created_at DESC LIMIT $1`
	var entries []models.ActivityEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	return entries, nil
}
