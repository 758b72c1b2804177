package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/models"
)

// ModuleRepository manages persistence for course modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs a ModuleRepository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// List returns modules ordered by semester then code.
func (r *ModuleRepository) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error) {
	base := "SELECT id, code, name, credits, semester, programme, is_core, prerequisites, created_at FROM modules"
	args := []interface{}{}
	conditions := []string{}

	if filter.Programme != "" {
		conditions = append(conditions, fmt.Sprintf("programme = $%d", len(args)+1))
		args = append(args, filter.Programme)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if len(conditions) > 0 {
		base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))
	}
	base += " ORDER BY semester ASC, code ASC"

	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, base, args...); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// FindByID fetches a module by ID.
func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*models.Module, error) {
	const query = `SELECT id, code, name, credits, semester, programme, is_core, prerequisites, created_at FROM modules WHERE id = $1`
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		return nil, err
	}
	return &module, nil
}

// ExistsByCode checks module code uniqueness, optionally excluding an ID.
func (r *ModuleRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM modules WHERE code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check module code: %w", err)
	}
	return true, nil
}

// Create inserts a new module.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	if module.CreatedAt.IsZero() {
		module.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO modules (id, code, name, credits, semester, programme, is_core, prerequisites, created_at)
        VALUES (:id, :code, :name, :credits, :semester, :programme, :is_core, :prerequisites, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// Update modifies an existing module.
func (r *ModuleRepository) Update(ctx context.Context, module *models.Module) error {
	const query = `UPDATE modules SET code = :code, name = :name, credits = :credits, semester = :semester, programme = :programme, is_core = :is_core, prerequisites = :prerequisites WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, module)
	if err != nil {
		return fmt.Errorf("update module: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a module and its results.
func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete module: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM student_results WHERE module_id = $1", id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete module results: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM modules WHERE id = $1", id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete module: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete module: %w", err)
	}
	return nil
}
