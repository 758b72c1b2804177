package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters. Default sort is
// created_at descending.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students s"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Programme != "" {
		conditions = append(conditions, fmt.Sprintf("s.programme = $%d", len(args)+1))
		args = append(args, filter.Programme)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("s.current_semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(
			"(s.first_name ILIKE $%d OR s.last_name ILIKE $%d OR s.id ILIKE $%d OR s.email ILIKE $%d OR CONCAT(s.first_name, ' ', s.last_name) ILIKE $%d)",
			idx, idx, idx, idx, idx))
		args = append(args, "%"+strings.TrimSpace(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "s.first_name",
		"id":         "s.id",
		"programme":  "s.programme",
		"created_at": "s.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "s.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT s.id, s.first_name, s.last_name, s.email, s.programme, s.intake_year, s.current_semester, s.status, s.profile_image_url, s.created_at, s.updated_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, first_name, last_name, email, programme, intake_year, current_semester, status, profile_image_url, created_at, updated_at
        FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByEmail checks whether a student with the given email exists,
// optionally excluding an ID.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE email = $1"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	if student.Status == "" {
		student.Status = models.StatusActive
	}
	const query = `INSERT INTO students (id, first_name, last_name, email, programme, intake_year, current_semester, status, profile_image_url, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :email, :programme, :intake_year, :current_semester, :status, :profile_image_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET first_name = :first_name, last_name = :last_name, email = :email, programme = :programme, intake_year = :intake_year, current_semester = :current_semester, status = :status, profile_image_url = :profile_image_url, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a student together with their results, CGPA records and
// alerts.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete student: %w", err)
	}
	statements := []string{
		"DELETE FROM academic_alerts WHERE student_id = $1",
		"DELETE FROM cgpa_records WHERE student_id = $1",
		"DELETE FROM student_results WHERE student_id = $1",
		"DELETE FROM students WHERE id = $1",
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("delete student: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete student: %w", err)
	}
	return nil
}

// GetStatus returns the student's current persisted status label.
func (r *StudentRepository) GetStatus(ctx context.Context, id string) (models.StatusLabel, error) {
	var status models.StatusLabel
	if err := r.db.GetContext(ctx, &status, "SELECT status FROM students WHERE id = $1", id); err != nil {
		return "", err
	}
	return status, nil
}
