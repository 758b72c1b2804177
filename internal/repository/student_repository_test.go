package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "programme", "intake_year", "current_semester", "status", "profile_image_url", "created_at", "updated_at"}).
		AddRow("STU-001", "Amina", "Yusof", "amina@uni.edu", "Computer Science", 2023, 3, "Active", nil, time.Now(), time.Now())
}

func TestStudentRepositoryListDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT s.id, s.first_name, s.last_name").WillReturnRows(studentRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students s")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT s.id, s.first_name, s.last_name").
		WithArgs("Computer Science", "Probation", "%ami%").
		WillReturnRows(studentRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students s")).
		WithArgs("Computer Science", "Probation", "%ami%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.StudentFilter{Programme: "Computer Science", Status: "Probation", Search: "ami"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateDefaultsStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{ID: "STU-002", FirstName: "Ben", LastName: "Tan", Email: "ben@uni.edu", Programme: "Software Engineering", IntakeYear: 2024, CurrentSemester: 1}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, models.StatusActive, student.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Student{ID: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM academic_alerts").WithArgs("STU-001").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM cgpa_records").WithArgs("STU-001").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM student_results").WithArgs("STU-001").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM students").WithArgs("STU-001").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "STU-001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM students WHERE email").
		WithArgs("amina@uni.edu").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "amina@uni.edu", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM students WHERE email").
		WithArgs("nobody@uni.edu").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsByEmail(context.Background(), "nobody@uni.edu", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
