package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
)

func resultRows() *sqlmock.Rows {
	grade := "A"
	point := 4.0
	return sqlmock.NewRows([]string{"id", "student_id", "module_id", "semester", "year", "grade", "grade_point", "status", "attempt_number", "created_at", "updated_at", "module_code", "module_name", "module_credits"}).
		AddRow("r1", "STU-001", "m1", 1, 2023, grade, point, "Completed", 1, time.Now(), time.Now(), "CS101", "Programming I", 3)
}

func TestResultRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery("SELECT r.id, r.student_id, r.module_id(.+)JOIN modules m ON m.id = r.module_id(.+)ORDER BY r.year DESC, r.semester DESC").
		WithArgs("STU-001").
		WillReturnRows(resultRows())

	results, err := repo.ListByStudent(context.Background(), "STU-001")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "CS101", results[0].ModuleCode)
	assert.Equal(t, 3, results[0].ModuleCredits)
	require.NotNil(t, results[0].GradePoint)
	assert.InDelta(t, 4.0, *results[0].GradePoint, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryCreateDefaultsAttempt(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("INSERT INTO student_results").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	result := &models.Result{StudentID: "STU-001", ModuleID: "m1", Semester: 1, Year: 2023, Status: models.ResultInProgress}
	require.NoError(t, repo.Create(context.Background(), result))
	assert.Equal(t, 1, result.AttemptNumber)
	assert.NotEmpty(t, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("UPDATE student_results SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Result{ID: "missing", AttemptNumber: 1})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("DELETE FROM student_results WHERE id").
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "r1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
