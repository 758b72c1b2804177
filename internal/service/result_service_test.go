package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type mockResultRepo struct {
	results map[string]models.ResultWithModule
	created []models.Result
	updated []models.Result
	deleted []string
}

func (m *mockResultRepo) ListByStudent(ctx context.Context, studentID string) ([]models.ResultWithModule, error) {
	var out []models.ResultWithModule
	for _, r := range m.results {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockResultRepo) FindByID(ctx context.Context, id string) (*models.ResultWithModule, error) {
	if r, ok := m.results[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockResultRepo) Create(ctx context.Context, result *models.Result) error {
	result.ID = "generated"
	m.created = append(m.created, *result)
	return nil
}

func (m *mockResultRepo) Update(ctx context.Context, result *models.Result) error {
	m.updated = append(m.updated, *result)
	return nil
}

func (m *mockResultRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockModuleSource struct {
	modules map[string]models.Module
}

func (m *mockModuleSource) FindByID(ctx context.Context, id string) (*models.Module, error) {
	if mod, ok := m.modules[id]; ok {
		return &mod, nil
	}
	return nil, sql.ErrNoRows
}

type mockRecomputer struct {
	calls []string
	err   error
}

func (m *mockRecomputer) Recompute(ctx context.Context, studentID string, performedBy string) (*models.CgpaRecord, error) {
	m.calls = append(m.calls, studentID)
	return nil, m.err
}

func newResultService(repo *mockResultRepo, reconciler *mockRecomputer) *ResultService {
	students := &mockStudentRepo{students: map[string]models.Student{
		"STU-001": {ID: "STU-001", Status: models.StatusActive},
	}}
	modules := &mockModuleSource{modules: map[string]models.Module{
		"m1": {ID: "m1", Code: "CS101", Credits: 3},
	}}
	return NewResultService(repo, students, modules, reconciler, nil, nil, nil)
}

func TestResultServiceCreateDerivesGradePoint(t *testing.T) {
	repo := &mockResultRepo{}
	reconciler := &mockRecomputer{}
	svc := newResultService(repo, reconciler)

	result, err := svc.Create(context.Background(), CreateResultRequest{
		StudentID: "STU-001",
		ModuleID:  "m1",
		Semester:  1,
		Year:      2023,
		Grade:     "a-",
		Status:    "Completed",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Grade)
	assert.Equal(t, "A-", *result.Grade)
	require.NotNil(t, result.GradePoint)
	assert.InDelta(t, 3.7, *result.GradePoint, 1e-9)
	assert.Equal(t, []string{"STU-001"}, reconciler.calls)
}

func TestResultServiceCreateRejectsUnknownGrade(t *testing.T) {
	svc := newResultService(&mockResultRepo{}, &mockRecomputer{})

	_, err := svc.Create(context.Background(), CreateResultRequest{
		StudentID: "STU-001",
		ModuleID:  "m1",
		Semester:  1,
		Year:      2023,
		Grade:     "E",
		Status:    "Completed",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestResultServiceCreateRequiresGradeWhenCompleted(t *testing.T) {
	svc := newResultService(&mockResultRepo{}, &mockRecomputer{})

	_, err := svc.Create(context.Background(), CreateResultRequest{
		StudentID: "STU-001",
		ModuleID:  "m1",
		Semester:  1,
		Year:      2023,
		Status:    "Completed",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestResultServiceCreateInProgressWithoutGrade(t *testing.T) {
	repo := &mockResultRepo{}
	svc := newResultService(repo, &mockRecomputer{})

	result, err := svc.Create(context.Background(), CreateResultRequest{
		StudentID: "STU-001",
		ModuleID:  "m1",
		Semester:  1,
		Year:      2023,
		Status:    "In Progress",
	})
	require.NoError(t, err)
	assert.Nil(t, result.Grade)
	assert.Nil(t, result.GradePoint)
}

func TestResultServiceCreateSurfacesRecomputeFailure(t *testing.T) {
	repo := &mockResultRepo{}
	reconciler := &mockRecomputer{err: assert.AnError}
	svc := newResultService(repo, reconciler)

	result, err := svc.Create(context.Background(), CreateResultRequest{
		StudentID: "STU-001",
		ModuleID:  "m1",
		Semester:  1,
		Year:      2023,
		Grade:     "B",
		Status:    "Completed",
	})
	require.Error(t, err)
	require.NotNil(t, result, "the stored result is returned even when recompute fails")
	assert.Len(t, repo.created, 1)
}

func TestResultServiceDeleteTriggersRecompute(t *testing.T) {
	repo := &mockResultRepo{results: map[string]models.ResultWithModule{
		"r1": {Result: models.Result{ID: "r1", StudentID: "STU-001"}, ModuleCode: "CS101"},
	}}
	reconciler := &mockRecomputer{}
	svc := newResultService(repo, reconciler)

	require.NoError(t, svc.Delete(context.Background(), "r1"))
	assert.Equal(t, []string{"r1"}, repo.deleted)
	assert.Equal(t, []string{"STU-001"}, reconciler.calls)
}

func TestResultServiceUpdateUnknownStatus(t *testing.T) {
	svc := newResultService(&mockResultRepo{}, &mockRecomputer{})

	_, err := svc.Update(context.Background(), "r1", UpdateResultRequest{
		Semester: 1,
		Year:     2023,
		Status:   "Pending",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
