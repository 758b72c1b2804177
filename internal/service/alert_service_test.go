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

type mockAlertRepo struct {
	alerts   []models.AcademicAlert
	created  []models.AcademicAlert
	resolved []string
}

func (m *mockAlertRepo) ListActive(ctx context.Context) ([]models.AcademicAlert, error) {
	return m.alerts, nil
}

func (m *mockAlertRepo) ActiveByStudent(ctx context.Context, studentID string) ([]models.AcademicAlert, error) {
	return m.alerts, nil
}

func (m *mockAlertRepo) Create(ctx context.Context, alert *models.AcademicAlert) error {
	alert.ID = "generated"
	m.created = append(m.created, *alert)
	return nil
}

func (m *mockAlertRepo) Resolve(ctx context.Context, id string) error {
	for _, a := range m.alerts {
		if a.ID == id {
			m.resolved = append(m.resolved, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func newAlertService(repo *mockAlertRepo) *AlertService {
	students := &mockStudentRepo{students: map[string]models.Student{
		"STU-001": {ID: "STU-001", Status: models.StatusActive},
	}}
	return NewAlertService(repo, students, nil, nil)
}

func TestAlertServiceCreate(t *testing.T) {
	repo := &mockAlertRepo{}
	svc := newAlertService(repo)

	alert, err := svc.Create(context.Background(), CreateAlertRequest{
		StudentID: "STU-001",
		AlertType: "low_cgpa",
		Message:   "CGPA dropped below 2.5",
		Severity:  models.AlertSeverityHigh,
	})

	require.NoError(t, err)
	assert.Equal(t, "generated", alert.ID)
	require.Len(t, repo.created, 1)
	assert.False(t, repo.created[0].IsResolved)
}

func TestAlertServiceCreateUnknownStudent(t *testing.T) {
	svc := newAlertService(&mockAlertRepo{})

	_, err := svc.Create(context.Background(), CreateAlertRequest{
		StudentID: "STU-404",
		AlertType: "low_cgpa",
		Message:   "whatever",
		Severity:  models.AlertSeverityLow,
	})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAlertServiceCreateInvalidSeverity(t *testing.T) {
	svc := newAlertService(&mockAlertRepo{})

	_, err := svc.Create(context.Background(), CreateAlertRequest{
		StudentID: "STU-001",
		AlertType: "low_cgpa",
		Message:   "whatever",
		Severity:  "urgent",
	})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAlertServiceResolve(t *testing.T) {
	repo := &mockAlertRepo{alerts: []models.AcademicAlert{{ID: "a1", StudentID: "STU-001"}}}
	svc := newAlertService(repo)

	require.NoError(t, svc.Resolve(context.Background(), "a1"))
	assert.Equal(t, []string{"a1"}, repo.resolved)

	err := svc.Resolve(context.Background(), "a2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
