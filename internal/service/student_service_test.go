package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]models.Student
	emails   map[string]string
	deleted  []string
	total    int
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, m.total, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	if id, ok := m.emails[email]; ok {
		if excludeID == "" || id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	delete(m.students, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockCgpaHistory struct {
	records map[string][]models.CgpaRecord
}

func (m *mockCgpaHistory) History(ctx context.Context, studentID string) ([]models.CgpaRecord, error) {
	return m.records[studentID], nil
}

type mockAlertSource struct {
	alerts map[string][]models.AcademicAlert
}

func (m *mockAlertSource) ActiveByStudent(ctx context.Context, studentID string) ([]models.AcademicAlert, error) {
	return m.alerts[studentID], nil
}

func newStudentService(repo *mockStudentRepo, cgpa *mockCgpaHistory) *StudentService {
	if cgpa == nil {
		cgpa = &mockCgpaHistory{}
	}
	return NewStudentService(repo, &mockResultSource{}, cgpa, &mockAlertSource{}, nil, nil, nil)
}

func TestStudentServiceCreate(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := newStudentService(repo, nil)

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		ID:         "STU-001",
		FirstName:  "Amina",
		LastName:   "Yusof",
		Email:      "Amina@Uni.edu",
		Programme:  "Computer Science",
		IntakeYear: 2023,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, student.Status)
	assert.Equal(t, "amina@uni.edu", student.Email)
	assert.Equal(t, 1, student.CurrentSemester)
}

func TestStudentServiceCreateRejectsDuplicateEmail(t *testing.T) {
	repo := &mockStudentRepo{emails: map[string]string{"amina@uni.edu": "STU-001"}}
	svc := newStudentService(repo, nil)

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		ID:         "STU-002",
		FirstName:  "Amina",
		LastName:   "Yusof",
		Email:      "amina@uni.edu",
		Programme:  "Computer Science",
		IntakeYear: 2023,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateRejectsInvalidPayload(t *testing.T) {
	svc := newStudentService(&mockStudentRepo{}, nil)

	_, err := svc.Create(context.Background(), CreateStudentRequest{ID: "STU-003"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceGetDerivesCreditFigures(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"STU-001": {ID: "STU-001", FirstName: "Amina", Status: models.StatusActive},
	}}
	cgpa := &mockCgpaHistory{records: map[string][]models.CgpaRecord{
		"STU-001": {
			{Semester: 1, Year: 2023, CumulativeCGPA: 3.5, TotalCreditsEarned: 18, CreatedAt: time.Now()},
			{Semester: 2, Year: 2023, CumulativeCGPA: 3.6, TotalCreditsEarned: 36, CreatedAt: time.Now()},
		},
	}}
	svc := newStudentService(repo, cgpa)

	detail, err := svc.Get(context.Background(), "STU-001")
	require.NoError(t, err)
	assert.InDelta(t, 3.6, detail.CurrentCGPA, 1e-9)
	assert.Equal(t, 36, detail.TotalCreditsEarned)
	assert.Equal(t, models.ProgrammeCreditTarget-36, detail.RemainingCredits)
	assert.Equal(t, 5, detail.SemestersLeft)
}

func TestStudentServiceGetWithNoHistory(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"STU-002": {ID: "STU-002", Status: models.StatusActive},
	}}
	svc := newStudentService(repo, nil)

	detail, err := svc.Get(context.Background(), "STU-002")
	require.NoError(t, err)
	assert.Zero(t, detail.CurrentCGPA)
	assert.Equal(t, models.ProgrammeCreditTarget, detail.RemainingCredits)
	assert.Equal(t, 7, detail.SemestersLeft)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	svc := newStudentService(&mockStudentRepo{}, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateValidatesStatusLabel(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"STU-001": {ID: "STU-001", Status: models.StatusActive},
	}}
	svc := newStudentService(repo, nil)

	_, err := svc.Update(context.Background(), "STU-001", UpdateStudentRequest{
		FirstName:       "Amina",
		LastName:        "Yusof",
		Email:           "amina@uni.edu",
		Programme:       "Computer Science",
		IntakeYear:      2023,
		CurrentSemester: 3,
		Status:          "Expelled",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateAllowsAdministrativeStatus(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"STU-001": {ID: "STU-001", Status: models.StatusActive},
	}}
	svc := newStudentService(repo, nil)

	student, err := svc.Update(context.Background(), "STU-001", UpdateStudentRequest{
		FirstName:       "Amina",
		LastName:        "Yusof",
		Email:           "amina@uni.edu",
		Programme:       "Computer Science",
		IntakeYear:      2023,
		CurrentSemester: 3,
		Status:          "Graduated",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusGraduated, student.Status)
}

func TestStudentServiceDelete(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"STU-001": {ID: "STU-001"},
	}}
	svc := newStudentService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), "STU-001"))
	assert.Equal(t, []string{"STU-001"}, repo.deleted)

	err := svc.Delete(context.Background(), "STU-001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceListRejectsUnknownStatusFilter(t *testing.T) {
	svc := newStudentService(&mockStudentRepo{}, nil)

	_, _, err := svc.List(context.Background(), models.StudentFilter{Status: "Expelled"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
