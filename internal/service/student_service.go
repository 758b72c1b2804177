package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type studentResultSource interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ResultWithModule, error)
}

type studentCgpaSource interface {
	History(ctx context.Context, studentID string) ([]models.CgpaRecord, error)
}

type studentAlertSource interface {
	ActiveByStudent(ctx context.Context, studentID string) ([]models.AcademicAlert, error)
}

// CreateStudentRequest holds payload for registering a student. The ID is
// the registry number assigned by the institution.
type CreateStudentRequest struct {
	ID              string  `json:"id" validate:"required"`
	FirstName       string  `json:"first_name" validate:"required"`
	LastName        string  `json:"last_name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Programme       string  `json:"programme" validate:"required"`
	IntakeYear      int     `json:"intake_year" validate:"required,gte=2000"`
	CurrentSemester int     `json:"current_semester" validate:"omitempty,gte=1"`
	ProfileImageURL *string `json:"profile_image_url"`
}

// UpdateStudentRequest holds payload for updating a student. Status accepts
// any valid label, including the administrative ones.
type UpdateStudentRequest struct {
	FirstName       string  `json:"first_name" validate:"required"`
	LastName        string  `json:"last_name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Programme       string  `json:"programme" validate:"required"`
	IntakeYear      int     `json:"intake_year" validate:"required,gte=2000"`
	CurrentSemester int     `json:"current_semester" validate:"gte=1"`
	Status          string  `json:"status"`
	ProfileImageURL *string `json:"profile_image_url"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	results   studentResultSource
	cgpa      studentCgpaSource
	alerts    studentAlertSource
	activity  activitySink
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, results studentResultSource, cgpa studentCgpaSource, alerts studentAlertSource, activity activitySink, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, results: results, cgpa: cgpa, alerts: alerts, activity: activity, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Status != "" && !models.StatusLabel(filter.Status).Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns the full student profile with results, CGPA history, open
// alerts and the derived credit figures.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	detail := &models.StudentDetail{Student: *student}

	if detail.Results, err = s.results.ListByStudent(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results")
	}
	if detail.CgpaRecords, err = s.cgpa.History(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cgpa history")
	}
	if s.alerts != nil {
		if detail.Alerts, err = s.alerts.ActiveByStudent(ctx, id); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load alerts")
		}
	}

	if n := len(detail.CgpaRecords); n > 0 {
		latest := detail.CgpaRecords[n-1]
		detail.CurrentCGPA = latest.CumulativeCGPA
		detail.TotalCreditsEarned = latest.TotalCreditsEarned
	}
	remaining := models.ProgrammeCreditTarget - detail.TotalCreditsEarned
	if remaining < 0 {
		remaining = 0
	}
	detail.RemainingCredits = remaining
	detail.SemestersLeft = (remaining + models.CreditsPerSemester - 1) / models.CreditsPerSemester
	return detail, nil
}

// History returns the student's chronological CGPA records.
func (s *StudentService) History(ctx context.Context, id string) ([]models.CgpaRecord, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	records, err := s.cgpa.History(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cgpa history")
	}
	return records, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}
	if _, err := s.repo.FindByID(ctx, req.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student id already registered")
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student id")
	}

	semester := req.CurrentSemester
	if semester < 1 {
		semester = 1
	}
	student := &models.Student{
		ID:              strings.TrimSpace(req.ID),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Programme:       req.Programme,
		IntakeYear:      req.IntakeYear,
		CurrentSemester: semester,
		Status:          models.StatusActive,
		ProfileImageURL: req.ProfileImageURL,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	appendActivity(s.logger, s.activity, &models.ActivityEntry{
		Action:      models.ActivityActionCreate,
		EntityType:  models.ActivityEntityStudent,
		EntityID:    student.ID,
		Description: fmt.Sprintf("Registered %s %s on %s", student.FirstName, student.LastName, student.Programme),
	})
	return student, nil
}

// Update modifies an existing student's profile.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Email = strings.ToLower(strings.TrimSpace(req.Email))
	student.Programme = req.Programme
	student.IntakeYear = req.IntakeYear
	student.CurrentSemester = req.CurrentSemester
	student.ProfileImageURL = req.ProfileImageURL
	if req.Status != "" {
		label := models.StatusLabel(req.Status)
		if !label.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status label")
		}
		student.Status = label
	}

	if err := s.repo.Update(ctx, student); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	appendActivity(s.logger, s.activity, &models.ActivityEntry{
		Action:      models.ActivityActionUpdate,
		EntityType:  models.ActivityEntityStudent,
		EntityID:    student.ID,
		Description: fmt.Sprintf("Updated profile of %s %s", student.FirstName, student.LastName),
	})
	return student, nil
}

// Delete removes a student and all dependent rows.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	appendActivity(s.logger, s.activity, &models.ActivityEntry{
		Action:      models.ActivityActionDelete,
		EntityType:  models.ActivityEntityStudent,
		EntityID:    id,
		Description: fmt.Sprintf("Removed %s %s and their records", student.FirstName, student.LastName),
	})
	return nil
}
