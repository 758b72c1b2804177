package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type alertRepository interface {
	ListActive(ctx context.Context) ([]models.AcademicAlert, error)
	ActiveByStudent(ctx context.Context, studentID string) ([]models.AcademicAlert, error)
	Create(ctx context.Context, alert *models.AcademicAlert) error
	Resolve(ctx context.Context, id string) error
}

// CreateAlertRequest holds payload for raising an academic alert.
type CreateAlertRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	AlertType string `json:"alert_type" validate:"required"`
	Message   string `json:"message" validate:"required"`
	Severity  string `json:"severity" validate:"required,oneof=low medium high critical"`
}

// AlertService handles academic alert use-cases.
type AlertService struct {
	repo      alertRepository
	students  resultStudentSource
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAlertService constructs the alert service.
func NewAlertService(repo alertRepository, students resultStudentSource, validate *validator.Validate, logger *zap.Logger) *AlertService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{repo: repo, students: students, validator: validate, logger: logger}
}

// ListActive returns all unresolved alerts.
func (s *AlertService) ListActive(ctx context.Context) ([]models.AcademicAlert, error) {
	alerts, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list alerts")
	}
	return alerts, nil
}

// Create raises a new alert against a student.
func (s *AlertService) Create(ctx context.Context, req CreateAlertRequest) (*models.AcademicAlert, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid alert payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	alert := &models.AcademicAlert{
		StudentID: req.StudentID,
		AlertType: req.AlertType,
		Message:   req.Message,
		Severity:  req.Severity,
	}
	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create alert")
	}
	return alert, nil
}

// Resolve closes an open alert.
func (s *AlertService) Resolve(ctx context.Context, id string) error {
	if err := s.repo.Resolve(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "alert not found or already resolved")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve alert")
	}
	return nil
}
