package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/grading"
	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type resultRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ResultWithModule, error)
	FindByID(ctx context.Context, id string) (*models.ResultWithModule, error)
	Create(ctx context.Context, result *models.Result) error
	Update(ctx context.Context, result *models.Result) error
	Delete(ctx context.Context, id string) error
}

type resultStudentSource interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type resultModuleSource interface {
	FindByID(ctx context.Context, id string) (*models.Module, error)
}

type recomputer interface {
	Recompute(ctx context.Context, studentID string, performedBy string) (*models.CgpaRecord, error)
}

// CreateResultRequest holds payload for recording a module attempt. Grade is
// the letter grade; the grade point is derived, never supplied.
type CreateResultRequest struct {
	StudentID     string `json:"student_id" validate:"required"`
	ModuleID      string `json:"module_id" validate:"required"`
	Semester      int    `json:"semester" validate:"required,gte=1"`
	Year          int    `json:"year" validate:"required,gte=2000"`
	Grade         string `json:"grade"`
	Status        string `json:"status" validate:"required"`
	AttemptNumber int    `json:"attempt_number" validate:"gte=0"`
}

// UpdateResultRequest holds payload for amending a module attempt.
type UpdateResultRequest struct {
	Semester      int    `json:"semester" validate:"required,gte=1"`
	Year          int    `json:"year" validate:"required,gte=2000"`
	Grade         string `json:"grade"`
	Status        string `json:"status" validate:"required"`
	AttemptNumber int    `json:"attempt_number" validate:"gte=0"`
}

// ResultService handles module result use-cases. Every mutation triggers a
// recomputation of the owning student's CGPA and standing; a recompute
// failure is surfaced to the caller even though the mutation has already
// been persisted.
type ResultService struct {
	repo       resultRepository
	students   resultStudentSource
	modules    resultModuleSource
	reconciler recomputer
	activity   activitySink
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewResultService constructs the result service.
func NewResultService(repo resultRepository, students resultStudentSource, modules resultModuleSource, reconciler recomputer, activity activitySink, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{repo: repo, students: students, modules: modules, reconciler: reconciler, activity: activity, validator: validate, logger: logger}
}

// ListByStudent returns a student's results joined with their modules.
func (s *ResultService) ListByStudent(ctx context.Context, studentID string) ([]models.ResultWithModule, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	results, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}
	return results, nil
}

// gradeFields derives the stored grade and grade point from the request.
// Completed results must carry a known letter grade; other statuses may omit
// it.
func gradeFields(status models.ResultStatus, grade string) (*string, *float64, error) {
	grade = strings.ToUpper(strings.TrimSpace(grade))
	if grade == "" {
		if status == models.ResultCompleted {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "completed result requires a grade")
		}
		return nil, nil, nil
	}
	point, ok := grading.PointForGrade(grade)
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown grade %q", grade))
	}
	return &grade, &point, nil
}

// Create records a new module attempt and recomputes the student's standing.
func (s *ResultService) Create(ctx context.Context, req CreateResultRequest) (*models.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result payload")
	}
	status := models.ResultStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown result status")
	}
	gradePtr, pointPtr, err := gradeFields(status, req.Grade)
	if err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	module, err := s.modules.FindByID(ctx, req.ModuleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}

	result := &models.Result{
		StudentID:     req.StudentID,
		ModuleID:      req.ModuleID,
		Semester:      req.Semester,
		Year:          req.Year,
		Grade:         gradePtr,
		GradePoint:    pointPtr,
		Status:        status,
		AttemptNumber: req.AttemptNumber,
	}
	if err := s.repo.Create(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create result")
	}
	appendActivity(s.logger, s.activity, &models.ActivityEntry{
		Action:      models.ActivityActionCreate,
		EntityType:  models.ActivityEntityResult,
		EntityID:    result.ID,
		Description: fmt.Sprintf("Recorded %s result for student %s", module.Code, req.StudentID),
	})
	if _, err := s.reconciler.Recompute(ctx, req.StudentID, ""); err != nil {
		return result, err
	}
	return result, nil
}

// Update amends an existing attempt and recomputes the student's standing.
func (s *ResultService) Update(ctx context.Context, id string, req UpdateResultRequest) (*models.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result payload")
	}
	status := models.ResultStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown result status")
	}
	gradePtr, pointPtr, err := gradeFields(status, req.Grade)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}

	result := existing.Result
	result.Semester = req.Semester
	result.Year = req.Year
	result.Grade = gradePtr
	result.GradePoint = pointPtr
	result.Status = status
	if req.AttemptNumber > 0 {
		result.AttemptNumber = req.AttemptNumber
	}

	if err := s.repo.Update(ctx, &result); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update result")
	}
	appendActivity(s.logger, s.activity, &models.ActivityEntry{
		Action:      models.ActivityActionUpdate,
		EntityType:  models.ActivityEntityResult,
		EntityID:    result.ID,
		Description: fmt.Sprintf("Amended %s result for student %s", existing.ModuleCode, result.StudentID),
	})
	if _, err := s.reconciler.Recompute(ctx, result.StudentID, ""); err != nil {
		return &result, err
	}
	return &result, nil
}

// Delete removes an attempt and recomputes the student's standing. Deleting
// a student's only qualifying results leaves their last snapshot in place.
func (s *ResultService) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete result")
	}
	appendActivity(s.logger, s.activity, &models.ActivityEntry{
		Action:      models.ActivityActionDelete,
		EntityType:  models.ActivityEntityResult,
		EntityID:    id,
		Description: fmt.Sprintf("Removed %s result for student %s", existing.ModuleCode, existing.StudentID),
	})
	if _, err := s.reconciler.Recompute(ctx, existing.StudentID, ""); err != nil {
		return err
	}
	return nil
}
