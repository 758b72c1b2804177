package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type moduleRepository interface {
	List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error)
	FindByID(ctx context.Context, id string) (*models.Module, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, module *models.Module) error
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id string) error
}

// ModuleRequest holds payload for creating or updating a module.
type ModuleRequest struct {
	Code          string   `json:"code" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Credits       int      `json:"credits" validate:"required,gte=1,lte=30"`
	Semester      int      `json:"semester" validate:"required,gte=1"`
	Programme     string   `json:"programme" validate:"required"`
	IsCore        bool     `json:"is_core"`
	Prerequisites []string `json:"prerequisites"`
}

// ModuleService handles course module use-cases.
type ModuleService struct {
	repo      moduleRepository
	activity  activitySink
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModuleService constructs the module service.
func NewModuleService(repo moduleRepository, activity activitySink, validate *validator.Validate, logger *zap.Logger) *ModuleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleService{repo: repo, activity: activity, validator: validate, logger: logger}
}

// List returns modules matching the filter.
func (s *ModuleService) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error) {
	modules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	return modules, nil
}

// Get returns a single module.
func (s *ModuleService) Get(ctx context.Context, id string) (*models.Module, error) {
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	return module, nil
}

// Create registers a new module.
func (s *ModuleService) Create(ctx context.Context, req ModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.repo.ExistsByCode(ctx, code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate module code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "module code already used")
	}
	module := &models.Module{
		Code:          code,
		Name:          req.Name,
		Credits:       req.Credits,
		Semester:      req.Semester,
		Programme:     req.Programme,
		IsCore:        req.IsCore,
		Prerequisites: pq.StringArray(req.Prerequisites),
	}
	if err := s.repo.Create(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}
	appendActivity(s.logger, s.activity, &models.ActivityEntry{
		Action:      models.ActivityActionCreate,
		EntityType:  models.ActivityEntityModule,
		EntityID:    module.ID,
		Description: fmt.Sprintf("Added module %s %s (%d credits)", module.Code, module.Name, module.Credits),
	})
	return module, nil
}

// Update modifies an existing module. Credit changes take effect on affected
// students at their next recomputation.
func (s *ModuleService) Update(ctx context.Context, id string, req ModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.repo.ExistsByCode(ctx, code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate module code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "module code already used")
	}

	module.Code = code
	module.Name = req.Name
	module.Credits = req.Credits
	module.Semester = req.Semester
	module.Programme = req.Programme
	module.IsCore = req.IsCore
	module.Prerequisites = pq.StringArray(req.Prerequisites)

	if err := s.repo.Update(ctx, module); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update module")
	}
	appendActivity(s.logger, s.activity, &models.ActivityEntry{
		Action:      models.ActivityActionUpdate,
		EntityType:  models.ActivityEntityModule,
		EntityID:    module.ID,
		Description: fmt.Sprintf("Updated module %s", module.Code),
	})
	return module, nil
}

// Delete removes a module together with its results.
func (s *ModuleService) Delete(ctx context.Context, id string) error {
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete module")
	}
	appendActivity(s.logger, s.activity, &models.ActivityEntry{
		Action:      models.ActivityActionDelete,
		EntityType:  models.ActivityEntityModule,
		EntityID:    id,
		Description: fmt.Sprintf("Removed module %s and its results", module.Code),
	})
	return nil
}
