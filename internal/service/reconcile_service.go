package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/grading"
	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type reconcileResultSource interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ResultWithModule, error)
}

type reconcileStudentSource interface {
	GetStatus(ctx context.Context, id string) (models.StatusLabel, error)
}

type reconcileCgpaStore interface {
	ApplyReconciliation(ctx context.Context, studentID string, record *models.CgpaRecord, status models.StatusLabel, updateStatus bool) error
}

type activitySink interface {
	Append(ctx context.Context, entry *models.ActivityEntry) error
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

const reconcileStripes = 64

// ReconcileService recomputes a student's CGPA ledger and standing after any
// result mutation. Recomputations for the same student are serialised through
// a striped mutex; different students proceed concurrently.
type ReconcileService struct {
	results  reconcileResultSource
	students reconcileStudentSource
	cgpa     reconcileCgpaStore
	activity activitySink
	cache    cacheInvalidator
	logger   *zap.Logger
	locks    [reconcileStripes]sync.Mutex
}

// NewReconcileService constructs the reconcile service. Activity and cache
// are optional; a nil value disables that side effect.
func NewReconcileService(results reconcileResultSource, students reconcileStudentSource, cgpa reconcileCgpaStore, activity activitySink, cache cacheInvalidator, logger *zap.Logger) *ReconcileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileService{results: results, students: students, cgpa: cgpa, activity: activity, cache: cache, logger: logger}
}

func (s *ReconcileService) stripe(studentID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(studentID)) //nolint:errcheck
	return &s.locks[h.Sum32()%reconcileStripes]
}

// Recompute rebuilds the student's CGPA history from their results and
// persists the latest snapshot together with the derived standing. With no
// qualifying results it is a no-op: nothing is written and the existing
// status stands. The snapshot upsert and the status update commit atomically.
func (s *ReconcileService) Recompute(ctx context.Context, studentID string, performedBy string) (*models.CgpaRecord, error) {
	mu := s.stripe(studentID)
	mu.Lock()
	defer mu.Unlock()

	results, err := s.results.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results for recompute")
	}

	snapshots := grading.ComputeAggregates(results)
	if len(snapshots) == 0 {
		s.logger.Debug("recompute skipped, no qualifying results", zap.String("student_id", studentID))
		return nil, nil
	}

	latest := snapshots[len(snapshots)-1]
	record := &models.CgpaRecord{
		StudentID:             studentID,
		Semester:              latest.Semester,
		Year:                  latest.Year,
		SemesterGPA:           latest.SemesterGPA,
		CumulativeCGPA:        latest.CumulativeCGPA,
		TotalCreditsEarned:    latest.CumulativeCreditsEarned,
		TotalCreditsAttempted: latest.CumulativeCreditsAttempted,
	}

	current, err := s.students.GetStatus(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student status")
	}
	derived := grading.Classify(snapshots)
	// ApplyReconciliation re-checks administrative labels inside its
	// transaction; this read only skips write and log noise.
	updateStatus := !current.Administrative() && derived != current

	if err := s.cgpa.ApplyReconciliation(ctx, studentID, record, derived, updateStatus); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist recomputed cgpa")
	}

	s.invalidateDashboard()
	s.logActivity(studentID, performedBy, record, derived, updateStatus)
	return record, nil
}

func (s *ReconcileService) invalidateDashboard() {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func (s *ReconcileService) logActivity(studentID, performedBy string, record *models.CgpaRecord, status models.StatusLabel, statusChanged bool) {
	description := fmt.Sprintf("CGPA recomputed to %.2f for semester %d/%d", record.CumulativeCGPA, record.Semester, record.Year)
	if statusChanged {
		description = fmt.Sprintf("%s, standing set to %s", description, status)
	}
	appendActivity(s.logger, s.activity, &models.ActivityEntry{
		Action:      models.ActivityActionRecalculate,
		EntityType:  models.ActivityEntityStudent,
		EntityID:    studentID,
		Description: description,
		PerformedBy: performedBy,
	})
}
