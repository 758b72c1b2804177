package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/jobs"
)

type studentIDSource interface {
	StudentIDs(ctx context.Context) ([]string, error)
}

// BulkRecomputeService fans a full-cohort CGPA recomputation out over the
// background job queue so the admin endpoint returns immediately.
type BulkRecomputeService struct {
	ids        studentIDSource
	reconciler recomputer
	metrics    *MetricsService
	activity   activitySink
	queue      *jobs.Queue
	logger     *zap.Logger
}

// NewBulkRecomputeService constructs the service and its queue. Call Start
// before enqueueing and Stop on shutdown.
func NewBulkRecomputeService(ids studentIDSource, reconciler recomputer, metrics *MetricsService, activity activitySink, cfg jobs.QueueConfig, logger *zap.Logger) *BulkRecomputeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &BulkRecomputeService{ids: ids, reconciler: reconciler, metrics: metrics, activity: activity, logger: logger}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	s.queue = jobs.NewQueue("cgpa-recompute", s.handle, cfg)
	return s
}

// Start launches the queue workers.
func (s *BulkRecomputeService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *BulkRecomputeService) Stop() {
	s.queue.Stop()
}

func (s *BulkRecomputeService) handle(ctx context.Context, job jobs.Job) error {
	studentID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	start := time.Now()
	if _, err := s.reconciler.Recompute(ctx, studentID, "bulk-recompute"); err != nil {
		return err
	}
	s.metrics.ObserveRecompute(time.Since(start))
	return nil
}

// EnqueueAll schedules a recomputation for every registered student and
// returns the number of jobs queued.
func (s *BulkRecomputeService) EnqueueAll(ctx context.Context) (int, error) {
	ids, err := s.ids.StudentIDs(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students for recompute")
	}
	queued := 0
	for _, id := range ids {
		job := jobs.Job{ID: uuid.NewString(), Type: "cgpa-recompute", Payload: id}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue recompute", zap.String("student_id", id), zap.Error(err))
			continue
		}
		queued++
	}
	appendActivity(s.logger, s.activity, &models.ActivityEntry{
		Action:      models.ActivityActionRecalculate,
		EntityType:  models.ActivityEntityStudent,
		EntityID:    "*",
		Description: fmt.Sprintf("Queued CGPA recomputation for %d students", queued),
	})
	return queued, nil
}
