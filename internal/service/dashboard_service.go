package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type dashboardRepository interface {
	CountStudents(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.StatusLabel) (int, error)
	AvgLatestCGPA(ctx context.Context) (float64, error)
	TrendPoints(ctx context.Context, limit int) ([]dto.CGPATrendPoint, error)
	GradeDistribution(ctx context.Context) ([]dto.GradeDistributionSlice, error)
	AtRiskStudents(ctx context.Context, threshold float64, limit int) ([]dto.AtRiskStudent, error)
	LatestSemesterAverages(ctx context.Context) ([]dto.CGPATrendPoint, error)
	HighestFailureRate(ctx context.Context, minAttempts int) (*dto.ModuleFailureRate, error)
}

type activityReader interface {
	Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error)
}

// Cache keys for dashboard payloads. Reconciliation invalidates the whole
// dashboard:* space after every write.
const (
	cacheKeyMetrics      = "dashboard:metrics"
	cacheKeyTrend        = "dashboard:trend"
	cacheKeyDistribution = "dashboard:distribution"
	cacheKeyAtRisk       = "dashboard:at-risk"
	cacheKeyInsights     = "dashboard:insights"
)

// atRiskCGPAThreshold flags students with any CGPA record below this value
// for the at-risk panel even when their standing has not dropped to
// Probation.
const atRiskCGPAThreshold = 2.5

// trendSignificance is the minimum semester-over-semester average delta that
// produces a trend insight.
const trendSignificance = 0.05

// Failure-rate insight thresholds: a module needs this many finished
// attempts before its failure share is worth reporting.
const (
	failureRateThreshold   = 0.2
	failureRateMinAttempts = 5
)

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL    time.Duration
	AtRiskLimit int
	TrendCells  int
}

// DashboardService composes the rollups behind the dashboard views. All
// reads come from the reconciled CGPA ledger; nothing here recomputes.
type DashboardService struct {
	repo     dashboardRepository
	activity activityReader
	cache    *CacheService
	logger   *zap.Logger
	cfg      DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(repo dashboardRepository, activity activityReader, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.AtRiskLimit <= 0 {
		cfg.AtRiskLimit = 10
	}
	if cfg.TrendCells <= 0 {
		cfg.TrendCells = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, activity: activity, cache: cache, logger: logger, cfg: cfg}
}

// Metrics returns the headline dashboard rollup.
func (s *DashboardService) Metrics(ctx context.Context) (*dto.DashboardMetrics, error) {
	var cached dto.DashboardMetrics
	if s.cache.Get(ctx, cacheKeyMetrics, &cached) {
		return &cached, nil
	}

	total, err := s.repo.CountStudents(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	deans, err := s.repo.CountByStatus(ctx, models.StatusDeansList)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count dean's list")
	}
	probation, err := s.repo.CountByStatus(ctx, models.StatusProbation)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count probation")
	}
	avg, err := s.repo.AvgLatestCGPA(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute average cgpa")
	}
	delta, err := s.trendDelta(ctx)
	if err != nil {
		return nil, err
	}

	metrics := &dto.DashboardMetrics{
		TotalStudents:  total,
		DeansListCount: deans,
		ProbationCount: probation,
		AvgCGPA:        round2(avg),
		CGPATrend:      delta,
	}
	s.cache.Set(ctx, cacheKeyMetrics, metrics, s.cfg.CacheTTL)
	return metrics, nil
}

// trendDelta measures the shift between the two most recent semester
// averages. Fewer than two semesters of history yields zero.
func (s *DashboardService) trendDelta(ctx context.Context) (float64, error) {
	recent, err := s.repo.LatestSemesterAverages(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester averages")
	}
	if len(recent) < 2 {
		return 0, nil
	}
	return round2(recent[0].AvgCGPA - recent[1].AvgCGPA), nil
}

// Trend returns the chronological semester average series.
func (s *DashboardService) Trend(ctx context.Context) ([]dto.CGPATrendPoint, error) {
	var cached []dto.CGPATrendPoint
	if s.cache.Get(ctx, cacheKeyTrend, &cached) {
		return cached, nil
	}
	points, err := s.repo.TrendPoints(ctx, s.cfg.TrendCells)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cgpa trend")
	}
	s.cache.Set(ctx, cacheKeyTrend, points, s.cfg.CacheTTL)
	return points, nil
}

// GradeDistribution returns each letter grade's share of graded results.
func (s *DashboardService) GradeDistribution(ctx context.Context) ([]dto.GradeDistributionSlice, error) {
	var cached []dto.GradeDistributionSlice
	if s.cache.Get(ctx, cacheKeyDistribution, &cached) {
		return cached, nil
	}
	slices, err := s.repo.GradeDistribution(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade distribution")
	}
	s.cache.Set(ctx, cacheKeyDistribution, slices, s.cfg.CacheTTL)
	return slices, nil
}

// AtRisk returns students needing intervention, worst standing first.
func (s *DashboardService) AtRisk(ctx context.Context) ([]dto.AtRiskStudent, error) {
	var cached []dto.AtRiskStudent
	if s.cache.Get(ctx, cacheKeyAtRisk, &cached) {
		return cached, nil
	}
	students, err := s.repo.AtRiskStudents(ctx, atRiskCGPAThreshold, s.cfg.AtRiskLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load at-risk students")
	}
	s.cache.Set(ctx, cacheKeyAtRisk, students, s.cfg.CacheTTL)
	return students, nil
}

// Insights derives rule-based observations from the current rollups.
func (s *DashboardService) Insights(ctx context.Context) ([]dto.Insight, error) {
	var cached []dto.Insight
	if s.cache.Get(ctx, cacheKeyInsights, &cached) {
		return cached, nil
	}

	metrics, err := s.Metrics(ctx)
	if err != nil {
		return nil, err
	}

	insights := make([]dto.Insight, 0, 4)
	switch {
	case metrics.CGPATrend >= trendSignificance:
		insights = append(insights, dto.Insight{
			Type:        dto.InsightPositive,
			Title:       "Cohort CGPA improving",
			Description: fmt.Sprintf("Average CGPA rose by %.2f against the previous semester.", metrics.CGPATrend),
		})
	case metrics.CGPATrend <= -trendSignificance:
		insights = append(insights, dto.Insight{
			Type:           dto.InsightWarning,
			Title:          "Cohort CGPA declining",
			Description:    fmt.Sprintf("Average CGPA fell by %.2f against the previous semester.", math.Abs(metrics.CGPATrend)),
			ActionRequired: true,
		})
	}
	if worst, err := s.repo.HighestFailureRate(ctx, failureRateMinAttempts); err != nil {
		s.logger.Warn("failed to load module failure rates", zap.Error(err))
	} else if worst != nil && worst.FailureRate >= failureRateThreshold {
		insights = append(insights, dto.Insight{
			Type:           dto.InsightWarning,
			Title:          fmt.Sprintf("High failure rate in %s", worst.ModuleCode),
			Description:    fmt.Sprintf("Module %s (%s) has a %.0f%% failure rate across %d attempts. Consider reviewing delivery or adding support sessions.", worst.ModuleCode, worst.ModuleName, worst.FailureRate*100, worst.Attempts),
			ActionRequired: true,
		})
	}
	if metrics.ProbationCount > 0 {
		insights = append(insights, dto.Insight{
			Type:           dto.InsightCritical,
			Title:          "Students on probation",
			Description:    fmt.Sprintf("%d students are on academic probation and need intervention plans.", metrics.ProbationCount),
			ActionRequired: true,
		})
	}
	if metrics.DeansListCount > 0 {
		insights = append(insights, dto.Insight{
			Type:        dto.InsightPositive,
			Title:       "Dean's List performers",
			Description: fmt.Sprintf("%d students currently qualify for the Dean's List.", metrics.DeansListCount),
		})
	}
	if metrics.TotalStudents > 0 && metrics.AvgCGPA > 0 && metrics.AvgCGPA < atRiskCGPAThreshold {
		insights = append(insights, dto.Insight{
			Type:           dto.InsightCritical,
			Title:          "Low cohort average",
			Description:    fmt.Sprintf("The cohort average CGPA of %.2f sits below the %.1f risk threshold.", metrics.AvgCGPA, atRiskCGPAThreshold),
			ActionRequired: true,
		})
	}

	s.cache.Set(ctx, cacheKeyInsights, insights, s.cfg.CacheTTL)
	return insights, nil
}

// RecentActivity returns the latest audit entries, newest first.
func (s *DashboardService) RecentActivity(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	entries, err := s.activity.Recent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent activity")
	}
	return entries, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
