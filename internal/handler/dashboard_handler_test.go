package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/service"
	"github.com/noah-isme/student-records-api/pkg/response"
)

type fakeDashboardRepo struct {
	total  int
	avg    float64
	latest []dto.CGPATrendPoint
	atRisk []dto.AtRiskStudent
}

func (f *fakeDashboardRepo) CountStudents(ctx context.Context) (int, error) { return f.total, nil }

func (f *fakeDashboardRepo) CountByStatus(ctx context.Context, status models.StatusLabel) (int, error) {
	return 0, nil
}

func (f *fakeDashboardRepo) AvgLatestCGPA(ctx context.Context) (float64, error) { return f.avg, nil }

func (f *fakeDashboardRepo) TrendPoints(ctx context.Context, limit int) ([]dto.CGPATrendPoint, error) {
	return f.latest, nil
}

func (f *fakeDashboardRepo) GradeDistribution(ctx context.Context) ([]dto.GradeDistributionSlice, error) {
	return nil, nil
}

func (f *fakeDashboardRepo) AtRiskStudents(ctx context.Context, threshold float64, limit int) ([]dto.AtRiskStudent, error) {
	return f.atRisk, nil
}

func (f *fakeDashboardRepo) LatestSemesterAverages(ctx context.Context) ([]dto.CGPATrendPoint, error) {
	return f.latest, nil
}

func (f *fakeDashboardRepo) HighestFailureRate(ctx context.Context, minAttempts int) (*dto.ModuleFailureRate, error) {
	return nil, nil
}

type fakeActivityReader struct{}

func (f *fakeActivityReader) Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	return []models.ActivityEntry{{Action: models.ActivityActionCreate}}, nil
}

func newDashboardTestRouter(repo *fakeDashboardRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewDashboardService(repo, &fakeActivityReader{}, nil, nil, service.DashboardServiceConfig{})
	h := NewDashboardHandler(svc, nil)

	r := gin.New()
	r.GET("/dashboard/metrics", h.Metrics)
	r.GET("/dashboard/at-risk", h.AtRisk)
	r.GET("/dashboard/recent-activity", h.RecentActivity)
	return r
}

func TestDashboardHandlerMetrics(t *testing.T) {
	repo := &fakeDashboardRepo{
		total: 42,
		avg:   3.2,
		latest: []dto.CGPATrendPoint{
			{Semester: 2, Year: 2023, AvgCGPA: 3.25},
			{Semester: 1, Year: 2023, AvgCGPA: 3.10},
		},
	}
	r := newDashboardTestRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/dashboard/metrics", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	payload, _ := json.Marshal(envelope.Data)
	var metrics dto.DashboardMetrics
	require.NoError(t, json.Unmarshal(payload, &metrics))
	assert.Equal(t, 42, metrics.TotalStudents)
	assert.InDelta(t, 0.15, metrics.CGPATrend, 1e-9)
}

func TestDashboardHandlerAtRisk(t *testing.T) {
	repo := &fakeDashboardRepo{atRisk: []dto.AtRiskStudent{{ID: "STU-009", Status: "Probation"}}}
	r := newDashboardTestRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/dashboard/at-risk", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "STU-009")
}

func TestDashboardHandlerRecentActivity(t *testing.T) {
	r := newDashboardTestRouter(&fakeDashboardRepo{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/dashboard/recent-activity?limit=5", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.ActivityActionCreate)
}
