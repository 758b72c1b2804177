package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/service"
	"github.com/noah-isme/student-records-api/pkg/response"
)

// DashboardHandler exposes the dashboard rollup endpoints.
type DashboardHandler struct {
	dashboard *service.DashboardService
	bulk      *service.BulkRecomputeService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService, bulk *service.BulkRecomputeService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, bulk: bulk}
}

// Metrics godoc
// @Summary Headline dashboard metrics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/metrics [get]
func (h *DashboardHandler) Metrics(c *gin.Context) {
	metrics, err := h.dashboard.Metrics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, metrics, nil)
}

// Trend godoc
// @Summary Semester average CGPA trend
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/cgpa-trend [get]
func (h *DashboardHandler) Trend(c *gin.Context) {
	points, err := h.dashboard.Trend(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, points, nil)
}

// GradeDistribution godoc
// @Summary Letter grade distribution
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/grade-distribution [get]
func (h *DashboardHandler) GradeDistribution(c *gin.Context) {
	slices, err := h.dashboard.GradeDistribution(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slices, nil)
}

// AtRisk godoc
// @Summary Students needing intervention
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/at-risk [get]
func (h *DashboardHandler) AtRisk(c *gin.Context) {
	students, err := h.dashboard.AtRisk(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Insights godoc
// @Summary Rule-based cohort observations
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/insights [get]
func (h *DashboardHandler) Insights(c *gin.Context) {
	insights, err := h.dashboard.Insights(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, insights, nil)
}

// RecentActivity godoc
// @Summary Latest audit log entries
// @Tags Dashboard
// @Produce json
// @Param limit query int false "Entries to return"
// @Success 200 {object} response.Envelope
// @Router /dashboard/recent-activity [get]
func (h *DashboardHandler) RecentActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	entries, err := h.dashboard.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// RecalculateAll godoc
// @Summary Queue a CGPA recomputation for every student
// @Tags Dashboard
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /dashboard/recalculate-all [post]
func (h *DashboardHandler) RecalculateAll(c *gin.Context) {
	queued, err := h.bulk.EnqueueAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"queued": queued}, nil)
}
