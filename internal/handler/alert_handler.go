package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/service"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

// AlertHandler exposes academic alert endpoints.
type AlertHandler struct {
	alerts *service.AlertService
}

// NewAlertHandler constructs AlertHandler.
func NewAlertHandler(alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// List godoc
// @Summary List unresolved alerts
// @Tags Alerts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	alerts, err := h.alerts.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}

// Create godoc
// @Summary Raise an alert against a student
// @Tags Alerts
// @Accept json
// @Produce json
// @Param payload body service.CreateAlertRequest true "Alert payload"
// @Success 201 {object} response.Envelope
// @Router /alerts [post]
func (h *AlertHandler) Create(c *gin.Context) {
	var req service.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	alert, err := h.alerts.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, alert)
}

// Resolve godoc
// @Summary Resolve an open alert
// @Tags Alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 204
// @Router /alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *gin.Context) {
	if err := h.alerts.Resolve(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
