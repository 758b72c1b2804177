package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/service"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

// ResultHandler exposes module result endpoints. Every mutation recomputes
// the owning student's CGPA before the response is sent.
type ResultHandler struct {
	results *service.ResultService
}

// NewResultHandler constructs ResultHandler.
func NewResultHandler(results *service.ResultService) *ResultHandler {
	return &ResultHandler{results: results}
}

// Create godoc
// @Summary Record a module result
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body service.CreateResultRequest true "Result payload"
// @Success 201 {object} response.Envelope
// @Router /results [post]
func (h *ResultHandler) Create(c *gin.Context) {
	var req service.CreateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.results.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update godoc
// @Summary Amend a module result
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param payload body service.UpdateResultRequest true "Result payload"
// @Success 200 {object} response.Envelope
// @Router /results/{id} [put]
func (h *ResultHandler) Update(c *gin.Context) {
	var req service.UpdateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.results.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Remove a module result
// @Tags Results
// @Param id path string true "Result ID"
// @Success 204
// @Router /results/{id} [delete]
func (h *ResultHandler) Delete(c *gin.Context) {
	if err := h.results.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
