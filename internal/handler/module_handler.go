package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/service"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

// ModuleHandler exposes course module endpoints.
type ModuleHandler struct {
	modules *service.ModuleService
}

// NewModuleHandler constructs ModuleHandler.
func NewModuleHandler(modules *service.ModuleService) *ModuleHandler {
	return &ModuleHandler{modules: modules}
}

// List godoc
// @Summary List modules
// @Tags Modules
// @Produce json
// @Param programme query string false "Filter by programme"
// @Param semester query int false "Filter by semester"
// @Success 200 {object} response.Envelope
// @Router /modules [get]
func (h *ModuleHandler) List(c *gin.Context) {
	var filter models.ModuleFilter
	filter.Programme = c.Query("programme")
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semester = semester
	}
	modules, err := h.modules.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, nil)
}

// Get godoc
// @Summary Get a module
// @Tags Modules
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Router /modules/{id} [get]
func (h *ModuleHandler) Get(c *gin.Context) {
	module, err := h.modules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module, nil)
}

// Create godoc
// @Summary Create a module
// @Tags Modules
// @Accept json
// @Produce json
// @Param payload body service.ModuleRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Router /modules [post]
func (h *ModuleHandler) Create(c *gin.Context) {
	var req service.ModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	module, err := h.modules.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, module)
}

// Update godoc
// @Summary Update a module
// @Tags Modules
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param payload body service.ModuleRequest true "Module payload"
// @Success 200 {object} response.Envelope
// @Router /modules/{id} [put]
func (h *ModuleHandler) Update(c *gin.Context) {
	var req service.ModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	module, err := h.modules.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module, nil)
}

// Delete godoc
// @Summary Delete a module and its results
// @Tags Modules
// @Param id path string true "Module ID"
// @Success 204
// @Router /modules/{id} [delete]
func (h *ModuleHandler) Delete(c *gin.Context) {
	if err := h.modules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
