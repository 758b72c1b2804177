package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/service"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students   *service.StudentService
	results    *service.ResultService
	reconciler *service.ReconcileService
	exports    *service.ExportService
}

// NewStudentHandler constructs StudentHandler. Exports may be nil when the
// export endpoints are disabled.
func NewStudentHandler(students *service.StudentService, results *service.ResultService, reconciler *service.ReconcileService, exports *service.ExportService) *StudentHandler {
	return &StudentHandler{students: students, results: results, reconciler: reconciler, exports: exports}
}

func studentFilterFromQuery(c *gin.Context) models.StudentFilter {
	var filter models.StudentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Programme = c.Query("programme")
	filter.Status = c.Query("status")
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semester = semester
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	return filter
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name, id or email"
// @Param programme query string false "Filter by programme"
// @Param semester query int false "Filter by current semester"
// @Param status query string false "Filter by standing"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort column (name, id, programme, created_at)"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, pagination, err := h.students.List(c.Request.Context(), studentFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student detail with results, CGPA history and alerts
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Register a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update a student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete a student and their records
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Results godoc
// @Summary List a student's module results
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/results [get]
func (h *StudentHandler) Results(c *gin.Context) {
	results, err := h.results.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// History godoc
// @Summary Get a student's chronological CGPA history
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/cgpa-history [get]
func (h *StudentHandler) History(c *gin.Context) {
	records, err := h.students.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Recalculate godoc
// @Summary Recompute a student's CGPA and standing
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/recalculate [post]
func (h *StudentHandler) Recalculate(c *gin.Context) {
	if _, err := h.students.Get(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.reconciler.Recompute(c.Request.Context(), c.Param("id"), "api")
	if err != nil {
		response.Error(c, err)
		return
	}
	if record == nil {
		response.JSON(c, http.StatusOK, gin.H{"recomputed": false, "reason": "no qualifying results"}, nil)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// ExportCSV godoc
// @Summary Export the student roster as CSV
// @Tags Exports
// @Produce text/csv
// @Success 200 {string} string "CSV payload"
// @Router /students/export [get]
func (h *StudentHandler) ExportCSV(c *gin.Context) {
	payload, filename, err := h.exports.StudentsCSV(c.Request.Context(), studentFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", payload)
}

// ImportCSV godoc
// @Summary Import students from a CSV upload
// @Tags Exports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Router /students/import [post]
func (h *StudentHandler) ImportCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing csv file"))
		return
	}
	defer file.Close() //nolint:errcheck

	report, err := h.exports.ImportStudentsCSV(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Transcript godoc
// @Summary Download a student's transcript as PDF
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Success 200 {string} string "PDF payload"
// @Router /students/{id}/transcript [get]
func (h *StudentHandler) Transcript(c *gin.Context) {
	payload, filename, err := h.exports.TranscriptPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", payload)
}
