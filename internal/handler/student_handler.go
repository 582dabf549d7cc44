package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CCamarillo18/gestorasistencia2026/internal/middleware"
	"github.com/CCamarillo18/gestorasistencia2026/internal/service"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
	"github.com/CCamarillo18/gestorasistencia2026/pkg/response"
)

// StudentHandler exposes rosters, per-course alerting and the admin student
// management endpoints.
type StudentHandler struct {
	students *service.StudentService
	alerts   *service.AlertService
	importer *service.ImportService
	maxBytes int64
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, alerts *service.AlertService, importer *service.ImportService, maxImportBytes int64) *StudentHandler {
	if maxImportBytes <= 0 {
		maxImportBytes = 5 << 20
	}
	return &StudentHandler{students: students, alerts: alerts, importer: importer, maxBytes: maxImportBytes}
}

// RosterBySchedule godoc
// @Summary List the roster behind a schedule slot
// @Tags Classes
// @Produce json
// @Param scheduleId path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{scheduleId}/students [get]
func (h *StudentHandler) RosterBySchedule(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	students, err := h.students.RosterBySchedule(c.Request.Context(), claims, c.Param("scheduleId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// RosterBySubject godoc
// @Summary List the roster behind a subject
// @Tags Subjects
// @Produce json
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /subjects/{subjectId}/students [get]
func (h *StudentHandler) RosterBySubject(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	students, err := h.students.RosterBySubject(c.Request.Context(), claims, c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Alerts godoc
// @Summary Flag students with consecutive absences in a course
// @Tags Students
// @Produce json
// @Param course_id query string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /students/alerts [get]
func (h *StudentHandler) Alerts(c *gin.Context) {
	alerts, err := h.alerts.Alerts(c.Request.Context(), c.Query("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}

// AttendanceSummary godoc
// @Summary Summarise sessions and absences per student of a course
// @Tags Students
// @Produce json
// @Param course_id query string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /students/attendance-summary [get]
func (h *StudentHandler) AttendanceSummary(c *gin.Context) {
	summary, err := h.alerts.Summary(c.Request.Context(), c.Query("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// List godoc
// @Summary List students
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Create godoc
// @Summary Create a student
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.StudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /admin/students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cuerpo de la petición inválido"))
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
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.StudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /admin/students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cuerpo de la petición inválido"))
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
// @Summary Delete a student without absence history
// @Tags Admin
// @Param id path string true "Student ID"
// @Success 204
// @Router /admin/students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Import students from a CSV roster
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file with nombre and curso columns"
// @Success 200 {object} response.Envelope
// @Router /admin/students/import [post]
func (h *StudentHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "se requiere el archivo en el campo file"))
		return
	}
	if header.Size > h.maxBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "el archivo excede el tamaño máximo permitido"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "no se pudo abrir el archivo"))
		return
	}
	defer file.Close()

	result, err := h.importer.Import(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
