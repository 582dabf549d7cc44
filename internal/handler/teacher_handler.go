package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CCamarillo18/gestorasistencia2026/internal/middleware"
	"github.com/CCamarillo18/gestorasistencia2026/internal/service"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
	"github.com/CCamarillo18/gestorasistencia2026/pkg/response"
)

// TeacherHandler exposes the teacher profile, timetable and the admin
// teacher management endpoints.
type TeacherHandler struct {
	teachers *service.TeacherService
}

// NewTeacherHandler constructs TeacherHandler.
func NewTeacherHandler(teachers *service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers}
}

// Profile godoc
// @Summary Get or provision the caller's teacher profile
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers/profile [get]
func (h *TeacherHandler) Profile(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	teacher, err := h.teachers.Profile(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// TodayClasses godoc
// @Summary List the caller's timetable slots for today
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers/today-classes [get]
func (h *TeacherHandler) TodayClasses(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	classes, err := h.teachers.TodayClasses(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Subjects godoc
// @Summary List the caller's subjects
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers/subjects [get]
func (h *TeacherHandler) Subjects(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	subjects, err := h.teachers.Subjects(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// AllSubjects godoc
// @Summary List every subject with its course
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /subjects/all [get]
func (h *TeacherHandler) AllSubjects(c *gin.Context) {
	subjects, err := h.teachers.AllSubjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// List godoc
// @Summary List teachers
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.teachers.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// Update godoc
// @Summary Update a teacher
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body service.UpdateTeacherRequest true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Router /admin/teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	var req service.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cuerpo de la petición inválido"))
		return
	}
	teacher, err := h.teachers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Delete godoc
// @Summary Delete a teacher without subjects
// @Tags Admin
// @Param id path string true "Teacher ID"
// @Success 204
// @Router /admin/teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	if err := h.teachers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
