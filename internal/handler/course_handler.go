package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CCamarillo18/gestorasistencia2026/internal/service"
	"github.com/CCamarillo18/gestorasistencia2026/pkg/response"
)

// CourseHandler exposes the admin course listing.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}
