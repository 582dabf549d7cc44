package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CCamarillo18/gestorasistencia2026/internal/middleware"
	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	"github.com/CCamarillo18/gestorasistencia2026/internal/service"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
	"github.com/CCamarillo18/gestorasistencia2026/pkg/response"
)

type attendanceService interface {
	Submit(ctx context.Context, claims *models.AuthClaims, req service.SubmitAttendanceRequest) (*service.SubmitAttendanceResponse, error)
	ListRecent(ctx context.Context) ([]models.AttendanceRecordSummary, error)
	Delete(ctx context.Context, recordID string) error
}

// AttendanceHandler exposes attendance submission and the admin record
// endpoints.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Submit godoc
// @Summary Record attendance for one class session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.SubmitAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Submit(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SubmitAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cuerpo de la petición inválido"))
		return
	}
	result, err := h.attendance.Submit(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListRecent godoc
// @Summary List the latest attendance records
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/attendance-records [get]
func (h *AttendanceHandler) ListRecent(c *gin.Context) {
	records, err := h.attendance.ListRecent(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Delete godoc
// @Summary Delete an attendance record and its absences
// @Tags Admin
// @Param id path string true "Attendance record ID"
// @Success 204
// @Router /admin/attendance-records/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.attendance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
