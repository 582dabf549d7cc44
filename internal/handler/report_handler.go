package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CCamarillo18/gestorasistencia2026/internal/middleware"
	"github.com/CCamarillo18/gestorasistencia2026/internal/service"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
	"github.com/CCamarillo18/gestorasistencia2026/pkg/response"
)

// ReportHandler exposes the daily report, CSV export and school-wide
// absence endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Daily godoc
// @Summary Build daily reports for the caller's records
// @Tags Reports
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD, defaults to today)"
// @Param course_id query string false "Filter by course"
// @Param subject_id query string false "Filter by subject"
// @Success 200 {object} response.Envelope
// @Router /reports/daily [get]
func (h *ReportHandler) Daily(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := service.DailyReportFilter{
		Date:      c.Query("date"),
		CourseID:  c.Query("course_id"),
		SubjectID: c.Query("subject_id"),
	}
	reports, err := h.reports.DailyReports(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// ExportCSV godoc
// @Summary Export the caller's absent rows for a date as CSV
// @Tags Reports
// @Produce text/csv
// @Param date query string false "Date (YYYY-MM-DD, defaults to today)"
// @Success 200 {string} string "CSV payload"
// @Router /reports/export/csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payload, filename, err := h.reports.ExportCSV(c.Request.Context(), claims, c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// DailyAbsences godoc
// @Summary Aggregate every absence of the day school wide
// @Tags Absences
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Envelope
// @Router /absences/daily [get]
func (h *ReportHandler) DailyAbsences(c *gin.Context) {
	absences, err := h.reports.DailyAbsences(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, absences, nil)
}
