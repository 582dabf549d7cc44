package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CCamarillo18/gestorasistencia2026/internal/service"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
	"github.com/CCamarillo18/gestorasistencia2026/pkg/response"
)

// SettingsHandler exposes the academic settings, subject-hours and
// configuration snapshot endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Get the academic settings singleton
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Update the academic settings singleton
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Router /admin/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cuerpo de la petición inválido"))
		return
	}
	settings, err := h.settings.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// ListHours godoc
// @Summary List the live subject-hour allocation
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/subject-hours [get]
func (h *SettingsHandler) ListHours(c *gin.Context) {
	hours, err := h.settings.ListHours(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hours, nil)
}

// UpdateHours godoc
// @Summary Bulk upsert subject-hour allocations
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.UpdateHoursRequest true "Hour allocations"
// @Success 200 {object} response.Envelope
// @Router /admin/subject-hours [put]
func (h *SettingsHandler) UpdateHours(c *gin.Context) {
	var req service.UpdateHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cuerpo de la petición inválido"))
		return
	}
	if err := h.settings.UpdateHours(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true}, nil)
}

// ClearHours godoc
// @Summary Clear the live subject-hour allocation
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/subject-hours [delete]
func (h *SettingsHandler) ClearHours(c *gin.Context) {
	deleted, err := h.settings.ClearHours(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}

// SaveConfig godoc
// @Summary Save settings plus hours and snapshot the configuration
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.SaveConfigRequest true "Configuration payload"
// @Success 201 {object} response.Envelope
// @Router /admin/config-store/save [post]
func (h *SettingsHandler) SaveConfig(c *gin.Context) {
	var req service.SaveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cuerpo de la petición inválido"))
		return
	}
	profile, err := h.settings.SaveConfig(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// History godoc
// @Summary List configuration snapshots summarised by grade buckets
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/config-store/history [get]
func (h *SettingsHandler) History(c *gin.Context) {
	history, err := h.settings.History(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}
