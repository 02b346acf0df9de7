package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/reading-reports-api/internal/models"
	appErrors "github.com/noah-isme/reading-reports-api/pkg/errors"
	"github.com/noah-isme/reading-reports-api/pkg/response"
)

type settingsService interface {
	Get(ctx context.Context) models.ScrapeSettings
	Update(ctx context.Context, settings models.ScrapeSettings) (*models.ScrapeSettings, error)
}

// SettingsHandler reads and replaces the scrape settings.
type SettingsHandler struct {
	settings settingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings settingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Current scrape settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.settings.Get(c.Request.Context()), nil)
}

// Update godoc
// @Summary Replace scrape settings
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ScrapeSettings true "Scrape settings"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req models.ScrapeSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	saved, err := h.settings.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, nil)
}
