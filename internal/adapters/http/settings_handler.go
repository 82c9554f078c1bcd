package http

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

// SettingsHandler handles per-user settings requests
type SettingsHandler struct {
	settingsService ports.SettingsService
	logger          *logger.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService ports.SettingsService, logger *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

// GetSettings returns the caller's settings, creating defaults on first use
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	settings, err := h.settingsService.GetSettings(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"settings": settings,
	})
}

// UpdateSettings merges a partial patch into the caller's settings. The
// patch is strictly allow-listed: unknown keys are rejected rather than
// silently dropped.
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	var req ports.UpdateSettingsRequest
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid settings payload: "+err.Error())
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	settings, err := h.settingsService.UpdateSettings(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"settings": settings,
	})
}
