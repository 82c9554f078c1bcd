package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

// SuggestionHandler handles AI-backed suggestion requests
type SuggestionHandler struct {
	suggestionService ports.SuggestionService
	logger            *logger.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(suggestionService ports.SuggestionService, logger *logger.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionService: suggestionService,
		logger:            logger,
	}
}

// SuggestTasks proposes new tasks based on the caller's task history
func (h *SuggestionHandler) SuggestTasks(c echo.Context) error {
	var req ports.SuggestTasksRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	response, err := h.suggestionService.GenerateSuggestions(c.Request().Context(), req)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// BreakdownTask splits a task into ordered subtasks
func (h *SuggestionHandler) BreakdownTask(c echo.Context) error {
	var req ports.BreakdownTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.suggestionService.BreakdownTask(c.Request().Context(), req)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, response)
}
