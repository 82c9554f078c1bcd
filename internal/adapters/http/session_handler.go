package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pomodorify/core/internal/domain/entities"
	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

// SessionHandler handles pomodoro timer session requests
type SessionHandler struct {
	sessionService ports.SessionService
	logger         *logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService ports.SessionService, logger *logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

// StartSession records the beginning of a timer run
func (h *SessionHandler) StartSession(c echo.Context) error {
	var req ports.StartSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	session, err := h.sessionService.StartSession(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"session": session,
	})
}

// EndSession closes a timer run and records its duration
func (h *SessionHandler) EndSession(c echo.Context) error {
	var req ports.EndSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.sessionService.EndSession(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"session": session,
	})
}

// ListSessions returns a filtered, paginated history of timer runs
func (h *SessionHandler) ListSessions(c echo.Context) error {
	filter, err := sessionFilterFromQuery(c)
	if err != nil {
		return err
	}

	page, err := h.sessionService.ListSessions(c.Request().Context(), getUserIDFromContext(c), filter)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"sessions":   page.Sessions,
		"pagination": page.Pagination,
	})
}

// GetStats aggregates completed pomodoros over an optional period
func (h *SessionHandler) GetStats(c echo.Context) error {
	period := c.QueryParam("period")

	stats, err := h.sessionService.GetStats(c.Request().Context(), getUserIDFromContext(c), period)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

func sessionFilterFromQuery(c echo.Context) (ports.SessionFilter, error) {
	var filter ports.SessionFilter

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		filter.Limit = limit
	}

	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid page")
		}
		filter.Page = page
	}

	if raw := c.QueryParam("taskId"); raw != "" {
		taskID, err := uuid.Parse(raw)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid taskId")
		}
		filter.TaskID = &taskID
	}

	if raw := c.QueryParam("sessionType"); raw != "" {
		sessionType := entities.SessionType(raw)
		if !sessionType.IsValid() {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid sessionType")
		}
		filter.SessionType = &sessionType
	}

	return filter, nil
}
