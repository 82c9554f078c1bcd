package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

// TaskHandler handles task list requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks returns the caller's tasks, newest first
func (h *TaskHandler) ListTasks(c echo.Context) error {
	userID := getUserIDFromContext(c)

	tasks, err := h.taskService.ListTasks(c.Request().Context(), userID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"tasks":   tasks,
	})
}

// GetTask returns one of the caller's tasks
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id, getUserIDFromContext(c))
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"task":    task,
	})
}

// CreateTask adds a task to the caller's list
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"task":    task,
	})
}

// UpdateTask applies a partial patch to one of the caller's tasks
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), id, getUserIDFromContext(c), req)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"task":    task,
	})
}

// DeleteTask removes one of the caller's tasks
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), id, getUserIDFromContext(c)); err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{
		Success: true,
		Message: "Task deleted successfully",
	})
}

// CompleteTask marks one of the caller's tasks as done
func (h *TaskHandler) CompleteTask(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.CompleteTask(c.Request().Context(), id, getUserIDFromContext(c))
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"task":    task,
	})
}

// IncrementPomodoro adds one finished pomodoro to a task's counter
func (h *TaskHandler) IncrementPomodoro(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.IncrementPomodoro(c.Request().Context(), id, getUserIDFromContext(c))
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"task":    task,
	})
}
