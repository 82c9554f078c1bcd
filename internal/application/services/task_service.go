package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pomodorify/core/internal/domain/entities"
	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

// TaskService handles task list operations.
type TaskService struct {
	taskRepo ports.TaskRepository
	logger   *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// ListTasks returns all of the user's tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]*entities.Task, error) {
	return s.taskRepo.List(ctx, userID)
}

// GetTask returns one task owned by the user.
func (s *TaskService) GetTask(ctx context.Context, id, userID uuid.UUID) (*entities.Task, error) {
	return s.taskRepo.GetByID(ctx, id, userID)
}

// CreateTask adds a task to the user's list. The pomodoro estimate defaults
// to one when omitted.
func (s *TaskService) CreateTask(ctx context.Context, userID uuid.UUID, req ports.CreateTaskRequest) (*entities.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, entities.ErrTitleRequired
	}

	pomodoro := 1
	if req.Pomodoro != nil {
		pomodoro = *req.Pomodoro
	}

	task := &entities.Task{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    title,
		Content:  req.Content,
		Pomodoro: pomodoro,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Infow("task created", "user_id", userID, "task_id", task.ID)

	return task, nil
}

// UpdateTask applies a partial patch to a task owned by the user.
func (s *TaskService) UpdateTask(ctx context.Context, id, userID uuid.UUID, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, entities.ErrTitleRequired
		}
		task.Title = title
	}
	if req.Content != nil {
		task.Content = *req.Content
	}
	if req.Pomodoro != nil {
		task.Pomodoro = *req.Pomodoro
	}
	if req.IsDone != nil {
		task.IsDone = *req.IsDone
	}
	if req.CompletedPomodoros != nil {
		task.CompletedPomodoros = *req.CompletedPomodoros
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// DeleteTask removes a task owned by the user.
func (s *TaskService) DeleteTask(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.taskRepo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Infow("task deleted", "user_id", userID, "task_id", id)

	return nil
}

// CompleteTask marks a task done. Completing an already-done task is a
// no-op that returns the current state.
func (s *TaskService) CompleteTask(ctx context.Context, id, userID uuid.UUID) (*entities.Task, error) {
	return s.taskRepo.MarkDone(ctx, id, userID)
}

// IncrementPomodoro adds one finished pomodoro to the task's counter.
func (s *TaskService) IncrementPomodoro(ctx context.Context, id, userID uuid.UUID) (*entities.Task, error) {
	return s.taskRepo.IncrementPomodoros(ctx, id, userID)
}
