package ports

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pomodorify/core/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	VerifyEmail(ctx context.Context, code string) (*entities.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	CheckAuth(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// TaskService interface for task list operations
type TaskService interface {
	ListTasks(ctx context.Context, userID uuid.UUID) ([]*entities.Task, error)
	GetTask(ctx context.Context, id, userID uuid.UUID) (*entities.Task, error)
	CreateTask(ctx context.Context, userID uuid.UUID, req CreateTaskRequest) (*entities.Task, error)
	UpdateTask(ctx context.Context, id, userID uuid.UUID, req UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, id, userID uuid.UUID) error
	CompleteTask(ctx context.Context, id, userID uuid.UUID) (*entities.Task, error)
	IncrementPomodoro(ctx context.Context, id, userID uuid.UUID) (*entities.Task, error)
}

// SessionService interface for timer session lifecycle and statistics
type SessionService interface {
	StartSession(ctx context.Context, userID uuid.UUID, req StartSessionRequest) (*entities.PomodoroSession, error)
	EndSession(ctx context.Context, userID uuid.UUID, req EndSessionRequest) (*entities.PomodoroSession, error)
	ListSessions(ctx context.Context, userID uuid.UUID, filter SessionFilter) (*SessionPage, error)
	GetStats(ctx context.Context, userID uuid.UUID, period string) (*SessionStats, error)
}

// SettingsService interface for the per-user settings document
type SettingsService interface {
	GetSettings(ctx context.Context, userID uuid.UUID) (*entities.UserSettings, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, req UpdateSettingsRequest) (*entities.UserSettings, error)
}

// SuggestionService interface for AI-backed task suggestions
type SuggestionService interface {
	GenerateSuggestions(ctx context.Context, req SuggestTasksRequest) (*SuggestionsResponse, error)
	BreakdownTask(ctx context.Context, req BreakdownTaskRequest) (*BreakdownResponse, error)
}

// Auth related types

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

type AuthResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Token   string         `json:"token"`
	User    *entities.User `json:"user"`
}

// Claims carries the authenticated identity extracted from a token.
type Claims struct {
	UserID string `json:"userId"`
}

// Task related types

type CreateTaskRequest struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content"`
	Pomodoro *int   `json:"pomodoro" validate:"omitempty,min=1"`
}

// UpdateTaskRequest is a partial patch; nil fields are left untouched.
type UpdateTaskRequest struct {
	Title              *string `json:"title" validate:"omitempty,min=1"`
	Content            *string `json:"content"`
	Pomodoro           *int    `json:"pomodoro" validate:"omitempty,min=1"`
	IsDone             *bool   `json:"isDone"`
	CompletedPomodoros *int    `json:"completedPomodoros" validate:"omitempty,min=0"`
}

// Session related types

type StartSessionRequest struct {
	TaskID      *uuid.UUID `json:"taskId"`
	SessionType string     `json:"sessionType"`
}

type EndSessionRequest struct {
	SessionID uuid.UUID `json:"sessionId" validate:"required"`
	Completed *bool     `json:"completed"`
}

type SessionPage struct {
	Sessions   []*entities.PomodoroSession `json:"sessions"`
	Pagination Pagination                  `json:"pagination"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

type SessionStats struct {
	TotalSessions int64       `json:"totalSessions"`
	TotalDuration int64       `json:"totalDuration"`
	AvgDuration   float64     `json:"avgDuration"`
	SessionsByDay []DayBucket `json:"sessionsByDay"`
}

// Settings related types

// UpdateSettingsRequest is the allow-listed settings patch: one optional
// field per setting. Unknown JSON keys are rejected at the HTTP boundary.
type UpdateSettingsRequest struct {
	PomodoroTime             *int64   `json:"pomodoroTime" validate:"omitempty,gt=0"`
	ShortBreakTime           *int64   `json:"shortBreakTime" validate:"omitempty,gt=0"`
	LongBreakTime            *int64   `json:"longBreakTime" validate:"omitempty,gt=0"`
	PomodorosBeforeLongBreak *int     `json:"pomodorosBeforeLongBreak" validate:"omitempty,min=1"`
	SelectedAlarm            *string  `json:"selectedAlarm"`
	AlarmVolume              *float64 `json:"alarmVolume" validate:"omitempty,gte=0,lte=1"`
	AlarmRepeatCount         *int     `json:"alarmRepeatCount" validate:"omitempty,min=1"`
	Theme                    *string  `json:"theme"`
}

// Apply merges the patch into settings, leaving nil fields untouched.
func (r UpdateSettingsRequest) Apply(s *entities.UserSettings) {
	if r.PomodoroTime != nil {
		s.PomodoroTime = *r.PomodoroTime
	}
	if r.ShortBreakTime != nil {
		s.ShortBreakTime = *r.ShortBreakTime
	}
	if r.LongBreakTime != nil {
		s.LongBreakTime = *r.LongBreakTime
	}
	if r.PomodorosBeforeLongBreak != nil {
		s.PomodorosBeforeLongBreak = *r.PomodorosBeforeLongBreak
	}
	if r.SelectedAlarm != nil {
		s.SelectedAlarm = *r.SelectedAlarm
	}
	if r.AlarmVolume != nil {
		s.AlarmVolume = *r.AlarmVolume
	}
	if r.AlarmRepeatCount != nil {
		s.AlarmRepeatCount = *r.AlarmRepeatCount
	}
	if r.Theme != nil {
		s.Theme = *r.Theme
	}
}

// Suggestion related types

type SuggestTasksRequest struct {
	Tasks           []json.RawMessage `json:"tasks"`
	CompletedTasks  []json.RawMessage `json:"completedTasks"`
	UserPreferences json.RawMessage   `json:"userPreferences"`
}

type TaskSuggestion struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	EstimatedPomodoros int    `json:"estimatedPomodoros"`
	Category           string `json:"category"`
	Priority           string `json:"priority"`
	Reasoning          string `json:"reasoning"`
}

type SuggestionsResponse struct {
	Success     bool             `json:"success"`
	Fallback    bool             `json:"fallback,omitempty"`
	Suggestions []TaskSuggestion `json:"suggestions"`
}

type BreakdownTaskRequest struct {
	TaskID             string `json:"taskId" validate:"required"`
	TaskTitle          string `json:"taskTitle" validate:"required"`
	TaskDescription    string `json:"taskDescription"`
	EstimatedPomodoros int    `json:"estimatedPomodoros"`
}

type Subtask struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	EstimatedPomodoros int    `json:"estimatedPomodoros"`
	Order              int    `json:"order"`
}

type BreakdownResponse struct {
	Success  bool      `json:"success"`
	TaskID   string    `json:"taskId"`
	Fallback bool      `json:"fallback,omitempty"`
	Subtasks []Subtask `json:"subtasks"`
}

// Common response types

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
