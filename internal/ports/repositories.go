package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pomodorify/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByVerificationCode(ctx context.Context, code string) (*entities.User, error)
	GetByResetToken(ctx context.Context, token string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// TaskRepository defines the interface for task data operations. Every
// operation is scoped to the owning user; a task belonging to another user
// is indistinguishable from a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*entities.Task, error)
	List(ctx context.Context, userID uuid.UUID) ([]*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	MarkDone(ctx context.Context, id, userID uuid.UUID) (*entities.Task, error)
	IncrementPomodoros(ctx context.Context, id, userID uuid.UUID) (*entities.Task, error)
}

// SessionRepository defines the interface for pomodoro session data operations
type SessionRepository interface {
	Create(ctx context.Context, session *entities.PomodoroSession) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*entities.PomodoroSession, error)
	Update(ctx context.Context, session *entities.PomodoroSession) error
	List(ctx context.Context, userID uuid.UUID, filter SessionFilter) ([]*entities.PomodoroSession, int64, error)
	AggregateCompleted(ctx context.Context, userID uuid.UUID, since *time.Time) (count int64, totalDuration int64, err error)
	GroupByDay(ctx context.Context, userID uuid.UUID, since *time.Time) ([]DayBucket, error)
}

// SettingsRepository defines the interface for user settings data operations
type SettingsRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*entities.UserSettings, error)
	Create(ctx context.Context, settings *entities.UserSettings) error
	Update(ctx context.Context, settings *entities.UserSettings) error
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	TaskID      *uuid.UUID
	SessionType *entities.SessionType
	Limit       int
	Page        int
}

// Offset converts the one-based page into a row offset.
func (f SessionFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit
}

// DayBucket is one calendar day of completed pomodoro activity.
type DayBucket struct {
	Date          string `json:"date" db:"date"`
	Count         int64  `json:"count" db:"count"`
	TotalDuration int64  `json:"totalDuration" db:"total_duration"`
}
