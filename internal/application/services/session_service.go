package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pomodorify/core/internal/domain/entities"
	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

const defaultSessionPageSize = 20

// SessionService handles the timer session lifecycle and statistics.
type SessionService struct {
	sessionRepo ports.SessionRepository
	taskRepo    ports.TaskRepository
	logger      *logger.Logger
	now         func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(sessionRepo ports.SessionRepository, taskRepo ports.TaskRepository, logger *logger.Logger) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		taskRepo:    taskRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// StartSession records the beginning of a timer run. A new session is open:
// its end time equals its start time and its duration is zero.
func (s *SessionService) StartSession(ctx context.Context, userID uuid.UUID, req ports.StartSessionRequest) (*entities.PomodoroSession, error) {
	sessionType := entities.SessionType(req.SessionType)
	if sessionType == "" {
		sessionType = entities.SessionTypePomodoro
	}
	if !sessionType.IsValid() {
		return nil, entities.ErrInvalidSessionType
	}

	if req.TaskID != nil {
		if _, err := s.taskRepo.GetByID(ctx, *req.TaskID, userID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	session := &entities.PomodoroSession{
		ID:          uuid.New(),
		UserID:      userID,
		TaskID:      req.TaskID,
		StartTime:   now,
		EndTime:     now,
		Duration:    0,
		SessionType: sessionType,
		Completed:   false,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Infow("session started", "user_id", userID, "session_id", session.ID, "type", sessionType)

	return session, nil
}

// EndSession closes a session and records its elapsed duration. Ending the
// same session twice overwrites the first close; the later write wins.
func (s *SessionService) EndSession(ctx context.Context, userID uuid.UUID, req ports.EndSessionRequest) (*entities.PomodoroSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, req.SessionID, userID)
	if err != nil {
		return nil, err
	}

	session.Close(s.now(), req.Completed)

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Infow("session ended", "user_id", userID, "session_id", session.ID,
		"duration_ms", session.Duration, "completed", session.Completed)

	return session, nil
}

// ListSessions returns a page of the user's sessions, newest first.
func (s *SessionService) ListSessions(ctx context.Context, userID uuid.UUID, filter ports.SessionFilter) (*ports.SessionPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultSessionPageSize
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	sessions, total, err := s.sessionRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	return &ports.SessionPage{
		Sessions: sessions,
		Pagination: ports.Pagination{
			Total: total,
			Page:  filter.Page,
			Pages: pages,
		},
	}, nil
}

// GetStats aggregates completed pomodoro sessions over a period. Break
// sessions never count toward statistics.
func (s *SessionService) GetStats(ctx context.Context, userID uuid.UUID, period string) (*ports.SessionStats, error) {
	since := periodStart(period, s.now())

	count, totalDuration, err := s.sessionRepo.AggregateCompleted(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	buckets, err := s.sessionRepo.GroupByDay(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	var avg float64
	if count > 0 {
		avg = float64(totalDuration) / float64(count)
	}

	return &ports.SessionStats{
		TotalSessions: count,
		TotalDuration: totalDuration,
		AvgDuration:   avg,
		SessionsByDay: buckets,
	}, nil
}

// periodStart returns the inclusive lower bound for a stats period, or nil
// for all time. Bounds snap to the start of the local day; weeks start on
// Sunday.
func periodStart(period string, now time.Time) *time.Time {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var since time.Time
	switch period {
	case "day":
		since = startOfDay
	case "week":
		since = startOfDay.AddDate(0, 0, -int(startOfDay.Weekday()))
	case "month":
		since = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case "year":
		since = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return nil
	}

	return &since
}
