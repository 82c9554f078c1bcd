package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pomodorify/core/internal/domain/entities"
	"github.com/pomodorify/core/internal/ports"
)

const sessionColumns = `id, user_id, task_id, start_time, end_time, duration, session_type, completed, created_at, updated_at`

// SessionRepositoryImpl implements the SessionRepository interface
type SessionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sqlx.DB) ports.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entities.PomodoroSession) error {
	query := `
		INSERT INTO pomodoro_sessions (id, user_id, task_id, start_time, end_time, duration, session_type, completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		session.ID, session.UserID, session.TaskID, session.StartTime,
		session.EndTime, session.Duration, session.SessionType, session.Completed,
	).Scan(&session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *SessionRepositoryImpl) GetByID(ctx context.Context, id, userID uuid.UUID) (*entities.PomodoroSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM pomodoro_sessions WHERE id = $1 AND user_id = $2`

	var session entities.PomodoroSession
	err := r.db.GetContext(ctx, &session, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return &session, nil
}

func (r *SessionRepositoryImpl) Update(ctx context.Context, session *entities.PomodoroSession) error {
	query := `
		UPDATE pomodoro_sessions
		SET end_time = $3, duration = $4, completed = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		session.ID, session.UserID, session.EndTime, session.Duration, session.Completed,
	).Scan(&session.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.ErrSessionNotFound
		}
		return fmt.Errorf("update session: %w", err)
	}

	return nil
}

func (r *SessionRepositoryImpl) List(ctx context.Context, userID uuid.UUID, filter ports.SessionFilter) ([]*entities.PomodoroSession, int64, error) {
	where := `WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.TaskID != nil {
		args = append(args, *filter.TaskID)
		where += fmt.Sprintf(" AND task_id = $%d", len(args))
	}
	if filter.SessionType != nil {
		args = append(args, *filter.SessionType)
		where += fmt.Sprintf(" AND session_type = $%d", len(args))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM pomodoro_sessions ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(`SELECT `+sessionColumns+` FROM pomodoro_sessions %s
		ORDER BY start_time DESC LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	sessions := []*entities.PomodoroSession{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	return sessions, total, nil
}

// AggregateCompleted totals completed Pomodoro-type sessions, optionally
// bounded below by since.
func (r *SessionRepositoryImpl) AggregateCompleted(ctx context.Context, userID uuid.UUID, since *time.Time) (int64, int64, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(duration), 0)
		FROM pomodoro_sessions
		WHERE user_id = $1 AND completed = TRUE AND session_type = $2`
	args := []interface{}{userID, entities.SessionTypePomodoro}

	if since != nil {
		args = append(args, *since)
		query += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}

	var count, total int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate sessions: %w", err)
	}

	return count, total, nil
}

// GroupByDay buckets completed Pomodoro-type sessions by calendar date,
// ascending.
func (r *SessionRepositoryImpl) GroupByDay(ctx context.Context, userID uuid.UUID, since *time.Time) ([]ports.DayBucket, error) {
	query := `
		SELECT to_char(start_time, 'YYYY-MM-DD') AS date,
			COUNT(*) AS count,
			COALESCE(SUM(duration), 0) AS total_duration
		FROM pomodoro_sessions
		WHERE user_id = $1 AND completed = TRUE AND session_type = $2`
	args := []interface{}{userID, entities.SessionTypePomodoro}

	if since != nil {
		args = append(args, *since)
		query += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}

	query += ` GROUP BY 1 ORDER BY 1`

	buckets := []ports.DayBucket{}
	if err := r.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, fmt.Errorf("group sessions by day: %w", err)
	}

	return buckets, nil
}
