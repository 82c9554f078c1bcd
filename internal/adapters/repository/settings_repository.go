package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pomodorify/core/internal/domain/entities"
	"github.com/pomodorify/core/internal/ports"
)

const settingsColumns = `id, user_id, pomodoro_time, short_break_time, long_break_time,
	pomodoros_before_long_break, selected_alarm, alarm_volume, alarm_repeat_count, theme,
	created_at, updated_at`

// SettingsRepositoryImpl implements the SettingsRepository interface
type SettingsRepositoryImpl struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sqlx.DB) ports.SettingsRepository {
	return &SettingsRepositoryImpl{db: db}
}

func (r *SettingsRepositoryImpl) GetByUser(ctx context.Context, userID uuid.UUID) (*entities.UserSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM user_settings WHERE user_id = $1`

	var settings entities.UserSettings
	err := r.db.GetContext(ctx, &settings, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}

	return &settings, nil
}

func (r *SettingsRepositoryImpl) Create(ctx context.Context, settings *entities.UserSettings) error {
	query := `
		INSERT INTO user_settings (id, user_id, pomodoro_time, short_break_time, long_break_time,
			pomodoros_before_long_break, selected_alarm, alarm_volume, alarm_repeat_count, theme)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	if settings.ID == uuid.Nil {
		settings.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		settings.ID, settings.UserID, settings.PomodoroTime, settings.ShortBreakTime,
		settings.LongBreakTime, settings.PomodorosBeforeLongBreak, settings.SelectedAlarm,
		settings.AlarmVolume, settings.AlarmRepeatCount, settings.Theme,
	).Scan(&settings.CreatedAt, &settings.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create settings: %w", err)
	}

	return nil
}

func (r *SettingsRepositoryImpl) Update(ctx context.Context, settings *entities.UserSettings) error {
	query := `
		UPDATE user_settings
		SET pomodoro_time = $2, short_break_time = $3, long_break_time = $4,
			pomodoros_before_long_break = $5, selected_alarm = $6, alarm_volume = $7,
			alarm_repeat_count = $8, theme = $9, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		settings.UserID, settings.PomodoroTime, settings.ShortBreakTime, settings.LongBreakTime,
		settings.PomodorosBeforeLongBreak, settings.SelectedAlarm, settings.AlarmVolume,
		settings.AlarmRepeatCount, settings.Theme,
	).Scan(&settings.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.ErrSettingsNotFound
		}
		return fmt.Errorf("update settings: %w", err)
	}

	return nil
}
