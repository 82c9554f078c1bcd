package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pomodorify/core/internal/domain/entities"
	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

// SettingsService handles the per-user settings document. The document is
// created with defaults the first time it is read or written.
type SettingsService struct {
	settingsRepo ports.SettingsRepository
	logger       *logger.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo ports.SettingsRepository, logger *logger.Logger) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// GetSettings returns the user's settings, creating defaults on first read.
func (s *SettingsService) GetSettings(ctx context.Context, userID uuid.UUID) (*entities.UserSettings, error) {
	settings, err := s.settingsRepo.GetByUser(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, entities.ErrSettingsNotFound) {
		return nil, err
	}

	settings = entities.DefaultSettings(userID)
	if err := s.settingsRepo.Create(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Infow("settings created with defaults", "user_id", userID)

	return settings, nil
}

// UpdateSettings merges a partial patch into the user's settings. Fields
// absent from the patch keep their current values.
func (s *SettingsService) UpdateSettings(ctx context.Context, userID uuid.UUID, req ports.UpdateSettingsRequest) (*entities.UserSettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	req.Apply(settings)

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Infow("settings updated", "user_id", userID)

	return settings, nil
}
