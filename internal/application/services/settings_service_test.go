package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pomodorify/core/internal/domain/entities"
	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

type fakeSettingsRepo struct {
	byUser  map[uuid.UUID]*entities.UserSettings
	creates int
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{byUser: make(map[uuid.UUID]*entities.UserSettings)}
}

func (r *fakeSettingsRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*entities.UserSettings, error) {
	s, ok := r.byUser[userID]
	if !ok {
		return nil, entities.ErrSettingsNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSettingsRepo) Create(ctx context.Context, s *entities.UserSettings) error {
	copied := *s
	r.byUser[s.UserID] = &copied
	r.creates++
	return nil
}

func (r *fakeSettingsRepo) Update(ctx context.Context, s *entities.UserSettings) error {
	if _, ok := r.byUser[s.UserID]; !ok {
		return entities.ErrSettingsNotFound
	}
	copied := *s
	r.byUser[s.UserID] = &copied
	return nil
}

func TestGetSettings_CreatesDefaultsOnFirstRead(t *testing.T) {
	repo := newFakeSettingsRepo()
	svc := NewSettingsService(repo, logger.NewNop())
	userID := uuid.New()

	settings, err := svc.GetSettings(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}

	if settings.PomodoroTime != entities.DefaultPomodoroTime {
		t.Errorf("PomodoroTime = %d, want default", settings.PomodoroTime)
	}
	if repo.creates != 1 {
		t.Errorf("creates = %d, want 1", repo.creates)
	}

	// Second read returns the stored document without another create.
	if _, err := svc.GetSettings(context.Background(), userID); err != nil {
		t.Fatalf("second GetSettings: %v", err)
	}
	if repo.creates != 1 {
		t.Errorf("creates after second read = %d, want 1", repo.creates)
	}
}

func TestUpdateSettings_CreatesThenPatches(t *testing.T) {
	repo := newFakeSettingsRepo()
	svc := NewSettingsService(repo, logger.NewNop())
	userID := uuid.New()

	theme := "dark"
	settings, err := svc.UpdateSettings(context.Background(), userID, ports.UpdateSettingsRequest{
		Theme: &theme,
	})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	if settings.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", settings.Theme)
	}
	if settings.PomodoroTime != entities.DefaultPomodoroTime {
		t.Error("unpatched fields should hold defaults")
	}
	if repo.creates != 1 {
		t.Errorf("creates = %d, want 1", repo.creates)
	}

	stored := repo.byUser[userID]
	if stored.Theme != "dark" {
		t.Error("patch was not persisted")
	}
}
