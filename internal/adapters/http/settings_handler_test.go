package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pomodorify/core/internal/domain/entities"
	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

type stubSettingsService struct {
	settings *entities.UserSettings
	lastReq  *ports.UpdateSettingsRequest
}

func (s *stubSettingsService) GetSettings(ctx context.Context, userID uuid.UUID) (*entities.UserSettings, error) {
	return s.settings, nil
}

func (s *stubSettingsService) UpdateSettings(ctx context.Context, userID uuid.UUID, req ports.UpdateSettingsRequest) (*entities.UserSettings, error) {
	s.lastReq = &req
	req.Apply(s.settings)
	return s.settings, nil
}

func settingsRequest(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPatch, "/api/settings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", uuid.NewString())
	return c, rec
}

func TestUpdateSettings_RejectsUnknownKeys(t *testing.T) {
	e := newTestEcho()
	svc := &stubSettingsService{settings: entities.DefaultSettings(uuid.New())}
	h := NewSettingsHandler(svc, logger.NewNop())

	c, _ := settingsRequest(e, `{"pomodoroTime":1800000,"hacked":true}`)

	err := h.UpdateSettings(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("unknown key should be a 400, got %v", err)
	}
	if svc.lastReq != nil {
		t.Error("service must not be called for a rejected payload")
	}
}

func TestUpdateSettings_AppliesKnownKeys(t *testing.T) {
	e := newTestEcho()
	svc := &stubSettingsService{settings: entities.DefaultSettings(uuid.New())}
	h := NewSettingsHandler(svc, logger.NewNop())

	c, rec := settingsRequest(e, `{"pomodoroTime":1800000,"theme":"dark"}`)

	if err := h.UpdateSettings(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	if svc.settings.PomodoroTime != 1800000 {
		t.Errorf("PomodoroTime = %d, want 1800000", svc.settings.PomodoroTime)
	}
	if svc.settings.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", svc.settings.Theme)
	}
	// Fields absent from the patch keep their values.
	if svc.settings.ShortBreakTime != entities.DefaultShortBreakTime {
		t.Errorf("ShortBreakTime changed to %d", svc.settings.ShortBreakTime)
	}
}

func TestUpdateSettings_ValidatesRanges(t *testing.T) {
	e := newTestEcho()

	tests := []string{
		`{"alarmVolume":1.5}`,
		`{"alarmVolume":-0.1}`,
		`{"alarmRepeatCount":0}`,
		`{"pomodoroTime":0}`,
	}

	for _, body := range tests {
		svc := &stubSettingsService{settings: entities.DefaultSettings(uuid.New())}
		h := NewSettingsHandler(svc, logger.NewNop())

		c, _ := settingsRequest(e, body)

		err := h.UpdateSettings(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Errorf("payload %s: want 400, got %v", body, err)
		}
	}
}
