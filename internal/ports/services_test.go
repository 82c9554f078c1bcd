package ports

import (
	"testing"

	"github.com/google/uuid"

	"github.com/pomodorify/core/internal/domain/entities"
)

func TestUpdateSettingsRequest_ApplyMergesOnlySetFields(t *testing.T) {
	settings := entities.DefaultSettings(uuid.New())

	pomodoroTime := int64(30 * 60 * 1000)
	theme := "dark"
	req := UpdateSettingsRequest{
		PomodoroTime: &pomodoroTime,
		Theme:        &theme,
	}

	req.Apply(settings)

	if settings.PomodoroTime != pomodoroTime {
		t.Errorf("PomodoroTime = %d, want %d", settings.PomodoroTime, pomodoroTime)
	}
	if settings.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", settings.Theme)
	}

	// Untouched fields keep their defaults.
	if settings.ShortBreakTime != entities.DefaultShortBreakTime {
		t.Errorf("ShortBreakTime changed to %d", settings.ShortBreakTime)
	}
	if settings.AlarmVolume != entities.DefaultAlarmVolume {
		t.Errorf("AlarmVolume changed to %v", settings.AlarmVolume)
	}
	if settings.PomodorosBeforeLongBreak != entities.DefaultPomodorosBeforeLongBreak {
		t.Errorf("PomodorosBeforeLongBreak changed to %d", settings.PomodorosBeforeLongBreak)
	}
}

func TestUpdateSettingsRequest_ApplyEmptyPatchIsNoop(t *testing.T) {
	settings := entities.DefaultSettings(uuid.New())
	before := *settings

	UpdateSettingsRequest{}.Apply(settings)

	if *settings != before {
		t.Error("empty patch should leave settings unchanged")
	}
}

func TestSessionFilter_Offset(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		page  int
		want  int
	}{
		{"first page", 20, 1, 0},
		{"second page", 20, 2, 20},
		{"fifth page small limit", 5, 5, 20},
		{"zero page treated as first", 20, 0, 0},
		{"negative page treated as first", 20, -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := SessionFilter{Limit: tt.limit, Page: tt.page}
			if got := f.Offset(); got != tt.want {
				t.Errorf("Offset() = %d, want %d", got, tt.want)
			}
		})
	}
}
