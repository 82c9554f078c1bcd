package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSettingsNotFound   = errors.New("settings not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrSamePassword       = errors.New("new password must differ from current password")
	ErrTitleRequired      = errors.New("title is required")
	ErrInvalidSessionType = errors.New("invalid session type")
)

// SessionType identifies what kind of timer run a session records.
type SessionType string

const (
	SessionTypePomodoro   SessionType = "Pomodoro"
	SessionTypeShortBreak SessionType = "Short Break"
	SessionTypeLongBreak  SessionType = "Long Break"
)

func (st SessionType) IsValid() bool {
	switch st {
	case SessionTypePomodoro, SessionTypeShortBreak, SessionTypeLongBreak:
		return true
	default:
		return false
	}
}

// User represents an account in the system. Verification and reset tokens
// are never serialized to clients.
type User struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	Email              string     `json:"email" db:"email"`
	Name               string     `json:"name" db:"name"`
	PasswordHash       string     `json:"-" db:"password_hash"`
	IsVerified         bool       `json:"isVerified" db:"is_verified"`
	VerificationCode   *string    `json:"-" db:"verification_code"`
	VerificationExpiry *time.Time `json:"-" db:"verification_expiry"`
	ResetToken         *string    `json:"-" db:"reset_token"`
	ResetExpiry        *time.Time `json:"-" db:"reset_expiry"`
	LastLogin          *time.Time `json:"lastLogin" db:"last_login"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at"`
}

// HasValidVerificationCode reports whether code matches the stored
// verification code and the code has not expired.
func (u *User) HasValidVerificationCode(code string, now time.Time) bool {
	if u.VerificationCode == nil || u.VerificationExpiry == nil {
		return false
	}
	return *u.VerificationCode == code && now.Before(*u.VerificationExpiry)
}

// HasValidResetToken reports whether the stored reset token is still usable.
func (u *User) HasValidResetToken(now time.Time) bool {
	return u.ResetToken != nil && u.ResetExpiry != nil && now.Before(*u.ResetExpiry)
}

// ClearVerification marks the user verified and removes the pending code.
func (u *User) ClearVerification() {
	u.IsVerified = true
	u.VerificationCode = nil
	u.VerificationExpiry = nil
}

// ClearResetToken removes the pending reset token after use.
func (u *User) ClearResetToken() {
	u.ResetToken = nil
	u.ResetExpiry = nil
}

// Task represents one item on a user's task list.
type Task struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	UserID             uuid.UUID `json:"userId" db:"user_id"`
	Title              string    `json:"title" db:"title"`
	Content            string    `json:"content" db:"content"`
	Pomodoro           int       `json:"pomodoro" db:"pomodoro"`
	IsDone             bool      `json:"isDone" db:"is_done"`
	CompletedPomodoros int       `json:"completedPomodoros" db:"completed_pomodoros"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// PomodoroSession records a single timer run. A session is open while its
// end time still equals its start time and the duration is zero.
type PomodoroSession struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"userId" db:"user_id"`
	TaskID      *uuid.UUID  `json:"taskId" db:"task_id"`
	StartTime   time.Time   `json:"startTime" db:"start_time"`
	EndTime     time.Time   `json:"endTime" db:"end_time"`
	Duration    int64       `json:"duration" db:"duration"` // milliseconds
	SessionType SessionType `json:"sessionType" db:"session_type"`
	Completed   bool        `json:"completed" db:"completed"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// IsOpen reports whether the session has not been ended yet.
func (s *PomodoroSession) IsOpen() bool {
	return s.EndTime.Equal(s.StartTime) && s.Duration == 0
}

// Close ends the session at now, computing the elapsed duration. Completed
// defaults to true when the caller passes no explicit value.
func (s *PomodoroSession) Close(now time.Time, completed *bool) {
	s.EndTime = now
	s.Duration = now.Sub(s.StartTime).Milliseconds()
	if completed != nil {
		s.Completed = *completed
	} else {
		s.Completed = true
	}
}

// Default timer intervals, in milliseconds.
const (
	DefaultPomodoroTime             = 25 * 60 * 1000
	DefaultShortBreakTime           = 5 * 60 * 1000
	DefaultLongBreakTime            = 15 * 60 * 1000
	DefaultPomodorosBeforeLongBreak = 4
	DefaultAlarm                    = "default"
	DefaultAlarmVolume              = 0.4
	DefaultAlarmRepeatCount         = 1
	DefaultTheme                    = "default"
)

// UserSettings holds the per-user timer configuration. Exactly one settings
// row exists per user; it is created lazily on first read or write.
type UserSettings struct {
	ID                       uuid.UUID `json:"id" db:"id"`
	UserID                   uuid.UUID `json:"userId" db:"user_id"`
	PomodoroTime             int64     `json:"pomodoroTime" db:"pomodoro_time"`      // ms
	ShortBreakTime           int64     `json:"shortBreakTime" db:"short_break_time"` // ms
	LongBreakTime            int64     `json:"longBreakTime" db:"long_break_time"`   // ms
	PomodorosBeforeLongBreak int       `json:"pomodorosBeforeLongBreak" db:"pomodoros_before_long_break"`
	SelectedAlarm            string    `json:"selectedAlarm" db:"selected_alarm"`
	AlarmVolume              float64   `json:"alarmVolume" db:"alarm_volume"`
	AlarmRepeatCount         int       `json:"alarmRepeatCount" db:"alarm_repeat_count"`
	Theme                    string    `json:"theme" db:"theme"`
	CreatedAt                time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt                time.Time `json:"updatedAt" db:"updated_at"`
}

// DefaultSettings returns a settings document populated with the documented
// defaults for userID.
func DefaultSettings(userID uuid.UUID) *UserSettings {
	return &UserSettings{
		ID:                       uuid.New(),
		UserID:                   userID,
		PomodoroTime:             DefaultPomodoroTime,
		ShortBreakTime:           DefaultShortBreakTime,
		LongBreakTime:            DefaultLongBreakTime,
		PomodorosBeforeLongBreak: DefaultPomodorosBeforeLongBreak,
		SelectedAlarm:            DefaultAlarm,
		AlarmVolume:              DefaultAlarmVolume,
		AlarmRepeatCount:         DefaultAlarmRepeatCount,
		Theme:                    DefaultTheme,
	}
}
