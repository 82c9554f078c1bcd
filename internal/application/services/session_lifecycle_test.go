package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pomodorify/core/internal/domain/entities"
	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*entities.PomodoroSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entities.PomodoroSession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *entities.PomodoroSession) error {
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*entities.PomodoroSession, error) {
	s, ok := r.sessions[id]
	if !ok || s.UserID != userID {
		return nil, entities.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, s *entities.PomodoroSession) error {
	if _, ok := r.sessions[s.ID]; !ok {
		return entities.ErrSessionNotFound
	}
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) List(ctx context.Context, userID uuid.UUID, filter ports.SessionFilter) ([]*entities.PomodoroSession, int64, error) {
	var out []*entities.PomodoroSession
	for _, s := range r.sessions {
		if s.UserID == userID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeSessionRepo) AggregateCompleted(ctx context.Context, userID uuid.UUID, since *time.Time) (int64, int64, error) {
	var count, total int64
	for _, s := range r.sessions {
		if s.UserID != userID || !s.Completed || s.SessionType != entities.SessionTypePomodoro {
			continue
		}
		if since != nil && s.StartTime.Before(*since) {
			continue
		}
		count++
		total += s.Duration
	}
	return count, total, nil
}

func (r *fakeSessionRepo) GroupByDay(ctx context.Context, userID uuid.UUID, since *time.Time) ([]ports.DayBucket, error) {
	return nil, nil
}

type fakeTaskRepo struct {
	tasks      map[uuid.UUID]*entities.Task
	increments int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*entities.Task)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, t *entities.Task) error {
	copied := *t
	r.tasks[t.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*entities.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, entities.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTaskRepo) List(ctx context.Context, userID uuid.UUID) ([]*entities.Task, error) {
	return nil, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, t *entities.Task) error {
	if _, ok := r.tasks[t.ID]; !ok {
		return entities.ErrTaskNotFound
	}
	copied := *t
	r.tasks[t.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, ok := r.tasks[id]; !ok {
		return entities.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) MarkDone(ctx context.Context, id, userID uuid.UUID) (*entities.Task, error) {
	t, err := r.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	t.IsDone = true
	r.tasks[id] = t
	copied := *t
	return &copied, nil
}

func (r *fakeTaskRepo) IncrementPomodoros(ctx context.Context, id, userID uuid.UUID) (*entities.Task, error) {
	t, err := r.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	t.CompletedPomodoros++
	r.tasks[id] = t
	r.increments++
	copied := *t
	return &copied, nil
}

func newTestSessionService(sessionRepo *fakeSessionRepo, taskRepo *fakeTaskRepo, now time.Time) *SessionService {
	svc := NewSessionService(sessionRepo, taskRepo, logger.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestStartSession_NewSessionIsOpen(t *testing.T) {
	now := time.Now()
	svc := newTestSessionService(newFakeSessionRepo(), newFakeTaskRepo(), now)
	userID := uuid.New()

	session, err := svc.StartSession(context.Background(), userID, ports.StartSessionRequest{})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if !session.IsOpen() {
		t.Error("new session should be open")
	}
	if session.SessionType != entities.SessionTypePomodoro {
		t.Errorf("session type = %q, want default Pomodoro", session.SessionType)
	}
	if session.Completed {
		t.Error("new session should not be completed")
	}
}

func TestStartSession_RejectsUnknownType(t *testing.T) {
	svc := newTestSessionService(newFakeSessionRepo(), newFakeTaskRepo(), time.Now())

	_, err := svc.StartSession(context.Background(), uuid.New(), ports.StartSessionRequest{
		SessionType: "Nap",
	})
	if err != entities.ErrInvalidSessionType {
		t.Errorf("err = %v, want ErrInvalidSessionType", err)
	}
}

func TestStartSession_RejectsForeignTask(t *testing.T) {
	taskRepo := newFakeTaskRepo()
	owner := uuid.New()
	foreignTask := &entities.Task{ID: uuid.New(), UserID: owner, Title: "private"}
	taskRepo.Create(context.Background(), foreignTask)

	svc := newTestSessionService(newFakeSessionRepo(), taskRepo, time.Now())

	_, err := svc.StartSession(context.Background(), uuid.New(), ports.StartSessionRequest{
		TaskID: &foreignTask.ID,
	})
	if err != entities.ErrTaskNotFound {
		t.Errorf("err = %v, want ErrTaskNotFound for another user's task", err)
	}
}

func TestEndSession_ComputesDuration(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	taskRepo := newFakeTaskRepo()
	userID := uuid.New()

	myTask := &entities.Task{ID: uuid.New(), UserID: userID, Title: "deep work", Pomodoro: 2}
	taskRepo.Create(context.Background(), myTask)

	start := time.Now()
	svc := newTestSessionService(sessionRepo, taskRepo, start)

	session, err := svc.StartSession(context.Background(), userID, ports.StartSessionRequest{
		TaskID: &myTask.ID,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	svc.now = func() time.Time { return start.Add(25 * time.Minute) }

	ended, err := svc.EndSession(context.Background(), userID, ports.EndSessionRequest{
		SessionID: session.ID,
	})
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	if ended.Duration != (25 * time.Minute).Milliseconds() {
		t.Errorf("duration = %d, want %d", ended.Duration, (25 * time.Minute).Milliseconds())
	}
	if !ended.Completed {
		t.Error("completed should default to true")
	}
}

// Ending a session must only mutate the session row. The task counter is
// owned by the increment-pomodoro operation, which clients call separately
// when a timer finishes.
func TestEndSession_NeverTouchesTaskCounter(t *testing.T) {
	abandoned := false

	tests := []struct {
		name        string
		sessionType entities.SessionType
		completed   *bool
	}{
		{"completed pomodoro", entities.SessionTypePomodoro, nil},
		{"abandoned pomodoro", entities.SessionTypePomodoro, &abandoned},
		{"short break", entities.SessionTypeShortBreak, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessionRepo := newFakeSessionRepo()
			taskRepo := newFakeTaskRepo()
			userID := uuid.New()

			myTask := &entities.Task{ID: uuid.New(), UserID: userID, Title: "t"}
			taskRepo.Create(context.Background(), myTask)

			svc := newTestSessionService(sessionRepo, taskRepo, time.Now())

			session, err := svc.StartSession(context.Background(), userID, ports.StartSessionRequest{
				TaskID:      &myTask.ID,
				SessionType: string(tt.sessionType),
			})
			if err != nil {
				t.Fatalf("StartSession: %v", err)
			}

			if _, err := svc.EndSession(context.Background(), userID, ports.EndSessionRequest{
				SessionID: session.ID,
				Completed: tt.completed,
			}); err != nil {
				t.Fatalf("EndSession: %v", err)
			}

			if taskRepo.increments != 0 {
				t.Errorf("ending a session bumped the task counter %d times", taskRepo.increments)
			}
			if got := taskRepo.tasks[myTask.ID].CompletedPomodoros; got != 0 {
				t.Errorf("CompletedPomodoros = %d, want 0", got)
			}
		})
	}
}

// A finished timer, as clients drive it: end the session, then call the
// increment operation. The counter must land on exactly one.
func TestFinishedTimerFlow_CountsOnce(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	taskRepo := newFakeTaskRepo()
	userID := uuid.New()

	myTask := &entities.Task{ID: uuid.New(), UserID: userID, Title: "deep work"}
	taskRepo.Create(context.Background(), myTask)

	sessions := newTestSessionService(sessionRepo, taskRepo, time.Now())
	tasks := NewTaskService(taskRepo, logger.NewNop())

	session, err := sessions.StartSession(context.Background(), userID, ports.StartSessionRequest{
		TaskID: &myTask.ID,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	completed := true
	if _, err := sessions.EndSession(context.Background(), userID, ports.EndSessionRequest{
		SessionID: session.ID,
		Completed: &completed,
	}); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	updated, err := tasks.IncrementPomodoro(context.Background(), myTask.ID, userID)
	if err != nil {
		t.Fatalf("IncrementPomodoro: %v", err)
	}

	if updated.CompletedPomodoros != 1 {
		t.Errorf("CompletedPomodoros = %d, want exactly 1 for one finished pomodoro", updated.CompletedPomodoros)
	}

	// A second end of the same session (last write wins) must not add
	// another count either.
	if _, err := sessions.EndSession(context.Background(), userID, ports.EndSessionRequest{
		SessionID: session.ID,
		Completed: &completed,
	}); err != nil {
		t.Fatalf("second EndSession: %v", err)
	}

	if got := taskRepo.tasks[myTask.ID].CompletedPomodoros; got != 1 {
		t.Errorf("CompletedPomodoros after double end = %d, want 1", got)
	}
}

func TestEndSession_ForeignSessionNotFound(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	svc := newTestSessionService(sessionRepo, newFakeTaskRepo(), time.Now())

	owner := uuid.New()
	session, _ := svc.StartSession(context.Background(), owner, ports.StartSessionRequest{})

	_, err := svc.EndSession(context.Background(), uuid.New(), ports.EndSessionRequest{SessionID: session.ID})
	if err != entities.ErrSessionNotFound {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestGetStats_CountsOnlyCompletedPomodoros(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	userID := uuid.New()
	now := time.Now()

	add := func(sessionType entities.SessionType, completed bool, duration int64) {
		sessionRepo.Create(context.Background(), &entities.PomodoroSession{
			ID:          uuid.New(),
			UserID:      userID,
			StartTime:   now.Add(-time.Hour),
			EndTime:     now,
			Duration:    duration,
			SessionType: sessionType,
			Completed:   completed,
		})
	}

	add(entities.SessionTypePomodoro, true, 1500000)
	add(entities.SessionTypePomodoro, true, 1500000)
	add(entities.SessionTypePomodoro, false, 600000)        // abandoned
	add(entities.SessionTypeShortBreak, true, 300000)       // break
	add(entities.SessionTypeLongBreak, true, 900000)        // break

	svc := newTestSessionService(sessionRepo, newFakeTaskRepo(), now)

	stats, err := svc.GetStats(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}

	if stats.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d, want 2", stats.TotalSessions)
	}
	if stats.TotalDuration != 3000000 {
		t.Errorf("TotalDuration = %d, want 3000000", stats.TotalDuration)
	}
	if stats.AvgDuration != 1500000 {
		t.Errorf("AvgDuration = %v, want 1500000", stats.AvgDuration)
	}
}
