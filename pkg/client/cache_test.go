package client

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pomodorify/core/internal/domain/entities"
)

func newTestCache(t *testing.T) *taskCache {
	t.Helper()
	return newTaskCache(filepath.Join(t.TempDir(), "tasks.json"))
}

func task(title string) entities.Task {
	return entities.Task{
		ID:        uuid.New(),
		Title:     title,
		Pomodoro:  1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestTaskCache_EmptyMirrorErrors(t *testing.T) {
	tc := newTestCache(t)

	if _, err := tc.all(); err == nil {
		t.Error("reading a missing mirror should fail")
	}
}

func TestTaskCache_RoundTrip(t *testing.T) {
	tc := newTestCache(t)

	if err := tc.replaceSynced([]entities.Task{task("a"), task("b")}); err != nil {
		t.Fatalf("replaceSynced: %v", err)
	}

	tasks, err := tc.all()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len = %d, want 2", len(tasks))
	}
}

func TestTaskCache_LocalTasksSurviveRefresh(t *testing.T) {
	tc := newTestCache(t)

	offline := task("written while offline")
	if err := tc.addLocal(offline); err != nil {
		t.Fatalf("addLocal: %v", err)
	}

	if err := tc.replaceSynced([]entities.Task{task("from server")}); err != nil {
		t.Fatalf("replaceSynced: %v", err)
	}

	tasks, err := tc.all()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len = %d, want server task plus offline task", len(tasks))
	}

	found := false
	for _, got := range tasks {
		if got.ID == offline.ID {
			found = true
		}
	}
	if !found {
		t.Error("offline-created task was dropped by the refresh")
	}
}

func TestTaskCache_UpdateTaskKeepsLocalFlag(t *testing.T) {
	tc := newTestCache(t)

	offline := task("offline")
	if err := tc.addLocal(offline); err != nil {
		t.Fatalf("addLocal: %v", err)
	}

	updated, err := tc.updateTask(offline.ID, func(task *entities.Task) {
		task.Title = "renamed"
	})
	if err != nil {
		t.Fatalf("updateTask: %v", err)
	}
	if updated.Title != "renamed" {
		t.Errorf("Title = %q, want renamed", updated.Title)
	}

	// A refresh must still treat the mutated task as offline-created.
	if err := tc.replaceSynced(nil); err != nil {
		t.Fatalf("replaceSynced: %v", err)
	}
	tasks, err := tc.all()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "renamed" {
		t.Errorf("unexpected tasks after refresh: %+v", tasks)
	}
}

func TestTaskCache_UpdateUnknownTaskErrors(t *testing.T) {
	tc := newTestCache(t)

	if err := tc.replaceSynced([]entities.Task{task("a")}); err != nil {
		t.Fatalf("replaceSynced: %v", err)
	}

	if _, err := tc.updateTask(uuid.New(), func(*entities.Task) {}); err == nil {
		t.Error("updating a task missing from the mirror should fail")
	}
}

func TestTaskCache_RemoveTask(t *testing.T) {
	tc := newTestCache(t)

	doomed := task("doomed")
	if err := tc.replaceSynced([]entities.Task{doomed, task("kept")}); err != nil {
		t.Fatalf("replaceSynced: %v", err)
	}

	if err := tc.removeTask(doomed.ID); err != nil {
		t.Fatalf("removeTask: %v", err)
	}

	tasks, err := tc.all()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID == doomed.ID {
		t.Errorf("unexpected tasks after remove: %+v", tasks)
	}

	if err := tc.removeTask(doomed.ID); err == nil {
		t.Error("removing an already-removed task should fail")
	}
}

func TestTaskCache_RefreshReplacesServerTasks(t *testing.T) {
	tc := newTestCache(t)

	if err := tc.replaceSynced([]entities.Task{task("old"), task("stale")}); err != nil {
		t.Fatalf("replaceSynced: %v", err)
	}

	fresh := task("fresh")
	if err := tc.replaceSynced([]entities.Task{fresh}); err != nil {
		t.Fatalf("replaceSynced: %v", err)
	}

	tasks, err := tc.all()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != fresh.ID {
		t.Errorf("mirror should hold only the fresh snapshot, got %d tasks", len(tasks))
	}
}
