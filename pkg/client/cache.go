package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pomodorify/core/internal/domain/entities"
)

// cachedTask is one mirrored task. Local marks tasks created while the
// server was unreachable; they exist only in the mirror.
type cachedTask struct {
	entities.Task
	Local bool `json:"local,omitempty"`
}

type cacheFile struct {
	Tasks     []cachedTask `json:"tasks"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// taskCache is the on-disk task mirror.
type taskCache struct {
	path string
}

func newTaskCache(path string) *taskCache {
	return &taskCache{path: path}
}

func (tc *taskCache) load() (*cacheFile, error) {
	data, err := os.ReadFile(tc.path)
	if err != nil {
		return nil, err
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	return &f, nil
}

func (tc *taskCache) save(f *cacheFile) error {
	if err := os.MkdirAll(filepath.Dir(tc.path), 0755); err != nil {
		return err
	}

	f.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(tc.path, data, 0600)
}

// all returns every mirrored task, offline-created ones included.
func (tc *taskCache) all() ([]entities.Task, error) {
	f, err := tc.load()
	if err != nil {
		return nil, err
	}

	tasks := make([]entities.Task, 0, len(f.Tasks))
	for _, t := range f.Tasks {
		tasks = append(tasks, t.Task)
	}

	return tasks, nil
}

// replaceSynced overwrites the mirror's server-backed tasks with a fresh
// snapshot. Offline-created tasks survive the refresh.
func (tc *taskCache) replaceSynced(tasks []entities.Task) error {
	f, err := tc.load()
	if err != nil {
		f = &cacheFile{}
	}

	kept := make([]cachedTask, 0, len(tasks))
	for _, t := range tasks {
		kept = append(kept, cachedTask{Task: t})
	}
	for _, t := range f.Tasks {
		if t.Local {
			kept = append(kept, t)
		}
	}

	f.Tasks = kept
	return tc.save(f)
}

// addLocal appends a task created while offline.
func (tc *taskCache) addLocal(task entities.Task) error {
	f, err := tc.load()
	if err != nil {
		f = &cacheFile{}
	}

	f.Tasks = append(f.Tasks, cachedTask{Task: task, Local: true})
	return tc.save(f)
}

// updateTask applies mutate to the mirrored task with the given id and
// returns the mutated copy. The Local flag is left as it was.
func (tc *taskCache) updateTask(id uuid.UUID, mutate func(*entities.Task)) (*entities.Task, error) {
	f, err := tc.load()
	if err != nil {
		return nil, err
	}

	for i := range f.Tasks {
		if f.Tasks[i].ID != id {
			continue
		}
		mutate(&f.Tasks[i].Task)
		f.Tasks[i].Task.UpdatedAt = time.Now()
		task := f.Tasks[i].Task
		if err := tc.save(f); err != nil {
			return nil, err
		}
		return &task, nil
	}

	return nil, entities.ErrTaskNotFound
}

// removeTask drops a task from the mirror.
func (tc *taskCache) removeTask(id uuid.UUID) error {
	f, err := tc.load()
	if err != nil {
		return err
	}

	kept := make([]cachedTask, 0, len(f.Tasks))
	found := false
	for _, t := range f.Tasks {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return entities.ErrTaskNotFound
	}

	f.Tasks = kept
	return tc.save(f)
}
