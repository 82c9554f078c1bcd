// Package client is a Go client for the Pomodorify API with a local
// offline mirror: task reads and mutations fall back to the last synced
// snapshot when the server is unreachable, and tasks created offline live
// in the mirror until the server can be reached again. Mirror changes are
// never pushed back to the server.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pomodorify/core/internal/domain/entities"
)

// Config holds client configuration persisted between runs
type Config struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	LastSync  int64  `json:"last_sync"`
}

// Client talks to a Pomodorify server
type Client struct {
	config     *Config
	configPath string
	cache      *taskCache
	httpClient *http.Client
}

// New creates a client rooted in the user's home directory.
func New() (*Client, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(home, ".pomodorify")

	c := &Client{
		configPath: filepath.Join(dir, "client.json"),
		cache:      newTaskCache(filepath.Join(dir, "tasks.json")),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	c.loadConfig()

	return c, nil
}

func (c *Client) loadConfig() {
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		c.config = &Config{
			ServerURL: "http://localhost:5001",
		}
		return
	}

	c.config = &Config{}
	json.Unmarshal(data, c.config)
}

func (c *Client) saveConfig() error {
	dir := filepath.Dir(c.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0600)
}

// SetServer sets the API server URL
func (c *Client) SetServer(url string) error {
	c.config.ServerURL = url
	return c.saveConfig()
}

// IsLoggedIn returns true if a session token is stored
func (c *Client) IsLoggedIn() bool {
	return c.config.Token != ""
}

// Signup creates a new account and stores the session token
func (c *Client) Signup(email, password, name string) error {
	return c.authenticate("/api/auth/signup", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
}

// Login authenticates with email and password
func (c *Client) Login(email, password string) error {
	return c.authenticate("/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(path string, creds map[string]string) error {
	body, _ := json.Marshal(creds)

	resp, err := c.httpClient.Post(
		c.config.ServerURL+path,
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("authentication failed: %s", string(respBody))
	}

	var result struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	c.config.Token = result.Token
	c.config.UserID = result.User.ID
	return c.saveConfig()
}

// Logout clears the stored session
func (c *Client) Logout() error {
	c.config.Token = ""
	c.config.UserID = ""
	return c.saveConfig()
}

// CheckAuth returns the account behind the stored token.
func (c *Client) CheckAuth() (*entities.User, error) {
	resp, err := c.do(http.MethodGet, "/api/auth/check-auth", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("auth check failed: %s", string(respBody))
	}

	var result struct {
		User entities.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result.User, nil
}

// ListTasks returns the task list from the server, refreshing the local
// mirror. When the server is unreachable it serves the mirror instead,
// including any tasks created offline.
func (c *Client) ListTasks() ([]entities.Task, bool, error) {
	resp, err := c.do(http.MethodGet, "/api/tasks", nil)
	if err != nil {
		// Transport failure only; HTTP-level errors never hit the mirror.
		tasks, cacheErr := c.cache.all()
		if cacheErr != nil {
			return nil, false, fmt.Errorf("server unreachable and no local mirror: %w", err)
		}
		return tasks, true, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("list tasks failed: %s", string(respBody))
	}

	var result struct {
		Tasks []entities.Task `json:"tasks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, false, err
	}

	if err := c.cache.replaceSynced(result.Tasks); err != nil {
		return result.Tasks, false, nil
	}

	c.config.LastSync = time.Now().Unix()
	c.saveConfig()

	return result.Tasks, false, nil
}

// CreateTask creates a task on the server. When the server is unreachable
// the task is written to the local mirror with a locally generated id; it
// is never pushed back later.
func (c *Client) CreateTask(title, content string, pomodoro int) (*entities.Task, bool, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"title":    title,
		"content":  content,
		"pomodoro": pomodoro,
	})

	resp, err := c.do(http.MethodPost, "/api/tasks", bytes.NewReader(body))
	if err != nil {
		task := entities.Task{
			ID:        uuid.New(),
			Title:     title,
			Content:   content,
			Pomodoro:  pomodoro,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if cacheErr := c.cache.addLocal(task); cacheErr != nil {
			return nil, false, fmt.Errorf("server unreachable and mirror write failed: %w", cacheErr)
		}
		return &task, true, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("create task failed: %s", string(respBody))
	}

	var result struct {
		Task entities.Task `json:"task"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, false, err
	}

	return &result.Task, false, nil
}

// TaskPatch is a partial task update. Nil fields are left unchanged.
type TaskPatch struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Pomodoro *int    `json:"pomodoro,omitempty"`
	IsDone   *bool   `json:"isDone,omitempty"`
}

func (p TaskPatch) apply(t *entities.Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.Pomodoro != nil {
		t.Pomodoro = *p.Pomodoro
	}
	if p.IsDone != nil {
		t.IsDone = *p.IsDone
	}
}

// UpdateTask patches a task on the server. When the server is unreachable
// the patch is applied to the local mirror instead.
func (c *Client) UpdateTask(id uuid.UUID, patch TaskPatch) (*entities.Task, bool, error) {
	body, _ := json.Marshal(patch)

	resp, err := c.do(http.MethodPut, "/api/tasks/"+id.String(), bytes.NewReader(body))
	if err != nil {
		task, cacheErr := c.cache.updateTask(id, patch.apply)
		if cacheErr != nil {
			return nil, false, fmt.Errorf("server unreachable and mirror update failed: %w", cacheErr)
		}
		return task, true, nil
	}
	defer resp.Body.Close()

	task, err := decodeTaskResponse(resp, "update task")
	return task, false, err
}

// DeleteTask removes a task on the server, or from the local mirror when
// the server is unreachable.
func (c *Client) DeleteTask(id uuid.UUID) (bool, error) {
	resp, err := c.do(http.MethodDelete, "/api/tasks/"+id.String(), nil)
	if err != nil {
		if cacheErr := c.cache.removeTask(id); cacheErr != nil {
			return false, fmt.Errorf("server unreachable and mirror delete failed: %w", cacheErr)
		}
		return true, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("delete task failed: %s", string(respBody))
	}

	return false, nil
}

// CompleteTask marks a task done. Offline, the mirror copy is marked
// instead.
func (c *Client) CompleteTask(id uuid.UUID) (*entities.Task, bool, error) {
	resp, err := c.do(http.MethodPatch, "/api/tasks/"+id.String()+"/complete", nil)
	if err != nil {
		task, cacheErr := c.cache.updateTask(id, func(t *entities.Task) { t.IsDone = true })
		if cacheErr != nil {
			return nil, false, fmt.Errorf("server unreachable and mirror update failed: %w", cacheErr)
		}
		return task, true, nil
	}
	defer resp.Body.Close()

	task, err := decodeTaskResponse(resp, "complete task")
	return task, false, err
}

// IncrementPomodoro adds one finished pomodoro to a task's counter.
// Offline, the mirror copy's counter is bumped instead.
func (c *Client) IncrementPomodoro(id uuid.UUID) (*entities.Task, bool, error) {
	resp, err := c.do(http.MethodPatch, "/api/tasks/"+id.String()+"/increment-pomodoro", nil)
	if err != nil {
		task, cacheErr := c.cache.updateTask(id, func(t *entities.Task) { t.CompletedPomodoros++ })
		if cacheErr != nil {
			return nil, false, fmt.Errorf("server unreachable and mirror update failed: %w", cacheErr)
		}
		return task, true, nil
	}
	defer resp.Body.Close()

	task, err := decodeTaskResponse(resp, "increment pomodoro")
	return task, false, err
}

// StartSession begins a timer run on the server. Sessions have no offline
// mirror; the server is the only record of timer history.
func (c *Client) StartSession(taskID *uuid.UUID, sessionType string) (*entities.PomodoroSession, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"taskId":      taskID,
		"sessionType": sessionType,
	})

	resp, err := c.do(http.MethodPost, "/api/pomodoro/start", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	return decodeSessionResponse(resp, http.StatusCreated, "start session")
}

// EndSession closes a timer run on the server.
func (c *Client) EndSession(sessionID uuid.UUID, completed *bool) (*entities.PomodoroSession, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"sessionId": sessionID,
		"completed": completed,
	})

	resp, err := c.do(http.MethodPost, "/api/pomodoro/end", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	return decodeSessionResponse(resp, http.StatusOK, "end session")
}

// GetSettings fetches the caller's timer settings.
func (c *Client) GetSettings() (*entities.UserSettings, error) {
	resp, err := c.do(http.MethodGet, "/api/settings", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	return decodeSettingsResponse(resp, "get settings")
}

// UpdateSettings sends a partial settings patch, keyed by API field name.
// The server rejects unknown keys.
func (c *Client) UpdateSettings(patch map[string]interface{}) (*entities.UserSettings, error) {
	body, _ := json.Marshal(patch)

	resp, err := c.do(http.MethodPatch, "/api/settings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	return decodeSettingsResponse(resp, "update settings")
}

func decodeTaskResponse(resp *http.Response, op string) (*entities.Task, error) {
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s failed: %s", op, string(respBody))
	}

	var result struct {
		Task entities.Task `json:"task"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result.Task, nil
}

func decodeSessionResponse(resp *http.Response, wantStatus int, op string) (*entities.PomodoroSession, error) {
	if resp.StatusCode != wantStatus {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s failed: %s", op, string(respBody))
	}

	var result struct {
		Session entities.PomodoroSession `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result.Session, nil
}

func decodeSettingsResponse(resp *http.Response, op string) (*entities.UserSettings, error) {
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s failed: %s", op, string(respBody))
	}

	var result struct {
		Settings entities.UserSettings `json:"settings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result.Settings, nil
}

func (c *Client) do(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.config.ServerURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	return c.httpClient.Do(req)
}
