package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

type fakeCompletionClient struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func someTasks(n int) []json.RawMessage {
	tasks := make([]json.RawMessage, 0, n)
	for i := 0; i < n; i++ {
		tasks = append(tasks, json.RawMessage(`{"title":"write report","pomodoro":2}`))
	}
	return tasks
}

func TestGenerateSuggestions_EmptyHistoryServesStarterList(t *testing.T) {
	client := &fakeCompletionClient{response: `[]`}
	svc := NewSuggestionService(client, logger.NewNop())

	resp, err := svc.GenerateSuggestions(context.Background(), ports.SuggestTasksRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.Success {
		t.Error("expected success")
	}
	if resp.Fallback {
		t.Error("starter list must not be flagged as fallback")
	}
	if len(resp.Suggestions) == 0 {
		t.Fatal("expected starter suggestions")
	}
	if len(client.prompts) != 0 {
		t.Error("no completion call should be made for empty history")
	}
}

func TestGenerateSuggestions_NilClientServesStarterList(t *testing.T) {
	svc := NewSuggestionService(nil, logger.NewNop())

	resp, err := svc.GenerateSuggestions(context.Background(), ports.SuggestTasksRequest{
		Tasks: someTasks(2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Fallback {
		t.Error("unconfigured client must not set the fallback flag")
	}
	if len(resp.Suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
}

func TestGenerateSuggestions_ParsesArrayFromProse(t *testing.T) {
	client := &fakeCompletionClient{
		response: "Here are some ideas:\n```json\n[{\"title\":\"Refactor tests\",\"description\":\"d\",\"estimatedPomodoros\":2,\"category\":\"dev\",\"priority\":\"high\",\"reasoning\":\"r\"}]\n```\nGood luck!",
	}
	svc := NewSuggestionService(client, logger.NewNop())

	resp, err := svc.GenerateSuggestions(context.Background(), ports.SuggestTasksRequest{
		Tasks: someTasks(1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Fallback {
		t.Error("parsed response must not be flagged as fallback")
	}
	if len(resp.Suggestions) != 1 || resp.Suggestions[0].Title != "Refactor tests" {
		t.Errorf("unexpected suggestions: %+v", resp.Suggestions)
	}
}

func TestGenerateSuggestions_CompletionErrorFallsBack(t *testing.T) {
	client := &fakeCompletionClient{err: errors.New("upstream down")}
	svc := NewSuggestionService(client, logger.NewNop())

	resp, err := svc.GenerateSuggestions(context.Background(), ports.SuggestTasksRequest{
		Tasks: someTasks(1),
	})
	if err != nil {
		t.Fatalf("fallback path must not surface the error, got %v", err)
	}

	if !resp.Fallback {
		t.Error("expected fallback flag after completion failure")
	}
	if len(resp.Suggestions) == 0 {
		t.Fatal("expected canned fallback suggestions")
	}
}

func TestGenerateSuggestions_GarbageCompletionFallsBack(t *testing.T) {
	client := &fakeCompletionClient{response: "I cannot help with that."}
	svc := NewSuggestionService(client, logger.NewNop())

	resp, err := svc.GenerateSuggestions(context.Background(), ports.SuggestTasksRequest{
		Tasks: someTasks(1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.Fallback {
		t.Error("expected fallback flag for unparseable completion")
	}
}

func TestBreakdownTask_ParsesAndOrdersSubtasks(t *testing.T) {
	client := &fakeCompletionClient{
		response: `[{"title":"a","estimatedPomodoros":1},{"title":"b","estimatedPomodoros":1}]`,
	}
	svc := NewSuggestionService(client, logger.NewNop())

	resp, err := svc.BreakdownTask(context.Background(), ports.BreakdownTaskRequest{
		TaskID:             "t1",
		TaskTitle:          "Ship release",
		EstimatedPomodoros: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Fallback {
		t.Error("parsed breakdown must not be flagged as fallback")
	}
	if resp.TaskID != "t1" {
		t.Errorf("TaskID = %q, want t1", resp.TaskID)
	}
	for i, st := range resp.Subtasks {
		if st.Order != i+1 {
			t.Errorf("subtask %d order = %d, want %d", i, st.Order, i+1)
		}
	}
}

func TestBreakdownTask_FallbackSplitsEvenly(t *testing.T) {
	client := &fakeCompletionClient{err: errors.New("timeout")}
	svc := NewSuggestionService(client, logger.NewNop())

	tests := []struct {
		estimate  int
		wantParts int
	}{
		{1, 1},
		{3, 3},
		{4, 4},
		{9, 4},
		{0, 1},
	}

	for _, tt := range tests {
		resp, err := svc.BreakdownTask(context.Background(), ports.BreakdownTaskRequest{
			TaskID:             "t1",
			TaskTitle:          "Big task",
			EstimatedPomodoros: tt.estimate,
		})
		if err != nil {
			t.Fatalf("estimate %d: unexpected error: %v", tt.estimate, err)
		}
		if !resp.Fallback {
			t.Errorf("estimate %d: expected fallback flag", tt.estimate)
		}
		if len(resp.Subtasks) != tt.wantParts {
			t.Errorf("estimate %d: %d subtasks, want %d", tt.estimate, len(resp.Subtasks), tt.wantParts)
		}
	}
}

func TestParseJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		wantLen int
	}{
		{"bare array", `[{"title":"a"}]`, false, 1},
		{"fenced array", "```json\n[{\"title\":\"a\"},{\"title\":\"b\"}]\n```", false, 2},
		{"prose around array", "sure: [{\"title\":\"a\"}] hope that helps", false, 1},
		{"no array", "no structured data here", true, 0},
		{"malformed array", "[{not json}]", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out []ports.TaskSuggestion
			err := parseJSONArray(tt.input, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err == nil && len(out) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(out), tt.wantLen)
			}
		})
	}
}
