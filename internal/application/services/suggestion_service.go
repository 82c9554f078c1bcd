package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pomodorify/core/internal/infrastructure/logger"
	"github.com/pomodorify/core/internal/ports"
)

// CompletionClient is the text-completion backend for suggestions. A nil
// client means no backend is configured; the service serves static content.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// jsonArrayPattern matches the first bracketed array in a completion,
// tolerating surrounding prose and markdown fences.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// SuggestionService produces task suggestions and task breakdowns, backed
// by a completion client with static fallbacks.
type SuggestionService struct {
	client CompletionClient
	logger *logger.Logger
}

// NewSuggestionService creates a new suggestion service. client may be nil.
func NewSuggestionService(client CompletionClient, logger *logger.Logger) *SuggestionService {
	return &SuggestionService{
		client: client,
		logger: logger,
	}
}

// GenerateSuggestions proposes new tasks based on the user's current and
// completed tasks. It always answers: with starter suggestions when there
// is no history to reason about, and with canned fallbacks when the
// completion backend is unavailable or returns garbage.
func (s *SuggestionService) GenerateSuggestions(ctx context.Context, req ports.SuggestTasksRequest) (*ports.SuggestionsResponse, error) {
	if len(req.Tasks) == 0 && len(req.CompletedTasks) == 0 {
		return &ports.SuggestionsResponse{
			Success:     true,
			Suggestions: starterSuggestions(),
		}, nil
	}

	if s.client == nil {
		return &ports.SuggestionsResponse{
			Success:     true,
			Suggestions: starterSuggestions(),
		}, nil
	}

	prompt := buildSuggestionsPrompt(req)

	text, err := s.client.Complete(ctx, prompt)
	if err != nil {
		s.logger.WithError(err).Warnw("suggestion completion failed, serving fallback")
		return fallbackSuggestionsResponse(), nil
	}

	var suggestions []ports.TaskSuggestion
	if err := parseJSONArray(text, &suggestions); err != nil || len(suggestions) == 0 {
		s.logger.Warnw("could not parse suggestions from completion", "error", err)
		return fallbackSuggestionsResponse(), nil
	}

	return &ports.SuggestionsResponse{
		Success:     true,
		Suggestions: suggestions,
	}, nil
}

// BreakdownTask splits a task into ordered subtasks. Backend failures fall
// back to an even mechanical split.
func (s *SuggestionService) BreakdownTask(ctx context.Context, req ports.BreakdownTaskRequest) (*ports.BreakdownResponse, error) {
	estimate := req.EstimatedPomodoros
	if estimate < 1 {
		estimate = 1
	}

	if s.client == nil {
		return fallbackBreakdownResponse(req.TaskID, req.TaskTitle, estimate), nil
	}

	prompt := buildBreakdownPrompt(req, estimate)

	text, err := s.client.Complete(ctx, prompt)
	if err != nil {
		s.logger.WithError(err).Warnw("breakdown completion failed, serving fallback", "task_id", req.TaskID)
		return fallbackBreakdownResponse(req.TaskID, req.TaskTitle, estimate), nil
	}

	var subtasks []ports.Subtask
	if err := parseJSONArray(text, &subtasks); err != nil || len(subtasks) == 0 {
		s.logger.Warnw("could not parse subtasks from completion", "task_id", req.TaskID, "error", err)
		return fallbackBreakdownResponse(req.TaskID, req.TaskTitle, estimate), nil
	}

	for i := range subtasks {
		subtasks[i].Order = i + 1
	}

	return &ports.BreakdownResponse{
		Success:  true,
		TaskID:   req.TaskID,
		Subtasks: subtasks,
	}, nil
}

// parseJSONArray extracts the first bracketed array from text and unmarshals
// it into dst.
func parseJSONArray(text string, dst interface{}) error {
	match := jsonArrayPattern.FindString(text)
	if match == "" {
		return fmt.Errorf("no JSON array in completion")
	}
	if err := json.Unmarshal([]byte(match), dst); err != nil {
		return fmt.Errorf("unmarshal completion array: %w", err)
	}
	return nil
}

func buildSuggestionsPrompt(req ports.SuggestTasksRequest) string {
	var sb strings.Builder

	sb.WriteString("You are a productivity assistant for a pomodoro timer app. ")
	sb.WriteString("Based on the user's current and completed tasks, suggest 3 to 5 new tasks.\n\n")

	sb.WriteString("Current tasks:\n")
	writeRawList(&sb, req.Tasks)
	sb.WriteString("\nCompleted tasks:\n")
	writeRawList(&sb, req.CompletedTasks)

	if len(req.UserPreferences) > 0 {
		sb.WriteString("\nUser preferences:\n")
		sb.Write(req.UserPreferences)
		sb.WriteString("\n")
	}

	sb.WriteString("\nRespond with ONLY a JSON array. Each element must have the keys: ")
	sb.WriteString(`"title", "description", "estimatedPomodoros" (integer), "category", "priority" ("high", "medium" or "low"), and "reasoning".`)

	return sb.String()
}

func buildBreakdownPrompt(req ports.BreakdownTaskRequest, estimate int) string {
	maxSubtasks := estimate * 2
	if maxSubtasks > 10 {
		maxSubtasks = 10
	}

	var sb strings.Builder

	sb.WriteString("You are a productivity assistant for a pomodoro timer app. ")
	fmt.Fprintf(&sb, "Break the following task into at most %d concrete subtasks, each sized for one or two pomodoros.\n\n", maxSubtasks)
	fmt.Fprintf(&sb, "Task: %s\n", req.TaskTitle)
	if req.TaskDescription != "" {
		fmt.Fprintf(&sb, "Description: %s\n", req.TaskDescription)
	}
	fmt.Fprintf(&sb, "Estimated pomodoros: %d\n", estimate)

	sb.WriteString("\nRespond with ONLY a JSON array. Each element must have the keys: ")
	sb.WriteString(`"title", "description", "estimatedPomodoros" (integer), and "order" (integer, starting at 1).`)

	return sb.String()
}

func writeRawList(sb *strings.Builder, items []json.RawMessage) {
	if len(items) == 0 {
		sb.WriteString("(none)\n")
		return
	}
	for _, item := range items {
		sb.WriteString("- ")
		sb.Write(item)
		sb.WriteString("\n")
	}
}

// starterSuggestions is what a brand-new user sees before there is any
// history to reason about.
func starterSuggestions() []ports.TaskSuggestion {
	return []ports.TaskSuggestion{
		{
			Title:              "Plan your day",
			Description:        "Write down the three most important things to finish today",
			EstimatedPomodoros: 1,
			Category:           "planning",
			Priority:           "high",
			Reasoning:          "Starting with a short planning session makes the rest of the day more focused",
		},
		{
			Title:              "Try your first pomodoro",
			Description:        "Pick any small task and work on it for one focused interval",
			EstimatedPomodoros: 1,
			Category:           "getting-started",
			Priority:           "medium",
			Reasoning:          "The best way to learn the technique is to run one full timer",
		},
	}
}

func fallbackSuggestionsResponse() *ports.SuggestionsResponse {
	return &ports.SuggestionsResponse{
		Success:  true,
		Fallback: true,
		Suggestions: []ports.TaskSuggestion{
			{
				Title:              "Review your open tasks",
				Description:        "Go through your task list and archive anything no longer relevant",
				EstimatedPomodoros: 1,
				Category:           "organization",
				Priority:           "medium",
				Reasoning:          "A short review keeps the list honest and actionable",
			},
			{
				Title:              "Continue your most recent task",
				Description:        "Pick up the task you worked on last and push it one pomodoro further",
				EstimatedPomodoros: 2,
				Category:           "focus",
				Priority:           "high",
				Reasoning:          "Momentum on an in-progress task beats starting something new",
			},
		},
	}
}

// fallbackBreakdownResponse splits the task into up to four even parts.
func fallbackBreakdownResponse(taskID, title string, estimate int) *ports.BreakdownResponse {
	parts := estimate
	if parts > 4 {
		parts = 4
	}

	subtasks := make([]ports.Subtask, 0, parts)
	for i := 1; i <= parts; i++ {
		subtasks = append(subtasks, ports.Subtask{
			Title:              fmt.Sprintf("%s (part %d of %d)", title, i, parts),
			Description:        fmt.Sprintf("Work on part %d of this task", i),
			EstimatedPomodoros: 1,
			Order:              i,
		})
	}

	return &ports.BreakdownResponse{
		Success:  true,
		TaskID:   taskID,
		Fallback: true,
		Subtasks: subtasks,
	}
}
