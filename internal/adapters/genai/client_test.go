package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pomodorify/core/internal/infrastructure/config"
)

func testConfig(baseURL string) config.GenAIConfig {
	return config.GenAIConfig{
		APIKey:  "test-key",
		Model:   "gemini-pro",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
}

func TestComplete(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{
						{"text": "Hello, "},
						{"text": "world"},
					},
				}},
			},
		})
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL))

	text, err := client.Complete(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if text != "Hello, world" {
		t.Errorf("text = %q, want concatenated parts", text)
	}
	if gotPath != "/v1beta/models/gemini-pro:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 ||
		gotBody.Contents[0].Parts[0].Text != "say hello" {
		t.Errorf("request body = %+v", gotBody)
	}
}

func TestComplete_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL))

	_, err := client.Complete(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status code, got %v", err)
	}
}

func TestComplete_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL))

	if _, err := client.Complete(context.Background(), "p"); err == nil {
		t.Error("expected error when no candidates are returned")
	}
}

func TestComplete_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed on purpose

	client := New(testConfig(srv.URL))

	if _, err := client.Complete(context.Background(), "p"); err == nil {
		t.Error("expected transport error against a closed server")
	}
}
