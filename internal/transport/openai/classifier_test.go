package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/veldt-labs/modex/internal/domain"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

func TestClassifier_Classify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req struct {
			Model       string  `json:"model"`
			Temperature float32 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected a single user message, got %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("Hate Speech"))
	}))
	defer server.Close()

	clf := NewClassifier(&ClassifierConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	got, err := clf.Classify(context.Background(), "classify this")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got != "Hate Speech" {
		t.Errorf("response = %q, expected %q", got, "Hate Speech")
	}
}

func TestClassifier_Classify_RetriesTransient(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("Safe"))
	}))
	defer server.Close()

	clf := NewClassifier(&ClassifierConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test-model",
		MaxRetries: 2,
		Logger:     zap.NewNop(),
	})

	got, err := clf.Classify(context.Background(), "classify this")
	if err != nil {
		t.Fatalf("Classify failed after retry: %v", err)
	}
	if got != "Safe" {
		t.Errorf("response = %q, expected %q", got, "Safe")
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClassifier_Classify_ExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	clf := NewClassifier(&ClassifierConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test-model",
		MaxRetries: 1,
		Logger:     zap.NewNop(),
	})

	start := time.Now()
	_, err := clf.Classify(context.Background(), "classify this")
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if !errors.Is(err, domain.ErrClassifierUnavailable) {
		t.Errorf("expected ErrClassifierUnavailable, got %v", err)
	}
	// One retry means one 500ms backoff sleep.
	if elapsed := time.Since(start); elapsed < 400*time.Millisecond {
		t.Errorf("expected backoff before retry, elapsed %v", elapsed)
	}
}

func TestClassifier_Classify_NoRetryOnBadRequest(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "bad request", "type": "invalid_request_error"},
		})
	}))
	defer server.Close()

	clf := NewClassifier(&ClassifierConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test-model",
		MaxRetries: 3,
		Logger:     zap.NewNop(),
	})

	_, err := clf.Classify(context.Background(), "classify this")
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single call for non-retryable error, got %d", calls.Load())
	}
}
