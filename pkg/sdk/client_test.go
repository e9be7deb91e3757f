package modex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClassify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/classify" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["text"] != "some text" {
			t.Errorf("unexpected text: %q", req["text"])
		}
		json.NewEncoder(w).Encode(ClassifyResult{Text: req["text"], ProcessedResult: "Safe"})
	}))
	defer server.Close()

	got, err := New(server.URL).Classify(context.Background(), "some text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ProcessedResult != "Safe" {
		t.Errorf("result = %q, expected Safe", got.ProcessedResult)
	}
}

func TestClassify_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "empty_text",
			"message": "text must not be empty",
		})
	}))
	defer server.Close()

	_, err := New(server.URL).Classify(context.Background(), "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "empty_text" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}

func TestSubmitBatchAndResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/scrape":
			json.NewEncoder(w).Encode(BatchReceipt{
				Message:        "Content received successfully",
				BatchID:        "batch-1",
				TotalItems:     1,
				ProcessedItems: 1,
			})
		case "/batches/batch-1/results":
			json.NewEncoder(w).Encode(BatchResults{
				BatchID:      "batch-1",
				TotalResults: 1,
				Results:      []ItemResult{{URL: "https://a.example", Text: "hello", Result: "Safe"}},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := New(server.URL)
	ctx := context.Background()

	receipt, err := client.SubmitBatch(ctx, []ScrapedContent{{URL: "https://a.example", Text: "hello"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.BatchID != "batch-1" || receipt.ProcessedItems != 1 {
		t.Errorf("unexpected receipt: %+v", receipt)
	}

	results, err := client.BatchResults(ctx, receipt.BatchID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results.TotalResults != 1 || results.Results[0].Result != "Safe" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "running"})
	}))
	defer server.Close()

	if err := New(server.URL).Health(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
