// Package modex is a small HTTP client for the modex API.
package modex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a running modex server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the given base URL, for example
// "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("modex: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// ClassifyResult is the outcome of a single classification.
type ClassifyResult struct {
	Text            string `json:"text"`
	ProcessedResult string `json:"processed_result"`
}

// ScrapedContent is one item of a batch submission.
type ScrapedContent struct {
	URL       string         `json:"url"`
	Text      string         `json:"text"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// BatchReceipt summarizes an accepted submission.
type BatchReceipt struct {
	Message        string `json:"message"`
	BatchID        string `json:"batch_id"`
	TotalItems     int    `json:"total_items"`
	ProcessedItems int    `json:"processed_items"`
}

// ItemResult is one classified batch item.
type ItemResult struct {
	URL    string `json:"url"`
	Text   string `json:"text"`
	Result string `json:"result"`
}

// BatchResults lists the classification results of one batch.
type BatchResults struct {
	BatchID      string       `json:"batch_id"`
	TotalResults int          `json:"total_results"`
	Results      []ItemResult `json:"results"`
}

// Classify labels a single text.
func (c *Client) Classify(ctx context.Context, text string) (ClassifyResult, error) {
	var out ClassifyResult
	err := c.do(ctx, http.MethodPost, "/classify", map[string]string{"text": text}, &out)
	return out, err
}

// SubmitBatch sends scraped content for classification.
func (c *Client) SubmitBatch(ctx context.Context, items []ScrapedContent) (BatchReceipt, error) {
	var out BatchReceipt
	err := c.do(ctx, http.MethodPost, "/scrape", map[string]any{"content": items}, &out)
	return out, err
}

// BatchResults fetches the results of a batch by its identifier.
func (c *Client) BatchResults(ctx context.Context, batchID string) (BatchResults, error) {
	var out BatchResults
	err := c.do(ctx, http.MethodGet, "/batches/"+batchID+"/results", nil, &out)
	return out, err
}

// Health checks the liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
