package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/veldt-labs/modex/internal/domain"
	"github.com/veldt-labs/modex/internal/metrics"
)

// Classifier asks an OpenAI-compatible chat model to label a prompt.
// Latency and rate limits are owned by the external service; this client
// only enforces a per-call timeout and a bounded retry for transient
// failures.
type Classifier struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	logger     *zap.Logger
}

// ClassifierConfig holds the chat model settings.
type ClassifierConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Logger     *zap.Logger
}

// NewClassifier creates an OpenAI-compatible chat classifier.
func NewClassifier(cfg *ClassifierConfig) *Classifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Classifier{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		logger:     cfg.Logger,
	}
}

// Classify sends the prompt and returns the model's free-form response.
// Persistent failure surfaces as domain.ErrClassifierUnavailable after the
// retry budget is spent.
func (c *Classifier) Classify(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.ClassifierRetriesTotal.Inc()
			backoff := time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
			c.logger.Warn("Retrying chat completion",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %w", domain.ErrClassifierUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
		}

		response, err := c.complete(ctx, prompt)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if !isRetryable(err) {
			break
		}
	}

	return "", fmt.Errorf("%w: %w", domain.ErrClassifierUnavailable, lastErr)
}

func (c *Classifier) complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// isRetryable treats timeouts, 429 and 5xx responses as transient.
func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}

	// Transport-level failure (connection refused, DNS) with no HTTP status.
	return true
}

// HealthCheck verifies API availability via ListModels.
func (c *Classifier) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
