// Package classify runs the retrieve-then-classify pipeline: fetch similar
// labeled examples, build a prompt, ask the model, normalize the answer.
package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/veldt-labs/modex/internal/domain"
	"github.com/veldt-labs/modex/internal/metrics"
)

// Service classifies text using retrieval-augmented prompting.
type Service struct {
	retriever  Retriever
	classifier Classifier
	logger     *zap.Logger
}

// New creates a classification service.
func New(retriever Retriever, classifier Classifier, logger *zap.Logger) *Service {
	return &Service{
		retriever:  retriever,
		classifier: classifier,
		logger:     logger,
	}
}

// Classify maps a text onto one of the three labels. contentType names what
// is being classified ("text", "webpage") and only shapes the prompt.
func (s *Service) Classify(ctx context.Context, text, contentType string) (domain.Label, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyText
	}

	start := time.Now()

	retrieved, err := s.retriever.Retrieve(ctx, text, 0)
	if err != nil {
		return "", fmt.Errorf("retrieve examples: %w", err)
	}

	prompt := BuildPrompt(text, retrieved, contentType)

	raw, err := s.classifier.Classify(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}

	label, err := domain.NormalizeResponse(raw)
	if err != nil {
		s.logger.Warn("Unrecognized classifier response",
			zap.String("response", raw),
		)
		return "", err
	}

	metrics.ClassificationsTotal.WithLabelValues(string(label)).Inc()
	metrics.ClassificationDuration.WithLabelValues(s.retriever.Mode()).Observe(time.Since(start).Seconds())

	s.logger.Debug("Classified text",
		zap.String("label", string(label)),
		zap.Int("retrieved", len(retrieved)),
	)
	return label, nil
}
