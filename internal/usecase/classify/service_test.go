package classify

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/veldt-labs/modex/internal/domain"
	"github.com/veldt-labs/modex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

type mockRetriever struct {
	hits []domain.Retrieved
	err  error
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, _ int) ([]domain.Retrieved, error) {
	return m.hits, m.err
}

func (m *mockRetriever) Mode() string { return "vector" }

type mockClassifier struct {
	response string
	err      error
	prompt   string
}

func (m *mockClassifier) Classify(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

func TestClassify(t *testing.T) {
	ret := &mockRetriever{hits: []domain.Retrieved{
		{Text: "XYZ group should not exist.", Label: domain.LabelHateSpeech},
	}}
	clf := &mockClassifier{response: "Hate Speech"}
	svc := New(ret, clf, zap.NewNop())

	label, err := svc.Classify(context.Background(), "XYZ group is awful", "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != domain.LabelHateSpeech {
		t.Errorf("label = %q, expected Hate Speech", label)
	}
	if !strings.Contains(clf.prompt, "XYZ group should not exist.") {
		t.Error("expected retrieved example in prompt")
	}
}

func TestClassify_VerboseResponse(t *testing.T) {
	svc := New(&mockRetriever{}, &mockClassifier{
		response: "I think this is Moderate because it is rude but not hateful.",
	}, zap.NewNop())

	label, err := svc.Classify(context.Background(), "you people are annoying", "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != domain.LabelModerate {
		t.Errorf("label = %q, expected Moderate", label)
	}
}

func TestClassify_EmptyText(t *testing.T) {
	svc := New(&mockRetriever{}, &mockClassifier{}, zap.NewNop())

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Classify(context.Background(), text, "text"); !errors.Is(err, domain.ErrEmptyText) {
			t.Errorf("text %q: expected ErrEmptyText, got %v", text, err)
		}
	}
}

func TestClassify_RetrieverErrorPropagates(t *testing.T) {
	svc := New(&mockRetriever{err: domain.ErrEmbeddingProviderError}, &mockClassifier{}, zap.NewNop())

	_, err := svc.Classify(context.Background(), "some text", "text")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestClassify_ClassifierErrorPropagates(t *testing.T) {
	svc := New(&mockRetriever{}, &mockClassifier{err: domain.ErrClassifierUnavailable}, zap.NewNop())

	_, err := svc.Classify(context.Background(), "some text", "text")
	if !errors.Is(err, domain.ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable, got %v", err)
	}
}

func TestClassify_UnrecognizedLabel(t *testing.T) {
	svc := New(&mockRetriever{}, &mockClassifier{
		response: "This content seems borderline and I cannot decide on a category here.",
	}, zap.NewNop())

	_, err := svc.Classify(context.Background(), "some text", "text")
	if !errors.Is(err, domain.ErrUnrecognizedLabel) {
		t.Fatalf("expected ErrUnrecognizedLabel, got %v", err)
	}
}
