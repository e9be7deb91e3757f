package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	return s.result, s.err
}

func TestDimCheckedEmbedder_MatchingDim(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 5}}
	e := NewDimCheckedEmbedder(inner, 3)

	result, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("got %d dims, want 3", len(result.Embedding))
	}
	if result.TotalTokens != 5 {
		t.Errorf("token usage not passed through: got %d", result.TotalTokens)
	}
}

func TestDimCheckedEmbedder_Mismatch(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2}}}
	e := NewDimCheckedEmbedder(inner, 768)

	_, err := e.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestDimCheckedEmbedder_ZeroDimSkipsCheck(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2}}}
	e := NewDimCheckedEmbedder(inner, 0)

	if _, err := e.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDimCheckedEmbedder_InnerErrorPropagates(t *testing.T) {
	wantErr := errors.New("provider down")
	inner := &stubEmbedder{err: wantErr}
	e := NewDimCheckedEmbedder(inner, 3)

	if _, err := e.Embed(context.Background(), "hello"); !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want inner error", err)
	}
}
