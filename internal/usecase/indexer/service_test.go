package indexer

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/veldt-labs/modex/internal/corpus"
	"github.com/veldt-labs/modex/internal/domain"
)

// mockRepo records calls. With rows set it behaves like the real store:
// BulkAdd upserts by ID, Clear wipes, Count reflects what survived.
type mockRepo struct {
	ensureErr   error
	count       int
	countErr    error
	fingerprint string
	fpErr       error
	clearErr    error

	rows     map[string]domain.Example
	cleared  int
	added    []domain.Example
	vectors  [][]float32
	storedFP string
}

func (m *mockRepo) EnsureIndex(_ context.Context) error { return m.ensureErr }

func (m *mockRepo) Count(_ context.Context) (int, error) {
	if m.rows != nil {
		return len(m.rows), m.countErr
	}
	return m.count, m.countErr
}

func (m *mockRepo) Clear(_ context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared++
	for id := range m.rows {
		delete(m.rows, id)
	}
	return nil
}

func (m *mockRepo) BulkAdd(_ context.Context, exs []domain.Example, vectors [][]float32) error {
	m.added = exs
	m.vectors = vectors
	for i := range exs {
		if m.rows != nil {
			m.rows[exs[i].ID] = exs[i]
		}
	}
	return nil
}

func (m *mockRepo) Fingerprint(_ context.Context) (string, error) {
	if m.storedFP != "" {
		return m.storedFP, m.fpErr
	}
	return m.fingerprint, m.fpErr
}

func (m *mockRepo) SetFingerprint(_ context.Context, fp string) error {
	m.storedFP = fp
	return nil
}

type mockEmbedder struct {
	calls int
	err   error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type staticSource struct {
	examples []domain.Example
	err      error
}

func (s *staticSource) Load() ([]domain.Example, error) { return s.examples, s.err }

func testExamples() []domain.Example {
	return []domain.Example{
		{ID: "row-0", Text: "hello there", Label: domain.LabelSafe},
		{ID: "row-1", Text: "go away", Label: domain.LabelModerate},
	}
}

func TestSync_PopulatesEmptyIndex(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{}
	src := &staticSource{examples: testExamples()}
	svc := New(repo, emb, src, zap.NewNop())

	if err := svc.Sync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if emb.calls != 2 {
		t.Errorf("expected 2 embed calls, got %d", emb.calls)
	}
	if len(repo.added) != 2 || len(repo.vectors) != 2 {
		t.Errorf("expected bulk add of 2 examples, got %d/%d", len(repo.added), len(repo.vectors))
	}
	if repo.storedFP != corpus.Fingerprint(src.examples) {
		t.Errorf("stored fingerprint %q does not match corpus", repo.storedFP)
	}
	if !svc.Ready() {
		t.Error("expected service to report ready after sync")
	}
}

func TestSync_SkipsCurrentIndex(t *testing.T) {
	examples := testExamples()
	repo := &mockRepo{
		count:       len(examples),
		fingerprint: corpus.Fingerprint(examples),
	}
	emb := &mockEmbedder{}
	svc := New(repo, emb, &staticSource{examples: examples}, zap.NewNop())

	if err := svc.Sync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if emb.calls != 0 {
		t.Errorf("expected zero embed calls for a current index, got %d", emb.calls)
	}
	if repo.added != nil {
		t.Error("expected no bulk add for a current index")
	}
	if !svc.Ready() {
		t.Error("expected service to report ready after skip")
	}
}

func TestSync_RepopulatesOnFingerprintMismatch(t *testing.T) {
	repo := &mockRepo{
		count:       2,
		fingerprint: "stale",
	}
	emb := &mockEmbedder{}
	svc := New(repo, emb, &staticSource{examples: testExamples()}, zap.NewNop())

	if err := svc.Sync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.calls != 2 {
		t.Errorf("expected re-embed on changed corpus, got %d calls", emb.calls)
	}
}

func TestSync_RepopulatesOnCountMismatch(t *testing.T) {
	examples := testExamples()
	repo := &mockRepo{
		count:       1,
		fingerprint: corpus.Fingerprint(examples),
	}
	emb := &mockEmbedder{}
	svc := New(repo, emb, &staticSource{examples: examples}, zap.NewNop())

	if err := svc.Sync(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.calls != 2 {
		t.Errorf("expected re-embed on count mismatch, got %d calls", emb.calls)
	}
}

func TestSync_ShrunkCorpusDropsStaleRows(t *testing.T) {
	repo := &mockRepo{rows: map[string]domain.Example{}}
	emb := &mockEmbedder{}
	src := &staticSource{examples: []domain.Example{
		{ID: "row-0", Text: "hello there", Label: domain.LabelSafe},
		{ID: "row-1", Text: "go away", Label: domain.LabelModerate},
		{ID: "row-2", Text: "XYZ group should not exist", Label: domain.LabelHateSpeech},
	}}
	ctx := context.Background()

	if err := New(repo, emb, src, zap.NewNop()).Sync(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.rows) != 3 {
		t.Fatalf("expected 3 indexed rows, got %d", len(repo.rows))
	}

	// Corpus shrinks to two rows. A fresh startup must drop row-2.
	src.examples = src.examples[:2]
	if err := New(repo, emb, src, zap.NewNop()).Sync(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.rows["row-2"]; ok {
		t.Error("stale row survived repopulate")
	}
	if len(repo.rows) != 2 {
		t.Fatalf("expected 2 indexed rows after shrink, got %d", len(repo.rows))
	}

	// A third startup on the unchanged corpus makes zero embedding calls.
	callsAfterShrink := emb.calls
	if err := New(repo, emb, src, zap.NewNop()).Sync(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.calls != callsAfterShrink {
		t.Errorf("expected no embed calls for an unchanged corpus, got %d extra",
			emb.calls-callsAfterShrink)
	}
}

func TestSync_ClearErrorAborts(t *testing.T) {
	repo := &mockRepo{clearErr: errors.New("scan failed")}
	svc := New(repo, &mockEmbedder{}, &staticSource{examples: testExamples()}, zap.NewNop())

	if err := svc.Sync(context.Background()); err == nil {
		t.Fatal("expected clear error to propagate")
	}
	if repo.added != nil {
		t.Error("expected no bulk add when the clear fails")
	}
	if repo.storedFP != "" {
		t.Error("fingerprint must not be stored on failure")
	}
}

func TestSync_SourceErrorPropagates(t *testing.T) {
	svc := New(&mockRepo{}, &mockEmbedder{}, &staticSource{err: domain.ErrMissingDataSource}, zap.NewNop())

	err := svc.Sync(context.Background())
	if !errors.Is(err, domain.ErrMissingDataSource) {
		t.Fatalf("expected ErrMissingDataSource, got %v", err)
	}
	if svc.Ready() {
		t.Error("service must not be ready after a failed sync")
	}
}

func TestSync_EmbedErrorAbortsPopulate(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{err: errors.New("quota exceeded")}
	svc := New(repo, emb, &staticSource{examples: testExamples()}, zap.NewNop())

	if err := svc.Sync(context.Background()); err == nil {
		t.Fatal("expected embed error to propagate")
	}
	if repo.cleared != 0 {
		t.Error("existing rows must be left intact on embed failure")
	}
	if repo.added != nil {
		t.Error("expected no partial bulk add on embed failure")
	}
	if repo.storedFP != "" {
		t.Error("fingerprint must not be stored on failure")
	}
}
