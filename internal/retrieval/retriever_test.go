package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/beneflow/beneflow/internal/knowledge"
	"github.com/beneflow/beneflow/internal/tenant"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return s.vector, s.err
}

type stubSearcher struct {
	candidates []knowledge.Candidate
	err        error
	gotTenant  tenant.Tenant
	gotConfig  tenant.RetrievalConfig
}

func (s *stubSearcher) Search(_ context.Context, t tenant.Tenant, _ []float32, cfg tenant.RetrievalConfig) ([]knowledge.Candidate, error) {
	s.gotTenant = t
	s.gotConfig = cfg
	return s.candidates, s.err
}

func TestRetrieverRetrieve(t *testing.T) {
	ctx := context.Background()
	tn := tenant.Tenant{
		ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Namespace: "acme",
		Config: tenant.RetrievalConfig{
			SimilarityThreshold: 0.8,
			TopK:                3,
			EscalationThreshold: 0.5,
		},
	}

	t.Run("searches with the tenant's own config", func(t *testing.T) {
		searcher := &stubSearcher{
			candidates: []knowledge.Candidate{{Similarity: 0.9, Rank: 1}},
		}
		retriever := NewRetriever(&stubEmbedder{vector: make([]float32, knowledge.VectorDimension)}, searcher, nil)

		got, err := retriever.Retrieve(ctx, tn, "how many vacation days do I get")
		if err != nil {
			t.Fatalf("Retrieve() unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len(candidates) = %d, want 1", len(got))
		}
		if searcher.gotTenant.ID != tn.ID {
			t.Errorf("searched tenant = %s, want %s", searcher.gotTenant.ID, tn.ID)
		}
		if searcher.gotConfig != tn.Config {
			t.Errorf("searched config = %+v, want %+v", searcher.gotConfig, tn.Config)
		}
	})

	t.Run("embedding failure is non-retryable and surfaces unchanged", func(t *testing.T) {
		embedder := &stubEmbedder{err: knowledge.ErrEmbeddingUnavailable}
		retriever := NewRetriever(embedder, &stubSearcher{}, nil)

		_, err := retriever.Retrieve(ctx, tn, "query")
		if !errors.Is(err, knowledge.ErrEmbeddingUnavailable) {
			t.Errorf("Retrieve() error = %v, want ErrEmbeddingUnavailable", err)
		}
	})

	t.Run("search failure propagates", func(t *testing.T) {
		searcher := &stubSearcher{err: knowledge.ErrDimensionMismatch}
		retriever := NewRetriever(&stubEmbedder{vector: make([]float32, 10)}, searcher, nil)

		_, err := retriever.Retrieve(ctx, tn, "query")
		if !errors.Is(err, knowledge.ErrDimensionMismatch) {
			t.Errorf("Retrieve() error = %v, want ErrDimensionMismatch", err)
		}
	})
}
