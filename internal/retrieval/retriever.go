// Package retrieval implements the read side of the answer pipeline: embed
// the user's question, query the tenant's slice of the vector index, and
// gate the result on retrieval and generation confidence.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/beneflow/beneflow/internal/knowledge"
	"github.com/beneflow/beneflow/internal/tenant"
)

// Searcher is the slice of the knowledge index the retriever needs.
type Searcher interface {
	Search(ctx context.Context, t tenant.Tenant, embedding []float32, cfg tenant.RetrievalConfig) ([]knowledge.Candidate, error)
}

// Retriever embeds a query and searches the tenant's knowledge. It is
// read-only and stateless across calls, so arbitrary fan-out is safe.
//
// The embedder/index separation exists so similarity behavior is testable
// with a stub embedder and no live embedding service.
type Retriever struct {
	embedder knowledge.TextEmbedder
	index    Searcher
	logger   *slog.Logger
}

// NewRetriever creates a Retriever.
func NewRetriever(embedder knowledge.TextEmbedder, index Searcher, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		logger:   logger.With("component", "retrieval.retriever"),
	}
}

// Retrieve embeds queryText and returns the tenant's matching candidates
// under the tenant's retrieval configuration. An embedding failure surfaces
// knowledge.ErrEmbeddingUnavailable; it is non-retryable within the request
// and the caller falls back to escalation.
func (r *Retriever) Retrieve(ctx context.Context, tn tenant.Tenant, queryText string) ([]knowledge.Candidate, error) {
	embedding, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	candidates, err := r.index.Search(ctx, tn, embedding, tn.Config)
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "retrieval complete",
		"namespace", tn.Namespace.String(),
		"candidates", len(candidates))
	return candidates, nil
}
