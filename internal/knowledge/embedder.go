package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"golang.org/x/time/rate"
)

// TextEmbedder produces a fixed-length embedding for a piece of text.
// Defined here so the index, retriever, and feedback writer can all accept a
// stub in tests without a live embedding service.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DefaultEmbedTimeout bounds a single embedding call. Embedding is the
// dominant latency source in the answer path; on timeout the caller falls
// back to escalation instead of blocking the request.
const DefaultEmbedTimeout = 10 * time.Second

// Embedder adapts a Genkit ai.Embedder to the TextEmbedder contract with a
// per-call timeout and a client-side rate limit. Failures surface as
// ErrEmbeddingUnavailable; there is no retry here, retries belong to the
// caller's policy.
type Embedder struct {
	embedder ai.Embedder
	limiter  *rate.Limiter
	timeout  time.Duration
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithEmbedTimeout overrides the per-call timeout.
func WithEmbedTimeout(d time.Duration) EmbedderOption {
	return func(e *Embedder) { e.timeout = d }
}

// WithEmbedRateLimit installs a client-side requests-per-second limit.
func WithEmbedRateLimit(rps float64, burst int) EmbedderOption {
	return func(e *Embedder) { e.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewEmbedder wraps a Genkit embedder.
func NewEmbedder(embedder ai.Embedder, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		embedder: embedder,
		timeout:  DefaultEmbedTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed generates an embedding for text. The returned vector's length is
// whatever the underlying model produces; callers validate it against
// VectorDimension.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			ai.DocumentFromText(text, nil),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", ErrEmbeddingUnavailable)
	}
	return resp.Embeddings[0].Embedding, nil
}
