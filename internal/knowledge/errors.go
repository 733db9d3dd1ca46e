package knowledge

import "errors"

// Sentinel errors for the knowledge index and feedback writer.
var (
	// ErrDimensionMismatch indicates a query or entry embedding whose length
	// does not match VectorDimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNotFound indicates the referenced row does not exist in the
	// tenant's namespace.
	ErrNotFound = errors.New("not found")

	// ErrEmptyContent indicates a draft with no body text to embed.
	ErrEmptyContent = errors.New("entry content is empty")

	// ErrAlreadyFolded indicates the escalation's resolution was already
	// committed to the knowledge index; the fold step is a no-op.
	ErrAlreadyFolded = errors.New("escalation already folded into knowledge")

	// ErrNotFoldable indicates the escalation is not in a resolved state,
	// so there is no accepted resolution to fold.
	ErrNotFoldable = errors.New("escalation is not resolved")

	// ErrEmbeddingUnavailable indicates the embedding service failed or
	// timed out. Non-retryable within a request; callers fall back to
	// escalation.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
