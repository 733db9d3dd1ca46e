package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/beneflow/beneflow/internal/sqlc"
)

// FeedbackQuerier defines the database operations the writer needs.
type FeedbackQuerier interface {
	MarkEscalationFolded(ctx context.Context, arg sqlc.MarkEscalationFoldedParams) (int64, error)
	InsertKnowledgeEntry(ctx context.Context, arg sqlc.InsertKnowledgeEntryParams) (sqlc.KnowledgeEntry, error)
	GetEscalation(ctx context.Context, arg sqlc.GetEscalationParams) (sqlc.Escalation, error)
}

// Writer folds a resolved escalation back into the knowledge index, closing
// the self-improvement loop: a question that once required a human now
// auto-answers.
//
// Writer is safe for concurrent use by multiple goroutines.
type Writer struct {
	pool     *pgxpool.Pool
	queries  FeedbackQuerier
	embedder TextEmbedder
	logger   *slog.Logger
}

// NewWriter creates a Writer. pool may be nil in tests, in which case Commit
// runs non-transactionally against querier.
func NewWriter(pool *pgxpool.Pool, querier FeedbackQuerier, embedder TextEmbedder, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		pool:     pool,
		queries:  querier,
		embedder: embedder,
		logger:   logger.With("component", "knowledge.writer"),
	}
}

// Commit turns a resolved escalation into a knowledge entry. The entry's
// content concatenates the original query and the resolution text, with the
// query as implicit title, so the entry is retrievable by paraphrases of the
// original question. Confidence weight is FeedbackConfidenceWeight to signal
// provenance below curated entries.
//
// The fold flag and the insert commit in one transaction, guarded by a
// conditional UPDATE on the escalation row, so two concurrent commits for
// the same escalation produce exactly one entry. The loser observes
// ErrAlreadyFolded. Commit also fails with ErrNotFoldable when the
// escalation is not resolved, and ErrNotFound when it does not exist.
func (w *Writer) Commit(ctx context.Context, req FoldRequest) (Entry, error) {
	if req.ResolutionText == "" {
		return Entry{}, fmt.Errorf("%w: escalation %s has no resolution text", ErrNotFoldable, req.EscalationID)
	}

	content := req.Query + "\n\n" + req.ResolutionText
	embedding, err := w.embedder.Embed(ctx, content)
	if err != nil {
		return Entry{}, err
	}
	if len(embedding) != VectorDimension {
		return Entry{}, fmt.Errorf("%w: embedder returned %d, want %d", ErrDimensionMismatch, len(embedding), VectorDimension)
	}

	// nil pool means a mock querier in tests; run the same steps without
	// transactional atomicity.
	if w.pool == nil {
		return w.commit(ctx, w.queries, req, embedding)
	}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			w.logger.DebugContext(ctx, "transaction rollback", "error", err)
		}
	}()

	entry, err := w.commit(ctx, sqlc.New(tx), req, embedding)
	if err != nil {
		return Entry{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Entry{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.InfoContext(ctx, "escalation folded into knowledge",
		"escalation_id", req.EscalationID,
		"entry_id", entry.ID)
	return entry, nil
}

func (w *Writer) commit(ctx context.Context, q FeedbackQuerier, req FoldRequest, embedding []float32) (Entry, error) {
	// Flip the fold flag first. The conditional UPDATE only matches a
	// resolved, not-yet-folded row, so this is the compare-and-swap that
	// keeps the fold idempotent under concurrency.
	affected, err := q.MarkEscalationFolded(ctx, sqlc.MarkEscalationFoldedParams{
		TenantID: uuidToPgUUID(req.TenantID),
		ID:       uuidToPgUUID(req.EscalationID),
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to mark escalation folded: %w", err)
	}
	if affected == 0 {
		return Entry{}, w.classifyFoldFailure(ctx, q, req)
	}

	vec := pgvector.NewVector(embedding)
	title := req.Query
	sourceRef := "escalation:" + req.EscalationID.String()
	row, err := q.InsertKnowledgeEntry(ctx, sqlc.InsertKnowledgeEntryParams{
		TenantID:         uuidToPgUUID(req.TenantID),
		Title:            &title,
		Content:          req.Query + "\n\n" + req.ResolutionText,
		Category:         DefaultCategory,
		Embedding:        &vec,
		SourceRef:        &sourceRef,
		ConfidenceWeight: FeedbackConfidenceWeight,
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert feedback entry: %w", err)
	}
	return entryFromRow(row), nil
}

// classifyFoldFailure inspects the escalation to explain why the
// compare-and-swap matched no row.
func (w *Writer) classifyFoldFailure(ctx context.Context, q FeedbackQuerier, req FoldRequest) error {
	esc, err := q.GetEscalation(ctx, sqlc.GetEscalationParams{
		TenantID: uuidToPgUUID(req.TenantID),
		ID:       uuidToPgUUID(req.EscalationID),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: escalation %s", ErrNotFound, req.EscalationID)
		}
		return fmt.Errorf("failed to inspect escalation %s: %w", req.EscalationID, err)
	}
	if esc.FoldedIntoKnowledge {
		return fmt.Errorf("%w: escalation %s", ErrAlreadyFolded, req.EscalationID)
	}
	return fmt.Errorf("%w: escalation %s has status %q", ErrNotFoldable, req.EscalationID, esc.Status)
}
