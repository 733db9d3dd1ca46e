// Package knowledge implements the tenant-partitioned vector index: storage
// and cosine nearest-neighbor retrieval of benefits knowledge entries, usage
// telemetry, and the feedback path that folds resolved escalations back into
// the index.
//
// All access goes through a namespace-scoped TenantIndex handle, so an
// unscoped query is structurally impossible. Isolation is enforced by the
// tenant_id predicate on every statement, never by caller discipline.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"

	"github.com/beneflow/beneflow/internal/sqlc"
	"github.com/beneflow/beneflow/internal/tenant"
)

// Querier defines the database operations the index needs.
type Querier interface {
	SearchKnowledgeEntries(ctx context.Context, arg sqlc.SearchKnowledgeEntriesParams) ([]sqlc.SearchKnowledgeEntriesRow, error)
	InsertKnowledgeEntry(ctx context.Context, arg sqlc.InsertKnowledgeEntryParams) (sqlc.KnowledgeEntry, error)
	UpdateKnowledgeEntry(ctx context.Context, arg sqlc.UpdateKnowledgeEntryParams) (sqlc.KnowledgeEntry, error)
	DeactivateKnowledgeEntry(ctx context.Context, arg sqlc.DeactivateKnowledgeEntryParams) (int64, error)
	GetKnowledgeEntry(ctx context.Context, arg sqlc.GetKnowledgeEntryParams) (sqlc.KnowledgeEntry, error)
	ListTopUsedEntries(ctx context.Context, arg sqlc.ListTopUsedEntriesParams) ([]sqlc.ListTopUsedEntriesRow, error)
	CountActiveEntries(ctx context.Context, tenantID pgtype.UUID) (int64, error)
}

// Index is the shared vector index over all tenants. It hands out
// namespace-scoped TenantIndex handles; it has no query methods of its own.
//
// Index is safe for concurrent use by multiple goroutines.
type Index struct {
	queries  Querier
	embedder TextEmbedder
	logger   *slog.Logger
}

// NewIndex creates an Index.
func NewIndex(querier Querier, embedder TextEmbedder, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		queries:  querier,
		embedder: embedder,
		logger:   logger.With("component", "knowledge.index"),
	}
}

// For scopes the index to a resolved tenant. Every operation on the returned
// handle carries the tenant's id; there is no way to issue a cross-tenant
// query through it.
func (ix *Index) For(t tenant.Tenant) *TenantIndex {
	return &TenantIndex{
		index:    ix,
		tenantID: t.ID,
	}
}

// Search is shorthand for For(t).Search, letting callers that hold a
// resolved tenant consume the index through a one-method interface.
func (ix *Index) Search(ctx context.Context, t tenant.Tenant, embedding []float32, cfg tenant.RetrievalConfig) ([]Candidate, error) {
	return ix.For(t).Search(ctx, embedding, cfg)
}

// TenantIndex is a namespace-scoped handle on the vector index.
type TenantIndex struct {
	index    *Index
	tenantID uuid.UUID
}

// Search runs a cosine nearest-neighbor query over the tenant's active
// entries. Results are ordered by similarity descending, ties broken by
// most-recently-created first, and exclude entries scoring at or below
// cfg.SimilarityThreshold. Rank is assigned 1-based in result order.
//
// Returns ErrDimensionMismatch when the embedding's length is not
// VectorDimension, and rejects an out-of-range cfg rather than clamping it.
func (ti *TenantIndex) Search(ctx context.Context, embedding []float32, cfg tenant.RetrievalConfig) ([]Candidate, error) {
	if len(embedding) != VectorDimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(embedding), VectorDimension)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	vec := pgvector.NewVector(embedding)
	rows, err := ti.index.queries.SearchKnowledgeEntries(ctx, sqlc.SearchKnowledgeEntriesParams{
		TenantID:            uuidToPgUUID(ti.tenantID),
		QueryEmbedding:      &vec,
		SimilarityThreshold: cfg.SimilarityThreshold,
		ResultLimit:         int32(cfg.TopK),
	})
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	candidates := make([]Candidate, len(rows))
	for i, row := range rows {
		candidates[i] = Candidate{
			ID:               pgUUIDToUUID(row.ID),
			Title:            deref(row.Title),
			Content:          row.Content,
			Category:         row.Category,
			Subcategory:      deref(row.Subcategory),
			SourceRef:        deref(row.SourceRef),
			ConfidenceWeight: row.ConfidenceWeight,
			Similarity:       row.Similarity,
			Rank:             i + 1,
			UsageCount:       row.UsageCount,
			CreatedAt:        row.CreatedAt.Time,
		}
	}
	return candidates, nil
}

// Add creates a curated entry. The draft's content is embedded before
// insert; confidence weight is CuratedConfidenceWeight.
func (ti *TenantIndex) Add(ctx context.Context, draft Draft) (Entry, error) {
	return ti.add(ctx, draft, CuratedConfidenceWeight)
}

func (ti *TenantIndex) add(ctx context.Context, draft Draft, weight float64) (Entry, error) {
	if strings.TrimSpace(draft.Content) == "" {
		return Entry{}, ErrEmptyContent
	}

	embedding, err := ti.index.embedder.Embed(ctx, draft.Content)
	if err != nil {
		return Entry{}, err
	}
	if len(embedding) != VectorDimension {
		return Entry{}, fmt.Errorf("%w: embedder returned %d, want %d", ErrDimensionMismatch, len(embedding), VectorDimension)
	}

	vec := pgvector.NewVector(embedding)
	row, err := ti.index.queries.InsertKnowledgeEntry(ctx, sqlc.InsertKnowledgeEntryParams{
		TenantID:         uuidToPgUUID(ti.tenantID),
		Title:            optStr(draft.Title),
		Content:          draft.Content,
		Category:         defaultCategory(draft.Category),
		Subcategory:      optStr(draft.Subcategory),
		Embedding:        &vec,
		SourceRef:        optStr(draft.SourceRef),
		ConfidenceWeight: weight,
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert entry: %w", err)
	}
	return entryFromRow(row), nil
}

// Update replaces an entry's content and metadata and re-embeds the new
// content. Returns ErrNotFound when the id is not in this tenant's
// namespace.
func (ti *TenantIndex) Update(ctx context.Context, id uuid.UUID, draft Draft) (Entry, error) {
	if strings.TrimSpace(draft.Content) == "" {
		return Entry{}, ErrEmptyContent
	}

	embedding, err := ti.index.embedder.Embed(ctx, draft.Content)
	if err != nil {
		return Entry{}, err
	}
	if len(embedding) != VectorDimension {
		return Entry{}, fmt.Errorf("%w: embedder returned %d, want %d", ErrDimensionMismatch, len(embedding), VectorDimension)
	}

	vec := pgvector.NewVector(embedding)
	row, err := ti.index.queries.UpdateKnowledgeEntry(ctx, sqlc.UpdateKnowledgeEntryParams{
		TenantID:    uuidToPgUUID(ti.tenantID),
		ID:          uuidToPgUUID(id),
		Title:       optStr(draft.Title),
		Content:     draft.Content,
		Category:    defaultCategory(draft.Category),
		Subcategory: optStr(draft.Subcategory),
		Embedding:   &vec,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Entry{}, fmt.Errorf("failed to update entry: %w", err)
	}
	return entryFromRow(row), nil
}

// Deactivate soft-deletes an entry. The row is retained for audit but
// excluded from retrieval. Returns ErrNotFound when no active entry matches.
func (ti *TenantIndex) Deactivate(ctx context.Context, id uuid.UUID) error {
	affected, err := ti.index.queries.DeactivateKnowledgeEntry(ctx, sqlc.DeactivateKnowledgeEntryParams{
		TenantID: uuidToPgUUID(ti.tenantID),
		ID:       uuidToPgUUID(id),
	})
	if err != nil {
		return fmt.Errorf("failed to deactivate entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Get fetches a single entry, active or not.
func (ti *TenantIndex) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	row, err := ti.index.queries.GetKnowledgeEntry(ctx, sqlc.GetKnowledgeEntryParams{
		TenantID: uuidToPgUUID(ti.tenantID),
		ID:       uuidToPgUUID(id),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Entry{}, fmt.Errorf("failed to get entry: %w", err)
	}
	return entryFromRow(row), nil
}

// QuickQuestions returns suggested starter questions derived from the
// tenant's most-used active entries. An entry's title doubles as the
// question; entries without a title fall back to their content.
func (ti *TenantIndex) QuickQuestions(ctx context.Context, limit int) ([]QuickQuestion, error) {
	if limit < 1 {
		limit = 5
	}
	rows, err := ti.index.queries.ListTopUsedEntries(ctx, sqlc.ListTopUsedEntriesParams{
		TenantID:    uuidToPgUUID(ti.tenantID),
		ResultLimit: int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list top used entries: %w", err)
	}

	questions := make([]QuickQuestion, len(rows))
	for i, row := range rows {
		question := deref(row.Title)
		if question == "" {
			question = row.Content
		}
		questions[i] = QuickQuestion{
			EntryID:    pgUUIDToUUID(row.ID),
			Question:   question,
			Category:   row.Category,
			UsageCount: row.UsageCount,
		}
	}
	return questions, nil
}

// Count returns the number of active entries in the tenant's namespace.
func (ti *TenantIndex) Count(ctx context.Context) (int64, error) {
	return ti.index.queries.CountActiveEntries(ctx, uuidToPgUUID(ti.tenantID))
}

func entryFromRow(row sqlc.KnowledgeEntry) Entry {
	e := Entry{
		ID:               pgUUIDToUUID(row.ID),
		TenantID:         pgUUIDToUUID(row.TenantID),
		Title:            deref(row.Title),
		Content:          row.Content,
		Category:         row.Category,
		Subcategory:      deref(row.Subcategory),
		SourceRef:        deref(row.SourceRef),
		ConfidenceWeight: row.ConfidenceWeight,
		UsageCount:       row.UsageCount,
		Active:           row.Active,
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
	}
	if row.LastUsedAt.Valid {
		e.LastUsedAt = row.LastUsedAt.Time
	}
	return e
}

func defaultCategory(category string) string {
	if category == "" {
		return DefaultCategory
	}
	return category
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// uuidToPgUUID converts uuid.UUID to pgtype.UUID.
func uuidToPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{
		Bytes: id,
		Valid: true,
	}
}

// pgUUIDToUUID converts pgtype.UUID to uuid.UUID.
func pgUUIDToUUID(pgUUID pgtype.UUID) uuid.UUID {
	if !pgUUID.Valid {
		return uuid.Nil
	}
	return pgUUID.Bytes
}
