package knowledge

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/beneflow/beneflow/internal/sqlc"
	"github.com/beneflow/beneflow/internal/tenant"
)

// mockIndexQuerier implements Querier with function fields so each test
// configures only what it needs.
type mockIndexQuerier struct {
	searchFunc     func(ctx context.Context, arg sqlc.SearchKnowledgeEntriesParams) ([]sqlc.SearchKnowledgeEntriesRow, error)
	insertFunc     func(ctx context.Context, arg sqlc.InsertKnowledgeEntryParams) (sqlc.KnowledgeEntry, error)
	updateFunc     func(ctx context.Context, arg sqlc.UpdateKnowledgeEntryParams) (sqlc.KnowledgeEntry, error)
	deactivateFunc func(ctx context.Context, arg sqlc.DeactivateKnowledgeEntryParams) (int64, error)
	getFunc        func(ctx context.Context, arg sqlc.GetKnowledgeEntryParams) (sqlc.KnowledgeEntry, error)
	listTopFunc    func(ctx context.Context, arg sqlc.ListTopUsedEntriesParams) ([]sqlc.ListTopUsedEntriesRow, error)
	countFunc      func(ctx context.Context, tenantID pgtype.UUID) (int64, error)
}

func (m *mockIndexQuerier) SearchKnowledgeEntries(ctx context.Context, arg sqlc.SearchKnowledgeEntriesParams) ([]sqlc.SearchKnowledgeEntriesRow, error) {
	return m.searchFunc(ctx, arg)
}

func (m *mockIndexQuerier) InsertKnowledgeEntry(ctx context.Context, arg sqlc.InsertKnowledgeEntryParams) (sqlc.KnowledgeEntry, error) {
	return m.insertFunc(ctx, arg)
}

func (m *mockIndexQuerier) UpdateKnowledgeEntry(ctx context.Context, arg sqlc.UpdateKnowledgeEntryParams) (sqlc.KnowledgeEntry, error) {
	return m.updateFunc(ctx, arg)
}

func (m *mockIndexQuerier) DeactivateKnowledgeEntry(ctx context.Context, arg sqlc.DeactivateKnowledgeEntryParams) (int64, error) {
	return m.deactivateFunc(ctx, arg)
}

func (m *mockIndexQuerier) GetKnowledgeEntry(ctx context.Context, arg sqlc.GetKnowledgeEntryParams) (sqlc.KnowledgeEntry, error) {
	return m.getFunc(ctx, arg)
}

func (m *mockIndexQuerier) ListTopUsedEntries(ctx context.Context, arg sqlc.ListTopUsedEntriesParams) ([]sqlc.ListTopUsedEntriesRow, error) {
	return m.listTopFunc(ctx, arg)
}

func (m *mockIndexQuerier) CountActiveEntries(ctx context.Context, tenantID pgtype.UUID) (int64, error) {
	return m.countFunc(ctx, tenantID)
}

// stubEmbedder returns a deterministic vector of the configured dimension.
type stubEmbedder struct {
	dimension int
	err       error
	calls     int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	vec := make([]float32, s.dimension)
	for i := range vec {
		vec[i] = float32(len(text)%7) / 7
	}
	return vec, nil
}

func testTenant() tenant.Tenant {
	return tenant.Tenant{
		ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Namespace: "acme",
		Config:    tenant.DefaultRetrievalConfig(),
	}
}

func TestTenantIndexSearch(t *testing.T) {
	ctx := context.Background()
	tn := testTenant()

	t.Run("rejects wrong dimension", func(t *testing.T) {
		ix := NewIndex(&mockIndexQuerier{}, &stubEmbedder{dimension: VectorDimension}, nil)

		_, err := ix.For(tn).Search(ctx, make([]float32, 10), tn.Config)
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("Search() error = %v, want ErrDimensionMismatch", err)
		}
	})

	t.Run("rejects out of range config without clamping", func(t *testing.T) {
		querier := &mockIndexQuerier{
			searchFunc: func(context.Context, sqlc.SearchKnowledgeEntriesParams) ([]sqlc.SearchKnowledgeEntriesRow, error) {
				t.Fatal("database should not be queried for invalid config")
				return nil, nil
			},
		}
		ix := NewIndex(querier, &stubEmbedder{dimension: VectorDimension}, nil)

		cfg := tenant.RetrievalConfig{SimilarityThreshold: 0.7, TopK: 50, EscalationThreshold: 0.5}
		_, err := ix.For(tn).Search(ctx, make([]float32, VectorDimension), cfg)
		if !errors.Is(err, tenant.ErrTopKOutOfRange) {
			t.Errorf("Search() error = %v, want ErrTopKOutOfRange", err)
		}
	})

	t.Run("scopes query to tenant and assigns ranks", func(t *testing.T) {
		entryID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
		title := "How many vacation days do I get?"
		querier := &mockIndexQuerier{
			searchFunc: func(_ context.Context, arg sqlc.SearchKnowledgeEntriesParams) ([]sqlc.SearchKnowledgeEntriesRow, error) {
				if got := pgUUIDToUUID(arg.TenantID); got != tn.ID {
					t.Errorf("query tenant id = %s, want %s", got, tn.ID)
				}
				if arg.SimilarityThreshold != 0.7 {
					t.Errorf("threshold = %v, want 0.7", arg.SimilarityThreshold)
				}
				if arg.ResultLimit != 5 {
					t.Errorf("limit = %d, want 5", arg.ResultLimit)
				}
				return []sqlc.SearchKnowledgeEntriesRow{
					{ID: uuidToPgUUID(entryID), Title: &title, Content: "20 days per year.", Category: "leave", ConfidenceWeight: 1.0, Similarity: 0.93},
					{ID: uuidToPgUUID(uuid.New()), Content: "Carry-over rules.", Category: "leave", ConfidenceWeight: 0.8, Similarity: 0.81},
				}, nil
			},
		}
		ix := NewIndex(querier, &stubEmbedder{dimension: VectorDimension}, nil)

		got, err := ix.For(tn).Search(ctx, make([]float32, VectorDimension), tn.Config)
		if err != nil {
			t.Fatalf("Search() unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len(candidates) = %d, want 2", len(got))
		}
		if got[0].ID != entryID {
			t.Errorf("candidate[0].ID = %s, want %s", got[0].ID, entryID)
		}
		if got[0].Title != title {
			t.Errorf("candidate[0].Title = %q, want %q", got[0].Title, title)
		}
		if got[0].Rank != 1 || got[1].Rank != 2 {
			t.Errorf("ranks = %d, %d, want 1, 2", got[0].Rank, got[1].Rank)
		}
		if got[0].Similarity < got[1].Similarity {
			t.Error("candidates not ordered by similarity descending")
		}
	})
}

func TestTenantIndexAdd(t *testing.T) {
	ctx := context.Background()
	tn := testTenant()

	t.Run("rejects empty content", func(t *testing.T) {
		ix := NewIndex(&mockIndexQuerier{}, &stubEmbedder{dimension: VectorDimension}, nil)

		_, err := ix.For(tn).Add(ctx, Draft{Title: "t"})
		if !errors.Is(err, ErrEmptyContent) {
			t.Errorf("Add() error = %v, want ErrEmptyContent", err)
		}
	})

	t.Run("embeds content and inserts with curated weight", func(t *testing.T) {
		embedder := &stubEmbedder{dimension: VectorDimension}
		querier := &mockIndexQuerier{
			insertFunc: func(_ context.Context, arg sqlc.InsertKnowledgeEntryParams) (sqlc.KnowledgeEntry, error) {
				if arg.ConfidenceWeight != CuratedConfidenceWeight {
					t.Errorf("ConfidenceWeight = %v, want %v", arg.ConfidenceWeight, CuratedConfidenceWeight)
				}
				if arg.Category != "leave" {
					t.Errorf("Category = %q, want %q", arg.Category, "leave")
				}
				if arg.Embedding == nil {
					t.Fatal("Embedding is nil")
				}
				return sqlc.KnowledgeEntry{
					ID:               uuidToPgUUID(uuid.New()),
					TenantID:         arg.TenantID,
					Title:            arg.Title,
					Content:          arg.Content,
					Category:         arg.Category,
					ConfidenceWeight: arg.ConfidenceWeight,
					Active:           true,
				}, nil
			},
		}
		ix := NewIndex(querier, embedder, nil)

		entry, err := ix.For(tn).Add(ctx, Draft{
			Title:    "How many vacation days do I get?",
			Content:  "Regular employees accrue 20 days per year.",
			Category: "leave",
		})
		if err != nil {
			t.Fatalf("Add() unexpected error: %v", err)
		}
		if embedder.calls != 1 {
			t.Errorf("embedder calls = %d, want 1", embedder.calls)
		}
		if !entry.Active {
			t.Error("entry should be active")
		}
	})

	t.Run("defaults empty category", func(t *testing.T) {
		querier := &mockIndexQuerier{
			insertFunc: func(_ context.Context, arg sqlc.InsertKnowledgeEntryParams) (sqlc.KnowledgeEntry, error) {
				if arg.Category != DefaultCategory {
					t.Errorf("Category = %q, want %q", arg.Category, DefaultCategory)
				}
				return sqlc.KnowledgeEntry{Category: arg.Category}, nil
			},
		}
		ix := NewIndex(querier, &stubEmbedder{dimension: VectorDimension}, nil)

		if _, err := ix.For(tn).Add(ctx, Draft{Content: "body"}); err != nil {
			t.Fatalf("Add() unexpected error: %v", err)
		}
	})

	t.Run("propagates embedder failure", func(t *testing.T) {
		embedder := &stubEmbedder{err: fmt.Errorf("%w: quota exceeded", ErrEmbeddingUnavailable)}
		ix := NewIndex(&mockIndexQuerier{}, embedder, nil)

		_, err := ix.For(tn).Add(ctx, Draft{Content: "body"})
		if !errors.Is(err, ErrEmbeddingUnavailable) {
			t.Errorf("Add() error = %v, want ErrEmbeddingUnavailable", err)
		}
	})

	t.Run("rejects embedder dimension drift", func(t *testing.T) {
		ix := NewIndex(&mockIndexQuerier{}, &stubEmbedder{dimension: 128}, nil)

		_, err := ix.For(tn).Add(ctx, Draft{Content: "body"})
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("Add() error = %v, want ErrDimensionMismatch", err)
		}
	})
}

func TestTenantIndexDeactivate(t *testing.T) {
	ctx := context.Background()
	tn := testTenant()

	t.Run("not found", func(t *testing.T) {
		querier := &mockIndexQuerier{
			deactivateFunc: func(context.Context, sqlc.DeactivateKnowledgeEntryParams) (int64, error) {
				return 0, nil
			},
		}
		ix := NewIndex(querier, &stubEmbedder{dimension: VectorDimension}, nil)

		err := ix.For(tn).Deactivate(ctx, uuid.New())
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Deactivate() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		querier := &mockIndexQuerier{
			deactivateFunc: func(context.Context, sqlc.DeactivateKnowledgeEntryParams) (int64, error) {
				return 1, nil
			},
		}
		ix := NewIndex(querier, &stubEmbedder{dimension: VectorDimension}, nil)

		if err := ix.For(tn).Deactivate(ctx, uuid.New()); err != nil {
			t.Fatalf("Deactivate() unexpected error: %v", err)
		}
	})
}

func TestTenantIndexGet(t *testing.T) {
	ctx := context.Background()
	tn := testTenant()

	querier := &mockIndexQuerier{
		getFunc: func(context.Context, sqlc.GetKnowledgeEntryParams) (sqlc.KnowledgeEntry, error) {
			return sqlc.KnowledgeEntry{}, pgx.ErrNoRows
		},
	}
	ix := NewIndex(querier, &stubEmbedder{dimension: VectorDimension}, nil)

	_, err := ix.For(tn).Get(ctx, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestTenantIndexQuickQuestions(t *testing.T) {
	ctx := context.Background()
	tn := testTenant()

	title := "How do I claim commuting allowance?"
	querier := &mockIndexQuerier{
		listTopFunc: func(_ context.Context, arg sqlc.ListTopUsedEntriesParams) ([]sqlc.ListTopUsedEntriesRow, error) {
			if arg.ResultLimit != 3 {
				t.Errorf("limit = %d, want 3", arg.ResultLimit)
			}
			return []sqlc.ListTopUsedEntriesRow{
				{ID: uuidToPgUUID(uuid.New()), Title: &title, Content: "Submit form 12.", Category: "commuting", UsageCount: 40},
				{ID: uuidToPgUUID(uuid.New()), Content: "Health insurance enrollment steps.", Category: "insurance", UsageCount: 12},
			}, nil
		},
	}
	ix := NewIndex(querier, &stubEmbedder{dimension: VectorDimension}, nil)

	got, err := ix.For(tn).QuickQuestions(ctx, 3)
	if err != nil {
		t.Fatalf("QuickQuestions() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(questions) = %d, want 2", len(got))
	}
	if got[0].Question != title {
		t.Errorf("question[0] = %q, want title %q", got[0].Question, title)
	}
	// Untitled entries fall back to content.
	if got[1].Question != "Health insurance enrollment steps." {
		t.Errorf("question[1] = %q, want content fallback", got[1].Question)
	}
}

func TestEntryFromRowLastUsed(t *testing.T) {
	used := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	row := sqlc.KnowledgeEntry{
		LastUsedAt: pgtype.Timestamptz{Time: used, Valid: true},
	}
	if got := entryFromRow(row).LastUsedAt; !got.Equal(used) {
		t.Errorf("LastUsedAt = %v, want %v", got, used)
	}

	if got := entryFromRow(sqlc.KnowledgeEntry{}).LastUsedAt; !got.IsZero() {
		t.Errorf("LastUsedAt = %v, want zero for never-used entry", got)
	}
}
