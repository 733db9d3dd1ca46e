package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/beneflow/beneflow/internal/knowledge"
	"github.com/beneflow/beneflow/internal/sqlc"
)

type mockKnowledgeQuerier struct {
	searchFunc     func(arg sqlc.SearchKnowledgeEntriesParams) ([]sqlc.SearchKnowledgeEntriesRow, error)
	insertFunc     func(arg sqlc.InsertKnowledgeEntryParams) (sqlc.KnowledgeEntry, error)
	updateFunc     func(arg sqlc.UpdateKnowledgeEntryParams) (sqlc.KnowledgeEntry, error)
	deactivateFunc func(arg sqlc.DeactivateKnowledgeEntryParams) (int64, error)
	getFunc        func(arg sqlc.GetKnowledgeEntryParams) (sqlc.KnowledgeEntry, error)
	topUsedFunc    func(arg sqlc.ListTopUsedEntriesParams) ([]sqlc.ListTopUsedEntriesRow, error)
	countFunc      func(tenantID pgtype.UUID) (int64, error)
}

func (m *mockKnowledgeQuerier) SearchKnowledgeEntries(_ context.Context, arg sqlc.SearchKnowledgeEntriesParams) ([]sqlc.SearchKnowledgeEntriesRow, error) {
	return m.searchFunc(arg)
}

func (m *mockKnowledgeQuerier) InsertKnowledgeEntry(_ context.Context, arg sqlc.InsertKnowledgeEntryParams) (sqlc.KnowledgeEntry, error) {
	return m.insertFunc(arg)
}

func (m *mockKnowledgeQuerier) UpdateKnowledgeEntry(_ context.Context, arg sqlc.UpdateKnowledgeEntryParams) (sqlc.KnowledgeEntry, error) {
	return m.updateFunc(arg)
}

func (m *mockKnowledgeQuerier) DeactivateKnowledgeEntry(_ context.Context, arg sqlc.DeactivateKnowledgeEntryParams) (int64, error) {
	return m.deactivateFunc(arg)
}

func (m *mockKnowledgeQuerier) GetKnowledgeEntry(_ context.Context, arg sqlc.GetKnowledgeEntryParams) (sqlc.KnowledgeEntry, error) {
	return m.getFunc(arg)
}

func (m *mockKnowledgeQuerier) ListTopUsedEntries(_ context.Context, arg sqlc.ListTopUsedEntriesParams) ([]sqlc.ListTopUsedEntriesRow, error) {
	return m.topUsedFunc(arg)
}

func (m *mockKnowledgeQuerier) CountActiveEntries(_ context.Context, tenantID pgtype.UUID) (int64, error) {
	return m.countFunc(tenantID)
}

// stubEmbedder returns a zero vector of the configured dimension.
type stubEmbedder struct {
	dimension int
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return make([]float32, s.dimension), nil
}

func newKnowledgeMux(q knowledge.Querier) *http.ServeMux {
	mux := http.NewServeMux()
	NewKnowledge(KnowledgeConfig{
		Resolver: &stubResolver{tn: testTenant()},
		Index:    knowledge.NewIndex(q, &stubEmbedder{dimension: knowledge.VectorDimension}, nil),
	}).RegisterRoutes(mux)
	return mux
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func TestKnowledge_QuickQuestions(t *testing.T) {
	entryID := uuid.MustParse("66666666-6666-6666-6666-666666666666")
	title := "How do I apply for parental leave?"
	q := &mockKnowledgeQuerier{
		topUsedFunc: func(arg sqlc.ListTopUsedEntriesParams) ([]sqlc.ListTopUsedEntriesRow, error) {
			if arg.TenantID != pgUUID(testTenant().ID) {
				t.Errorf("tenant id = %v, want %v", arg.TenantID, testTenant().ID)
			}
			return []sqlc.ListTopUsedEntriesRow{
				{ID: pgUUID(entryID), Title: &title, Content: "Parental leave works like this.", Category: "leave", UsageCount: 42},
			}, nil
		},
	}
	mux := newKnowledgeMux(q)

	req := httptest.NewRequest(http.MethodGet, "/api/acme/quick-questions", http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp []quickQuestionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Question != title || resp[0].UsageCount != 42 {
		t.Errorf("response = %+v", resp)
	}
}

func TestKnowledge_Create(t *testing.T) {
	created := uuid.MustParse("77777777-7777-7777-7777-777777777777")
	q := &mockKnowledgeQuerier{
		insertFunc: func(arg sqlc.InsertKnowledgeEntryParams) (sqlc.KnowledgeEntry, error) {
			if arg.ConfidenceWeight != knowledge.CuratedConfidenceWeight {
				t.Errorf("confidence weight = %v, want %v", arg.ConfidenceWeight, knowledge.CuratedConfidenceWeight)
			}
			return sqlc.KnowledgeEntry{
				ID:               pgUUID(created),
				TenantID:         arg.TenantID,
				Title:            arg.Title,
				Content:          arg.Content,
				Category:         arg.Category,
				ConfidenceWeight: arg.ConfidenceWeight,
				Active:           true,
			}, nil
		},
	}
	mux := newKnowledgeMux(q)

	req := httptest.NewRequest(http.MethodPost, "/api/acme/entries",
		strings.NewReader(`{"title":"Annual leave","content":"12 days plus seniority.","category":"leave"}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var resp entryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != created.String() || !resp.Active {
		t.Errorf("response = %+v", resp)
	}
}

func TestKnowledge_Create_EmptyContent(t *testing.T) {
	mux := newKnowledgeMux(&mockKnowledgeQuerier{})

	req := httptest.NewRequest(http.MethodPost, "/api/acme/entries",
		strings.NewReader(`{"content":"   "}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestKnowledge_Deactivate(t *testing.T) {
	const id = "77777777-7777-7777-7777-777777777777"

	t.Run("deactivates", func(t *testing.T) {
		q := &mockKnowledgeQuerier{
			deactivateFunc: func(arg sqlc.DeactivateKnowledgeEntryParams) (int64, error) { return 1, nil },
		}
		mux := newKnowledgeMux(q)

		req := httptest.NewRequest(http.MethodDelete, "/api/acme/entries/"+id, http.NoBody)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
		}
	})

	t.Run("missing entry", func(t *testing.T) {
		q := &mockKnowledgeQuerier{
			deactivateFunc: func(arg sqlc.DeactivateKnowledgeEntryParams) (int64, error) { return 0, nil },
		}
		mux := newKnowledgeMux(q)

		req := httptest.NewRequest(http.MethodDelete, "/api/acme/entries/"+id, http.NoBody)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}
