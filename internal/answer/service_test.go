package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/beneflow/beneflow/internal/escalation"
	"github.com/beneflow/beneflow/internal/knowledge"
	"github.com/beneflow/beneflow/internal/retrieval"
	"github.com/beneflow/beneflow/internal/tenant"
)

type stubRegistry struct {
	tenant tenant.Tenant
	err    error
}

func (s *stubRegistry) Resolve(context.Context, string) (tenant.Tenant, error) {
	return s.tenant, s.err
}

type stubRetriever struct {
	candidates []knowledge.Candidate
	err        error
}

func (s *stubRetriever) Retrieve(context.Context, tenant.Tenant, string) ([]knowledge.Candidate, error) {
	return s.candidates, s.err
}

type stubGenerator struct {
	answer     string
	confidence *float64
	err        error
	calls      int
}

func (s *stubGenerator) Generate(context.Context, string, []knowledge.Candidate) (string, *float64, error) {
	s.calls++
	return s.answer, s.confidence, s.err
}

type stubTracker struct {
	err    error
	gotIDs []uuid.UUID
}

func (s *stubTracker) Touch(_ context.Context, _ tenant.Tenant, ids []uuid.UUID) error {
	s.gotIDs = ids
	return s.err
}

type stubLedger struct {
	err     error
	created []escalation.GenerationSnapshot
}

func (s *stubLedger) Create(_ context.Context, tn tenant.Tenant, query string, snap escalation.GenerationSnapshot) (escalation.Escalation, error) {
	s.created = append(s.created, snap)
	if s.err != nil {
		return escalation.Escalation{}, s.err
	}
	return escalation.Escalation{
		ID:       uuid.New(),
		TenantID: tn.ID,
		Query:    query,
		Status:   escalation.StatusPending,
	}, nil
}

func confidence(v float64) *float64 { return &v }

func testTenant() tenant.Tenant {
	return tenant.Tenant{
		ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Namespace: "acme",
		Config:    tenant.DefaultRetrievalConfig(),
	}
}

func candidates() []knowledge.Candidate {
	return []knowledge.Candidate{
		{ID: uuid.New(), Content: "20 days per year.", Similarity: 0.92, Rank: 1},
		{ID: uuid.New(), Content: "Carry-over rules.", Similarity: 0.85, Rank: 2},
	}
}

func TestServiceAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("auto-answers with confident generation and touches usage", func(t *testing.T) {
		cands := candidates()
		tracker := &stubTracker{}
		ledger := &stubLedger{}
		svc := NewService(
			&stubRegistry{tenant: testTenant()},
			&stubRetriever{candidates: cands},
			&stubGenerator{answer: "You get 20 days.", confidence: confidence(0.9)},
			tracker,
			ledger,
			nil,
		)

		res, err := svc.Ask(ctx, "acme", "how many vacation days", "session-1")
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if res.Decision != retrieval.AutoAnswer {
			t.Errorf("Decision = %v, want AutoAnswer", res.Decision)
		}
		if res.Answer != "You get 20 days." {
			t.Errorf("Answer = %q", res.Answer)
		}
		if len(tracker.gotIDs) != 2 {
			t.Errorf("touched ids = %d, want 2", len(tracker.gotIDs))
		}
		if tracker.gotIDs[0] != cands[0].ID {
			t.Errorf("touched id[0] = %s, want %s", tracker.gotIDs[0], cands[0].ID)
		}
		if len(ledger.created) != 0 {
			t.Error("no escalation may be created on auto-answer")
		}
	})

	t.Run("no candidates escalates without generating", func(t *testing.T) {
		generator := &stubGenerator{}
		ledger := &stubLedger{}
		svc := NewService(
			&stubRegistry{tenant: testTenant()},
			&stubRetriever{candidates: nil},
			generator,
			&stubTracker{},
			ledger,
			nil,
		)

		res, err := svc.Ask(ctx, "acme", "an unanswerable question", "")
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if res.Decision != retrieval.Escalate {
			t.Errorf("Decision = %v, want Escalate", res.Decision)
		}
		if res.Escalation == nil {
			t.Fatal("Escalation is nil")
		}
		if generator.calls != 0 {
			t.Errorf("generator calls = %d, want 0 with no grounding context", generator.calls)
		}
	})

	t.Run("low generation confidence escalates with snapshot", func(t *testing.T) {
		ledger := &stubLedger{}
		svc := NewService(
			&stubRegistry{tenant: testTenant()},
			&stubRetriever{candidates: candidates()},
			&stubGenerator{answer: "I think 20?", confidence: confidence(0.2)},
			&stubTracker{},
			ledger,
			nil,
		)

		res, err := svc.Ask(ctx, "acme", "vacation days", "session-9")
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if res.Decision != retrieval.Escalate {
			t.Errorf("Decision = %v, want Escalate", res.Decision)
		}
		if len(ledger.created) != 1 {
			t.Fatalf("escalations created = %d, want 1", len(ledger.created))
		}
		snap := ledger.created[0]
		if snap.Answer != "I think 20?" {
			t.Errorf("snapshot answer = %q, want the generated draft", snap.Answer)
		}
		if snap.Confidence == nil || *snap.Confidence != 0.2 {
			t.Errorf("snapshot confidence = %v, want 0.2", snap.Confidence)
		}
		if snap.SessionRef != "session-9" {
			t.Errorf("snapshot session = %q", snap.SessionRef)
		}
	})

	t.Run("absent confidence auto-answers low confidence", func(t *testing.T) {
		svc := NewService(
			&stubRegistry{tenant: testTenant()},
			&stubRetriever{candidates: candidates()},
			&stubGenerator{answer: "20 days."},
			&stubTracker{},
			&stubLedger{},
			nil,
		)

		res, err := svc.Ask(ctx, "acme", "vacation days", "")
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if res.Decision != retrieval.AutoAnswerLowConfidence {
			t.Errorf("Decision = %v, want AutoAnswerLowConfidence", res.Decision)
		}
	})

	t.Run("embedding outage fails toward escalation", func(t *testing.T) {
		ledger := &stubLedger{}
		svc := NewService(
			&stubRegistry{tenant: testTenant()},
			&stubRetriever{err: knowledge.ErrEmbeddingUnavailable},
			&stubGenerator{},
			&stubTracker{},
			ledger,
			nil,
		)

		res, err := svc.Ask(ctx, "acme", "vacation days", "")
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if res.Decision != retrieval.Escalate {
			t.Errorf("Decision = %v, want Escalate", res.Decision)
		}
		if len(ledger.created) != 1 {
			t.Errorf("escalations created = %d, want 1", len(ledger.created))
		}
	})

	t.Run("generation outage fails toward escalation", func(t *testing.T) {
		ledger := &stubLedger{}
		svc := NewService(
			&stubRegistry{tenant: testTenant()},
			&stubRetriever{candidates: candidates()},
			&stubGenerator{err: errors.New("model unavailable")},
			&stubTracker{},
			ledger,
			nil,
		)

		res, err := svc.Ask(ctx, "acme", "vacation days", "")
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if res.Decision != retrieval.Escalate {
			t.Errorf("Decision = %v, want Escalate", res.Decision)
		}
		if len(ledger.created) != 1 {
			t.Errorf("escalations created = %d, want 1", len(ledger.created))
		}
	})

	t.Run("unknown namespace surfaces as input error", func(t *testing.T) {
		ledger := &stubLedger{}
		svc := NewService(
			&stubRegistry{err: tenant.ErrInvalidNamespace},
			&stubRetriever{},
			&stubGenerator{},
			&stubTracker{},
			ledger,
			nil,
		)

		_, err := svc.Ask(ctx, "ghost", "query", "")
		if !errors.Is(err, tenant.ErrInvalidNamespace) {
			t.Errorf("Ask() error = %v, want ErrInvalidNamespace", err)
		}
		if len(ledger.created) != 0 {
			t.Error("input errors must not create escalations")
		}
	})

	t.Run("touch failure does not fail the answer", func(t *testing.T) {
		svc := NewService(
			&stubRegistry{tenant: testTenant()},
			&stubRetriever{candidates: candidates()},
			&stubGenerator{answer: "20 days.", confidence: confidence(0.9)},
			&stubTracker{err: errors.New("store unavailable")},
			&stubLedger{},
			nil,
		)

		res, err := svc.Ask(ctx, "acme", "vacation days", "")
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if res.Decision != retrieval.AutoAnswer {
			t.Errorf("Decision = %v, want AutoAnswer", res.Decision)
		}
	})

	t.Run("escalation store failure surfaces", func(t *testing.T) {
		svc := NewService(
			&stubRegistry{tenant: testTenant()},
			&stubRetriever{candidates: nil},
			&stubGenerator{},
			&stubTracker{},
			&stubLedger{err: errors.New("insert failed")},
			nil,
		)

		if _, err := svc.Ask(ctx, "acme", "query", ""); err == nil {
			t.Fatal("Ask() expected error, got nil")
		}
	})
}
