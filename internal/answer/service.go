// Package answer orchestrates one question through the pipeline: resolve
// the tenant, retrieve grounding candidates, generate an answer, gate it on
// confidence, and either respond with usage telemetry or escalate to a
// human.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/beneflow/beneflow/internal/escalation"
	"github.com/beneflow/beneflow/internal/knowledge"
	"github.com/beneflow/beneflow/internal/retrieval"
	"github.com/beneflow/beneflow/internal/tenant"
)

// Registry resolves a raw namespace to a tenant.
type Registry interface {
	Resolve(ctx context.Context, rawNamespace string) (tenant.Tenant, error)
}

// Retriever returns a tenant's matching candidates for a query.
type Retriever interface {
	Retrieve(ctx context.Context, tn tenant.Tenant, queryText string) ([]knowledge.Candidate, error)
}

// Tracker records which entries answered a query.
type Tracker interface {
	Touch(ctx context.Context, tn tenant.Tenant, ids []uuid.UUID) error
}

// Ledger records escalated queries.
type Ledger interface {
	Create(ctx context.Context, tn tenant.Tenant, query string, snap escalation.GenerationSnapshot) (escalation.Escalation, error)
}

// Result is the outcome of one question.
type Result struct {
	Decision   retrieval.Decision
	Answer     string
	Confidence *float64
	Candidates []knowledge.Candidate

	// Escalation is set when Decision is Escalate.
	Escalation *escalation.Escalation
}

// Service runs the answer pipeline. It holds no per-request state, so
// arbitrary request fan-out is safe.
type Service struct {
	registry  Registry
	retriever Retriever
	generator Generator
	tracker   Tracker
	ledger    Ledger
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewService wires the pipeline together.
func NewService(registry Registry, retriever Retriever, generator Generator, tracker Tracker, ledger Ledger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry:  registry,
		retriever: retriever,
		generator: generator,
		tracker:   tracker,
		ledger:    ledger,
		logger:    logger.With("component", "answer.service"),
		tracer:    otel.Tracer("beneflow/answer"),
	}
}

// Ask answers one question for one tenant.
//
// Input errors (unknown namespace, malformed config) surface to the caller.
// Dependency errors follow the fail-toward-escalation policy: when the
// embedder or the generation service is unavailable the question becomes an
// escalation instead of a visible failure, so the user experience degrades
// to "a human will follow up". Usage telemetry failures are logged and never
// fail the answer.
func (s *Service) Ask(ctx context.Context, rawNamespace, queryText, sessionRef string) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "answer.ask")
	defer span.End()

	tn, err := s.registry.Resolve(ctx, rawNamespace)
	if err != nil {
		return Result{}, err
	}
	span.SetAttributes(attribute.String("tenant.namespace", tn.Namespace.String()))

	candidates, err := s.retrieve(ctx, tn, queryText)
	if err != nil {
		if errors.Is(err, knowledge.ErrEmbeddingUnavailable) {
			s.logger.WarnContext(ctx, "embedding unavailable, escalating",
				"namespace", tn.Namespace.String(), "error", err)
			return s.escalate(ctx, tn, queryText, escalation.GenerationSnapshot{SessionRef: sessionRef})
		}
		return Result{}, err
	}

	var (
		generated  string
		confidence *float64
	)
	if len(candidates) > 0 {
		generated, confidence, err = s.generator.Generate(ctx, queryText, candidates)
		if err != nil {
			s.logger.WarnContext(ctx, "generation unavailable, escalating",
				"namespace", tn.Namespace.String(), "error", err)
			return s.escalate(ctx, tn, queryText, escalation.GenerationSnapshot{SessionRef: sessionRef})
		}
	}

	decision := s.decide(ctx, candidates, confidence, tn.Config)
	span.SetAttributes(attribute.String("answer.decision", decision.String()))

	if decision.ShouldEscalate() {
		return s.escalate(ctx, tn, queryText, escalation.GenerationSnapshot{
			SessionRef: sessionRef,
			Answer:     generated,
			Confidence: confidence,
		})
	}

	// Best-effort telemetry: a touch failure is logged and the answer
	// still returns.
	ids := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	if err := s.tracker.Touch(ctx, tn, ids); err != nil {
		s.logger.WarnContext(ctx, "usage touch failed",
			"namespace", tn.Namespace.String(), "error", err)
	}

	return Result{
		Decision:   decision,
		Answer:     generated,
		Confidence: confidence,
		Candidates: candidates,
	}, nil
}

func (s *Service) retrieve(ctx context.Context, tn tenant.Tenant, queryText string) ([]knowledge.Candidate, error) {
	ctx, span := s.tracer.Start(ctx, "answer.retrieve")
	defer span.End()

	candidates, err := s.retriever.Retrieve(ctx, tn, queryText)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("retrieval.candidates", len(candidates)))
	return candidates, nil
}

func (s *Service) decide(ctx context.Context, candidates []knowledge.Candidate, confidence *float64, cfg tenant.RetrievalConfig) retrieval.Decision {
	_, span := s.tracer.Start(ctx, "answer.decide")
	defer span.End()

	return retrieval.Decide(candidates, confidence, cfg)
}

func (s *Service) escalate(ctx context.Context, tn tenant.Tenant, queryText string, snap escalation.GenerationSnapshot) (Result, error) {
	esc, err := s.ledger.Create(ctx, tn, queryText, snap)
	if err != nil {
		return Result{}, fmt.Errorf("failed to escalate query: %w", err)
	}
	return Result{
		Decision:   retrieval.Escalate,
		Confidence: snap.Confidence,
		Escalation: &esc,
	}, nil
}
