package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beneflow/beneflow/internal/escalation"
	"github.com/beneflow/beneflow/internal/tenant"
)

// TenantResolver resolves a raw namespace to a registered tenant.
type TenantResolver interface {
	Resolve(ctx context.Context, rawNamespace string) (tenant.Tenant, error)
}

// EscalationLedger is the subset of the escalation ledger the handler needs.
type EscalationLedger interface {
	List(ctx context.Context, tn tenant.Tenant, status escalation.Status, limit, offset int) ([]escalation.Escalation, error)
	Get(ctx context.Context, tn tenant.Tenant, id uuid.UUID) (escalation.Escalation, error)
	Resolve(ctx context.Context, tn tenant.Tenant, id uuid.UUID, resolutionText, resolverID string, foldIntoKnowledge bool) (escalation.Escalation, error)
	Dismiss(ctx context.Context, tn tenant.Tenant, id uuid.UUID, resolverID string) (escalation.Escalation, error)
	Reopen(ctx context.Context, tn tenant.Tenant, id uuid.UUID) (escalation.Escalation, error)
}

// EscalationsConfig contains dependencies for the Escalations handler.
type EscalationsConfig struct {
	Logger   *slog.Logger
	Resolver TenantResolver
	Ledger   EscalationLedger
}

// Escalations handles the human review queue.
type Escalations struct {
	logger   *slog.Logger
	resolver TenantResolver
	ledger   EscalationLedger
}

// NewEscalations creates an Escalations handler.
func NewEscalations(cfg EscalationsConfig) *Escalations {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Escalations{
		logger:   logger,
		resolver: cfg.Resolver,
		ledger:   cfg.Ledger,
	}
}

// RegisterRoutes registers escalation routes on the given mux.
func (h *Escalations) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/{tenant}/escalations", h.List)
	mux.HandleFunc("GET /api/{tenant}/escalations/{id}", h.Get)
	mux.HandleFunc("POST /api/{tenant}/escalations/{id}/resolve", h.Resolve)
	mux.HandleFunc("POST /api/{tenant}/escalations/{id}/dismiss", h.Dismiss)
	mux.HandleFunc("POST /api/{tenant}/escalations/{id}/reopen", h.Reopen)
}

type escalationResponse struct {
	ID                   string   `json:"id"`
	SessionRef           string   `json:"session_ref,omitempty"`
	Query                string   `json:"query"`
	GeneratedAnswer      string   `json:"generated_answer,omitempty"`
	GenerationConfidence *float64 `json:"generation_confidence,omitempty"`
	Status               string   `json:"status"`
	ResolutionText       string   `json:"resolution_text,omitempty"`
	ResolverID           string   `json:"resolver_id,omitempty"`
	ResolvedAt           string   `json:"resolved_at,omitempty"`
	FoldedIntoKnowledge  bool     `json:"folded_into_knowledge"`
	CreatedAt            string   `json:"created_at"`
}

func toEscalationResponse(e escalation.Escalation) escalationResponse {
	resp := escalationResponse{
		ID:                   e.ID.String(),
		SessionRef:           e.SessionRef,
		Query:                e.Query,
		GeneratedAnswer:      e.GeneratedAnswer,
		GenerationConfidence: e.GenerationConfidence,
		Status:               string(e.Status),
		ResolutionText:       e.ResolutionText,
		ResolverID:           e.ResolverID,
		FoldedIntoKnowledge:  e.FoldedIntoKnowledge,
		CreatedAt:            e.CreatedAt.Format(time.RFC3339),
	}
	if !e.ResolvedAt.IsZero() {
		resp.ResolvedAt = e.ResolvedAt.Format(time.RFC3339)
	}
	return resp
}

// List handles GET /api/{tenant}/escalations.
// Query params: status (default pending), limit, offset.
func (h *Escalations) List(w http.ResponseWriter, r *http.Request) {
	tn, err := h.resolver.Resolve(r.Context(), r.PathValue("tenant"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	rawStatus := r.URL.Query().Get("status")
	if rawStatus == "" {
		rawStatus = string(escalation.StatusPending)
	}
	status, err := escalation.ParseStatus(rawStatus)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	list, err := h.ledger.List(r.Context(), tn, status, limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]escalationResponse, len(list))
	for i, e := range list {
		out[i] = toEscalationResponse(e)
	}
	writeJSON(w, h.logger, http.StatusOK, out)
}

// Get handles GET /api/{tenant}/escalations/{id}.
func (h *Escalations) Get(w http.ResponseWriter, r *http.Request) {
	tn, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	e, err := h.ledger.Get(r.Context(), tn, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toEscalationResponse(e))
}

type resolveRequest struct {
	ResolutionText    string `json:"resolution_text"`
	FoldIntoKnowledge bool   `json:"fold_into_knowledge"`
}

// Resolve handles POST /api/{tenant}/escalations/{id}/resolve. The resolver
// identity is taken from the X-Resolver-ID header set by the fronting layer.
func (h *Escalations) Resolve(w http.ResponseWriter, r *http.Request) {
	tn, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req resolveRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, h.logger, err.Error())
		return
	}

	e, err := h.ledger.Resolve(r.Context(), tn, id, req.ResolutionText, resolverID(r), req.FoldIntoKnowledge)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toEscalationResponse(e))
}

// Dismiss handles POST /api/{tenant}/escalations/{id}/dismiss.
func (h *Escalations) Dismiss(w http.ResponseWriter, r *http.Request) {
	tn, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	e, err := h.ledger.Dismiss(r.Context(), tn, id, resolverID(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toEscalationResponse(e))
}

// Reopen handles POST /api/{tenant}/escalations/{id}/reopen.
func (h *Escalations) Reopen(w http.ResponseWriter, r *http.Request) {
	tn, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	e, err := h.ledger.Reopen(r.Context(), tn, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toEscalationResponse(e))
}

// scope resolves the tenant and escalation id path segments, writing the
// error response itself when either is invalid.
func (h *Escalations) scope(w http.ResponseWriter, r *http.Request) (tenant.Tenant, uuid.UUID, bool) {
	tn, err := h.resolver.Resolve(r.Context(), r.PathValue("tenant"))
	if err != nil {
		writeError(w, h.logger, err)
		return tenant.Tenant{}, uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		badRequest(w, h.logger, "invalid escalation id")
		return tenant.Tenant{}, uuid.Nil, false
	}
	return tn, id, true
}

func resolverID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Resolver-ID"))
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
