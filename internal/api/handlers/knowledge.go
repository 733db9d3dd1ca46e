package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/beneflow/beneflow/internal/knowledge"
	"github.com/beneflow/beneflow/internal/tenant"
)

// KnowledgeConfig contains dependencies for the Knowledge handler.
type KnowledgeConfig struct {
	Logger   *slog.Logger
	Resolver TenantResolver
	Index    *knowledge.Index
}

// Knowledge handles curated entry authoring and quick questions.
type Knowledge struct {
	logger   *slog.Logger
	resolver TenantResolver
	index    *knowledge.Index
}

// NewKnowledge creates a Knowledge handler.
func NewKnowledge(cfg KnowledgeConfig) *Knowledge {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Knowledge{
		logger:   logger,
		resolver: cfg.Resolver,
		index:    cfg.Index,
	}
}

// RegisterRoutes registers knowledge routes on the given mux.
func (h *Knowledge) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/{tenant}/quick-questions", h.QuickQuestions)
	mux.HandleFunc("POST /api/{tenant}/entries", h.Create)
	mux.HandleFunc("GET /api/{tenant}/entries/{id}", h.Get)
	mux.HandleFunc("PUT /api/{tenant}/entries/{id}", h.Update)
	mux.HandleFunc("DELETE /api/{tenant}/entries/{id}", h.Deactivate)
}

type entryRequest struct {
	Title       string `json:"title,omitempty"`
	Content     string `json:"content"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	SourceRef   string `json:"source_ref,omitempty"`
}

func (req entryRequest) draft() knowledge.Draft {
	return knowledge.Draft{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		SourceRef:   req.SourceRef,
	}
}

type entryResponse struct {
	ID               string  `json:"id"`
	Title            string  `json:"title,omitempty"`
	Content          string  `json:"content"`
	Category         string  `json:"category"`
	Subcategory      string  `json:"subcategory,omitempty"`
	SourceRef        string  `json:"source_ref,omitempty"`
	ConfidenceWeight float64 `json:"confidence_weight"`
	UsageCount       int64   `json:"usage_count"`
	Active           bool    `json:"active"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func toEntryResponse(e knowledge.Entry) entryResponse {
	return entryResponse{
		ID:               e.ID.String(),
		Title:            e.Title,
		Content:          e.Content,
		Category:         e.Category,
		Subcategory:      e.Subcategory,
		SourceRef:        e.SourceRef,
		ConfidenceWeight: e.ConfidenceWeight,
		UsageCount:       e.UsageCount,
		Active:           e.Active,
		CreatedAt:        e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        e.UpdatedAt.Format(time.RFC3339),
	}
}

type quickQuestionResponse struct {
	EntryID    string `json:"entry_id"`
	Question   string `json:"question"`
	Category   string `json:"category"`
	UsageCount int64  `json:"usage_count"`
}

// QuickQuestions handles GET /api/{tenant}/quick-questions.
// Returns the tenant's most-used active entries as suggested starters.
func (h *Knowledge) QuickQuestions(w http.ResponseWriter, r *http.Request) {
	tn, err := h.resolver.Resolve(r.Context(), r.PathValue("tenant"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	questions, err := h.index.For(tn).QuickQuestions(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]quickQuestionResponse, len(questions))
	for i, q := range questions {
		out[i] = quickQuestionResponse{
			EntryID:    q.EntryID.String(),
			Question:   q.Question,
			Category:   q.Category,
			UsageCount: q.UsageCount,
		}
	}
	writeJSON(w, h.logger, http.StatusOK, out)
}

// Create handles POST /api/{tenant}/entries.
func (h *Knowledge) Create(w http.ResponseWriter, r *http.Request) {
	tn, err := h.resolver.Resolve(r.Context(), r.PathValue("tenant"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req entryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, h.logger, err.Error())
		return
	}

	entry, err := h.index.For(tn).Add(r.Context(), req.draft())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, toEntryResponse(entry))
}

// Get handles GET /api/{tenant}/entries/{id}.
func (h *Knowledge) Get(w http.ResponseWriter, r *http.Request) {
	tn, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	entry, err := h.index.For(tn).Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toEntryResponse(entry))
}

// Update handles PUT /api/{tenant}/entries/{id}. Content changes re-embed.
func (h *Knowledge) Update(w http.ResponseWriter, r *http.Request) {
	tn, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req entryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, h.logger, err.Error())
		return
	}

	entry, err := h.index.For(tn).Update(r.Context(), id, req.draft())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toEntryResponse(entry))
}

// Deactivate handles DELETE /api/{tenant}/entries/{id}. Entries are never
// hard-deleted; deactivation removes them from retrieval.
func (h *Knowledge) Deactivate(w http.ResponseWriter, r *http.Request) {
	tn, id, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := h.index.For(tn).Deactivate(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Knowledge) scope(w http.ResponseWriter, r *http.Request) (tenant.Tenant, uuid.UUID, bool) {
	tn, err := h.resolver.Resolve(r.Context(), r.PathValue("tenant"))
	if err != nil {
		writeError(w, h.logger, err)
		return tenant.Tenant{}, uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		badRequest(w, h.logger, "invalid entry id")
		return tenant.Tenant{}, uuid.Nil, false
	}
	return tn, id, true
}
