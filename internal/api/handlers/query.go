package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/beneflow/beneflow/internal/answer"
	"github.com/beneflow/beneflow/internal/knowledge"
)

// Answerer runs the answer pipeline for one question.
type Answerer interface {
	Ask(ctx context.Context, rawNamespace, queryText, sessionRef string) (answer.Result, error)
}

// QueryConfig contains dependencies for the Query handler.
type QueryConfig struct {
	Logger   *slog.Logger
	Answerer Answerer
}

// Query handles question submission.
type Query struct {
	logger   *slog.Logger
	answerer Answerer
}

// NewQuery creates a Query handler.
func NewQuery(cfg QueryConfig) *Query {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Query{
		logger:   logger,
		answerer: cfg.Answerer,
	}
}

// RegisterRoutes registers query routes on the given mux.
func (q *Query) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/{tenant}/query", q.Ask)
}

type queryRequest struct {
	Query      string `json:"query"`
	SessionRef string `json:"session_ref,omitempty"`
}

type candidateResponse struct {
	ID         string  `json:"id"`
	Title      string  `json:"title,omitempty"`
	Content    string  `json:"content"`
	Category   string  `json:"category"`
	Similarity float64 `json:"similarity"`
	Rank       int     `json:"rank"`
}

type queryResponse struct {
	Decision     string              `json:"decision"`
	Answer       string              `json:"answer,omitempty"`
	Confidence   *float64            `json:"confidence,omitempty"`
	Candidates   []candidateResponse `json:"candidates"`
	EscalationID string              `json:"escalation_id,omitempty"`
}

// Ask handles POST /api/{tenant}/query.
func (q *Query) Ask(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, q.logger, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		badRequest(w, q.logger, "query is required")
		return
	}

	result, err := q.answerer.Ask(r.Context(), r.PathValue("tenant"), req.Query, req.SessionRef)
	if err != nil {
		writeError(w, q.logger, err)
		return
	}

	resp := queryResponse{
		Decision:   result.Decision.String(),
		Answer:     result.Answer,
		Confidence: result.Confidence,
		Candidates: toCandidateResponses(result.Candidates),
	}
	if result.Escalation != nil {
		resp.EscalationID = result.Escalation.ID.String()
	}
	writeJSON(w, q.logger, http.StatusOK, resp)
}

func toCandidateResponses(candidates []knowledge.Candidate) []candidateResponse {
	out := make([]candidateResponse, len(candidates))
	for i, c := range candidates {
		out[i] = candidateResponse{
			ID:         c.ID.String(),
			Title:      c.Title,
			Content:    c.Content,
			Category:   c.Category,
			Similarity: c.Similarity,
			Rank:       c.Rank,
		}
	}
	return out
}
