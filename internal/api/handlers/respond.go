// Package handlers contains the HTTP handlers for the beneflow API.
//
// The API trusts its caller: authentication and authorization happen in
// front of this service, and resolver identity arrives in the X-Resolver-ID
// header. Handlers validate shape, not identity.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/beneflow/beneflow/internal/escalation"
	"github.com/beneflow/beneflow/internal/knowledge"
	"github.com/beneflow/beneflow/internal/tenant"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON marshals v with the given status. Encoding failures are logged;
// by then the status line is already written, so the body is best effort.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("response encoding failed", "error", err)
	}
}

// writeError maps a domain error to an HTTP status and writes the JSON
// error body. Unrecognized errors become 500 with a generic message so
// internals never leak to callers.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", "error", err)
		}
		msg = "internal error"
	}
	writeJSON(w, logger, status, errorResponse{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tenant.ErrInvalidNamespace):
		return http.StatusNotFound
	case errors.Is(err, escalation.ErrNotFound),
		errors.Is(err, knowledge.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tenant.ErrNamespaceTaken):
		return http.StatusConflict
	case errors.Is(err, escalation.ErrInvalidTransition),
		errors.Is(err, knowledge.ErrAlreadyFolded),
		errors.Is(err, knowledge.ErrNotFoldable):
		return http.StatusConflict
	case errors.Is(err, escalation.ErrResolutionRequired),
		errors.Is(err, escalation.ErrInvalidStatus),
		errors.Is(err, knowledge.ErrEmptyContent),
		errors.Is(err, tenant.ErrThresholdOutOfRange),
		errors.Is(err, tenant.ErrTopKOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, knowledge.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// badRequest writes a 400 with the given message.
func badRequest(w http.ResponseWriter, logger *slog.Logger, msg string) {
	writeJSON(w, logger, http.StatusBadRequest, errorResponse{Error: msg})
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}
