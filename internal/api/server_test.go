package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/beneflow/beneflow/internal/answer"
	"github.com/beneflow/beneflow/internal/escalation"
	"github.com/beneflow/beneflow/internal/tenant"
)

type noopAnswerer struct{}

func (noopAnswerer) Ask(context.Context, string, string, string) (answer.Result, error) {
	return answer.Result{}, nil
}

type noopResolver struct{}

func (noopResolver) Resolve(context.Context, string) (tenant.Tenant, error) {
	return tenant.Tenant{}, tenant.ErrInvalidNamespace
}

type noopLedger struct{}

func (noopLedger) List(context.Context, tenant.Tenant, escalation.Status, int, int) ([]escalation.Escalation, error) {
	return nil, nil
}

func (noopLedger) Get(context.Context, tenant.Tenant, uuid.UUID) (escalation.Escalation, error) {
	return escalation.Escalation{}, escalation.ErrNotFound
}

func (noopLedger) Resolve(context.Context, tenant.Tenant, uuid.UUID, string, string, bool) (escalation.Escalation, error) {
	return escalation.Escalation{}, escalation.ErrNotFound
}

func (noopLedger) Dismiss(context.Context, tenant.Tenant, uuid.UUID, string) (escalation.Escalation, error) {
	return escalation.Escalation{}, escalation.ErrNotFound
}

func (noopLedger) Reopen(context.Context, tenant.Tenant, uuid.UUID) (escalation.Escalation, error) {
	return escalation.Escalation{}, escalation.ErrNotFound
}

func newTestServer() *Server {
	return NewServer(ServerConfig{
		Answerer: noopAnswerer{},
		Resolver: noopResolver{},
		Ledger:   noopLedger{},
	})
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "health probe", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "ready probe", method: http.MethodGet, path: "/ready", want: http.StatusOK},
		{name: "unknown tenant escalations", method: http.MethodGet, path: "/api/nope/escalations", want: http.StatusNotFound},
		{name: "unknown route", method: http.MethodGet, path: "/api", want: http.StatusNotFound},
		{name: "query wrong method", method: http.MethodGet, path: "/api/acme/query", want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, w.Code, tt.want)
			}
		})
	}
}

func TestServer_SecurityHeaders(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
}

func TestNewHTTPServer_Timeouts(t *testing.T) {
	hs := NewHTTPServer(":0", newTestServer())

	if hs.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("ReadHeaderTimeout = %v", hs.ReadHeaderTimeout)
	}
	if hs.IdleTimeout != 120*time.Second {
		t.Errorf("IdleTimeout = %v", hs.IdleTimeout)
	}
}
