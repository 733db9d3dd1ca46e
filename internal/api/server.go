// Package api provides the beneflow HTTP server and its middleware stack.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/beneflow/beneflow/internal/api/handlers"
	"github.com/beneflow/beneflow/internal/knowledge"
)

// Server is the beneflow HTTP server.
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
}

// ServerConfig contains configuration for creating a Server.
type ServerConfig struct {
	Logger   *slog.Logger
	Answerer handlers.Answerer         // Required: the answer pipeline
	Resolver handlers.TenantResolver   // Required: tenant registry
	Ledger   handlers.EscalationLedger // Required: escalation ledger
	Index    *knowledge.Index          // Required: knowledge store
	DB       handlers.Pinger           // Optional: nil limits /ready to liveness
}

// NewServer creates a server with all routes configured.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	// Health check routes (no middleware, for Docker/K8s probes)
	handlers.NewHealth(cfg.DB).RegisterRoutes(mux)

	handlers.NewQuery(handlers.QueryConfig{
		Logger:   logger,
		Answerer: cfg.Answerer,
	}).RegisterRoutes(mux)

	handlers.NewEscalations(handlers.EscalationsConfig{
		Logger:   logger,
		Resolver: cfg.Resolver,
		Ledger:   cfg.Ledger,
	}).RegisterRoutes(mux)

	handlers.NewKnowledge(handlers.KnowledgeConfig{
		Logger:   logger,
		Resolver: cfg.Resolver,
		Index:    cfg.Index,
	}).RegisterRoutes(mux)

	return &Server{
		mux:    mux,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler with the middleware stack:
// Recovery catches panics from any layer below, Logging tracks requests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")

	var handler http.Handler = s.mux
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler.ServeHTTP(w, r)
}

// NewHTTPServer wraps the handler in an http.Server with hardened timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
