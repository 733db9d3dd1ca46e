// Package app provides application initialization and dependency wiring.
//
// App is the container that owns the connection pool, the Genkit runtime,
// and the pipeline components, and hands the cmd layer a ready HTTP handler.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beneflow/beneflow/internal/answer"
	"github.com/beneflow/beneflow/internal/api"
	"github.com/beneflow/beneflow/internal/config"
	"github.com/beneflow/beneflow/internal/escalation"
	"github.com/beneflow/beneflow/internal/knowledge"
	"github.com/beneflow/beneflow/internal/tenant"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool

	Registry *tenant.Registry
	Index    *knowledge.Index
	Tracker  *knowledge.Tracker
	Writer   *knowledge.Writer
	Ledger   *escalation.Ledger
	Answer   *answer.Service

	otelCleanup func()
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	a.logger().Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		a.logger().Info("database pool closed")
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	return nil
}

// Handler returns the HTTP handler serving the beneflow API.
func (a *App) Handler() *api.Server {
	return api.NewServer(api.ServerConfig{
		Logger:   a.Logger,
		Answerer: a.Answer,
		Resolver: a.Registry,
		Ledger:   a.Ledger,
		Index:    a.Index,
		DB:       a.DBPool,
	})
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
