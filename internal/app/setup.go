package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beneflow/beneflow/db"
	"github.com/beneflow/beneflow/internal/answer"
	"github.com/beneflow/beneflow/internal/config"
	"github.com/beneflow/beneflow/internal/escalation"
	"github.com/beneflow/beneflow/internal/knowledge"
	"github.com/beneflow/beneflow/internal/log"
	"github.com/beneflow/beneflow/internal/observability"
	"github.com/beneflow/beneflow/internal/retrieval"
	"github.com/beneflow/beneflow/internal/sqlc"
	"github.com/beneflow/beneflow/internal/tenant"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup. Call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	a.otelCleanup = provideOtelShutdown(ctx, cfg, a)

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g, err := provideGenkit(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	a.Embedder = googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if a.Embedder == nil {
		return nil, fmt.Errorf("embedder %q not found for provider %q", cfg.EmbedderModel, cfg.Provider)
	}

	embedder := provideTextEmbedder(a.Embedder, cfg)
	queries := sqlc.New(pool)

	a.Registry = tenant.NewRegistry(queries, logger)
	a.Index = knowledge.NewIndex(queries, embedder, logger)
	a.Tracker = knowledge.NewTracker(queries, logger)
	a.Writer = knowledge.NewWriter(pool, queries, embedder, logger)
	a.Ledger = escalation.NewLedger(pool, queries, a.Writer, logger)

	retriever := retrieval.NewRetriever(embedder, a.Index, logger)
	generator := answer.NewGenkitGenerator(g, cfg.FullModelName())
	a.Answer = answer.NewService(a.Registry, retriever, generator, a.Tracker, a.Ledger, logger)

	return a, nil
}

// provideOtelShutdown sets up tracing before Genkit initialization so the
// TracerProvider is ready when the first span is created.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, a *App) func() {
	if !cfg.Otel.Enabled {
		return func() {}
	}

	shutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.Otel.Endpoint,
		Environment: cfg.Otel.Environment,
		ServiceName: cfg.Otel.ServiceName,
	})
	if err != nil {
		a.logger().Warn("tracing setup failed, continuing without", "error", err)
		return func() {}
	}

	//nolint:contextcheck // Independent context: shutdown runs during teardown when parent is canceled
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			a.logger().Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideDBPool creates a PostgreSQL connection pool and runs migrations.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// provideGenkit initializes Genkit with the Google AI plugin. Both supported
// providers (gemini, googleai) speak the same plugin.
func provideGenkit(ctx context.Context, cfg *config.Config) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with googleai provider")
	}
	return g, nil
}

// provideTextEmbedder wraps the Genkit embedder with the timeout and rate
// limit from configuration.
func provideTextEmbedder(embedder ai.Embedder, cfg *config.Config) *knowledge.Embedder {
	opts := []knowledge.EmbedderOption{}
	if cfg.EmbedTimeoutSeconds > 0 {
		opts = append(opts, knowledge.WithEmbedTimeout(time.Duration(cfg.EmbedTimeoutSeconds)*time.Second))
	}
	if cfg.EmbedRateLimitRPS > 0 {
		opts = append(opts, knowledge.WithEmbedRateLimit(cfg.EmbedRateLimitRPS, cfg.EmbedRateLimitBurst))
	}
	return knowledge.NewEmbedder(embedder, opts...)
}
