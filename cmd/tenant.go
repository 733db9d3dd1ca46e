package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/beneflow/beneflow/internal/config"
	"github.com/beneflow/beneflow/internal/sqlc"
	"github.com/beneflow/beneflow/internal/tenant"
)

var (
	tenantSimilarityThreshold float64
	tenantTopK                int
	tenantEscalationThreshold float64
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenant companies",
}

var tenantCreateCmd = &cobra.Command{
	Use:   "create [namespace] [name]",
	Short: "Register a new tenant",
	Long: `Register a new tenant with its retrieval configuration. The namespace
becomes the tenant's URL segment and must be lowercase alphanumeric with
hyphens. Thresholds outside [0, 1] are rejected, not clamped.`,
	Args: cobra.ExactArgs(2),
	RunE: runTenantCreate,
}

func init() {
	tenantCreateCmd.Flags().Float64Var(&tenantSimilarityThreshold, "similarity-threshold", tenant.DefaultSimilarityThreshold, "minimum similarity for retrieval candidates")
	tenantCreateCmd.Flags().IntVar(&tenantTopK, "top-k", tenant.DefaultTopK, "maximum retrieval candidates per query")
	tenantCreateCmd.Flags().Float64Var(&tenantEscalationThreshold, "escalation-threshold", tenant.DefaultEscalationThreshold, "generation confidence below which queries escalate")
	tenantCmd.AddCommand(tenantCreateCmd)
	rootCmd.AddCommand(tenantCmd)
}

// runTenantCreate registers a tenant directly against the database. It does
// not need the AI stack, so an API key is not required.
func runTenantCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	registry := tenant.NewRegistry(sqlc.New(pool), slog.Default())
	tn, err := registry.Register(ctx, args[0], args[1], tenant.RetrievalConfig{
		SimilarityThreshold: tenantSimilarityThreshold,
		TopK:                tenantTopK,
		EscalationThreshold: tenantEscalationThreshold,
	})
	if err != nil {
		return fmt.Errorf("registering tenant: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "tenant %q registered (id %s)\n", tn.Namespace, tn.ID)
	return nil
}
