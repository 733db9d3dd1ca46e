package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beneflow/beneflow/internal/app"
	"github.com/beneflow/beneflow/internal/config"
	"github.com/beneflow/beneflow/internal/retrieval"
)

var askTenant string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a benefits question through the full pipeline",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askTenant, "tenant", "", "tenant namespace (required)")
	_ = askCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := app.Setup(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = a.Close() }()

	question := strings.Join(args, " ")
	result, err := a.Answer.Ask(ctx, askTenant, question, "cli")
	if err != nil {
		return fmt.Errorf("asking question: %w", err)
	}

	switch result.Decision {
	case retrieval.Escalate:
		fmt.Fprintln(cmd.OutOrStdout(), "This question has been escalated to a human reviewer.")
		if result.Escalation != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Escalation id: %s\n", result.Escalation.ID)
		}
	case retrieval.AutoAnswerLowConfidence:
		fmt.Fprintln(cmd.OutOrStdout(), result.Answer)
		fmt.Fprintln(cmd.OutOrStdout(), "(low confidence: please verify with HR)")
	default:
		fmt.Fprintln(cmd.OutOrStdout(), result.Answer)
	}

	return nil
}
