// Package cmd contains the beneflow CLI commands.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/beneflow/beneflow/internal/log"
)

var (
	flagVerbose bool
	flagJSONLog bool
)

var rootCmd = &cobra.Command{
	Use:   "beneflow",
	Short: "beneflow - tenant-isolated employee benefits Q&A service",
	Long: `beneflow answers employee benefits questions from a per-company
knowledge base. Questions it cannot answer confidently are escalated to a
human; resolved escalations can be folded back into the knowledge base so
the same question is answered automatically next time.`,
	PersistentPreRun: func(*cobra.Command, []string) {
		slog.SetDefault(initLogger())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLog, "json-log", false, "log in JSON format")
}

// initLogger builds the process logger from the persistent flags and the
// BENEFLOW_LOG_LEVEL environment variable.
func initLogger() log.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	switch os.Getenv("BENEFLOW_LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return log.New(log.Config{
		Level: level,
		JSON:  flagJSONLog,
	})
}
