// Command indexcli is a thin JSONL-ingestion demo that exercises
// IndexWriter end to end, in the style of the teacher's
// cmd/server/main.go: flag + env-var configuration, JSON slog logging.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "indexcli",
		Short:         "indexcli ingests and queries an indexcore data directory",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("data-dir", getEnv("INDEXCLI_DATA_DIR", "data"), "index data directory")
	root.PersistentFlags().String("log-level", getEnv("INDEXCLI_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")

	root.AddCommand(ingestCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(segmentsCmd())
	root.AddCommand(gcCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
	slog.SetDefault(logger)
	return logger
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
