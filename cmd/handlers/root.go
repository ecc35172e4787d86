package handlers

import (
	"fmt"
	"log/slog"
	"os"

	"geodigest/internal/config"
	"geodigest/internal/core"
	"geodigest/internal/logger"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "geodigest",
		Short: "Curated AI & GIS news digests delivered by email",
		Long: `geodigest - AI & GIS Digest

Polls a fixed set of RSS/Atom sources, scores entries with keyword
heuristics and emails the top articles as an HTML digest.

Variants:
  • daily:  AI & GIS relevance, every day at 08:00
  • weekly: industry trends, every Monday at 08:00

Examples:
  # Preview today's digest without sending
  geodigest digest daily --dry-run

  # Run on schedule, sending once at startup
  geodigest schedule --run-now

  # Verify SMTP, feeds and connectivity
  geodigest check`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .geodigest.yaml in . or $HOME)")

	rootCmd.AddCommand(NewDigestCmd())
	rootCmd.AddCommand(NewScheduleCmd())
	rootCmd.AddCommand(NewCheckCmd())
	rootCmd.AddCommand(NewSourcesCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return err
	}
	return nil
}

// loadConfig loads configuration and configures the default logger from it
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.Configure(cfg.Logging.Level, cfg.Logging.Format)
	logger.Debug("Configuration loaded", "file", cfgFile, "timezone", cfg.Schedule.Timezone)
	return cfg, log, nil
}

// parseVariantArg returns the variant named by the first argument, or fallback
func parseVariantArg(args []string, fallback core.Variant) (core.Variant, error) {
	if len(args) == 0 {
		return fallback, nil
	}
	return core.ParseVariant(args[0])
}

func variantNames() []string {
	names := make([]string, len(core.Variants))
	for i, v := range core.Variants {
		names[i] = string(v)
	}
	return names
}
