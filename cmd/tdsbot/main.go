package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dejobratic/tdsbot/internal/config"
	"github.com/dejobratic/tdsbot/internal/storefront/catalog"
	"github.com/dejobratic/tdsbot/internal/telemetry"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "tdsbot",
		Short:         "Telegram storefront for discounted subscriptions",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(quoteCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and builds the process logger from it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level, err := telemetry.ParseLevel(cfg.Telemetry.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := telemetry.NewLogger(level)
	slog.SetDefault(logger)

	return cfg, logger, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}
