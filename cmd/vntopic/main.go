// Package main provides the vntopic CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cognicore/vntopic/pkg/vntopic/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	configPath string
	logLevel   string

	// set by the root PersistentPreRunE
	cfg    config.Config
	logger *slog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vntopic",
	Short: "Vietnamese news topic pipeline",
	Long: `vntopic crawls Vietnamese news listings, normalizes and segments the
text, fits an LDA topic model and labels every article with its dominant
topic.

Typical run:
  vntopic crawl --out dataset.csv
  vntopic fit --in dataset.csv --out dataset_with_topics.csv
  vntopic report --in dataset.csv --html report.html`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.Version = Version
}

func setup(cmd *cobra.Command, _ []string) error {
	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not read .env", "error", err)
	}

	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
