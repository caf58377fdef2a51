package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ward-census/internal/config"
	"ward-census/internal/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ward-census",
		Short:         "Hospital ward occupancy: journal import, snapshots and record upkeep",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(templateCmd())
	rootCmd.AddCommand(clearCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withApp loads configuration, builds the app and runs fn with it.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "ward-census")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("Startup failed", zap.Error(err))
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
