package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/hashtrend/internal/config"
	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete items older than the trend window",
	Long: `Delete items (and their labels) created before now minus --older-than.
Items that old never contribute to a ranking. Defaults to TREND_WINDOW.`,
	RunE: runPrune,
}

var pruneOlderThan time.Duration

func init() {
	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "age cutoff (default: TREND_WINDOW)")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForTrends(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	age := cfg.Window
	if pruneOlderThan > 0 {
		age = pruneOlderThan
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cutoff := time.Now().Add(-age)
	deleted, err := store.DeleteItemsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete items: %w", err)
	}

	slog.Info("pruned items", "deleted", deleted, "cutoff", cutoff)
	fmt.Printf("Deleted %d items older than %s\n", deleted, age)
	return nil
}
