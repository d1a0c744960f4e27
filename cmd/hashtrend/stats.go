package main

import (
	"context"
	"fmt"
	"time"

	"github.com/abdulachik/hashtrend/internal/config"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long:  `Display item and label counts, overall and within the trend window.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	totalItems, err := store.CountItems(ctx)
	if err != nil {
		return fmt.Errorf("count items: %w", err)
	}

	recentItems, err := store.CountItemsSince(ctx, time.Now().Add(-cfg.Window))
	if err != nil {
		return fmt.Errorf("count recent items: %w", err)
	}

	labels, err := store.CountDistinctLabels(ctx)
	if err != nil {
		return fmt.Errorf("count labels: %w", err)
	}

	fmt.Println("=== Hashtrend Statistics ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", cfg.DatabasePath)
	fmt.Println()
	fmt.Println("Items:")
	fmt.Printf("  Total: %d\n", totalItems)
	fmt.Printf("  Within window (%s): %d\n", cfg.Window, recentItems)
	fmt.Printf("  Outside window: %d\n", totalItems-recentItems)
	fmt.Println()
	fmt.Println("Labels:")
	fmt.Printf("  Distinct: %d\n", labels)
	fmt.Println()

	return nil
}
