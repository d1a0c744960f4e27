package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/abdulachik/hashtrend/internal/config"
	"github.com/abdulachik/hashtrend/internal/source"
	"github.com/abdulachik/hashtrend/internal/trend"
	"github.com/spf13/cobra"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Compute and print the current trending labels",
	Long: `Run a single refresh against the database and print the ranked labels
with their decayed scores. TREND_WINDOW and TREND_TOP_K apply unless
overridden by flags.`,
	RunE: runTrends,
}

var (
	trendsAll    bool
	trendsJSON   bool
	trendsTop    int
	trendsWindow time.Duration
)

func init() {
	trendsCmd.Flags().BoolVar(&trendsAll, "all", false, "print every label in the window, not just the top K")
	trendsCmd.Flags().BoolVar(&trendsJSON, "json", false, "print the ranking as JSON")
	trendsCmd.Flags().IntVar(&trendsTop, "top", 0, "override TREND_TOP_K")
	trendsCmd.Flags().DurationVar(&trendsWindow, "window", 0, "override TREND_WINDOW")
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if trendsTop != 0 {
		cfg.TopK = trendsTop
	}
	if trendsWindow != 0 {
		cfg.Window = trendsWindow
	}
	if trendsAll {
		cfg.TopK = math.MaxInt
	}

	if err := cfg.ValidateForTrends(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := trend.NewService(trend.ServiceConfig{
		Source: source.NewStoreSource(store),
		Window: cfg.Window,
		TopK:   cfg.TopK,
	})

	result, err := svc.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh trends: %w", err)
	}

	if trendsJSON {
		return printTrendsJSON(result.Snapshot)
	}
	printTrends(result, cfg.Window)
	return nil
}

func printTrendsJSON(snap *trend.Snapshot) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"computed_at": snap.ComputedAt(),
		"trends":      snap.Entries(),
	})
}

func printTrends(result *trend.RefreshResult, window time.Duration) {
	snap := result.Snapshot

	fmt.Printf("=== Trending labels (window %s, %d items) ===\n", window, result.Items)
	fmt.Println()

	if snap.Len() == 0 {
		fmt.Println("No labels in window.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tLABEL\tSCORE")
	for i, e := range snap.Entries() {
		fmt.Fprintf(w, "%d\t#%s\t%.4f\n", i+1, e.Label, e.Score)
	}
	w.Flush()
}
