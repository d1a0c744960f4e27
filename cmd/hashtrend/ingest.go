package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/hashtrend/internal/config"
	"github.com/abdulachik/hashtrend/internal/db"
	"github.com/abdulachik/hashtrend/internal/tags"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Store a labeled item",
	Long: `Store an item with its labels. Hashtags found in --text are used as
labels, together with any --label flags. Labels listed in BLOCKED_LABELS
are dropped.`,
	Example: `  hashtrend ingest --text "shipping #golang 1.25 today #release"
  hashtrend ingest --label go --label news --at 2024-03-10T09:00:00Z`,
	RunE: runIngest,
}

var (
	ingestText   string
	ingestLabels []string
	ingestAt     string
	ingestSource string
)

func init() {
	ingestCmd.Flags().StringVar(&ingestText, "text", "", "item text; #hashtags become labels")
	ingestCmd.Flags().StringSliceVar(&ingestLabels, "label", nil, "explicit label (repeatable)")
	ingestCmd.Flags().StringVar(&ingestAt, "at", "", "item timestamp in RFC3339 (default: now)")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "cli", "origin of the item")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	createdAt := time.Now().UTC()
	if ingestAt != "" {
		createdAt, err = time.Parse(time.RFC3339, ingestAt)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
	}

	labels := collectLabels(ingestText, ingestLabels, tags.NewFilter(tags.FilterConfig{
		BlockedLabels: cfg.BlockedLabels,
	}))
	if len(labels) == 0 && ingestText == "" {
		return fmt.Errorf("nothing to ingest: provide --text or --label")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.InsertItem(ctx, db.CreateItemParams{
		Body:      ingestText,
		Source:    ingestSource,
		CreatedAt: createdAt,
	}, labels)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	slog.Info("item stored", "id", id, "labels", labels, "created_at", createdAt)
	fmt.Printf("Stored item %d with %d labels\n", id, len(labels))
	return nil
}

// collectLabels merges hashtags from text with explicit labels, normalized,
// deduplicated and filtered.
func collectLabels(text string, explicit []string, filter *tags.Filter) []string {
	labels := tags.Extract(text)
	labels = append(labels, tags.NormalizeAll(explicit)...)
	return filter.FilterLabels(tags.NormalizeAll(labels))
}
