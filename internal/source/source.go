// Package source adapts item storage to the trend.Source contract.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/hashtrend/internal/db"
	"github.com/abdulachik/hashtrend/internal/trend"
)

// ItemLister is the subset of db.Store the source reads from.
type ItemLister interface {
	ListItemsSince(ctx context.Context, cutoff time.Time) ([]*db.Item, error)
}

// StoreSource reads recent items from the database.
type StoreSource struct {
	store ItemLister
}

// NewStoreSource creates a source backed by the item store.
func NewStoreSource(store ItemLister) *StoreSource {
	return &StoreSource{store: store}
}

// FindRecent returns items created at or after cutoff. Any storage error is
// reported as trend.ErrSourceUnavailable.
func (s *StoreSource) FindRecent(ctx context.Context, cutoff time.Time) ([]trend.Item, error) {
	rows, err := s.store.ListItemsSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%w: list items: %w", trend.ErrSourceUnavailable, err)
	}

	items := make([]trend.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, trend.Item{
			Timestamp: row.CreatedAt,
			Labels:    row.Labels,
		})
	}

	slog.Debug("loaded recent items", "cutoff", cutoff, "count", len(items))
	return items, nil
}
