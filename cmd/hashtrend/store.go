package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/hashtrend/internal/config"
	"github.com/abdulachik/hashtrend/internal/db"
)

// openStore connects to the configured database and applies pending migrations.
func openStore(ctx context.Context, cfg *config.Config) (*db.Store, error) {
	slog.Debug("connecting to database", "path", cfg.DatabasePath)
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}
