package db

import (
	"context"
	"path/filepath"
	"testing"
)

// NewTestStore opens a migrated store in a temporary directory, closed on cleanup.
func NewTestStore(t testing.TB) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}

	return store
}
