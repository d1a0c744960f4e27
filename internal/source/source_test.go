package source

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abdulachik/hashtrend/internal/db"
	"github.com/abdulachik/hashtrend/internal/trend"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type failingLister struct{}

func (failingLister) ListItemsSince(ctx context.Context, cutoff time.Time) ([]*db.Item, error) {
	return nil, errors.New("database is locked")
}

// mockSource is a mock implementation of trend.Source for testing.
type mockSource struct {
	mu    sync.Mutex
	calls int
	items []trend.Item
	err   error
}

func (m *mockSource) FindRecent(ctx context.Context, cutoff time.Time) ([]trend.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockSource) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestStoreSource_FindRecent(t *testing.T) {
	store := db.NewTestStore(t)
	ctx := context.Background()

	_, err := store.InsertItem(ctx, db.CreateItemParams{CreatedAt: now.Add(-time.Hour)}, []string{"go", "news"})
	require.NoError(t, err)
	_, err = store.InsertItem(ctx, db.CreateItemParams{CreatedAt: now.Add(-48 * time.Hour)}, []string{"old"})
	require.NoError(t, err)

	src := NewStoreSource(store)
	items, err := src.FindRecent(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.True(t, now.Add(-time.Hour).Equal(items[0].Timestamp))
	assert.Equal(t, []string{"go", "news"}, items[0].Labels)
}

func TestStoreSource_FeedsCompute(t *testing.T) {
	store := db.NewTestStore(t)
	ctx := context.Background()

	_, err := store.InsertItem(ctx, db.CreateItemParams{CreatedAt: now.Add(-1 * time.Hour)}, []string{"a"})
	require.NoError(t, err)
	_, err = store.InsertItem(ctx, db.CreateItemParams{CreatedAt: now.Add(-12 * time.Hour)}, []string{"a", "b"})
	require.NoError(t, err)
	_, err = store.InsertItem(ctx, db.CreateItemParams{CreatedAt: now.Add(-23 * time.Hour)}, []string{"b"})
	require.NoError(t, err)

	items, err := NewStoreSource(store).FindRecent(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)

	snap := trend.Compute(items, now, 24*time.Hour, 2)
	entries := snap.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Label)
	assert.InDelta(t, 1.4583, entries[0].Score, 1e-4)
	assert.Equal(t, "b", entries[1].Label)
	assert.InDelta(t, 0.5417, entries[1].Score, 1e-4)
}

func TestStoreSource_ErrorIsSourceUnavailable(t *testing.T) {
	src := NewStoreSource(failingLister{})

	_, err := src.FindRecent(context.Background(), now)
	require.Error(t, err)
	assert.ErrorIs(t, err, trend.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestBreakerSource_PassesThrough(t *testing.T) {
	next := &mockSource{items: []trend.Item{{Timestamp: now, Labels: []string{"x"}}}}
	b := NewBreakerSource(next, BreakerConfig{})

	items, err := b.FindRecent(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerSource_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &mockSource{err: trend.ErrSourceUnavailable}
	b := NewBreakerSource(next, BreakerConfig{ConsecutiveFailures: 2, Cooldown: time.Hour})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := b.FindRecent(ctx, now)
		assert.ErrorIs(t, err, trend.ErrSourceUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	// open breaker fails fast without calling the store
	_, err := b.FindRecent(ctx, now)
	assert.ErrorIs(t, err, trend.ErrSourceUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, next.callCount())
}

func TestBreakerSource_RecoversAfterCooldown(t *testing.T) {
	next := &mockSource{err: trend.ErrSourceUnavailable}
	b := NewBreakerSource(next, BreakerConfig{ConsecutiveFailures: 1, Cooldown: 20 * time.Millisecond})
	ctx := context.Background()

	_, err := b.FindRecent(ctx, now)
	require.Error(t, err)
	require.Equal(t, gobreaker.StateOpen, b.State())

	next.setErr(nil)

	assert.Eventually(t, func() bool {
		return b.State() == gobreaker.StateHalfOpen
	}, time.Second, 5*time.Millisecond)

	_, err = b.FindRecent(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerSource_CancellationDoesNotTrip(t *testing.T) {
	next := &mockSource{err: context.Canceled}
	b := NewBreakerSource(next, BreakerConfig{ConsecutiveFailures: 1})

	for i := 0; i < 3; i++ {
		_, err := b.FindRecent(context.Background(), now)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
