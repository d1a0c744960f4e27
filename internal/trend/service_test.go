package trend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSource is a mock implementation of Source for testing.
type mockSource struct {
	mu      sync.Mutex
	items   []Item
	err     error
	cutoffs []time.Time
}

func (m *mockSource) FindRecent(ctx context.Context, cutoff time.Time) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoffs = append(m.cutoffs, cutoff)
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockSource) set(items []Item, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
	m.err = err
}

func newTestService(src Source, clock clockwork.Clock) *Service {
	return NewService(ServiceConfig{
		Source: src,
		Clock:  clock,
		Window: 24 * time.Hour,
		TopK:   2,
	})
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(ServiceConfig{Source: &mockSource{}, Window: time.Hour, TopK: 1})

	assert.NotNil(t, svc.cache)
	assert.NotNil(t, svc.clock)
	assert.False(t, svc.Ready())
	assert.Empty(t, svc.TrendingLabels())
}

func TestService_Refresh(t *testing.T) {
	clock := clockwork.NewFakeClockAt(refTime)
	src := &mockSource{items: []Item{
		item(1*time.Hour, "a"),
		item(12*time.Hour, "a", "b"),
		item(23*time.Hour, "b"),
	}}
	svc := newTestService(src, clock)

	result, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Items)
	assert.Equal(t, []string{"a", "b"}, svc.TrendingLabels())
	assert.Same(t, result.Snapshot, svc.Snapshot())
	assert.True(t, svc.Ready())

	require.Len(t, src.cutoffs, 1)
	assert.Equal(t, refTime.Add(-24*time.Hour), src.cutoffs[0])
}

func TestService_Refresh_UsesClockForDecay(t *testing.T) {
	clock := clockwork.NewFakeClockAt(refTime)
	src := &mockSource{items: []Item{item(0, "go")}}
	svc := newTestService(src, clock)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, svc.Snapshot().Entries()[0].Score, 1e-12)

	clock.Advance(6 * time.Hour)
	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.75, svc.Snapshot().Entries()[0].Score, 1e-12)
	assert.Equal(t, refTime.Add(6*time.Hour), svc.Snapshot().ComputedAt())
}

func TestService_Refresh_StaleOnFailure(t *testing.T) {
	clock := clockwork.NewFakeClockAt(refTime)
	src := &mockSource{items: []Item{item(time.Hour, "kept")}}
	svc := newTestService(src, clock)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	before := svc.Snapshot()

	src.set(nil, errors.New("disk I/O error"))
	clock.Advance(time.Hour)

	result, err := svc.Refresh(context.Background())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "disk I/O error")

	assert.Same(t, before, svc.Snapshot())
	assert.Equal(t, []string{"kept"}, svc.TrendingLabels())
}

func TestService_Refresh_FailureOnColdStart(t *testing.T) {
	src := &mockSource{err: ErrSourceUnavailable}
	svc := newTestService(src, clockwork.NewFakeClockAt(refTime))

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.False(t, svc.Ready())
	assert.Empty(t, svc.TrendingLabels())
}

func TestService_Refresh_EmptySourcePublishesEmpty(t *testing.T) {
	src := &mockSource{items: []Item{item(time.Hour, "x")}}
	svc := newTestService(src, clockwork.NewFakeClockAt(refTime))

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, svc.TrendingLabels())

	src.set(nil, nil)
	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, svc.TrendingLabels())
	assert.True(t, svc.Ready())
}

func TestService_Refresh_IsIdempotent(t *testing.T) {
	src := &mockSource{items: []Item{item(time.Hour, "a", "b"), item(2*time.Hour, "a")}}
	svc := newTestService(src, clockwork.NewFakeClockAt(refTime))

	first, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	second, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Snapshot.Entries(), second.Snapshot.Entries())
}
