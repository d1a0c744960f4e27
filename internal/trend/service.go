package trend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrSourceUnavailable marks a failure to query the item source. A refresh
// that fails with it leaves the previous snapshot in place.
var ErrSourceUnavailable = errors.New("item source unavailable")

// Source supplies items with a timestamp at or after cutoff.
type Source interface {
	FindRecent(ctx context.Context, cutoff time.Time) ([]Item, error)
}

// Service runs refresh cycles and answers reader queries.
type Service struct {
	source Source
	cache  *Cache
	clock  clockwork.Clock
	window time.Duration
	topK   int
}

// ServiceConfig holds service configuration.
type ServiceConfig struct {
	Source Source
	Cache  *Cache
	Clock  clockwork.Clock
	Window time.Duration
	TopK   int
}

// RefreshResult describes a completed refresh cycle.
type RefreshResult struct {
	Items    int
	Snapshot *Snapshot
}

// NewService creates a new service. A nil Cache or Clock gets a fresh cache
// and the real clock.
func NewService(cfg ServiceConfig) *Service {
	cache := cfg.Cache
	if cache == nil {
		cache = NewCache()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		source: cfg.Source,
		cache:  cache,
		clock:  clock,
		window: cfg.Window,
		topK:   cfg.TopK,
	}
}

// Refresh fetches recent items, ranks them and publishes the result. On
// error nothing is published.
func (s *Service) Refresh(ctx context.Context) (*RefreshResult, error) {
	now := s.clock.Now()

	items, err := s.source.FindRecent(ctx, now.Add(-s.window))
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	snap := Compute(items, now, s.window, s.topK)
	s.cache.Publish(snap)

	return &RefreshResult{Items: len(items), Snapshot: snap}, nil
}

// TrendingLabels returns the current ranked labels.
func (s *Service) TrendingLabels() []string {
	return s.cache.Labels()
}

// Snapshot returns the current snapshot with scores.
func (s *Service) Snapshot() *Snapshot {
	return s.cache.Current()
}

// Ready reports whether a refresh has ever succeeded.
func (s *Service) Ready() bool {
	return s.cache.Ready()
}
