package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/hashtrend/internal/metrics"
	"github.com/abdulachik/hashtrend/internal/trend"
	"github.com/sony/gobreaker"
)

const breakerName = "item_source"

// BreakerSource wraps a trend.Source with a circuit breaker so a failing
// store is not hammered every cycle. While open, FindRecent fails fast with
// trend.ErrSourceUnavailable.
type BreakerSource struct {
	next trend.Source
	cb   *gobreaker.CircuitBreaker
}

// BreakerConfig holds circuit breaker configuration.
type BreakerConfig struct {
	// ConsecutiveFailures before the breaker opens.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open before a trial request.
	Cooldown time.Duration
}

// NewBreakerSource creates a breaker-protected source.
func NewBreakerSource(next trend.Source, cfg BreakerConfig) *BreakerSource {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 3
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = 5 * time.Minute
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// a cancelled cycle says nothing about the store's health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.SourceBreakerState.Set(float64(to))
		},
	})

	return &BreakerSource{next: next, cb: cb}
}

// FindRecent delegates to the wrapped source unless the breaker is open.
func (b *BreakerSource) FindRecent(ctx context.Context, cutoff time.Time) ([]trend.Item, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.FindRecent(ctx, cutoff)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", trend.ErrSourceUnavailable, err)
		}
		return nil, err
	}

	items, _ := result.([]trend.Item)
	return items, nil
}

// State returns the current breaker state.
func (b *BreakerSource) State() gobreaker.State {
	return b.cb.State()
}
