package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/hashtrend/internal/metrics"
	"github.com/abdulachik/hashtrend/internal/notify"
	"github.com/abdulachik/hashtrend/internal/trend"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Refresher runs one trend refresh cycle.
type Refresher interface {
	Refresh(ctx context.Context) (*trend.RefreshResult, error)
	Ready() bool
}

// Scheduler triggers trend refreshes on a fixed period.
type Scheduler struct {
	refresher Refresher
	clock     clockwork.Clock
	period    time.Duration
	notifier  notify.Notifier
	health    *Health

	// sourceDown is only touched from the Run goroutine.
	sourceDown bool
}

// Config holds scheduler configuration.
type Config struct {
	Refresher Refresher
	Clock     clockwork.Clock
	Period    time.Duration
	Notifier  notify.Notifier
}

// New creates a new scheduler.
func New(cfg Config) *Scheduler {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(nil)
	}

	return &Scheduler{
		refresher: cfg.Refresher,
		clock:     clock,
		period:    cfg.Period,
		notifier:  notifier,
		health:    NewHealth(clock),
	}
}

// Run performs an initial refresh and then one per period until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.period <= 0 {
		return fmt.Errorf("invalid refresh period: %s", s.period)
	}

	slog.Info("starting scheduler", "refresh_period", s.period)

	s.runRefreshCycle(ctx)

	ticker := s.clock.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler shutting down")
			return ctx.Err()

		case <-ticker.Chan():
			s.runRefreshCycle(ctx)
		}
	}
}

// runRefreshCycle refreshes the trend snapshot and records the outcome.
func (s *Scheduler) runRefreshCycle(ctx context.Context) {
	logger := slog.With("cycle_id", uuid.NewString())
	logger.Debug("running refresh cycle")

	start := s.clock.Now()
	result, err := s.refresher.Refresh(ctx)
	metrics.RefreshDuration.Observe(s.clock.Since(start).Seconds())

	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("refresh cycle cancelled", "error", err)
			return
		}

		metrics.RefreshCyclesTotal.WithLabelValues(metrics.StatusFailure).Inc()
		s.health.SetUnhealthy(ComponentRefresh, err)
		if errors.Is(err, trend.ErrSourceUnavailable) {
			s.health.SetUnhealthy(ComponentSource, err)
			s.markSourceDown(ctx, err)
		}

		logger.Error("refresh cycle failed",
			"error", err,
			"serving_stale", s.refresher.Ready(),
		)
		return
	}

	snap := result.Snapshot
	metrics.RefreshCyclesTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	metrics.ItemsScanned.Set(float64(result.Items))
	metrics.TrendingLabels.Set(float64(snap.Len()))
	metrics.LastSuccessTimestamp.Set(float64(snap.ComputedAt().Unix()))

	s.health.SetHealthy(ComponentSource, fmt.Sprintf("read %d items", result.Items))
	s.health.SetHealthy(ComponentRefresh, fmt.Sprintf("published %d labels", snap.Len()))
	s.markSourceUp(ctx)

	logger.Info("refresh cycle complete",
		"items", result.Items,
		"labels", snap.Len(),
		"computed_at", snap.ComputedAt(),
	)
}

func (s *Scheduler) markSourceDown(ctx context.Context, err error) {
	if s.sourceDown {
		return
	}
	s.sourceDown = true
	s.send(ctx, notify.Notification{
		Subject: "item source unavailable",
		Body:    fmt.Sprintf("trend refresh failed, serving previous snapshot: %v", err),
	})
}

func (s *Scheduler) markSourceUp(ctx context.Context) {
	if !s.sourceDown {
		return
	}
	s.sourceDown = false
	s.send(ctx, notify.Notification{
		Subject: "item source recovered",
		Body:    "trend refresh succeeded",
	})
}

func (s *Scheduler) send(ctx context.Context, n notify.Notification) {
	if err := s.notifier.Send(ctx, n); err != nil {
		slog.Warn("failed to send notification", "subject", n.Subject, "error", err)
	}
}

// Health returns the health tracker.
func (s *Scheduler) Health() *Health {
	return s.health
}
