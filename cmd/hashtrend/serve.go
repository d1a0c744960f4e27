package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdulachik/hashtrend/internal/config"
	"github.com/abdulachik/hashtrend/internal/httpapi"
	"github.com/abdulachik/hashtrend/internal/metrics"
	"github.com/abdulachik/hashtrend/internal/notify"
	"github.com/abdulachik/hashtrend/internal/scheduler"
	"github.com/abdulachik/hashtrend/internal/source"
	"github.com/abdulachik/hashtrend/internal/trend"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the trend daemon",
	Long: `Run the hashtrend daemon: refresh the trending labels every
REFRESH_PERIOD and serve them over HTTP on HTTP_ADDR.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	src := source.NewBreakerSource(source.NewStoreSource(store), source.BreakerConfig{
		ConsecutiveFailures: uint32(cfg.BreakerFailures),
		Cooldown:            cfg.BreakerCooldown,
	})

	svc := trend.NewService(trend.ServiceConfig{
		Source: src,
		Window: cfg.Window,
		TopK:   cfg.TopK,
	})

	sched := scheduler.New(scheduler.Config{
		Refresher: svc,
		Period:    cfg.RefreshPeriod,
		Notifier:  notify.NewLogNotifier(nil),
	})

	api := httpapi.NewServer(httpapi.Config{
		Trends:  svc,
		Health:  sched.Health(),
		Metrics: metrics.Handler(),
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("starting hashtrend daemon",
		"window", cfg.Window,
		"top_k", cfg.TopK,
		"refresh_period", cfg.RefreshPeriod,
		"http_addr", cfg.HTTPAddr,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := sched.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}
