package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	planner "github.com/tidyplan/plannerd/internal"
	"github.com/tidyplan/plannerd/internal/app"
	"github.com/tidyplan/plannerd/internal/cache"
	"github.com/tidyplan/plannerd/internal/config"
	"github.com/tidyplan/plannerd/internal/server"
	"github.com/tidyplan/plannerd/internal/storage/sqlite"
	"github.com/tidyplan/plannerd/internal/telemetry"
	"github.com/tidyplan/plannerd/internal/worker"
)

func run(configPath string) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	slog.Info("starting plannerd", "version", version, "addr", cfg.Server.Addr)

	// Open database
	store, err := sqlite.New(cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	// Indexes must exist before the first list query. A conflicting
	// definition is a deployment error, not something to limp past.
	ctx := context.Background()
	if err := store.EnsureIndexes(ctx, planner.DefaultIndexes()); err != nil {
		return err
	}

	// Cache
	mem, err := cache.NewMemory(cfg.Cache.MaxSize, backstopTTL(cfg.Cache))
	if err != nil {
		return err
	}

	// Telemetry
	var (
		metrics        *telemetry.Metrics
		metricsHandler http.Handler
	)
	if cfg.Telemetry.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics = telemetry.NewMetrics(reg, mem.Size)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	if cfg.Telemetry.Tracing.Enabled {
		shutdown, err := telemetry.SetupTracing(ctx, cfg.Telemetry.Tracing.Endpoint, cfg.Telemetry.Tracing.SampleRate)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				slog.Error("tracing shutdown failed", "error", err)
			}
		}()
	}

	// Wire services
	coord := app.NewCoordinator(mem, metrics)
	todos := app.NewTodoService(store, coord, cfg.Cache.TTLFor(planner.ResourceTodos))
	horizons := app.NewHorizonService(store, coord, cfg.Cache.TTLFor(planner.ResourceHorizons))
	events := app.NewEventService(store, coord, cfg.Cache.TTLFor(planner.ResourceEvents))

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	workerDone := make(chan struct{})
	if cfg.Cache.Enabled && cfg.Cache.JanitorInterval > 0 {
		runner := worker.NewRunner(worker.NewJanitor(mem, cfg.Cache.JanitorInterval))
		go func() {
			defer close(workerDone)
			if err := runner.Run(workerCtx); err != nil {
				slog.Error("worker runner failed", "error", err)
			}
		}()
	} else {
		close(workerDone)
	}

	// Create HTTP server
	handler := server.New(server.Deps{
		Todos:          todos,
		Horizons:       horizons,
		Events:         events,
		ReadyCheck:     store.Ping,
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("plannerd ready", "addr", cfg.Server.Addr)

	// Wait for signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig)
	case err := <-errCh:
		return err
	}

	// Shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	stopWorkers()
	<-workerDone

	slog.Info("plannerd stopped")
	return nil
}

// backstopTTL returns the largest configured TTL so the cache's write-time
// expiry never evicts an entry before its own deadline.
func backstopTTL(c config.CacheConfig) time.Duration {
	ttl := c.DefaultTTL
	for _, t := range c.ResourceTTL {
		if t > ttl {
			ttl = t
		}
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return ttl
}
