package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/figpreorders/figorders/api/routes"
	"github.com/figpreorders/figorders/internal/bootstrap"
	"github.com/figpreorders/figorders/internal/commit"
	"github.com/figpreorders/figorders/internal/linkedfile"
	"github.com/figpreorders/figorders/internal/repo"
	"github.com/figpreorders/figorders/internal/workspace"
	"github.com/figpreorders/figorders/pkg/config"
	"github.com/figpreorders/figorders/pkg/db"
	"github.com/figpreorders/figorders/pkg/env"
	"github.com/figpreorders/figorders/pkg/kvstore"
	"github.com/figpreorders/figorders/pkg/logger"
	"github.com/figpreorders/figorders/pkg/metrics"
	"github.com/figpreorders/figorders/pkg/migrate"
	"github.com/figpreorders/figorders/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		slots       kvstore.Backend
		idempotency redis.IdempotencyStore
		redisClient *redis.Client
	)

	backend := cfg.Store.NormalizedBackend()
	switch {
	case cfg.Store.UsesSQL():
		dbClient, err := db.New(ctx, backend, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()
		if err := migrate.MaybeAutoRun(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run migrations", err)
			os.Exit(1)
		}
		slots = repo.NewSlotRepository(dbClient.DB())
	case backend == config.StoreBackendMemory:
		logg.Warn(ctx, "memory store selected; data is lost on restart")
		slots = kvstore.NewMemoryBackend()
	}

	if cfg.Redis.Configured() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		idempotency = redisClient
		if backend == config.StoreBackendRedis {
			slots = redisClient
		}
	}

	store, err := kvstore.New(slots, cfg.Store.QuotaBytes, logg)
	if err != nil {
		logg.Error(ctx, "failed to create durable store", err)
		os.Exit(1)
	}
	keys := kvstore.SlotKeys{Orders: cfg.Store.OrdersKey, Varieties: cfg.Store.VarietiesKey}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	commitMetrics := metrics.NewCommitMetrics(registry)

	files, err := linkedfile.New(cfg.Link)
	if err != nil {
		logg.Error(ctx, "failed to resolve link root", err)
		os.Exit(1)
	}
	links := linkedfile.NewRegistry()

	pipeline, err := commit.New(files, links, store, keys, commitMetrics, logg)
	if err != nil {
		logg.Error(ctx, "failed to create commit pipeline", err)
		os.Exit(1)
	}

	sequencer, err := bootstrap.NewSequencer(bootstrap.NewFetcher(cfg.Bundle), store, keys, logg)
	if err != nil {
		logg.Error(ctx, "failed to create bootstrap sequencer", err)
		os.Exit(1)
	}
	boot := sequencer.Run(ctx)

	ws, err := workspace.New(workspace.Deps{
		Files:    files,
		Links:    links,
		Pipeline: pipeline,
		Metrics:  commitMetrics,
		Logger:   logg,
	}, boot)
	if err != nil {
		logg.Error(ctx, "failed to create workspace", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":              cfg.App.Env,
		"addr":             addr,
		"instance":         env.InstanceID(),
		"backend":          backend,
		"orders_source":    boot.OrdersSource,
		"varieties_source": boot.VarietiesSource,
		"linking":          files.Enabled(),
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, store, idempotency, ws, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(serverCtx, "shutting down api server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}
}
