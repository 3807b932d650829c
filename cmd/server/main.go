package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fantacourt/valuation-api/internal/cache"
	"github.com/fantacourt/valuation-api/internal/config"
	"github.com/fantacourt/valuation-api/internal/engine"
	"github.com/fantacourt/valuation-api/internal/handlers"
	"github.com/fantacourt/valuation-api/internal/store"
	"github.com/fantacourt/valuation-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.New(ctx, cfg.PostgresURL, logger)
	if err != nil {
		log.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Fatalw("Failed to migrate schema", "error", err)
	}

	redisCache, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalw("Failed to connect to redis", "error", err)
	}
	defer redisCache.Close()

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		Writer:        db,
		Logger:        logger,
	})
	pool.Start(ctx)

	eng := engine.New(engine.Config{
		Store:   db,
		Cache:   redisCache,
		Workers: cfg.PipelineWorkers,
		Logger:  logger,
	})

	h := handlers.New(handlers.Config{
		WorkerPool: pool,
		Store:      db,
		Cache:      redisCache,
		Engine:     eng,
		Season:     cfg.Season,
		Logger:     logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(cfg.AllowedOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infow("Server starting", "port", cfg.Port, "season", cfg.Season, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
	pool.Stop()
	log.Info("Shutdown complete")
}
