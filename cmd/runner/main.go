// The runner executes a single valuation run and exits, for cron or
// one-off recomputes outside the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fantacourt/valuation-api/internal/cache"
	"github.com/fantacourt/valuation-api/internal/config"
	"github.com/fantacourt/valuation-api/internal/engine"
	"github.com/fantacourt/valuation-api/internal/store"
)

func main() {
	season := flag.Int("season", 0, "season to recompute (defaults to SEASON env)")
	timeout := flag.Duration("timeout", 10*time.Minute, "run timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *season == 0 {
		*season = cfg.Season
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

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

	eng := engine.New(engine.Config{
		Store:   db,
		Cache:   redisCache,
		Workers: cfg.PipelineWorkers,
		Logger:  logger,
	})

	res, err := eng.Run(ctx, *season)
	if errors.Is(err, cache.ErrRunInProgress) {
		log.Warnw("Another run is in progress, exiting", "season", *season)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalw("Run failed", "season", *season, "error", err)
	}

	log.Infow("Run finished",
		"run_id", res.RunID,
		"season", res.Season,
		"ledger_rows", res.LedgerRows,
		"predictions", res.Predictions,
		"duration", res.FinishedAt.Sub(res.StartedAt),
	)
}
