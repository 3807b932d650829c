// Package engine orchestrates a full valuation run: load the season
// snapshot, recompute the fanta ledger, refit the gain model, publish
// predictions. Runs are serialized through a Redis lock and always
// replace their outputs wholesale.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/fantacourt/valuation-api/internal/cache"
	"github.com/fantacourt/valuation-api/internal/forecast"
	"github.com/fantacourt/valuation-api/internal/models"
	"github.com/fantacourt/valuation-api/internal/schedule"
	"github.com/fantacourt/valuation-api/internal/valuation"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "valuation_runs_total",
		Help: "Total number of valuation runs by outcome",
	}, []string{"status"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "valuation_run_duration_seconds",
		Help:    "Duration of valuation runs",
		Buckets: prometheus.DefBuckets,
	})

	ledgerRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "valuation_ledger_rows",
		Help: "Ledger rows produced by the most recent run",
	})

	predictionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "valuation_predictions_total",
		Help: "Predictions produced by the most recent run",
	})
)

// ErrMissingInputs is returned when the season snapshot lacks the facts a
// run needs; existing outputs are left untouched.
var ErrMissingInputs = errors.New("engine: season snapshot is missing box scores, game results or fixtures")

// Store is the persistence surface a run needs.
type Store interface {
	LoadBoxScores(ctx context.Context, season int) ([]models.BoxScoreRow, error)
	LoadGameResults(ctx context.Context, season int) ([]models.GameResult, error)
	LoadFixtures(ctx context.Context, season int) ([]models.Fixture, error)
	LoadInitialValues(ctx context.Context, season int) ([]models.InitialValue, error)
	LoadStatuses(ctx context.Context) ([]models.StatusRecord, error)
	LoadLineups(ctx context.Context) ([]models.LineupEntry, error)
	ReplaceLedger(ctx context.Context, season int, entries []models.LedgerEntry) error
	ReplacePredictions(ctx context.Context, season int, preds []models.Prediction) error
}

// CacheClient is the Redis surface a run needs.
type CacheClient interface {
	AcquireRunLock(ctx context.Context, runID string) error
	ReleaseRunLock(ctx context.Context, runID string) error
	PublishPredictions(ctx context.Context, season int, preds []models.Prediction) error
	RecordRun(ctx context.Context, rec cache.RunRecord) error
}

// Config configures the engine.
type Config struct {
	Store    Store
	Cache    CacheClient
	Workers  int
	Logger   *zap.Logger
	Now      func() time.Time // defaults to time.Now
}

// Engine runs the valuation batch.
type Engine struct {
	store    Store
	cache    CacheClient
	pipeline *valuation.Pipeline
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// Result summarizes one completed run.
type Result struct {
	RunID       string    `json:"run_id"`
	Season      int       `json:"season"`
	LedgerRows  int       `json:"ledger_rows"`
	Predictions int       `json:"predictions"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// New creates an engine.
func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		store: cfg.Store,
		cache: cfg.Cache,
		pipeline: valuation.NewPipeline(valuation.PipelineConfig{
			Workers: cfg.Workers,
			Logger:  cfg.Logger,
		}),
		logger: cfg.Logger.Sugar(),
		now:    cfg.Now,
	}
}

// Run executes one valuation run for the season. It returns
// cache.ErrRunInProgress when another run holds the lock and
// ErrMissingInputs when the snapshot is incomplete; both leave the
// previous ledger and predictions in place.
func (e *Engine) Run(ctx context.Context, season int) (*Result, error) {
	runID := uuid.New().String()
	started := e.now()

	if err := e.cache.AcquireRunLock(ctx, runID); err != nil {
		if errors.Is(err, cache.ErrRunInProgress) {
			runsTotal.WithLabelValues("locked").Inc()
		}
		return nil, err
	}
	defer func() {
		if err := e.cache.ReleaseRunLock(context.WithoutCancel(ctx), runID); err != nil {
			e.logger.Warnw("Failed to release run lock", "run_id", runID, "error", err)
		}
	}()

	e.logger.Infow("Valuation run started", "run_id", runID, "season", season)

	res, err := e.run(ctx, runID, season, started)
	if err != nil {
		runsTotal.WithLabelValues("failed").Inc()
		e.logger.Errorw("Valuation run failed", "run_id", runID, "season", season, "error", err)
		return nil, err
	}

	runsTotal.WithLabelValues("completed").Inc()
	runDuration.Observe(res.FinishedAt.Sub(res.StartedAt).Seconds())
	ledgerRows.Set(float64(res.LedgerRows))
	predictionsTotal.Set(float64(res.Predictions))
	e.logger.Infow("Valuation run completed",
		"run_id", runID,
		"season", season,
		"ledger_rows", res.LedgerRows,
		"predictions", res.Predictions,
		"duration", res.FinishedAt.Sub(res.StartedAt),
	)
	return res, nil
}

func (e *Engine) run(ctx context.Context, runID string, season int, started time.Time) (*Result, error) {
	boxScores, err := e.store.LoadBoxScores(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("loading box scores: %w", err)
	}
	games, err := e.store.LoadGameResults(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("loading game results: %w", err)
	}
	fixtures, err := e.store.LoadFixtures(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("loading fixtures: %w", err)
	}
	if len(boxScores) == 0 || len(games) == 0 || len(fixtures) == 0 {
		return nil, ErrMissingInputs
	}

	initialValues, err := e.store.LoadInitialValues(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("loading initial values: %w", err)
	}
	statuses, err := e.store.LoadStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading statuses: %w", err)
	}
	lineups, err := e.store.LoadLineups(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading lineups: %w", err)
	}

	ledger, err := e.pipeline.Run(ctx, valuation.Inputs{
		Season:        season,
		BoxScores:     boxScores,
		Games:         games,
		InitialValues: initialValues,
	})
	if err != nil {
		return nil, fmt.Errorf("computing ledger: %w", err)
	}
	if err := e.store.ReplaceLedger(ctx, season, ledger); err != nil {
		return nil, fmt.Errorf("storing ledger: %w", err)
	}

	preds, err := e.predict(ledger, fixtures, statuses, lineups)
	if err != nil {
		return nil, err
	}
	if err := e.store.ReplacePredictions(ctx, season, preds); err != nil {
		return nil, fmt.Errorf("storing predictions: %w", err)
	}
	if err := e.cache.PublishPredictions(ctx, season, preds); err != nil {
		// The store copy is authoritative; a cold cache only costs reads.
		e.logger.Warnw("Failed to cache predictions", "run_id", runID, "error", err)
	}

	finished := e.now()
	if err := e.cache.RecordRun(ctx, cache.RunRecord{
		RunID:       runID,
		Season:      season,
		FinishedAt:  finished,
		LedgerRows:  len(ledger),
		Predictions: len(preds),
	}); err != nil {
		e.logger.Warnw("Failed to record run", "run_id", runID, "error", err)
	}

	return &Result{
		RunID:       runID,
		Season:      season,
		LedgerRows:  len(ledger),
		Predictions: len(preds),
		StartedAt:   started,
		FinishedAt:  finished,
	}, nil
}

// predict refits the gain model on the fresh ledger and forecasts each
// athlete's next game. A ledger with no scored rows yields no forecasts
// rather than failing the run.
func (e *Engine) predict(
	ledger []models.LedgerEntry,
	fixtures []models.Fixture,
	statuses []models.StatusRecord,
	lineups []models.LineupEntry,
) ([]models.Prediction, error) {
	model, err := forecast.Fit(ledger, e.logger.Desugar())
	if errors.Is(err, forecast.ErrNoTrainingData) {
		e.logger.Warnw("No scored ledger rows; skipping forecasts")
		return []models.Prediction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fitting gain model: %w", err)
	}

	next := schedule.NextMatches(fixtures, e.now())
	frame := forecast.BuildFrame(ledger, next, statuses, lineups)
	return model.Predict(frame), nil
}
