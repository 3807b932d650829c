package handlers

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fantacourt/valuation-api/internal/cache"
	"github.com/fantacourt/valuation-api/internal/engine"
	"github.com/fantacourt/valuation-api/internal/models"
)

// MaxBodySize limits the size of request bodies to 8MB; box-score uploads
// carry a full scrape batch.
const MaxBodySize = 8 << 20

// IngestQueue is the async ingestion surface backed by the worker pool.
type IngestQueue interface {
	EnqueueBoxScore(row models.BoxScoreRow) bool
	EnqueueGame(game models.GameResult) bool
	QueueDepth() int
}

// Store is the persistence surface the handlers read and write.
type Store interface {
	ReplaceFixtures(ctx context.Context, season int, fixtures []models.Fixture) error
	ReplaceInitialValues(ctx context.Context, season int, values []models.InitialValue) error
	ReplaceStatuses(ctx context.Context, records []models.StatusRecord) error
	ReplaceLineups(ctx context.Context, entries []models.LineupEntry) error
	LoadLedgerForAthlete(ctx context.Context, season int, athleteID string) ([]models.LedgerEntry, error)
	LoadPredictions(ctx context.Context, season int) ([]models.Prediction, error)
	LoadFixtures(ctx context.Context, season int) ([]models.Fixture, error)
	Ping(ctx context.Context) error
}

// PredictionCache is the Redis read surface.
type PredictionCache interface {
	GetPredictions(ctx context.Context, season int) ([]models.Prediction, error)
	LastRun(ctx context.Context, season int) (*cache.RunRecord, error)
	HealthCheck(ctx context.Context) error
}

// Runner triggers valuation runs.
type Runner interface {
	Run(ctx context.Context, season int) (*engine.Result, error)
}

type Config struct {
	WorkerPool IngestQueue
	Store      Store
	Cache      PredictionCache
	Engine     Runner
	Season     int
	Logger     *zap.Logger
}

type Handler struct {
	pool      IngestQueue
	store     Store
	cache     PredictionCache
	engine    Runner
	season    int
	logger    *zap.SugaredLogger
	validator *validator.Validate
}

func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Handler{
		pool:      cfg.WorkerPool,
		store:     cfg.Store,
		cache:     cfg.Cache,
		engine:    cfg.Engine,
		season:    cfg.Season,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
	}
}

// Routes builds the service router.
func (h *Handler) Routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))

		r.Get("/healthz", h.Health)
		r.Get("/readyz", h.Ready)
		r.Handle("/metrics", promhttp.Handler())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/ingest", func(r chi.Router) {
				r.Post("/boxscores", h.IngestBoxScores)
				r.Post("/games", h.IngestGames)
				r.Post("/fixtures", h.IngestFixtures)
				r.Post("/ratings", h.IngestRatings)
				r.Post("/status", h.IngestStatuses)
				r.Post("/lineups", h.IngestLineups)
			})

			r.Get("/players/{athleteID}/ledger", h.GetAthleteLedger)
			r.Get("/predictions", h.GetPredictions)
			r.Get("/teams/{team}/next-match", h.GetNextMatch)

			r.Get("/runs/last", h.GetLastRun)
		})

		// A full-season recompute regularly outlasts the standard request
		// timeout, so the synchronous trigger carries no deadline.
		r.Post("/runs", h.TriggerRun)
	})

	return r
}
