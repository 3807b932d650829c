// Package worker implements the buffered worker pool that decouples HTTP
// ingestion from database writes:
// - Backpressure via a bounded queue
// - Batch inserts for efficient Postgres writes
// - Graceful shutdown with flush guarantees
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/fantacourt/valuation-api/internal/models"
)

var (
	rowsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "valuation_ingest_rows_total",
		Help: "Total number of rows accepted for ingestion",
	})

	rowsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "valuation_ingest_rows_processed_total",
		Help: "Total number of rows written by workers",
	})

	rowsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "valuation_ingest_rows_failed_total",
		Help: "Total number of rows that failed to write",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "valuation_ingest_queue_depth",
		Help: "Current depth of the ingestion queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "valuation_ingest_batch_duration_seconds",
		Help:    "Duration of batch inserts to Postgres",
		Buckets: prometheus.DefBuckets,
	})

	rowsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "valuation_ingest_rows_dropped_total",
		Help: "Total number of rows dropped during shutdown",
	})
)

// BulkWriter is the persistence surface the pool writes through.
type BulkWriter interface {
	InsertBoxScores(ctx context.Context, rows []models.BoxScoreRow) (int64, error)
	InsertGameResults(ctx context.Context, games []models.GameResult) (int64, error)
}

// Job is one ingested row; exactly one of BoxScore or Game is set.
type Job struct {
	BoxScore *models.BoxScoreRow
	Game     *models.GameResult
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Writer        BulkWriter
	Logger        *zap.Logger
}

// Pool manages the ingestion workers.
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

// NewPool creates a worker pool.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop gracefully shuts down the pool, flushing queued rows.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	close(p.jobQueue)
	p.wg.Wait()
	p.cancel()
	p.logger.Info("Worker pool stopped")
}

// EnqueueBoxScore queues a box-score row for insertion.
func (p *Pool) EnqueueBoxScore(row models.BoxScoreRow) bool {
	return p.enqueue(Job{BoxScore: &row})
}

// EnqueueGame queues a game result for insertion.
func (p *Pool) EnqueueGame(game models.GameResult) bool {
	return p.enqueue(Job{Game: &game})
}

func (p *Pool) enqueue(job Job) (ok bool) {
	// Protect against sending on a closed channel during shutdown.
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue row (pool stopped)", "error", r)
			rowsDropped.Inc()
			ok = false
		}
	}()

	select {
	case p.jobQueue <- job:
		rowsIngested.Inc()
		return true
	case <-p.ctx.Done():
		p.logger.Warn("Worker pool context canceled, dropping row")
		rowsDropped.Inc()
		return false
	}
}

// QueueDepth returns the current queue size.
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker drains the queue in batches, flushing on size or on the ticker.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.writeBatch(batch); err != nil {
			p.logger.Errorw("Batch write failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			rowsFailed.Add(float64(len(batch)))
		} else {
			rowsProcessed.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// writeBatch splits the batch by row kind and writes each side in one
// round trip.
func (p *Pool) writeBatch(batch []Job) error {
	var boxScores []models.BoxScoreRow
	var games []models.GameResult
	for _, job := range batch {
		switch {
		case job.BoxScore != nil:
			boxScores = append(boxScores, *job.BoxScore)
		case job.Game != nil:
			games = append(games, *job.Game)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if len(boxScores) > 0 {
		inserted, err := p.config.Writer.InsertBoxScores(ctx, boxScores)
		if err != nil {
			return err
		}
		if dup := int64(len(boxScores)) - inserted; dup > 0 {
			p.logger.Debugw("Skipped duplicate box scores", "count", dup)
		}
	}
	if len(games) > 0 {
		if _, err := p.config.Writer.InsertGameResults(ctx, games); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
