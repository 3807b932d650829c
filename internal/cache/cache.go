// Package cache is the Redis layer: a read cache for published
// predictions, a mutex around engine runs and a small record of the last
// completed run.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fantacourt/valuation-api/internal/models"
)

const (
	predictionsKeyFmt = "valuation:predictions:%d"
	runLockKey        = "valuation:run:lock"
	lastRunKeyFmt     = "valuation:run:last:%d"

	predictionsTTL = 12 * time.Hour
	runLockTTL     = 15 * time.Minute
)

// ErrRunInProgress is returned by AcquireRunLock when another engine run
// holds the lock.
var ErrRunInProgress = errors.New("cache: a valuation run is already in progress")

// Cache wraps the Redis client with the service's typed operations.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, url string) (*Cache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &Cache{client: client}, nil
}

func (c *Cache) Close() error { return c.client.Close() }

// HealthCheck pings Redis.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// PublishPredictions caches the season's forecasts for read traffic.
func (c *Cache) PublishPredictions(ctx context.Context, season int, preds []models.Prediction) error {
	payload, err := json.Marshal(preds)
	if err != nil {
		return fmt.Errorf("marshaling predictions: %w", err)
	}
	key := fmt.Sprintf(predictionsKeyFmt, season)
	if err := c.client.Set(ctx, key, payload, predictionsTTL).Err(); err != nil {
		return fmt.Errorf("caching predictions: %w", err)
	}
	return nil
}

// GetPredictions returns the cached forecasts, or (nil, nil) on a cache
// miss so the caller can fall back to the store.
func (c *Cache) GetPredictions(ctx context.Context, season int) ([]models.Prediction, error) {
	key := fmt.Sprintf(predictionsKeyFmt, season)
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached predictions: %w", err)
	}
	var preds []models.Prediction
	if err := json.Unmarshal(payload, &preds); err != nil {
		return nil, fmt.Errorf("decoding cached predictions: %w", err)
	}
	return preds, nil
}

// InvalidatePredictions drops the cached forecasts for a season.
func (c *Cache) InvalidatePredictions(ctx context.Context, season int) error {
	return c.client.Del(ctx, fmt.Sprintf(predictionsKeyFmt, season)).Err()
}

// AcquireRunLock takes the engine mutex for the given run id. The lock
// expires on its own if a run dies without releasing it.
func (c *Cache) AcquireRunLock(ctx context.Context, runID string) error {
	ok, err := c.client.SetNX(ctx, runLockKey, runID, runLockTTL).Result()
	if err != nil {
		return fmt.Errorf("acquiring run lock: %w", err)
	}
	if !ok {
		return ErrRunInProgress
	}
	return nil
}

// ReleaseRunLock frees the engine mutex if this run still owns it.
func (c *Cache) ReleaseRunLock(ctx context.Context, runID string) error {
	current, err := c.client.Get(ctx, runLockKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading run lock: %w", err)
	}
	if current != runID {
		return nil
	}
	return c.client.Del(ctx, runLockKey).Err()
}

// RunRecord summarizes the last completed engine run for a season.
type RunRecord struct {
	RunID       string    `json:"run_id"`
	Season      int       `json:"season"`
	FinishedAt  time.Time `json:"finished_at"`
	LedgerRows  int       `json:"ledger_rows"`
	Predictions int       `json:"predictions"`
}

// RecordRun stores the last-run summary for a season.
func (c *Cache) RecordRun(ctx context.Context, rec RunRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling run record: %w", err)
	}
	key := fmt.Sprintf(lastRunKeyFmt, rec.Season)
	return c.client.Set(ctx, key, payload, 0).Err()
}

// LastRun returns the last-run summary, or (nil, nil) when no run has
// completed yet.
func (c *Cache) LastRun(ctx context.Context, season int) (*RunRecord, error) {
	payload, err := c.client.Get(ctx, fmt.Sprintf(lastRunKeyFmt, season)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading run record: %w", err)
	}
	var rec RunRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decoding run record: %w", err)
	}
	return &rec, nil
}
