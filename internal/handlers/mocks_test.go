package handlers

import (
	"context"

	"github.com/fantacourt/valuation-api/internal/cache"
	"github.com/fantacourt/valuation-api/internal/engine"
	"github.com/fantacourt/valuation-api/internal/models"
)

// MockQueue implements IngestQueue with overridable function fields.
type MockQueue struct {
	EnqueueBoxScoreFunc func(row models.BoxScoreRow) bool
	EnqueueGameFunc     func(game models.GameResult) bool

	boxScores []models.BoxScoreRow
	games     []models.GameResult
}

func (m *MockQueue) EnqueueBoxScore(row models.BoxScoreRow) bool {
	m.boxScores = append(m.boxScores, row)
	if m.EnqueueBoxScoreFunc != nil {
		return m.EnqueueBoxScoreFunc(row)
	}
	return true
}

func (m *MockQueue) EnqueueGame(game models.GameResult) bool {
	m.games = append(m.games, game)
	if m.EnqueueGameFunc != nil {
		return m.EnqueueGameFunc(game)
	}
	return true
}

func (m *MockQueue) QueueDepth() int { return len(m.boxScores) + len(m.games) }

// MockStore implements Store with overridable function fields.
type MockStore struct {
	ReplaceFixturesFunc      func(ctx context.Context, season int, fixtures []models.Fixture) error
	ReplaceInitialValuesFunc func(ctx context.Context, season int, values []models.InitialValue) error
	ReplaceStatusesFunc      func(ctx context.Context, records []models.StatusRecord) error
	ReplaceLineupsFunc       func(ctx context.Context, entries []models.LineupEntry) error
	LoadLedgerFunc           func(ctx context.Context, season int, athleteID string) ([]models.LedgerEntry, error)
	LoadPredictionsFunc      func(ctx context.Context, season int) ([]models.Prediction, error)
	LoadFixturesFunc         func(ctx context.Context, season int) ([]models.Fixture, error)
	PingFunc                 func(ctx context.Context) error
}

func (m *MockStore) ReplaceFixtures(ctx context.Context, season int, fixtures []models.Fixture) error {
	if m.ReplaceFixturesFunc != nil {
		return m.ReplaceFixturesFunc(ctx, season, fixtures)
	}
	return nil
}

func (m *MockStore) ReplaceInitialValues(ctx context.Context, season int, values []models.InitialValue) error {
	if m.ReplaceInitialValuesFunc != nil {
		return m.ReplaceInitialValuesFunc(ctx, season, values)
	}
	return nil
}

func (m *MockStore) ReplaceStatuses(ctx context.Context, records []models.StatusRecord) error {
	if m.ReplaceStatusesFunc != nil {
		return m.ReplaceStatusesFunc(ctx, records)
	}
	return nil
}

func (m *MockStore) ReplaceLineups(ctx context.Context, entries []models.LineupEntry) error {
	if m.ReplaceLineupsFunc != nil {
		return m.ReplaceLineupsFunc(ctx, entries)
	}
	return nil
}

func (m *MockStore) LoadLedgerForAthlete(ctx context.Context, season int, athleteID string) ([]models.LedgerEntry, error) {
	if m.LoadLedgerFunc != nil {
		return m.LoadLedgerFunc(ctx, season, athleteID)
	}
	return nil, nil
}

func (m *MockStore) LoadPredictions(ctx context.Context, season int) ([]models.Prediction, error) {
	if m.LoadPredictionsFunc != nil {
		return m.LoadPredictionsFunc(ctx, season)
	}
	return nil, nil
}

func (m *MockStore) LoadFixtures(ctx context.Context, season int) ([]models.Fixture, error) {
	if m.LoadFixturesFunc != nil {
		return m.LoadFixturesFunc(ctx, season)
	}
	return nil, nil
}

func (m *MockStore) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// MockCache implements PredictionCache with overridable function fields.
type MockCache struct {
	GetPredictionsFunc func(ctx context.Context, season int) ([]models.Prediction, error)
	LastRunFunc        func(ctx context.Context, season int) (*cache.RunRecord, error)
	HealthCheckFunc    func(ctx context.Context) error
}

func (m *MockCache) GetPredictions(ctx context.Context, season int) ([]models.Prediction, error) {
	if m.GetPredictionsFunc != nil {
		return m.GetPredictionsFunc(ctx, season)
	}
	return nil, nil
}

func (m *MockCache) LastRun(ctx context.Context, season int) (*cache.RunRecord, error) {
	if m.LastRunFunc != nil {
		return m.LastRunFunc(ctx, season)
	}
	return nil, nil
}

func (m *MockCache) HealthCheck(ctx context.Context) error {
	if m.HealthCheckFunc != nil {
		return m.HealthCheckFunc(ctx)
	}
	return nil
}

// MockRunner implements Runner with an overridable function field.
type MockRunner struct {
	RunFunc func(ctx context.Context, season int) (*engine.Result, error)
}

func (m *MockRunner) Run(ctx context.Context, season int) (*engine.Result, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, season)
	}
	return &engine.Result{Season: season}, nil
}
