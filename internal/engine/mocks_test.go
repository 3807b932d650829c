package engine

import (
	"context"

	"github.com/fantacourt/valuation-api/internal/cache"
	"github.com/fantacourt/valuation-api/internal/models"
)

// mockStore implements Store with overridable function fields; nil fields
// return empty data.
type mockStore struct {
	LoadBoxScoresFunc       func(ctx context.Context, season int) ([]models.BoxScoreRow, error)
	LoadGameResultsFunc     func(ctx context.Context, season int) ([]models.GameResult, error)
	LoadFixturesFunc        func(ctx context.Context, season int) ([]models.Fixture, error)
	LoadInitialValuesFunc   func(ctx context.Context, season int) ([]models.InitialValue, error)
	LoadStatusesFunc        func(ctx context.Context) ([]models.StatusRecord, error)
	LoadLineupsFunc         func(ctx context.Context) ([]models.LineupEntry, error)
	ReplaceLedgerFunc       func(ctx context.Context, season int, entries []models.LedgerEntry) error
	ReplacePredictionsFunc  func(ctx context.Context, season int, preds []models.Prediction) error

	replacedLedger      []models.LedgerEntry
	replacedPredictions []models.Prediction
	ledgerReplaced      bool
	predictionsReplaced bool
}

func (m *mockStore) LoadBoxScores(ctx context.Context, season int) ([]models.BoxScoreRow, error) {
	if m.LoadBoxScoresFunc != nil {
		return m.LoadBoxScoresFunc(ctx, season)
	}
	return nil, nil
}

func (m *mockStore) LoadGameResults(ctx context.Context, season int) ([]models.GameResult, error) {
	if m.LoadGameResultsFunc != nil {
		return m.LoadGameResultsFunc(ctx, season)
	}
	return nil, nil
}

func (m *mockStore) LoadFixtures(ctx context.Context, season int) ([]models.Fixture, error) {
	if m.LoadFixturesFunc != nil {
		return m.LoadFixturesFunc(ctx, season)
	}
	return nil, nil
}

func (m *mockStore) LoadInitialValues(ctx context.Context, season int) ([]models.InitialValue, error) {
	if m.LoadInitialValuesFunc != nil {
		return m.LoadInitialValuesFunc(ctx, season)
	}
	return nil, nil
}

func (m *mockStore) LoadStatuses(ctx context.Context) ([]models.StatusRecord, error) {
	if m.LoadStatusesFunc != nil {
		return m.LoadStatusesFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) LoadLineups(ctx context.Context) ([]models.LineupEntry, error) {
	if m.LoadLineupsFunc != nil {
		return m.LoadLineupsFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) ReplaceLedger(ctx context.Context, season int, entries []models.LedgerEntry) error {
	m.ledgerReplaced = true
	m.replacedLedger = entries
	if m.ReplaceLedgerFunc != nil {
		return m.ReplaceLedgerFunc(ctx, season, entries)
	}
	return nil
}

func (m *mockStore) ReplacePredictions(ctx context.Context, season int, preds []models.Prediction) error {
	m.predictionsReplaced = true
	m.replacedPredictions = preds
	if m.ReplacePredictionsFunc != nil {
		return m.ReplacePredictionsFunc(ctx, season, preds)
	}
	return nil
}

// mockCache implements CacheClient with overridable function fields.
type mockCache struct {
	AcquireRunLockFunc      func(ctx context.Context, runID string) error
	ReleaseRunLockFunc      func(ctx context.Context, runID string) error
	PublishPredictionsFunc  func(ctx context.Context, season int, preds []models.Prediction) error
	RecordRunFunc           func(ctx context.Context, rec cache.RunRecord) error

	acquired  bool
	released  bool
	published bool
	recorded  *cache.RunRecord
}

func (m *mockCache) AcquireRunLock(ctx context.Context, runID string) error {
	m.acquired = true
	if m.AcquireRunLockFunc != nil {
		return m.AcquireRunLockFunc(ctx, runID)
	}
	return nil
}

func (m *mockCache) ReleaseRunLock(ctx context.Context, runID string) error {
	m.released = true
	if m.ReleaseRunLockFunc != nil {
		return m.ReleaseRunLockFunc(ctx, runID)
	}
	return nil
}

func (m *mockCache) PublishPredictions(ctx context.Context, season int, preds []models.Prediction) error {
	m.published = true
	if m.PublishPredictionsFunc != nil {
		return m.PublishPredictionsFunc(ctx, season, preds)
	}
	return nil
}

func (m *mockCache) RecordRun(ctx context.Context, rec cache.RunRecord) error {
	m.recorded = &rec
	if m.RecordRunFunc != nil {
		return m.RecordRunFunc(ctx, rec)
	}
	return nil
}
