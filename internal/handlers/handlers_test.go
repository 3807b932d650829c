package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fantacourt/valuation-api/internal/cache"
	"github.com/fantacourt/valuation-api/internal/engine"
	"github.com/fantacourt/valuation-api/internal/models"
)

func newTestHandler(queue *MockQueue, store *MockStore, c *MockCache, runner *MockRunner) *Handler {
	if queue == nil {
		queue = &MockQueue{}
	}
	if store == nil {
		store = &MockStore{}
	}
	if c == nil {
		c = &MockCache{}
	}
	if runner == nil {
		runner = &MockRunner{}
	}
	return New(Config{
		WorkerPool: queue,
		Store:      store,
		Cache:      c,
		Engine:     runner,
		Season:     2026,
		Logger:     zap.NewNop(),
	})
}

func serve(h *Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.Routes([]string{"*"}).ServeHTTP(w, req)
	return w
}

func TestIngestBoxScores(t *testing.T) {
	queue := &MockQueue{}
	h := newTestHandler(queue, nil, nil, nil)

	body := `[
		{"game_id":"g1","athlete_id":"p1","athlete_name":"Jayson Tatum","season":2026,"points":"25","started":true},
		{"game_id":"","athlete_id":"p2","season":2026}
	]`
	w := serve(h, "POST", "/api/v1/ingest/boxscores", body)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["accepted"].(float64) != 1 || resp["rejected"].(float64) != 1 {
		t.Errorf("response = %v, want 1 accepted / 1 rejected", resp)
	}
	if len(queue.boxScores) != 1 || queue.boxScores[0].Points != 25 {
		t.Errorf("queued rows = %+v, want one row with points 25", queue.boxScores)
	}
}

func TestIngestBoxScoresBadJSON(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)
	w := serve(h, "POST", "/api/v1/ingest/boxscores", `{"not":"an array"`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestIngestFixturesReplace(t *testing.T) {
	var gotSeason int
	var gotFixtures []models.Fixture
	store := &MockStore{
		ReplaceFixturesFunc: func(ctx context.Context, season int, fixtures []models.Fixture) error {
			gotSeason = season
			gotFixtures = fixtures
			return nil
		},
	}
	h := newTestHandler(nil, store, nil, nil)

	body := `[{"date":"2026-03-01T00:00:00Z","team_home":"Boston","team_visitor":"Miami"}]`
	w := serve(h, "POST", "/api/v1/ingest/fixtures?season=2027", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if gotSeason != 2027 {
		t.Errorf("season = %d, want 2027 from query parameter", gotSeason)
	}
	if len(gotFixtures) != 1 || gotFixtures[0].TeamHome != "Boston" {
		t.Errorf("fixtures = %+v", gotFixtures)
	}
}

func TestGetAthleteLedger(t *testing.T) {
	entries := []models.LedgerEntry{
		{GameID: "g1", AthleteID: "p1", ValueBefore: 25, Gain: 0.5, ValueAfter: 25.5},
	}
	store := &MockStore{
		LoadLedgerFunc: func(ctx context.Context, season int, athleteID string) ([]models.LedgerEntry, error) {
			if athleteID != "p1" {
				return nil, nil
			}
			return entries, nil
		},
	}
	h := newTestHandler(nil, store, nil, nil)

	w := serve(h, "GET", "/api/v1/players/p1/ledger", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	w = serve(h, "GET", "/api/v1/players/unknown/ledger", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status for unknown athlete = %d, want 404", w.Code)
	}
}

func TestGetPredictionsCacheHit(t *testing.T) {
	c := &MockCache{
		GetPredictionsFunc: func(ctx context.Context, season int) ([]models.Prediction, error) {
			return []models.Prediction{{AthleteID: "p1"}}, nil
		},
	}
	h := newTestHandler(nil, nil, c, nil)

	w := serve(h, "GET", "/api/v1/predictions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["source"] != "cache" {
		t.Errorf("source = %v, want cache", resp["source"])
	}
}

func TestGetPredictionsFallsBackToStore(t *testing.T) {
	c := &MockCache{
		GetPredictionsFunc: func(ctx context.Context, season int) ([]models.Prediction, error) {
			return nil, nil // miss
		},
	}
	store := &MockStore{
		LoadPredictionsFunc: func(ctx context.Context, season int) ([]models.Prediction, error) {
			return []models.Prediction{{AthleteID: "p1"}}, nil
		},
	}
	h := newTestHandler(nil, store, c, nil)

	w := serve(h, "GET", "/api/v1/predictions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["source"] != "store" {
		t.Errorf("source = %v, want store", resp["source"])
	}
}

func TestGetNextMatch(t *testing.T) {
	future := time.Now().AddDate(0, 0, 7)
	store := &MockStore{
		LoadFixturesFunc: func(ctx context.Context, season int) ([]models.Fixture, error) {
			return []models.Fixture{
				{Date: future, TeamHome: "Boston", TeamVisitor: "Miami", Season: season},
			}, nil
		},
	}
	h := newTestHandler(nil, store, nil, nil)

	w := serve(h, "GET", "/api/v1/teams/Boston/next-match", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var match models.NextMatch
	json.Unmarshal(w.Body.Bytes(), &match)
	if match.Opponent != "Miami" {
		t.Errorf("opponent = %q, want Miami", match.Opponent)
	}

	w = serve(h, "GET", "/api/v1/teams/Denver/next-match", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status for team without fixtures = %d, want 404", w.Code)
	}
}

func TestTriggerRun(t *testing.T) {
	tests := []struct {
		name           string
		runFunc        func(ctx context.Context, season int) (*engine.Result, error)
		expectedStatus int
	}{
		{
			name: "Success",
			runFunc: func(ctx context.Context, season int) (*engine.Result, error) {
				return &engine.Result{RunID: "run-1", Season: season, LedgerRows: 10}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "AlreadyRunning",
			runFunc: func(ctx context.Context, season int) (*engine.Result, error) {
				return nil, cache.ErrRunInProgress
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "MissingInputs",
			runFunc: func(ctx context.Context, season int) (*engine.Result, error) {
				return nil, engine.ErrMissingInputs
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "Failure",
			runFunc: func(ctx context.Context, season int) (*engine.Result, error) {
				return nil, errors.New("postgres down")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(nil, nil, nil, &MockRunner{RunFunc: tt.runFunc})
			w := serve(h, "POST", "/api/v1/runs", "")
			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestTriggerRunOutlivesRequestTimeout(t *testing.T) {
	runner := &MockRunner{
		RunFunc: func(ctx context.Context, season int) (*engine.Result, error) {
			if _, ok := ctx.Deadline(); ok {
				t.Error("run trigger must not inherit the request timeout")
			}
			return &engine.Result{RunID: "run-1", Season: season}, nil
		},
	}
	c := &MockCache{
		LastRunFunc: func(ctx context.Context, season int) (*cache.RunRecord, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("read routes must keep the request timeout")
			}
			return &cache.RunRecord{RunID: "run-1", Season: season}, nil
		},
	}
	h := newTestHandler(nil, nil, c, runner)

	if w := serve(h, "POST", "/api/v1/runs", ""); w.Code != http.StatusOK {
		t.Fatalf("trigger status = %d, want 200", w.Code)
	}
	if w := serve(h, "GET", "/api/v1/runs/last", ""); w.Code != http.StatusOK {
		t.Fatalf("last-run status = %d, want 200", w.Code)
	}
}

func TestGetLastRun(t *testing.T) {
	c := &MockCache{
		LastRunFunc: func(ctx context.Context, season int) (*cache.RunRecord, error) {
			if season == 2026 {
				return &cache.RunRecord{RunID: "run-9", Season: 2026, LedgerRows: 42}, nil
			}
			return nil, nil
		},
	}
	h := newTestHandler(nil, nil, c, nil)

	w := serve(h, "GET", "/api/v1/runs/last", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	w = serve(h, "GET", "/api/v1/runs/last?season=1999", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status without a recorded run = %d, want 404", w.Code)
	}
}

func TestReady(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)
	w := serve(h, "GET", "/readyz", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	broken := &MockStore{PingFunc: func(ctx context.Context) error { return errors.New("down") }}
	h = newTestHandler(nil, broken, nil, nil)
	w = serve(h, "GET", "/readyz", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status with postgres down = %d, want 503", w.Code)
	}
}
