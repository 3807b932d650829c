// Package store is the PostgreSQL persistence layer. Source facts
// (box scores, game results) are append-only; calendar, ratings,
// availability, ledger and prediction tables are replaced wholesale,
// always inside a transaction so readers never observe a half-written
// season.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store wraps the pgx connection pool with the typed accessors the rest
// of the service uses.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.SugaredLogger
}

// New connects to PostgreSQL and verifies the connection.
func New(ctx context.Context, url string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Store{pool: pool, logger: logger.Sugar()}, nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() { s.pool.Close() }

var schema = []string{
	`CREATE TABLE IF NOT EXISTS box_scores (
		game_id       TEXT NOT NULL,
		athlete_id    TEXT NOT NULL,
		athlete_name  TEXT NOT NULL DEFAULT '',
		team          TEXT NOT NULL DEFAULT '',
		game_date     TIMESTAMPTZ NOT NULL,
		season        INT NOT NULL,
		minutes       DOUBLE PRECISION NOT NULL DEFAULT 0,
		fg_made       INT NOT NULL DEFAULT 0,
		fg_att        INT NOT NULL DEFAULT 0,
		three_made    INT NOT NULL DEFAULT 0,
		three_att     INT NOT NULL DEFAULT 0,
		ft_made       INT NOT NULL DEFAULT 0,
		ft_att        INT NOT NULL DEFAULT 0,
		off_reb       INT NOT NULL DEFAULT 0,
		def_reb       INT NOT NULL DEFAULT 0,
		tot_reb       INT NOT NULL DEFAULT 0,
		ast           INT NOT NULL DEFAULT 0,
		stl           INT NOT NULL DEFAULT 0,
		blk           INT NOT NULL DEFAULT 0,
		tov           INT NOT NULL DEFAULT 0,
		fouls         INT NOT NULL DEFAULT 0,
		points        INT NOT NULL DEFAULT 0,
		plus_minus    INT NOT NULL DEFAULT 0,
		started       BOOLEAN NOT NULL DEFAULT FALSE,
		win           BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (game_id, athlete_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_box_scores_season ON box_scores (season)`,
	`CREATE TABLE IF NOT EXISTS game_results (
		game_id     TEXT PRIMARY KEY,
		game_date   TIMESTAMPTZ NOT NULL,
		team_winner TEXT NOT NULL,
		team_loser  TEXT NOT NULL,
		pts_winner  INT NOT NULL DEFAULT 0,
		pts_loser   INT NOT NULL DEFAULT 0,
		season      INT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_results_season ON game_results (season)`,
	`CREATE TABLE IF NOT EXISTS fixtures (
		season       INT NOT NULL,
		game_date    TIMESTAMPTZ NOT NULL,
		team_home    TEXT NOT NULL,
		team_visitor TEXT NOT NULL,
		PRIMARY KEY (season, game_date, team_home, team_visitor)
	)`,
	`CREATE TABLE IF NOT EXISTS initial_values (
		season              INT NOT NULL,
		athlete_external_id TEXT NOT NULL,
		position            TEXT NOT NULL DEFAULT '',
		initial_value       DOUBLE PRECISION,
		PRIMARY KEY (season, athlete_external_id)
	)`,
	`CREATE TABLE IF NOT EXISTS player_status (
		athlete_id  TEXT PRIMARY KEY,
		status_text TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS lineups (
		athlete_id  TEXT PRIMARY KEY,
		status_text TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS fanta_ledger (
		season        INT NOT NULL,
		game_id       TEXT NOT NULL,
		athlete_id    TEXT NOT NULL,
		athlete_name  TEXT NOT NULL DEFAULT '',
		team          TEXT NOT NULL DEFAULT '',
		opponent_team TEXT NOT NULL DEFAULT '',
		position      TEXT NOT NULL DEFAULT '',
		game_date     TIMESTAMPTZ NOT NULL,
		started       BOOLEAN NOT NULL DEFAULT FALSE,
		fanta_score   DOUBLE PRECISION,
		value_before  DOUBLE PRECISION NOT NULL,
		gain          DOUBLE PRECISION NOT NULL,
		value_after   DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (season, game_id, athlete_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fanta_ledger_athlete ON fanta_ledger (season, athlete_id, game_date)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		season          INT NOT NULL,
		athlete_id      TEXT NOT NULL,
		predicted_score DOUBLE PRECISION,
		predicted_gain  DOUBLE PRECISION,
		PRIMARY KEY (season, athlete_id)
	)`,
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement: %w", err)
		}
	}
	s.logger.Infow("Database schema ready", "statements", len(schema))
	return nil
}
