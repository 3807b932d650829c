package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fantacourt/valuation-api/internal/models"
)

// Fixtures, initial values, status and lineup tables are reference data:
// each upload replaces the previous snapshot, fixtures and ratings scoped
// to one season, availability tables globally (they describe "now").

// ReplaceFixtures swaps the season calendar.
func (s *Store) ReplaceFixtures(ctx context.Context, season int, fixtures []models.Fixture) error {
	return s.replace(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM fixtures WHERE season = $1`, season); err != nil {
			return fmt.Errorf("clearing fixtures: %w", err)
		}
		for _, f := range fixtures {
			if _, err := tx.Exec(ctx,
				`INSERT INTO fixtures (season, game_date, team_home, team_visitor) VALUES ($1,$2,$3,$4)`,
				season, f.Date, f.TeamHome, f.TeamVisitor); err != nil {
				return fmt.Errorf("inserting fixture: %w", err)
			}
		}
		return nil
	})
}

// LoadFixtures returns the season calendar ordered by date.
func (s *Store) LoadFixtures(ctx context.Context, season int) ([]models.Fixture, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT season, game_date, team_home, team_visitor FROM fixtures
		 WHERE season = $1 ORDER BY game_date`, season)
	if err != nil {
		return nil, fmt.Errorf("querying fixtures: %w", err)
	}
	defer rows.Close()

	var out []models.Fixture
	for rows.Next() {
		var f models.Fixture
		if err := rows.Scan(&f.Season, &f.Date, &f.TeamHome, &f.TeamVisitor); err != nil {
			return nil, fmt.Errorf("scanning fixture: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ReplaceInitialValues swaps the season's rating snapshot.
func (s *Store) ReplaceInitialValues(ctx context.Context, season int, values []models.InitialValue) error {
	return s.replace(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM initial_values WHERE season = $1`, season); err != nil {
			return fmt.Errorf("clearing initial_values: %w", err)
		}
		for _, v := range values {
			if _, err := tx.Exec(ctx,
				`INSERT INTO initial_values (season, athlete_external_id, position, initial_value)
				 VALUES ($1,$2,$3,$4)`,
				season, v.AthleteExternalID, v.Position, v.Value); err != nil {
				return fmt.Errorf("inserting initial value: %w", err)
			}
		}
		return nil
	})
}

// LoadInitialValues returns the season's rating snapshot.
func (s *Store) LoadInitialValues(ctx context.Context, season int) ([]models.InitialValue, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT season, athlete_external_id, position, initial_value
		 FROM initial_values WHERE season = $1`, season)
	if err != nil {
		return nil, fmt.Errorf("querying initial_values: %w", err)
	}
	defer rows.Close()

	var out []models.InitialValue
	for rows.Next() {
		var v models.InitialValue
		if err := rows.Scan(&v.Season, &v.AthleteExternalID, &v.Position, &v.Value); err != nil {
			return nil, fmt.Errorf("scanning initial value: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ReplaceStatuses swaps the availability snapshot.
func (s *Store) ReplaceStatuses(ctx context.Context, records []models.StatusRecord) error {
	return s.replace(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM player_status`); err != nil {
			return fmt.Errorf("clearing player_status: %w", err)
		}
		for _, r := range records {
			if _, err := tx.Exec(ctx,
				`INSERT INTO player_status (athlete_id, status_text) VALUES ($1,$2)`,
				r.AthleteID, r.StatusText); err != nil {
				return fmt.Errorf("inserting status: %w", err)
			}
		}
		return nil
	})
}

// LoadStatuses returns the current availability snapshot.
func (s *Store) LoadStatuses(ctx context.Context) ([]models.StatusRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT athlete_id, status_text FROM player_status`)
	if err != nil {
		return nil, fmt.Errorf("querying player_status: %w", err)
	}
	defer rows.Close()

	var out []models.StatusRecord
	for rows.Next() {
		var r models.StatusRecord
		if err := rows.Scan(&r.AthleteID, &r.StatusText); err != nil {
			return nil, fmt.Errorf("scanning status: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReplaceLineups swaps the projected-lineup snapshot.
func (s *Store) ReplaceLineups(ctx context.Context, entries []models.LineupEntry) error {
	return s.replace(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM lineups`); err != nil {
			return fmt.Errorf("clearing lineups: %w", err)
		}
		for _, e := range entries {
			if _, err := tx.Exec(ctx,
				`INSERT INTO lineups (athlete_id, status_text) VALUES ($1,$2)`,
				e.AthleteID, e.StatusText); err != nil {
				return fmt.Errorf("inserting lineup entry: %w", err)
			}
		}
		return nil
	})
}

// LoadLineups returns the current projected-lineup snapshot.
func (s *Store) LoadLineups(ctx context.Context) ([]models.LineupEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT athlete_id, status_text FROM lineups`)
	if err != nil {
		return nil, fmt.Errorf("querying lineups: %w", err)
	}
	defer rows.Close()

	var out []models.LineupEntry
	for rows.Next() {
		var e models.LineupEntry
		if err := rows.Scan(&e.AthleteID, &e.StatusText); err != nil {
			return nil, fmt.Errorf("scanning lineup entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// replace runs fn inside a transaction.
func (s *Store) replace(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
