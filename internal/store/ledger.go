package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fantacourt/valuation-api/internal/models"
)

// ReplaceLedger swaps the season's fanta ledger for the freshly computed
// one. The ledger is the largest replaced table, so the rows go in with
// the COPY protocol instead of row-at-a-time inserts.
func (s *Store) ReplaceLedger(ctx context.Context, season int, entries []models.LedgerEntry) error {
	return s.replace(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM fanta_ledger WHERE season = $1`, season); err != nil {
			return fmt.Errorf("clearing fanta_ledger: %w", err)
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"fanta_ledger"},
			[]string{"season", "game_id", "athlete_id", "athlete_name", "team",
				"opponent_team", "position", "game_date", "started",
				"fanta_score", "value_before", "gain", "value_after"},
			pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
				e := entries[i]
				return []any{season, e.GameID, e.AthleteID, e.AthleteName, e.Team,
					e.OpponentTeam, e.Position, e.Date, e.Started,
					e.FantaScore, e.ValueBefore, e.Gain, e.ValueAfter}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copying fanta_ledger rows: %w", err)
		}
		return nil
	})
}

// LoadLedger returns the full season ledger ordered for the recurrence
// invariant check: athlete, then date, then game id.
func (s *Store) LoadLedger(ctx context.Context, season int) ([]models.LedgerEntry, error) {
	return s.queryLedger(ctx,
		`SELECT season, game_id, athlete_id, athlete_name, team, opponent_team,
			position, game_date, started, fanta_score, value_before, gain, value_after
		 FROM fanta_ledger WHERE season = $1
		 ORDER BY athlete_id, game_date, game_id`, season)
}

// LoadLedgerForAthlete returns one athlete's season ledger in date order.
func (s *Store) LoadLedgerForAthlete(ctx context.Context, season int, athleteID string) ([]models.LedgerEntry, error) {
	return s.queryLedger(ctx,
		`SELECT season, game_id, athlete_id, athlete_name, team, opponent_team,
			position, game_date, started, fanta_score, value_before, gain, value_after
		 FROM fanta_ledger WHERE season = $1 AND athlete_id = $2
		 ORDER BY game_date, game_id`, season, athleteID)
}

func (s *Store) queryLedger(ctx context.Context, sql string, args ...any) ([]models.LedgerEntry, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying fanta_ledger: %w", err)
	}
	defer rows.Close()

	var out []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.Season, &e.GameID, &e.AthleteID, &e.AthleteName,
			&e.Team, &e.OpponentTeam, &e.Position, &e.Date, &e.Started,
			&e.FantaScore, &e.ValueBefore, &e.Gain, &e.ValueAfter); err != nil {
			return nil, fmt.Errorf("scanning fanta_ledger row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ReplacePredictions swaps the season's forecasts.
func (s *Store) ReplacePredictions(ctx context.Context, season int, preds []models.Prediction) error {
	return s.replace(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM predictions WHERE season = $1`, season); err != nil {
			return fmt.Errorf("clearing predictions: %w", err)
		}
		for _, p := range preds {
			if _, err := tx.Exec(ctx,
				`INSERT INTO predictions (season, athlete_id, predicted_score, predicted_gain)
				 VALUES ($1,$2,$3,$4)`,
				season, p.AthleteID, p.PredictedScore, p.PredictedGain); err != nil {
				return fmt.Errorf("inserting prediction: %w", err)
			}
		}
		return nil
	})
}

// LoadPredictions returns the season's forecasts ordered by athlete.
func (s *Store) LoadPredictions(ctx context.Context, season int) ([]models.Prediction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT athlete_id, predicted_score, predicted_gain
		 FROM predictions WHERE season = $1 ORDER BY athlete_id`, season)
	if err != nil {
		return nil, fmt.Errorf("querying predictions: %w", err)
	}
	defer rows.Close()

	var out []models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(&p.AthleteID, &p.PredictedScore, &p.PredictedGain); err != nil {
			return nil, fmt.Errorf("scanning prediction: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
