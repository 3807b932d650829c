package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fantacourt/valuation-api/internal/models"
)

// InsertBoxScores appends box-score facts. A row already present for the
// same (game, athlete) pair is left untouched, so re-posting a scrape is
// harmless.
func (s *Store) InsertBoxScores(ctx context.Context, rows []models.BoxScoreRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`INSERT INTO box_scores (
			game_id, athlete_id, athlete_name, team, game_date, season,
			minutes, fg_made, fg_att, three_made, three_att, ft_made, ft_att,
			off_reb, def_reb, tot_reb, ast, stl, blk, tov, fouls, points,
			plus_minus, started, win
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
		ON CONFLICT (game_id, athlete_id) DO NOTHING`,
			r.GameID, r.AthleteID, r.AthleteName, r.Team, r.Date, r.Season,
			r.Minutes, r.FGMade, r.FGAtt, r.ThreeMade, r.ThreeAtt, r.FTMade, r.FTAtt,
			r.OffReb, r.DefReb, r.TotReb, r.Assists, r.Steals, r.Blocks, r.Turnovers,
			r.Fouls, r.Points, r.PlusMinus, r.Started, r.Win,
		)
	}
	return s.sendBatch(ctx, batch, "box_scores")
}

// InsertGameResults appends finished-game facts, skipping duplicates.
func (s *Store) InsertGameResults(ctx context.Context, games []models.GameResult) (int64, error) {
	if len(games) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, g := range games {
		batch.Queue(`INSERT INTO game_results (
			game_id, game_date, team_winner, team_loser, pts_winner, pts_loser, season
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (game_id) DO NOTHING`,
			g.GameID, g.Date, g.TeamWinner, g.TeamLoser, g.PtsWinner, g.PtsLoser, g.Season,
		)
	}
	return s.sendBatch(ctx, batch, "game_results")
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, table string) (int64, error) {
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("inserting into %s: %w", table, err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// LoadBoxScores returns all box-score rows for a season.
func (s *Store) LoadBoxScores(ctx context.Context, season int) ([]models.BoxScoreRow, error) {
	rows, err := s.pool.Query(ctx, `SELECT
		game_id, athlete_id, athlete_name, team, game_date, season,
		minutes, fg_made, fg_att, three_made, three_att, ft_made, ft_att,
		off_reb, def_reb, tot_reb, ast, stl, blk, tov, fouls, points,
		plus_minus, started, win
	FROM box_scores WHERE season = $1`, season)
	if err != nil {
		return nil, fmt.Errorf("querying box_scores: %w", err)
	}
	defer rows.Close()

	var out []models.BoxScoreRow
	for rows.Next() {
		var r models.BoxScoreRow
		if err := rows.Scan(
			&r.GameID, &r.AthleteID, &r.AthleteName, &r.Team, &r.Date, &r.Season,
			&r.Minutes, &r.FGMade, &r.FGAtt, &r.ThreeMade, &r.ThreeAtt, &r.FTMade, &r.FTAtt,
			&r.OffReb, &r.DefReb, &r.TotReb, &r.Assists, &r.Steals, &r.Blocks, &r.Turnovers,
			&r.Fouls, &r.Points, &r.PlusMinus, &r.Started, &r.Win,
		); err != nil {
			return nil, fmt.Errorf("scanning box_scores row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadGameResults returns all finished games for a season.
func (s *Store) LoadGameResults(ctx context.Context, season int) ([]models.GameResult, error) {
	rows, err := s.pool.Query(ctx, `SELECT
		game_id, game_date, team_winner, team_loser, pts_winner, pts_loser, season
	FROM game_results WHERE season = $1 ORDER BY game_date`, season)
	if err != nil {
		return nil, fmt.Errorf("querying game_results: %w", err)
	}
	defer rows.Close()

	var out []models.GameResult
	for rows.Next() {
		var g models.GameResult
		if err := rows.Scan(&g.GameID, &g.Date, &g.TeamWinner, &g.TeamLoser,
			&g.PtsWinner, &g.PtsLoser, &g.Season); err != nil {
			return nil, fmt.Errorf("scanning game_results row: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
