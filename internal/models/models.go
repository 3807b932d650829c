// Package models defines the data shapes exchanged between the ingestion
// boundary, the valuation engine and the persistence layer. BoxScoreRow,
// GameResult and Fixture are append-only facts; LedgerEntry and Prediction
// are fully recomputed and replaced wholesale on every engine run.
package models

import "time"

// BoxScoreRow is one athlete's counting stats for one game, as delivered
// by the external box-score source.
type BoxScoreRow struct {
	GameID      string    `json:"game_id" validate:"required"`
	AthleteID   string    `json:"athlete_id" validate:"required"`
	AthleteName string    `json:"athlete_name"`
	Team        string    `json:"team"`
	Date        time.Time `json:"date"`
	Season      int       `json:"season" validate:"required"`

	Minutes   float64 `json:"minutes"`
	FGMade    int     `json:"fg_made"`
	FGAtt     int     `json:"fg_att"`
	ThreeMade int     `json:"three_made"`
	ThreeAtt  int     `json:"three_att"`
	FTMade    int     `json:"ft_made"`
	FTAtt     int     `json:"ft_att"`
	OffReb    int     `json:"off_reb"`
	DefReb    int     `json:"def_reb"`
	TotReb    int     `json:"tot_reb"`
	Assists   int     `json:"ast"`
	Steals    int     `json:"stl"`
	Blocks    int     `json:"blk"`
	Turnovers int     `json:"tov"`
	Fouls     int     `json:"fouls"`
	Points    int     `json:"points"`
	PlusMinus int     `json:"plus_minus"`
	Started   bool    `json:"started"`
	Win       bool    `json:"win"`
}

// GameResult is the recorded outcome of a finished game.
type GameResult struct {
	GameID     string    `json:"game_id" validate:"required"`
	Date       time.Time `json:"date"`
	TeamWinner string    `json:"team_winner" validate:"required"`
	TeamLoser  string    `json:"team_loser" validate:"required"`
	PtsWinner  int       `json:"pts_winner"`
	PtsLoser   int       `json:"pts_loser"`
	Season     int       `json:"season" validate:"required"`
}

// Fixture is one scheduled game from the season calendar.
type Fixture struct {
	Date        time.Time `json:"date" validate:"required"`
	TeamHome    string    `json:"team_home" validate:"required"`
	TeamVisitor string    `json:"team_visitor" validate:"required"`
	Season      int       `json:"season"`
}

// InitialValue is the per-season seed value and position for an athlete,
// keyed in the rating source's own identifier namespace. Value may be nil
// when the source lists the athlete without a rating; the recurrence then
// falls back to its bootstrap chain.
type InitialValue struct {
	AthleteExternalID string   `json:"athlete_external_id" validate:"required"`
	Position          string   `json:"position"`
	Value             *float64 `json:"initial_value"`
	Season            int      `json:"season"`
}

// StatusRecord carries the current raw injury/availability text for an
// athlete. Absence of a record means the athlete is expected to play.
type StatusRecord struct {
	AthleteID  string `json:"athlete_id" validate:"required"`
	StatusText string `json:"status_text"`
}

// LineupEntry is one row of the projected-lineup source. StatusText values
// containing "starter" mark the athlete as a projected starter.
type LineupEntry struct {
	AthleteID  string `json:"athlete_id" validate:"required"`
	StatusText string `json:"status_text"`
}

// LedgerEntry is one row of the fanta ledger: the valuation of one athlete
// across one game. FantaScore is nil when the athlete did not play that
// game. For consecutive entries of the same athlete ordered by date,
// ValueAfter always equals the next entry's ValueBefore, and ValueAfter
// never drops below the value floor.
type LedgerEntry struct {
	GameID       string    `json:"game_id"`
	AthleteID    string    `json:"athlete_id"`
	AthleteName  string    `json:"athlete_name"`
	Team         string    `json:"team"`
	OpponentTeam string    `json:"opponent_team"`
	Position     string    `json:"position"`
	Season       int       `json:"season"`
	Date         time.Time `json:"date"`
	Started      bool      `json:"started"`
	FantaScore   *float64  `json:"fanta_score"`
	ValueBefore  float64   `json:"value_before"`
	Gain         float64   `json:"gain"`
	ValueAfter   float64   `json:"value_after"`
}

// Prediction is the forecast for an athlete's next game. Score and Gain
// are nil when no forecast is available (no scored history, or no
// remaining fixture for the athlete's team); callers must surface that as
// "no forecast", never as zero.
type Prediction struct {
	AthleteID      string   `json:"athlete_id"`
	PredictedScore *float64 `json:"predicted_score"`
	PredictedGain  *float64 `json:"predicted_gain"`
}

// NextMatch is a team's nearest upcoming fixture.
type NextMatch struct {
	Team     string    `json:"team"`
	Opponent string    `json:"opponent"`
	Date     time.Time `json:"date"`
}

// Float64Ptr is a small helper for literal optional scores in callers and
// tests.
func Float64Ptr(v float64) *float64 { return &v }
