// Package scoring implements the fixed fanta scoring rule and the value
// gain formula. Both are pure functions with no error cases: every numeric
// field of a box-score row is already coerced to zero at the ingestion
// boundary, and a game an athlete did not play is represented by a nil
// score upstream.
package scoring

import "github.com/fantacourt/valuation-api/internal/models"

// DNPGain is the flat value decay applied for a game the athlete did not
// play.
const DNPGain = -0.1

// Score computes the fanta score of one played game.
//
// Rule set (docs.dunkest.com scoring, current revision): the three-point
// bonuses trigger at >= 3/4/5 made threes and the double-double bonuses at
// >= 10, not the > 2/9 variants that older revisions of the rule used.
func Score(row models.BoxScoreRow) float64 {
	s := 1.0*float64(row.Points) +
		1.0*float64(row.DefReb) +
		1.25*float64(row.OffReb) +
		1.5*float64(row.Assists) +
		1.5*float64(row.Steals) +
		1.5*float64(row.Blocks) -
		1.5*float64(row.Turnovers) +
		1.0*b2f(row.Started) +
		3.0*b2f(row.ThreeMade >= 3) +
		1.0*b2f(row.ThreeMade >= 4) +
		1.0*b2f(row.ThreeMade >= 5) -
		1.0*float64(row.FGAtt-row.FGMade) -
		1.0*float64(row.FTAtt-row.FTMade) +
		5.0*b2f(row.Points >= 10 && row.Assists >= 10) +
		5.0*b2f(row.Points >= 10 && row.TotReb >= 10) -
		5.0*b2f(row.Fouls > 5)

	return s * (1 + 0.05*b2f(row.Win))
}

// Gain computes the value delta produced by one game. A nil score means
// the athlete did not play and the value decays by a flat DNPGain.
func Gain(valueBefore float64, score *float64) float64 {
	if score == nil {
		return DNPGain
	}
	return 0.025*(*score) - 0.045*valueBefore
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
