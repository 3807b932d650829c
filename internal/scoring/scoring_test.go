package scoring

import (
	"math"
	"testing"

	"github.com/fantacourt/valuation-api/internal/models"
)

func TestScoreExactScenario(t *testing.T) {
	// 25 pts, 10 drb, 0 orb, 8 ast, 2 stl, 1 blk, 3 tov, started, win,
	// 2 made threes, FGA-FGM = 10, FTA-FTM = 2, 2 fouls. Ten total boards
	// with 25 points also triggers the +5 double-double bonus:
	// (25 + 10 + 0 + 12 + 3 - 4.5 + 1.5 + 1 - 10 - 2 + 5) * 1.05 = 43.05
	row := models.BoxScoreRow{
		Points:    25,
		DefReb:    10,
		TotReb:    10,
		Assists:   8,
		Steals:    2,
		Blocks:    1,
		Turnovers: 3,
		Started:   true,
		Win:       true,
		ThreeMade: 2,
		FGMade:    8,
		FGAtt:     18,
		FTMade:    7,
		FTAtt:     9,
		Fouls:     2,
	}

	got := Score(row)
	if math.Abs(got-43.05) > 1e-9 {
		t.Fatalf("Score() = %v, want 43.05", got)
	}
}

func TestScoreThresholds(t *testing.T) {
	tests := []struct {
		name string
		row  models.BoxScoreRow
		want float64
	}{
		{
			name: "three threes trigger first bonus only",
			row:  models.BoxScoreRow{ThreeMade: 3},
			want: 3,
		},
		{
			name: "five threes stack all bonuses",
			row:  models.BoxScoreRow{ThreeMade: 5},
			want: 5,
		},
		{
			name: "double double points and assists",
			row:  models.BoxScoreRow{Points: 10, Assists: 10},
			want: 10 + 15 + 5,
		},
		{
			name: "double double requires ten not nine",
			row:  models.BoxScoreRow{Points: 10, Assists: 9},
			want: 10 + 13.5,
		},
		{
			name: "foul out malus above five fouls",
			row:  models.BoxScoreRow{Fouls: 6},
			want: -5,
		},
		{
			name: "five fouls carry no malus",
			row:  models.BoxScoreRow{Fouls: 5},
			want: 0,
		},
		{
			name: "missed shots penalized",
			row:  models.BoxScoreRow{FGAtt: 5, FGMade: 2, FTAtt: 2, FTMade: 1, Points: 5},
			want: 5 - 3 - 1,
		},
		{
			name: "win multiplier",
			row:  models.BoxScoreRow{Points: 20, Win: true},
			want: 21,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.row); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreZeroRow(t *testing.T) {
	// A row whose malformed fields were coerced to zero scores as zero,
	// never errors.
	if got := Score(models.BoxScoreRow{}); got != 0 {
		t.Fatalf("Score(zero row) = %v, want 0", got)
	}
}

func TestGain(t *testing.T) {
	got := Gain(10.0, models.Float64Ptr(20.0))
	if math.Abs(got-0.05) > 1e-12 {
		t.Fatalf("Gain(10, 20) = %v, want 0.05", got)
	}

	for _, v := range []float64{0, 4, 10, 99.5} {
		if got := Gain(v, nil); got != DNPGain {
			t.Fatalf("Gain(%v, nil) = %v, want %v", v, got, DNPGain)
		}
	}
}
