// Package forecast predicts each athlete's next-game fanta score and gain.
//
// The estimator is a weighted least squares regression of fanta score on
// one indicator per athlete, one indicator per opponent faced and a
// started indicator, with no intercept (the athlete indicators absorb it).
// Row weights decay with recency as 1/(1+gap_days) relative to each
// athlete's own most recent game, so the model tracks current form while
// sharing a single opponent-strength adjustment across all athletes.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/fantacourt/valuation-api/internal/models"
	"github.com/fantacourt/valuation-api/internal/scoring"
	"github.com/fantacourt/valuation-api/internal/status"
)

// ErrNoTrainingData is returned when the ledger holds no scored rows to
// fit on.
var ErrNoTrainingData = errors.New("forecast: no scored ledger rows to fit on")

// Model is a fitted gain-prediction model.
type Model struct {
	athleteCol  map[string]int
	opponentCol map[string]int // reference opponent is absent (coefficient 0)
	startedCol  int            // -1 when no training row started
	coef        *mat.VecDense
	chol        mat.Cholesky
	cholOK      bool
	pinv        *mat.Dense // pseudo-inverse of X'WX when the design is rank deficient
	sigma2      float64
}

// FrameRow is one athlete's next-match context: most recent team, current
// value, projected starter flag, availability tag and the opponent from
// the matchup resolver (empty when the team has no remaining fixture).
type FrameRow struct {
	AthleteID    string
	Team         string
	Opponent     string
	CurrentValue float64
	Started      bool
	Status       status.Tag
}

// Fit trains the model on the season ledger. Rows without a score (games
// the athlete did not play) carry no information about scoring level and
// are excluded; an athlete with no scored rows at all therefore cannot be
// a regression level and is simply absent from the fitted model.
func Fit(ledger []models.LedgerEntry, logger *zap.Logger) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Sugar()

	type trainRow struct {
		athlete  string
		opponent string
		started  bool
		score    float64
		date     time.Time
	}

	var rows []trainRow
	lastDate := make(map[string]time.Time)
	for _, e := range ledger {
		if e.FantaScore == nil || e.OpponentTeam == "" {
			continue
		}
		rows = append(rows, trainRow{
			athlete:  e.AthleteID,
			opponent: e.OpponentTeam,
			started:  e.Started,
			score:    *e.FantaScore,
			date:     e.Date,
		})
		if e.Date.After(lastDate[e.AthleteID]) {
			lastDate[e.AthleteID] = e.Date
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoTrainingData
	}

	// Column layout: athlete indicators, opponent indicators minus the
	// alphabetically-first opponent (reference level, required for full
	// rank without an intercept), then the started indicator. The started
	// column only exists when at least one training row started; an
	// all-zero column would make the normal equations singular.
	athletes := sortedKeys(lastDate)
	opponentSet := make(map[string]bool)
	for _, r := range rows {
		opponentSet[r.opponent] = true
	}
	opponents := sortedKeys(opponentSet)

	m := &Model{
		athleteCol:  make(map[string]int, len(athletes)),
		opponentCol: make(map[string]int, len(opponents)-1),
		startedCol:  -1,
	}
	for i, a := range athletes {
		m.athleteCol[a] = i
	}
	for i, o := range opponents[1:] {
		m.opponentCol[o] = len(athletes) + i
	}
	p := len(athletes) + len(opponents) - 1
	for _, r := range rows {
		if r.started {
			m.startedCol = p
			p++
			break
		}
	}

	// Every design row has at most three unit entries, so X'WX and X'Wy
	// accumulate directly from the column indices without materializing X.
	xtx := mat.NewSymDense(p, nil)
	xty := mat.NewVecDense(p, nil)
	weights := make([]float64, len(rows))
	for i, r := range rows {
		gapDays := lastDate[r.athlete].Sub(r.date).Hours() / 24
		w := 1.0 / (1.0 + gapDays)
		weights[i] = w

		cols := m.designCols(r.athlete, r.opponent, r.started)
		for _, ci := range cols {
			for _, cj := range cols {
				if cj >= ci {
					xtx.SetSym(ci, cj, xtx.At(ci, cj)+w)
				}
			}
			xty.SetVec(ci, xty.AtVec(ci)+w*r.score)
		}
	}

	if m.chol.Factorize(xtx) {
		m.cholOK = true
	} else {
		// Collinear columns can still arise from a valid ledger, e.g. an
		// athlete whose every game is a start against one opponent. Fall
		// back to the minimum-norm solution through the SVD
		// pseudo-inverse rather than failing the fit.
		pinv, err := pseudoInverse(xtx)
		if err != nil {
			return nil, fmt.Errorf("forecast: solving rank-deficient normal equations: %w", err)
		}
		m.pinv = pinv
		log.Warnw("Design matrix is rank deficient, solving via pseudo-inverse",
			"rows", len(rows),
			"params", p,
		)
	}
	m.coef = mat.NewVecDense(p, nil)
	if err := m.solveNormal(m.coef, xty); err != nil {
		return nil, fmt.Errorf("forecast: solving normal equations: %w", err)
	}

	// Weighted residual variance with the usual n-p degrees of freedom;
	// early in a season n-p can be non-positive, clamp to 1.
	var wrss float64
	for i, r := range rows {
		fitted := m.linearPredictor(r.athlete, r.opponent, r.started)
		resid := r.score - fitted
		wrss += weights[i] * resid * resid
	}
	dof := len(rows) - p
	if dof < 1 {
		dof = 1
	}
	m.sigma2 = wrss / float64(dof)

	log.Infow("Gain model fitted",
		"rows", len(rows),
		"athletes", len(athletes),
		"opponents", len(opponents),
		"sigma2", m.sigma2,
	)
	return m, nil
}

// Predict forecasts one prediction per frame row, in frame order. Rows
// whose athlete was not a fit level or whose team has no next fixture get
// nil score/gain ("no forecast available"), never zero. The point
// prediction is shrunk by the row's standard-error excess over the cohort
// mean, penalizing athletes whose forecast is less certain than average.
// An unavailable status forces the gain to the did-not-play decay.
func (m *Model) Predict(frame []FrameRow) []models.Prediction {
	type candidate struct {
		idx  int
		mean float64
		se   float64
	}

	var cands []candidate
	var seSum float64
	for i, row := range frame {
		if _, ok := m.athleteCol[row.AthleteID]; !ok {
			continue
		}
		if row.Opponent == "" {
			continue
		}
		mean := m.linearPredictor(row.AthleteID, row.Opponent, row.Started)
		se := m.predictionSE(row.AthleteID, row.Opponent, row.Started)
		cands = append(cands, candidate{idx: i, mean: mean, se: se})
		seSum += se
	}

	out := make([]models.Prediction, len(frame))
	for i, row := range frame {
		out[i] = models.Prediction{AthleteID: row.AthleteID}
	}
	if len(cands) == 0 {
		return out
	}
	meanSE := seSum / float64(len(cands))

	for _, c := range cands {
		row := frame[c.idx]
		score := c.mean - (c.se - meanSE)
		gain := scoring.Gain(row.CurrentValue, &score)
		if row.Status == status.Unavailable {
			gain = scoring.DNPGain
		}
		out[c.idx].PredictedScore = &score
		out[c.idx].PredictedGain = &gain
	}
	return out
}

// BuildFrame assembles the next-match frame: each athlete's most recent
// team and value from the ledger, opponent from the matchup resolver,
// starter flag from the lineup source (false when the athlete has no
// lineup record) and the parsed availability tag.
func BuildFrame(
	ledger []models.LedgerEntry,
	nextMatches map[string]models.NextMatch,
	statuses []models.StatusRecord,
	lineups []models.LineupEntry,
) []FrameRow {
	latest := make(map[string]models.LedgerEntry)
	for _, e := range ledger {
		cur, ok := latest[e.AthleteID]
		if !ok || e.Date.After(cur.Date) {
			latest[e.AthleteID] = e
		}
	}

	statusByID := make(map[string]string, len(statuses))
	for _, s := range statuses {
		statusByID[s.AthleteID] = s.StatusText
	}
	starterByID := make(map[string]bool, len(lineups))
	for _, l := range lineups {
		starterByID[l.AthleteID] = status.IsStarter(l.StatusText)
	}

	frame := make([]FrameRow, 0, len(latest))
	for _, id := range sortedKeys(latest) {
		e := latest[id]
		row := FrameRow{
			AthleteID:    id,
			Team:         e.Team,
			CurrentValue: e.ValueAfter,
			Started:      starterByID[id],
			Status:       status.Parse(statusByID[id]),
		}
		if nm, ok := nextMatches[e.Team]; ok {
			row.Opponent = nm.Opponent
		}
		frame = append(frame, row)
	}
	return frame
}

// designCols returns the non-zero design columns for one observation. The
// reference opponent and an opponent never seen in training contribute no
// column (zero effect).
func (m *Model) designCols(athlete, opponent string, started bool) []int {
	cols := make([]int, 0, 3)
	if c, ok := m.athleteCol[athlete]; ok {
		cols = append(cols, c)
	}
	if c, ok := m.opponentCol[opponent]; ok {
		cols = append(cols, c)
	}
	if started && m.startedCol >= 0 {
		cols = append(cols, m.startedCol)
	}
	return cols
}

// solveNormal solves (X'WX) dst = b, through the Cholesky factor when the
// design has full rank and the pseudo-inverse otherwise.
func (m *Model) solveNormal(dst, b *mat.VecDense) error {
	if m.cholOK {
		return m.chol.SolveVecTo(dst, b)
	}
	dst.MulVec(m.pinv, b)
	return nil
}

// pseudoInverse computes the Moore-Penrose inverse of a, zeroing singular
// values below the usual relative tolerance.
func pseudoInverse(a *mat.SymDense) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, errors.New("svd factorization failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	eps := math.Nextafter(1, 2) - 1
	tol := float64(len(s)) * s[0] * eps
	sInv := mat.NewDense(len(s), len(s), nil)
	for i, sv := range s {
		if sv > tol {
			sInv.Set(i, i, 1/sv)
		}
	}

	var pinv mat.Dense
	pinv.Product(&v, sInv, u.T())
	return &pinv, nil
}

func (m *Model) linearPredictor(athlete, opponent string, started bool) float64 {
	var sum float64
	for _, c := range m.designCols(athlete, opponent, started) {
		sum += m.coef.AtVec(c)
	}
	return sum
}

// predictionSE is the standard error of the predicted mean,
// sqrt(sigma2 * x' (X'WX)^-1 x), computed through solveNormal rather than
// forming the inverse.
func (m *Model) predictionSE(athlete, opponent string, started bool) float64 {
	p := m.coef.Len()
	x := mat.NewVecDense(p, nil)
	for _, c := range m.designCols(athlete, opponent, started) {
		x.SetVec(c, 1)
	}
	z := mat.NewVecDense(p, nil)
	if err := m.solveNormal(z, x); err != nil {
		return math.Inf(1)
	}
	return math.Sqrt(m.sigma2 * mat.Dot(x, z))
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
