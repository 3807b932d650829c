package valuation

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fantacourt/valuation-api/internal/identity"
	"github.com/fantacourt/valuation-api/internal/models"
	"github.com/fantacourt/valuation-api/internal/scoring"
)

// PipelineConfig configures the season valuation pipeline.
type PipelineConfig struct {
	// Workers bounds the number of athlete folds run concurrently.
	Workers  int
	Resolver identity.Resolver
	Logger   *zap.Logger
}

// Pipeline recomputes the full fanta ledger for one season from the
// current box-score / game-result / initial-value snapshot. Re-running on
// identical inputs produces an identical ledger: athletes fold in
// isolation and the output ordering is deterministic.
type Pipeline struct {
	workers  int
	resolver identity.Resolver
	logger   *zap.SugaredLogger
}

// Inputs is the read-only season snapshot a run operates on.
type Inputs struct {
	Season        int
	BoxScores     []models.BoxScoreRow
	Games         []models.GameResult
	InitialValues []models.InitialValue
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.Resolver == nil {
		cfg.Resolver = identity.NewResolver(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Pipeline{
		workers:  cfg.Workers,
		resolver: cfg.Resolver,
		logger:   cfg.Logger.Sugar(),
	}
}

// seedInfo is the reconciled rating-source record for one athlete.
type seedInfo struct {
	position string
	value    *float64
}

// athleteGames collects everything needed to fold one athlete.
type athleteGames struct {
	id      string
	name    string
	entries []models.LedgerEntry
	seed    seedInfo
}

// Run computes the season ledger. Athletes whose position cannot be
// resolved through the rating source are dropped (their games would break
// downstream role aggregations); everything else is handled locally and
// never aborts the run.
func (p *Pipeline) Run(ctx context.Context, in Inputs) ([]models.LedgerEntry, error) {
	games := make(map[string]models.GameResult, len(in.Games))
	teamGames := make(map[string][]models.GameResult)
	for _, g := range in.Games {
		games[g.GameID] = g
		teamGames[g.TeamWinner] = append(teamGames[g.TeamWinner], g)
		teamGames[g.TeamLoser] = append(teamGames[g.TeamLoser], g)
	}

	seeds := p.buildSeeds(in.InitialValues)
	athletes := p.collectAthletes(in.BoxScores, games, teamGames, seeds)

	// Fold each athlete independently. Each goroutine writes only its own
	// pre-assigned slot; no valuation state crosses athletes.
	results := make([][]models.LedgerEntry, len(athletes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range athletes {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a := athletes[i]
			ApplyRecurrence(a.entries, a.seed.value)
			results[i] = a.entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ledger []models.LedgerEntry
	for _, entries := range results {
		ledger = append(ledger, entries...)
	}
	sort.Slice(ledger, func(i, j int) bool {
		if ledger[i].AthleteID != ledger[j].AthleteID {
			return ledger[i].AthleteID < ledger[j].AthleteID
		}
		if !ledger[i].Date.Equal(ledger[j].Date) {
			return ledger[i].Date.Before(ledger[j].Date)
		}
		return ledger[i].GameID < ledger[j].GameID
	})

	p.logger.Infow("Season ledger computed",
		"season", in.Season,
		"athletes", len(athletes),
		"entries", len(ledger),
	)
	return ledger, nil
}

// buildSeeds reconciles the rating source into canonical-slug keys.
func (p *Pipeline) buildSeeds(values []models.InitialValue) map[string]seedInfo {
	seeds := make(map[string]seedInfo, len(values))
	for _, iv := range values {
		slug := identity.SlugFromExternalID(iv.AthleteExternalID)
		seeds[slug] = seedInfo{position: iv.Position, value: iv.Value}
	}
	return seeds
}

// collectAthletes groups box scores per athlete, attaches the reconciled
// seed, and left-joins each athlete against every game their team played
// so that missed games yield nil-score rows (the recurrence applies its
// flat decay to those). Athletes without a resolvable position are
// dropped here.
func (p *Pipeline) collectAthletes(
	rows []models.BoxScoreRow,
	games map[string]models.GameResult,
	teamGames map[string][]models.GameResult,
	seeds map[string]seedInfo,
) []*athleteGames {
	byAthlete := make(map[string]*athleteGames)
	var order []string

	for _, row := range rows {
		a, ok := byAthlete[row.AthleteID]
		if !ok {
			a = &athleteGames{id: row.AthleteID, name: row.AthleteName}
			byAthlete[row.AthleteID] = a
			order = append(order, row.AthleteID)
		}
		if a.name == "" {
			a.name = row.AthleteName
		}

		team, opponent := resolveSides(row, games)
		date := row.Date
		if date.IsZero() {
			if g, ok := games[row.GameID]; ok {
				date = g.Date
			}
		}
		score := scoring.Score(row)
		a.entries = append(a.entries, models.LedgerEntry{
			GameID:       row.GameID,
			AthleteID:    row.AthleteID,
			AthleteName:  a.name,
			Team:         team,
			OpponentTeam: opponent,
			Season:       row.Season,
			Date:         date,
			Started:      row.Started,
			FantaScore:   &score,
		})
	}

	dropped := 0
	var athletes []*athleteGames
	for _, id := range order {
		a := byAthlete[id]

		seed, ok := seeds[p.resolver.Canonical(a.name)]
		if !ok || seed.position == "" {
			// Unresolved role breaks downstream team-role aggregation;
			// exclude the athlete rather than defaulting a position.
			p.logger.Warnw("Dropping athlete with unresolved position",
				"athlete_id", a.id, "name", a.name)
			dropped++
			continue
		}
		a.seed = seed

		p.fillMissedGames(a, teamGames)
		for i := range a.entries {
			a.entries[i].Position = seed.position
		}
		athletes = append(athletes, a)
	}

	if dropped > 0 {
		p.logger.Infow("Athletes dropped from ledger", "count", dropped)
	}
	return athletes
}

// fillMissedGames appends a nil-score entry for every game of the
// athlete's team they did not appear in. The athlete's team is the team
// of their most recent played game.
func (p *Pipeline) fillMissedGames(a *athleteGames, teamGames map[string][]models.GameResult) {
	var team string
	var latest time.Time
	played := make(map[string]bool, len(a.entries))
	season := 0
	for _, e := range a.entries {
		played[e.GameID] = true
		if season == 0 {
			season = e.Season
		}
		if team == "" || e.Date.After(latest) {
			team = e.Team
			latest = e.Date
		}
	}
	if team == "" {
		return
	}

	for _, g := range teamGames[team] {
		if played[g.GameID] {
			continue
		}
		opponent := g.TeamLoser
		if team == g.TeamLoser {
			opponent = g.TeamWinner
		}
		a.entries = append(a.entries, models.LedgerEntry{
			GameID:       g.GameID,
			AthleteID:    a.id,
			AthleteName:  a.name,
			Team:         team,
			OpponentTeam: opponent,
			Season:       season,
			Date:         g.Date,
			FantaScore:   nil,
		})
	}
}

// resolveSides determines the athlete's team and opponent for one played
// game, preferring the row's own team column and falling back to the game
// result's winner/loser split.
func resolveSides(row models.BoxScoreRow, games map[string]models.GameResult) (team, opponent string) {
	g, ok := games[row.GameID]
	if !ok {
		return row.Team, ""
	}
	team = row.Team
	if team == "" {
		if row.Win {
			team = g.TeamWinner
		} else {
			team = g.TeamLoser
		}
	}
	if team == g.TeamWinner {
		return team, g.TeamLoser
	}
	return team, g.TeamWinner
}
