// Package schedule resolves each team's next fixture from the season
// calendar.
package schedule

import (
	"sort"
	"time"

	"github.com/fantacourt/valuation-api/internal/models"
)

// NextMatches returns, for every team with a remaining fixture, the single
// nearest fixture on or after the reference time. Each fixture is expanded
// into both team perspectives; a team with no remaining fixtures simply
// has no entry in the result (callers treat that as "no next match").
func NextMatches(fixtures []models.Fixture, reference time.Time) map[string]models.NextMatch {
	type directed struct {
		team     string
		opponent string
		date     time.Time
	}

	rows := make([]directed, 0, 2*len(fixtures))
	for _, f := range fixtures {
		if f.Date.Before(reference) {
			continue
		}
		rows = append(rows,
			directed{team: f.TeamHome, opponent: f.TeamVisitor, date: f.Date},
			directed{team: f.TeamVisitor, opponent: f.TeamHome, date: f.Date},
		)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	next := make(map[string]models.NextMatch)
	for _, r := range rows {
		if _, seen := next[r.team]; seen {
			continue
		}
		next[r.team] = models.NextMatch{Team: r.team, Opponent: r.opponent, Date: r.date}
	}
	return next
}
