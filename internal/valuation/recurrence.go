// Package valuation turns per-game fanta scores into value trajectories.
// The recurrence is a strict left-to-right fold per athlete; the season
// pipeline orchestrates it across all athletes of a season.
package valuation

import (
	"sort"

	"github.com/fantacourt/valuation-api/internal/models"
	"github.com/fantacourt/valuation-api/internal/scoring"
)

// FloorValue is the hard lower bound for an athlete's value.
const FloorValue = 4.0

// DefaultBootstrap seeds an athlete who has neither an initial value nor a
// first real score.
const DefaultBootstrap = 4.0

// ApplyRecurrence fills ValueBefore, Gain and ValueAfter on one athlete's
// ledger entries, in place, given an optional bootstrap value. Entries are
// sorted by date ascending first; ordering within an athlete is a
// correctness requirement of the fold.
//
// The first game's value_before follows a fixed fallback chain: the
// bootstrap value when present, else half the first game's score, else
// DefaultBootstrap. Each step then applies
//
//	gain        = Gain(value_before, score)   (flat -0.1 on a nil score)
//	value_after = max(value_before + gain, FloorValue)
//
// and the next game's value_before is this game's value_after.
func ApplyRecurrence(entries []models.LedgerEntry, bootstrap *float64) {
	if len(entries) == 0 {
		return
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].GameID < entries[j].GameID
	})

	var value float64
	switch {
	case bootstrap != nil:
		value = *bootstrap
	case entries[0].FantaScore != nil:
		value = *entries[0].FantaScore / 2
	default:
		value = DefaultBootstrap
	}

	for i := range entries {
		e := &entries[i]
		e.ValueBefore = value
		e.Gain = scoring.Gain(e.ValueBefore, e.FantaScore)
		e.ValueAfter = e.ValueBefore + e.Gain
		if e.ValueAfter < FloorValue {
			e.ValueAfter = FloorValue
		}
		value = e.ValueAfter
	}
}
