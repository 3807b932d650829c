// Package status maps the free-text injury/availability strings coming
// from the status source onto a small closed tag set, isolating the
// prediction override logic from raw text variability.
package status

import "strings"

// Tag is an athlete's availability classification.
type Tag int

const (
	// Available means the athlete is expected to play (no status record,
	// or an empty one).
	Available Tag = iota
	// GameTimeDecision covers "gtd", "questionable", "probable" and
	// similar tags; the regression forecast stands as-is.
	GameTimeDecision
	// Unavailable is any other non-empty status; the predicted gain is
	// forced to the did-not-play decay.
	Unavailable
)

func (t Tag) String() string {
	switch t {
	case Available:
		return "available"
	case GameTimeDecision:
		return "game-time-decision"
	default:
		return "unavailable"
	}
}

// gtdMarkers are the substrings that mark a status as a game-time call
// rather than a confirmed absence.
var gtdMarkers = []string{
	"gtd",
	"game time decision",
	"game-time decision",
	"questionable",
	"probable",
	"day-to-day",
	"day to day",
}

// Parse classifies a raw status string. Absence is expressed by the empty
// string and classifies as Available.
func Parse(raw string) Tag {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Available
	}
	for _, marker := range gtdMarkers {
		if strings.Contains(s, marker) {
			return GameTimeDecision
		}
	}
	return Unavailable
}

// IsStarter reports whether a lineup status string marks a projected
// starter.
func IsStarter(raw string) bool {
	return strings.Contains(strings.ToLower(raw), "starter")
}
