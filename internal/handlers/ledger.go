package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fantacourt/valuation-api/internal/schedule"
)

// GetAthleteLedger handles GET /api/v1/players/{athleteID}/ledger and
// returns the athlete's season valuation trail in date order.
func (h *Handler) GetAthleteLedger(w http.ResponseWriter, r *http.Request) {
	athleteID := chi.URLParam(r, "athleteID")
	if athleteID == "" {
		h.errorResponse(w, http.StatusBadRequest, "missing athlete id")
		return
	}
	season := h.seasonParam(r)

	entries, err := h.store.LoadLedgerForAthlete(r.Context(), season, athleteID)
	if err != nil {
		h.logger.Errorw("Failed to load ledger", "athlete_id", athleteID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}
	if len(entries) == 0 {
		h.errorResponse(w, http.StatusNotFound, "no ledger entries for athlete")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"athlete_id": athleteID,
		"season":     season,
		"entries":    entries,
	})
}

// GetNextMatch handles GET /api/v1/teams/{team}/next-match.
func (h *Handler) GetNextMatch(w http.ResponseWriter, r *http.Request) {
	team := chi.URLParam(r, "team")
	if team == "" {
		h.errorResponse(w, http.StatusBadRequest, "missing team")
		return
	}
	season := h.seasonParam(r)

	fixtures, err := h.store.LoadFixtures(r.Context(), season)
	if err != nil {
		h.logger.Errorw("Failed to load fixtures", "season", season, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to load fixtures")
		return
	}

	next := schedule.NextMatches(fixtures, time.Now())
	match, ok := next[team]
	if !ok {
		h.errorResponse(w, http.StatusNotFound, "no upcoming fixture for team")
		return
	}
	h.jsonResponse(w, http.StatusOK, match)
}
