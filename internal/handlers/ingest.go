package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fantacourt/valuation-api/internal/models"
)

// IngestBoxScores handles POST /api/v1/ingest/boxscores.
// The body is a JSON array of box-score rows; valid rows are queued for
// async insertion, invalid ones are skipped and counted.
func (h *Handler) IngestBoxScores(w http.ResponseWriter, r *http.Request) {
	var rows []models.BoxScoreRow
	if !h.decodeBody(w, r, &rows) {
		return
	}

	accepted, rejected := 0, 0
	for _, row := range rows {
		if err := h.validator.Struct(&row); err != nil {
			h.logger.Warnw("Invalid box-score row",
				"game_id", row.GameID, "athlete_id", row.AthleteID, "error", err)
			rejected++
			continue
		}
		if !h.pool.EnqueueBoxScore(row) {
			h.logger.Warn("Worker pool unavailable, dropping remaining box scores")
			break
		}
		accepted++
	}

	h.jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"status":   "accepted",
		"accepted": accepted,
		"rejected": rejected,
	})
}

// IngestGames handles POST /api/v1/ingest/games.
func (h *Handler) IngestGames(w http.ResponseWriter, r *http.Request) {
	var games []models.GameResult
	if !h.decodeBody(w, r, &games) {
		return
	}

	accepted, rejected := 0, 0
	for _, game := range games {
		if err := h.validator.Struct(&game); err != nil {
			h.logger.Warnw("Invalid game result", "game_id", game.GameID, "error", err)
			rejected++
			continue
		}
		if !h.pool.EnqueueGame(game) {
			h.logger.Warn("Worker pool unavailable, dropping remaining games")
			break
		}
		accepted++
	}

	h.jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"status":   "accepted",
		"accepted": accepted,
		"rejected": rejected,
	})
}

// IngestFixtures handles POST /api/v1/ingest/fixtures. The upload replaces
// the season calendar.
func (h *Handler) IngestFixtures(w http.ResponseWriter, r *http.Request) {
	var fixtures []models.Fixture
	if !h.decodeBody(w, r, &fixtures) {
		return
	}
	for _, f := range fixtures {
		if err := h.validator.Struct(&f); err != nil {
			h.errorResponse(w, http.StatusBadRequest, "invalid fixture: "+err.Error())
			return
		}
	}

	season := h.seasonParam(r)
	if err := h.store.ReplaceFixtures(r.Context(), season, fixtures); err != nil {
		h.logger.Errorw("Failed to replace fixtures", "season", season, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to store fixtures")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status": "replaced",
		"season": season,
		"count":  len(fixtures),
	})
}

// IngestRatings handles POST /api/v1/ingest/ratings. The upload replaces
// the season's initial-value snapshot.
func (h *Handler) IngestRatings(w http.ResponseWriter, r *http.Request) {
	var values []models.InitialValue
	if !h.decodeBody(w, r, &values) {
		return
	}
	for _, v := range values {
		if err := h.validator.Struct(&v); err != nil {
			h.errorResponse(w, http.StatusBadRequest, "invalid rating: "+err.Error())
			return
		}
	}

	season := h.seasonParam(r)
	if err := h.store.ReplaceInitialValues(r.Context(), season, values); err != nil {
		h.logger.Errorw("Failed to replace ratings", "season", season, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to store ratings")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status": "replaced",
		"season": season,
		"count":  len(values),
	})
}

// IngestStatuses handles POST /api/v1/ingest/status. The upload replaces
// the availability snapshot.
func (h *Handler) IngestStatuses(w http.ResponseWriter, r *http.Request) {
	var records []models.StatusRecord
	if !h.decodeBody(w, r, &records) {
		return
	}
	for _, rec := range records {
		if err := h.validator.Struct(&rec); err != nil {
			h.errorResponse(w, http.StatusBadRequest, "invalid status record: "+err.Error())
			return
		}
	}

	if err := h.store.ReplaceStatuses(r.Context(), records); err != nil {
		h.logger.Errorw("Failed to replace statuses", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to store statuses")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status": "replaced",
		"count":  len(records),
	})
}

// IngestLineups handles POST /api/v1/ingest/lineups. The upload replaces
// the projected-lineup snapshot.
func (h *Handler) IngestLineups(w http.ResponseWriter, r *http.Request) {
	var entries []models.LineupEntry
	if !h.decodeBody(w, r, &entries) {
		return
	}
	for _, e := range entries {
		if err := h.validator.Struct(&e); err != nil {
			h.errorResponse(w, http.StatusBadRequest, "invalid lineup entry: "+err.Error())
			return
		}
	}

	if err := h.store.ReplaceLineups(r.Context(), entries); err != nil {
		h.logger.Errorw("Failed to replace lineups", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to store lineups")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status": "replaced",
		"count":  len(entries),
	})
}

// decodeBody parses a JSON request body into v, writing the error response
// itself when parsing fails.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
