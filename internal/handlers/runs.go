package handlers

import (
	"errors"
	"net/http"

	"github.com/fantacourt/valuation-api/internal/cache"
	"github.com/fantacourt/valuation-api/internal/engine"
)

// TriggerRun handles POST /api/v1/runs and executes a full valuation run
// synchronously. Concurrent triggers are rejected by the run lock.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	season := h.seasonParam(r)

	res, err := h.engine.Run(r.Context(), season)
	switch {
	case errors.Is(err, cache.ErrRunInProgress):
		h.errorResponse(w, http.StatusConflict, "a valuation run is already in progress")
		return
	case errors.Is(err, engine.ErrMissingInputs):
		h.errorResponse(w, http.StatusUnprocessableEntity,
			"season snapshot is incomplete; upload box scores, games and fixtures first")
		return
	case err != nil:
		h.logger.Errorw("Valuation run failed", "season", season, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "valuation run failed")
		return
	}

	h.jsonResponse(w, http.StatusOK, res)
}

// GetLastRun handles GET /api/v1/runs/last.
func (h *Handler) GetLastRun(w http.ResponseWriter, r *http.Request) {
	season := h.seasonParam(r)

	rec, err := h.cache.LastRun(r.Context(), season)
	if err != nil {
		h.logger.Errorw("Failed to read last run", "season", season, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to read last run")
		return
	}
	if rec == nil {
		h.errorResponse(w, http.StatusNotFound, "no completed run for season")
		return
	}
	h.jsonResponse(w, http.StatusOK, rec)
}
