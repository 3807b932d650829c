package handlers

import (
	"net/http"
)

// GetPredictions handles GET /api/v1/predictions, serving from the cache
// and falling back to the store on a miss.
func (h *Handler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	season := h.seasonParam(r)

	preds, err := h.cache.GetPredictions(ctx, season)
	if err != nil {
		h.logger.Warnw("Prediction cache read failed", "season", season, "error", err)
	}
	source := "cache"
	if preds == nil {
		preds, err = h.store.LoadPredictions(ctx, season)
		if err != nil {
			h.logger.Errorw("Failed to load predictions", "season", season, "error", err)
			h.errorResponse(w, http.StatusInternalServerError, "failed to load predictions")
			return
		}
		source = "store"
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"season":      season,
		"source":      source,
		"predictions": preds,
	})
}
