package handlers

import (
	"net/http"

	"assetperf/models"
	"assetperf/utils"
)

// HighFailureThreshold is the failure_rate above which a metric counts as
// high failure.
const HighFailureThreshold = 0.1

func (h *Handler) AverageDowntime(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	avg, ok, err := h.store.AverageDowntime(ctx)
	if err != nil {
		h.logger(r).WithError(err).Error("average downtime aggregation failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if !ok {
		respondMessage(w, "No data available for average downtime")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.AverageDowntime{AverageDowntime: avg})
}

func (h *Handler) TotalMaintenanceCosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	total, ok, err := h.store.TotalMaintenanceCosts(ctx)
	if err != nil {
		h.logger(r).WithError(err).Error("total maintenance costs aggregation failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if !ok {
		respondMessage(w, "No data available for total maintenance costs")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.TotalMaintenanceCosts{TotalMaintenanceCosts: total})
}

func (h *Handler) HighFailureAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	rows, err := h.store.HighFailureAssets(ctx, HighFailureThreshold)
	if err != nil {
		h.logger(r).WithError(err).Error("high failure assets aggregation failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if len(rows) == 0 {
		respondMessage(w, "No assets found with high failure rates")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, rows)
}
