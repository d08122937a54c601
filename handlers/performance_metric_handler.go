package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"assetperf/database"
	"assetperf/models"
	"assetperf/utils"
	"assetperf/websocket"
)

func (h *Handler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	metrics, err := h.store.ListMetrics(ctx)
	if err != nil {
		h.logger(r).WithError(err).Error("list performance metrics failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, metrics)
}

func (h *Handler) GetMetric(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["asset_id"]

	ctx, cancel := h.requestContext(r)
	defer cancel()

	metric, err := h.store.FindMetric(ctx, assetID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Performance metric not found")
			return
		}
		h.logger(r).WithError(err).Error("find performance metric failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, metric)
}

// CreateMetric stores a metric record. Its asset_id is not required to
// name an existing asset.
func (h *Handler) CreateMetric(w http.ResponseWriter, r *http.Request) {
	var req models.PerformanceMetricRequest
	if err := utils.ParseJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	metric := req.PerformanceMetric()

	ctx, cancel := h.requestContext(r)
	defer cancel()

	duplicate := fmt.Sprintf("Performance metric with ID '%s' already exists", metric.AssetID)

	exists, err := h.store.MetricExists(ctx, metric.AssetID)
	if err != nil {
		h.logger(r).WithError(err).Error("performance metric unique check failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists {
		utils.RespondWithError(w, http.StatusBadRequest, duplicate)
		return
	}

	if err := h.store.InsertMetric(ctx, metric); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			utils.RespondWithError(w, http.StatusBadRequest, duplicate)
			return
		}
		h.logger(r).WithError(err).Error("insert performance metric failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create performance metric")
		return
	}

	h.changed("create", websocket.NewChangeEvent(websocket.MetricCreated, database.PerformanceMetricsCollection, metric.AssetID, metric))
	utils.RespondWithJSON(w, http.StatusOK, metric)
}

func (h *Handler) UpdateMetric(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["asset_id"]

	var req models.PerformanceMetricRequest
	if err := utils.ParseJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	updated := req.PerformanceMetric()
	updated.AssetID = assetID

	ctx, cancel := h.requestContext(r)
	defer cancel()

	current, err := h.store.FindMetric(ctx, assetID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Performance metric not found")
			return
		}
		h.logger(r).WithError(err).Error("find performance metric failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	if updated.Equal(current) {
		utils.RespondWithError(w, http.StatusBadRequest, "Updated performance metric is identical to initial performance metric")
		return
	}

	modified, err := h.store.UpdateMetric(ctx, assetID, updated)
	if err != nil {
		h.logger(r).WithError(err).Error("update performance metric failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update performance metric")
		return
	}
	if modified != 1 {
		h.logger(r).WithField("asset_id", assetID).Warn("performance metric update modified no documents")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update performance metric")
		return
	}

	h.changed("update", websocket.NewChangeEvent(websocket.MetricUpdated, database.PerformanceMetricsCollection, assetID, updated))
	respondMessage(w, "Performance metric updated successfully")
}

func (h *Handler) DeleteMetric(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["asset_id"]

	ctx, cancel := h.requestContext(r)
	defer cancel()

	deleted, err := h.store.DeleteMetric(ctx, assetID)
	if err != nil {
		h.logger(r).WithError(err).Error("delete performance metric failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	if deleted != 1 {
		utils.RespondWithError(w, http.StatusNotFound, "Performance metric not found")
		return
	}

	h.changed("delete", websocket.NewChangeEvent(websocket.MetricDeleted, database.PerformanceMetricsCollection, assetID, nil))
	respondMessage(w, "Performance metric deleted successfully")
}
