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

// ListAssets returns every stored asset.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	assets, err := h.store.ListAssets(ctx)
	if err != nil {
		h.logger(r).WithError(err).Error("list assets failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, assets)
}

func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["asset_id"]

	ctx, cancel := h.requestContext(r)
	defer cancel()

	asset, err := h.store.FindAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Asset not found")
			return
		}
		h.logger(r).WithError(err).Error("find asset failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, asset)
}

// CreateAsset stores a new asset after checking that its asset_id is unused.
// The check and the insert are not atomic unless the unique index is enabled.
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req models.AssetRequest
	if err := utils.ParseJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	asset := req.Asset()

	ctx, cancel := h.requestContext(r)
	defer cancel()

	duplicate := fmt.Sprintf("Asset ID '%s' already exists", asset.AssetID)

	exists, err := h.store.AssetExists(ctx, asset.AssetID)
	if err != nil {
		h.logger(r).WithError(err).Error("asset unique check failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists {
		utils.RespondWithError(w, http.StatusBadRequest, duplicate)
		return
	}

	if err := h.store.InsertAsset(ctx, asset); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			utils.RespondWithError(w, http.StatusBadRequest, duplicate)
			return
		}
		h.logger(r).WithError(err).Error("insert asset failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create asset")
		return
	}

	h.changed("create", websocket.NewChangeEvent(websocket.AssetCreated, database.AssetsCollection, asset.AssetID, asset))
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

// UpdateAsset replaces the asset named in the path. The path asset_id wins
// over any asset_id in the body.
func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["asset_id"]

	var req models.AssetRequest
	if err := utils.ParseJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	updated := req.Asset()
	updated.AssetID = assetID

	ctx, cancel := h.requestContext(r)
	defer cancel()

	current, err := h.store.FindAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Asset not found")
			return
		}
		h.logger(r).WithError(err).Error("find asset failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	if updated.Equal(current) {
		utils.RespondWithError(w, http.StatusBadRequest, "Updated asset is identical to initial asset")
		return
	}

	modified, err := h.store.UpdateAsset(ctx, assetID, updated)
	if err != nil {
		h.logger(r).WithError(err).Error("update asset failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update asset")
		return
	}
	if modified != 1 {
		h.logger(r).WithField("asset_id", assetID).Warn("asset update modified no documents")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update asset")
		return
	}

	h.changed("update", websocket.NewChangeEvent(websocket.AssetUpdated, database.AssetsCollection, assetID, updated))
	respondMessage(w, "Asset updated successfully")
}

func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["asset_id"]

	ctx, cancel := h.requestContext(r)
	defer cancel()

	deleted, err := h.store.DeleteAsset(ctx, assetID)
	if err != nil {
		h.logger(r).WithError(err).Error("delete asset failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	if deleted != 1 {
		utils.RespondWithError(w, http.StatusNotFound, "Asset not found")
		return
	}

	h.changed("delete", websocket.NewChangeEvent(websocket.AssetDeleted, database.AssetsCollection, assetID, nil))
	respondMessage(w, "Asset deleted successfully")
}

func respondMessage(w http.ResponseWriter, message string) {
	utils.RespondWithJSON(w, http.StatusOK, models.Message{Message: message})
}
