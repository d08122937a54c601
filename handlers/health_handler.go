package handlers

import (
	"context"
	"net/http"
	"time"

	"assetperf/utils"
)

// HealthCheckResponse represents health check status
type HealthCheckResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database,omitempty"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime,omitempty"`
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Database:  "connected",
		Version:   h.version,
		Uptime:    time.Since(h.started).String(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		h.logger(r).WithError(err).Warn("health check ping failed")
		response.Status = "unhealthy"
		response.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	utils.RespondWithJSON(w, status, response)
}
