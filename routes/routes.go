package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"assetperf/handlers"
)

// OPTIONS is accepted on every API route so the CORS middleware can answer
// preflight requests.
var (
	MethodsGetOnly    = []string{http.MethodGet, http.MethodOptions}
	MethodsPostOnly   = []string{http.MethodPost, http.MethodOptions}
	MethodsPutOnly    = []string{http.MethodPut, http.MethodOptions}
	MethodsDeleteOnly = []string{http.MethodDelete, http.MethodOptions}
)

const (
	PathAssets             = "/assets/"
	PathAsset              = "/assets/{asset_id}"
	PathPerformanceMetrics = "/performance_metrics/"
	PathPerformanceMetric  = "/performance_metrics/{asset_id}"
	PathInsights           = "/insights"
	PathHealth             = "/health"
	PathMetrics            = "/metrics"
	PathChanges            = "/ws/changes"
)

// Extras holds handlers that live outside the handlers package.
type Extras struct {
	Metrics http.Handler
	Changes http.Handler
}

func RegisterRoutes(r *mux.Router, h *handlers.Handler, extras Extras) {
	r.HandleFunc("/", h.Root).Methods(MethodsGetOnly...)
	r.HandleFunc(PathHealth, h.HealthCheck).Methods(MethodsGetOnly...)
	if extras.Metrics != nil {
		r.Handle(PathMetrics, extras.Metrics).Methods(http.MethodGet)
	}
	if extras.Changes != nil {
		r.Handle(PathChanges, extras.Changes).Methods(http.MethodGet)
	}

	// ====================
	// ASSETS
	// ====================
	r.HandleFunc(PathAssets, h.ListAssets).Methods(MethodsGetOnly...)
	r.HandleFunc(PathAssets, h.CreateAsset).Methods(MethodsPostOnly...)
	r.HandleFunc(PathAsset, h.GetAsset).Methods(MethodsGetOnly...)
	r.HandleFunc(PathAsset, h.UpdateAsset).Methods(MethodsPutOnly...)
	r.HandleFunc(PathAsset, h.DeleteAsset).Methods(MethodsDeleteOnly...)

	// ====================
	// PERFORMANCE METRICS
	// ====================
	r.HandleFunc(PathPerformanceMetrics, h.ListMetrics).Methods(MethodsGetOnly...)
	r.HandleFunc(PathPerformanceMetrics, h.CreateMetric).Methods(MethodsPostOnly...)
	r.HandleFunc(PathPerformanceMetric, h.GetMetric).Methods(MethodsGetOnly...)
	r.HandleFunc(PathPerformanceMetric, h.UpdateMetric).Methods(MethodsPutOnly...)
	r.HandleFunc(PathPerformanceMetric, h.DeleteMetric).Methods(MethodsDeleteOnly...)

	// ====================
	// INSIGHTS
	// ====================
	insights := r.PathPrefix(PathInsights).Subrouter()
	insights.HandleFunc("/average_downtime", h.AverageDowntime).Methods(MethodsGetOnly...)
	insights.HandleFunc("/total_maintenance_costs", h.TotalMaintenanceCosts).Methods(MethodsGetOnly...)
	insights.HandleFunc("/high_failure_assets", h.HighFailureAssets).Methods(MethodsGetOnly...)
}

// NewRouter registers every route and wraps them in mw, outermost first.
// Middleware only runs for matched routes.
func NewRouter(h *handlers.Handler, extras Extras, mw ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	RegisterRoutes(r, h, extras)
	r.Use(mw...)
	return r
}
