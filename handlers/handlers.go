package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"assetperf/logging"
	"assetperf/models"
	"assetperf/websocket"
)

// Store is the persistence surface the handlers need. *database.Store
// satisfies it.
type Store interface {
	Ping(ctx context.Context) error

	ListAssets(ctx context.Context) ([]models.Asset, error)
	FindAsset(ctx context.Context, assetID string) (models.Asset, error)
	AssetExists(ctx context.Context, assetID string) (bool, error)
	InsertAsset(ctx context.Context, asset models.Asset) error
	UpdateAsset(ctx context.Context, assetID string, asset models.Asset) (int64, error)
	DeleteAsset(ctx context.Context, assetID string) (int64, error)

	ListMetrics(ctx context.Context) ([]models.PerformanceMetric, error)
	FindMetric(ctx context.Context, assetID string) (models.PerformanceMetric, error)
	MetricExists(ctx context.Context, assetID string) (bool, error)
	InsertMetric(ctx context.Context, metric models.PerformanceMetric) error
	UpdateMetric(ctx context.Context, assetID string, metric models.PerformanceMetric) (int64, error)
	DeleteMetric(ctx context.Context, assetID string) (int64, error)

	AverageDowntime(ctx context.Context) (float64, bool, error)
	TotalMaintenanceCosts(ctx context.Context) (float64, bool, error)
	HighFailureAssets(ctx context.Context, threshold float64) ([]models.HighFailureAsset, error)
}

// Publisher receives an event for every successful mutation.
type Publisher interface {
	Publish(evt websocket.ChangeEvent)
}

// MutationRecorder counts successful mutations.
type MutationRecorder interface {
	RecordMutation(collection, operation string)
}

type Options struct {
	Store   Store
	Log     logrus.FieldLogger
	Events  Publisher
	Metrics MutationRecorder
	Timeout time.Duration
	Version string
}

// Handler serves every API endpoint against an injected store.
type Handler struct {
	store   Store
	log     logrus.FieldLogger
	events  Publisher
	metrics MutationRecorder
	timeout time.Duration
	version string
	started time.Time
}

func New(opts Options) *Handler {
	h := &Handler{
		store:   opts.Store,
		log:     opts.Log,
		events:  opts.Events,
		metrics: opts.Metrics,
		timeout: opts.Timeout,
		version: opts.Version,
		started: time.Now(),
	}
	if h.log == nil {
		h.log = logrus.StandardLogger()
	}
	if h.timeout <= 0 {
		h.timeout = 10 * time.Second
	}
	if h.version == "" {
		h.version = "1.0.0"
	}
	return h
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *Handler) logger(r *http.Request) *logrus.Entry {
	return logging.FromContext(r.Context(), h.log)
}

// changed publishes evt and counts the mutation.
func (h *Handler) changed(operation string, evt websocket.ChangeEvent) {
	if h.metrics != nil {
		h.metrics.RecordMutation(evt.Collection, operation)
	}
	if h.events != nil {
		h.events.Publish(evt)
	}
}

// Root returns the welcome message.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, "Welcome to the Asset Performance Dashboard API")
}
