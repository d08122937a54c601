package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetperf/database"
	"assetperf/models"
	"assetperf/websocket"
)

type recordingPublisher struct {
	events []websocket.ChangeEvent
}

func (p *recordingPublisher) Publish(evt websocket.ChangeEvent) {
	p.events = append(p.events, evt)
}

type recordingMetrics struct {
	counts map[string]int
}

func (m *recordingMetrics) RecordMutation(collection, operation string) {
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[collection+"/"+operation]++
}

// flakyStore reports zero modified documents on update, as a lost race
// would, and can fail every list call.
type flakyStore struct {
	*database.MemoryStore
	listErr error
}

func (s *flakyStore) UpdateAsset(ctx context.Context, assetID string, asset models.Asset) (int64, error) {
	return 0, nil
}

func (s *flakyStore) UpdateMetric(ctx context.Context, assetID string, metric models.PerformanceMetric) (int64, error) {
	return 0, nil
}

func (s *flakyStore) ListAssets(ctx context.Context) ([]models.Asset, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.MemoryStore.ListAssets(ctx)
}

type fixture struct {
	store   Store
	events  *recordingPublisher
	metrics *recordingMetrics
	router  *mux.Router
}

func newFixture(t *testing.T, store Store) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &fixture{
		store:   store,
		events:  &recordingPublisher{},
		metrics: &recordingMetrics{},
	}
	h := New(Options{Store: store, Log: log, Events: f.events, Metrics: f.metrics})

	r := mux.NewRouter()
	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/assets/", h.ListAssets).Methods(http.MethodGet)
	r.HandleFunc("/assets/", h.CreateAsset).Methods(http.MethodPost)
	r.HandleFunc("/assets/{asset_id}", h.GetAsset).Methods(http.MethodGet)
	r.HandleFunc("/assets/{asset_id}", h.UpdateAsset).Methods(http.MethodPut)
	r.HandleFunc("/assets/{asset_id}", h.DeleteAsset).Methods(http.MethodDelete)
	r.HandleFunc("/performance_metrics/", h.ListMetrics).Methods(http.MethodGet)
	r.HandleFunc("/performance_metrics/", h.CreateMetric).Methods(http.MethodPost)
	r.HandleFunc("/performance_metrics/{asset_id}", h.GetMetric).Methods(http.MethodGet)
	r.HandleFunc("/performance_metrics/{asset_id}", h.UpdateMetric).Methods(http.MethodPut)
	r.HandleFunc("/performance_metrics/{asset_id}", h.DeleteMetric).Methods(http.MethodDelete)
	r.HandleFunc("/insights/average_downtime", h.AverageDowntime).Methods(http.MethodGet)
	r.HandleFunc("/insights/total_maintenance_costs", h.TotalMaintenanceCosts).Methods(http.MethodGet)
	r.HandleFunc("/insights/high_failure_assets", h.HighFailureAssets).Methods(http.MethodGet)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func sampleAsset() models.Asset {
	return models.Asset{
		AssetID:           "A004",
		AssetName:         "Test Asset",
		AssetType:         "Test Type",
		Location:          "Test Location",
		PurchaseDate:      "2022-02-23",
		InitialCost:       10000.0,
		OperationalStatus: "Active",
	}
}

func sampleMetric() models.PerformanceMetric {
	return models.PerformanceMetric{
		AssetID:          "A004",
		Uptime:           100,
		Downtime:         10,
		MaintenanceCosts: 500.0,
		FailureRate:      0.2,
		Efficiency:       90,
	}
}

func TestRoot(t *testing.T) {
	f := newFixture(t, database.NewMemoryStore())
	rr := f.do(t, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Welcome to the Asset Performance Dashboard API"}`, rr.Body.String())
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t, database.NewMemoryStore())
	rr := f.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	got := decode[HealthCheckResponse](t, rr)
	assert.Equal(t, "healthy", got.Status)
	assert.Equal(t, "connected", got.Database)
	assert.Equal(t, "1.0.0", got.Version)
}

func TestCreateAssetThenList(t *testing.T) {
	f := newFixture(t, database.NewMemoryStore())

	rr := f.do(t, http.MethodGet, "/assets/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = f.do(t, http.MethodPost, "/assets/", sampleAsset())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, sampleAsset(), decode[models.Asset](t, rr))

	rr = f.do(t, http.MethodGet, "/assets/", nil)
	assert.Equal(t, []models.Asset{sampleAsset()}, decode[[]models.Asset](t, rr))

	rr = f.do(t, http.MethodGet, "/assets/A004", nil)
	assert.Equal(t, sampleAsset(), decode[models.Asset](t, rr))

	require.Len(t, f.events.events, 1)
	assert.Equal(t, websocket.AssetCreated, f.events.events[0].Type)
	assert.Equal(t, 1, f.metrics.counts["assets/create"])
}

func TestCreateAssetDuplicate(t *testing.T) {
	store := database.NewMemoryStore()
	f := newFixture(t, store)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/assets/", sampleAsset()).Code)

	dup := sampleAsset()
	dup.AssetName = "Another"
	rr := f.do(t, http.MethodPost, "/assets/", dup)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Asset ID 'A004' already exists"}`, rr.Body.String())

	stored, err := store.FindAsset(context.Background(), "A004")
	require.NoError(t, err)
	assert.Equal(t, "Test Asset", stored.AssetName)
	assert.Len(t, f.events.events, 1)
}

func TestCreateAssetRejectsBadBody(t *testing.T) {
	f := newFixture(t, database.NewMemoryStore())

	tests := map[string]string{
		"not json":         `{`,
		"wrong field type": `{"asset_id":"A1","initial_cost":"lots"}`,
		"missing asset_id": `{"asset_name":"Pump"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/assets/", body)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		})
	}
	assert.Empty(t, f.events.events)
}

func TestGetAssetMissing(t *testing.T) {
	f := newFixture(t, database.NewMemoryStore())
	rr := f.do(t, http.MethodGet, "/assets/nope", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateAsset(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		f := newFixture(t, database.NewMemoryStore())
		rr := f.do(t, http.MethodPut, "/assets/A004", sampleAsset())

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error":"Asset not found"}`, rr.Body.String())
	})

	t.Run("identical payload", func(t *testing.T) {
		store := database.NewMemoryStore()
		require.NoError(t, store.InsertAsset(context.Background(), sampleAsset()))
		f := newFixture(t, store)

		rr := f.do(t, http.MethodPut, "/assets/A004", sampleAsset())

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"Updated asset is identical to initial asset"}`, rr.Body.String())
		assert.Empty(t, f.events.events)
	})

	t.Run("changed field", func(t *testing.T) {
		store := database.NewMemoryStore()
		require.NoError(t, store.InsertAsset(context.Background(), sampleAsset()))
		f := newFixture(t, store)

		updated := sampleAsset()
		updated.AssetName = "Updated Asset Name"
		updated.InitialCost = 12000.0
		updated.OperationalStatus = "Inactive"
		rr := f.do(t, http.MethodPut, "/assets/A004", updated)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"Asset updated successfully"}`, rr.Body.String())

		stored, err := store.FindAsset(context.Background(), "A004")
		require.NoError(t, err)
		assert.Equal(t, updated, stored)
		require.Len(t, f.events.events, 1)
		assert.Equal(t, websocket.AssetUpdated, f.events.events[0].Type)
	})

	t.Run("path id wins over body id", func(t *testing.T) {
		store := database.NewMemoryStore()
		require.NoError(t, store.InsertAsset(context.Background(), sampleAsset()))
		f := newFixture(t, store)

		updated := sampleAsset()
		updated.AssetID = "OTHER"
		updated.Location = "Plant 2"
		rr := f.do(t, http.MethodPut, "/assets/A004", updated)
		require.Equal(t, http.StatusOK, rr.Code)

		stored, err := store.FindAsset(context.Background(), "A004")
		require.NoError(t, err)
		assert.Equal(t, "Plant 2", stored.Location)
		ok, err := store.AssetExists(context.Background(), "OTHER")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("nothing modified", func(t *testing.T) {
		store := &flakyStore{MemoryStore: database.NewMemoryStore()}
		require.NoError(t, store.InsertAsset(context.Background(), sampleAsset()))
		f := newFixture(t, store)

		updated := sampleAsset()
		updated.Location = "Elsewhere"
		rr := f.do(t, http.MethodPut, "/assets/A004", updated)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"Failed to update asset"}`, rr.Body.String())
	})
}

func TestDeleteAsset(t *testing.T) {
	store := database.NewMemoryStore()
	f := newFixture(t, store)

	rr := f.do(t, http.MethodDelete, "/assets/A004", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	require.NoError(t, store.InsertAsset(context.Background(), sampleAsset()))
	rr = f.do(t, http.MethodDelete, "/assets/A004", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Asset deleted successfully"}`, rr.Body.String())

	rr = f.do(t, http.MethodGet, "/assets/", nil)
	assert.Empty(t, decode[[]models.Asset](t, rr))
	assert.Equal(t, 1, f.metrics.counts["assets/delete"])
}

func TestListAssetsStorageError(t *testing.T) {
	store := &flakyStore{MemoryStore: database.NewMemoryStore(), listErr: errors.New("connection reset")}
	f := newFixture(t, store)

	rr := f.do(t, http.MethodGet, "/assets/", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestPerformanceMetricLifecycle(t *testing.T) {
	store := database.NewMemoryStore()
	f := newFixture(t, store)

	rr := f.do(t, http.MethodPost, "/performance_metrics/", sampleMetric())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, sampleMetric(), decode[models.PerformanceMetric](t, rr))

	rr = f.do(t, http.MethodPost, "/performance_metrics/", sampleMetric())
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Performance metric with ID 'A004' already exists"}`, rr.Body.String())

	rr = f.do(t, http.MethodPut, "/performance_metrics/A004", sampleMetric())
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPut, "/performance_metrics/A999", sampleMetric())
	assert.Equal(t, http.StatusNotFound, rr.Code)

	updated := sampleMetric()
	updated.Downtime = 12
	rr = f.do(t, http.MethodPut, "/performance_metrics/A004", updated)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Performance metric updated successfully"}`, rr.Body.String())

	rr = f.do(t, http.MethodGet, "/performance_metrics/A004", nil)
	assert.Equal(t, updated, decode[models.PerformanceMetric](t, rr))

	rr = f.do(t, http.MethodGet, "/performance_metrics/", nil)
	assert.Equal(t, []models.PerformanceMetric{updated}, decode[[]models.PerformanceMetric](t, rr))

	rr = f.do(t, http.MethodDelete, "/performance_metrics/A004", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = f.do(t, http.MethodDelete, "/performance_metrics/A004", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var types []string
	for _, evt := range f.events.events {
		types = append(types, evt.Type)
	}
	assert.Equal(t, []string{websocket.MetricCreated, websocket.MetricUpdated, websocket.MetricDeleted}, types)
}

func TestUpdateMetricNothingModified(t *testing.T) {
	store := &flakyStore{MemoryStore: database.NewMemoryStore()}
	require.NoError(t, store.InsertMetric(context.Background(), sampleMetric()))
	f := newFixture(t, store)

	updated := sampleMetric()
	updated.Efficiency = 95
	rr := f.do(t, http.MethodPut, "/performance_metrics/A004", updated)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to update performance metric"}`, rr.Body.String())
}

func seedMetrics(t *testing.T, store *database.MemoryStore, metrics ...models.PerformanceMetric) {
	t.Helper()
	for _, m := range metrics {
		require.NoError(t, store.InsertMetric(context.Background(), m))
	}
}

func TestAverageDowntime(t *testing.T) {
	store := database.NewMemoryStore()
	f := newFixture(t, store)

	rr := f.do(t, http.MethodGet, "/insights/average_downtime", nil)
	assert.JSONEq(t, `{"message":"No data available for average downtime"}`, rr.Body.String())

	seedMetrics(t, store,
		models.PerformanceMetric{AssetID: "A1", Downtime: 10},
		models.PerformanceMetric{AssetID: "A2", Downtime: 20},
	)
	rr = f.do(t, http.MethodGet, "/insights/average_downtime", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"average_downtime":15}`, rr.Body.String())
}

func TestTotalMaintenanceCosts(t *testing.T) {
	store := database.NewMemoryStore()
	f := newFixture(t, store)

	rr := f.do(t, http.MethodGet, "/insights/total_maintenance_costs", nil)
	assert.JSONEq(t, `{"message":"No data available for total maintenance costs"}`, rr.Body.String())

	seedMetrics(t, store,
		models.PerformanceMetric{AssetID: "A1", MaintenanceCosts: 500},
		models.PerformanceMetric{AssetID: "A2", MaintenanceCosts: 100.5},
	)
	rr = f.do(t, http.MethodGet, "/insights/total_maintenance_costs", nil)
	assert.JSONEq(t, `{"total_maintenance_costs":600.5}`, rr.Body.String())
}

func TestHighFailureAssets(t *testing.T) {
	store := database.NewMemoryStore()
	f := newFixture(t, store)

	rr := f.do(t, http.MethodGet, "/insights/high_failure_assets", nil)
	assert.JSONEq(t, `{"message":"No assets found with high failure rates"}`, rr.Body.String())

	asset := sampleAsset()
	asset.AssetID = "A2"
	asset.AssetName = "Valve"
	require.NoError(t, store.InsertAsset(context.Background(), asset))
	seedMetrics(t, store,
		models.PerformanceMetric{AssetID: "A1", FailureRate: 0.05},
		models.PerformanceMetric{AssetID: "A2", FailureRate: 0.15},
		models.PerformanceMetric{AssetID: "A3", FailureRate: 0.2},
	)

	rr = f.do(t, http.MethodGet, "/insights/high_failure_assets", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[
		{"asset_id":"A2","asset_name":"Valve","failure_rate":0.15},
		{"asset_id":"A3","asset_name":null,"failure_rate":0.2}
	]`, rr.Body.String())
}

func TestPartialBodiesRejected(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"create asset with only an id", http.MethodPost, "/assets/", `{"asset_id":"B1"}`},
		{"update asset missing fields", http.MethodPut, "/assets/A004", `{"asset_id":"A004","asset_name":"Renamed"}`},
		{"update asset with null field", http.MethodPut, "/assets/A004", `{"asset_id":"A004","asset_name":"Renamed","asset_type":"Test Type","location":"Test Location","purchase_date":"2022-02-23","initial_cost":null,"operational_status":"Active"}`},
		{"create metric with only an id", http.MethodPost, "/performance_metrics/", `{"asset_id":"B1"}`},
		{"update metric missing fields", http.MethodPut, "/performance_metrics/A004", `{"asset_id":"A004","downtime":50}`},
		{"create asset with misspelled field", http.MethodPost, "/assets/", `{"asset_id":"B1","asset_name":"Pump","asset_type":"Pump","locaton":"Plant 1","purchase_date":"2022-02-23","initial_cost":1,"operational_status":"Active"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := database.NewMemoryStore()
			require.NoError(t, store.InsertAsset(ctx, sampleAsset()))
			require.NoError(t, store.InsertMetric(ctx, sampleMetric()))
			f := newFixture(t, store)

			rr := f.do(t, tt.method, tt.path, tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Empty(t, f.events.events)

			asset, err := store.FindAsset(ctx, "A004")
			require.NoError(t, err)
			assert.Equal(t, sampleAsset(), asset)
			metric, err := store.FindMetric(ctx, "A004")
			require.NoError(t, err)
			assert.Equal(t, sampleMetric(), metric)
			ok, err := store.AssetExists(ctx, "B1")
			require.NoError(t, err)
			assert.False(t, ok)
			ok, err = store.MetricExists(ctx, "B1")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestZeroValuedFieldsAccepted(t *testing.T) {
	store := database.NewMemoryStore()
	f := newFixture(t, store)

	rr := f.do(t, http.MethodPost, "/performance_metrics/",
		`{"asset_id":"B1","uptime":0,"downtime":0,"maintenance_costs":0,"failure_rate":0,"efficiency":0}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.PerformanceMetric{AssetID: "B1"}, decode[models.PerformanceMetric](t, rr))

	rr = f.do(t, http.MethodPost, "/assets/",
		`{"asset_id":"B1","asset_name":"","asset_type":"","location":"","purchase_date":"","initial_cost":0,"operational_status":""}`)
	require.Equal(t, http.StatusOK, rr.Code)
	stored, err := store.FindAsset(context.Background(), "B1")
	require.NoError(t, err)
	assert.Equal(t, models.Asset{AssetID: "B1"}, stored)
}
