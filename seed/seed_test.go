package seed

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetperf/database"
	"assetperf/models"
)

const fixturesYAML = `
assets:
  - asset_id: A001
    asset_name: Main Pump
    asset_type: Pump
    location: Plant 1
    purchase_date: "2021-06-01"
    initial_cost: 25000.5
    operational_status: Active
  - asset_id: A002
    asset_name: Inlet Valve
    asset_type: Valve
    location: Plant 1
    purchase_date: "2022-02-23"
    initial_cost: 1200
    operational_status: Maintenance
performance_metrics:
  - asset_id: A001
    uptime: 700
    downtime: 20
    maintenance_costs: 340.75
    failure_rate: 0.05
    efficiency: 92
`

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixturesYAML), 0o600))

	f, err := LoadFile(path)
	require.NoError(t, err)

	require.Len(t, f.Assets, 2)
	assert.Equal(t, models.Asset{
		AssetID:           "A001",
		AssetName:         "Main Pump",
		AssetType:         "Pump",
		Location:          "Plant 1",
		PurchaseDate:      "2021-06-01",
		InitialCost:       25000.5,
		OperationalStatus: "Active",
	}, f.Assets[0])
	require.Len(t, f.PerformanceMetrics, 1)
	assert.Equal(t, 0.05, f.PerformanceMetrics[0].FailureRate)
	assert.Equal(t, 92, f.PerformanceMetrics[0].Efficiency)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseRequiresAssetID(t *testing.T) {
	_, err := Parse([]byte("performance_metrics:\n  - uptime: 3\n"))
	assert.ErrorContains(t, err, "performance_metrics[0]")
}

func TestApplySkipsExistingIDs(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	require.NoError(t, store.InsertAsset(ctx, models.Asset{AssetID: "A002", AssetName: "Kept"}))

	f, err := Parse([]byte(fixturesYAML))
	require.NoError(t, err)

	res, err := Apply(ctx, store, f, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, Result{AssetsInserted: 1, AssetsSkipped: 1, MetricsInserted: 1}, res)

	kept, err := store.FindAsset(ctx, "A002")
	require.NoError(t, err)
	assert.Equal(t, "Kept", kept.AssetName)

	res, err = Apply(ctx, store, f, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, Result{AssetsSkipped: 2, MetricsSkipped: 1}, res)
}
