package database

import (
	"context"
	"sync"

	"assetperf/models"
)

// MemoryStore keeps both collections in process memory. It mirrors Store's
// behaviour, including duplicate detection on insert, and is meant for local
// runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	assets  []models.Asset
	metrics []models.PerformanceMetric
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) ListAssets(ctx context.Context) ([]models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Asset{}, s.assets...), nil
}

func (s *MemoryStore) FindAsset(ctx context.Context, assetID string) (models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.assetIndex(assetID); i >= 0 {
		return s.assets[i], nil
	}
	return models.Asset{}, ErrNotFound
}

func (s *MemoryStore) AssetExists(ctx context.Context, assetID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assetIndex(assetID) >= 0, nil
}

func (s *MemoryStore) InsertAsset(ctx context.Context, asset models.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assetIndex(asset.AssetID) >= 0 {
		return ErrDuplicateKey
	}
	s.assets = append(s.assets, asset)
	return nil
}

func (s *MemoryStore) UpdateAsset(ctx context.Context, assetID string, asset models.Asset) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.assetIndex(assetID)
	if i < 0 || s.assets[i].Equal(asset) {
		return 0, nil
	}
	s.assets[i] = asset
	return 1, nil
}

func (s *MemoryStore) DeleteAsset(ctx context.Context, assetID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.assetIndex(assetID)
	if i < 0 {
		return 0, nil
	}
	s.assets = append(s.assets[:i], s.assets[i+1:]...)
	return 1, nil
}

func (s *MemoryStore) ListMetrics(ctx context.Context) ([]models.PerformanceMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PerformanceMetric{}, s.metrics...), nil
}

func (s *MemoryStore) FindMetric(ctx context.Context, assetID string) (models.PerformanceMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.metricIndex(assetID); i >= 0 {
		return s.metrics[i], nil
	}
	return models.PerformanceMetric{}, ErrNotFound
}

func (s *MemoryStore) MetricExists(ctx context.Context, assetID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metricIndex(assetID) >= 0, nil
}

func (s *MemoryStore) InsertMetric(ctx context.Context, metric models.PerformanceMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metricIndex(metric.AssetID) >= 0 {
		return ErrDuplicateKey
	}
	s.metrics = append(s.metrics, metric)
	return nil
}

func (s *MemoryStore) UpdateMetric(ctx context.Context, assetID string, metric models.PerformanceMetric) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.metricIndex(assetID)
	if i < 0 || s.metrics[i].Equal(metric) {
		return 0, nil
	}
	s.metrics[i] = metric
	return 1, nil
}

func (s *MemoryStore) DeleteMetric(ctx context.Context, assetID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.metricIndex(assetID)
	if i < 0 {
		return 0, nil
	}
	s.metrics = append(s.metrics[:i], s.metrics[i+1:]...)
	return 1, nil
}

func (s *MemoryStore) AverageDowntime(ctx context.Context) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.metrics) == 0 {
		return 0, false, nil
	}
	var sum float64
	for _, m := range s.metrics {
		sum += float64(m.Downtime)
	}
	return sum / float64(len(s.metrics)), true, nil
}

func (s *MemoryStore) TotalMaintenanceCosts(ctx context.Context) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.metrics) == 0 {
		return 0, false, nil
	}
	var total float64
	for _, m := range s.metrics {
		total += m.MaintenanceCosts
	}
	return total, true, nil
}

func (s *MemoryStore) HighFailureAssets(ctx context.Context, threshold float64) ([]models.HighFailureAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := []models.HighFailureAsset{}
	for _, m := range s.metrics {
		if m.FailureRate <= threshold {
			continue
		}
		row := models.HighFailureAsset{AssetID: m.AssetID, FailureRate: m.FailureRate}
		if i := s.assetIndex(m.AssetID); i >= 0 {
			name := s.assets[i].AssetName
			row.AssetName = &name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *MemoryStore) assetIndex(assetID string) int {
	for i, a := range s.assets {
		if a.AssetID == assetID {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) metricIndex(assetID string) int {
	for i, m := range s.metrics {
		if m.AssetID == assetID {
			return i
		}
	}
	return -1
}
