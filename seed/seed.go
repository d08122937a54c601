// Package seed loads asset and performance metric fixtures from YAML and
// inserts the ones whose asset_id is not already taken.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"assetperf/database"
	"assetperf/models"
)

type Fixtures struct {
	Assets             []models.Asset             `yaml:"assets"`
	PerformanceMetrics []models.PerformanceMetric `yaml:"performance_metrics"`
}

// Store is the subset of the storage layer seeding needs.
type Store interface {
	AssetExists(ctx context.Context, assetID string) (bool, error)
	InsertAsset(ctx context.Context, asset models.Asset) error
	MetricExists(ctx context.Context, assetID string) (bool, error)
	InsertMetric(ctx context.Context, metric models.PerformanceMetric) error
}

type Result struct {
	AssetsInserted  int
	AssetsSkipped   int
	MetricsInserted int
	MetricsSkipped  int
}

func LoadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, a := range f.Assets {
		if a.AssetID == "" {
			return nil, fmt.Errorf("assets[%d]: asset_id is required", i)
		}
	}
	for i, m := range f.PerformanceMetrics {
		if m.AssetID == "" {
			return nil, fmt.Errorf("performance_metrics[%d]: asset_id is required", i)
		}
	}
	return &f, nil
}

// Apply inserts every fixture whose asset_id is free in its collection.
func Apply(ctx context.Context, store Store, f *Fixtures, log logrus.FieldLogger) (Result, error) {
	var res Result

	for _, a := range f.Assets {
		inserted, err := insertIfAbsent(ctx, a.AssetID, store.AssetExists, func() error {
			return store.InsertAsset(ctx, a)
		})
		if err != nil {
			return res, fmt.Errorf("seed asset %q: %w", a.AssetID, err)
		}
		if inserted {
			res.AssetsInserted++
		} else {
			res.AssetsSkipped++
		}
	}

	for _, m := range f.PerformanceMetrics {
		inserted, err := insertIfAbsent(ctx, m.AssetID, store.MetricExists, func() error {
			return store.InsertMetric(ctx, m)
		})
		if err != nil {
			return res, fmt.Errorf("seed performance metric %q: %w", m.AssetID, err)
		}
		if inserted {
			res.MetricsInserted++
		} else {
			res.MetricsSkipped++
		}
	}

	log.WithFields(logrus.Fields{
		"assets_inserted":  res.AssetsInserted,
		"assets_skipped":   res.AssetsSkipped,
		"metrics_inserted": res.MetricsInserted,
		"metrics_skipped":  res.MetricsSkipped,
	}).Info("seed fixtures applied")
	return res, nil
}

func insertIfAbsent(ctx context.Context, assetID string, exists func(context.Context, string) (bool, error), insert func() error) (bool, error) {
	found, err := exists(ctx, assetID)
	if err != nil {
		return false, err
	}
	if found {
		return false, nil
	}
	if err := insert(); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
