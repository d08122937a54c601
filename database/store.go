package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"assetperf/models"
)

const (
	AssetsCollection             = "assets"
	PerformanceMetricsCollection = "performance_metrics"
)

var (
	// ErrNotFound is returned when no document matches an asset_id.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateKey is returned when an insert violates a unique index.
	ErrDuplicateKey = errors.New("duplicate asset_id")
)

// Store is the storage layer for both collections. It is safe for concurrent
// use; all coordination is left to the driver's connection pool.
type Store struct {
	db      *mongo.Database
	assets  *mongo.Collection
	metrics *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		db:      db,
		assets:  db.Collection(AssetsCollection),
		metrics: db.Collection(PerformanceMetricsCollection),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates a unique asset_id index on each collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "asset_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("asset_id_unique"),
	}
	for _, coll := range []*mongo.Collection{s.assets, s.metrics} {
		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create asset_id index on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// ---- assets ----

func (s *Store) ListAssets(ctx context.Context) ([]models.Asset, error) {
	assets := []models.Asset{}
	if err := findAll(ctx, s.assets, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (s *Store) FindAsset(ctx context.Context, assetID string) (models.Asset, error) {
	var asset models.Asset
	err := findByAssetID(ctx, s.assets, assetID, &asset)
	return asset, err
}

func (s *Store) AssetExists(ctx context.Context, assetID string) (bool, error) {
	return exists(ctx, s.assets, assetID)
}

func (s *Store) InsertAsset(ctx context.Context, asset models.Asset) error {
	return insert(ctx, s.assets, asset)
}

// UpdateAsset sets every field of asset on the document matching assetID
// and returns the number of modified documents.
func (s *Store) UpdateAsset(ctx context.Context, assetID string, asset models.Asset) (int64, error) {
	return update(ctx, s.assets, assetID, asset)
}

func (s *Store) DeleteAsset(ctx context.Context, assetID string) (int64, error) {
	return deleteOne(ctx, s.assets, assetID)
}

// ---- performance metrics ----

func (s *Store) ListMetrics(ctx context.Context) ([]models.PerformanceMetric, error) {
	metrics := []models.PerformanceMetric{}
	if err := findAll(ctx, s.metrics, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

func (s *Store) FindMetric(ctx context.Context, assetID string) (models.PerformanceMetric, error) {
	var metric models.PerformanceMetric
	err := findByAssetID(ctx, s.metrics, assetID, &metric)
	return metric, err
}

func (s *Store) MetricExists(ctx context.Context, assetID string) (bool, error) {
	return exists(ctx, s.metrics, assetID)
}

func (s *Store) InsertMetric(ctx context.Context, metric models.PerformanceMetric) error {
	return insert(ctx, s.metrics, metric)
}

func (s *Store) UpdateMetric(ctx context.Context, assetID string, metric models.PerformanceMetric) (int64, error) {
	return update(ctx, s.metrics, assetID, metric)
}

func (s *Store) DeleteMetric(ctx context.Context, assetID string) (int64, error) {
	return deleteOne(ctx, s.metrics, assetID)
}

// ---- helpers ----

func findAll(ctx context.Context, coll *mongo.Collection, results interface{}) error {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, results); err != nil {
		return fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return nil
}

func findByAssetID(ctx context.Context, coll *mongo.Collection, assetID string, result interface{}) error {
	err := coll.FindOne(ctx, bson.M{"asset_id": assetID}).Decode(result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find %s %q: %w", coll.Name(), assetID, err)
	}
	return nil
}

func exists(ctx context.Context, coll *mongo.Collection, assetID string) (bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := coll.FindOne(ctx, bson.M{"asset_id": assetID}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s %q: %w", coll.Name(), assetID, err)
	}
	return true, nil
}

func insert(ctx context.Context, coll *mongo.Collection, doc interface{}) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func update(ctx context.Context, coll *mongo.Collection, assetID string, doc interface{}) (int64, error) {
	res, err := coll.UpdateOne(ctx, bson.M{"asset_id": assetID}, bson.M{"$set": doc})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, ErrDuplicateKey
		}
		return 0, fmt.Errorf("update %s %q: %w", coll.Name(), assetID, err)
	}
	return res.ModifiedCount, nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, assetID string) (int64, error) {
	res, err := coll.DeleteOne(ctx, bson.M{"asset_id": assetID})
	if err != nil {
		return 0, fmt.Errorf("delete from %s %q: %w", coll.Name(), assetID, err)
	}
	return res.DeletedCount, nil
}
