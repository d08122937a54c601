package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"assetperf/models"
)

// AverageDowntime returns the mean downtime across all metrics. ok is false
// when the collection is empty.
func (s *Store) AverageDowntime(ctx context.Context) (avg float64, ok bool, err error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "value", Value: bson.D{{Key: "$avg", Value: "$downtime"}}},
		}}},
	}
	return s.groupValue(ctx, pipeline)
}

// TotalMaintenanceCosts returns the sum of maintenance_costs across all
// metrics. ok is false when the collection is empty.
func (s *Store) TotalMaintenanceCosts(ctx context.Context) (total float64, ok bool, err error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "value", Value: bson.D{{Key: "$sum", Value: "$maintenance_costs"}}},
		}}},
	}
	return s.groupValue(ctx, pipeline)
}

// HighFailureAssets returns metrics whose failure_rate exceeds threshold.
// asset_name is joined from the assets collection on asset_id and is left
// unset when no asset matches.
func (s *Store) HighFailureAssets(ctx context.Context, threshold float64) ([]models.HighFailureAsset, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "failure_rate", Value: bson.D{{Key: "$gt", Value: threshold}}}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: AssetsCollection},
			{Key: "localField", Value: "asset_id"},
			{Key: "foreignField", Value: "asset_id"},
			{Key: "as", Value: "asset"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "asset_id", Value: 1},
			{Key: "asset_name", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$asset.asset_name", 0}}}},
			{Key: "failure_rate", Value: 1},
		}}},
	}

	cursor, err := s.metrics.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate high failure assets: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.HighFailureAsset{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode high failure assets: %w", err)
	}
	return results, nil
}

func (s *Store) groupValue(ctx context.Context, pipeline mongo.Pipeline) (float64, bool, error) {
	cursor, err := s.metrics.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, false, fmt.Errorf("aggregate %s: %w", PerformanceMetricsCollection, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Value *float64 `bson:"value"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, false, fmt.Errorf("decode %s aggregate: %w", PerformanceMetricsCollection, err)
	}
	if len(rows) == 0 || rows[0].Value == nil {
		return 0, false, nil
	}
	return *rows[0].Value, true, nil
}
