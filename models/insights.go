// models/insights.go
package models

// HighFailureAsset is one row of the high failure rate insight. AssetName is
// nil when no asset shares the metric's asset_id.
type HighFailureAsset struct {
	AssetID     string  `bson:"asset_id" json:"asset_id"`
	AssetName   *string `bson:"asset_name,omitempty" json:"asset_name"`
	FailureRate float64 `bson:"failure_rate" json:"failure_rate"`
}

type AverageDowntime struct {
	AverageDowntime float64 `json:"average_downtime"`
}

type TotalMaintenanceCosts struct {
	TotalMaintenanceCosts float64 `json:"total_maintenance_costs"`
}

// Message is the body of informational and sentinel responses.
type Message struct {
	Message string `json:"message"`
}
