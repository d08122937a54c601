// models/requests.go
package models

// AssetRequest is the body of an asset create or update. Every field must
// be present; pointers tell an absent field from a zero value.
type AssetRequest struct {
	AssetID           *string  `json:"asset_id" validate:"required,min=1"`
	AssetName         *string  `json:"asset_name" validate:"required"`
	AssetType         *string  `json:"asset_type" validate:"required"`
	Location          *string  `json:"location" validate:"required"`
	PurchaseDate      *string  `json:"purchase_date" validate:"required"`
	InitialCost       *float64 `json:"initial_cost" validate:"required"`
	OperationalStatus *string  `json:"operational_status" validate:"required"`
}

// Asset converts a validated request. It panics on a missing field, so
// call it only after validation.
func (r AssetRequest) Asset() Asset {
	return Asset{
		AssetID:           *r.AssetID,
		AssetName:         *r.AssetName,
		AssetType:         *r.AssetType,
		Location:          *r.Location,
		PurchaseDate:      *r.PurchaseDate,
		InitialCost:       *r.InitialCost,
		OperationalStatus: *r.OperationalStatus,
	}
}

type PerformanceMetricRequest struct {
	AssetID          *string  `json:"asset_id" validate:"required,min=1"`
	Uptime           *int     `json:"uptime" validate:"required"`
	Downtime         *int     `json:"downtime" validate:"required"`
	MaintenanceCosts *float64 `json:"maintenance_costs" validate:"required"`
	FailureRate      *float64 `json:"failure_rate" validate:"required"`
	Efficiency       *int     `json:"efficiency" validate:"required"`
}

func (r PerformanceMetricRequest) PerformanceMetric() PerformanceMetric {
	return PerformanceMetric{
		AssetID:          *r.AssetID,
		Uptime:           *r.Uptime,
		Downtime:         *r.Downtime,
		MaintenanceCosts: *r.MaintenanceCosts,
		FailureRate:      *r.FailureRate,
		Efficiency:       *r.Efficiency,
	}
}
