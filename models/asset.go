// models/asset.go
package models

type Asset struct {
	AssetID           string  `bson:"asset_id" json:"asset_id" yaml:"asset_id"`
	AssetName         string  `bson:"asset_name" json:"asset_name" yaml:"asset_name"`
	AssetType         string  `bson:"asset_type" json:"asset_type" yaml:"asset_type"`
	Location          string  `bson:"location" json:"location" yaml:"location"`
	PurchaseDate      string  `bson:"purchase_date" json:"purchase_date" yaml:"purchase_date"` // ISO date, stored as given
	InitialCost       float64 `bson:"initial_cost" json:"initial_cost" yaml:"initial_cost"`
	OperationalStatus string  `bson:"operational_status" json:"operational_status" yaml:"operational_status"`
}

// Equal reports whether every field of a matches o.
func (a Asset) Equal(o Asset) bool {
	return a.AssetID == o.AssetID &&
		a.AssetName == o.AssetName &&
		a.AssetType == o.AssetType &&
		a.Location == o.Location &&
		a.PurchaseDate == o.PurchaseDate &&
		a.InitialCost == o.InitialCost &&
		a.OperationalStatus == o.OperationalStatus
}
