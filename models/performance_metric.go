// models/performance_metric.go
package models

// PerformanceMetric is keyed by AssetID but never checked against the
// assets collection.
type PerformanceMetric struct {
	AssetID          string  `bson:"asset_id" json:"asset_id" yaml:"asset_id"`
	Uptime           int     `bson:"uptime" json:"uptime" yaml:"uptime"`
	Downtime         int     `bson:"downtime" json:"downtime" yaml:"downtime"`
	MaintenanceCosts float64 `bson:"maintenance_costs" json:"maintenance_costs" yaml:"maintenance_costs"`
	FailureRate      float64 `bson:"failure_rate" json:"failure_rate" yaml:"failure_rate"` // fraction, 0-1
	Efficiency       int     `bson:"efficiency" json:"efficiency" yaml:"efficiency"`
}

func (m PerformanceMetric) Equal(o PerformanceMetric) bool {
	return m.AssetID == o.AssetID &&
		m.Uptime == o.Uptime &&
		m.Downtime == o.Downtime &&
		m.MaintenanceCosts == o.MaintenanceCosts &&
		m.FailureRate == o.FailureRate &&
		m.Efficiency == o.Efficiency
}
