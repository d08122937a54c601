package websocket

import "time"

// ChangeEvent types.
const (
	AssetCreated  = "ASSET_CREATED"
	AssetUpdated  = "ASSET_UPDATED"
	AssetDeleted  = "ASSET_DELETED"
	MetricCreated = "PERFORMANCE_METRIC_CREATED"
	MetricUpdated = "PERFORMANCE_METRIC_UPDATED"
	MetricDeleted = "PERFORMANCE_METRIC_DELETED"
)

// ChangeEvent describes one successful mutation.
type ChangeEvent struct {
	Type       string      `json:"type"`
	Collection string      `json:"collection"`
	AssetID    string      `json:"assetId"`
	Data       interface{} `json:"data,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

func NewChangeEvent(eventType, collection, assetID string, data interface{}) ChangeEvent {
	return ChangeEvent{
		Type:       eventType,
		Collection: collection,
		AssetID:    assetID,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}
}
