package amqp

import (
	"encoding/json"
	"time"
)

// Routing keys for the two notification kinds.
const (
	RouteFiltersChanged  = "filters.changed"
	RouteDatasetReplaced = "dataset.replaced"
)

// FiltersChangedMessage tells out-of-process consumers that the filter
// specification was written. It carries only the new signature; a
// consumer fetches whatever else it needs from storage.
type FiltersChangedMessage struct {
	Signature string    `json:"signature"`
	Timestamp time.Time `json:"timestamp"`
}

// DatasetReplacedMessage announces a new raw-data snapshot.
type DatasetReplacedMessage struct {
	SnapshotID  string    `json:"snapshot_id"`
	Version     uint64    `json:"version"`
	RecordCount int       `json:"record_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewFiltersChangedMessage creates a notification for a filter write.
func NewFiltersChangedMessage(signature string) *FiltersChangedMessage {
	return &FiltersChangedMessage{Signature: signature, Timestamp: time.Now()}
}

// NewDatasetReplacedMessage creates a notification for a snapshot swap.
func NewDatasetReplacedMessage(snapshotID string, version uint64, recordCount int) *DatasetReplacedMessage {
	return &DatasetReplacedMessage{
		SnapshotID:  snapshotID,
		Version:     version,
		RecordCount: recordCount,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *FiltersChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FiltersChangedMessageFromJSON creates a message from JSON bytes
func FiltersChangedMessageFromJSON(data []byte) (*FiltersChangedMessage, error) {
	var msg FiltersChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ToJSON converts the message to JSON bytes
func (m *DatasetReplacedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetReplacedMessageFromJSON creates a message from JSON bytes
func DatasetReplacedMessageFromJSON(data []byte) (*DatasetReplacedMessage, error) {
	var msg DatasetReplacedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
