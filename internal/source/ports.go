package source

import (
	"context"

	"spendlens/internal/core"
)

// Ports for dataset providers.
type (
	// RecordSource reads the current dataset snapshot.
	RecordSource interface {
		// ListRecords returns all records of the current snapshot and its ID.
		ListRecords(ctx context.Context) ([]core.Record, string, error)
	}

	// RecordStore is a source that can also swap in a new snapshot.
	RecordStore interface {
		RecordSource
		// ReplaceRecords atomically replaces the dataset with a new snapshot.
		ReplaceRecords(ctx context.Context, records []core.Record, snapshotID string) error
	}
)
