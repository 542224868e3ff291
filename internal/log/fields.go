package log

// Common field names for structured logging
const (
	FieldComponent       = "component"
	FieldOperation       = "operation"
	FieldError           = "error"
	FieldSnapshotID      = "snapshot_id"
	FieldDatasetVersion  = "dataset_version"
	FieldRecordCount     = "record_count"
	FieldFilterSignature = "filter_signature"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentFilter = "filter"
	ComponentSource = "source"
	ComponentWorker = "worker"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpReplace  = "replace"
	OpFilter   = "filter"
	OpWarm     = "warm"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithDataset adds snapshot and version fields
func (f LogFields) WithDataset(snapshotID string, version uint64, recordCount int) LogFields {
	f[FieldSnapshotID] = snapshotID
	f[FieldDatasetVersion] = version
	f[FieldRecordCount] = recordCount
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
