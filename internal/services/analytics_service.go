package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"spendlens/internal/core"
	"spendlens/internal/filter"
	"spendlens/internal/log"
	"spendlens/internal/source"
	"spendlens/internal/views"
)

// Publisher emits change notifications to out-of-process consumers.
type Publisher interface {
	PublishFiltersChanged(ctx context.Context, signature string) error
	PublishDatasetReplaced(ctx context.Context, snapshotID string, version uint64, recordCount int) error
	Close() error
}

// AnalyticsService orchestrates the dataset, filter state and view engine.
// Publishing is best effort: local state always wins over notification
// failures.
type AnalyticsService struct {
	store     source.RecordStore
	filters   *filter.Store
	engine    *views.Engine
	publisher Publisher
	logger    *log.Logger
}

func NewAnalyticsService(store source.RecordStore, filters *filter.Store, engine *views.Engine, publisher Publisher, logger *log.Logger) *AnalyticsService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &AnalyticsService{
		store:     store,
		filters:   filters,
		engine:    engine,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentApp),
	}
}

// Engine exposes the view engine for read access.
func (s *AnalyticsService) Engine() *views.Engine {
	return s.engine
}

// LoadDataset reads the stored snapshot into the view engine.
func (s *AnalyticsService) LoadDataset(ctx context.Context) (int, error) {
	records, snapshotID, err := s.store.ListRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("load dataset: %w", err)
	}

	s.engine.ReplaceDataset(records, snapshotID)
	s.logger.InfoContext(ctx, "dataset loaded", log.NewFields().
		WithOperation(log.OpLoad).
		WithDataset(snapshotID, s.engine.Version(), len(records)).
		ToSlice()...)
	return len(records), nil
}

// ReplaceDataset validates the incoming records, persists them as a new
// snapshot and swaps them into the view engine. Records that fail
// validation reject the whole batch.
func (s *AnalyticsService) ReplaceDataset(ctx context.Context, records []core.Record) (string, error) {
	validated := make([]core.Record, 0, len(records))
	seen := make(map[string]int, len(records))
	duplicates := 0
	for i, r := range records {
		v, err := core.NewRecord(r)
		if err != nil {
			return "", fmt.Errorf("record %d: %w", i, err)
		}
		key := fmt.Sprintf("%s|%s|%s|%.2f", v.Supplier, v.Category, v.Date, v.Amount)
		if seen[key] > 0 {
			duplicates++
		}
		seen[key]++
		validated = append(validated, v)
	}

	snapshotID := uuid.NewString()
	if err := s.store.ReplaceRecords(ctx, validated, snapshotID); err != nil {
		return "", fmt.Errorf("persist snapshot: %w", err)
	}

	s.engine.ReplaceDataset(validated, snapshotID)
	version := s.engine.Version()
	s.logger.InfoContext(ctx, "dataset replaced", append(log.NewFields().
		WithOperation(log.OpReplace).
		WithDataset(snapshotID, version, len(validated)).
		ToSlice(), "duplicate_count", duplicates)...)

	if s.publisher != nil {
		if err := s.publisher.PublishDatasetReplaced(ctx, snapshotID, version, len(validated)); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish dataset notification", log.NewFields().
				WithOperation(log.OpPublish).
				WithDataset(snapshotID, version, len(validated)).
				WithError(err).
				ToSlice()...)
			// Local state is already swapped, notification is best effort.
		}
	}

	return snapshotID, nil
}

// UpdateFilters applies a partial filter change and notifies consumers.
func (s *AnalyticsService) UpdateFilters(ctx context.Context, patch filter.Patch) error {
	if err := s.filters.Update(ctx, patch); err != nil {
		return fmt.Errorf("update filters: %w", err)
	}
	s.publishFilters(ctx)
	return nil
}

// ResetFilters clears every filter dimension.
func (s *AnalyticsService) ResetFilters(ctx context.Context) error {
	if err := s.filters.Reset(ctx); err != nil {
		return fmt.Errorf("reset filters: %w", err)
	}
	s.publishFilters(ctx)
	return nil
}

func (s *AnalyticsService) publishFilters(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	signature := s.filters.Current().Signature()
	if err := s.publisher.PublishFiltersChanged(ctx, signature); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish filter notification", append(log.NewFields().
			WithOperation(log.OpPublish).
			WithError(err).
			ToSlice(), log.FieldFilterSignature, signature)...)
	}
}

// Close releases the publisher connection if one is configured.
func (s *AnalyticsService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	return nil
}
