package worker

import (
	"context"
	"fmt"

	"spendlens/internal/amqp"
	"spendlens/internal/filter"
	"spendlens/internal/log"
	"spendlens/internal/source"
	"spendlens/internal/views"
)

// RefreshWorker keeps a read replica of the analytics state warm. It
// listens for change notifications and rebuilds its engine from the
// shared store, so dashboards served from this process never pay the
// first-read computation cost.
type RefreshWorker struct {
	store   source.RecordSource
	persist filter.Persistence
	filters *filter.Store
	engine  *views.Engine
	logger  *log.Logger
}

func NewRefreshWorker(store source.RecordSource, persist filter.Persistence, filters *filter.Store, engine *views.Engine, logger *log.Logger) *RefreshWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &RefreshWorker{
		store:   store,
		persist: persist,
		filters: filters,
		engine:  engine,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleFiltersChanged reloads the persisted filter state and applies it
// to the local filter store.
func (w *RefreshWorker) HandleFiltersChanged(ctx context.Context, msg *amqp.FiltersChangedMessage) error {
	data, err := w.persist.LoadFilterSpec(ctx)
	if err != nil {
		return fmt.Errorf("load filter state: %w", err)
	}

	spec := filter.Decode(data)
	if err := w.filters.Update(ctx, patchFrom(spec)); err != nil {
		return fmt.Errorf("apply filter state: %w", err)
	}

	if got := w.filters.Current().Signature(); got != msg.Signature {
		// The store moved on since the message was published. The next
		// notification will reconcile.
		w.logger.WarnContext(ctx, "filter signature drift",
			log.FieldFilterSignature, got,
			"announced_signature", msg.Signature)
	}

	w.logger.InfoContext(ctx, "filters refreshed", append(log.NewFields().
		WithOperation(log.OpFilter).
		ToSlice(), log.FieldFilterSignature, msg.Signature)...)
	return w.engine.Warm(ctx)
}

// HandleDatasetReplaced reloads the dataset snapshot and rebuilds the
// engine views.
func (w *RefreshWorker) HandleDatasetReplaced(ctx context.Context, msg *amqp.DatasetReplacedMessage) error {
	records, snapshotID, err := w.store.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	if snapshotID != msg.SnapshotID {
		w.logger.WarnContext(ctx, "snapshot drift, loading current state",
			log.FieldSnapshotID, snapshotID,
			"announced_snapshot", msg.SnapshotID)
	}

	w.engine.ReplaceDataset(records, snapshotID)
	w.logger.InfoContext(ctx, "dataset refreshed", log.NewFields().
		WithOperation(log.OpLoad).
		WithDataset(snapshotID, w.engine.Version(), len(records)).
		ToSlice()...)
	return w.engine.Warm(ctx)
}

// RefreshAll rebuilds filters and dataset from the store. Used at
// startup before the first notification arrives.
func (w *RefreshWorker) RefreshAll(ctx context.Context) error {
	records, snapshotID, err := w.store.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	w.engine.ReplaceDataset(records, snapshotID)

	data, err := w.persist.LoadFilterSpec(ctx)
	if err != nil {
		return fmt.Errorf("load filter state: %w", err)
	}
	if data != nil {
		if err := w.filters.Update(ctx, patchFrom(filter.Decode(data))); err != nil {
			return fmt.Errorf("apply filter state: %w", err)
		}
	}

	w.logger.InfoContext(ctx, "state refreshed", log.NewFields().
		WithOperation(log.OpWarm).
		WithDataset(snapshotID, w.engine.Version(), len(records)).
		ToSlice()...)
	return w.engine.Warm(ctx)
}

// patchFrom converts a full spec into a patch touching every dimension.
func patchFrom(spec filter.Spec) filter.Patch {
	return filter.Patch{
		DateRange:     &spec.DateRange,
		Categories:    &spec.Categories,
		Subcategories: &spec.Subcategories,
		Suppliers:     &spec.Suppliers,
		Locations:     &spec.Locations,
		Years:         &spec.Years,
		AmountRange:   &spec.AmountRange,
	}
}
