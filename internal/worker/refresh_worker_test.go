package worker

import (
	"context"
	"testing"

	"spendlens/internal/amqp"
	"spendlens/internal/core"
	"spendlens/internal/filter"
	"spendlens/internal/source/memory"
	"spendlens/internal/views"
)

func newWorker(t *testing.T, store *memory.Store) (*RefreshWorker, *views.Engine) {
	t.Helper()
	filters := filter.NewStore(context.Background(), store)
	engine := views.NewEngine(filters, false, 0)
	return NewRefreshWorker(store, store, filters, engine, nil), engine
}

func seedStore(t *testing.T, store *memory.Store, snapshotID string, amounts ...float64) {
	t.Helper()
	records := make([]core.Record, 0, len(amounts))
	for _, a := range amounts {
		r, err := core.NewRecord(core.Record{Supplier: "Acme", Category: "IT", Amount: a, Date: "2023-05-01"})
		if err != nil {
			t.Fatalf("seed record: %v", err)
		}
		records = append(records, r)
	}
	if err := store.ReplaceRecords(context.Background(), records, snapshotID); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}

func TestHandleDatasetReplacedLoadsCurrentSnapshot(t *testing.T) {
	store := memory.New(nil, "")
	w, engine := newWorker(t, store)
	seedStore(t, store, "snap-2", 100, 200)

	msg := amqp.NewDatasetReplacedMessage("snap-2", 1, 2)
	if err := w.HandleDatasetReplaced(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if engine.SnapshotID() != "snap-2" {
		t.Errorf("snapshot = %q, want snap-2", engine.SnapshotID())
	}
	if got := engine.Overview().TotalSpend; got != 300 {
		t.Errorf("total spend = %v, want 300", got)
	}
}

func TestHandleDatasetReplacedToleratesSnapshotDrift(t *testing.T) {
	store := memory.New(nil, "")
	w, engine := newWorker(t, store)
	seedStore(t, store, "snap-9", 50)

	// Notification announces an older snapshot; the worker loads
	// whatever the store currently holds.
	msg := amqp.NewDatasetReplacedMessage("snap-3", 1, 1)
	if err := w.HandleDatasetReplaced(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if engine.SnapshotID() != "snap-9" {
		t.Errorf("snapshot = %q, want snap-9", engine.SnapshotID())
	}
}

func TestHandleFiltersChangedAppliesPersistedState(t *testing.T) {
	store := memory.New(nil, "")

	// A writer process persists a category filter.
	writerFilters := filter.NewStore(context.Background(), store)
	if err := writerFilters.Update(context.Background(), filter.Patch{Categories: &[]string{"IT"}}); err != nil {
		t.Fatalf("persist filter: %v", err)
	}
	signature := writerFilters.Current().Signature()

	w, engine := newWorker(t, store)
	seedStore(t, store, "snap-1", 100)
	if err := w.RefreshAll(context.Background()); err != nil {
		t.Fatalf("refresh all: %v", err)
	}

	// Another record category is filtered out after the change applies.
	hr, _ := core.NewRecord(core.Record{Supplier: "Globex", Category: "HR", Amount: 900, Date: "2023-05-02"})
	it, _ := core.NewRecord(core.Record{Supplier: "Acme", Category: "IT", Amount: 100, Date: "2023-05-01"})
	if err := store.ReplaceRecords(context.Background(), []core.Record{it, hr}, "snap-1"); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if err := w.HandleDatasetReplaced(context.Background(), amqp.NewDatasetReplacedMessage("snap-1", 2, 2)); err != nil {
		t.Fatalf("dataset: %v", err)
	}

	if err := w.HandleFiltersChanged(context.Background(), amqp.NewFiltersChangedMessage(signature)); err != nil {
		t.Fatalf("filters: %v", err)
	}

	if got := engine.Overview().TotalSpend; got != 100 {
		t.Errorf("total spend = %v, want 100 (HR filtered out)", got)
	}
}

func TestRefreshAllEmptyStore(t *testing.T) {
	store := memory.New(nil, "")
	w, engine := newWorker(t, store)

	if err := w.RefreshAll(context.Background()); err != nil {
		t.Fatalf("refresh all: %v", err)
	}
	if got := engine.Overview().TotalSpend; got != 0 {
		t.Errorf("total spend = %v, want 0", got)
	}
}
