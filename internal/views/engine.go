// Package views memoizes the derived analytics over the active dataset
// and filter specification. Results are cached by (dataset version, view
// kind, filter signature) and recomputed lazily: a filter write or a
// dataset replacement purges the cache, nothing recomputes proactively.
package views

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"spendlens/internal/analytics"
	"spendlens/internal/cache"
	"spendlens/internal/core"
	"spendlens/internal/filter"
)

// DefaultCacheSize bounds the derived-view cache. Entries never expire;
// the bound is a memory cap for sessions that churn through filters.
const DefaultCacheSize = 256

// Engine wraps the predicate engine and the analytical transforms with
// the two cache tiers: the raw dataset (identified by an explicit
// monotonic version, never by its length) and the derived views.
type Engine struct {
	mu         sync.Mutex
	records    []core.Record
	version    uint64
	snapshotID string
	spec       filter.Spec

	fiscal   bool
	derived  cache.Cache[any]
	computes atomic.Uint64
}

// Stats is a point-in-time view of the engine for logging.
type Stats struct {
	Version     uint64
	SnapshotID  string
	RecordCount int
	CacheSize   int
	Computes    uint64
}

// NewEngine creates an engine subscribed to the filter store: every
// successful filter write purges the derived tier, so consumers always
// observe the new specification on their next read.
func NewEngine(filters *filter.Store, fiscal bool, cacheSize int) *Engine {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	e := &Engine{
		fiscal:  fiscal,
		derived: cache.NewLRUCache[any](cacheSize),
	}
	if filters != nil {
		e.spec = filters.Current()
		filters.Subscribe(e.onFilterChanged)
	}
	return e
}

func (e *Engine) onFilterChanged(spec filter.Spec) {
	e.mu.Lock()
	e.spec = spec
	e.mu.Unlock()
	e.derived.Purge()
}

// ReplaceDataset installs a new raw record list, bumps the dataset
// version and invalidates both cache tiers. The version is an explicit
// counter so identical lengths with different content never collide.
func (e *Engine) ReplaceDataset(records []core.Record, snapshotID string) {
	e.mu.Lock()
	e.records = records
	e.version++
	e.snapshotID = snapshotID
	e.mu.Unlock()
	e.derived.Purge()
}

// Version returns the current dataset version.
func (e *Engine) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// SnapshotID returns the current dataset snapshot identifier.
func (e *Engine) SnapshotID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotID
}

// Stats reports version, record count and cache activity.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Version:     e.version,
		SnapshotID:  e.snapshotID,
		RecordCount: len(e.records),
		CacheSize:   e.derived.Size(),
		Computes:    e.computes.Load(),
	}
}

// Filtered returns the record subset selected by the active filter
// specification. The result is a copy: mutating it cannot corrupt the
// cached entry.
func (e *Engine) Filtered() []core.Record {
	rows := derive(e, "filtered", func(records []core.Record) []core.Record {
		return records
	})
	return append([]core.Record(nil), rows...)
}

// Overview returns the headline stats for the filtered records.
func (e *Engine) Overview() analytics.Overview {
	return derive(e, "overview", analytics.OverviewStats)
}

// SpendByCategory returns per-category totals for the filtered records.
func (e *Engine) SpendByCategory() []analytics.Summary {
	return derive(e, "by-category", analytics.SpendByCategory)
}

// SpendBySupplier returns per-supplier totals for the filtered records.
func (e *Engine) SpendBySupplier() []analytics.Summary {
	return derive(e, "by-supplier", analytics.SpendBySupplier)
}

// SpendByLocation returns per-location totals for the filtered records.
func (e *Engine) SpendByLocation() []analytics.Summary {
	return derive(e, "by-location", analytics.SpendByLocation)
}

// Pareto returns the supplier concentration ranking.
func (e *Engine) Pareto() []analytics.ParetoRow {
	return derive(e, "pareto", analytics.ParetoRank)
}

// Bands returns the spend band histogram.
func (e *Engine) Bands() []analytics.BandRow {
	return derive(e, "bands", analytics.BandHistogram)
}

// Segments returns the strategic segment rollup.
func (e *Engine) Segments() []analytics.SegmentRow {
	return derive(e, "segments", analytics.SegmentRollup)
}

// DrillSegment returns the per-supplier drill-through for one segment.
func (e *Engine) DrillSegment(segment string) []analytics.SupplierDrill {
	return derive(e, "drill:"+segment, func(records []core.Record) []analytics.SupplierDrill {
		return analytics.DrillSegment(records, segment)
	})
}

// Seasonality returns the categories with meaningful seasonality under
// the engine's fiscal-year convention.
func (e *Engine) Seasonality() []analytics.SeasonalityRow {
	kind := fmt.Sprintf("seasonality:fiscal=%t", e.fiscal)
	return derive(e, kind, func(records []core.Record) []analytics.SeasonalityRow {
		return analytics.Seasonality(records, e.fiscal)
	})
}

// CompareYears returns the year-over-year report for two years.
func (e *Engine) CompareYears(yearA, yearB int) analytics.YoYReport {
	kind := fmt.Sprintf("yoy:%d-%d:fiscal=%t", yearA, yearB, e.fiscal)
	return derive(e, kind, func(records []core.Record) analytics.YoYReport {
		return analytics.CompareYears(records, yearA, yearB, e.fiscal)
	})
}

// MonthlyTrend returns the chronological month totals.
func (e *Engine) MonthlyTrend() []analytics.MonthTotal {
	return derive(e, "trend", analytics.MonthlyTrend)
}

// TailSpend returns the long-tail supplier analysis.
func (e *Engine) TailSpend(thresholdPercent float64) analytics.TailSpendResult {
	kind := fmt.Sprintf("tail:%g", thresholdPercent)
	return derive(e, kind, func(records []core.Record) analytics.TailSpendResult {
		return analytics.TailSpend(records, thresholdPercent)
	})
}

// Consolidation returns the supplier consolidation opportunities.
func (e *Engine) Consolidation() []analytics.ConsolidationOpportunity {
	return derive(e, "consolidation", analytics.Consolidation)
}

// Warm populates the main derived views concurrently. The transforms are
// pure, so this is purely a latency optimization for a fresh dataset or
// filter; errors cannot occur and the group exists for the scheduling.
func (e *Engine) Warm(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { e.Overview(); return nil })
	g.Go(func() error { e.Pareto(); return nil })
	g.Go(func() error { e.Bands(); e.Segments(); return nil })
	g.Go(func() error { e.Seasonality(); return nil })
	return g.Wait()
}

// derive serves a view from the derived cache or computes it from the
// filtered records. The key ties the result to the dataset version and
// the filter signature, so either change makes the next read recompute.
func derive[T any](e *Engine, kind string, compute func([]core.Record) T) T {
	e.mu.Lock()
	records := e.records
	version := e.version
	spec := e.spec
	e.mu.Unlock()

	key := fmt.Sprintf("v%d|%s|%s", version, kind, spec.Signature())
	if v, ok := e.derived.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed
		}
	}

	e.computes.Add(1)
	out := compute(filter.Apply(records, &spec))
	e.derived.Set(key, out)
	return out
}
