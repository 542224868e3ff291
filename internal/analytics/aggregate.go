// Package analytics contains the pure derived-metric transforms: grouped
// summaries, Pareto classification, spend stratification, seasonality and
// year-over-year comparison. Every function here is side-effect free and
// returns a safe zero result for an empty input; presentation layers never
// need to branch on failure.
package analytics

import (
	"math"
	"sort"

	"spendlens/internal/core"
)

// BlankKeyPolicy controls how a blank grouping key is handled.
type BlankKeyPolicy int

const (
	// SkipBlank drops records whose key is blank (category/supplier
	// aggregations).
	SkipBlank BlankKeyPolicy = iota
	// BlankAsUnknown folds blank keys into "Unknown" (location
	// aggregations).
	BlankAsUnknown
)

// Summary is one row of a grouped aggregation.
type Summary struct {
	Key        string
	Total      float64
	Count      int
	Percentage float64 // share of the grand total, 2 decimals
}

// Overview is the headline stat block for a record set.
type Overview struct {
	TotalSpend       float64
	TransactionCount int
	SupplierCount    int
	CategoryCount    int
	AvgTransaction   float64
}

// GroupSum groups records by keyFn in a single pass, summing amounts and
// counting occurrences. Rows come back in first-encountered order.
func GroupSum(records []core.Record, keyFn func(core.Record) string, policy BlankKeyPolicy) []Summary {
	totals := make(map[string]*Summary)
	var order []string
	for _, r := range records {
		key := keyFn(r)
		if key == "" {
			if policy == SkipBlank {
				continue
			}
			key = core.DefaultLocation
		}
		s, ok := totals[key]
		if !ok {
			s = &Summary{Key: key}
			totals[key] = s
			order = append(order, key)
		}
		s.Total += r.Amount
		s.Count++
	}
	out := make([]Summary, 0, len(order))
	for _, key := range order {
		out = append(out, *totals[key])
	}
	return out
}

// TopN sorts summaries descending by total spend (stable, so ties keep
// first-encountered order) and truncates to n. n <= 0 keeps every row.
func TopN(summaries []Summary, n int) []Summary {
	out := append([]Summary(nil), summaries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PercentageOf returns part as a share of whole, rounded to 2 decimals.
// A zero whole yields 0, never NaN. Cumulative tracking must use the raw
// ratio instead: rounding belongs at the presentation boundary only.
func PercentageOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return Round2(part / whole * 100)
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TotalSpend sums all record amounts.
func TotalSpend(records []core.Record) float64 {
	var total float64
	for _, r := range records {
		total += r.Amount
	}
	return total
}

// WithPercentages fills in each summary's share of the given grand total.
func WithPercentages(summaries []Summary, grandTotal float64) []Summary {
	for i := range summaries {
		summaries[i].Percentage = PercentageOf(summaries[i].Total, grandTotal)
	}
	return summaries
}

// SpendByCategory returns per-category totals sorted descending by spend.
func SpendByCategory(records []core.Record) []Summary {
	rows := TopN(GroupSum(records, func(r core.Record) string { return r.Category }, SkipBlank), 0)
	return WithPercentages(rows, TotalSpend(records))
}

// SpendBySupplier returns per-supplier totals sorted descending by spend.
func SpendBySupplier(records []core.Record) []Summary {
	rows := TopN(GroupSum(records, func(r core.Record) string { return r.Supplier }, SkipBlank), 0)
	return WithPercentages(rows, TotalSpend(records))
}

// SpendByLocation returns per-location totals sorted descending by spend.
// Blank locations roll up under "Unknown".
func SpendByLocation(records []core.Record) []Summary {
	rows := TopN(GroupSum(records, func(r core.Record) string { return r.Location }, BlankAsUnknown), 0)
	return WithPercentages(rows, TotalSpend(records))
}

// OverviewStats computes the headline stat block.
func OverviewStats(records []core.Record) Overview {
	suppliers := make(map[string]struct{})
	categories := make(map[string]struct{})
	var total float64
	for _, r := range records {
		total += r.Amount
		suppliers[r.Supplier] = struct{}{}
		categories[r.Category] = struct{}{}
	}
	o := Overview{
		TotalSpend:       total,
		TransactionCount: len(records),
		SupplierCount:    len(suppliers),
		CategoryCount:    len(categories),
	}
	if o.TransactionCount > 0 {
		o.AvgTransaction = total / float64(o.TransactionCount)
	}
	return o
}
