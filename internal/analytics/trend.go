package analytics

import (
	"sort"

	"spendlens/internal/core"
)

// ConsolidationSavingsRate is the flat estimate applied to a category's
// spend when more than two suppliers serve it.
const ConsolidationSavingsRate = 0.10

type (
	// MonthTotal is one point of the monthly trend, keyed YYYY-MM.
	MonthTotal struct {
		Month string
		Total float64
		Count int
	}

	// TailSpendResult describes the long tail of low-spend suppliers.
	TailSpendResult struct {
		Suppliers      []Summary
		TailCount      int
		TailSpend      float64
		TailPercentage float64
	}

	// ConsolidationOpportunity flags a category spread across more than
	// two suppliers, with an estimated savings from consolidating.
	ConsolidationOpportunity struct {
		Category         string
		SupplierCount    int
		TotalSpend       float64
		Suppliers        []Summary
		PotentialSavings float64
	}
)

// MonthlyTrend groups records by calendar month (YYYY-MM) in ascending
// order. ISO dates make the chronological sort a plain string sort.
func MonthlyTrend(records []core.Record) []MonthTotal {
	rows := GroupSum(records, func(r core.Record) string {
		if len(r.Date) < 7 {
			return ""
		}
		return r.Date[:7]
	}, SkipBlank)

	out := make([]MonthTotal, 0, len(rows))
	for _, s := range rows {
		out = append(out, MonthTotal{Month: s.Key, Total: s.Total, Count: s.Count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// TailSpend walks the supplier ranking from the bottom, collecting
// suppliers until their combined spend reaches thresholdPercent of the
// total. These are the candidates for catalogue or card purchasing.
func TailSpend(records []core.Record, thresholdPercent float64) TailSpendResult {
	suppliers := TopN(GroupSum(records, func(r core.Record) string { return r.Supplier }, SkipBlank), 0)
	total := TotalSpend(records)
	threshold := total * thresholdPercent / 100

	var result TailSpendResult
	var cumulative float64
	for i := len(suppliers) - 1; i >= 0; i-- {
		if cumulative >= threshold {
			break
		}
		cumulative += suppliers[i].Total
		result.Suppliers = append(result.Suppliers, suppliers[i])
	}
	result.TailCount = len(result.Suppliers)
	result.TailSpend = cumulative
	result.TailPercentage = PercentageOf(cumulative, total)
	return result
}

// Consolidation finds categories served by more than two suppliers,
// ordered by supplier count descending, each with its supplier rollup
// and a flat savings estimate.
func Consolidation(records []core.Record) []ConsolidationOpportunity {
	byCategory := make(map[string][]core.Record)
	var order []string
	for _, r := range records {
		if _, ok := byCategory[r.Category]; !ok {
			order = append(order, r.Category)
		}
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	var out []ConsolidationOpportunity
	for _, category := range order {
		members := byCategory[category]
		suppliers := TopN(GroupSum(members, func(r core.Record) string { return r.Supplier }, SkipBlank), 0)
		if len(suppliers) <= 2 {
			continue
		}
		total := TotalSpend(members)
		out = append(out, ConsolidationOpportunity{
			Category:         category,
			SupplierCount:    len(suppliers),
			TotalSpend:       total,
			Suppliers:        WithPercentages(suppliers, total),
			PotentialSavings: total * ConsolidationSavingsRate,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SupplierCount > out[j].SupplierCount })
	return out
}
