package analytics

import (
	"sort"

	"spendlens/internal/core"
)

// TopMoverCount is the fixed truncation for gainer/decliner lists.
const TopMoverCount = 5

type (
	// YoYEntry compares one dimension value across the two years.
	YoYEntry struct {
		Key            string
		YearA          float64
		YearB          float64
		AbsoluteChange float64 // B - A
		GrowthPercent  float64 // (B-A)/A*100 when A > 0, else 0
	}

	// MonthPair is one fiscal-month point of the two-year time series.
	MonthPair struct {
		Month string
		YearA float64
		YearB float64
	}

	// YoYReport is the full year-over-year comparison for two
	// caller-selected years.
	YoYReport struct {
		YearA, YearB int
		Overall      YoYEntry
		Categories   []YoYEntry
		Suppliers    []YoYEntry
		TopGainers   []YoYEntry // categories present in both years, desc growth
		TopDecliners []YoYEntry // categories present in both years, asc growth
		Monthly      []MonthPair
	}
)

// CompareYears partitions records into the two requested years under the
// active convention (fiscal Jul-Jun or calendar) and compares overall,
// per-category and per-supplier spend. Top movers consider only entries
// present in both years with nonzero year-A spend.
func CompareYears(records []core.Record, yearA, yearB int, fiscal bool) YoYReport {
	var bucketA, bucketB []core.Record
	for _, r := range records {
		switch core.YearOf(r, fiscal) {
		case yearA:
			bucketA = append(bucketA, r)
		case yearB:
			bucketB = append(bucketB, r)
		}
	}

	report := YoYReport{
		YearA:      yearA,
		YearB:      yearB,
		Overall:    entry("Total", TotalSpend(bucketA), TotalSpend(bucketB)),
		Categories: compareDimension(bucketA, bucketB, func(r core.Record) string { return r.Category }),
		Suppliers:  compareDimension(bucketA, bucketB, func(r core.Record) string { return r.Supplier }),
		Monthly:    monthlySeries(bucketA, bucketB, fiscal),
	}
	report.TopGainers, report.TopDecliners = topMovers(report.Categories, TopMoverCount)
	return report
}

func entry(key string, a, b float64) YoYEntry {
	e := YoYEntry{Key: key, YearA: a, YearB: b, AbsoluteChange: b - a}
	if a > 0 {
		e.GrowthPercent = Round2((b - a) / a * 100)
	}
	return e
}

// compareDimension joins the two years' groupings on key. Entries come
// back in year-A first-seen order, with year-B-only entries appended.
func compareDimension(bucketA, bucketB []core.Record, keyFn func(core.Record) string) []YoYEntry {
	sumsA := GroupSum(bucketA, keyFn, SkipBlank)
	sumsB := GroupSum(bucketB, keyFn, SkipBlank)

	totalsB := make(map[string]float64, len(sumsB))
	for _, s := range sumsB {
		totalsB[s.Key] = s.Total
	}

	seen := make(map[string]bool, len(sumsA))
	out := make([]YoYEntry, 0, len(sumsA)+len(sumsB))
	for _, s := range sumsA {
		out = append(out, entry(s.Key, s.Total, totalsB[s.Key]))
		seen[s.Key] = true
	}
	for _, s := range sumsB {
		if !seen[s.Key] {
			out = append(out, entry(s.Key, 0, s.Total))
		}
	}
	return out
}

// topMovers ranks gainers by descending growth and decliners by
// ascending growth, considering only entries present in both years with
// nonzero year-A spend, truncated to k.
func topMovers(entries []YoYEntry, k int) (gainers, decliners []YoYEntry) {
	var movers []YoYEntry
	for _, e := range entries {
		if e.YearA > 0 && e.YearB > 0 {
			movers = append(movers, e)
		}
	}

	gainers = append([]YoYEntry(nil), movers...)
	sort.SliceStable(gainers, func(i, j int) bool { return gainers[i].GrowthPercent > gainers[j].GrowthPercent })
	if len(gainers) > k {
		gainers = gainers[:k]
	}

	decliners = append([]YoYEntry(nil), movers...)
	sort.SliceStable(decliners, func(i, j int) bool { return decliners[i].GrowthPercent < decliners[j].GrowthPercent })
	if len(decliners) > k {
		decliners = decliners[:k]
	}
	return gainers, decliners
}

// monthlySeries builds the per-month totals of each year under the
// active convention, keyed by the convention's month labels.
func monthlySeries(bucketA, bucketB []core.Record, fiscal bool) []MonthPair {
	var a, b [12]float64
	for _, r := range bucketA {
		a[core.MonthIndex(r.Date, fiscal)] += r.Amount
	}
	for _, r := range bucketB {
		b[core.MonthIndex(r.Date, fiscal)] += r.Amount
	}

	labels := core.MonthLabels(fiscal)
	out := make([]MonthPair, 12)
	for i := range out {
		out[i] = MonthPair{Month: labels[i], YearA: a[i], YearB: b[i]}
	}
	return out
}
