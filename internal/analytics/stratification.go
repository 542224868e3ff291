package analytics

import "spendlens/internal/core"

// Band-level priority/risk tiers, a deterministic presentation heuristic
// on the band's share of total spend.
const (
	PriorityCritical  = "Critical"
	PriorityStrategic = "Strategic"
	PriorityTactical  = "Tactical"

	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
)

type (
	// BandRow is one spend band's slice of the histogram.
	BandRow struct {
		Band             string
		TotalSpend       float64
		SupplierCount    int
		TransactionCount int
		AvgPerSupplier   float64
		PercentOfTotal   float64
		Priority         string
		Risk             string
	}

	// SegmentRow is one strategic segment's rollup of its member bands.
	SegmentRow struct {
		Segment          string
		TotalSpend       float64
		SupplierCount    int
		TransactionCount int
		PercentOfTotal   float64
		Bands            []string
		Color            string
		Strategy         string
	}

	// SupplierDrill is one supplier's rollup inside a segment
	// drill-through, sorted descending by spend.
	SupplierDrill struct {
		Supplier         string
		Spend            float64
		TransactionCount int
		PercentOfSegment float64
	}
)

// BandHistogram buckets every record into its spend band and reports
// per-band spend, unique suppliers, transactions, average spend per
// supplier and share of the grand total. All ten bands are emitted in
// table order so the histogram shape is stable across datasets.
func BandHistogram(records []core.Record) []BandRow {
	type bucket struct {
		total     float64
		count     int
		suppliers map[string]struct{}
	}
	buckets := make(map[string]*bucket, len(core.SpendBands))
	for _, b := range core.SpendBands {
		buckets[b.Label] = &bucket{suppliers: make(map[string]struct{})}
	}

	var grandTotal float64
	for _, r := range records {
		b := buckets[core.BandOf(r).Label]
		b.total += r.Amount
		b.count++
		b.suppliers[r.Supplier] = struct{}{}
		grandTotal += r.Amount
	}

	rows := make([]BandRow, 0, len(core.SpendBands))
	for _, band := range core.SpendBands {
		b := buckets[band.Label]
		row := BandRow{
			Band:             band.Label,
			TotalSpend:       b.total,
			SupplierCount:    len(b.suppliers),
			TransactionCount: b.count,
			PercentOfTotal:   PercentageOf(b.total, grandTotal),
		}
		if row.SupplierCount > 0 {
			row.AvgPerSupplier = b.total / float64(row.SupplierCount)
		}
		row.Priority, row.Risk = scoreBand(row.PercentOfTotal)
		rows = append(rows, row)
	}
	return rows
}

func scoreBand(percentOfTotal float64) (priority, risk string) {
	switch {
	case percentOfTotal > 30:
		return PriorityCritical, RiskHigh
	case percentOfTotal > 15:
		return PriorityStrategic, RiskMedium
	default:
		return PriorityTactical, RiskLow
	}
}

// SegmentRollup sums the band histogram into the four strategic
// segments. Supplier counts are recomputed from the records so a
// supplier spanning two bands of a segment is counted once.
func SegmentRollup(records []core.Record) []SegmentRow {
	type bucket struct {
		total     float64
		count     int
		suppliers map[string]struct{}
	}
	buckets := make(map[string]*bucket, len(core.Segments))
	for _, s := range core.Segments {
		buckets[s.Name] = &bucket{suppliers: make(map[string]struct{})}
	}

	var grandTotal float64
	for _, r := range records {
		seg := core.SegmentForBand(core.BandOf(r))
		b := buckets[seg.Name]
		b.total += r.Amount
		b.count++
		b.suppliers[r.Supplier] = struct{}{}
		grandTotal += r.Amount
	}

	rows := make([]SegmentRow, 0, len(core.Segments))
	for _, seg := range core.Segments {
		b := buckets[seg.Name]
		rows = append(rows, SegmentRow{
			Segment:          seg.Name,
			TotalSpend:       b.total,
			SupplierCount:    len(b.suppliers),
			TransactionCount: b.count,
			PercentOfTotal:   PercentageOf(b.total, grandTotal),
			Bands:            core.SegmentBands(seg),
			Color:            seg.Color,
			Strategy:         seg.Strategy,
		})
	}
	return rows
}

// DrillSegment recovers a segment's member records and rolls them up per
// supplier, sorted descending by spend with percentages relative to the
// segment total. An unknown segment name yields an empty result.
func DrillSegment(records []core.Record, segmentName string) []SupplierDrill {
	seg, ok := core.SegmentByName(segmentName)
	if !ok {
		return nil
	}

	var members []core.Record
	for _, r := range records {
		if core.SegmentForBand(core.BandOf(r)).Name == seg.Name {
			members = append(members, r)
		}
	}

	suppliers := TopN(GroupSum(members, func(r core.Record) string { return r.Supplier }, SkipBlank), 0)
	segmentTotal := TotalSpend(members)

	out := make([]SupplierDrill, 0, len(suppliers))
	for _, s := range suppliers {
		out = append(out, SupplierDrill{
			Supplier:         s.Key,
			Spend:            s.Total,
			TransactionCount: s.Count,
			PercentOfSegment: PercentageOf(s.Total, segmentTotal),
		})
	}
	return out
}
