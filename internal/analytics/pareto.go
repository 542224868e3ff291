package analytics

import "spendlens/internal/core"

// Pareto classification tiers, assigned by cumulative share of total
// spend with inclusive upper bounds evaluated in ascending order.
const (
	ClassCritical  = "Critical"   // cumulative <= 80%
	ClassImportant = "Important"  // cumulative <= 90%
	ClassStandard  = "Standard"   // cumulative <= 95%
	ClassLowImpact = "Low Impact" // everything after
)

// ParetoRow is one supplier's position in the concentration ranking.
type ParetoRow struct {
	Rank                 int
	Entity               string
	Spend                float64
	Percentage           float64
	CumulativePercentage float64
	Classification       string
}

// ParetoRank ranks suppliers by spend, walks the ranking accumulating
// cumulative share and assigns each supplier exactly one classification.
// Ties keep first-encountered order; zero total spend yields an empty
// ranking rather than dividing by zero.
func ParetoRank(records []core.Record) []ParetoRow {
	suppliers := TopN(GroupSum(records, func(r core.Record) string { return r.Supplier }, SkipBlank), 0)
	total := TotalSpend(records)
	if total == 0 {
		return nil
	}

	rows := make([]ParetoRow, 0, len(suppliers))
	var cumulative float64
	for i, s := range suppliers {
		cumulative += s.Total
		// Classification uses the unrounded share; rounding here would
		// shift entities across the 80/90/95 boundaries.
		share := cumulative / total * 100
		rows = append(rows, ParetoRow{
			Rank:                 i + 1,
			Entity:               s.Key,
			Spend:                s.Total,
			Percentage:           PercentageOf(s.Total, total),
			CumulativePercentage: Round2(share),
			Classification:       classify(share),
		})
	}
	return rows
}

func classify(cumulativeShare float64) string {
	switch {
	case cumulativeShare <= 80:
		return ClassCritical
	case cumulativeShare <= 90:
		return ClassImportant
	case cumulativeShare <= 95:
		return ClassStandard
	default:
		return ClassLowImpact
	}
}
