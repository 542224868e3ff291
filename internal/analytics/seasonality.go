package analytics

import (
	"math"
	"sort"

	"spendlens/internal/core"
)

// Seasonality impact tiers, keyed off the strength (coefficient of
// variation of the monthly indices).
const (
	ImpactHigh   = "High"   // strength > 30
	ImpactMedium = "Medium" // strength > 15
	ImpactLow    = "Low"

	// MeaningfulSeasonality is the strength above which a category is
	// surfaced at all.
	MeaningfulSeasonality = 15
)

// SeasonalityRow describes one category's monthly spend pattern under
// the active fiscal-year convention.
type SeasonalityRow struct {
	Category         string
	MonthlySpend     [12]float64
	Indices          [12]float64 // monthSpend / averageMonthlySpend * 100
	Strength         float64     // stddev(indices) / mean(indices) * 100
	PeakMonth        string
	LowMonth         string
	PeakSpendShare   float64 // peak month spend / category total
	SavingsRate      float64
	SavingsPotential float64
	Impact           string
	TotalSpend       float64
}

// Seasonality builds a 12-month spend vector per category under the
// requested convention (fiscal Jul-Jun or plain calendar), derives the
// seasonal indices and surfaces only categories whose strength exceeds
// the meaningful threshold, sorted descending by savings potential.
//
// The savings heuristic is tiered by strength (>30 -> 25%, >20 -> 20%,
// else 10%) and applies the rate to peak-month spend only:
// totalSpend * peakSpendShare * rate.
func Seasonality(records []core.Record, fiscal bool) []SeasonalityRow {
	labels := core.MonthLabels(fiscal)

	monthly := make(map[string]*[12]float64)
	var order []string
	for _, r := range records {
		v, ok := monthly[r.Category]
		if !ok {
			v = &[12]float64{}
			monthly[r.Category] = v
			order = append(order, r.Category)
		}
		v[core.MonthIndex(r.Date, fiscal)] += r.Amount
	}

	var rows []SeasonalityRow
	for _, category := range order {
		spend := *monthly[category]
		var total float64
		for _, v := range spend {
			total += v
		}
		if total == 0 {
			continue
		}

		avg := total / 12
		var indices [12]float64
		for i, v := range spend {
			indices[i] = v / avg * 100
		}

		strength := coefficientOfVariation(indices[:])
		if strength <= MeaningfulSeasonality {
			continue
		}

		peak, low := argMaxMin(spend[:])
		peakShare := spend[peak] / total
		rate := savingsRate(strength)

		rows = append(rows, SeasonalityRow{
			Category:         category,
			MonthlySpend:     spend,
			Indices:          indices,
			Strength:         strength,
			PeakMonth:        labels[peak],
			LowMonth:         labels[low],
			PeakSpendShare:   peakShare,
			SavingsRate:      rate,
			SavingsPotential: total * peakShare * rate,
			Impact:           impactLevel(strength),
			TotalSpend:       total,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SavingsPotential > rows[j].SavingsPotential
	})
	return rows
}

// coefficientOfVariation is stddev/mean*100 over the 12 indices, with a
// population standard deviation. A zero mean yields 0.
func coefficientOfVariation(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss/n) / mean * 100
}

// argMaxMin returns the first-occurrence argmax and argmin.
func argMaxMin(values []float64) (max, min int) {
	for i, v := range values {
		if v > values[max] {
			max = i
		}
		if v < values[min] {
			min = i
		}
	}
	return max, min
}

func savingsRate(strength float64) float64 {
	switch {
	case strength > 30:
		return 0.25
	case strength > 20:
		return 0.20
	default:
		return 0.10
	}
}

func impactLevel(strength float64) string {
	switch {
	case strength > 30:
		return ImpactHigh
	case strength > MeaningfulSeasonality:
		return ImpactMedium
	default:
		return ImpactLow
	}
}
