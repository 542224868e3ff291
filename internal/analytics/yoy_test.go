package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlens/internal/core"
)

func TestCompareYearsReferenceScenario(t *testing.T) {
	// Category X: fy2024=1000, fy2025=1500 -> growth 50%, change +500.
	records := []core.Record{
		rec("Acme", "X", "2023-09-01", 1000), // fiscal 2024
		rec("Acme", "X", "2024-09-01", 1500), // fiscal 2025
	}
	report := CompareYears(records, 2024, 2025, true)

	require.Len(t, report.Categories, 1)
	x := report.Categories[0]
	assert.Equal(t, 1000.0, x.YearA)
	assert.Equal(t, 1500.0, x.YearB)
	assert.Equal(t, 500.0, x.AbsoluteChange)
	assert.Equal(t, 50.0, x.GrowthPercent)

	assert.Equal(t, 50.0, report.Overall.GrowthPercent)
}

func TestCompareYearsZeroBaseGrowth(t *testing.T) {
	records := []core.Record{
		rec("Acme", "New", "2024-10-01", 800), // fiscal 2025 only
	}
	report := CompareYears(records, 2024, 2025, true)
	require.Len(t, report.Categories, 1)
	assert.Equal(t, 0.0, report.Categories[0].GrowthPercent, "zero year-A spend must not divide")
	assert.Equal(t, 800.0, report.Categories[0].AbsoluteChange)
}

func TestTopMoversRequireBothYears(t *testing.T) {
	records := []core.Record{
		rec("Acme", "Both", "2023-08-01", 100),
		rec("Acme", "Both", "2024-08-01", 300),
		rec("Acme", "OnlyA", "2023-08-02", 500),
		rec("Acme", "OnlyB", "2024-08-02", 500),
	}
	report := CompareYears(records, 2024, 2025, true)

	require.Len(t, report.TopGainers, 1, "single-year categories are not movers")
	assert.Equal(t, "Both", report.TopGainers[0].Key)
	assert.Equal(t, 200.0, report.TopGainers[0].GrowthPercent)
	require.Len(t, report.TopDecliners, 1)
	assert.Equal(t, "Both", report.TopDecliners[0].Key)
}

func TestTopMoversOrderingAndTruncation(t *testing.T) {
	var entries []YoYEntry
	growths := []float64{10, -40, 250, 5, -5, 80, 33}
	for i, g := range growths {
		entries = append(entries, YoYEntry{
			Key:           string(rune('a' + i)),
			YearA:         100,
			YearB:         100 + g,
			GrowthPercent: g,
		})
	}
	gainers, decliners := topMovers(entries, 5)
	require.Len(t, gainers, 5)
	require.Len(t, decliners, 5)
	assert.Equal(t, 250.0, gainers[0].GrowthPercent)
	assert.Equal(t, -40.0, decliners[0].GrowthPercent)
}

func TestCompareYearsMonthlySeries(t *testing.T) {
	records := []core.Record{
		rec("Acme", "X", "2023-07-10", 100), // fiscal 2024, Jul
		rec("Acme", "X", "2024-07-10", 400), // fiscal 2025, Jul
		rec("Acme", "X", "2024-06-10", 50),  // fiscal 2024, Jun
	}
	report := CompareYears(records, 2024, 2025, true)
	require.Len(t, report.Monthly, 12)
	assert.Equal(t, "Jul", report.Monthly[0].Month)
	assert.Equal(t, 100.0, report.Monthly[0].YearA)
	assert.Equal(t, 400.0, report.Monthly[0].YearB)
	assert.Equal(t, "Jun", report.Monthly[11].Month)
	assert.Equal(t, 50.0, report.Monthly[11].YearA)
}

func TestCompareYearsCalendarConvention(t *testing.T) {
	records := []core.Record{
		rec("Acme", "X", "2023-09-01", 1000),
		rec("Acme", "X", "2024-09-01", 1500),
	}
	report := CompareYears(records, 2023, 2024, false)
	assert.Equal(t, 1000.0, report.Overall.YearA)
	assert.Equal(t, 1500.0, report.Overall.YearB)
	assert.Equal(t, "Jan", report.Monthly[0].Month)
}

func TestCompareYearsEmptyInput(t *testing.T) {
	report := CompareYears(nil, 2024, 2025, true)
	assert.Zero(t, report.Overall.YearA)
	assert.Zero(t, report.Overall.GrowthPercent)
	assert.Empty(t, report.Categories)
	assert.Len(t, report.Monthly, 12)
}
