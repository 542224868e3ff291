package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlens/internal/core"
)

func rec(supplier, category, date string, amount float64) core.Record {
	r, err := core.NewRecord(core.Record{
		Supplier: supplier,
		Category: category,
		Amount:   amount,
		Date:     date,
	})
	if err != nil {
		panic(err)
	}
	return r
}

func recAt(supplier, category, location, date string, amount float64) core.Record {
	r, err := core.NewRecord(core.Record{
		Supplier: supplier,
		Category: category,
		Location: location,
		Amount:   amount,
		Date:     date,
	})
	if err != nil {
		panic(err)
	}
	return r
}

func TestGroupSumFirstSeenOrder(t *testing.T) {
	records := []core.Record{
		rec("B", "IT", "2024-01-01", 10),
		rec("A", "IT", "2024-01-02", 20),
		rec("B", "IT", "2024-01-03", 5),
	}
	rows := GroupSum(records, func(r core.Record) string { return r.Supplier }, SkipBlank)
	require.Len(t, rows, 2)
	assert.Equal(t, "B", rows[0].Key)
	assert.Equal(t, 15.0, rows[0].Total)
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, "A", rows[1].Key)
}

func TestGroupSumBlankKeyPolicies(t *testing.T) {
	records := []core.Record{rec("A", "IT", "2024-01-01", 10)}
	blankKey := func(core.Record) string { return "" }

	assert.Empty(t, GroupSum(records, blankKey, SkipBlank))

	rows := GroupSum(records, blankKey, BlankAsUnknown)
	require.Len(t, rows, 1)
	assert.Equal(t, core.DefaultLocation, rows[0].Key)
}

func TestTopNStableTies(t *testing.T) {
	rows := []Summary{
		{Key: "first", Total: 100},
		{Key: "second", Total: 100},
		{Key: "big", Total: 500},
	}
	top := TopN(rows, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "big", top[0].Key)
	assert.Equal(t, "first", top[1].Key, "ties keep first-encountered order")
	// Input order untouched.
	assert.Equal(t, "first", rows[0].Key)
}

func TestPercentageOf(t *testing.T) {
	assert.Equal(t, 0.0, PercentageOf(50, 0), "zero whole must yield 0, not NaN")
	assert.Equal(t, 33.33, PercentageOf(1, 3))
	assert.Equal(t, 100.0, PercentageOf(3, 3))
}

func TestPercentagesSumToHundred(t *testing.T) {
	records := []core.Record{
		rec("A", "IT", "2024-01-01", 123.45),
		rec("B", "Facilities", "2024-01-02", 678.12),
		rec("C", "Logistics", "2024-01-03", 0.43),
		rec("D", "IT", "2024-01-04", 980.00),
	}
	var sum float64
	for _, row := range SpendByCategory(records) {
		sum += row.Percentage
	}
	assert.InDelta(t, 100, sum, 0.01)
}

func TestSpendByLocationDefaultsUnknown(t *testing.T) {
	records := []core.Record{
		recAt("A", "IT", "", "2024-01-01", 10),
		recAt("B", "IT", "Berlin", "2024-01-02", 20),
	}
	rows := SpendByLocation(records)
	require.Len(t, rows, 2)
	assert.Equal(t, "Berlin", rows[0].Key)
	assert.Equal(t, core.DefaultLocation, rows[1].Key)
}

func TestOverviewStats(t *testing.T) {
	records := []core.Record{
		rec("A", "IT", "2024-01-01", 100),
		rec("A", "Facilities", "2024-01-02", 200),
		rec("B", "IT", "2024-01-03", 300),
	}
	o := OverviewStats(records)
	assert.Equal(t, 600.0, o.TotalSpend)
	assert.Equal(t, 3, o.TransactionCount)
	assert.Equal(t, 2, o.SupplierCount)
	assert.Equal(t, 2, o.CategoryCount)
	assert.Equal(t, 200.0, o.AvgTransaction)
}

func TestOverviewStatsEmpty(t *testing.T) {
	o := OverviewStats(nil)
	assert.Zero(t, o.TotalSpend)
	assert.Zero(t, o.AvgTransaction)
}
