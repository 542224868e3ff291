package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlens/internal/core"
)

func TestParetoRankReferenceScenario(t *testing.T) {
	// A=100, B=60, C=40 -> total 200; cumulative 50%, 80%, 100%.
	records := []core.Record{
		rec("A", "IT", "2024-01-01", 100),
		rec("B", "IT", "2024-01-02", 60),
		rec("C", "IT", "2024-01-03", 40),
	}
	rows := ParetoRank(records)
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "A", rows[0].Entity)
	assert.Equal(t, 50.0, rows[0].CumulativePercentage)
	assert.Equal(t, ClassCritical, rows[0].Classification)

	// The 80% boundary is inclusive: B at exactly 80% stays Critical.
	assert.Equal(t, "B", rows[1].Entity)
	assert.Equal(t, 80.0, rows[1].CumulativePercentage)
	assert.Equal(t, ClassCritical, rows[1].Classification)

	assert.Equal(t, "C", rows[2].Entity)
	assert.Equal(t, 100.0, rows[2].CumulativePercentage)
	assert.Equal(t, ClassLowImpact, rows[2].Classification)
}

func TestParetoClassBoundaries(t *testing.T) {
	// Cumulative shares land exactly on 80/90/95/100, hitting every
	// inclusive tier boundary once.
	records := []core.Record{
		rec("big", "IT", "2024-01-01", 80),
		rec("mid", "IT", "2024-01-02", 10),
		rec("small", "IT", "2024-01-03", 5),
		rec("tail", "IT", "2024-01-04", 5),
	}
	rows := ParetoRank(records)
	require.Len(t, rows, 4)
	assert.Equal(t, ClassCritical, rows[0].Classification)
	assert.Equal(t, ClassImportant, rows[1].Classification)
	assert.Equal(t, ClassStandard, rows[2].Classification)
	assert.Equal(t, ClassLowImpact, rows[3].Classification)
}

func TestParetoPartitionCompleteness(t *testing.T) {
	records := []core.Record{
		rec("A", "IT", "2024-01-01", 500),
		rec("B", "IT", "2024-01-02", 300),
		rec("C", "IT", "2024-01-03", 120),
		rec("D", "IT", "2024-01-04", 50),
		rec("E", "IT", "2024-01-05", 30),
	}
	rows := ParetoRank(records)
	require.Len(t, rows, 5)

	seen := make(map[string]int)
	for _, row := range rows {
		seen[row.Entity]++
		assert.Contains(t, []string{ClassCritical, ClassImportant, ClassStandard, ClassLowImpact}, row.Classification)
	}
	for entity, n := range seen {
		assert.Equal(t, 1, n, "supplier %s must appear exactly once", entity)
	}
}

func TestParetoZeroTotalSpend(t *testing.T) {
	records := []core.Record{
		rec("A", "IT", "2024-01-01", 0),
		rec("B", "IT", "2024-01-02", 0),
	}
	assert.Empty(t, ParetoRank(records))
	assert.Empty(t, ParetoRank(nil))
}

func TestParetoStableTies(t *testing.T) {
	records := []core.Record{
		rec("first", "IT", "2024-01-01", 50),
		rec("second", "IT", "2024-01-02", 50),
	}
	rows := ParetoRank(records)
	require.Len(t, rows, 2)
	assert.Equal(t, "first", rows[0].Entity)
}
