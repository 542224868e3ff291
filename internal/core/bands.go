package core

import "math"

type (
	// SpendBand is a fixed numeric bucket of spend magnitude. Bands are
	// half-open ranges [Min, Max); the top band is open-ended.
	SpendBand struct {
		Name  string
		Label string
		Min   float64
		Max   float64
	}

	// Segment is one of the four strategic sourcing groupings. Segments
	// partition [0, inf) with no gaps or overlap; Color and Strategy are
	// presentation annotations only.
	Segment struct {
		Name     string
		Min      float64
		Max      float64
		Color    string
		Strategy string
	}
)

// SpendBands is the static band table, ascending by Min.
var SpendBands = []SpendBand{
	{Name: "under-1k", Label: "0 - 1K", Min: 0, Max: 1_000},
	{Name: "1k-5k", Label: "1K - 5K", Min: 1_000, Max: 5_000},
	{Name: "5k-10k", Label: "5K - 10K", Min: 5_000, Max: 10_000},
	{Name: "10k-25k", Label: "10K - 25K", Min: 10_000, Max: 25_000},
	{Name: "25k-50k", Label: "25K - 50K", Min: 25_000, Max: 50_000},
	{Name: "50k-100k", Label: "50K - 100K", Min: 50_000, Max: 100_000},
	{Name: "100k-250k", Label: "100K - 250K", Min: 100_000, Max: 250_000},
	{Name: "250k-500k", Label: "250K - 500K", Min: 250_000, Max: 500_000},
	{Name: "500k-1m", Label: "500K - 1M", Min: 500_000, Max: 1_000_000},
	{Name: "1m-plus", Label: "1M+", Min: 1_000_000, Max: math.Inf(1)},
}

// Segments is the static strategic segment table, descending by Min.
var Segments = []Segment{
	{Name: "Strategic", Min: 1_000_000, Max: math.Inf(1), Color: "#c0392b", Strategy: "Partnership and long-term contracts"},
	{Name: "Leverage", Min: 100_000, Max: 1_000_000, Color: "#e67e22", Strategy: "Competitive bidding and volume bundling"},
	{Name: "Routine", Min: 10_000, Max: 100_000, Color: "#2980b9", Strategy: "Process efficiency and catalogue buying"},
	{Name: "Tactical", Min: 0, Max: 10_000, Color: "#7f8c8d", Strategy: "Spot buying and purchasing cards"},
}

// BandFor returns the band whose half-open range contains amount.
// Negative input clamps onto the lowest band; records are validated at
// ingestion so that path is not reachable from a Record.
func BandFor(amount float64) SpendBand {
	for _, b := range SpendBands {
		if amount >= b.Min && amount < b.Max {
			return b
		}
	}
	return SpendBands[0]
}

// BandByLabel looks a band up by its display label.
func BandByLabel(label string) (SpendBand, bool) {
	for _, b := range SpendBands {
		if b.Label == label {
			return b, true
		}
	}
	return SpendBand{}, false
}

// BandOf resolves the band for a record: the precomputed label when it
// matches the band table, otherwise the band computed from the amount.
func BandOf(r Record) SpendBand {
	if r.SpendBand != "" {
		if b, ok := BandByLabel(r.SpendBand); ok {
			return b
		}
	}
	return BandFor(r.Amount)
}

// SegmentForBand maps a band to the single segment whose range contains
// the band's minimum threshold.
func SegmentForBand(b SpendBand) Segment {
	for _, s := range Segments {
		if b.Min >= s.Min && b.Min < s.Max {
			return s
		}
	}
	return Segments[len(Segments)-1]
}

// SegmentByName looks a segment up by name.
func SegmentByName(name string) (Segment, bool) {
	for _, s := range Segments {
		if s.Name == name {
			return s, true
		}
	}
	return Segment{}, false
}

// SegmentBands returns the labels of all bands belonging to a segment,
// in band table order.
func SegmentBands(s Segment) []string {
	var labels []string
	for _, b := range SpendBands {
		if SegmentForBand(b).Name == s.Name {
			labels = append(labels, b.Label)
		}
	}
	return labels
}
