package filter

import (
	"spendlens/internal/core"
	"strconv"
)

// Apply evaluates the spec against records and returns the matching
// subset. It is a pure function: no side effects, deterministic for
// identical inputs, and safe to call concurrently.
//
// Predicates are AND-combined and evaluated per record in a fixed order
// (date range, category, subcategory, supplier, location, year, amount),
// short-circuiting on the first failure. Membership checks are exact and
// case-sensitive; trimming happens at ingestion, not here.
//
// An unparsable date bound is treated as unset: it constrains nothing on
// that side. This keeps a corrupt bound from silently emptying the view.
func Apply(records []core.Record, spec *Spec) []core.Record {
	if len(records) == 0 {
		return records
	}
	if spec == nil || !spec.HasConstraints() {
		return records
	}

	start := spec.DateRange.Start
	if start != "" && !core.ValidISODate(start) {
		start = ""
	}
	end := spec.DateRange.End
	if end != "" && !core.ValidISODate(end) {
		end = ""
	}

	categories := toSet(spec.Categories)
	subcategories := toSet(spec.Subcategories)
	suppliers := toSet(spec.Suppliers)
	locations := toSet(spec.Locations)
	years := toSet(spec.Years)
	min := spec.AmountRange.Min
	max := spec.AmountRange.Max

	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		// ISO dates compare correctly as strings.
		if start != "" && r.Date < start {
			continue
		}
		if end != "" && r.Date > end {
			continue
		}
		if categories != nil && !categories[r.Category] {
			continue
		}
		if subcategories != nil && !subcategories[r.Subcategory] {
			continue
		}
		if suppliers != nil && !suppliers[r.Supplier] {
			continue
		}
		if locations != nil && !locations[r.Location] {
			continue
		}
		if years != nil && !years[strconv.Itoa(r.CalendarYear())] {
			continue
		}
		if min != nil && r.Amount < *min {
			continue
		}
		if max != nil && r.Amount > *max {
			continue
		}
		out = append(out, r)
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
