package filter

import (
	"testing"

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

func sampleRecords() []core.Record {
	return []core.Record{
		rec("Acme", "IT", "2024-01-10", 100),
		rec("Globex", "IT", "2024-01-25", 800),
		rec("Initech", "Facilities", "2024-02-05", 1200),
		rec("Acme", "Facilities", "2024-02-20", 1500),
		rec("Umbrella", "Logistics", "2024-03-15", 5000),
	}
}

func fptr(v float64) *float64 { return &v }

func TestApplyNoConstraintsFastPath(t *testing.T) {
	records := sampleRecords()
	if got := Apply(records, nil); len(got) != len(records) {
		t.Fatalf("nil spec must return all records, got %d", len(got))
	}
	spec := &Spec{}
	got := Apply(records, spec)
	if len(got) != len(records) {
		t.Fatalf("empty spec must return all records, got %d", len(got))
	}
	if Apply(nil, spec) != nil {
		t.Fatal("empty input must stay empty")
	}
}

func TestApplyAmountRange(t *testing.T) {
	// Five records spanning Jan-Mar; the 1000-2000 window keeps exactly
	// the 1200 and 1500 transactions.
	got := Apply(sampleRecords(), &Spec{AmountRange: AmountRange{Min: fptr(1000), Max: fptr(2000)}})
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Amount != 1200 || got[1].Amount != 1500 {
		t.Fatalf("expected amounts [1200 1500], got [%v %v]", got[0].Amount, got[1].Amount)
	}
}

func TestApplyAndCombination(t *testing.T) {
	spec := &Spec{
		DateRange:  DateRange{Start: "2024-02-01", End: "2024-02-28"},
		Categories: []string{"Facilities"},
		Suppliers:  []string{"Acme"},
	}
	got := Apply(sampleRecords(), spec)
	if len(got) != 1 || got[0].Amount != 1500 {
		t.Fatalf("expected only the Acme Facilities record, got %v", got)
	}
}

func TestApplyCaseSensitiveMembership(t *testing.T) {
	got := Apply(sampleRecords(), &Spec{Suppliers: []string{"acme"}})
	if len(got) != 0 {
		t.Fatalf("membership must be case-sensitive, got %d records", len(got))
	}
}

func TestApplyYearMembership(t *testing.T) {
	records := sampleRecords()
	// Explicit record year wins over the date-derived year.
	withYear := records[0]
	withYear.Year = 2022
	records = append(records, withYear)

	got := Apply(records, &Spec{Years: []string{"2022"}})
	if len(got) != 1 || got[0].Year != 2022 {
		t.Fatalf("expected the explicit-year record, got %v", got)
	}
	got = Apply(records, &Spec{Years: []string{"2024"}})
	if len(got) != 5 {
		t.Fatalf("expected 5 records for 2024, got %d", len(got))
	}
}

func TestApplyInvalidDateBoundIsIgnored(t *testing.T) {
	records := sampleRecords()
	// An unparsable start bound must not throw and must not constrain.
	got := Apply(records, &Spec{DateRange: DateRange{Start: "not-a-date", End: "2024-01-31"}})
	if len(got) != 2 {
		t.Fatalf("expected end bound alone to keep the two January records, got %d", len(got))
	}
	// Both bounds invalid degrades to no date constraint at all.
	got = Apply(records, &Spec{
		DateRange: DateRange{Start: "2024-31-12", End: "soon"},
		Suppliers: []string{"Acme"},
	})
	if len(got) != 2 {
		t.Fatalf("remaining criteria must still apply, got %d", len(got))
	}
}

func TestApplyIdempotence(t *testing.T) {
	records := sampleRecords()
	spec := &Spec{Categories: []string{"IT"}, AmountRange: AmountRange{Max: fptr(900)}}
	once := Apply(records, spec)
	twice := Apply(once, spec)
	if len(once) != len(twice) {
		t.Fatalf("filter must be idempotent: %d != %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("record %d changed on re-application", i)
		}
	}
}

func TestApplyMonotonicity(t *testing.T) {
	records := sampleRecords()
	base := &Spec{Categories: []string{"IT", "Facilities"}}
	narrowed := &Spec{
		Categories: base.Categories,
		DateRange:  DateRange{Start: "2024-02-01"},
	}
	if len(Apply(records, narrowed)) > len(Apply(records, base)) {
		t.Fatal("adding a constraint must never grow the result")
	}
}
