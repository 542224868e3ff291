package core

import "testing"

func TestFiscalYear(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2023-07-01", 2024},
		{"2023-12-31", 2024},
		{"2024-01-01", 2024},
		{"2024-06-30", 2024},
		{"2024-07-01", 2025},
	}
	for _, tc := range cases {
		if got := FiscalYear(tc.date); got != tc.want {
			t.Fatalf("FiscalYear(%q) = %d, want %d", tc.date, got, tc.want)
		}
	}
}

func TestMonthIndex(t *testing.T) {
	// Jul is first under the fiscal convention, Jan under calendar.
	if got := MonthIndex("2024-07-15", true); got != 0 {
		t.Fatalf("fiscal Jul index = %d, want 0", got)
	}
	if got := MonthIndex("2024-06-15", true); got != 11 {
		t.Fatalf("fiscal Jun index = %d, want 11", got)
	}
	if got := MonthIndex("2024-01-15", false); got != 0 {
		t.Fatalf("calendar Jan index = %d, want 0", got)
	}
	if got := MonthIndex("2024-12-15", false); got != 11 {
		t.Fatalf("calendar Dec index = %d, want 11", got)
	}
}

func TestMonthLabels(t *testing.T) {
	cal := MonthLabels(false)
	fis := MonthLabels(true)
	if cal[0] != "Jan" || cal[11] != "Dec" {
		t.Fatalf("unexpected calendar ordering: %v", cal)
	}
	if fis[0] != "Jul" || fis[11] != "Jun" {
		t.Fatalf("unexpected fiscal ordering: %v", fis)
	}
	// Labels line up with MonthIndex under both conventions.
	if fis[MonthIndex("2024-02-01", true)] != "Feb" {
		t.Fatal("fiscal label/index mismatch")
	}
}

func TestYearOf(t *testing.T) {
	r := Record{Supplier: "s", Category: "c", Amount: 1, Date: "2023-09-10"}
	if got := YearOf(r, true); got != 2024 {
		t.Fatalf("fiscal YearOf = %d, want 2024", got)
	}
	if got := YearOf(r, false); got != 2023 {
		t.Fatalf("calendar YearOf = %d, want 2023", got)
	}
	r.Year = 2022
	if got := YearOf(r, true); got != 2022 {
		t.Fatalf("explicit year must win, got %d", got)
	}
}
