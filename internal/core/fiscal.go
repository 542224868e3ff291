package core

// Fiscal calendar helpers. The fiscal year runs Jul-Jun: a date in Jul-Dec
// belongs to calendarYear+1, Jan-Jun to calendarYear. All seasonality and
// year-over-year analyses switch between this convention and the plain
// calendar year through a single boolean toggle.

var (
	calendarMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	fiscalMonths   = []string{"Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar", "Apr", "May", "Jun"}
)

// FiscalYear returns the Jul-Jun fiscal year of an ISO date.
func FiscalYear(date string) int {
	y, m := splitDate(date)
	if m >= 7 {
		return y + 1
	}
	return y
}

// YearOf returns the fiscal or calendar year of a record's date per the
// active convention. An explicit record year always wins.
func YearOf(r Record, fiscal bool) int {
	if r.Year != 0 {
		return r.Year
	}
	if fiscal {
		return FiscalYear(r.Date)
	}
	return r.CalendarYear()
}

// MonthIndex returns the 0-11 position of a date's month under the active
// convention: [Jan..Dec] for calendar, [Jul..Jun] for fiscal.
func MonthIndex(date string, fiscal bool) int {
	_, m := splitDate(date)
	if m == 0 {
		return 0
	}
	if fiscal {
		return (m + 5) % 12
	}
	return m - 1
}

// MonthLabels returns the 12 month labels in convention order. The slice
// is a copy; callers may reorder it freely.
func MonthLabels(fiscal bool) []string {
	src := calendarMonths
	if fiscal {
		src = fiscalMonths
	}
	out := make([]string, 12)
	copy(out, src)
	return out
}
