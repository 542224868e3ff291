package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	// DefaultSubcategory is used when a record arrives without a subcategory.
	DefaultSubcategory = "Unspecified"
	// DefaultLocation is used when a record arrives without a location.
	DefaultLocation = "Unknown"

	// ISODate is the wire format for all record dates.
	ISODate = "2006-01-02"
)

type (
	// Record is one normalized procurement transaction. It is validated
	// once at ingestion; the analytics transforms assume its invariants
	// hold and never re-validate per read.
	Record struct {
		Supplier    string
		Category    string
		Subcategory string
		Amount      float64
		Date        string // ISO YYYY-MM-DD
		Location    string
		Year        int    // explicit fiscal/calendar year; 0 = derive from Date
		SpendBand   string // precomputed band label; "" = derive from Amount
	}
)

var (
	ErrEmptySupplier = errors.New("empty supplier")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidAmount = errors.New("amount must be finite and not negative")
	ErrInvalidDate   = errors.New("date must be a valid YYYY-MM-DD date")
)

// NewRecord trims the incoming fields, applies defaults for the optional
// ones and validates the result. This is the only place a Record is
// checked; everything downstream relies on the invariants established here.
func NewRecord(r Record) (Record, error) {
	r.Supplier = strings.TrimSpace(r.Supplier)
	r.Category = strings.TrimSpace(r.Category)
	r.Subcategory = strings.TrimSpace(r.Subcategory)
	r.Location = strings.TrimSpace(r.Location)
	r.SpendBand = strings.TrimSpace(r.SpendBand)
	r.Date = strings.TrimSpace(r.Date)

	if r.Subcategory == "" {
		r.Subcategory = DefaultSubcategory
	}
	if r.Location == "" {
		r.Location = DefaultLocation
	}

	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate reports the first violated invariant, if any.
func (r Record) Validate() error {
	if r.Supplier == "" {
		return ErrEmptySupplier
	}
	if r.Category == "" {
		return ErrEmptyCategory
	}
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) || r.Amount < 0 {
		return ErrInvalidAmount
	}
	if !ValidISODate(r.Date) {
		return ErrInvalidDate
	}
	return nil
}

// CalendarYear returns the explicit year when present, otherwise the
// calendar year parsed from the record date.
func (r Record) CalendarYear() int {
	if r.Year != 0 {
		return r.Year
	}
	y, _ := splitDate(r.Date)
	return y
}

// ValidISODate reports whether s parses as a real YYYY-MM-DD calendar date.
func ValidISODate(s string) bool {
	_, err := time.Parse(ISODate, s)
	return err == nil
}

// splitDate extracts year and month from a validated ISO date string.
// Unparseable input yields zeros rather than an error; records are
// validated at ingestion so this only happens on raw filter bounds.
func splitDate(date string) (year, month int) {
	t, err := time.Parse(ISODate, date)
	if err != nil {
		return 0, 0
	}
	return t.Year(), int(t.Month())
}
