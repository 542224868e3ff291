// Package filter holds the persisted filter specification and the
// predicate engine that evaluates it against a record set.
package filter

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

type (
	// DateRange bounds records by ISO date, inclusive on both ends.
	// An empty bound does not constrain.
	DateRange struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}

	// AmountRange bounds records by amount, inclusive on both ends.
	// A nil bound does not constrain.
	AmountRange struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	}

	// Spec is the declarative description of the record subset currently
	// in view. All dimensions combine with AND; an empty slice or nil
	// bound leaves that dimension unconstrained.
	Spec struct {
		DateRange     DateRange   `json:"dateRange"`
		Categories    []string    `json:"categories"`
		Subcategories []string    `json:"subcategories"`
		Suppliers     []string    `json:"suppliers"`
		Locations     []string    `json:"locations"`
		Years         []string    `json:"years"`
		AmountRange   AmountRange `json:"amountRange"`
	}

	// Patch is a partial update: only non-nil fields replace the
	// corresponding Spec keys.
	Patch struct {
		DateRange     *DateRange
		Categories    *[]string
		Subcategories *[]string
		Suppliers     *[]string
		Locations     *[]string
		Years         *[]string
		AmountRange   *AmountRange
	}
)

// Merge returns a copy of s with the patched keys replaced. Untouched
// keys keep their current values.
func (s Spec) Merge(p Patch) Spec {
	if p.DateRange != nil {
		s.DateRange = *p.DateRange
	}
	if p.Categories != nil {
		s.Categories = append([]string(nil), (*p.Categories)...)
	}
	if p.Subcategories != nil {
		s.Subcategories = append([]string(nil), (*p.Subcategories)...)
	}
	if p.Suppliers != nil {
		s.Suppliers = append([]string(nil), (*p.Suppliers)...)
	}
	if p.Locations != nil {
		s.Locations = append([]string(nil), (*p.Locations)...)
	}
	if p.Years != nil {
		s.Years = append([]string(nil), (*p.Years)...)
	}
	if p.AmountRange != nil {
		s.AmountRange = *p.AmountRange
	}
	return s
}

// HasConstraints reports whether any dimension restricts the record set.
func (s Spec) HasConstraints() bool {
	return s.DateRange.Start != "" || s.DateRange.End != "" ||
		len(s.Categories) > 0 || len(s.Subcategories) > 0 ||
		len(s.Suppliers) > 0 || len(s.Locations) > 0 || len(s.Years) > 0 ||
		s.AmountRange.Min != nil || s.AmountRange.Max != nil
}

// Signature returns a canonical string identifying the spec. Two specs
// that select the same subset (regardless of the order values were added
// in) produce the same signature; it is the filter component of every
// derived-view cache key.
func (s Spec) Signature() string {
	var b strings.Builder
	b.WriteString("d=")
	b.WriteString(s.DateRange.Start)
	b.WriteString("..")
	b.WriteString(s.DateRange.End)
	writeSet(&b, "c", s.Categories)
	writeSet(&b, "sc", s.Subcategories)
	writeSet(&b, "s", s.Suppliers)
	writeSet(&b, "l", s.Locations)
	writeSet(&b, "y", s.Years)
	b.WriteString("|a=")
	writeBound(&b, s.AmountRange.Min)
	b.WriteString("..")
	writeBound(&b, s.AmountRange.Max)
	return b.String()
}

func writeSet(b *strings.Builder, tag string, values []string) {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	b.WriteString("|")
	b.WriteString(tag)
	b.WriteString("=")
	b.WriteString(strings.Join(sorted, ","))
}

func writeBound(b *strings.Builder, v *float64) {
	if v == nil {
		return
	}
	b.WriteString(strconv.FormatFloat(*v, 'g', -1, 64))
}

// Decode reconstructs a Spec from a persisted JSON payload. Malformed
// payloads are recovered field by field: any field that fails to decode
// falls back to its default instead of surfacing an error, so a corrupt
// persisted spec can never break the session.
func Decode(data []byte) Spec {
	var spec Spec
	if len(data) == 0 {
		return spec
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return spec
	}

	decodeField(fields, "dateRange", &spec.DateRange)
	decodeField(fields, "categories", &spec.Categories)
	decodeField(fields, "subcategories", &spec.Subcategories)
	decodeField(fields, "suppliers", &spec.Suppliers)
	decodeField(fields, "locations", &spec.Locations)
	decodeField(fields, "years", &spec.Years)
	decodeField(fields, "amountRange", &spec.AmountRange)
	return spec.sanitize()
}

func decodeField[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}

// Encode serializes the spec for persistence.
func (s Spec) Encode() []byte {
	data, err := json.Marshal(s)
	if err != nil {
		return []byte("{}")
	}
	return data
}

// sanitize drops values that can never participate in a match: blank set
// members and non-finite amount bounds.
func (s Spec) sanitize() Spec {
	s.Categories = dropBlank(s.Categories)
	s.Subcategories = dropBlank(s.Subcategories)
	s.Suppliers = dropBlank(s.Suppliers)
	s.Locations = dropBlank(s.Locations)
	s.Years = dropBlank(s.Years)
	if s.AmountRange.Min != nil && !finite(*s.AmountRange.Min) {
		s.AmountRange.Min = nil
	}
	if s.AmountRange.Max != nil && !finite(*s.AmountRange.Max) {
		s.AmountRange.Max = nil
	}
	return s
}

func dropBlank(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
