package mission

import (
	"slices"
	"strings"

	"github.com/roach88/launchdeck/internal/ir"
)

// Kind is the value type of a field.
type Kind int

const (
	KindString Kind = iota
	KindDate
	KindInt
	KindDecimal
	KindOutcome
)

// String returns the kind name used in error messages and `fields` output.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindOutcome:
		return "outcome"
	default:
		return "unknown"
	}
}

// Numeric reports whether sum/avg/min/max apply.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindDecimal
}

// Ordered reports whether lt/le/gt/ge/between apply.
// Outcomes are an enumeration, not a scale.
func (k Kind) Ordered() bool {
	return k != KindOutcome
}

// Textual reports whether contains applies.
func (k Kind) Textual() bool {
	return k == KindString
}

// Field describes one queryable attribute of a Record.
type Field struct {
	Name     string   // canonical name, e.g. "rocket_status"
	Kind     Kind     // value type
	Column   string   // CSV header; empty for derived fields
	Required bool     // a CSV cell must be present and valid
	Aliases  []string // alternative names accepted in queries

	// Value extracts the field from a record. Missing optional values are
	// ir.IRNull.
	Value func(Record) ir.IRValue
}

// Derived reports whether the field is computed from other columns.
func (f Field) Derived() bool {
	return f.Column == ""
}

// Nullable reports whether the field can be missing on a loaded record.
func (f Field) Nullable() bool {
	return !f.Required && !f.Derived()
}

var fields = []Field{
	{
		Name: "company", Kind: KindString, Column: "Company", Required: true,
		Aliases: []string{"agency", "organization", "org"},
		Value:   func(r Record) ir.IRValue { return ir.IRString(r.Company) },
	},
	{
		Name: "location", Kind: KindString, Column: "Location", Required: true,
		Aliases: []string{"site"},
		Value:   func(r Record) ir.IRValue { return ir.IRString(r.Location) },
	},
	{
		Name: "country", Kind: KindString,
		Value: func(r Record) ir.IRValue { return ir.IRString(r.Country()) },
	},
	{
		Name: "date", Kind: KindDate, Column: "Date", Required: true,
		Aliases: []string{"launch_date"},
		Value:   func(r Record) ir.IRValue { return r.Date },
	},
	{
		Name: "year", Kind: KindInt,
		Value: func(r Record) ir.IRValue { return ir.IRInt(r.Year()) },
	},
	{
		Name: "time", Kind: KindString, Column: "Time",
		Aliases: []string{"launch_time"},
		Value:   func(r Record) ir.IRValue { return optionalString(r.Time) },
	},
	{
		Name: "rocket", Kind: KindString, Column: "Rocket", Required: true,
		Aliases: []string{"vehicle"},
		Value:   func(r Record) ir.IRValue { return ir.IRString(r.Rocket) },
	},
	{
		Name: "mission", Kind: KindString, Column: "Mission", Required: true,
		Aliases: []string{"name"},
		Value:   func(r Record) ir.IRValue { return ir.IRString(r.Mission) },
	},
	{
		Name: "rocket_status", Kind: KindString, Column: "RocketStatus",
		Value: func(r Record) ir.IRValue { return optionalString(r.RocketStatus) },
	},
	{
		Name: "price", Kind: KindDecimal, Column: "Price",
		Aliases: []string{"cost"},
		Value:   func(r Record) ir.IRValue { return r.Price.Value() },
	},
	{
		Name: "status", Kind: KindOutcome, Column: "MissionStatus", Required: true,
		Aliases: []string{"outcome", "mission_status", "result"},
		Value:   func(r Record) ir.IRValue { return ir.IRString(r.Status) },
	},
}

// fieldIndex maps every normalized name, alias and column header to its
// field. Built once at init; read-only afterwards.
var fieldIndex = buildFieldIndex()

func buildFieldIndex() map[string]int {
	idx := make(map[string]int)
	for i, f := range fields {
		keys := append([]string{f.Name, f.Column}, f.Aliases...)
		for _, k := range keys {
			if k == "" {
				continue
			}
			idx[normalizeKey(k)] = i
		}
	}
	return idx
}

// Fields returns every field in canonical order.
func Fields() []Field {
	return slices.Clone(fields)
}

// FieldNames returns the canonical field names in canonical order.
func FieldNames() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// LookupField resolves a field by canonical name, alias or CSV header.
// Matching ignores case, spaces, hyphens and underscores.
func LookupField(name string) (Field, bool) {
	i, ok := fieldIndex[normalizeKey(name)]
	if !ok {
		return Field{}, false
	}
	return fields[i], true
}

// SourceFields returns the fields backed by a CSV column.
func SourceFields() []Field {
	var out []Field
	for _, f := range fields {
		if !f.Derived() {
			out = append(out, f)
		}
	}
	return out
}

func optionalString(s string) ir.IRValue {
	if s == "" {
		return ir.IRNull{}
	}
	return ir.IRString(s)
}

// normalizeKey lowercases s and drops spaces, hyphens and underscores.
func normalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
