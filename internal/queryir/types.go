package queryir

import (
	"fmt"

	"github.com/roach88/launchdeck/internal/ir"
)

// Query is a request against the dataset.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate is a boolean condition on one record.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select returns the records matching Filter, in dataset order.
//
//	SELECT * FROM missions WHERE <filter> ORDER BY seq LIMIT <limit>
type Select struct {
	Filter Predicate // nil = every record
	Limit  int       // 0 = no limit
}

func (Select) queryNode() {}

// Aggregate groups the records matching Filter by GroupBy and computes Stat
// for each group.
//
// Groups appear in order of first occurrence in the dataset unless Sort
// says otherwise. An empty GroupBy puts every record in one group keyed
// "all". Records with no value for GroupBy share the group keyed "".
//
// Example - launches per company, most first:
//
//	Aggregate{GroupBy: "company", Stat: StatCount, Sort: SortCountDesc}
type Aggregate struct {
	Filter  Predicate // nil = every record
	GroupBy string    // field name, "" = single group
	Stat    Stat      // "" = count
	Field   string    // operand of sum/avg/min/max
	Sort    Sort      // "" = first-occurrence order
	Limit   int       // 0 = no limit; applied after sorting
}

func (Aggregate) queryNode() {}

// AllGroupKey is the key of the single group produced when GroupBy is empty.
const AllGroupKey = "all"

// Stat is the per-group statistic of an Aggregate.
type Stat string

const (
	StatCount       Stat = "count"
	StatSum         Stat = "sum"
	StatAvg         Stat = "avg"
	StatMin         Stat = "min"
	StatMax         Stat = "max"
	StatSuccessRate Stat = "success_rate" // fraction of records with status Success
)

// Stats lists every statistic.
func Stats() []Stat {
	return []Stat{StatCount, StatSum, StatAvg, StatMin, StatMax, StatSuccessRate}
}

// NeedsField reports whether the statistic reads a numeric field.
func (s Stat) NeedsField() bool {
	switch s {
	case StatSum, StatAvg, StatMin, StatMax:
		return true
	}
	return false
}

// ParseStat resolves a statistic name. Empty means count.
func ParseStat(s string) (Stat, error) {
	if s == "" {
		return StatCount, nil
	}
	for _, st := range Stats() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown statistic %q", s)
}

// Sort orders the groups of an Aggregate. Every sort is stable: ties keep
// first-occurrence order.
type Sort string

const (
	SortNone      Sort = "none"
	SortValueDesc Sort = "value_desc"
	SortValueAsc  Sort = "value_asc"
	SortKeyAsc    Sort = "key_asc"
	SortKeyDesc   Sort = "key_desc"
	SortCountDesc Sort = "count_desc"
)

// Sorts lists every sort order.
func Sorts() []Sort {
	return []Sort{SortNone, SortValueDesc, SortValueAsc, SortKeyAsc, SortKeyDesc, SortCountDesc}
}

// ParseSort resolves a sort name. Empty means none.
func ParseSort(s string) (Sort, error) {
	if s == "" {
		return SortNone, nil
	}
	for _, so := range Sorts() {
		if string(so) == s {
			return so, nil
		}
	}
	return "", fmt.Errorf("unknown sort %q", s)
}

// Equals is true when the field's value equals Value.
// A missing value equals nothing.
type Equals struct {
	Field string
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// CompareOp is an ordering operator.
type CompareOp string

const (
	OpLT CompareOp = "lt"
	OpLE CompareOp = "le"
	OpGT CompareOp = "gt"
	OpGE CompareOp = "ge"
)

// Symbol returns the infix form of the operator.
func (op CompareOp) Symbol() string {
	switch op {
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	}
	return string(op)
}

// Holds reports whether a comparison result c (-1, 0, +1) satisfies op.
func (op CompareOp) Holds(c int) bool {
	switch op {
	case OpLT:
		return c < 0
	case OpLE:
		return c <= 0
	case OpGT:
		return c > 0
	case OpGE:
		return c >= 0
	}
	return false
}

// Compare is true when the field's value stands in relation Op to Value.
type Compare struct {
	Field string
	Op    CompareOp
	Value ir.IRValue
}

func (Compare) predicateNode() {}

// Between is true when Low <= value <= High.
type Between struct {
	Field string
	Low   ir.IRValue
	High  ir.IRValue
}

func (Between) predicateNode() {}

// In is true when the field's value equals any of Values.
// An empty Values list matches nothing.
type In struct {
	Field  string
	Values []ir.IRValue
}

func (In) predicateNode() {}

// Contains is true when the field's text contains Substring, ignoring case.
type Contains struct {
	Field     string
	Substring string
}

func (Contains) predicateNode() {}

// IsNull is true when the field has no value.
type IsNull struct {
	Field string
}

func (IsNull) predicateNode() {}

// And is true when every predicate is true. Empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or is true when any predicate is true. Empty Or is always false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not is the exact complement of Predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// All conjoins predicates, dropping nils. It returns nil when nothing is
// left and the sole predicate when only one is.
func All(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return And{Predicates: kept}
}

// Negate returns Not{p}. The negation of a nil predicate matches nothing.
func Negate(p Predicate) Predicate {
	if p == nil {
		return Or{}
	}
	return Not{Predicate: p}
}

// FilterOf returns the filter of q.
func FilterOf(q Query) Predicate {
	switch query := q.(type) {
	case Select:
		return query.Filter
	case *Select:
		return query.Filter
	case Aggregate:
		return query.Filter
	case *Aggregate:
		return query.Filter
	}
	return nil
}
