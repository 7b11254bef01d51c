package engine

import (
	"cmp"
	"encoding/json"
	"slices"
	"strconv"

	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/mission"
	"github.com/roach88/launchdeck/internal/queryir"
)

// ResultKind tells which half of a ResultSet is populated.
type ResultKind string

const (
	ResultRows   ResultKind = "rows"
	ResultGroups ResultKind = "groups"
)

// ResultSet is the answer to one query.
type ResultSet struct {
	Kind ResultKind `json:"kind"`

	// QueryHash identifies the normalized query (ir.QueryHash).
	QueryHash string `json:"query_hash"`

	// Total is the number of matching records for a Select, or the number
	// of groups for an Aggregate, before the limit is applied.
	Total int `json:"total"`

	// Rows holds the matching records in dataset order (Select only).
	Rows []mission.Record `json:"rows,omitempty"`

	// Stat and Groups describe an Aggregate result.
	Stat   queryir.Stat `json:"stat,omitempty"`
	Groups []Group      `json:"groups,omitempty"`
}

// Group is one entry of an aggregate result.
type Group struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	Value Value  `json:"value"`
}

// Value is a statistic. It is missing when the statistic has no defined
// value, such as the average of a group whose prices are all absent.
type Value struct {
	Number float64
	Valid  bool
}

// Number returns a present Value.
func Number(f float64) Value {
	return Value{Number: f, Valid: true}
}

// MarshalJSON renders a missing value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Number)
}

// String renders the shortest exact form, or "" when missing.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Number, 'f', -1, 64)
}

// Accumulator holds the running totals of one group. Both backends fill
// accumulators (in memory record by record, in SQLite with one GROUP BY
// query) and hand them to FinishGroups, so statistics and ordering are
// computed by the same code.
//
// Numeric totals are integers in the field's units: thousandths for
// decimal fields, whole numbers for int fields.
type Accumulator struct {
	Key       string
	Count     int   // records in the group
	NonNull   int   // records with a value for the stat field
	Sum       int64 // sum of present values
	Min       int64 // valid when NonNull > 0
	Max       int64 // valid when NonNull > 0
	Successes int   // records with status Success
}

// AddValue folds one present stat-field value into the totals.
func (a *Accumulator) AddValue(units int64) {
	if a.NonNull == 0 {
		a.Min, a.Max = units, units
	} else {
		a.Min = min(a.Min, units)
		a.Max = max(a.Max, units)
	}
	a.NonNull++
	a.Sum += units
}

// Units converts a numeric field value to accumulator units.
// ok is false for a missing or non-numeric value.
func Units(v ir.IRValue) (units int64, ok bool) {
	switch val := v.(type) {
	case ir.IRDecimal:
		return int64(val), true
	case ir.IRInt:
		return int64(val), true
	}
	return 0, false
}

// UnitScale returns how many accumulator units make one whole number for
// a field of kind k.
func UnitScale(k mission.Kind) float64 {
	if k == mission.KindDecimal {
		return ir.DecimalScale
	}
	return 1
}

// GroupKey renders a group-by value as its key. Missing values share the
// empty key.
func GroupKey(v ir.IRValue) string {
	return ir.Text(v)
}

// FinishGroups computes the statistic of agg for each accumulator, then
// sorts and limits. accs must be in first-occurrence order. It returns the
// groups and the number of groups before the limit.
//
// agg must be normalized.
func FinishGroups(accs []Accumulator, agg queryir.Aggregate) ([]Group, int) {
	scale := 1.0
	if agg.Field != "" {
		if f, ok := mission.LookupField(agg.Field); ok {
			scale = UnitScale(f.Kind)
		}
	}

	groups := make([]Group, len(accs))
	for i, a := range accs {
		groups[i] = Group{Key: a.Key, Count: a.Count, Value: statValue(a, agg.Stat, scale)}
	}

	sortGroups(groups, agg.Sort)

	total := len(groups)
	if agg.Limit > 0 && agg.Limit < len(groups) {
		groups = groups[:agg.Limit]
	}
	return groups, total
}

func statValue(a Accumulator, stat queryir.Stat, scale float64) Value {
	switch stat {
	case queryir.StatSum:
		return Number(float64(a.Sum) / scale)
	case queryir.StatAvg:
		if a.NonNull == 0 {
			return Value{}
		}
		return Number(float64(a.Sum) / float64(a.NonNull) / scale)
	case queryir.StatMin:
		if a.NonNull == 0 {
			return Value{}
		}
		return Number(float64(a.Min) / scale)
	case queryir.StatMax:
		if a.NonNull == 0 {
			return Value{}
		}
		return Number(float64(a.Max) / scale)
	case queryir.StatSuccessRate:
		if a.Count == 0 {
			return Value{}
		}
		return Number(float64(a.Successes) / float64(a.Count))
	default:
		return Number(float64(a.Count))
	}
}

// sortGroups orders groups stably. Missing values sort last in both value
// orders.
func sortGroups(groups []Group, sort queryir.Sort) {
	var less func(a, b Group) int
	switch sort {
	case queryir.SortValueDesc:
		less = func(a, b Group) int { return compareValues(a.Value, b.Value, true) }
	case queryir.SortValueAsc:
		less = func(a, b Group) int { return compareValues(a.Value, b.Value, false) }
	case queryir.SortKeyAsc:
		less = func(a, b Group) int { return cmp.Compare(a.Key, b.Key) }
	case queryir.SortKeyDesc:
		less = func(a, b Group) int { return cmp.Compare(b.Key, a.Key) }
	case queryir.SortCountDesc:
		less = func(a, b Group) int { return cmp.Compare(b.Count, a.Count) }
	default:
		return
	}
	slices.SortStableFunc(groups, less)
}

func compareValues(a, b Value, desc bool) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return 1
	case !b.Valid:
		return -1
	case desc:
		return cmp.Compare(b.Number, a.Number)
	default:
		return cmp.Compare(a.Number, b.Number)
	}
}
