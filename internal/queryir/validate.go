package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/launchdeck/internal/ir"
)

// ValidationResult lists constructs in a query that are legal but almost
// certainly not what the author meant, such as comparing to a missing
// value or an In with no values.
//
// Both backends answer these queries identically. Warnings exist so
// query documents and the CLI can point them out.
type ValidationResult struct {
	// Clean is true when there are no warnings.
	Clean bool

	// Warnings describes each suspicious construct, in traversal order.
	Warnings []string
}

// String joins the warnings, or returns "ok" when there are none.
func (r ValidationResult) String() string {
	if r.Clean {
		return "ok"
	}
	return strings.Join(r.Warnings, "; ")
}

// Validate inspects q without evaluating it.
//
// Warnings:
//  1. A literal is missing (Equals to NULL never matches; use IsNull)
//  2. In with no values, or Or with no operands (never matches)
//  3. Contains with an empty substring (matches every present value)
//  4. Between whose constant bounds are reversed (never matches)
//  5. Negative limit (treated as no limit)
//  6. Double negation
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		Clean:    len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addWarning("nil query")
	case Select:
		v.validateLimit(query.Limit)
		v.validatePredicate(query.Filter)
	case *Select:
		v.validateQuery(*query)
	case Aggregate:
		v.validateLimit(query.Limit)
		if query.Field != "" && !query.Stat.NeedsField() {
			v.addWarning("Field '%s' is ignored by statistic %s", query.Field, statName(query.Stat))
		}
		v.validatePredicate(query.Filter)
	case *Aggregate:
		v.validateQuery(*query)
	default:
		v.addWarning("Unknown query type: %T", q)
	}
}

func statName(s Stat) string {
	if s == "" {
		return string(StatCount)
	}
	return string(s)
}

func (v *validator) validateLimit(limit int) {
	if limit < 0 {
		v.addWarning("Negative limit %d is treated as no limit", limit)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		// no filter
	case Equals:
		v.validateLiteral(pred.Field, pred.Value)
	case *Equals:
		v.validatePredicate(*pred)
	case Compare:
		v.validateLiteral(pred.Field, pred.Value)
	case *Compare:
		v.validatePredicate(*pred)
	case Between:
		v.validateLiteral(pred.Field, pred.Low)
		v.validateLiteral(pred.Field, pred.High)
		if c, ok := ir.Compare(pred.Low, pred.High); ok && c > 0 {
			v.addWarning("Field '%s' BETWEEN bounds are reversed - never matches", pred.Field)
		}
	case *Between:
		v.validatePredicate(*pred)
	case In:
		if len(pred.Values) == 0 {
			v.addWarning("Field '%s' IN () is empty - never matches", pred.Field)
		}
		for _, val := range pred.Values {
			v.validateLiteral(pred.Field, val)
		}
	case *In:
		v.validatePredicate(*pred)
	case Contains:
		if pred.Substring == "" {
			v.addWarning("Field '%s' CONTAINS empty text - matches every present value", pred.Field)
		}
	case *Contains:
		v.validatePredicate(*pred)
	case IsNull, *IsNull:
		// always meaningful
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *And:
		v.validatePredicate(*pred)
	case Or:
		if len(pred.Predicates) == 0 {
			v.addWarning("Empty OR - never matches")
		}
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *Or:
		v.validatePredicate(*pred)
	case Not:
		switch pred.Predicate.(type) {
		case Not, *Not:
			v.addWarning("Double negation")
		}
		v.validatePredicate(pred.Predicate)
	case *Not:
		v.validatePredicate(*pred)
	default:
		v.addWarning("Unknown predicate type: %T", p)
	}
}

func (v *validator) validateLiteral(field string, val ir.IRValue) {
	switch val.(type) {
	case nil, ir.IRNull:
		v.addWarning("Field '%s' compared to NULL - never matches, use IS NULL", field)
	}
}
