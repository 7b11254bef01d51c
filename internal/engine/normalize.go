package engine

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/mission"
	"github.com/roach88/launchdeck/internal/queryir"
)

// Normalize resolves every field name in q to its canonical name and
// coerces every literal to the field's kind.
//
// The result is a value (never a pointer) Select or Aggregate with:
//   - canonical field names (aliases resolved)
//   - typed literals: dates as ir.IRDate, prices as ir.IRDecimal, years as
//     ir.IRInt, statuses as the canonical outcome name
//   - Stat and Sort defaulted, negative limits cleared
//   - an empty top-level And replaced by a nil filter
//
// Normalize is idempotent, and both backends answer only normalized
// queries, so two queries that normalize alike return identical results
// and share a query hash.
//
// Errors: *InvalidFieldError for unknown fields, *QueryError otherwise.
func Normalize(q queryir.Query) (queryir.Query, error) {
	switch query := q.(type) {
	case queryir.Select:
		return normalizeSelect(query)
	case *queryir.Select:
		if query == nil {
			return nil, invalidQuery("", "nil query")
		}
		return normalizeSelect(*query)
	case queryir.Aggregate:
		return normalizeAggregate(query)
	case *queryir.Aggregate:
		if query == nil {
			return nil, invalidQuery("", "nil query")
		}
		return normalizeAggregate(*query)
	case nil:
		return nil, invalidQuery("", "nil query")
	default:
		return nil, invalidQuery("", "unsupported query type %T", q)
	}
}

func normalizeSelect(sel queryir.Select) (queryir.Query, error) {
	filter, err := normalizeFilter(sel.Filter)
	if err != nil {
		return nil, err
	}
	return queryir.Select{Filter: filter, Limit: max(sel.Limit, 0)}, nil
}

func normalizeAggregate(agg queryir.Aggregate) (queryir.Query, error) {
	filter, err := normalizeFilter(agg.Filter)
	if err != nil {
		return nil, err
	}

	out := queryir.Aggregate{Filter: filter, Limit: max(agg.Limit, 0)}

	if agg.GroupBy != "" {
		f, err := lookup(agg.GroupBy)
		if err != nil {
			return nil, err
		}
		out.GroupBy = f.Name
	}

	out.Stat, err = queryir.ParseStat(string(agg.Stat))
	if err != nil {
		return nil, invalidQuery("", "%v", err)
	}
	out.Sort, err = queryir.ParseSort(string(agg.Sort))
	if err != nil {
		return nil, invalidQuery("", "%v", err)
	}

	if agg.Field != "" {
		f, err := lookup(agg.Field)
		if err != nil {
			return nil, err
		}
		if out.Stat.NeedsField() {
			if !f.Kind.Numeric() {
				return nil, invalidQuery(f.Name, "statistic %s needs a numeric field, %s is %s", out.Stat, f.Name, f.Kind)
			}
			out.Field = f.Name
		}
	} else if out.Stat.NeedsField() {
		return nil, invalidQuery("", "statistic %s needs a field", out.Stat)
	}

	return out, nil
}

func normalizeFilter(p queryir.Predicate) (queryir.Predicate, error) {
	if p == nil {
		return nil, nil
	}
	out, err := normalizePredicate(p)
	if err != nil {
		return nil, err
	}
	if and, ok := out.(queryir.And); ok && len(and.Predicates) == 0 {
		return nil, nil
	}
	return out, nil
}

func normalizePredicate(p queryir.Predicate) (queryir.Predicate, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		f, err := lookup(pred.Field)
		if err != nil {
			return nil, err
		}
		v, err := coerce(f, pred.Value)
		if err != nil {
			return nil, err
		}
		return queryir.Equals{Field: f.Name, Value: v}, nil
	case *queryir.Equals:
		return normalizePredicate(*pred)

	case queryir.Compare:
		f, err := lookupOrdered(pred.Field, string(pred.Op))
		if err != nil {
			return nil, err
		}
		switch pred.Op {
		case queryir.OpLT, queryir.OpLE, queryir.OpGT, queryir.OpGE:
		default:
			return nil, invalidOperator(f.Name, "unknown comparison %q", pred.Op)
		}
		v, err := coerce(f, pred.Value)
		if err != nil {
			return nil, err
		}
		return queryir.Compare{Field: f.Name, Op: pred.Op, Value: v}, nil
	case *queryir.Compare:
		return normalizePredicate(*pred)

	case queryir.Between:
		f, err := lookupOrdered(pred.Field, "between")
		if err != nil {
			return nil, err
		}
		low, err := coerce(f, pred.Low)
		if err != nil {
			return nil, err
		}
		high, err := coerce(f, pred.High)
		if err != nil {
			return nil, err
		}
		return queryir.Between{Field: f.Name, Low: low, High: high}, nil
	case *queryir.Between:
		return normalizePredicate(*pred)

	case queryir.In:
		f, err := lookup(pred.Field)
		if err != nil {
			return nil, err
		}
		values := make([]ir.IRValue, 0, len(pred.Values))
		for _, raw := range pred.Values {
			v, err := coerce(f, raw)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return queryir.In{Field: f.Name, Values: values}, nil
	case *queryir.In:
		return normalizePredicate(*pred)

	case queryir.Contains:
		f, err := lookup(pred.Field)
		if err != nil {
			return nil, err
		}
		if !f.Kind.Textual() {
			return nil, invalidOperator(f.Name, "contains is not defined on %s fields", f.Kind)
		}
		return queryir.Contains{Field: f.Name, Substring: norm.NFC.String(pred.Substring)}, nil
	case *queryir.Contains:
		return normalizePredicate(*pred)

	case queryir.IsNull:
		f, err := lookup(pred.Field)
		if err != nil {
			return nil, err
		}
		return queryir.IsNull{Field: f.Name}, nil
	case *queryir.IsNull:
		return normalizePredicate(*pred)

	case queryir.And:
		preds, err := normalizeList(pred.Predicates)
		if err != nil {
			return nil, err
		}
		return queryir.And{Predicates: preds}, nil
	case *queryir.And:
		return normalizePredicate(*pred)

	case queryir.Or:
		preds, err := normalizeList(pred.Predicates)
		if err != nil {
			return nil, err
		}
		return queryir.Or{Predicates: preds}, nil
	case *queryir.Or:
		return normalizePredicate(*pred)

	case queryir.Not:
		if pred.Predicate == nil {
			return nil, invalidQuery("", "not: missing operand")
		}
		inner, err := normalizePredicate(pred.Predicate)
		if err != nil {
			return nil, err
		}
		return queryir.Not{Predicate: inner}, nil
	case *queryir.Not:
		return normalizePredicate(*pred)

	case nil:
		return nil, invalidQuery("", "nil predicate")
	default:
		return nil, invalidQuery("", "unsupported predicate type %T", p)
	}
}

func normalizeList(preds []queryir.Predicate) ([]queryir.Predicate, error) {
	out := make([]queryir.Predicate, 0, len(preds))
	for _, p := range preds {
		n, err := normalizePredicate(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func lookup(name string) (mission.Field, error) {
	f, ok := mission.LookupField(name)
	if !ok {
		return mission.Field{}, NewInvalidFieldError(name)
	}
	return f, nil
}

func lookupOrdered(name, op string) (mission.Field, error) {
	f, err := lookup(name)
	if err != nil {
		return f, err
	}
	if !f.Kind.Ordered() {
		return f, invalidOperator(f.Name, "%s is not defined on %s fields", op, f.Kind)
	}
	return f, nil
}

// coerce converts a literal to the kind of f.
func coerce(f mission.Field, v ir.IRValue) (ir.IRValue, error) {
	switch v.(type) {
	case nil, ir.IRNull:
		return nil, invalidValue(f.Name, "missing value (use is_null to match absent values)")
	case ir.IRArray, ir.IRObject:
		return nil, invalidValue(f.Name, "%s needs a scalar value", f.Name)
	}

	switch f.Kind {
	case mission.KindString:
		switch val := v.(type) {
		case ir.IRString:
			return ir.IRString(norm.NFC.String(string(val))), nil
		case ir.IRInt, ir.IRDecimal, ir.IRDate:
			return ir.IRString(ir.Text(val)), nil
		}

	case mission.KindDate:
		switch val := v.(type) {
		case ir.IRDate:
			return val, nil
		case ir.IRString:
			d, err := ir.ParseIRDate(string(val))
			if err != nil {
				return nil, invalidValue(f.Name, "%v", err)
			}
			return d, nil
		}

	case mission.KindInt:
		switch val := v.(type) {
		case ir.IRInt:
			return val, nil
		case ir.IRDecimal:
			if int64(val)%ir.DecimalScale == 0 {
				return ir.IRInt(int64(val) / ir.DecimalScale), nil
			}
			return nil, invalidValue(f.Name, "%s is not a whole number", val)
		case ir.IRString:
			n, err := strconv.ParseInt(strings.TrimSpace(string(val)), 10, 64)
			if err != nil {
				return nil, invalidValue(f.Name, "invalid integer %q", string(val))
			}
			return ir.IRInt(n), nil
		}

	case mission.KindDecimal:
		switch val := v.(type) {
		case ir.IRDecimal:
			return val, nil
		case ir.IRInt:
			d, err := ir.DecimalFromInt(int64(val))
			if err != nil {
				return nil, invalidValue(f.Name, "%v", err)
			}
			return d, nil
		case ir.IRString:
			d, err := ir.ParseIRDecimal(string(val))
			if err != nil {
				return nil, invalidValue(f.Name, "%v", err)
			}
			return d, nil
		}

	case mission.KindOutcome:
		if val, ok := v.(ir.IRString); ok {
			o, err := mission.ParseOutcome(string(val))
			if err != nil {
				return nil, invalidValue(f.Name, "%v", err)
			}
			return ir.IRString(o), nil
		}
	}

	return nil, invalidValue(f.Name, "%T is not a valid %s value", v, f.Kind)
}
