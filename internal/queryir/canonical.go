package queryir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/launchdeck/internal/ir"
)

// Canonical renders q as an IR object suitable for ir.QueryHash.
//
// Zero-valued optional parts (nil filter, zero limit, empty group key) are
// omitted, so Select{} and Select{Limit: 0} hash the same. Field names are
// emitted as given; normalize first to make aliases hash alike.
func Canonical(q Query) (ir.IRObject, error) {
	switch query := q.(type) {
	case Select:
		return canonicalSelect(query)
	case *Select:
		return canonicalSelect(*query)
	case Aggregate:
		return canonicalAggregate(query)
	case *Aggregate:
		return canonicalAggregate(*query)
	case nil:
		return nil, fmt.Errorf("canonical: nil query")
	default:
		return nil, fmt.Errorf("canonical: unsupported query type %T", q)
	}
}

func canonicalSelect(sel Select) (ir.IRObject, error) {
	obj := ir.IRObject{"kind": ir.IRString("select")}
	if err := putFilter(obj, sel.Filter); err != nil {
		return nil, err
	}
	if sel.Limit != 0 {
		obj["limit"] = ir.IRInt(sel.Limit)
	}
	return obj, nil
}

func canonicalAggregate(agg Aggregate) (ir.IRObject, error) {
	stat := agg.Stat
	if stat == "" {
		stat = StatCount
	}
	sort := agg.Sort
	if sort == "" {
		sort = SortNone
	}
	obj := ir.IRObject{
		"kind": ir.IRString("aggregate"),
		"stat": ir.IRString(stat),
		"sort": ir.IRString(sort),
	}
	if err := putFilter(obj, agg.Filter); err != nil {
		return nil, err
	}
	if agg.GroupBy != "" {
		obj["group_by"] = ir.IRString(agg.GroupBy)
	}
	if agg.Field != "" {
		obj["field"] = ir.IRString(agg.Field)
	}
	if agg.Limit != 0 {
		obj["limit"] = ir.IRInt(agg.Limit)
	}
	return obj, nil
}

func putFilter(obj ir.IRObject, p Predicate) error {
	if p == nil {
		return nil
	}
	f, err := CanonicalPredicate(p)
	if err != nil {
		return err
	}
	obj["filter"] = f
	return nil
}

// CanonicalPredicate renders p as an IR object. Missing literal values
// are rejected; IsNull is the way to ask for them.
func CanonicalPredicate(p Predicate) (ir.IRObject, error) {
	switch pred := p.(type) {
	case Equals:
		return leaf("eq", pred.Field, "value", pred.Value)
	case *Equals:
		return leaf("eq", pred.Field, "value", pred.Value)
	case Compare:
		return leaf(string(pred.Op), pred.Field, "value", pred.Value)
	case *Compare:
		return leaf(string(pred.Op), pred.Field, "value", pred.Value)
	case Between:
		return canonicalBetween(pred)
	case *Between:
		return canonicalBetween(*pred)
	case In:
		return canonicalIn(pred)
	case *In:
		return canonicalIn(*pred)
	case Contains:
		return leaf("contains", pred.Field, "value", ir.IRString(pred.Substring))
	case *Contains:
		return leaf("contains", pred.Field, "value", ir.IRString(pred.Substring))
	case IsNull:
		return ir.IRObject{"op": ir.IRString("is_null"), "field": ir.IRString(pred.Field)}, nil
	case *IsNull:
		return ir.IRObject{"op": ir.IRString("is_null"), "field": ir.IRString(pred.Field)}, nil
	case And:
		return canonicalList("and", pred.Predicates)
	case *And:
		return canonicalList("and", pred.Predicates)
	case Or:
		return canonicalList("or", pred.Predicates)
	case *Or:
		return canonicalList("or", pred.Predicates)
	case Not:
		return canonicalNot(pred)
	case *Not:
		return canonicalNot(*pred)
	case nil:
		return nil, fmt.Errorf("canonical: nil predicate")
	default:
		return nil, fmt.Errorf("canonical: unsupported predicate type %T", p)
	}
}

func leaf(op, field, key string, v ir.IRValue) (ir.IRObject, error) {
	if err := literal(field, v); err != nil {
		return nil, err
	}
	return ir.IRObject{
		"op":    ir.IRString(op),
		"field": ir.IRString(field),
		key:     v,
	}, nil
}

func literal(field string, v ir.IRValue) error {
	switch v.(type) {
	case nil, ir.IRNull:
		return fmt.Errorf("canonical: field %q compared to a missing value", field)
	}
	return nil
}

func canonicalBetween(b Between) (ir.IRObject, error) {
	if err := literal(b.Field, b.Low); err != nil {
		return nil, err
	}
	if err := literal(b.Field, b.High); err != nil {
		return nil, err
	}
	return ir.IRObject{
		"op":    ir.IRString("between"),
		"field": ir.IRString(b.Field),
		"low":   b.Low,
		"high":  b.High,
	}, nil
}

func canonicalIn(in In) (ir.IRObject, error) {
	values := make(ir.IRArray, len(in.Values))
	for i, v := range in.Values {
		if err := literal(in.Field, v); err != nil {
			return nil, err
		}
		values[i] = v
	}
	return ir.IRObject{
		"op":     ir.IRString("in"),
		"field":  ir.IRString(in.Field),
		"values": values,
	}, nil
}

func canonicalList(op string, preds []Predicate) (ir.IRObject, error) {
	args := make(ir.IRArray, len(preds))
	for i, p := range preds {
		obj, err := CanonicalPredicate(p)
		if err != nil {
			return nil, err
		}
		args[i] = obj
	}
	return ir.IRObject{"op": ir.IRString(op), "args": args}, nil
}

func canonicalNot(n Not) (ir.IRObject, error) {
	inner, err := CanonicalPredicate(n.Predicate)
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"op": ir.IRString("not"), "arg": inner}, nil
}

// Format renders p as a compact infix expression for logs and CLI output,
// e.g. `company = "SpaceX" AND price > 50`. A nil predicate renders as "*".
func Format(p Predicate) string {
	var b strings.Builder
	format(&b, p, false)
	return b.String()
}

func format(b *strings.Builder, p Predicate, nested bool) {
	switch pred := p.(type) {
	case nil:
		b.WriteString("*")
	case Equals:
		fmt.Fprintf(b, "%s = %s", pred.Field, quote(pred.Value))
	case *Equals:
		format(b, *pred, nested)
	case Compare:
		fmt.Fprintf(b, "%s %s %s", pred.Field, pred.Op.Symbol(), quote(pred.Value))
	case *Compare:
		format(b, *pred, nested)
	case Between:
		fmt.Fprintf(b, "%s BETWEEN %s AND %s", pred.Field, quote(pred.Low), quote(pred.High))
	case *Between:
		format(b, *pred, nested)
	case In:
		parts := make([]string, len(pred.Values))
		for i, v := range pred.Values {
			parts[i] = quote(v)
		}
		fmt.Fprintf(b, "%s IN (%s)", pred.Field, strings.Join(parts, ", "))
	case *In:
		format(b, *pred, nested)
	case Contains:
		fmt.Fprintf(b, "%s CONTAINS %s", pred.Field, strconv.Quote(pred.Substring))
	case *Contains:
		format(b, *pred, nested)
	case IsNull:
		fmt.Fprintf(b, "%s IS NULL", pred.Field)
	case *IsNull:
		format(b, *pred, nested)
	case And:
		formatList(b, "AND", "TRUE", pred.Predicates, nested)
	case *And:
		format(b, *pred, nested)
	case Or:
		formatList(b, "OR", "FALSE", pred.Predicates, nested)
	case *Or:
		format(b, *pred, nested)
	case Not:
		b.WriteString("NOT ")
		format(b, pred.Predicate, true)
	case *Not:
		format(b, *pred, nested)
	default:
		fmt.Fprintf(b, "<%T>", p)
	}
}

func formatList(b *strings.Builder, op, empty string, preds []Predicate, nested bool) {
	if len(preds) == 0 {
		b.WriteString(empty)
		return
	}
	if len(preds) == 1 {
		format(b, preds[0], nested)
		return
	}
	if nested {
		b.WriteString("(")
	}
	for i, p := range preds {
		if i > 0 {
			fmt.Fprintf(b, " %s ", op)
		}
		format(b, p, true)
	}
	if nested {
		b.WriteString(")")
	}
}

func quote(v ir.IRValue) string {
	switch val := v.(type) {
	case ir.IRString:
		return strconv.Quote(string(val))
	case ir.IRDate:
		return val.String()
	case nil, ir.IRNull:
		return "NULL"
	}
	return ir.Text(v)
}
