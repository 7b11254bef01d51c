// Package compiler turns query documents written in CUE or YAML into
// query IR.
//
// A document holds named queries:
//
//	query: spacex_failures: {
//		filter: {and: [
//			{field: "company", op: "eq", value: "SpaceX"},
//			{field: "status", op: "ne", value: "Success"},
//		]}
//		limit: 10
//	}
//
//	query: cost_by_company: {
//		filter: {field: "price", op: "is_null", negate: true}
//		aggregate: {group_by: "company", stat: "avg", field: "price", sort: "value_desc"}
//	}
//
// YAML documents use a top-level "queries" map of the same shape.
package compiler

import (
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/queryir"
)

// Condition operators accepted in documents.
const (
	OpEq       = "eq"
	OpNe       = "ne"
	OpLt       = "lt"
	OpLe       = "le"
	OpGt       = "gt"
	OpGe       = "ge"
	OpBetween  = "between"
	OpIn       = "in"
	OpContains = "contains"
	OpIsNull   = "is_null"
)

// Ops lists the condition operators in documentation order.
func Ops() []string {
	return []string{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpBetween, OpIn, OpContains, OpIsNull}
}

var compareOps = map[string]queryir.CompareOp{
	OpLt: queryir.OpLT,
	OpLe: queryir.OpLE,
	OpGt: queryir.OpGT,
	OpGe: queryir.OpGE,
}

var (
	queryKeys     = []string{"description", "filter", "limit", "aggregate"}
	aggregateKeys = []string{"group_by", "stat", "field", "sort", "limit"}
	leafKeys      = []string{"field", "op", "value", "negate"}
)

// CompileQuery parses a CUE value into a Query.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the query struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`query: recent: { filter: {...} }`)
//	q, err := CompileQuery(v.LookupPath(cue.ParsePath("query.recent")))
//
// The result is not normalized: field names and literal types are checked
// when the query runs (engine.Normalize), so a document may name aliases.
func CompileQuery(v cue.Value) (queryir.Query, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := checkKeys(v, "query", queryKeys); err != nil {
		return nil, err
	}

	var filter queryir.Predicate
	if fv := v.LookupPath(cue.ParsePath("filter")); fv.Exists() {
		p, err := compileCondition(fv, "filter")
		if err != nil {
			return nil, err
		}
		filter = p
	}

	aggVal := v.LookupPath(cue.ParsePath("aggregate"))
	limitVal := v.LookupPath(cue.ParsePath("limit"))

	if !aggVal.Exists() {
		limit, err := optionalInt(limitVal, "limit")
		if err != nil {
			return nil, err
		}
		return queryir.Select{Filter: filter, Limit: limit}, nil
	}

	if limitVal.Exists() {
		return nil, errorAt(limitVal.Pos(), "limit",
			"limit of an aggregate query belongs inside aggregate")
	}

	agg, err := compileAggregate(aggVal)
	if err != nil {
		return nil, err
	}
	agg.Filter = filter
	return agg, nil
}

func compileAggregate(v cue.Value) (queryir.Aggregate, error) {
	if err := checkKeys(v, "aggregate", aggregateKeys); err != nil {
		return queryir.Aggregate{}, err
	}

	var agg queryir.Aggregate
	var err error

	if agg.GroupBy, err = optionalString(v.LookupPath(cue.ParsePath("group_by")), "aggregate.group_by"); err != nil {
		return agg, err
	}
	if agg.Field, err = optionalString(v.LookupPath(cue.ParsePath("field")), "aggregate.field"); err != nil {
		return agg, err
	}
	if agg.Limit, err = optionalInt(v.LookupPath(cue.ParsePath("limit")), "aggregate.limit"); err != nil {
		return agg, err
	}

	statVal := v.LookupPath(cue.ParsePath("stat"))
	stat, err := optionalString(statVal, "aggregate.stat")
	if err != nil {
		return agg, err
	}
	if agg.Stat, err = queryir.ParseStat(stat); err != nil {
		return agg, errorAt(statVal.Pos(), "aggregate.stat", "%v", err)
	}

	sortVal := v.LookupPath(cue.ParsePath("sort"))
	sort, err := optionalString(sortVal, "aggregate.sort")
	if err != nil {
		return agg, err
	}
	if agg.Sort, err = queryir.ParseSort(sort); err != nil {
		return agg, errorAt(sortVal.Pos(), "aggregate.sort", "%v", err)
	}

	return agg, nil
}

// compileCondition parses one condition:
//
//	{field: "price", op: "gt", value: 50}
//	{and: [...]} | {or: [...]} | {not: {...}}
//
// A leaf with negate: true is wrapped in Not.
func compileCondition(v cue.Value, path string) (queryir.Predicate, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, errorAt(v.Pos(), path, "condition must be a struct, got %v", v.IncompleteKind())
	}

	for _, combinator := range []string{"and", "or"} {
		cv := v.LookupPath(cue.ParsePath(combinator))
		if !cv.Exists() {
			continue
		}
		if err := checkKeys(v, path, []string{combinator}); err != nil {
			return nil, err
		}
		preds, err := compileConditionList(cv, path+"."+combinator)
		if err != nil {
			return nil, err
		}
		if combinator == "and" {
			return queryir.And{Predicates: preds}, nil
		}
		return queryir.Or{Predicates: preds}, nil
	}

	if nv := v.LookupPath(cue.ParsePath("not")); nv.Exists() {
		if err := checkKeys(v, path, []string{"not"}); err != nil {
			return nil, err
		}
		p, err := compileCondition(nv, path+".not")
		if err != nil {
			return nil, err
		}
		return queryir.Not{Predicate: p}, nil
	}

	p, err := compileLeaf(v, path)
	if err != nil {
		return nil, err
	}

	negVal := v.LookupPath(cue.ParsePath("negate"))
	if negVal.Exists() {
		neg, err := negVal.Bool()
		if err != nil {
			return nil, errorAt(negVal.Pos(), path+".negate", "negate must be a bool")
		}
		if neg {
			return queryir.Not{Predicate: p}, nil
		}
	}
	return p, nil
}

func compileConditionList(v cue.Value, path string) ([]queryir.Predicate, error) {
	iter, err := v.List()
	if err != nil {
		return nil, errorAt(v.Pos(), path, "must be a list of conditions")
	}

	preds := []queryir.Predicate{}
	for i := 0; iter.Next(); i++ {
		p, err := compileCondition(iter.Value(), fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func compileLeaf(v cue.Value, path string) (queryir.Predicate, error) {
	if err := checkKeys(v, path, leafKeys); err != nil {
		return nil, err
	}

	fieldVal := v.LookupPath(cue.ParsePath("field"))
	if !fieldVal.Exists() {
		return nil, errorAt(v.Pos(), path, "condition needs field and op, or one of and/or/not")
	}
	field, err := fieldVal.String()
	if err != nil || strings.TrimSpace(field) == "" {
		return nil, errorAt(fieldVal.Pos(), path+".field", "field must be a non-empty string")
	}

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return nil, errorAt(v.Pos(), path+".op", "op is required")
	}
	op, err := opVal.String()
	if err != nil {
		return nil, errorAt(opVal.Pos(), path+".op", "op must be a string")
	}

	valueVal := v.LookupPath(cue.ParsePath("value"))
	valuePath := path + ".value"

	if op == OpIsNull {
		if valueVal.Exists() {
			return nil, errorAt(valueVal.Pos(), valuePath, "is_null takes no value")
		}
		return queryir.IsNull{Field: field}, nil
	}
	if !valueVal.Exists() {
		return nil, errorAt(v.Pos(), valuePath, "op %s requires a value", op)
	}

	switch op {
	case OpEq, OpNe:
		val, err := compileValue(valueVal, valuePath)
		if err != nil {
			return nil, err
		}
		eq := queryir.Equals{Field: field, Value: val}
		if op == OpNe {
			return queryir.Not{Predicate: eq}, nil
		}
		return eq, nil

	case OpLt, OpLe, OpGt, OpGe:
		val, err := compileValue(valueVal, valuePath)
		if err != nil {
			return nil, err
		}
		return queryir.Compare{Field: field, Op: compareOps[op], Value: val}, nil

	case OpBetween:
		vals, err := compileValueList(valueVal, valuePath)
		if err != nil {
			return nil, err
		}
		if len(vals) != 2 {
			return nil, errorAt(valueVal.Pos(), valuePath, "between takes [low, high], got %d values", len(vals))
		}
		return queryir.Between{Field: field, Low: vals[0], High: vals[1]}, nil

	case OpIn:
		vals, err := compileValueList(valueVal, valuePath)
		if err != nil {
			return nil, err
		}
		return queryir.In{Field: field, Values: vals}, nil

	case OpContains:
		s, err := valueVal.String()
		if err != nil {
			return nil, errorAt(valueVal.Pos(), valuePath, "contains takes a string")
		}
		return queryir.Contains{Field: field, Substring: s}, nil

	default:
		return nil, errorAt(opVal.Pos(), path+".op", "unknown op %q (one of %s)", op, strings.Join(Ops(), ", "))
	}
}

// compileValue converts a concrete CUE scalar to an IR literal. Numbers
// with a fraction become decimals; floats never enter the IR.
func compileValue(v cue.Value, path string) (ir.IRValue, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	switch v.Kind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRString(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, errorAt(v.Pos(), path, "integer out of range")
		}
		return ir.IRInt(n), nil
	case cue.FloatKind, cue.NumberKind:
		text, err := v.MarshalJSON()
		if err != nil {
			return nil, formatCUEError(err)
		}
		d, err := ir.ParseIRDecimal(string(text))
		if err != nil {
			return nil, errorAt(v.Pos(), path, "%v", err)
		}
		return d, nil
	case cue.NullKind:
		return ir.IRNull{}, nil
	case cue.BottomKind:
		return nil, errorAt(v.Pos(), path, "value must be concrete")
	default:
		return nil, errorAt(v.Pos(), path, "unsupported value kind %v", v.Kind())
	}
}

func compileValueList(v cue.Value, path string) ([]ir.IRValue, error) {
	iter, err := v.List()
	if err != nil {
		return nil, errorAt(v.Pos(), path, "must be a list")
	}

	vals := []ir.IRValue{}
	for i := 0; iter.Next(); i++ {
		val, err := compileValue(iter.Value(), fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		vals = append(vals, val)
	}
	return vals, nil
}

// checkKeys rejects struct fields outside allowed, the CUE counterpart of
// strict YAML decoding.
func checkKeys(v cue.Value, path string, allowed []string) error {
	iter, err := v.Fields()
	if err != nil {
		return errorAt(v.Pos(), path, "must be a struct")
	}
	for iter.Next() {
		label := iter.Label()
		if !slices.Contains(allowed, label) {
			return errorAt(iter.Value().Pos(), path,
				"unexpected key %q (allowed: %s)", label, strings.Join(allowed, ", "))
		}
	}
	return nil
}

func optionalString(v cue.Value, path string) (string, error) {
	if !v.Exists() {
		return "", nil
	}
	s, err := v.String()
	if err != nil {
		return "", errorAt(v.Pos(), path, "must be a string")
	}
	return s, nil
}

func optionalInt(v cue.Value, path string) (int, error) {
	if !v.Exists() {
		return 0, nil
	}
	n, err := v.Int64()
	if err != nil {
		return 0, errorAt(v.Pos(), path, "must be an integer")
	}
	return int(n), nil
}
