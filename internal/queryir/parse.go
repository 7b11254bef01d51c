package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/launchdeck/internal/ir"
)

// ParseCondition parses one command-line condition.
//
//	field=v        Equals
//	field!=v       Not Equals
//	field<v        Compare (also <=, >, >=)
//	field~v        Contains
//	field=a|b|c    In
//	field=lo..hi   Between
//	field=         IsNull
//	field!=        Not IsNull
//
// Literal values stay text; engine.Normalize coerces them to the field's
// kind. Whitespace around the field and value is ignored.
func ParseCondition(s string) (Predicate, error) {
	i := strings.IndexAny(s, "=!<>~")
	if i < 0 {
		return nil, fmt.Errorf("condition %q: missing operator (one of = != < <= > >= ~)", s)
	}
	field := strings.TrimSpace(s[:i])
	if field == "" {
		return nil, fmt.Errorf("condition %q: missing field name", s)
	}

	op := s[i : i+1]
	if i+1 < len(s) && s[i+1] == '=' && op != "=" && op != "~" {
		op += "="
	}
	if op == "!" {
		return nil, fmt.Errorf("condition %q: '!' must be followed by '='", s)
	}
	value := strings.TrimSpace(s[i+len(op):])

	switch op {
	case "=":
		return parseEquality(field, value), nil
	case "!=":
		return Not{Predicate: parseEquality(field, value)}, nil
	case "~":
		if value == "" {
			return nil, fmt.Errorf("condition %q: empty substring", s)
		}
		return Contains{Field: field, Substring: value}, nil
	}

	if value == "" {
		return nil, fmt.Errorf("condition %q: missing value", s)
	}
	var cmp CompareOp
	switch op {
	case "<":
		cmp = OpLT
	case "<=":
		cmp = OpLE
	case ">":
		cmp = OpGT
	case ">=":
		cmp = OpGE
	}
	return Compare{Field: field, Op: cmp, Value: ir.IRString(value)}, nil
}

func parseEquality(field, value string) Predicate {
	if value == "" {
		return IsNull{Field: field}
	}
	if lo, hi, ok := strings.Cut(value, ".."); ok && lo != "" && hi != "" {
		return Between{
			Field: field,
			Low:   ir.IRString(strings.TrimSpace(lo)),
			High:  ir.IRString(strings.TrimSpace(hi)),
		}
	}
	if strings.Contains(value, "|") {
		parts := strings.Split(value, "|")
		values := make([]ir.IRValue, 0, len(parts))
		for _, p := range parts {
			values = append(values, ir.IRString(strings.TrimSpace(p)))
		}
		return In{Field: field, Values: values}
	}
	return Equals{Field: field, Value: ir.IRString(value)}
}

// ParseConditions parses each condition and conjoins them.
// No conditions yields a nil predicate.
func ParseConditions(conds []string) (Predicate, error) {
	preds := make([]Predicate, 0, len(conds))
	for _, c := range conds {
		p, err := ParseCondition(c)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return All(preds...), nil
}
