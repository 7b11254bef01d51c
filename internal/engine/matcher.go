package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/mission"
	"github.com/roach88/launchdeck/internal/queryir"
)

// matcher reports whether a record satisfies a predicate.
type matcher func(r *mission.Record) bool

func matchAll(*mission.Record) bool { return true }

// compileMatcher turns a normalized predicate into a matcher. A nil
// predicate matches everything.
//
// Evaluation is two-valued: every comparison against a missing value is
// false, and Not inverts its operand exactly.
func compileMatcher(p queryir.Predicate) (matcher, error) {
	switch pred := p.(type) {
	case nil:
		return matchAll, nil

	case queryir.Equals:
		get, err := accessor(pred.Field)
		if err != nil {
			return nil, err
		}
		return func(r *mission.Record) bool {
			return ir.Equal(get(*r), pred.Value)
		}, nil

	case queryir.Compare:
		get, err := accessor(pred.Field)
		if err != nil {
			return nil, err
		}
		return func(r *mission.Record) bool {
			c, ok := ir.Compare(get(*r), pred.Value)
			return ok && pred.Op.Holds(c)
		}, nil

	case queryir.Between:
		get, err := accessor(pred.Field)
		if err != nil {
			return nil, err
		}
		return func(r *mission.Record) bool {
			v := get(*r)
			lo, ok := ir.Compare(v, pred.Low)
			if !ok || lo < 0 {
				return false
			}
			hi, ok := ir.Compare(v, pred.High)
			return ok && hi <= 0
		}, nil

	case queryir.In:
		get, err := accessor(pred.Field)
		if err != nil {
			return nil, err
		}
		return func(r *mission.Record) bool {
			v := get(*r)
			for _, want := range pred.Values {
				if ir.Equal(v, want) {
					return true
				}
			}
			return false
		}, nil

	case queryir.Contains:
		get, err := accessor(pred.Field)
		if err != nil {
			return nil, err
		}
		needle := queryir.Fold(pred.Substring)
		return func(r *mission.Record) bool {
			s, ok := get(*r).(ir.IRString)
			return ok && strings.Contains(queryir.Fold(string(s)), needle)
		}, nil

	case queryir.IsNull:
		get, err := accessor(pred.Field)
		if err != nil {
			return nil, err
		}
		return func(r *mission.Record) bool {
			_, null := get(*r).(ir.IRNull)
			return null
		}, nil

	case queryir.And:
		ms, err := compileList(pred.Predicates)
		if err != nil {
			return nil, err
		}
		return func(r *mission.Record) bool {
			for _, m := range ms {
				if !m(r) {
					return false
				}
			}
			return true
		}, nil

	case queryir.Or:
		ms, err := compileList(pred.Predicates)
		if err != nil {
			return nil, err
		}
		return func(r *mission.Record) bool {
			for _, m := range ms {
				if m(r) {
					return true
				}
			}
			return false
		}, nil

	case queryir.Not:
		if pred.Predicate == nil {
			return nil, invalidQuery("", "not: missing operand")
		}
		inner, err := compileMatcher(pred.Predicate)
		if err != nil {
			return nil, err
		}
		return func(r *mission.Record) bool {
			return !inner(r)
		}, nil

	default:
		return nil, fmt.Errorf("compile matcher: unnormalized predicate %T", p)
	}
}

func compileList(preds []queryir.Predicate) ([]matcher, error) {
	ms := make([]matcher, len(preds))
	for i, p := range preds {
		if p == nil {
			return nil, invalidQuery("", "nil predicate")
		}
		m, err := compileMatcher(p)
		if err != nil {
			return nil, err
		}
		ms[i] = m
	}
	return ms, nil
}

func accessor(name string) (func(mission.Record) ir.IRValue, error) {
	f, ok := mission.LookupField(name)
	if !ok {
		return nil, NewInvalidFieldError(name)
	}
	return f.Value, nil
}
