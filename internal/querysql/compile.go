// Package querysql compiles normalized query IR to parameterized SQLite SQL
// over the missions table.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/mission"
	"github.com/roach88/launchdeck/internal/queryir"
)

// DefaultTable is the table the SQLite mirror stores records in.
const DefaultTable = "missions"

// FoldFunc is the SQL function the store registers for case folding.
// It must fold exactly like queryir.Fold and map NULL to NULL.
const FoldFunc = "casefold"

// RowColumns are the columns a compiled Select returns, in order, followed
// by the total match count.
var RowColumns = []string{
	"seq", "company", "location", "date", "time", "rocket",
	"mission", "rocket_status", "price", "status",
}

// SQLCompiler compiles normalized QueryIR to parameterized SQL for SQLite.
//
// CRITICAL: every query has an ORDER BY so row order is deterministic.
// CRITICAL: all values are parameterized, never interpolated.
//
// Queries must be normalized (engine.Normalize) first: field names are
// used as column names and literals are assumed to have the field's kind.
type SQLCompiler struct {
	Table string
}

// NewSQLCompiler creates a compiler for the default table.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{Table: DefaultTable}
}

// Compile converts a query to (sql, params).
//
// Select returns RowColumns plus a "total" column holding the match count
// before LIMIT. Aggregate returns one row per group:
//
//	grp, n, nonnull, sum, min, max, successes, first
//
// ordered by first occurrence (MIN(seq)).
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	case queryir.Aggregate:
		return c.compileAggregate(query)
	case *queryir.Aggregate:
		return c.compileAggregate(*query)
	case nil:
		return "", nil, fmt.Errorf("cannot compile nil query")
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	cols := make([]string, len(RowColumns))
	for i, col := range RowColumns {
		cols[i] = quoteIdent(col)
	}

	where, params, err := c.whereClause(q.Filter)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf("SELECT %s, COUNT(*) OVER () AS total FROM %s%s ORDER BY seq ASC",
		strings.Join(cols, ", "),
		quoteIdent(c.Table),
		where)

	if q.Limit > 0 {
		sql += " LIMIT ?"
		params = append(params, int64(q.Limit))
	}
	return sql, params, nil
}

func (c *SQLCompiler) compileAggregate(q queryir.Aggregate) (string, []any, error) {
	grp := "NULL"
	if q.GroupBy != "" {
		if err := checkField(q.GroupBy); err != nil {
			return "", nil, err
		}
		grp = quoteIdent(q.GroupBy)
	}

	val := "NULL"
	if q.Field != "" {
		f, ok := mission.LookupField(q.Field)
		if !ok || f.Name != q.Field {
			return "", nil, fmt.Errorf("unnormalized field %q", q.Field)
		}
		if !f.Kind.Numeric() {
			return "", nil, fmt.Errorf("field %q is not numeric", q.Field)
		}
		val = quoteIdent(q.Field)
	}

	// Select-list parameters come before WHERE parameters.
	params := []any{string(mission.OutcomeSuccess)}

	where, whereParams, err := c.whereClause(q.Filter)
	if err != nil {
		return "", nil, err
	}
	params = append(params, whereParams...)

	sql := fmt.Sprintf(
		"SELECT %s AS grp, COUNT(*) AS n, COUNT(%s) AS nonnull, COALESCE(SUM(%s), 0) AS total, MIN(%s) AS lo, MAX(%s) AS hi, COALESCE(SUM(status = ?), 0) AS successes, MIN(seq) AS first FROM %s%s",
		grp, val, val, val, val, quoteIdent(c.Table), where)

	if q.GroupBy != "" {
		sql += " GROUP BY grp ORDER BY first ASC"
	}
	return sql, params, nil
}

func (c *SQLCompiler) whereClause(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, nil
	}
	sql, params, err := c.compilePredicate(p)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return " WHERE " + sql, params, nil
}

// compilePredicate compiles a predicate to a WHERE fragment.
//
// SQL comparisons against NULL yield NULL, which WHERE treats as false.
// That already agrees with two-valued evaluation everywhere except under
// NOT, so Not compiles to NOT COALESCE((p), 0).
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return binary(pred.Field, "=", pred.Value)
	case *queryir.Equals:
		return c.compilePredicate(*pred)

	case queryir.Compare:
		return binary(pred.Field, pred.Op.Symbol(), pred.Value)
	case *queryir.Compare:
		return c.compilePredicate(*pred)

	case queryir.Between:
		if err := checkField(pred.Field); err != nil {
			return "", nil, err
		}
		lo, err := ParamFromValue(pred.Low)
		if err != nil {
			return "", nil, err
		}
		hi, err := ParamFromValue(pred.High)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s BETWEEN ? AND ?", quoteIdent(pred.Field)), []any{lo, hi}, nil
	case *queryir.Between:
		return c.compilePredicate(*pred)

	case queryir.In:
		if err := checkField(pred.Field); err != nil {
			return "", nil, err
		}
		if len(pred.Values) == 0 {
			return "0", nil, nil
		}
		params := make([]any, len(pred.Values))
		for i, v := range pred.Values {
			param, err := ParamFromValue(v)
			if err != nil {
				return "", nil, err
			}
			params[i] = param
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")
		return fmt.Sprintf("%s IN (%s)", quoteIdent(pred.Field), marks), params, nil
	case *queryir.In:
		return c.compilePredicate(*pred)

	case queryir.Contains:
		if err := checkField(pred.Field); err != nil {
			return "", nil, err
		}
		col := quoteIdent(pred.Field)
		sql := fmt.Sprintf("(%s IS NOT NULL AND instr(%s(%s), ?) > 0)", col, FoldFunc, col)
		return sql, []any{queryir.Fold(pred.Substring)}, nil
	case *queryir.Contains:
		return c.compilePredicate(*pred)

	case queryir.IsNull:
		if err := checkField(pred.Field); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s IS NULL", quoteIdent(pred.Field)), nil, nil
	case *queryir.IsNull:
		return c.compilePredicate(*pred)

	case queryir.And:
		return c.compileList(pred.Predicates, " AND ", "1")
	case *queryir.And:
		return c.compilePredicate(*pred)

	case queryir.Or:
		return c.compileList(pred.Predicates, " OR ", "0")
	case *queryir.Or:
		return c.compilePredicate(*pred)

	case queryir.Not:
		if pred.Predicate == nil {
			return "", nil, fmt.Errorf("not: missing operand")
		}
		sql, params, err := c.compilePredicate(pred.Predicate)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("NOT COALESCE((%s), 0)", sql), params, nil
	case *queryir.Not:
		return c.compilePredicate(*pred)

	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileList(preds []queryir.Predicate, sep, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	parts := make([]string, 0, len(preds))
	var all []any
	for _, pred := range preds {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		all = append(all, params...)
	}
	return "(" + strings.Join(parts, sep) + ")", all, nil
}

func binary(field, op string, v ir.IRValue) (string, []any, error) {
	if err := checkField(field); err != nil {
		return "", nil, err
	}
	param, err := ParamFromValue(v)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}
	return fmt.Sprintf("%s %s ?", quoteIdent(field), op), []any{param}, nil
}

// checkField rejects anything that is not a canonical field name, so only
// registry names ever reach the SQL text.
func checkField(name string) error {
	f, ok := mission.LookupField(name)
	if !ok || f.Name != name {
		return fmt.Errorf("unnormalized field %q", name)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
