package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/mission"
	"github.com/roach88/launchdeck/internal/queryir"
)

// BackendMemory is the backend label of Core in metrics and logs.
const BackendMemory = "memory"

// Backend answers queries against one loaded dataset.
// Core is the in-memory backend; store.Store is the SQLite mirror.
type Backend interface {
	Execute(ctx context.Context, q queryir.Query) (*ResultSet, error)
}

// Core answers queries against an in-memory Dataset.
//
// The Dataset is read-only, and a Core holds no other mutable state, so a
// single Core may be shared by any number of goroutines.
type Core struct {
	ds      *mission.Dataset
	metrics *Metrics
	logger  *slog.Logger
}

// Option configures a Core.
type Option func(*Core)

// WithMetrics records every Execute on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Core) {
		c.metrics = m
	}
}

// WithLogger sets the logger for per-query debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Core over ds.
func New(ds *mission.Dataset, opts ...Option) *Core {
	c := &Core{
		ds:     ds,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dataset returns the dataset the Core queries.
func (c *Core) Dataset() *mission.Dataset {
	return c.ds
}

// Filter returns the records satisfying p, in dataset order.
//
// A nil predicate (or an empty And) returns every record: Filter(nil)
// equals the dataset. Unknown fields fail with *InvalidFieldError.
func (c *Core) Filter(p queryir.Predicate) ([]mission.Record, error) {
	n, err := normalizeFilter(p)
	if err != nil {
		return nil, err
	}
	return c.filter(n)
}

// Aggregate groups the records matching agg.Filter and computes agg.Stat
// per group. Groups come in first-occurrence order unless agg.Sort says
// otherwise.
func (c *Core) Aggregate(agg queryir.Aggregate) ([]Group, error) {
	n, err := normalizeAggregate(agg)
	if err != nil {
		return nil, err
	}
	groups, _, _, err := c.aggregate(n.(queryir.Aggregate))
	return groups, err
}

// Execute normalizes q, answers it and stamps the result with the query
// hash. The context is checked once before any work.
func (c *Core) Execute(ctx context.Context, q queryir.Query) (*ResultSet, error) {
	start := time.Now()
	kind := KindOf(q)

	rs, matched, err := c.execute(ctx, q)
	c.metrics.Observe(BackendMemory, kind, start, matched, err)
	if err != nil {
		c.logger.Debug("query rejected", "backend", BackendMemory, "kind", kind, "error", err)
		return nil, err
	}

	c.logger.Debug("query executed",
		"backend", BackendMemory,
		"kind", kind,
		"hash", ShortHash(rs.QueryHash),
		"matched", matched,
		"total", rs.Total,
	)
	return rs, nil
}

func (c *Core) execute(ctx context.Context, q queryir.Query) (*ResultSet, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	n, err := Normalize(q)
	if err != nil {
		return nil, 0, err
	}
	hash, err := Hash(n)
	if err != nil {
		return nil, 0, err
	}

	switch query := n.(type) {
	case queryir.Select:
		matches, err := c.filter(query.Filter)
		if err != nil {
			return nil, 0, err
		}
		return SelectResult(hash, matches, query.Limit), len(matches), nil

	case queryir.Aggregate:
		groups, total, matched, err := c.aggregate(query)
		if err != nil {
			return nil, 0, err
		}
		return &ResultSet{
			Kind:      ResultGroups,
			QueryHash: hash,
			Total:     total,
			Stat:      query.Stat,
			Groups:    groups,
		}, matched, nil

	default:
		return nil, 0, fmt.Errorf("execute: unexpected normalized query %T", n)
	}
}

func (c *Core) filter(p queryir.Predicate) ([]mission.Record, error) {
	if p == nil {
		return c.ds.Records(), nil
	}
	m, err := compileMatcher(p)
	if err != nil {
		return nil, err
	}
	var out []mission.Record
	for i := 0; i < c.ds.Len(); i++ {
		r := c.ds.At(i)
		if m(&r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// aggregate returns the finished groups, the group count before the limit
// and the number of records that matched the filter.
func (c *Core) aggregate(agg queryir.Aggregate) ([]Group, int, int, error) {
	matches, err := c.filter(agg.Filter)
	if err != nil {
		return nil, 0, 0, err
	}

	key := func(mission.Record) string { return queryir.AllGroupKey }
	if agg.GroupBy != "" {
		get, err := accessor(agg.GroupBy)
		if err != nil {
			return nil, 0, 0, err
		}
		key = func(r mission.Record) string { return GroupKey(get(r)) }
	}

	var value func(mission.Record) ir.IRValue
	if agg.Field != "" {
		value, err = accessor(agg.Field)
		if err != nil {
			return nil, 0, 0, err
		}
	}

	var accs []Accumulator
	if agg.GroupBy == "" {
		// A single group exists even when nothing matched.
		accs = []Accumulator{{Key: queryir.AllGroupKey}}
	}
	index := make(map[string]int)
	for i := range accs {
		index[accs[i].Key] = i
	}

	for _, r := range matches {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(accs)
			index[k] = i
			accs = append(accs, Accumulator{Key: k})
		}
		a := &accs[i]
		a.Count++
		if r.Succeeded() {
			a.Successes++
		}
		if value != nil {
			if units, ok := Units(value(r)); ok {
				a.AddValue(units)
			}
		}
	}

	groups, total := FinishGroups(accs, agg)
	return groups, total, len(matches), nil
}

// SelectResult builds the ResultSet of a Select from all matching records.
func SelectResult(hash string, matches []mission.Record, limit int) *ResultSet {
	rows := matches
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []mission.Record{}
	}
	return &ResultSet{
		Kind:      ResultRows,
		QueryHash: hash,
		Total:     len(matches),
		Rows:      rows,
	}
}

// Hash returns the content hash of a normalized query.
func Hash(normalized queryir.Query) (string, error) {
	obj, err := queryir.Canonical(normalized)
	if err != nil {
		return "", fmt.Errorf("hash query: %w", err)
	}
	return ir.QueryHash(obj)
}

// KindOf names the query type for metrics and logs.
func KindOf(q queryir.Query) string {
	switch q.(type) {
	case queryir.Select, *queryir.Select:
		return "select"
	case queryir.Aggregate, *queryir.Aggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// ShortHash truncates a hash for log output.
func ShortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
