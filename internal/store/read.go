package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/launchdeck/internal/engine"
	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/mission"
	"github.com/roach88/launchdeck/internal/queryir"
	"github.com/roach88/launchdeck/internal/querysql"
)

// Execute normalizes q, compiles it to SQL and answers it from the mirror.
// Results equal engine.Core's for the same dataset and query.
func (s *Store) Execute(ctx context.Context, q queryir.Query) (*engine.ResultSet, error) {
	start := time.Now()
	kind := engine.KindOf(q)

	rs, matched, err := s.execute(ctx, q)
	s.metrics.Observe(BackendSQLite, kind, start, matched, err)
	if err != nil {
		s.logger.Debug("query rejected", "backend", BackendSQLite, "kind", kind, "error", err)
		return nil, err
	}

	s.logger.Debug("query executed",
		"backend", BackendSQLite,
		"kind", kind,
		"hash", engine.ShortHash(rs.QueryHash),
		"matched", matched,
		"total", rs.Total,
	)
	return rs, nil
}

func (s *Store) execute(ctx context.Context, q queryir.Query) (*engine.ResultSet, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	n, err := engine.Normalize(q)
	if err != nil {
		return nil, 0, err
	}
	hash, err := engine.Hash(n)
	if err != nil {
		return nil, 0, err
	}

	query, params, err := s.compiler.Compile(n)
	if err != nil {
		return nil, 0, fmt.Errorf("compile: %w", err)
	}

	switch nq := n.(type) {
	case queryir.Select:
		rows, total, err := s.readRows(ctx, query, params)
		if err != nil {
			return nil, 0, err
		}
		return &engine.ResultSet{
			Kind:      engine.ResultRows,
			QueryHash: hash,
			Total:     total,
			Rows:      rows,
		}, total, nil

	case queryir.Aggregate:
		accs, matched, err := s.readGroups(ctx, nq, query, params)
		if err != nil {
			return nil, 0, err
		}
		groups, total := engine.FinishGroups(accs, nq)
		return &engine.ResultSet{
			Kind:      engine.ResultGroups,
			QueryHash: hash,
			Total:     total,
			Stat:      nq.Stat,
			Groups:    groups,
		}, matched, nil

	default:
		return nil, 0, fmt.Errorf("execute: unexpected normalized query %T", n)
	}
}

// readRows returns the (limited) matching records and the match count
// before the limit.
func (s *Store) readRows(ctx context.Context, query string, params []any) ([]mission.Record, int, error) {
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("query missions: %w", err)
	}
	defer rows.Close()

	records := []mission.Record{}
	total := 0
	for rows.Next() {
		r, n, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, r)
		total = n
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate missions: %w", err)
	}

	return records, total, nil
}

// readGroups returns one accumulator per group in first-occurrence order
// and the number of matching records.
func (s *Store) readGroups(ctx context.Context, agg queryir.Aggregate, query string, params []any) ([]engine.Accumulator, int, error) {
	var groupKind mission.Kind
	if agg.GroupBy != "" {
		f, ok := mission.LookupField(agg.GroupBy)
		if !ok {
			return nil, 0, engine.NewInvalidFieldError(agg.GroupBy)
		}
		groupKind = f.Kind
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var accs []engine.Accumulator
	matched := 0
	for rows.Next() {
		var (
			grp       any
			acc       engine.Accumulator
			lo, hi    sql.NullInt64
			first     sql.NullInt64
			sumValues int64
		)
		err := rows.Scan(&grp, &acc.Count, &acc.NonNull, &sumValues, &lo, &hi, &acc.Successes, &first)
		if err != nil {
			return nil, 0, fmt.Errorf("scan group: %w", err)
		}

		acc.Key = queryir.AllGroupKey
		if agg.GroupBy != "" {
			v, err := querysql.ValueFromColumn(groupKind, grp)
			if err != nil {
				return nil, 0, fmt.Errorf("group %s: %w", agg.GroupBy, err)
			}
			acc.Key = engine.GroupKey(v)
		}
		acc.Sum = sumValues
		acc.Min = lo.Int64
		acc.Max = hi.Int64

		accs = append(accs, acc)
		matched += acc.Count
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate groups: %w", err)
	}

	return accs, matched, nil
}

// scanRecord reads one row of querysql.RowColumns plus the total column.
func scanRecord(rows *sql.Rows) (mission.Record, int, error) {
	var (
		r            mission.Record
		date         string
		timeOfDay    sql.NullString
		rocketStatus sql.NullString
		price        sql.NullInt64
		status       string
		total        int
	)

	err := rows.Scan(
		&r.Seq,
		&r.Company,
		&r.Location,
		&date,
		&timeOfDay,
		&r.Rocket,
		&r.Mission,
		&rocketStatus,
		&price,
		&status,
		&total,
	)
	if err != nil {
		return mission.Record{}, 0, fmt.Errorf("scan mission: %w", err)
	}

	r.Date, err = ir.ParseIRDate(date)
	if err != nil {
		return mission.Record{}, 0, fmt.Errorf("mission %d: %w", r.Seq, err)
	}
	r.Time = timeOfDay.String
	r.RocketStatus = rocketStatus.String
	if price.Valid {
		r.Price = mission.Price{Amount: ir.IRDecimal(price.Int64), Valid: true}
	}
	r.Status = mission.Outcome(status)

	return r, total, nil
}
