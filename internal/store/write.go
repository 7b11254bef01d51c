package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/launchdeck/internal/mission"
)

// Info describes the dataset currently mirrored in the store.
type Info struct {
	Source      string
	Fingerprint string
	Records     int
}

// Import replaces the mirrored data with ds in one transaction.
// A failed import leaves the previous contents untouched.
func (s *Store) Import(ctx context.Context, ds *mission.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM missions"); err != nil {
		return fmt.Errorf("import: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO missions
		(seq, company, location, country, date, year, time, rocket, mission, rocket_status, price, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("import: prepare: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		_, err := stmt.ExecContext(ctx,
			r.Seq,
			r.Company,
			r.Location,
			r.Country(),
			r.Date.String(),
			r.Year(),
			nullString(r.Time),
			r.Rocket,
			r.Mission,
			nullString(r.RocketStatus),
			nullPrice(r.Price),
			string(r.Status),
		)
		if err != nil {
			return fmt.Errorf("import: record %d: %w", r.Seq, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO datasets (id, source, fingerprint, records)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			fingerprint = excluded.fingerprint,
			records = excluded.records
	`, ds.Source(), ds.Fingerprint(), ds.Len())
	if err != nil {
		return fmt.Errorf("import: provenance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import: commit: %w", err)
	}

	s.logger.Debug("dataset mirrored",
		"source", ds.Source(),
		"records", ds.Len(),
	)
	return nil
}

// Sync imports ds unless the store already mirrors data with the same
// fingerprint. It reports whether an import happened.
func (s *Store) Sync(ctx context.Context, ds *mission.Dataset) (bool, error) {
	info, ok, err := s.Info(ctx)
	if err != nil {
		return false, err
	}
	if ok && ds.Fingerprint() != "" && info.Fingerprint == ds.Fingerprint() && info.Records == ds.Len() {
		s.logger.Debug("mirror up to date", "source", ds.Source())
		return false, nil
	}
	if err := s.Import(ctx, ds); err != nil {
		return false, err
	}
	return true, nil
}

// Info returns the provenance of the mirrored dataset.
// ok is false when nothing has been imported yet.
func (s *Store) Info(ctx context.Context) (Info, bool, error) {
	var info Info
	err := s.db.QueryRowContext(ctx,
		"SELECT source, fingerprint, records FROM datasets WHERE id = 1",
	).Scan(&info.Source, &info.Fingerprint, &info.Records)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, false, nil
	}
	if err != nil {
		return Info{}, false, fmt.Errorf("read dataset info: %w", err)
	}
	return info, true, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullPrice(p mission.Price) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(p.Amount), Valid: p.Valid}
}
