package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"log/slog"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/launchdeck/internal/engine"
	"github.com/roach88/launchdeck/internal/queryir"
	"github.com/roach88/launchdeck/internal/querysql"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added lookup indexes on company, year and status
const currentSchemaVersion = 1

// BackendSQLite is the backend label of Store in metrics and logs.
const BackendSQLite = "sqlite"

// driverName is a go-sqlite3 driver whose connections carry the casefold
// function. Registered once per process.
const driverName = "sqlite3_launchdeck"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(querysql.FoldFunc, casefold, true)
		},
	})
}

// casefold folds text exactly like the in-memory contains matcher.
// NULL stays NULL; the driver hands it over as a nil byte slice.
func casefold(v any) any {
	switch s := v.(type) {
	case string:
		return queryir.Fold(s)
	case []byte:
		if s == nil {
			return nil
		}
		return queryir.Fold(string(s))
	default:
		return v
	}
}

// Store is a SQLite mirror of one Dataset.
// It implements engine.Backend.
type Store struct {
	db       *sql.DB
	compiler *querysql.SQLCompiler
	metrics  *engine.Metrics
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics records every Execute on m under the sqlite backend label.
func WithMetrics(m *engine.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithLogger sets the logger for import and per-query debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
// Use ":memory:" for a private in-memory mirror.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and an in-memory
	// database exists per connection, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{
		db:       db,
		compiler: querysql.NewSQLCompiler(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds indexes for the common group-by and filter columns.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_missions_company ON missions(company);
		CREATE INDEX IF NOT EXISTS idx_missions_year ON missions(year);
		CREATE INDEX IF NOT EXISTS idx_missions_status ON missions(status);
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
