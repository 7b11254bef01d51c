// Package store mirrors a loaded Dataset into SQLite and answers queries
// there with the same results as the in-memory engine.
//
// The mirror is a single table, missions, with one row per record. seq is
// the record's 1-based position in the source and the primary key.
// Derived fields (country, year) are materialized as columns so every
// registry field is a column of the same name.
//
// # Representation
//
//   - Dates are YYYY-MM-DD text, which orders like the dates themselves
//   - Prices are INTEGER thousandths of a million USD, NULL when missing
//   - Missing optional strings (time, rocket_status) are NULL, never ""
//
// # Determinism
//
//   - Row queries end in ORDER BY seq ASC
//   - Aggregates order groups by MIN(seq), the first-occurrence order the
//     in-memory engine produces, before the shared engine.FinishGroups
//     sorts and limits them
//   - Text comparison uses SQLite's BINARY collation, which orders by
//     bytes like Go's string comparison
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Connections are opened through a private driver that registers the
// casefold SQL function used by contains filters.
package store
