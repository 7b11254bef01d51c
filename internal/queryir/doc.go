// Package queryir defines the query intermediate representation answered
// by both query backends: the in-memory engine and the SQLite mirror.
//
// ARCHITECTURE:
//
//	[CLI conditions]  ─┐
//	[CUE/YAML docs]   ─┼→ [Query IR] → engine.Normalize → [in-memory engine]
//	[Go callers]      ─┘                                → [querysql → SQLite]
//
// Query and Predicate are sealed interfaces using the marker method
// pattern. Only types in this package implement them, so backends can
// type-switch exhaustively. Both value and pointer forms are accepted
// everywhere a node is inspected.
//
// QUERIES:
//   - Select: the matching records in dataset order, optionally limited
//   - Aggregate: one statistic per group, optionally sorted and limited
//
// PREDICATES:
//   - Equals, Compare (lt, le, gt, ge), Between (inclusive), In
//   - Contains: case-insensitive substring
//   - IsNull: the field has no value
//   - And, Or, Not
//
// A nil predicate and an empty And both mean "always true". An empty Or
// is "always false".
//
// LOGIC:
//
// Evaluation is two-valued. A comparison against a missing value is false,
// and Not is the exact complement of its operand, so for every predicate P
// the records matching P and those matching Not{P} partition the dataset.
//
// LITERALS:
//
// Literal values are ir.IRValue (no floats). Text literals as typed by a
// user are allowed before normalization; engine.Normalize coerces them to
// the field's kind.
package queryir
