// Package engine is the dataset query core: it normalizes queries and
// answers them against an in-memory mission.Dataset.
//
// ARCHITECTURE:
//
//	queryir.Query → Normalize → Core.Execute → ResultSet
//	                          ↘ store.Store.Execute (SQLite mirror)
//
// Normalize resolves field aliases through the mission field registry and
// coerces literals to the field's kind. Both backends run only normalized
// queries and share FinishGroups for statistics and ordering, so they
// return identical ResultSets.
//
// GUARANTEES:
//
//   - The Dataset is never mutated; every query is a pure function of
//     (Dataset, Query).
//   - Filter with no predicate returns the dataset unchanged.
//   - Filter(P) and Filter(Not{P}) are disjoint and together cover the
//     dataset: comparisons against missing values are false, and Not is
//     the exact complement.
//   - Aggregate groups appear in order of first occurrence unless a sort is
//     requested; sorting is stable.
//   - Group counts of an unfiltered, unlimited count aggregate sum to the
//     dataset length.
//
// ERRORS:
//
// Unknown field names fail with *InvalidFieldError. Values, operators and
// query shapes that cannot be answered fail with *QueryError.
package engine
