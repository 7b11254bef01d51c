// Package mission defines the space-mission data model: the immutable
// Record, the Outcome enumeration, the read-only Dataset, and the field
// registry that maps field names to typed accessors.
//
// The registry replaces string column lookups. Every query field is
// resolved through LookupField once, before any record is touched, so an
// unknown name fails fast instead of matching nothing.
package mission
