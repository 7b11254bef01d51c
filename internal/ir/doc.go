// Package ir provides the typed literal values shared by every layer of
// launchdeck: query predicates, the SQL compiler, and content hashing.
//
// This package contains value definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere. Prices are fixed-point IRDecimal values
//     (thousandths), so equality and hashing stay exact.
//   - Dates are civil dates (IRDate), never instants with a zone.
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only
//     serialization used for content-addressed identity.
package ir
