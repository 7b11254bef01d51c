package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a future algorithm change.
const (
	DomainQuery   = "launchdeck/query/v1"
	DomainDataset = "launchdeck/dataset/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// QueryHash computes the content-addressed ID of a query given its
// canonical object form. Two queries that differ only in field aliases
// hash the same once normalized.
func QueryHash(canonical IRObject) (string, error) {
	data, err := MarshalCanonical(canonical)
	if err != nil {
		return "", fmt.Errorf("QueryHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainQuery, data), nil
}

// DatasetFingerprint identifies the raw bytes a dataset was loaded from.
func DatasetFingerprint(raw []byte) string {
	return hashWithDomain(DomainDataset, raw)
}

// MustQueryHash is like QueryHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustQueryHash(canonical IRObject) string {
	id, err := QueryHash(canonical)
	if err != nil {
		panic(err)
	}
	return id
}
