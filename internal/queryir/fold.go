package queryir

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the case-folded NFC form of s. Contains compares folded
// text on both backends, so "FALCON" finds "Falcon 9" and "Ü" finds "ü".
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
