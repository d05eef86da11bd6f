package table

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold normalises s for case-insensitive comparison. Composed and decomposed
// spellings of the same accented letter fold to the same string; accents are
// kept.
func Fold(s string) string {
	return norm.NFC.String(cases.Fold().String(s))
}

// Contains reports whether s contains sub after folding both.
func Contains(s, sub string) bool {
	return strings.Contains(Fold(s), Fold(sub))
}

// EqualFold reports whether a and b are equal after folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}
