package model

import "fmt"

// Canonical yardage bins: 2-yard buckets from -10 up to 98 yards.
const (
	binLow   = -10
	binHigh  = 98
	binWidth = 2
)

// canonicalBins is built once; callers get copies via Bins.
var canonicalBins = buildBins()

var binIndex = func() map[string]int {
	m := make(map[string]int, len(canonicalBins))
	for i, b := range canonicalBins {
		m[b] = i
	}
	return m
}()

func buildBins() []string {
	out := make([]string, 0, (binHigh-binLow)/binWidth)
	for lo := binLow; lo < binHigh; lo += binWidth {
		out = append(out, BinLabel(lo, lo+binWidth))
	}
	return out
}

// BinLabel formats a yardage range the way the source tables do, e.g. "(0 | 2]".
func BinLabel(lo, hi int) string {
	return fmt.Sprintf("(%d | %d]", lo, hi)
}

// Bins returns the 54 canonical stat bins in display order.
func Bins() []string {
	out := make([]string, len(canonicalBins))
	copy(out, canonicalBins)
	return out
}

// BinCount is the number of canonical bins.
func BinCount() int { return len(canonicalBins) }

// BinIndex returns the position of label in the canonical order.
func BinIndex(label string) (int, bool) {
	i, ok := binIndex[label]
	return i, ok
}

// IsCanonicalBin reports whether label is one of the canonical bins.
func IsCanonicalBin(label string) bool {
	_, ok := binIndex[label]
	return ok
}
