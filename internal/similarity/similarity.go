// Package similarity grades how close two normalized titles are.
package similarity

import (
	"strings"

	"github.com/xrash/smetrics"
)

const (
	// boostThreshold is the Jaro score above which the common prefix bonus applies.
	boostThreshold = 0.7
	// prefixSize caps the rewarded common prefix length.
	prefixSize = 4
)

// Match is the outcome of comparing two normalized strings.
// Contains is reported separately from Score so callers can treat containment
// as a match independent of the graded value.
type Match struct {
	Exact    bool
	Contains bool
	Score    float64
}

// Compare compares a and b. Both are expected to be normalized already.
func Compare(a, b string) Match {
	if a == b {
		return Match{Exact: true, Contains: a != "", Score: 1}
	}

	return Match{
		Contains: contains(a, b),
		Score:    Score(a, b),
	}
}

// Score returns the Jaro-Winkler similarity of a and b in [0, 1].
// Score(a, b) == Score(b, a) for every pair.
func Score(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	if a > b {
		a, b = b, a
	}
	return smetrics.JaroWinkler(a, b, boostThreshold, prefixSize)
}

// contains reports containment of the shorter string in the longer one.
// Empty strings never contain or are contained.
func contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
