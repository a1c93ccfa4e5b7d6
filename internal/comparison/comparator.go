// Package comparison implements the document cross-check: a noise-tolerant
// string comparator and the engine that runs it field-by-field over sanitized
// extracted and user-submitted data.
package comparison

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultMatchThreshold is the normalized-similarity cutoff separating "close
// enough" from "different". Similarity is 1 - editDistance/maxRuneLen, so two
// strings match when at most ~15% of the longer one needs editing. The value
// is configuration, not business logic; tests swap it through NewComparator.
const DefaultMatchThreshold = 0.85

// Comparator judges equivalence of two normalized strings.
type Comparator interface {
	Match(a, b string) bool
}

// LevenshteinComparator tolerates OCR noise (single-character misreads,
// dropped separators) by comparing edit distance against a ratio threshold.
// Match is symmetric because edit distance is.
type LevenshteinComparator struct {
	threshold float64
}

// NewComparator builds a comparator with the given similarity threshold.
// Values outside (0,1] fall back to DefaultMatchThreshold.
func NewComparator(threshold float64) *LevenshteinComparator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultMatchThreshold
	}
	return &LevenshteinComparator{threshold: threshold}
}

// Match reports whether a and b are equivalent under the threshold.
// Empty-vs-empty matches; empty-vs-nonempty never does, so a field the
// extractor failed to read cannot silently pass against a submitted value.
func (c *LevenshteinComparator) Match(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	return c.Similarity(a, b) >= c.threshold
}

// Similarity returns the normalized similarity in [0,1].
func (c *LevenshteinComparator) Similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
