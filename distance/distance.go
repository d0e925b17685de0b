package distance

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultCutoff is the default maximum ratio of distance to query length.
const DefaultCutoff = 0.5

// Func computes a non-negative distance between two tokens.
// Zero means identical for Levenshtein; larger means less similar.
type Func func(a, b string) float64

// Levenshtein returns the unit-cost edit distance between a and b, counted
// in runes. It is symmetric: Levenshtein(a, b) == Levenshtein(b, a).
func Levenshtein(a, b string) float64 {
	s, t := []rune(a), []rune(b)
	if len(s) < len(t) {
		s, t = t, s
	}
	if len(t) == 0 {
		return float64(len(s))
	}

	// Two rows over the shorter string.
	prev := make([]int, len(t)+1)
	curr := make([]int, len(t)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s); i++ {
		curr[0] = i
		for j := 1; j <= len(t); j++ {
			cost := 1
			if s[i-1] == t[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return float64(prev[len(t)])
}

// WeightedLevenshtein returns an edit distance where the substitution cost at
// cell (i, j), 1-indexed into a (length n) and b (length m), is scaled by
// n*m - i*j. Insertions and deletions cost 1.
//
// Mismatches close to the start of either string are penalized far more than
// mismatches close to the end; a substitution of the last rune of both
// strings is free. The result is not a metric: distinct strings can be at
// distance zero.
//
// The weight n*m - i*j is unchanged when a and b swap, so this recurrence
// happens to be symmetric. Func does not promise symmetry: Computer always
// passes the candidate token first and the query term second, and other
// distance functions may weigh the two sides differently.
func WeightedLevenshtein(a, b string) float64 {
	s, t := []rune(a), []rune(b)
	n, m := len(s), len(t)
	if n == 0 {
		return float64(m)
	}
	if m == 0 {
		return float64(n)
	}

	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		curr[0] = i
		for j := 1; j <= m; j++ {
			cost := 0
			if s[i-1] != t[j-1] {
				cost = n*m - i*j
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return float64(prev[m])
}

// Metric names a built-in distance function.
type Metric int

const (
	MetricLevenshtein Metric = iota
	MetricWeightedLevenshtein
)

func (m Metric) String() string {
	switch m {
	case MetricLevenshtein:
		return "levenshtein"
	case MetricWeightedLevenshtein:
		return "weighted"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Func returns the distance function for the metric.
func (m Metric) Func() (Func, error) {
	switch m {
	case MetricLevenshtein:
		return Levenshtein, nil
	case MetricWeightedLevenshtein:
		return WeightedLevenshtein, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// ParseMetric resolves a metric by its configuration name.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "levenshtein":
		return MetricLevenshtein, nil
	case "weighted", "weighted-levenshtein":
		return MetricWeightedLevenshtein, nil
	default:
		return 0, fmt.Errorf("unknown distance metric %q", name)
	}
}

// Match is an accepted candidate returned by BestMatch.
type Match struct {
	Distance float64
	// Index is the position of the matching part in the candidate list.
	Index int
	// Length is the length of the matching part in runes.
	Length int
}

// Computer applies a distance function together with a cutoff policy.
// A Computer is immutable and safe for concurrent use.
type Computer struct {
	fn     Func
	cutoff float64
}

// NewComputer returns a Computer. A nil fn selects Levenshtein.
func NewComputer(fn Func, cutoff float64) *Computer {
	if fn == nil {
		fn = Levenshtein
	}
	return &Computer{fn: fn, cutoff: cutoff}
}

// Distance returns the distance between part and query.
func (c *Computer) Distance(part, query string) float64 {
	return c.fn(part, query)
}

// Cutoff returns the acceptance threshold.
func (c *Computer) Cutoff() float64 {
	return c.cutoff
}

// WithCutoff returns a copy of c using the given cutoff.
func (c *Computer) WithCutoff(cutoff float64) *Computer {
	return &Computer{fn: c.fn, cutoff: cutoff}
}

// Accepts reports whether d / len(query) < cutoff. An empty query accepts nothing.
func (c *Computer) Accepts(d float64, query string) bool {
	n := utf8.RuneCountInString(query)
	if n == 0 {
		return false
	}
	return d/float64(n) < c.cutoff
}

// BestMatch scans all parts and returns the accepted part with the smallest
// distance to query. The first part wins ties. ok is false when no part is
// accepted, in which case the Match must not be used.
func (c *Computer) BestMatch(parts []string, query string) (m Match, ok bool) {
	for i, part := range parts {
		d := c.fn(part, query)
		if !c.Accepts(d, query) {
			continue
		}
		if !ok || d < m.Distance {
			m = Match{Distance: d, Index: i, Length: utf8.RuneCountInString(part)}
			ok = true
		}
	}
	return m, ok
}
