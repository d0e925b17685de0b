// Package distance provides string edit distances and the cutoff policy used
// to accept a token as a fuzzy match for a query term.
//
// # Supported Metrics
//
//   - MetricLevenshtein: unit-cost insertion, deletion and substitution (default)
//   - MetricWeightedLevenshtein: substitutions weighted by position, so that
//     mismatches near the start of a word cost more than mismatches near the end
//
// # Usage
//
//	c := distance.NewComputer(distance.Levenshtein, distance.DefaultCutoff)
//	m, ok := c.BestMatch([]string{"acme", "wrench"}, "wrnch")
//	if ok {
//	    fmt.Println(m.Index, m.Distance) // 1 1
//	}
//
// A candidate is accepted only if distance / len(query) < cutoff, with the
// query length counted in runes.
package distance
