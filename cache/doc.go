// Package cache provides the per-query result cache used by the search index.
//
// [Results] memoizes a pure scoring function per key and exposes every
// computed value in ascending order. It is created fresh for each search:
//
//	scores := cache.NewResults[uint64, float64]()
//	// many workers, disjoint keys
//	scores.Compute(id, score)
//	// after all workers finished
//	for id, s := range scores.Ordered() {
//	    ...
//	}
package cache
