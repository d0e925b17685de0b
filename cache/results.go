package cache

import (
	"cmp"
	"iter"
	"slices"
	"sync"
)

type entry[V any] struct {
	v  V
	ok bool
}

// Results memoizes values per key and keeps keys grouped by value in
// ascending value order. Keys sharing a value keep the order in which their
// Compute calls finished.
//
// A computation may also report that a key has no value (a miss). Misses are
// memoized like values but never appear in Ordered.
//
// Compute is safe for concurrent use. The key map and the value index are
// guarded by separate locks; the computation runs without holding either.
type Results[K comparable, V cmp.Ordered] struct {
	entriesMu sync.RWMutex
	entries   map[K]entry[V]

	indexMu sync.Mutex
	order   []V       // distinct values, ascending
	buckets map[V][]K // value -> keys in insertion order
	hits    int
}

// NewResults creates an empty result cache.
func NewResults[K comparable, V cmp.Ordered]() *Results[K, V] {
	return &Results[K, V]{
		entries: make(map[K]entry[V]),
		buckets: make(map[V][]K),
	}
}

// Compute returns the cached value for key, or evaluates f(key), caches it
// and indexes it. f is never invoked for a key that already has a value.
func (r *Results[K, V]) Compute(key K, f func(K) V) V {
	v, _ := r.ComputeOK(key, func(k K) (V, bool) {
		return f(k), true
	})
	return v
}

// ComputeOK is like Compute for functions that may not produce a value.
// When f reports ok == false the miss is cached and the key is left out of
// the value index.
func (r *Results[K, V]) ComputeOK(key K, f func(K) (V, bool)) (V, bool) {
	if v, ok, found := r.lookup(key); found {
		return v, ok
	}

	v, ok := f(key)

	r.entriesMu.Lock()
	if existing, found := r.entries[key]; found {
		// Lost a race on the same key; the first stored outcome stands.
		r.entriesMu.Unlock()
		return existing.v, existing.ok
	}
	r.entries[key] = entry[V]{v: v, ok: ok}
	r.entriesMu.Unlock()

	if ok {
		r.index(key, v)
	}
	return v, ok
}

func (r *Results[K, V]) lookup(key K) (v V, ok, found bool) {
	r.entriesMu.RLock()
	defer r.entriesMu.RUnlock()
	e, found := r.entries[key]
	return e.v, e.ok, found
}

func (r *Results[K, V]) index(key K, v V) {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	keys, ok := r.buckets[v]
	if !ok {
		i, _ := slices.BinarySearch(r.order, v)
		r.order = slices.Insert(r.order, i, v)
	}
	r.buckets[v] = append(keys, key)
	r.hits++
}

// Get returns the cached value for key. ok is false for unknown keys and
// for cached misses.
func (r *Results[K, V]) Get(key K) (V, bool) {
	v, ok, _ := r.lookup(key)
	return v, ok
}

// Len returns the number of computed keys, misses included.
func (r *Results[K, V]) Len() int {
	r.entriesMu.RLock()
	defer r.entriesMu.RUnlock()
	return len(r.entries)
}

// Hits returns the number of keys that produced a value.
func (r *Results[K, V]) Hits() int {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()
	return r.hits
}

// Ordered yields every (key, value) pair in ascending value order, with
// insertion order among equal values. Misses are skipped. It must only be
// called after all Compute calls for the batch have returned.
func (r *Results[K, V]) Ordered() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, v := range r.order {
			for _, k := range r.buckets[v] {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}
