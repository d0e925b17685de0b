// Package cache provides a cost-bounded LRU cache.
//
// The store keeps recently read records in an LRU so repeated lookups of
// the same ids skip the positioned read and decode. Each entry carries a
// cost, normally its encoded size in bytes, and the cache evicts from the
// cold end until the total cost fits the capacity.
package cache
