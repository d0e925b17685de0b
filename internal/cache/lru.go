package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRU is a least-recently-used cache bounded by the total cost of its
// entries. It is safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[K]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[K comparable, V any] struct {
	key   K
	value V
	cost  int64
}

// NewLRU creates a cache holding entries up to a total cost of capacity.
func NewLRU[K comparable, V any](capacity int64) *LRU[K, V] {
	return &LRU[K, V]{
		capacity:  capacity,
		items:     make(map[K]*list.Element),
		evictList: list.New(),
	}
}

// Get returns the cached value for key and marks it recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set caches value under key. Entries costing more than the whole capacity
// are not cached.
func (c *LRU[K, V]) Set(key K, value V, cost int64) {
	if cost < 0 {
		cost = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry[K, V])
		c.size += cost - ent.cost
		ent.value = value
		ent.cost = cost
		c.evictList.MoveToFront(el)
		c.evict()
		return
	}

	if cost > c.capacity {
		return
	}
	for c.size+cost > c.capacity {
		el := c.evictList.Back()
		if el == nil {
			break
		}
		c.removeElement(el)
	}

	el := c.evictList.PushFront(&entry[K, V]{key: key, value: value, cost: cost})
	c.items[key] = el
	c.size += cost
}

// Purge removes every entry.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*list.Element)
	c.evictList.Init()
	c.size = 0
}

func (c *LRU[K, V]) evict() {
	for c.size > c.capacity {
		el := c.evictList.Back()
		if el == nil {
			break
		}
		c.removeElement(el)
	}
}

func (c *LRU[K, V]) removeElement(el *list.Element) {
	c.evictList.Remove(el)
	ent := el.Value.(*entry[K, V])
	delete(c.items, ent.key)
	c.size -= ent.cost
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Size returns the total cost of the cached entries.
func (c *LRU[K, V]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns the lookup hit and miss counts.
func (c *LRU[K, V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
