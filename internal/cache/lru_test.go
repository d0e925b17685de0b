package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[uint64, string](100)

	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Set(1, "one", 10)
	v, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "one", v)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, int64(10), c.Size())
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[uint64, string](30)
	c.Set(1, "a", 10)
	c.Set(2, "b", 10)
	c.Set(3, "c", 10)

	// Touch 1 so 2 becomes the eviction candidate.
	_, _ = c.Get(1)
	c.Set(4, "d", 10)

	_, ok := c.Get(2)
	assert.False(t, ok)
	for _, k := range []uint64{1, 3, 4} {
		_, ok := c.Get(k)
		assert.True(t, ok, "key %d", k)
	}
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, int64(30), c.Size())
}

func TestLRU_Update(t *testing.T) {
	c := NewLRU[uint64, string](30)
	c.Set(1, "a", 10)
	c.Set(2, "b", 10)

	c.Set(1, "A", 25)
	v, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "A", v)

	// Growing entry 1 pushed entry 2 out.
	_, ok = c.Get(2)
	assert.False(t, ok)
	assert.Equal(t, int64(25), c.Size())
}

func TestLRU_OversizedEntryNotCached(t *testing.T) {
	c := NewLRU[uint64, string](10)
	c.Set(1, "a", 5)
	c.Set(2, "big", 11)

	_, ok := c.Get(2)
	assert.False(t, ok)
	_, ok = c.Get(1)
	assert.True(t, ok)
}

func TestLRU_Purge(t *testing.T) {
	c := NewLRU[uint64, string](100)
	c.Set(1, "a", 10)
	c.Set(2, "b", 10)
	c.Purge()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.Size())
	_, ok := c.Get(1)
	assert.False(t, ok)
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[string, int](1000)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := fmt.Sprintf("k%d", (g*200+i)%300)
				c.Set(key, i, 5)
				_, _ = c.Get(key)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), int64(1000))
	assert.LessOrEqual(t, c.Len(), 200)
}
