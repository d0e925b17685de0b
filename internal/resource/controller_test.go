package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Queries(t *testing.T) {
	c := NewController(Config{MaxConcurrentQueries: 2})

	require.NoError(t, c.AcquireQuery(t.Context()))
	require.NoError(t, c.AcquireQuery(t.Context()))
	assert.Equal(t, int64(2), c.ActiveQueries())

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireQuery(ctx), context.DeadlineExceeded)
	assert.Equal(t, int64(2), c.ActiveQueries())

	c.ReleaseQuery()
	assert.Equal(t, int64(1), c.ActiveQueries())
	require.NoError(t, c.AcquireQuery(t.Context()))
	assert.Equal(t, int64(2), c.ActiveQueries())
}

func TestController_UnlimitedQueries(t *testing.T) {
	c := NewController(Config{})
	for range 100 {
		require.NoError(t, c.AcquireQuery(t.Context()))
	}
	assert.Equal(t, int64(100), c.ActiveQueries())
	for range 100 {
		c.ReleaseQuery()
	}
	assert.Zero(t, c.ActiveQueries())
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1000})

	// The bucket starts full.
	require.NoError(t, c.AcquireIO(t.Context(), 1000))

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireIO(ctx, 1000))
}

func TestController_Writer(t *testing.T) {
	var buf bytes.Buffer

	unlimited := NewController(Config{})
	assert.Same(t, &buf, unlimited.Writer(t.Context(), &buf))

	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	w := c.Writer(t.Context(), &buf)
	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", buf.String())
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireQuery(t.Context()))
	c.ReleaseQuery()
	assert.Zero(t, c.ActiveQueries())
	require.NoError(t, c.AcquireIO(t.Context(), 1<<30))
}
