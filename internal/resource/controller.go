package resource

import (
	"context"
	"io"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxConcurrentQueries is the maximum number of queries scoring at once.
	// If 0, queries are not limited.
	MaxConcurrentQueries int64

	// IOLimitBytesPerSec is the maximum throughput for backup streams.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages query concurrency and backup IO.
type Controller struct {
	cfg Config

	querySem *semaphore.Weighted // nil if unlimited
	active   atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxConcurrentQueries > 0 {
		c.querySem = semaphore.NewWeighted(cfg.MaxConcurrentQueries)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// AcquireQuery reserves a query slot, blocking until one is free or ctx is
// done.
func (c *Controller) AcquireQuery(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.querySem != nil {
		if err := c.querySem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.active.Add(1)
	return nil
}

// ReleaseQuery releases a query slot.
func (c *Controller) ReleaseQuery() {
	if c == nil {
		return
	}
	c.active.Add(-1)
	if c.querySem != nil {
		c.querySem.Release(1)
	}
}

// ActiveQueries returns the number of reserved query slots.
func (c *Controller) ActiveQueries() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the bucket are split.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// Writer wraps w so that every write first acquires IO tokens.
// Without an IO limit w is returned unchanged.
func (c *Controller) Writer(ctx context.Context, w io.Writer) io.Writer {
	if c == nil || c.ioLimiter == nil {
		return w
	}
	return &limitedWriter{ctx: ctx, w: w, c: c}
}

type limitedWriter struct {
	ctx context.Context
	w   io.Writer
	c   *Controller
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if err := lw.c.AcquireIO(lw.ctx, len(p)); err != nil {
		return 0, err
	}
	return lw.w.Write(p)
}
