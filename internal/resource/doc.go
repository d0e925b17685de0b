// Package resource limits how much work the index takes on at once.
//
// A Controller governs two resources:
//
//   - Query slots: a weighted semaphore caps the number of Find calls that
//     score records concurrently.
//   - IO: a token bucket rate-limits backup streams so an export does not
//     starve foreground queries of disk bandwidth.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentQueries: 4,
//	    IOLimitBytesPerSec:   32 << 20,
//	})
//
//	if err := rc.AcquireQuery(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseQuery()
//
//	w := rc.Writer(ctx, file)
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
