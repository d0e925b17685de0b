package fuzzysearch

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAdd is called after each add operation.
	RecordAdd(duration time.Duration, err error)

	// RecordBatchCommit is called after each batch commit.
	// count is the number of records the batch held.
	RecordBatchCommit(count int, duration time.Duration, err error)

	// RecordSearch is called after each find operation.
	RecordSearch(results int, duration time.Duration, err error)

	// RecordQuery is called after each query language request.
	RecordQuery(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(time.Duration, error)              {}
func (NoopMetricsCollector) RecordBatchCommit(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordQuery(time.Duration, error)            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	AddCount         atomic.Int64
	AddErrors        atomic.Int64
	AddTotalNanos    atomic.Int64
	BatchCount       atomic.Int64
	BatchRecords     atomic.Int64
	BatchErrors      atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchResults    atomic.Int64
	SearchTotalNanos atomic.Int64
	QueryCount       atomic.Int64
	QueryErrors      atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordBatchCommit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchCommit(count int, duration time.Duration, err error) {
	b.BatchCount.Add(1)
	if err != nil {
		b.BatchErrors.Add(1)
		return
	}
	b.BatchRecords.Add(int64(count))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchResults.Add(int64(results))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(duration time.Duration, err error) {
	b.QueryCount.Add(1)
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:       b.AddCount.Load(),
		AddErrors:      b.AddErrors.Load(),
		AddAvgNanos:    avg(b.AddTotalNanos.Load(), b.AddCount.Load()),
		BatchCount:     b.BatchCount.Load(),
		BatchRecords:   b.BatchRecords.Load(),
		BatchErrors:    b.BatchErrors.Load(),
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchResults:  b.SearchResults.Load(),
		SearchAvgNanos: avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		QueryCount:     b.QueryCount.Load(),
		QueryErrors:    b.QueryErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount       int64
	AddErrors      int64
	AddAvgNanos    int64
	BatchCount     int64
	BatchRecords   int64
	BatchErrors    int64
	SearchCount    int64
	SearchErrors   int64
	SearchResults  int64
	SearchAvgNanos int64
	QueryCount     int64
	QueryErrors    int64
}
