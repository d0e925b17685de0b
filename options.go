package fuzzysearch

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"github.com/PixelSnake/FuzzySearch/distance"
	"github.com/PixelSnake/FuzzySearch/internal/fs"
	"github.com/PixelSnake/FuzzySearch/internal/store"
)

// Durability controls whether the data log is fsynced on every flush.
type Durability = store.Durability

const (
	// DurabilitySync fsyncs the data log after every flush.
	DurabilitySync = store.DurabilitySync
	// DurabilityAsync relies on the OS page cache.
	DurabilityAsync = store.DurabilityAsync
)

// Format selects the data log layout.
type Format = store.Format

const (
	// FormatPlain writes unframed records.
	FormatPlain = store.FormatPlain
	// FormatFramed writes a header and checksummed, length-prefixed records.
	FormatFramed = store.FormatFramed
)

type options struct {
	logger               *Logger
	metricsCollector     MetricsCollector
	cutoff               float64
	distance             distance.Func
	parallelism          int
	durability           Durability
	format               Format
	fs                   fs.FileSystem
	maxConcurrentQueries int64
	ioLimit              int64
	recordCacheBytes     int64
}

// Option configures Open.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := fuzzysearch.NewJSONLogger(slog.LevelInfo)
//	ix, _ := fuzzysearch.Open("catalog.log", schema, fuzzysearch.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &fuzzysearch.BasicMetricsCollector{}
//	ix, _ := fuzzysearch.Open("catalog.log", schema, fuzzysearch.WithMetricsCollector(metrics))
//	// ... use ix ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCutoff sets the default acceptance threshold: a token matches a term
// when distance / len(term) < cutoff. Defaults to distance.DefaultCutoff.
// Open fails with ErrInvalidCutoff for a negative, NaN or infinite cutoff.
func WithCutoff(cutoff float64) Option {
	return func(o *options) {
		o.cutoff = cutoff
	}
}

// WithDistance sets the default token distance function.
// If nil is passed, distance.Levenshtein is used.
func WithDistance(fn distance.Func) Option {
	return func(o *options) {
		if fn == nil {
			fn = distance.Levenshtein
		}
		o.distance = fn
	}
}

// WithParallelism sets the number of goroutines scoring records during a
// search. Values below 1 select runtime.GOMAXPROCS(0).
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithDurability configures data log fsync behaviour.
func WithDurability(d Durability) Option {
	return func(o *options) {
		o.durability = d
	}
}

// WithFormat selects the data log layout. The format of an existing log
// must match.
func WithFormat(f Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithFileSystem replaces the file system used for the data log and index.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithMaxConcurrentQueries caps the number of searches scoring at once.
// Further searches wait for a free slot. 0 means unlimited.
func WithMaxConcurrentQueries(n int64) Option {
	return func(o *options) {
		o.maxConcurrentQueries = n
	}
}

// WithIOLimit rate-limits backup exports to bytesPerSec. 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithRecordCache keeps recently fetched records in an LRU bounded by their
// encoded size in bytes. Get and query projections read through it.
// 0 (the default) disables the cache.
func WithRecordCache(bytes int64) Option {
	return func(o *options) {
		o.recordCacheBytes = bytes
	}
}

func checkCutoff(cutoff float64) error {
	if math.IsNaN(cutoff) || math.IsInf(cutoff, 0) || cutoff < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidCutoff, cutoff)
	}
	return nil
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		cutoff:           distance.DefaultCutoff,
		distance:         distance.Levenshtein,
		durability:       DurabilitySync,
		format:           FormatPlain,
		fs:               fs.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.parallelism < 1 {
		o.parallelism = runtime.GOMAXPROCS(0)
	}
	return o
}

type searchOptions struct {
	cutoff   float64
	distance distance.Func
}

// SearchOption configures a single Find call.
type SearchOption func(*searchOptions)

// SearchWithCutoff overrides the acceptance threshold for one search. The
// search fails with ErrInvalidCutoff for a negative, NaN or infinite cutoff.
func SearchWithCutoff(cutoff float64) SearchOption {
	return func(o *searchOptions) {
		o.cutoff = cutoff
	}
}

// SearchWithDistance overrides the token distance function for one search.
func SearchWithDistance(fn distance.Func) SearchOption {
	return func(o *searchOptions) {
		if fn != nil {
			o.distance = fn
		}
	}
}
