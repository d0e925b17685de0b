package fuzzysearch

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PixelSnake/FuzzySearch/internal/resource"
	"github.com/PixelSnake/FuzzySearch/internal/store"
)

// Index is a fuzzy full-text index over records of type T backed by an
// append-only store.
//
// Index has a single writer: Add, StartBatch, CommitBatch and Flush must not
// run concurrently with each other or with a search. Searches may run
// concurrently with each other.
type Index[T any] struct {
	schema  Schema[T]
	names   []string // fuzzy field names in stored order
	opts    options
	logger  *Logger
	metrics MetricsCollector
	store   *store.Store
	rc      *resource.Controller
	closed  atomic.Bool
}

// Open validates schema and opens (or creates) the data log at path. The
// offset index is kept next to it at path+".idx".
func Open[T any](path string, schema Schema[T], optFns ...Option) (*Index[T], error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(optFns)
	if err := checkCutoff(o.cutoff); err != nil {
		return nil, err
	}
	names := schema.FuzzyFields()

	st, err := store.Open(path, len(names), store.Options{
		FS:         o.fs,
		Format:     o.format,
		Durability: o.durability,
		Logger:     o.logger.With("component", "store"),
		CacheBytes: o.recordCacheBytes,
	})
	ctx := context.Background()
	if err != nil {
		err = translateError(err, len(names))
		o.logger.LogRecovery(ctx, path, 0, err)
		return nil, err
	}
	o.logger.LogRecovery(ctx, path, st.Len(), nil)

	return &Index[T]{
		schema:  schema,
		names:   names,
		opts:    o,
		logger:  o.logger,
		metrics: o.metricsCollector,
		store:   st,
		rc: resource.NewController(resource.Config{
			MaxConcurrentQueries: o.maxConcurrentQueries,
			IOLimitBytesPerSec:   o.ioLimit,
		}),
	}, nil
}

// Add stores item. Outside a batch the record is durable when Add returns.
func (ix *Index[T]) Add(ctx context.Context, item T) error {
	if ix.closed.Load() {
		return ErrClosed
	}
	start := time.Now()
	rec := ix.schema.record(item)
	err := translateError(ix.store.Add(rec), len(ix.names))

	ix.metrics.RecordAdd(time.Since(start), err)
	ix.logger.LogAdd(ctx, rec.ID, err)
	return err
}

// StartBatch buffers subsequent adds until CommitBatch.
func (ix *Index[T]) StartBatch() {
	ix.store.StartBatch()
}

// CommitBatch writes all buffered records and ends the batch.
func (ix *Index[T]) CommitBatch(ctx context.Context) error {
	if ix.closed.Load() {
		return ErrClosed
	}
	start := time.Now()
	count := ix.store.Pending()
	err := translateError(ix.store.CommitBatch(), len(ix.names))

	ix.metrics.RecordBatchCommit(count, time.Since(start), err)
	ix.logger.LogBatchCommit(ctx, count, err)
	return err
}

// InBatch reports whether adds are currently buffered.
func (ix *Index[T]) InBatch() bool {
	return ix.store.InBatch()
}

// Flush writes buffered records without leaving batch mode.
func (ix *Index[T]) Flush() error {
	if ix.closed.Load() {
		return ErrClosed
	}
	return translateError(ix.store.Flush(), len(ix.names))
}

// Get returns the stored tokens of the record with the given id.
func (ix *Index[T]) Get(id uint64) (Document, error) {
	if ix.closed.Load() {
		return Document{}, ErrClosed
	}
	rec, err := ix.store.Get(id)
	if err != nil {
		return Document{}, translateError(err, len(ix.names))
	}
	return ix.document(rec), nil
}

func (ix *Index[T]) document(rec store.Record) Document {
	doc := Document{ID: rec.ID, Tokens: make(map[string][]string, len(ix.names))}
	for i, name := range ix.names {
		doc.Tokens[name] = rec.Fields[i]
	}
	return doc
}

// fieldIndex resolves a fuzzy field name, ignoring case.
func (ix *Index[T]) fieldIndex(name string) (int, bool) {
	for i, n := range ix.names {
		if strings.EqualFold(n, name) {
			return i, true
		}
	}
	return -1, false
}

// Contains reports whether a record with the given id is stored or staged
// in the current batch.
func (ix *Index[T]) Contains(id uint64) bool {
	return ix.store.Contains(id)
}

// Len returns the number of flushed records.
func (ix *Index[T]) Len() int {
	return ix.store.Len()
}

// Fields returns the fuzzy field names in schema order.
func (ix *Index[T]) Fields() []string {
	return append([]string(nil), ix.names...)
}

// Stats describes the state of an index.
type Stats struct {
	Records    int
	Pending    int
	DataBytes  int64
	InBatch    bool
	Fields     []string
	Format     Format
	Durability Durability

	CacheHits   int64
	CacheMisses int64

	// ActiveQueries is the number of searches holding a query slot.
	ActiveQueries int64
}

func (s Stats) String() string {
	return fmt.Sprintf("records=%d pending=%d bytes=%d batch=%t fields=%s format=%s durability=%s",
		s.Records, s.Pending, s.DataBytes, s.InBatch, strings.Join(s.Fields, ","), s.Format, s.Durability)
}

// Stats returns a snapshot of the index state.
func (ix *Index[T]) Stats() Stats {
	hits, misses := ix.store.CacheStats()
	return Stats{
		Records:    ix.store.Len(),
		Pending:    ix.store.Pending(),
		DataBytes:  ix.store.Size(),
		InBatch:    ix.store.InBatch(),
		Fields:     ix.Fields(),
		Format:     ix.opts.format,
		Durability: ix.opts.durability,

		CacheHits:   hits,
		CacheMisses: misses,

		ActiveQueries: ix.rc.ActiveQueries(),
	}
}

// Close flushes buffered records and releases the store.
func (ix *Index[T]) Close() error {
	if ix == nil {
		return nil
	}
	if ix.closed.Swap(true) {
		return ErrClosed
	}
	return translateError(ix.store.Close(), len(ix.names))
}
