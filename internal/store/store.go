// Package store implements the append-only record store: a data log of
// encoded records plus a sidecar index mapping record ids to log offsets.
package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/PixelSnake/FuzzySearch/internal/cache"
	"github.com/PixelSnake/FuzzySearch/internal/fs"
	"github.com/PixelSnake/FuzzySearch/internal/mmap"
)

// Durability controls whether the data log is fsynced on every flush.
type Durability int

const (
	// DurabilitySync calls fsync on the data log after every flush.
	DurabilitySync Durability = iota
	// DurabilityAsync relies on the OS page cache.
	DurabilityAsync
)

func (d Durability) String() string {
	switch d {
	case DurabilitySync:
		return "sync"
	case DurabilityAsync:
		return "async"
	default:
		return fmt.Sprintf("Unknown(%d)", d)
	}
}

// Options configures a Store.
type Options struct {
	FS         fs.FileSystem
	Format     Format
	Durability Durability
	Logger     *slog.Logger

	// CacheBytes bounds the LRU of records read by Get, measured in encoded
	// bytes. Zero disables the cache.
	CacheBytes int64
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		FS:         fs.Default,
		Format:     FormatPlain,
		Durability: DurabilitySync,
	}
}

// Store is an append-only record store.
//
// A Store has a single writer. Its methods are safe to call from multiple
// goroutines, but Add and Flush must not run while another goroutine is
// iterating a Scan.
type Store struct {
	mu         sync.Mutex
	fs         fs.FileSystem
	file       fs.File
	path       string
	indexPath  string
	fieldCount int
	opts       Options
	logger     *slog.Logger

	size    int64 // bytes of the data log covered by flushed records
	offsets map[uint64]int64
	ids     *roaring64.Bitmap // flushed and pending ids
	pending []Record
	records *cache.LRU[uint64, Record]
	buf     []byte
	batch   bool
	closed  bool
}

// Open opens or creates the data log at path and its sidecar index at
// path+IndexSuffix. Records found in the log after the last indexed record
// are re-indexed; a torn trailing record is truncated away.
func Open(path string, fieldCount int, opts Options) (*Store, error) {
	if fieldCount < 1 {
		return nil, fmt.Errorf("%w: need at least one field, got %d", ErrFieldCount, fieldCount)
	}
	if opts.FS == nil {
		opts.FS = fs.Default
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	f, err := opts.FS.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: open data log: %w", err)
	}

	s := &Store{
		fs:         opts.FS,
		file:       f,
		path:       path,
		indexPath:  path + IndexSuffix,
		fieldCount: fieldCount,
		opts:       opts,
		logger:     logger,
		ids:        roaring64.New(),
	}
	if opts.CacheBytes > 0 {
		s.records = cache.NewLRU[uint64, Record](opts.CacheBytes)
	}
	if err := s.load(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	stat, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("store: stat data log: %w", err)
	}
	s.size = stat.Size()

	if err := s.checkFormat(); err != nil {
		return err
	}

	offsets, err := readIndex(s.fs, s.indexPath)
	if err != nil {
		if !errors.Is(err, ErrCorrupt) {
			return fmt.Errorf("store: read index: %w", err)
		}
		s.logger.Warn("rebuilding offset index", "path", s.indexPath, "error", err)
		offsets = make(map[uint64]int64)
	}
	s.offsets = offsets

	tail, ok := s.indexedEnd()
	if !ok {
		s.logger.Warn("offset index does not match data log, rebuilding", "path", s.indexPath)
		clear(s.offsets)
		tail = s.opts.Format.headerSize()
	}
	for id := range s.offsets {
		s.ids.Add(id)
	}

	recovered, err := s.recoverTail(tail, !ok)
	if err != nil {
		return err
	}
	if recovered > 0 || !ok {
		return fs.WriteFileAtomic(s.fs, s.indexPath, encodeIndex(s.offsets), 0o644)
	}
	return nil
}

func (s *Store) checkFormat() error {
	hdrSize := int64(logHeaderSize)
	hdr := make([]byte, min(hdrSize, s.size))
	if _, err := s.file.ReadAt(hdr, 0); err != nil && err != io.EOF {
		return fmt.Errorf("store: read header: %w", err)
	}
	framed := bytes.HasPrefix(hdr, []byte(logMagic))

	switch s.opts.Format {
	case FormatFramed:
		if s.size == 0 {
			if _, err := s.file.Write(appendHeader(nil, s.fieldCount)); err != nil {
				return fmt.Errorf("store: write header: %w", err)
			}
			if err := s.file.Sync(); err != nil {
				return fmt.Errorf("store: sync header: %w", err)
			}
			s.size = hdrSize
			return nil
		}
		return checkHeader(hdr, s.fieldCount)
	default:
		if framed {
			return fmt.Errorf("%w: %s is a framed log", ErrIncompatibleFormat, s.path)
		}
		return nil
	}
}

// indexedEnd returns the end offset of the last indexed record. It reports
// false when an indexed offset does not point at a decodable record.
func (s *Store) indexedEnd() (int64, bool) {
	start := s.opts.Format.headerSize()
	last, ok := lastOffset(s.offsets)
	if !ok {
		return start, true
	}
	for _, off := range s.offsets {
		if off < start || off >= s.size {
			return 0, false
		}
	}
	rec, n, err := s.readAt(last)
	if err != nil || s.offsets[rec.ID] != last {
		return 0, false
	}
	return last + n, true
}

// recoverTail indexes the records following tail and truncates a torn
// trailing record.
func (s *Store) recoverTail(tail int64, rebuild bool) (int, error) {
	r := bufio.NewReader(io.NewSectionReader(s.file, tail, s.size-tail))
	minSize := int64(s.opts.Format.minRecordSize())

	pos, recovered := tail, 0
	var tornErr error
	for s.size-pos >= minSize {
		rec, n, err := decodeRecord(r, s.opts.Format, s.fieldCount)
		if err != nil {
			tornErr = err
			break
		}
		if s.ids.Contains(rec.ID) {
			return 0, fmt.Errorf("%w: id %d appears twice in %s", ErrCorrupt, rec.ID, s.path)
		}
		s.offsets[rec.ID] = pos
		s.ids.Add(rec.ID)
		pos += n
		recovered++
	}

	if recovered > 0 && !rebuild {
		s.logger.Info("re-indexed unflushed records", "path", s.path, "records", recovered)
	}
	if pos < s.size {
		s.logger.Warn("truncating torn data log tail", "path", s.path, "offset", pos, "bytes", s.size-pos, "error", tornErr)
		if err := s.fs.Truncate(s.path, pos); err != nil {
			return 0, fmt.Errorf("store: truncate torn tail: %w", err)
		}
		s.size = pos
	}
	return recovered, nil
}

// Add stages rec for writing. Outside batch mode it is flushed immediately.
func (s *Store) Add(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if len(rec.Fields) != s.fieldCount {
		return &FieldCountError{Expected: s.fieldCount, Actual: len(rec.Fields), Source: fmt.Sprintf("record %d", rec.ID)}
	}
	if s.ids.Contains(rec.ID) {
		return fmt.Errorf("%w: %d", ErrDuplicateID, rec.ID)
	}
	if err := checkLimits(rec); err != nil {
		return fmt.Errorf("record %d: %w", rec.ID, err)
	}

	s.ids.Add(rec.ID)
	s.pending = append(s.pending, rec)
	if s.batch {
		return nil
	}

	if err := s.flushLocked(); err != nil {
		// The record never reached the log: unstage it so the caller can retry.
		if n := len(s.pending); n > 0 {
			s.pending = s.pending[:n-1]
			s.ids.Remove(rec.ID)
		}
		return err
	}
	return nil
}

// StartBatch enters batch mode: Add only stages records until CommitBatch.
func (s *Store) StartBatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = true
}

// CommitBatch flushes the staged records and leaves batch mode. On failure
// nothing reaches the log or the index: the records stay staged and batch
// mode is kept, so the caller can retry or AbortBatch.
func (s *Store) CommitBatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.flushLocked(); err != nil {
		return err
	}
	s.batch = false
	return nil
}

// AbortBatch discards the staged records and leaves batch mode.
func (s *Store) AbortBatch() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.pending)
	for _, rec := range s.pending {
		s.ids.Remove(rec.ID)
	}
	s.clearPending()
	s.batch = false
	return n
}

// InBatch reports whether the store is in batch mode.
func (s *Store) InBatch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch
}

// Flush writes all staged records to the data log and rewrites the sidecar
// index.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if len(s.pending) == 0 {
		return nil
	}

	buf := s.buf[:0]
	starts := make([]int64, len(s.pending))
	for i, rec := range s.pending {
		starts[i] = s.size + int64(len(buf))
		buf = appendRecord(buf, s.opts.Format, rec)
	}
	s.buf = buf

	if err := s.writeLog(buf); err != nil {
		// Drop whatever part of the batch reached the file.
		if terr := s.fs.Truncate(s.path, s.size); terr != nil {
			s.logger.Error("failed to truncate partial write", "path", s.path, "error", terr)
		}
		return err
	}

	prevSize := s.size
	s.size += int64(len(buf))
	for i, rec := range s.pending {
		s.offsets[rec.ID] = starts[i]
	}

	if err := fs.WriteFileAtomic(s.fs, s.indexPath, encodeIndex(s.offsets), 0o644); err != nil {
		if terr := s.fs.Truncate(s.path, prevSize); terr != nil {
			// The records are in the log and the next Open re-indexes them,
			// so they count as flushed.
			s.logger.Error("failed to roll back data log after index write failure",
				"path", s.path, "index_error", err, "error", terr)
			s.clearPending()
			return nil
		}
		s.size = prevSize
		for _, rec := range s.pending {
			delete(s.offsets, rec.ID)
		}
		return fmt.Errorf("store: write index: %w", err)
	}
	s.clearPending()
	return nil
}

func (s *Store) clearPending() {
	clear(s.pending)
	s.pending = s.pending[:0]
}

func (s *Store) writeLog(buf []byte) error {
	if _, err := s.file.Write(buf); err != nil {
		return fmt.Errorf("store: write data log: %w", err)
	}
	if s.opts.Durability == DurabilitySync {
		if err := s.file.Sync(); err != nil {
			return fmt.Errorf("store: sync data log: %w", err)
		}
	}
	return nil
}

// Get reads the record stored under id.
func (s *Store) Get(id uint64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Record{}, ErrClosed
	}
	off, ok := s.offsets[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if s.records != nil {
		if rec, ok := s.records.Get(id); ok {
			return cloneRecord(rec), nil
		}
	}
	rec, n, err := s.readAt(off)
	if err != nil {
		return Record{}, err
	}
	if rec.ID != id {
		return Record{}, fmt.Errorf("%w: offset %d holds id %d, want %d", ErrCorrupt, off, rec.ID, id)
	}
	if s.records != nil {
		s.records.Set(id, rec, n)
		return cloneRecord(rec), nil
	}
	return rec, nil
}

// CacheStats returns the hit and miss counts of the record cache.
func (s *Store) CacheStats() (hits, misses int64) {
	if s.records == nil {
		return 0, 0
	}
	return s.records.Stats()
}

func cloneRecord(rec Record) Record {
	out := Record{ID: rec.ID, Fields: make([][]string, len(rec.Fields))}
	for i, tokens := range rec.Fields {
		out.Fields[i] = slices.Clone(tokens)
	}
	return out
}

func (s *Store) readAt(off int64) (Record, int64, error) {
	r := bufio.NewReader(io.NewSectionReader(s.file, off, s.size-off))
	return decodeRecord(r, s.opts.Format, s.fieldCount)
}

// Scan returns the flushed records in append order. The data log is mapped
// read-only for the duration of the iteration. A truncated or corrupt record
// yields one error wrapping ErrCorrupt and ends the sequence.
func (s *Store) Scan() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			yield(Record{}, ErrClosed)
			return
		}
		size := s.size
		s.mu.Unlock()

		m, err := mmap.OpenSize(s.path, size)
		if err != nil {
			yield(Record{}, fmt.Errorf("store: map data log: %w", err))
			return
		}
		defer m.Close()
		_ = m.Advise(mmap.AccessSequential)

		data := m.Bytes()
		start := s.opts.Format.headerSize()
		if int64(len(data)) < start {
			return
		}
		r := bytes.NewReader(data[start:])
		minSize := s.opts.Format.minRecordSize()

		for r.Len() >= minSize {
			rec, _, err := decodeRecord(r, s.opts.Format, s.fieldCount)
			if err != nil {
				yield(Record{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Contains reports whether id is flushed or staged.
func (s *Store) Contains(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids.Contains(id)
}

// Len returns the number of indexed records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.offsets)
}

// Pending returns the number of staged records.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Size returns the size of the data log in bytes.
func (s *Store) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}


// Close flushes staged records and closes the data log.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true
	if s.records != nil {
		s.records.Purge()
	}

	flushErr := s.flushLocked()
	closeErr := s.file.Close()
	return errors.Join(flushErr, closeErr)
}
