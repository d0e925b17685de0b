package fuzzysearch

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/PixelSnake/FuzzySearch/internal/store"
)

// Compression selects how a backup stream body is compressed.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// ParseCompression parses "none", "zstd" or "lz4".
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCompression, name)
	}
}

// Backup stream layout:
//
//	[Magic: 6] [Version: 2] [Compression: 1] [FieldCount: 4]
//	body, compressed as a whole:
//	  repeated [1] [frame]
//	  [0] [RecordCount: 8]
const (
	backupMagic      = "FZSBAK"
	backupVersion    = 1
	backupHeaderSize = 13

	markerRecord = 1
	markerEnd    = 0
)

// Export writes every flushed record to w and returns the number written.
// Writes are rate-limited when the index was opened WithIOLimit.
func (ix *Index[T]) Export(ctx context.Context, w io.Writer, c Compression) (n int, err error) {
	defer func() { ix.logger.LogBackup(ctx, "export", n, err) }()

	if ix.closed.Load() {
		return 0, ErrClosed
	}
	if c > CompressionLZ4 {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedCompression, c)
	}

	out := ix.rc.Writer(ctx, w)

	hdr := make([]byte, 0, backupHeaderSize)
	hdr = append(hdr, backupMagic...)
	hdr = binary.LittleEndian.AppendUint16(hdr, backupVersion)
	hdr = append(hdr, byte(c))
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(len(ix.names)))
	if _, err := out.Write(hdr); err != nil {
		return 0, err
	}

	body, err := compressor(out, c)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			body.Close()
		}
	}()
	bw := bufio.NewWriter(body)

	var buf []byte
	for rec, err := range ix.store.Scan() {
		if err != nil {
			return n, translateError(err, len(ix.names))
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		buf = append(buf[:0], markerRecord)
		buf = store.AppendFrame(buf, rec)
		if _, err := bw.Write(buf); err != nil {
			return n, err
		}
		n++
	}

	buf = append(buf[:0], markerEnd)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(n))
	if _, err := bw.Write(buf); err != nil {
		return n, err
	}
	if err := bw.Flush(); err != nil {
		return n, err
	}
	return n, body.Close()
}

func compressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Import adds every record of a backup stream produced by Export and returns
// the number added. Outside a batch the records are committed together, and
// nothing is added when the stream is invalid, holds a duplicate id or cannot
// be committed.
// Inside a batch the records are staged into it.
func (ix *Index[T]) Import(ctx context.Context, r io.Reader) (n int, err error) {
	defer func() { ix.logger.LogBackup(ctx, "import", n, err) }()

	if ix.closed.Load() {
		return 0, ErrClosed
	}

	hdr := make([]byte, backupHeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return 0, fmt.Errorf("%w: read header: %w", ErrInvalidBackup, err)
	}
	if string(hdr[:6]) != backupMagic {
		return 0, fmt.Errorf("%w: invalid magic %q", ErrInvalidBackup, hdr[:6])
	}
	if v := binary.LittleEndian.Uint16(hdr[6:8]); v != backupVersion {
		return 0, fmt.Errorf("%w: version %d (expected %d)", ErrInvalidBackup, v, backupVersion)
	}
	c := Compression(hdr[8])
	if fields := int(binary.LittleEndian.Uint32(hdr[9:13])); fields != len(ix.names) {
		return 0, &ErrFieldCount{Expected: len(ix.names), Actual: fields}
	}

	body, closeBody, err := decompressor(r, c)
	if err != nil {
		return 0, err
	}
	defer closeBody()

	ownBatch := !ix.store.InBatch()
	if ownBatch {
		ix.store.StartBatch()
	}

	n, err = ix.importRecords(ctx, bufio.NewReader(body))
	if err != nil {
		if ownBatch {
			ix.store.AbortBatch()
			n = 0
		}
		return n, err
	}
	if ownBatch {
		if err := ix.CommitBatch(ctx); err != nil {
			ix.store.AbortBatch()
			return 0, err
		}
	}
	return n, nil
}

func (ix *Index[T]) importRecords(ctx context.Context, br *bufio.Reader) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		marker, err := br.ReadByte()
		if err != nil {
			return n, fmt.Errorf("%w: missing end marker: %w", ErrInvalidBackup, err)
		}

		switch marker {
		case markerRecord:
			rec, err := store.ReadFrame(br, len(ix.names))
			if err != nil {
				return n, fmt.Errorf("%w: record %d: %w", ErrInvalidBackup, n, err)
			}
			if err := ix.store.Add(rec); err != nil {
				return n, translateError(err, len(ix.names))
			}
			n++
		case markerEnd:
			var cnt [8]byte
			if _, err := io.ReadFull(br, cnt[:]); err != nil {
				return n, fmt.Errorf("%w: read record count: %w", ErrInvalidBackup, err)
			}
			if want := binary.LittleEndian.Uint64(cnt[:]); want != uint64(n) {
				return n, fmt.Errorf("%w: stream holds %d records, trailer says %d", ErrInvalidBackup, n, want)
			}
			return n, nil
		default:
			return n, fmt.Errorf("%w: unexpected marker %d", ErrInvalidBackup, marker)
		}
	}
}

func decompressor(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case CompressionNone:
		return r, func() {}, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidBackup, err)
		}
		return dec, dec.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, c)
	}
}

