package store

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/PixelSnake/FuzzySearch/internal/hash"
)

// Record is the stored form of a searchable item: its id and, for each fuzzy
// field in schema order, the field's lower-cased whitespace-split tokens.
type Record struct {
	ID     uint64
	Fields [][]string
}

const (
	idSize         = 8
	countSize      = 4
	frameHeaderLen = 8 // crc32c + payload length

	maxTokens    = 1 << 20
	maxTokenLen  = 1 << 16
	maxFrameSize = 64 << 20
)

// Format selects the on-disk layout of the data log.
type Format int

const (
	// FormatPlain writes records back to back without framing:
	//
	//	[ID: 8] then per field [Count: 4] [Len: uvarint] [Token: Len] ...
	//
	// The end of the log is detected by running out of bytes for another id.
	FormatPlain Format = iota
	// FormatFramed prefixes the log with a header and every record with
	// [CRC32: 4] [Length: 4], so torn tails and corruption are detected.
	FormatFramed
)

func (f Format) String() string {
	switch f {
	case FormatPlain:
		return "plain"
	case FormatFramed:
		return "framed"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

const (
	logMagic      = "FZSLOG" // 6 bytes
	logVersion    = 1        // 2 bytes, then field count: 4 bytes
	logHeaderSize = 12
)

// headerSize returns the number of bytes preceding the first record.
func (f Format) headerSize() int64 {
	if f == FormatFramed {
		return logHeaderSize
	}
	return 0
}

// minRecordSize is the smallest number of remaining bytes that can start
// another record.
func (f Format) minRecordSize() int {
	if f == FormatFramed {
		return frameHeaderLen
	}
	return idSize
}

func appendHeader(buf []byte, fieldCount int) []byte {
	buf = append(buf, logMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, logVersion)
	return binary.LittleEndian.AppendUint32(buf, uint32(fieldCount))
}

// checkHeader validates a framed log header against the expected field count.
func checkHeader(hdr []byte, fieldCount int) error {
	if len(hdr) < logHeaderSize || string(hdr[:len(logMagic)]) != logMagic {
		return fmt.Errorf("%w: missing %s header", ErrIncompatibleFormat, logMagic)
	}
	if ver := binary.LittleEndian.Uint16(hdr[6:8]); ver != logVersion {
		return fmt.Errorf("%w: version %d (expected %d)", ErrIncompatibleFormat, ver, logVersion)
	}
	if n := binary.LittleEndian.Uint32(hdr[8:12]); int(n) != fieldCount {
		return &FieldCountError{Expected: fieldCount, Actual: int(n), Source: "log header"}
	}
	return nil
}

func appendPayload(buf []byte, rec Record) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, rec.ID)
	for _, tokens := range rec.Fields {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tokens)))
		for _, tok := range tokens {
			buf = binary.AppendUvarint(buf, uint64(len(tok)))
			buf = append(buf, tok...)
		}
	}
	return buf
}

// appendRecord encodes rec in format f and appends it to buf.
func appendRecord(buf []byte, f Format, rec Record) []byte {
	if f != FormatFramed {
		return appendPayload(buf, rec)
	}

	start := len(buf)
	buf = append(buf, make([]byte, frameHeaderLen)...)
	buf = appendPayload(buf, rec)
	payload := buf[start+frameHeaderLen:]
	binary.LittleEndian.PutUint32(buf[start:], hash.CRC32C(payload))
	binary.LittleEndian.PutUint32(buf[start+4:], uint32(len(payload)))
	return buf
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

// decodeRecord reads one record in format f from r. It returns the number of
// bytes consumed.
func decodeRecord(r byteReader, f Format, fieldCount int) (Record, int64, error) {
	if f != FormatFramed {
		return decodePayload(r, fieldCount)
	}

	var hdr [frameHeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Record{}, 0, truncated(err)
	}
	checksum := binary.LittleEndian.Uint32(hdr[:4])
	length := binary.LittleEndian.Uint32(hdr[4:])
	if length > maxFrameSize {
		return Record{}, 0, fmt.Errorf("%w: frame of %d bytes", ErrCorrupt, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Record{}, 0, truncated(err)
	}
	if hash.CRC32C(payload) != checksum {
		return Record{}, 0, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	rec, n, err := decodePayload(bytes.NewReader(payload), fieldCount)
	if err != nil {
		return Record{}, 0, err
	}
	if n != int64(length) {
		return Record{}, 0, fmt.Errorf("%w: frame length %d, payload %d", ErrCorrupt, length, n)
	}
	return rec, frameHeaderLen + n, nil
}

func decodePayload(r byteReader, fieldCount int) (Record, int64, error) {
	var scratch [8]byte
	if _, err := io.ReadFull(r, scratch[:idSize]); err != nil {
		return Record{}, 0, truncated(err)
	}
	rec := Record{
		ID:     binary.LittleEndian.Uint64(scratch[:idSize]),
		Fields: make([][]string, fieldCount),
	}
	n := int64(idSize)

	for f := range rec.Fields {
		if _, err := io.ReadFull(r, scratch[:countSize]); err != nil {
			return Record{}, 0, truncated(err)
		}
		n += countSize
		count := binary.LittleEndian.Uint32(scratch[:countSize])
		if count > maxTokens {
			return Record{}, 0, fmt.Errorf("%w: record %d has %d tokens", ErrCorrupt, rec.ID, count)
		}

		tokens := make([]string, count)
		for i := range tokens {
			l, err := binary.ReadUvarint(r)
			if err != nil {
				return Record{}, 0, truncated(err)
			}
			if l > maxTokenLen {
				return Record{}, 0, fmt.Errorf("%w: token of %d bytes", ErrCorrupt, l)
			}
			buf := make([]byte, l)
			if _, err := io.ReadFull(r, buf); err != nil {
				return Record{}, 0, truncated(err)
			}
			tokens[i] = string(buf)
			n += int64(uvarintLen(l)) + int64(l)
		}
		rec.Fields[f] = tokens
	}
	return rec, n, nil
}

// checkLimits rejects records the decoder would refuse to read back.
func checkLimits(rec Record) error {
	size := int64(idSize)
	for f, tokens := range rec.Fields {
		if len(tokens) > maxTokens {
			return fmt.Errorf("%w: field %d has %d tokens (max %d)", ErrRecordTooLarge, f, len(tokens), maxTokens)
		}
		size += countSize
		for _, tok := range tokens {
			if len(tok) > maxTokenLen {
				return fmt.Errorf("%w: token of %d bytes (max %d)", ErrRecordTooLarge, len(tok), maxTokenLen)
			}
			size += int64(uvarintLen(uint64(len(tok))) + len(tok))
		}
	}
	if size > maxFrameSize {
		return fmt.Errorf("%w: %d bytes encoded (max %d)", ErrRecordTooLarge, size, maxFrameSize)
	}
	return nil
}

func uvarintLen(v uint64) int {
	var buf [binary.MaxVarintLen64]byte
	return binary.PutUvarint(buf[:], v)
}

func truncated(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: truncated record: %v", ErrCorrupt, err)
}

// AppendFrame appends rec in the framed layout, independent of any log
// format. Backup streams are made of frames.
func AppendFrame(buf []byte, rec Record) []byte {
	return appendRecord(buf, FormatFramed, rec)
}

// ReadFrame reads one framed record written by AppendFrame.
func ReadFrame(r *bufio.Reader, fieldCount int) (Record, error) {
	rec, _, err := decodeRecord(r, FormatFramed, fieldCount)
	return rec, err
}
