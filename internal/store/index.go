package store

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/PixelSnake/FuzzySearch/internal/fs"
)

const indexEntrySize = 16

// IndexSuffix is appended to the data log path to name the sidecar index.
const IndexSuffix = ".idx"

// readIndex loads the sidecar offset index. A missing file yields an empty
// index.
func readIndex(fsys fs.FileSystem, path string) (map[uint64]int64, error) {
	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[uint64]int64), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(data)%indexEntrySize != 0 {
		return nil, fmt.Errorf("%w: index size %d is not a multiple of %d", ErrCorrupt, len(data), indexEntrySize)
	}

	offsets := make(map[uint64]int64, len(data)/indexEntrySize)
	for p := 0; p < len(data); p += indexEntrySize {
		id := binary.LittleEndian.Uint64(data[p:])
		off := int64(binary.LittleEndian.Uint64(data[p+8:]))
		if _, dup := offsets[id]; dup {
			return nil, fmt.Errorf("%w: index lists id %d twice", ErrCorrupt, id)
		}
		offsets[id] = off
	}
	return offsets, nil
}

// encodeIndex serializes the whole offset index in log order.
func encodeIndex(offsets map[uint64]int64) []byte {
	type pair struct {
		id  uint64
		off int64
	}
	pairs := make([]pair, 0, len(offsets))
	for id, off := range offsets {
		pairs = append(pairs, pair{id, off})
	}
	slices.SortFunc(pairs, func(a, b pair) int { return cmp.Compare(a.off, b.off) })

	buf := make([]byte, 0, len(pairs)*indexEntrySize)
	for _, p := range pairs {
		buf = binary.LittleEndian.AppendUint64(buf, p.id)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(p.off))
	}
	return buf
}

// lastOffset returns the largest indexed offset.
func lastOffset(offsets map[uint64]int64) (int64, bool) {
	var last int64 = -1
	for _, off := range offsets {
		last = max(last, off)
	}
	return last, last >= 0
}
