package fuzzysearch

import (
	"errors"
	"fmt"

	"github.com/PixelSnake/FuzzySearch/internal/store"
)

var (
	// ErrInvalidSchema is returned when a schema descriptor cannot be used.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrNotFound is returned when no record is stored under an id.
	ErrNotFound = store.ErrNotFound

	// ErrDuplicateID is returned when a record id is already stored.
	ErrDuplicateID = store.ErrDuplicateID

	// ErrCorrupt is returned when stored data cannot be decoded.
	ErrCorrupt = store.ErrCorrupt

	// ErrRecordTooLarge is returned when an item has more or longer tokens
	// than a record can hold.
	ErrRecordTooLarge = store.ErrRecordTooLarge

	// ErrInvalidCutoff is returned for a cutoff that is negative, NaN or
	// infinite.
	ErrInvalidCutoff = errors.New("invalid cutoff")

	// ErrClosed is returned when an operation is attempted on a closed index.
	ErrClosed = errors.New("index closed")

	// ErrUnsupportedCompression is returned for an unknown backup compression.
	ErrUnsupportedCompression = errors.New("unsupported compression")

	// ErrInvalidBackup is returned when a backup stream cannot be read.
	ErrInvalidBackup = errors.New("invalid backup")
)

// ErrFieldCount indicates that stored data was written with a different
// number of fuzzy fields than the schema declares.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrFieldCount struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrFieldCount) Error() string {
	if e.Actual < 0 {
		return fmt.Sprintf("field count mismatch: schema has %d fuzzy fields", e.Expected)
	}
	return fmt.Sprintf("field count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrFieldCount) Unwrap() error { return e.cause }

func translateError(err error, fields int) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	var fce *store.FieldCountError
	if errors.As(err, &fce) {
		return &ErrFieldCount{Expected: fields, Actual: fce.Actual, cause: err}
	}
	if errors.Is(err, store.ErrFieldCount) {
		return &ErrFieldCount{Expected: fields, Actual: -1, cause: err}
	}
	return err
}
