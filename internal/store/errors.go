package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id is absent from the offset index.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateID is returned when a record id is already stored or staged.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrCorrupt is returned when the data log or the index cannot be decoded.
	ErrCorrupt = errors.New("store data corruption detected")

	// ErrIncompatibleFormat is returned when a data log was written in a
	// different format than the one requested.
	ErrIncompatibleFormat = errors.New("incompatible store format")

	// ErrFieldCount is returned when a record does not carry one token list
	// per fuzzy field.
	ErrFieldCount = errors.New("record field count mismatch")

	// ErrRecordTooLarge is returned when a record exceeds the token or frame
	// limits the decoder enforces.
	ErrRecordTooLarge = errors.New("record too large")

	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("store closed")
)

// FieldCountError reports data whose number of token lists differs from the
// store's field count. It unwraps to ErrFieldCount.
type FieldCountError struct {
	Expected int
	Actual   int
	// Source names the offending data, e.g. "log header" or "record 7".
	Source string
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("%v: %s has %d fields, want %d", ErrFieldCount, e.Source, e.Actual, e.Expected)
}

func (e *FieldCountError) Unwrap() error { return ErrFieldCount }
