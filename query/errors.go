package query

import (
	"errors"
	"fmt"
)

// ErrQuery matches every *QueryError via errors.Is.
var ErrQuery = errors.New("query error")

// QueryError describes a malformed or semantically invalid query.
// It is safe to retry with corrected input.
type QueryError struct {
	Msg string
	// Pos is the byte offset of the offending token, or -1 when the error
	// concerns the query as a whole.
	Pos int
}

func (e *QueryError) Error() string {
	if e.Pos < 0 {
		return "query: " + e.Msg
	}
	return fmt.Sprintf("query: %s (at %d)", e.Msg, e.Pos)
}

// Is reports whether target is ErrQuery.
func (e *QueryError) Is(target error) bool {
	return target == ErrQuery
}

func errorf(pos int, format string, args ...any) *QueryError {
	return &QueryError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}
