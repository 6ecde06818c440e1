package parser

import (
	"errors"
	"fmt"
)

// ErrInvalidExport is returned when the input is not a chat export: it has
// no bracketed timestamp entries, or one of them fails to parse.
var ErrInvalidExport = errors.New("not a valid export")

// TimestampError reports an entry whose bracketed timestamp does not match
// the export layout. It invalidates the whole parse.
type TimestampError struct {
	// Index is the 0-based entry position.
	Index int
	// Literal is the timestamp text as it appeared between the brackets.
	Literal string
	Err     error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("entry %d: malformed timestamp %q: %v", e.Index, e.Literal, e.Err)
}

func (e *TimestampError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidExport) true for timestamp failures.
func (e *TimestampError) Is(target error) bool {
	return target == ErrInvalidExport
}
