package directive

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for decode failures. Every *ParseError wraps exactly one.
var (
	ErrSyntax           = errors.New("syntax error")
	ErrUnknownKeyword   = errors.New("unknown keyword")
	ErrInvalidInteger   = errors.New("invalid integer")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrUnknownType      = errors.New("unknown entry type")
	ErrInvalidDigest    = errors.New("invalid sha256 digest")
	ErrTrailingInput    = errors.New("trailing input")
)

// ParseError reports where in a line decoding failed and what was expected
// there. Offset is a byte offset into the decoded line.
type ParseError struct {
	Offset   int
	Expected string
	// Found is the offending token; empty at end of input.
	Found string
	Err   error
}

func (e *ParseError) Error() string {
	found := "end of input"
	if e.Found != "" {
		found = strconv.Quote(e.Found)
	}
	return fmt.Sprintf("offset %d: expected %s, found %s: %v", e.Offset, e.Expected, found, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
