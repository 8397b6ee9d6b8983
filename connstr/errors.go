package connstr

import (
	"errors"
	"fmt"
)

// ParseError represents a malformed connection string.
//
// In the relation protocol, connection strings are published by the
// server side. A parse failure therefore indicates a server-side bug or
// data corruption, not a transient race, and callers must treat it as
// fatal for the current evaluation rather than retry.
type ParseError struct {
	// Code identifies the error category.
	Code ParseErrorCode

	// Token is the offending fragment of the input, when known.
	Token string

	// Pos is the byte offset of the offending fragment.
	Pos int
}

// ParseErrorCode categorizes connection string parse errors.
type ParseErrorCode string

const (
	// ErrCodeUnterminatedQuote indicates a single-quoted value with no
	// closing quote.
	ErrCodeUnterminatedQuote ParseErrorCode = "UNTERMINATED_QUOTE"

	// ErrCodeMissingSeparator indicates a token with no '=' separator.
	ErrCodeMissingSeparator ParseErrorCode = "MISSING_SEPARATOR"

	// ErrCodeEmptyKey indicates a '=' with no parameter name before it.
	ErrCodeEmptyKey ParseErrorCode = "EMPTY_KEY"
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: invalid connection string at offset %d: %q", e.Code, e.Pos, e.Token)
	}
	return fmt.Sprintf("%s: invalid connection string at offset %d", e.Code, e.Pos)
}

// IsParseError returns true if the error is a connection string parse
// error. Uses errors.As to handle wrapped errors.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
