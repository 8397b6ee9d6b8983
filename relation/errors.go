package relation

import (
	"errors"
	"fmt"
)

// ProtocolError represents relation data that failed to parse or
// violates a protocol invariant. The offending data was published by
// the remote side (or maintained by the host), so this is a bug beyond
// the local unit's control: it must surface to the caller, never be
// silently swallowed or retried.
type ProtocolError struct {
	// Code identifies the error category.
	Code ProtocolErrorCode

	// RelationID identifies the affected relation.
	RelationID string

	// Key is the relation bus key carrying the bad data.
	Key string

	// Err is the underlying parse error, if any.
	Err error
}

// ProtocolErrorCode categorizes protocol errors.
type ProtocolErrorCode string

const (
	// ErrCodeBadConnString indicates a published connection string
	// failed to parse.
	ErrCodeBadConnString ProtocolErrorCode = "BAD_CONN_STRING"

	// ErrCodeIncompleteConnString indicates a published connection
	// string lacks host or dbname, which every ready connection string
	// must carry.
	ErrCodeIncompleteConnString ProtocolErrorCode = "INCOMPLETE_CONN_STRING"

	// ErrCodeBadSubnets indicates a published CIDR list failed to
	// parse.
	ErrCodeBadSubnets ProtocolErrorCode = "BAD_SUBNETS"
)

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: relation %s: key %q: %v", e.Code, e.RelationID, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: relation %s: key %q", e.Code, e.RelationID, e.Key)
}

// Unwrap returns the underlying error.
func (e *ProtocolError) Unwrap() error { return e.Err }

// IsProtocolError returns true if the error is a relation protocol
// error. Uses errors.As to handle wrapped errors.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
