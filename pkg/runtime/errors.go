// Package runtime provides runtime utilities for the ORM.
package runtime

import (
	"fmt"
)

// QueryError represents a query execution error.
type QueryError struct {
	Query string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v\nQuery: %s", e.Err, e.Query)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// ConnectionError reports failure to acquire or release a pooled
// connection from the data-source. It wraps whatever the pool
// returned so callers can still match against the underlying driver
// error with errors.As.
type ConnectionError struct {
	Op  string // "acquire" or "release"
	Err error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}
