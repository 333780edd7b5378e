package engine

import "fmt"

// ExecutionError wraps a failure the database backend reported while
// running a compiled query. The underlying error is never rewritten —
// callers that care about a specific backend condition (e.g. a
// unique-constraint violation) should Unwrap and type-assert against
// the pgx/pgconn error rather than pattern-match this type's message.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("engine: executing query: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
