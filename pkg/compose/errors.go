package compose

import "fmt"

// CompositionError reports a query shape the composer can't turn into
// well-formed SQL: include after a projection has already collapsed
// the entity root, a mismatched alias reference, or a map that
// produces an empty projection.
type CompositionError struct {
	Detail string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("compose: %s", e.Detail)
}

func compositionErrf(format string, args ...any) *CompositionError {
	return &CompositionError{Detail: fmt.Sprintf(format, args...)}
}
