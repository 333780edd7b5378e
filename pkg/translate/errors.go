package translate

import "fmt"

// TranslationError reports a filter, projection, or order callback the
// translator cannot turn into SQL: an unsupported AST node, an
// unrecognized operator or dsl call, an unresolved identifier path, or
// a callback body that isn't a single return statement.
type TranslationError struct {
	Detail string
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate: %s", e.Detail)
}

func errf(format string, args ...any) *TranslationError {
	return &TranslationError{Detail: fmt.Sprintf(format, args...)}
}
