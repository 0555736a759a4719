package search

import "fmt"

// Machine-readable compile error codes surfaced to the storefront.
const (
	CodeUnknownScope      = "unknown_scope"
	CodeInvalidRefinement = "invalid_refinement"
)

// CompileError means the request itself could not be turned into a query
// (unknown scope, malformed refinement). It is recoverable locally: callers
// fall back to the broadest safe default within the scoped page, never by
// silently widening the scope.
type CompileError struct {
	Code   string
	Detail string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error (%s): %s", e.Code, e.Detail)
}

// ErrUnknownScope reports a filterSetKey with no registered filter list.
// Callers treat it as "show only default filters".
func ErrUnknownScope(key string) *CompileError {
	return &CompileError{Code: CodeUnknownScope, Detail: "no filter set registered for key " + key}
}
