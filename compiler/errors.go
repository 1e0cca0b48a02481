package compiler

import "fmt"

// internalError reports a compiler invariant violation: a construct the
// semantic analyzer should already have rejected (e.g. assigning through
// a non-lvalue), or a case the bytecode back-end genuinely does not
// support. Reaching one of these means a phase ordering bug, not a user
// program mistake, so it carries its own "developer error" framing
// rather than one of the diag package's user-facing kinds.
type internalError struct {
	Message string
}

func (e internalError) Error() string {
	return fmt.Sprintf("🤖 compiler error: %s", e.Message)
}
