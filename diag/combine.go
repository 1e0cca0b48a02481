package diag

import "go.uber.org/multierr"

// Combine folds a phase's accumulated diagnostics into a single error,
// or nil if the slice is empty. Lexer, parser, and analyzer each return
// []error directly to their caller (so intermediate code can still walk
// diagnostics one at a time); Combine is for call sites — the `locks run`
// and `locks vm` subcommands — that only need one answer to "did this
// phase fail".
func Combine(errs []error) error {
	return multierr.Combine(errs...)
}
