package parser

import "locks/diag"

// CreateSyntaxError builds the diag.SyntaxErr the parser raises on a
// malformed program. Kept as a thin wrapper rather than constructing
// diag.SyntaxErr inline everywhere.
func CreateSyntaxError(line int32, column int, message string) diag.SyntaxErr {
	return diag.NewSyntaxErr(line, column, message)
}
