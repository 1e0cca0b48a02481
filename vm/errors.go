package vm

import "locks/diag"

// raise panics with err so the dispatch loop can unwind through a single
// deferred recover in Run, mirroring the tree-walking interpreter's own
// panic/recover convention instead of threading an error return through
// every opcode handler.
func raise(err error) {
	panic(err)
}

func typeErr(msg string) error {
	return diag.NewTypeErr(diag.NoLine, msg)
}

func zeroDivErr() error {
	return diag.NewZeroDivErr(diag.NoLine)
}

func indexErr() error {
	return diag.NewIndexErr(diag.NoLine)
}
