package asm

import (
	"encoding/binary"
	"fmt"
	"strings"

	"locks/bytecode"
)

// Disassemble renders a loaded CodeObject back to a readable listing:
// one function per section, byte offsets on the left, the constant pool
// value inlined next to any LOAD_CONST. It does not reproduce the
// original mnemonic-level IR (labels are gone once assembled into
// offsets) — it's for inspection, not reassembly.
func Disassemble(co bytecode.CodeObject) string {
	var b strings.Builder

	fmt.Fprintf(&b, "constants (%d):\n", len(co.Constants))
	for i, c := range co.Constants {
		fmt.Fprintf(&b, "  %4d %s\n", i, c.String())
	}

	for fi, fn := range co.Functions {
		fmt.Fprintf(&b, "\nfunction %d %q (argc %d):\n", fi, fn.Name, fn.Argc)
		ip := 0
		for ip < len(fn.Code) {
			op := bytecode.Opcode(fn.Code[ip])
			info, err := bytecode.Info(op)
			if err != nil {
				fmt.Fprintf(&b, "  %04d ???\n", ip)
				break
			}
			switch info.Size {
			case 1:
				fmt.Fprintf(&b, "  %04d %s\n", ip, info.Name)
			case 2:
				operand := fn.Code[ip+1]
				fmt.Fprintf(&b, "  %04d %-16s %d\n", ip, info.Name, operand)
			case 3:
				operand := binary.BigEndian.Uint16(fn.Code[ip+1:])
				extra := ""
				if op == bytecode.LOAD_CONST && int(operand) < len(co.Constants) {
					extra = fmt.Sprintf(" ; %s", co.Constants[operand].String())
				}
				fmt.Fprintf(&b, "  %04d %-16s %d%s\n", ip, info.Name, operand, extra)
			}
			ip += info.Size
		}
	}

	return b.String()
}
