// Package asm assembles the compiler's textual bytecode IR into the
// binary image format consumed by the VM, and disassembles it back for
// inspection. Two passes over the IR, per the format's own description:
// the first assigns function indices and resolves each label to a byte
// offset and each variable name to a slot (per function for locals, one
// program-wide table for globals), the second emits
// the resolved instruction bytes.
package asm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"locks/builtin"
	"locks/bytecode"
	"locks/value"
)

type rawInstr struct {
	op      string
	operand string // empty if the mnemonic takes none
}

type rawFunction struct {
	name string
	argc int
	// lines holds both label definitions (".L0") and instructions, in
	// source order; separated out during the offset-resolution pass.
	lines []string
}

// parseIR splits the compiler's textual output into its constant pool
// declarations and its function blocks, preserving declaration order.
func parseIR(ir string) (constants []constDecl, functions []rawFunction, err error) {
	scanner := bufio.NewScanner(strings.NewReader(ir))
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	var cpc = -1
	var current *rawFunction

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "cpc "):
			n, convErr := strconv.Atoi(strings.TrimSpace(line[4:]))
			if convErr != nil {
				return nil, nil, fmt.Errorf("asm: malformed cpc header %q", line)
			}
			cpc = n
		case cpc > len(constants):
			decl, convErr := parseConstLine(line)
			if convErr != nil {
				return nil, nil, convErr
			}
			constants = append(constants, decl)
		case strings.HasPrefix(line, "fn "):
			if current != nil {
				functions = append(functions, *current)
			}
			current = &rawFunction{name: strings.TrimSpace(line[3:])}
		case strings.HasPrefix(line, "argc "):
			n, convErr := strconv.Atoi(strings.TrimSpace(line[5:]))
			if convErr != nil {
				return nil, nil, fmt.Errorf("asm: malformed argc line %q", line)
			}
			current.argc = n
		default:
			if current == nil {
				return nil, nil, fmt.Errorf("asm: instruction %q outside any function block", line)
			}
			current.lines = append(current.lines, line)
		}
	}
	if current != nil {
		functions = append(functions, *current)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return constants, functions, nil
}

type constDecl struct {
	tag     byte // 'i', 'd', or 's'
	payload string
}

func parseConstLine(line string) (constDecl, error) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) != 2 {
		return constDecl{}, fmt.Errorf("asm: malformed constant line %q", line)
	}
	switch parts[0] {
	case "i", "d", "s":
		return constDecl{tag: parts[0][0], payload: strings.TrimSpace(parts[1])}, nil
	default:
		return constDecl{}, fmt.Errorf("asm: unrecognized constant tag %q", parts[0])
	}
}

func buildConstantPool(decls []constDecl) ([]value.Value, error) {
	pool := make([]value.Value, 0, len(decls))
	for _, d := range decls {
		switch d.tag {
		case 'i':
			n, err := strconv.ParseInt(d.payload, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("asm: malformed integer constant %q", d.payload)
			}
			pool = append(pool, value.NewInt(n))
		case 'd':
			f, err := strconv.ParseFloat(d.payload, 64)
			if err != nil {
				return nil, fmt.Errorf("asm: malformed double constant %q", d.payload)
			}
			pool = append(pool, value.NewFloat(f))
		case 's':
			s, err := strconv.Unquote(d.payload)
			if err != nil {
				return nil, fmt.Errorf("asm: malformed string constant %q", d.payload)
			}
			pool = append(pool, value.String(s))
		}
	}
	return pool, nil
}

// splitInstr separates a line into its mnemonic and optional operand.
func splitInstr(line string) rawInstr {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 1 {
		return rawInstr{op: parts[0]}
	}
	return rawInstr{op: parts[0], operand: strings.TrimSpace(parts[1])}
}

// Assemble turns textual IR into a loadable CodeObject.
func Assemble(ir string) (bytecode.CodeObject, error) {
	declConsts, rawFns, err := parseIR(ir)
	if err != nil {
		return bytecode.CodeObject{}, err
	}

	constants, err := buildConstantPool(declConsts)
	if err != nil {
		return bytecode.CodeObject{}, err
	}

	funcIndex := make(map[string]int, len(rawFns))
	for i, fn := range rawFns {
		funcIndex[fn.name] = i
	}

	globalSlots := buildGlobalSlots(rawFns)

	functions := make([]bytecode.Function, len(rawFns))
	for i, fn := range rawFns {
		code, asmErr := assembleFunction(fn, funcIndex, globalSlots)
		if asmErr != nil {
			return bytecode.CodeObject{}, asmErr
		}
		functions[i] = bytecode.Function{Name: fn.name, Argc: fn.argc, Code: code}
	}

	return bytecode.CodeObject{Constants: constants, Functions: functions}, nil
}

// buildGlobalSlots assigns every STORE_GLOBAL/LOAD_GLOBAL name a single
// slot number shared by the whole program, in first-seen order scanning
// main before the other functions. Globals live in the VM's one main
// frame regardless of which function touches them, so their slot
// numbering can't be reset per function the way locals' can.
func buildGlobalSlots(rawFns []rawFunction) map[string]int {
	slots := make(map[string]int)
	assign := func(fn rawFunction) {
		for _, line := range fn.lines {
			if strings.HasPrefix(line, ".") {
				continue
			}
			in := splitInstr(line)
			if in.op == "STORE_GLOBAL" || in.op == "LOAD_GLOBAL" {
				if _, ok := slots[in.operand]; !ok {
					slots[in.operand] = len(slots)
				}
			}
		}
	}
	for _, fn := range rawFns {
		if fn.name == "main" {
			assign(fn)
		}
	}
	for _, fn := range rawFns {
		if fn.name != "main" {
			assign(fn)
		}
	}
	return slots
}

// assembleFunction resolves one function's labels and local variable
// slots (pass 1) then emits its instruction bytes (pass 2). Global slots
// are resolved against the program-wide table built by buildGlobalSlots
// instead of being assigned locally.
func assembleFunction(fn rawFunction, funcIndex map[string]int, globalSlots map[string]int) ([]byte, error) {
	labels := make(map[string]int)
	slots := make(map[string]int)

	instrs := make([]rawInstr, 0, len(fn.lines))
	offset := 0
	for _, line := range fn.lines {
		if strings.HasPrefix(line, ".") {
			labels[line[1:]] = offset
			continue
		}
		in := splitInstr(line)
		op, err := bytecode.Lookup(in.op)
		if err != nil {
			return nil, err
		}
		info, err := bytecode.Info(op)
		if err != nil {
			return nil, err
		}
		offset += info.Size
		instrs = append(instrs, in)
	}

	// First-seen order slot assignment for every local variable name this
	// function touches. Globals are resolved against globalSlots instead,
	// since their slot numbers are shared across the whole program.
	for _, in := range instrs {
		switch in.op {
		case "STORE_LOCAL", "LOAD_LOCAL":
			if _, ok := slots[in.operand]; !ok {
				slots[in.operand] = len(slots)
			}
		}
	}

	code := make([]byte, 0, offset)
	for _, in := range instrs {
		op, _ := bytecode.Lookup(in.op)
		info, _ := bytecode.Info(op)

		instr := make([]byte, info.Size)
		instr[0] = byte(op)

		switch in.op {
		case "BIPUSH":
			n, err := strconv.Atoi(in.operand)
			if err != nil || n < 0 || n > 255 {
				return nil, fmt.Errorf("asm: invalid BIPUSH operand %q", in.operand)
			}
			instr[1] = byte(n)
		case "LOAD_CONST":
			n, err := strconv.Atoi(in.operand)
			if err != nil {
				return nil, fmt.Errorf("asm: invalid LOAD_CONST operand %q", in.operand)
			}
			binary.BigEndian.PutUint16(instr[1:], uint16(n))
		case "BUILD_LIST":
			n, err := strconv.Atoi(in.operand)
			if err != nil {
				return nil, fmt.Errorf("asm: invalid BUILD_LIST operand %q", in.operand)
			}
			binary.BigEndian.PutUint16(instr[1:], uint16(n))
		case "STORE_LOCAL", "LOAD_LOCAL":
			slot, ok := slots[in.operand]
			if !ok || slot > 255 {
				return nil, fmt.Errorf("asm: unresolved or oversized variable slot for %q", in.operand)
			}
			instr[1] = byte(slot)
		case "STORE_GLOBAL", "LOAD_GLOBAL":
			slot, ok := globalSlots[in.operand]
			if !ok || slot > 255 {
				return nil, fmt.Errorf("asm: unresolved or oversized global slot for %q", in.operand)
			}
			instr[1] = byte(slot)
		case "GOTO", "POP_JMP_IF_TRUE", "POP_JMP_IF_FALSE":
			target, ok := labels[in.operand]
			if !ok {
				return nil, fmt.Errorf("asm: undefined label %q", in.operand)
			}
			binary.BigEndian.PutUint16(instr[1:], uint16(target))
		case "CALL_FUNCTION":
			idx, ok := funcIndex[in.operand]
			if !ok || idx > 255 {
				return nil, fmt.Errorf("asm: call to undefined function %q", in.operand)
			}
			instr[1] = byte(idx)
		case "CALL_NATIVE":
			fn, ok := builtin.ByName[in.operand]
			if !ok {
				return nil, fmt.Errorf("asm: call to undefined built-in %q", in.operand)
			}
			instr[1] = byte(fn.Index)
		}

		code = append(code, instr...)
	}

	return code, nil
}

// Load parses a binary image into a CodeObject, surfacing malformed
// input as the shared InvalidBytecodeError kind.
func Load(data []byte) (bytecode.CodeObject, error) {
	co, err := bytecode.Decode(data)
	if err != nil {
		return bytecode.CodeObject{}, err
	}
	return co, nil
}
