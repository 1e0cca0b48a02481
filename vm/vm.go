// Package vm implements Locks's second back-end: a stack-based
// interpreter for the bytecode format the compiler and asm packages
// produce. Where the tree-walking interpreter recurses over the AST,
// this one walks flat instruction bytes with an explicit instruction
// pointer, one frame per active call, and a single operand stack shared
// across every frame.
package vm

import (
	"encoding/binary"

	"locks/builtin"
	"locks/bytecode"
	"locks/diag"
	"locks/value"
)

// frame is one call's activation record: which function it's executing,
// where in that function's code it is, and its own locals. Locals are a
// fixed array rather than a slice because the format's STORE_LOCAL /
// LOAD_LOCAL operands are a single byte, capping any function at 256
// slots.
type frame struct {
	fnIndex int
	ip      int
	locals  [256]value.Value
}

// VM executes a loaded CodeObject. main is kept out of band from the
// call stack so STORE_GLOBAL/LOAD_GLOBAL can always reach it regardless
// of how deep the current call chain is, matching the format's own
// description of globals as living in "the main frame".
type VM struct {
	co    bytecode.CodeObject
	stack Stack
	calls []*frame
	main  *frame
	ctx   *builtin.Context
}

// New creates a VM whose print/println/input builtins are wired to ctx.
func New(ctx *builtin.Context) *VM {
	return &VM{ctx: ctx}
}

// Run executes a CodeObject's main function (index 0) to completion.
func (vm *VM) Run(co bytecode.CodeObject) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	vm.co = co
	vm.main = &frame{fnIndex: 0}
	vm.calls = []*frame{vm.main}
	vm.stack = nil

	vm.loop()
	return nil
}

func (vm *VM) top() *frame {
	return vm.calls[len(vm.calls)-1]
}

func (vm *VM) code(f *frame) []byte {
	return vm.co.Functions[f.fnIndex].Code
}

// loop dispatches instructions for the current top frame until an END
// opcode halts the whole run or a RETURN_VALUE in the bottom (main)
// frame raises a SyntaxErr. Every opcode handler advances f.ip itself; jumping
// opcodes overwrite it directly rather than falling through to a
// trailing advance.
func (vm *VM) loop() {
	for {
		f := vm.top()
		code := vm.code(f)
		op := bytecode.Opcode(code[f.ip])

		switch op {
		case bytecode.END:
			return

		case bytecode.LOAD_NIL:
			vm.stack.Push(value.Nil{})
			f.ip++
		case bytecode.LOAD_TRUE:
			vm.stack.Push(value.Boolean(true))
			f.ip++
		case bytecode.LOAD_FALSE:
			vm.stack.Push(value.Boolean(false))
			f.ip++

		case bytecode.LOAD_CONST:
			idx := vm.u16(code, f.ip)
			vm.stack.Push(vm.co.Constants[idx])
			f.ip += 3

		case bytecode.BIPUSH:
			vm.stack.Push(value.NewInt(int64(code[f.ip+1])))
			f.ip += 2

		case bytecode.BINARY_ADD:
			vm.binaryAdd()
			f.ip++
		case bytecode.BINARY_SUB:
			l, r := vm.popNumbers("subtract")
			vm.stack.Push(value.SubNumbers(l, r))
			f.ip++
		case bytecode.BINARY_MUL:
			l, r := vm.popNumbers("multiply")
			vm.stack.Push(value.MulNumbers(l, r))
			f.ip++
		case bytecode.BINARY_DIV:
			l, r := vm.popNumbers("divide")
			if r.AsFloat() == 0 {
				raise(zeroDivErr())
			}
			vm.stack.Push(value.DivNumbers(l, r))
			f.ip++
		case bytecode.BINARY_MOD:
			l, r := vm.popNumbers("modulo")
			if r.AsFloat() == 0 {
				raise(zeroDivErr())
			}
			vm.stack.Push(value.ModNumbers(l, r))
			f.ip++

		case bytecode.BINARY_AND:
			r := vm.stack.Pop()
			l := vm.stack.Pop()
			vm.stack.Push(value.Boolean(value.Truthy(l) && value.Truthy(r)))
			f.ip++
		case bytecode.BINARY_OR:
			r := vm.stack.Pop()
			l := vm.stack.Pop()
			vm.stack.Push(value.Boolean(value.Truthy(l) || value.Truthy(r)))
			f.ip++

		case bytecode.UNARY_NOT:
			v := vm.stack.Pop()
			vm.stack.Push(value.Boolean(!value.Truthy(v)))
			f.ip++
		case bytecode.UNARY_NEGATIVE:
			v := vm.stack.Pop()
			n, ok := v.(value.Number)
			if !ok {
				raise(typeErr("Bad operand type for unary -: '" + value.TypeName(v) + "'"))
			}
			if n.IsInt {
				vm.stack.Push(value.NewInt(-n.Int))
			} else {
				vm.stack.Push(value.NewFloat(-n.Float))
			}
			f.ip++

		case bytecode.STORE_LOCAL:
			f.locals[code[f.ip+1]] = vm.stack.Pop()
			f.ip += 2
		case bytecode.LOAD_LOCAL:
			vm.stack.Push(f.locals[code[f.ip+1]])
			f.ip += 2
		case bytecode.STORE_GLOBAL:
			vm.main.locals[code[f.ip+1]] = vm.stack.Pop()
			f.ip += 2
		case bytecode.LOAD_GLOBAL:
			vm.stack.Push(vm.main.locals[code[f.ip+1]])
			f.ip += 2

		case bytecode.BUILD_LIST:
			n := int(vm.u16(code, f.ip))
			elems := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				elems[i] = vm.stack.Pop()
			}
			vm.stack.Push(value.NewArray(elems))
			f.ip += 3

		case bytecode.BINARY_SUBSCR:
			idx := vm.stack.Pop()
			base := vm.stack.Pop()
			arr, i := vm.indexInto(base, idx)
			vm.stack.Push(arr.Get(i))
			f.ip++
		case bytecode.STORE_SUBSCR:
			idx := vm.stack.Pop()
			base := vm.stack.Pop()
			v := vm.stack.Pop()
			arr, i := vm.indexInto(base, idx)
			arr.Set(i, v)
			vm.stack.Push(arr)
			f.ip++

		case bytecode.CMPEQ:
			r := vm.stack.Pop()
			l := vm.stack.Pop()
			vm.stack.Push(value.Boolean(value.Equal(l, r)))
			f.ip++
		case bytecode.CMPNE:
			r := vm.stack.Pop()
			l := vm.stack.Pop()
			vm.stack.Push(value.Boolean(!value.Equal(l, r)))
			f.ip++
		case bytecode.CMPGT:
			l, r := vm.popNumbers("compare")
			vm.stack.Push(value.Boolean(l.AsFloat() > r.AsFloat()))
			f.ip++
		case bytecode.CMPLT:
			l, r := vm.popNumbers("compare")
			vm.stack.Push(value.Boolean(l.AsFloat() < r.AsFloat()))
			f.ip++
		case bytecode.CMPGE:
			l, r := vm.popNumbers("compare")
			vm.stack.Push(value.Boolean(l.AsFloat() >= r.AsFloat()))
			f.ip++
		case bytecode.CMPLE:
			l, r := vm.popNumbers("compare")
			vm.stack.Push(value.Boolean(l.AsFloat() <= r.AsFloat()))
			f.ip++

		case bytecode.POP_JMP_IF_TRUE:
			v := vm.stack.Pop()
			if value.Truthy(v) {
				f.ip = int(vm.u16(code, f.ip))
			} else {
				f.ip += 3
			}
		case bytecode.POP_JMP_IF_FALSE:
			v := vm.stack.Pop()
			if !value.Truthy(v) {
				f.ip = int(vm.u16(code, f.ip))
			} else {
				f.ip += 3
			}
		case bytecode.GOTO:
			f.ip = int(vm.u16(code, f.ip))

		case bytecode.CALL_FUNCTION:
			fnIdx := int(code[f.ip+1])
			f.ip += 2
			fn := vm.co.Functions[fnIdx]
			// Arguments were pushed left to right, so the last argument
			// is on top. Pop them off and push them straight back on:
			// the callee's own STORE_LOCAL prologue (emitted by
			// VisitFunDecl) pops them into its locals in declared
			// parameter order, the same stack-mediated binding the
			// bytecode VM's source description uses.
			args := make([]value.Value, fn.Argc)
			for i := 0; i < fn.Argc; i++ {
				args[i] = vm.stack.Pop()
			}
			for _, a := range args {
				vm.stack.Push(a)
			}
			callee := &frame{fnIndex: fnIdx}
			vm.calls = append(vm.calls, callee)

		case bytecode.CALL_NATIVE:
			idx := int(code[f.ip+1])
			if idx < 0 || idx >= len(builtin.Table) {
				raise(typeErr("undefined native function"))
			}
			fn := builtin.Table[idx]
			arg := vm.stack.Pop()
			result, err := fn.Call(vm.ctx, []value.Value{arg})
			if err != nil {
				raise(err)
			}
			vm.stack.Push(result)
			f.ip += 2

		case bytecode.RETURN_VALUE:
			if len(vm.calls) == 1 {
				raise(diag.NewSyntaxErr(diag.NoLine, diag.NoColumn, "'return' outside function"))
			}
			v := vm.stack.Pop()
			vm.calls = vm.calls[:len(vm.calls)-1]
			vm.stack.Push(v)

		default:
			raise(typeErr("unknown opcode"))
		}
	}
}

func (vm *VM) u16(code []byte, ip int) uint16 {
	return binary.BigEndian.Uint16(code[ip+1:])
}

// binaryAdd handles string concatenation in addition to numeric
// addition, the one arithmetic opcode with a non-numeric case.
func (vm *VM) binaryAdd() {
	r := vm.stack.Pop()
	l := vm.stack.Pop()
	if ls, ok := l.(value.String); ok {
		rs, ok := r.(value.String)
		if !ok {
			raise(typeErr("Cannot add " + value.TypeName(r) + " to String"))
		}
		vm.stack.Push(value.String(ls.Raw() + rs.Raw()))
		return
	}
	ln, lok := l.(value.Number)
	rn, rok := r.(value.Number)
	if !lok || !rok {
		raise(typeErr("Addition not defined for type '" + value.TypeName(l) + "'"))
	}
	vm.stack.Push(value.AddNumbers(ln, rn))
}

// popNumbers pops the right then left operand off the stack, requiring
// both to be Numbers.
func (vm *VM) popNumbers(verb string) (value.Number, value.Number) {
	r := vm.stack.Pop()
	l := vm.stack.Pop()
	ln, lok := l.(value.Number)
	rn, rok := r.(value.Number)
	if !lok || !rok {
		raise(typeErr("Cannot " + verb + " " + value.TypeName(l) + " and " + value.TypeName(r)))
	}
	return ln, rn
}

// indexInto validates base is an Array and idx an in-range integral
// Number, mirroring the tree-walking interpreter's own indexInto.
func (vm *VM) indexInto(base, idx value.Value) (value.Array, int) {
	arr, ok := base.(value.Array)
	if !ok {
		raise(typeErr("Type '" + value.TypeName(base) + "' is not subscriptable"))
	}
	num, ok := idx.(value.Number)
	if !ok || !num.IsInt {
		raise(typeErr("Array indices must be integers, not '" + value.TypeName(idx) + "'"))
	}
	i := int(num.Int)
	if i < 0 || i >= arr.Len() {
		raise(indexErr())
	}
	return arr, i
}
