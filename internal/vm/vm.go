// Package vm implements the register-based virtual machine that executes a
// compiler.Program: one call stack of frames, each a flat register array
// plus an instruction pointer into the program or functions memory region,
// an explicit value stack for argument passing, and a slice of global
// values indexed by the compiler's slot assignment.
package vm

import (
	"fmt"
	"os"

	"github.com/nuua-io/nuua/internal/compiler"
	"github.com/nuua-io/nuua/internal/diagnostics"
	"github.com/nuua-io/nuua/internal/token"
)

// VM owns the mutable state shared by every frame during one run: globals
// and the argument-passing value stack. Frames themselves are plain local
// variables in exec's recursion, one per nested call, mirroring the way
// OP_CALL/OP_RETURN push and pop activation records in the source.
type VM struct {
	sink    *diagnostics.Sink
	program *compiler.Program
	globals []compiler.Value
	stack   []compiler.Value
}

func New(sink *diagnostics.Sink, program *compiler.Program) *VM {
	return &VM{
		sink:    sink,
		program: program,
		globals: make([]compiler.Value, len(program.GlobalOrder)),
	}
}

func (vm *VM) push(v compiler.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() compiler.Value {
	n := len(vm.stack)
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v
}

// Run executes the program region to populate globals (including the
// entry module's top-level function and variable bindings), then invokes the
// `main` global directly with args as a List(String), since the process
// argument vector is a runtime input the compiler cannot bake into a
// constant pool. It returns the process exit code.
func (vm *VM) Run(args []string) int {
	progFrame := make([]compiler.Value, vm.program.ProgramFrameSize)
	_, exitCode, _, ok := vm.exec(&vm.program.ProgramRegion, progFrame, 0)
	if !ok {
		return 1
	}

	slot, ok := vm.program.Globals["main"]
	if !ok {
		fmt.Fprintln(os.Stderr, "nuua: no 'main' binding in compiled program")
		return 1
	}
	mainFun := vm.globals[slot]
	if mainFun.Kind != compiler.ValueFun {
		fmt.Fprintln(os.Stderr, "nuua: 'main' is not a function")
		return 1
	}

	argValues := make([]compiler.Value, len(args))
	for i, a := range args {
		argValues[i] = compiler.StringValue(a)
	}
	frame := make([]compiler.Value, mainFun.Fun.FrameSize)
	if mainFun.Fun.ParamCount > 0 {
		frame[0] = compiler.ListValue(argValues)
	}
	_, _, _, ok = vm.exec(&vm.program.FunctionsRegion, frame, mainFun.Fun.EntryOffset)
	if !ok {
		return 1
	}
	return exitCode
}

// runtimeFault records a Runtime diagnostic at the source position of the
// instruction currently executing and signals the caller to unwind.
func (vm *VM) runtimeFault(region *compiler.Region, ip int, code, format string, args ...interface{}) {
	file, line, col := region.PositionAt(ip)
	vm.sink.Add(diagnostics.Runtime, code, token.Token{File: file, Line: line, Column: col}, format, args...)
}

// exec runs region starting at ip until a RETURN, EXIT or runtime fault.
// It returns the value carried by RETURN (zero value for EXIT), the exit
// code carried by EXIT (zero for RETURN), whether the frame ended via
// EXIT (as opposed to RETURN), and whether execution completed without a
// runtime fault.
func (vm *VM) exec(region *compiler.Region, regs []compiler.Value, ip int) (compiler.Value, int, bool, bool) {
	for {
		if ip < 0 || ip >= len(region.Code) {
			return compiler.NoneValue(), 0, false, true
		}
		op := compiler.Opcode(region.Code[ip])
		kinds := compiler.OperandKinds[op]
		start := ip
		operands := region.Code[ip+1 : ip+1+len(kinds)]
		next := ip + 1 + len(kinds)

		switch op {
		case compiler.OP_NOP:

		case compiler.OP_MOVE:
			regs[operands[0]] = regs[operands[1]].Clone()
		case compiler.OP_LOAD_C:
			regs[operands[0]] = region.Constants[operands[1]].Clone()
		case compiler.OP_LOAD_G:
			regs[operands[0]] = vm.globals[operands[1]].Clone()
		case compiler.OP_SET_G:
			vm.globals[operands[0]] = regs[operands[1]].Clone()

		case compiler.OP_PUSH:
			vm.push(regs[operands[0]].Clone())
		case compiler.OP_PUSH_C:
			vm.push(region.Constants[operands[0]].Clone())
		case compiler.OP_POP:
			regs[operands[0]] = vm.pop()

		case compiler.OP_CALL:
			fn := regs[operands[1]]
			args := make([]compiler.Value, fn.Fun.ParamCount)
			for i := fn.Fun.ParamCount - 1; i >= 0; i-- {
				args[i] = vm.pop()
			}
			callee := make([]compiler.Value, fn.Fun.FrameSize)
			copy(callee, args)
			ret, _, _, ok := vm.exec(&vm.program.FunctionsRegion, callee, fn.Fun.EntryOffset)
			if !ok {
				return compiler.NoneValue(), 0, false, false
			}
			regs[operands[0]] = ret
		case compiler.OP_RETURN:
			return regs[operands[0]].Clone(), 0, false, true
		case compiler.OP_EXIT:
			return compiler.NoneValue(), int(operands[0]), true, true

		case compiler.OP_FJUMP:
			next = next + int(operands[0])
		case compiler.OP_BJUMP:
			next = next - int(operands[0])
		case compiler.OP_CFJUMP:
			if truthy(regs[operands[0]]) {
				next = next + int(operands[1])
			}
		case compiler.OP_CBJUMP:
			if truthy(regs[operands[0]]) {
				next = next - int(operands[1])
			}
		case compiler.OP_CFNJUMP:
			if !truthy(regs[operands[0]]) {
				next = next + int(operands[1])
			}
		case compiler.OP_CBNJUMP:
			if !truthy(regs[operands[0]]) {
				next = next - int(operands[1])
			}

		case compiler.OP_LPUSH:
			c := regs[operands[0]]
			c.List = append(c.List, regs[operands[1]].Clone())
			regs[operands[0]] = c
		case compiler.OP_LPOP:
			c := regs[operands[0]]
			if len(c.List) == 0 {
				vm.runtimeFault(region, start, diagnostics.RuntimeIndexOOB, "pop from empty list")
				return compiler.NoneValue(), 0, false, false
			}
			last := c.List[len(c.List)-1]
			c.List = c.List[:len(c.List)-1]
			regs[operands[0]] = c
			regs[operands[1]] = last
		case compiler.OP_LGET:
			idx := int(regs[operands[2]].Int)
			list := regs[operands[1]].List
			if idx < 0 || idx >= len(list) {
				vm.runtimeFault(region, start, diagnostics.RuntimeIndexOOB, "list index %d out of bounds (len %d)", idx, len(list))
				return compiler.NoneValue(), 0, false, false
			}
			regs[operands[0]] = list[idx].Clone()
		case compiler.OP_LSET:
			idx := int(regs[operands[1]].Int)
			list := regs[operands[0]].List
			if idx < 0 || idx >= len(list) {
				vm.runtimeFault(region, start, diagnostics.RuntimeIndexOOB, "list index %d out of bounds (len %d)", idx, len(list))
				return compiler.NoneValue(), 0, false, false
			}
			list[idx] = regs[operands[2]].Clone()
		case compiler.OP_LDELETE:
			idx := int(regs[operands[1]].Int)
			c := regs[operands[0]]
			if idx < 0 || idx >= len(c.List) {
				vm.runtimeFault(region, start, diagnostics.RuntimeIndexOOB, "list index %d out of bounds (len %d)", idx, len(c.List))
				return compiler.NoneValue(), 0, false, false
			}
			c.List = append(c.List[:idx], c.List[idx+1:]...)
			regs[operands[0]] = c

		case compiler.OP_DGET:
			key := regs[operands[2]].Str
			d := regs[operands[1]].DictV
			val, ok := d.Values[key]
			if !ok {
				vm.runtimeFault(region, start, diagnostics.RuntimeKeyMissing, "dictionary has no key %q", key)
				return compiler.NoneValue(), 0, false, false
			}
			regs[operands[0]] = val.Clone()
		case compiler.OP_DSET:
			regs[operands[0]].DictV.Set(regs[operands[1]].Str, regs[operands[2]].Clone())
		case compiler.OP_DDELETE:
			regs[operands[0]].DictV.Delete(regs[operands[1]].Str)

		case compiler.OP_SGET:
			runes := []rune(regs[operands[1]].Str)
			idx := int(regs[operands[2]].Int)
			if idx < 0 || idx >= len(runes) {
				vm.runtimeFault(region, start, diagnostics.RuntimeIndexOOB, "string index %d out of bounds (len %d)", idx, len(runes))
				return compiler.NoneValue(), 0, false, false
			}
			regs[operands[0]] = compiler.StringValue(string(runes[idx]))
		case compiler.OP_SSET:
			runes := []rune(regs[operands[0]].Str)
			idx := int(regs[operands[1]].Int)
			if idx < 0 || idx >= len(runes) {
				vm.runtimeFault(region, start, diagnostics.RuntimeIndexOOB, "string index %d out of bounds (len %d)", idx, len(runes))
				return compiler.NoneValue(), 0, false, false
			}
			replacement := []rune(regs[operands[2]].Str)
			if len(replacement) > 0 {
				runes[idx] = replacement[0]
			}
			regs[operands[0]].Str = string(runes)
		case compiler.OP_SDELETE:
			runes := []rune(regs[operands[0]].Str)
			idx := int(regs[operands[1]].Int)
			if idx < 0 || idx >= len(runes) {
				vm.runtimeFault(region, start, diagnostics.RuntimeIndexOOB, "string index %d out of bounds (len %d)", idx, len(runes))
				return compiler.NoneValue(), 0, false, false
			}
			runes = append(runes[:idx], runes[idx+1:]...)
			regs[operands[0]].Str = string(runes)

		case compiler.OP_LEN:
			regs[operands[0]] = compiler.IntValue(int64(length(regs[operands[1]])))
		case compiler.OP_DENTRY:
			d := regs[operands[2]].DictV
			idx := int(regs[operands[3]].Int)
			if idx < 0 || idx >= len(d.Keys) {
				vm.runtimeFault(region, start, diagnostics.RuntimeIndexOOB, "dict entry %d out of bounds (len %d)", idx, len(d.Keys))
				return compiler.NoneValue(), 0, false, false
			}
			key := d.Keys[idx]
			regs[operands[0]] = compiler.StringValue(key)
			regs[operands[1]] = d.Values[key].Clone()

		case compiler.OP_PRINT:
			fmt.Println(regs[operands[0]].Format())
		case compiler.OP_PRINT_C:
			fmt.Println(region.Constants[operands[0]].Format())

		case compiler.OP_SSLICE, compiler.OP_LSLICE:
			regs[operands[0]] = vm.execSlice(op, regs[operands[1]], regs[operands[2]], regs[operands[3]], regs[operands[4]])
		case compiler.OP_RANGEE:
			regs[operands[0]] = buildRange(regs[operands[1]].Int, regs[operands[2]].Int, false)
		case compiler.OP_RANGEI:
			regs[operands[0]] = buildRange(regs[operands[1]].Int, regs[operands[2]].Int, true)

		case compiler.OP_AND:
			regs[operands[0]] = compiler.BoolValue(regs[operands[1]].Bool && regs[operands[2]].Bool)
		case compiler.OP_OR:
			regs[operands[0]] = compiler.BoolValue(regs[operands[1]].Bool || regs[operands[2]].Bool)

		default:
			if !vm.execArith(region, start, op, operands, regs) {
				return compiler.NoneValue(), 0, false, false
			}
		}

		ip = next
	}
}

func truthy(v compiler.Value) bool { return v.Kind == compiler.ValueBool && v.Bool }

func length(v compiler.Value) int {
	switch v.Kind {
	case compiler.ValueList:
		return len(v.List)
	case compiler.ValueDict:
		return len(v.DictV.Keys)
	case compiler.ValueString:
		return len([]rune(v.Str))
	default:
		return 0
	}
}

func buildRange(start, end int64, inclusive bool) compiler.Value {
	if inclusive {
		end++
	}
	if end <= start {
		return compiler.ListValue(nil)
	}
	out := make([]compiler.Value, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, compiler.IntValue(i))
	}
	return compiler.ListValue(out)
}
