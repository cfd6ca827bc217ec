package vm

import (
	"strconv"
	"strings"

	"github.com/nuua-io/nuua/internal/compiler"
	"github.com/nuua-io/nuua/internal/diagnostics"
)

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// execArith handles every monomorphized binary/unary/cast opcode. It
// returns false after reporting a runtime fault (currently only division
// by zero, the only arithmetic opcode family that can fail).
func (vm *VM) execArith(region *compiler.Region, start int, op compiler.Opcode, operands []int32, regs []compiler.Value) bool {
	dst := operands[0]

	switch op {
	case compiler.OP_ADD_INT:
		regs[dst] = compiler.IntValue(regs[operands[1]].Int + regs[operands[2]].Int)
	case compiler.OP_ADD_FLOAT:
		regs[dst] = compiler.FloatValue(regs[operands[1]].Float + regs[operands[2]].Float)
	case compiler.OP_ADD_STRING:
		regs[dst] = compiler.StringValue(regs[operands[1]].Str + regs[operands[2]].Str)
	case compiler.OP_ADD_BOOL:
		regs[dst] = compiler.IntValue(boolToInt(regs[operands[1]].Bool) + boolToInt(regs[operands[2]].Bool))
	case compiler.OP_ADD_LIST:
		out := append(append([]compiler.Value{}, regs[operands[1]].List...), regs[operands[2]].List...)
		regs[dst] = compiler.ListValue(out)
	case compiler.OP_ADD_DICT:
		out := regs[operands[1]].DictV.Clone()
		r := regs[operands[2]].DictV
		for _, k := range r.Keys {
			out.Set(k, r.Values[k].Clone())
		}
		regs[dst] = compiler.DictValue(out)

	case compiler.OP_SUB_INT:
		regs[dst] = compiler.IntValue(regs[operands[1]].Int - regs[operands[2]].Int)
	case compiler.OP_SUB_FLOAT:
		regs[dst] = compiler.FloatValue(regs[operands[1]].Float - regs[operands[2]].Float)
	case compiler.OP_SUB_BOOL:
		regs[dst] = compiler.IntValue(boolToInt(regs[operands[1]].Bool) - boolToInt(regs[operands[2]].Bool))

	case compiler.OP_MUL_INT:
		regs[dst] = compiler.IntValue(regs[operands[1]].Int * regs[operands[2]].Int)
	case compiler.OP_MUL_FLOAT:
		regs[dst] = compiler.FloatValue(regs[operands[1]].Float * regs[operands[2]].Float)
	case compiler.OP_MUL_BOOL:
		regs[dst] = compiler.IntValue(boolToInt(regs[operands[1]].Bool) * boolToInt(regs[operands[2]].Bool))
	case compiler.OP_MUL_INT_STRING:
		regs[dst] = compiler.StringValue(repeatString(regs[operands[2]].Str, regs[operands[1]].Int))
	case compiler.OP_MUL_STRING_INT:
		regs[dst] = compiler.StringValue(repeatString(regs[operands[1]].Str, regs[operands[2]].Int))
	case compiler.OP_MUL_INT_LIST:
		regs[dst] = compiler.ListValue(repeatList(regs[operands[2]].List, regs[operands[1]].Int))
	case compiler.OP_MUL_LIST_INT:
		regs[dst] = compiler.ListValue(repeatList(regs[operands[1]].List, regs[operands[2]].Int))

	case compiler.OP_DIV_INT:
		if regs[operands[2]].Int == 0 {
			vm.runtimeFault(region, start, diagnostics.RuntimeDivByZero, "integer division by zero")
			return false
		}
		regs[dst] = compiler.FloatValue(float64(regs[operands[1]].Int) / float64(regs[operands[2]].Int))
	case compiler.OP_DIV_FLOAT:
		if regs[operands[2]].Float == 0 {
			vm.runtimeFault(region, start, diagnostics.RuntimeDivByZero, "float division by zero")
			return false
		}
		regs[dst] = compiler.FloatValue(regs[operands[1]].Float / regs[operands[2]].Float)
	case compiler.OP_DIV_STRING_INT:
		n := regs[operands[2]].Int
		if n <= 0 {
			vm.runtimeFault(region, start, diagnostics.RuntimeDivByZero, "string division by non-positive size %d", n)
			return false
		}
		regs[dst] = compiler.ListValue(chunkString(regs[operands[1]].Str, int(n)))
	case compiler.OP_DIV_LIST_INT:
		n := regs[operands[2]].Int
		if n <= 0 {
			vm.runtimeFault(region, start, diagnostics.RuntimeDivByZero, "list division by non-positive size %d", n)
			return false
		}
		regs[dst] = compiler.ListValue(chunkList(regs[operands[1]].List, int(n)))

	case compiler.OP_EQ_INT, compiler.OP_EQ_FLOAT, compiler.OP_EQ_STRING, compiler.OP_EQ_BOOL, compiler.OP_EQ_LIST, compiler.OP_EQ_DICT:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Equal(regs[operands[2]]))
	case compiler.OP_NEQ_INT, compiler.OP_NEQ_FLOAT, compiler.OP_NEQ_STRING, compiler.OP_NEQ_BOOL, compiler.OP_NEQ_LIST, compiler.OP_NEQ_DICT:
		regs[dst] = compiler.BoolValue(!regs[operands[1]].Equal(regs[operands[2]]))

	case compiler.OP_LT_INT:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Int < regs[operands[2]].Int)
	case compiler.OP_LT_FLOAT:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Float < regs[operands[2]].Float)
	case compiler.OP_LT_STRING:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Str < regs[operands[2]].Str)
	case compiler.OP_LT_BOOL:
		regs[dst] = compiler.BoolValue(boolToInt(regs[operands[1]].Bool) < boolToInt(regs[operands[2]].Bool))

	case compiler.OP_LTE_INT:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Int <= regs[operands[2]].Int)
	case compiler.OP_LTE_FLOAT:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Float <= regs[operands[2]].Float)
	case compiler.OP_LTE_STRING:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Str <= regs[operands[2]].Str)
	case compiler.OP_LTE_BOOL:
		regs[dst] = compiler.BoolValue(boolToInt(regs[operands[1]].Bool) <= boolToInt(regs[operands[2]].Bool))

	case compiler.OP_GT_INT:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Int > regs[operands[2]].Int)
	case compiler.OP_GT_FLOAT:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Float > regs[operands[2]].Float)
	case compiler.OP_GT_STRING:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Str > regs[operands[2]].Str)
	case compiler.OP_GT_BOOL:
		regs[dst] = compiler.BoolValue(boolToInt(regs[operands[1]].Bool) > boolToInt(regs[operands[2]].Bool))

	case compiler.OP_GTE_INT:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Int >= regs[operands[2]].Int)
	case compiler.OP_GTE_FLOAT:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Float >= regs[operands[2]].Float)
	case compiler.OP_GTE_STRING:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Str >= regs[operands[2]].Str)
	case compiler.OP_GTE_BOOL:
		regs[dst] = compiler.BoolValue(boolToInt(regs[operands[1]].Bool) >= boolToInt(regs[operands[2]].Bool))

	case compiler.OP_NEG_INT:
		regs[dst] = compiler.IntValue(-regs[operands[1]].Int)
	case compiler.OP_NEG_FLOAT:
		regs[dst] = compiler.FloatValue(-regs[operands[1]].Float)
	case compiler.OP_NEG_BOOL:
		regs[dst] = compiler.IntValue(-boolToInt(regs[operands[1]].Bool))
	case compiler.OP_POS_INT:
		regs[dst] = compiler.IntValue(regs[operands[1]].Int)
	case compiler.OP_POS_FLOAT:
		regs[dst] = compiler.FloatValue(regs[operands[1]].Float)
	case compiler.OP_POS_BOOL:
		regs[dst] = compiler.IntValue(boolToInt(regs[operands[1]].Bool))
	case compiler.OP_NOT_BOOL:
		regs[dst] = compiler.BoolValue(!regs[operands[1]].Bool)

	case compiler.OP_CAST_INT_FLOAT:
		regs[dst] = compiler.FloatValue(float64(regs[operands[1]].Int))
	case compiler.OP_CAST_INT_BOOL:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Int != 0)
	case compiler.OP_CAST_INT_STRING:
		regs[dst] = compiler.StringValue(strconv.FormatInt(regs[operands[1]].Int, 10))
	case compiler.OP_CAST_FLOAT_INT:
		regs[dst] = compiler.IntValue(int64(regs[operands[1]].Float))
	case compiler.OP_CAST_FLOAT_BOOL:
		regs[dst] = compiler.BoolValue(regs[operands[1]].Float != 0)
	case compiler.OP_CAST_FLOAT_STRING:
		regs[dst] = compiler.StringValue(regs[operands[1]].Format())
	case compiler.OP_CAST_BOOL_INT:
		regs[dst] = compiler.IntValue(boolToInt(regs[operands[1]].Bool))
	case compiler.OP_CAST_BOOL_FLOAT:
		regs[dst] = compiler.FloatValue(boolToFloat(regs[operands[1]].Bool))
	case compiler.OP_CAST_BOOL_STRING:
		regs[dst] = compiler.StringValue(regs[operands[1]].Format())
	case compiler.OP_CAST_LIST_BOOL:
		regs[dst] = compiler.BoolValue(len(regs[operands[1]].List) > 0)
	case compiler.OP_CAST_LIST_STRING:
		regs[dst] = compiler.StringValue(regs[operands[1]].Format())
	case compiler.OP_CAST_LIST_INT:
		regs[dst] = compiler.IntValue(int64(len(regs[operands[1]].List)))
	case compiler.OP_CAST_DICT_BOOL:
		regs[dst] = compiler.BoolValue(len(regs[operands[1]].DictV.Keys) > 0)
	case compiler.OP_CAST_DICT_STRING:
		regs[dst] = compiler.StringValue(regs[operands[1]].Format())
	case compiler.OP_CAST_DICT_INT:
		regs[dst] = compiler.IntValue(int64(len(regs[operands[1]].DictV.Keys)))
	case compiler.OP_CAST_STRING_BOOL:
		regs[dst] = compiler.BoolValue(len(regs[operands[1]].Str) > 0)
	case compiler.OP_CAST_STRING_INT:
		n, err := strconv.ParseInt(strings.TrimSpace(regs[operands[1]].Str), 10, 64)
		if err != nil {
			n = 0
		}
		regs[dst] = compiler.IntValue(n)

	default:
		regs[dst] = compiler.NoneValue()
	}
	return true
}

func repeatString(s string, n int64) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, int(n))
}

func repeatList(l []compiler.Value, n int64) []compiler.Value {
	if n <= 0 {
		return nil
	}
	out := make([]compiler.Value, 0, int64(len(l))*n)
	for i := int64(0); i < n; i++ {
		for _, v := range l {
			out = append(out, v.Clone())
		}
	}
	return out
}

func chunkString(s string, n int) []compiler.Value {
	runes := []rune(s)
	var out []compiler.Value
	for i := 0; i < len(runes); i += n {
		end := i + n
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, compiler.StringValue(string(runes[i:end])))
	}
	return out
}

func chunkList(l []compiler.Value, n int) []compiler.Value {
	var out []compiler.Value
	for i := 0; i < len(l); i += n {
		end := i + n
		if end > len(l) {
			end = len(l)
		}
		chunk := make([]compiler.Value, end-i)
		for j := i; j < end; j++ {
			chunk[j-i] = l[j].Clone()
		}
		out = append(out, compiler.ListValue(chunk))
	}
	return out
}

// execSlice implements Python-like stepped slicing with clamped bounds,
// shared by SSLICE and LSLICE (the opcode only changes which accessor
// pulls elements and which constructor rebuilds the result).
func (vm *VM) execSlice(op compiler.Opcode, target, startV, endV, stepV compiler.Value) compiler.Value {
	step := stepV.Int
	if step == 0 {
		step = 1
	}
	n := length(target)
	start := clampIndex(startV.Int, n)
	end := clampIndex(endV.Int, n)

	if op == compiler.OP_SSLICE {
		runes := []rune(target.Str)
		var out []rune
		if step > 0 {
			for i := start; i < end; i += int(step) {
				out = append(out, runes[i])
			}
		} else {
			for i := start; i > end; i += int(step) {
				out = append(out, runes[i])
			}
		}
		return compiler.StringValue(string(out))
	}

	var out []compiler.Value
	if step > 0 {
		for i := start; i < end; i += int(step) {
			out = append(out, target.List[i].Clone())
		}
	} else {
		for i := start; i > end; i += int(step) {
			out = append(out, target.List[i].Clone())
		}
	}
	return compiler.ListValue(out)
}

func clampIndex(i int64, n int) int {
	if i < 0 {
		i = 0
	}
	if int(i) > n {
		i = int64(n)
	}
	return int(i)
}
