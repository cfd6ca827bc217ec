package compiler

import (
	"fmt"

	"github.com/nuua-io/nuua/internal/analyzer"
	"github.com/nuua-io/nuua/internal/ast"
	"github.com/nuua-io/nuua/internal/token"
	"github.com/nuua-io/nuua/internal/types"
)

// compileExpr lowers e into region/frame, returning the register holding
// its value and whether the caller owns that register. owned=false marks a
// register that belongs to a named local variable's binding for its whole
// lifetime; the caller must leave it alone rather than freeing it.
func (c *Compiler) compileExpr(e ast.Expression, scope *analyzer.Block, region *Region, frame *FrameInfo) (int, bool) {
	switch ex := e.(type) {
	case *ast.Integer:
		dst := frame.GetRegister(false)
		idx := region.addConstant(IntValue(ex.Value))
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), idx)
		return dst, true

	case *ast.Float:
		dst := frame.GetRegister(false)
		idx := region.addConstant(FloatValue(ex.Value))
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), idx)
		return dst, true

	case *ast.String:
		dst := frame.GetRegister(false)
		idx := region.addConstant(StringValue(ex.Value))
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), idx)
		return dst, true

	case *ast.Boolean:
		dst := frame.GetRegister(false)
		idx := region.addConstant(BoolValue(ex.Value))
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), idx)
		return dst, true

	case *ast.Group:
		return c.compileExpr(ex.Inner, scope, region, frame)

	case *ast.Variable:
		vb, ok := scope.LookupVariable(ex.Name)
		if !ok {
			return frame.GetRegister(false), true
		}
		ex.IsGlobal = vb.IsGlobal
		ex.Register = vb.Register
		if vb.IsGlobal {
			dst := frame.GetRegister(false)
			region.emit(OP_LOAD_G, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), int32(vb.Register))
			return dst, true
		}
		return vb.Register, false

	case *ast.List:
		dst := frame.GetRegister(false)
		idx := region.addConstant(ListValue(nil))
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), idx)
		for _, el := range ex.Elements {
			elReg, owned := c.compileExpr(el, scope, region, frame)
			region.emit(OP_LPUSH, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), int32(elReg))
			if owned {
				frame.FreeRegister(elReg, false)
			}
		}
		return dst, true

	case *ast.Dictionary:
		dst := frame.GetRegister(false)
		idx := region.addConstant(DictValue(NewDict()))
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), idx)
		for _, k := range ex.Keys {
			c.emitMapEntry(ex.Token, k, ex.Values[k], dst, scope, region, frame)
		}
		return dst, true

	case *ast.Object:
		dst := frame.GetRegister(false)
		idx := region.addConstant(DictValue(NewDict()))
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), idx)
		for _, k := range ex.Keys {
			c.emitMapEntry(ex.Token, k, ex.Arguments[k], dst, scope, region, frame)
		}
		c.emitObjectMethods(ex, dst, scope, region, frame)
		return dst, true

	case *ast.Cast:
		srcReg, owned := c.compileExpr(ex.Expr, scope, region, frame)
		op, ok := lookupVariantOpcode("CAST", ex.Variant)
		if !ok {
			return srcReg, owned
		}
		dst := frame.GetRegister(false)
		region.emit(op, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), int32(srcReg))
		if owned {
			frame.FreeRegister(srcReg, false)
		}
		return dst, true

	case *ast.Unary:
		operandReg, owned := c.compileExpr(ex.Right, scope, region, frame)
		family := unaryFamily(ex.Op)
		op, ok := lookupVariantOpcode(family, ex.Variant)
		dst := frame.GetRegister(false)
		if ok {
			region.emit(op, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), int32(operandReg))
		}
		if owned {
			frame.FreeRegister(operandReg, false)
		}
		return dst, true

	case *ast.Binary:
		leftReg, leftOwned := c.compileExpr(ex.Left, scope, region, frame)
		rightReg, rightOwned := c.compileExpr(ex.Right, scope, region, frame)
		family := binaryFamily(ex.Op)
		op, ok := lookupVariantOpcode(family, ex.Variant)
		dst := frame.GetRegister(false)
		if ok {
			region.emit(op, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), int32(leftReg), int32(rightReg))
		}
		if leftOwned {
			frame.FreeRegister(leftReg, false)
		}
		if rightOwned {
			frame.FreeRegister(rightReg, false)
		}
		return dst, true

	case *ast.Logical:
		return c.compileLogical(ex, scope, region, frame)

	case *ast.Assign:
		return c.compileAssign(ex, scope, region, frame)

	case *ast.Call:
		return c.compileCall(ex, scope, region, frame)

	case *ast.Access:
		targetReg, targetOwned := c.compileExpr(ex.Target, scope, region, frame)
		idxReg, idxOwned := c.compileExpr(ex.Index, scope, region, frame)
		dst := frame.GetRegister(false)
		op := accessGetOpcode(ex.Kind)
		region.emit(op, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), int32(targetReg), int32(idxReg))
		if targetOwned {
			frame.FreeRegister(targetReg, false)
		}
		if idxOwned {
			frame.FreeRegister(idxReg, false)
		}
		return dst, true

	case *ast.Property:
		objReg, objOwned := c.compileExpr(ex.Object, scope, region, frame)
		keyReg := frame.GetRegister(false)
		keyIdx := region.addConstant(StringValue(ex.Name))
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(keyReg), keyIdx)
		dst := frame.GetRegister(false)
		region.emit(OP_DGET, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), int32(objReg), int32(keyReg))
		frame.FreeRegister(keyReg, false)
		if objOwned {
			frame.FreeRegister(objReg, false)
		}
		return dst, true

	case *ast.Slice:
		return c.compileSlice(ex, scope, region, frame)

	case *ast.Range:
		startReg, startOwned := c.compileExpr(ex.Start, scope, region, frame)
		endReg, endOwned := c.compileExpr(ex.End, scope, region, frame)
		dst := frame.GetRegister(false)
		op := OP_RANGEE
		if ex.Inclusive {
			op = OP_RANGEI
		}
		region.emit(op, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), int32(startReg), int32(endReg))
		if startOwned {
			frame.FreeRegister(startReg, false)
		}
		if endOwned {
			frame.FreeRegister(endReg, false)
		}
		return dst, true
	}

	panic(fmt.Sprintf("compiler: unhandled expression %T", e))
}

// emitObjectMethods stores each of the object's class methods into its
// backing dict under the method name, as a Fun value, so property access
// resolves methods the same way it resolves fields (OP_DGET). The method
// itself is compiled once, lazily, the first time any object of its class
// is constructed.
func (c *Compiler) emitObjectMethods(ex *ast.Object, dst int, scope *analyzer.Block, region *Region, frame *FrameInfo) {
	cb, ok := scope.LookupClass(ex.ClassName)
	if !ok {
		return
	}
	for name, vb := range cb.Members.Variables {
		fn, ok := vb.DefiningNode.(*ast.Function)
		if !ok {
			continue
		}
		c.enqueueFunction(fn)
		constIdx := region.addConstant(Value{Kind: ValueFun, Fun: FunValue{Name: fn.Name}})
		c.funValues = append(c.funValues, funValueBinding{fn: fn, constRegion: region, constIndex: int(constIdx)})

		methodReg := frame.GetRegister(false)
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(methodReg), constIdx)
		keyReg := frame.GetRegister(false)
		keyIdx := region.addConstant(StringValue(name))
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(keyReg), keyIdx)
		region.emit(OP_DSET, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), int32(keyReg), int32(methodReg))
		frame.FreeRegister(keyReg, false)
		frame.FreeRegister(methodReg, false)
	}
}

func (c *Compiler) emitMapEntry(tok token.Token, key string, valExpr ast.Expression, dst int, scope *analyzer.Block, region *Region, frame *FrameInfo) {
	valReg, owned := c.compileExpr(valExpr, scope, region, frame)
	keyReg := frame.GetRegister(false)
	keyIdx := region.addConstant(StringValue(key))
	region.emit(OP_LOAD_C, tok.File, tok.Line, tok.Column, int32(keyReg), keyIdx)
	region.emit(OP_DSET, tok.File, tok.Line, tok.Column, int32(dst), int32(keyReg), int32(valReg))
	frame.FreeRegister(keyReg, false)
	if owned {
		frame.FreeRegister(valReg, false)
	}
}

// compileLogical implements true short-circuit evaluation: the right side
// is only compiled into bytecode that runs conditionally, via the same
// conditional-jump opcodes the if/while compilers use.
func (c *Compiler) compileLogical(ex *ast.Logical, scope *analyzer.Block, region *Region, frame *FrameInfo) (int, bool) {
	leftReg, leftOwned := c.compileExpr(ex.Left, scope, region, frame)
	result := frame.GetRegister(true)
	region.emit(OP_MOVE, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(result), int32(leftReg))
	if leftOwned {
		frame.FreeRegister(leftReg, false)
	}

	var skipPos int
	if ex.Op == "or" {
		skipPos = region.emit(OP_CFJUMP, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(result), 0)
	} else {
		skipPos = region.emit(OP_CFNJUMP, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(result), 0)
	}

	rightReg, rightOwned := c.compileExpr(ex.Right, scope, region, frame)
	region.emit(OP_MOVE, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(result), int32(rightReg))
	if rightOwned {
		frame.FreeRegister(rightReg, false)
	}
	c.patchForward(region, skipPos, 2)
	return result, true
}

func (c *Compiler) compileAssign(ex *ast.Assign, scope *analyzer.Block, region *Region, frame *FrameInfo) (int, bool) {
	valReg, valOwned := c.compileExpr(ex.Value, scope, region, frame)

	switch target := ex.Target.(type) {
	case *ast.Variable:
		vb, ok := scope.LookupVariable(target.Name)
		if !ok {
			return valReg, valOwned
		}
		if vb.IsGlobal {
			region.emit(OP_SET_G, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(vb.Register), int32(valReg))
			return valReg, valOwned
		}
		region.emit(OP_MOVE, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(vb.Register), int32(valReg))
		if valOwned {
			frame.FreeRegister(valReg, false)
		}
		return vb.Register, false

	case *ast.Access:
		containerReg, containerOwned := c.compileExpr(target.Target, scope, region, frame)
		idxReg, idxOwned := c.compileExpr(target.Index, scope, region, frame)
		op := accessSetOpcode(target.Kind)
		region.emit(op, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(containerReg), int32(idxReg), int32(valReg))
		if idxOwned {
			frame.FreeRegister(idxReg, false)
		}
		if containerOwned {
			frame.FreeRegister(containerReg, false)
		}
		return valReg, valOwned

	case *ast.Property:
		objReg, objOwned := c.compileExpr(target.Object, scope, region, frame)
		keyReg := frame.GetRegister(false)
		keyIdx := region.addConstant(StringValue(target.Name))
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(keyReg), keyIdx)
		region.emit(OP_DSET, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(objReg), int32(keyReg), int32(valReg))
		frame.FreeRegister(keyReg, false)
		if objOwned {
			frame.FreeRegister(objReg, false)
		}
		return valReg, valOwned
	}

	return valReg, valOwned
}

func (c *Compiler) compileCall(ex *ast.Call, scope *analyzer.Block, region *Region, frame *FrameInfo) (int, bool) {
	funReg, funOwned := c.compileExpr(ex.Target, scope, region, frame)

	var argRegs []int
	var argOwned []bool
	for _, a := range ex.Arguments {
		reg, owned := c.compileExpr(a, scope, region, frame)
		argRegs = append(argRegs, reg)
		argOwned = append(argOwned, owned)
		region.emit(OP_PUSH, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(reg))
	}
	for i := len(argRegs) - 1; i >= 0; i-- {
		if argOwned[i] {
			frame.FreeRegister(argRegs[i], false)
		}
	}

	dst := frame.GetRegister(false)
	region.emit(OP_CALL, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), int32(funReg))
	if funOwned {
		frame.FreeRegister(funReg, false)
	}
	return dst, true
}

func (c *Compiler) compileSlice(ex *ast.Slice, scope *analyzer.Block, region *Region, frame *FrameInfo) (int, bool) {
	targetReg, targetOwned := c.compileExpr(ex.Target, scope, region, frame)

	var startReg int
	if ex.Start != nil {
		var owned bool
		startReg, owned = c.compileExpr(ex.Start, scope, region, frame)
		defer func() {
			if owned {
				frame.FreeRegister(startReg, false)
			}
		}()
	} else {
		startReg = frame.GetRegister(false)
		idx := region.addConstant(IntValue(0))
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(startReg), idx)
		defer frame.FreeRegister(startReg, false)
	}

	var endReg int
	if ex.End != nil {
		var owned bool
		endReg, owned = c.compileExpr(ex.End, scope, region, frame)
		defer func() {
			if owned {
				frame.FreeRegister(endReg, false)
			}
		}()
	} else {
		endReg = frame.GetRegister(false)
		region.emit(OP_LEN, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(endReg), int32(targetReg))
		defer frame.FreeRegister(endReg, false)
	}

	var stepReg int
	if ex.Step != nil {
		var owned bool
		stepReg, owned = c.compileExpr(ex.Step, scope, region, frame)
		defer func() {
			if owned {
				frame.FreeRegister(stepReg, false)
			}
		}()
	} else {
		stepReg = frame.GetRegister(false)
		idx := region.addConstant(IntValue(1))
		region.emit(OP_LOAD_C, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(stepReg), idx)
		defer frame.FreeRegister(stepReg, false)
	}

	dst := frame.GetRegister(false)
	op := OP_LSLICE
	if !ex.IsList {
		op = OP_SSLICE
	}
	region.emit(op, ex.Token.File, ex.Token.Line, ex.Token.Column, int32(dst), int32(targetReg), int32(startReg), int32(endReg), int32(stepReg))
	if targetOwned {
		frame.FreeRegister(targetReg, false)
	}
	return dst, true
}

// emitZeroValue loads t's default value into dst, used for declarations
// without an initializer.
func (c *Compiler) emitZeroValue(t types.Type, region *Region, tok token.Token, dst int) {
	var v Value
	switch t.Kind {
	case types.Int:
		v = IntValue(0)
	case types.Float:
		v = FloatValue(0)
	case types.Bool:
		v = BoolValue(false)
	case types.String:
		v = StringValue("")
	case types.List:
		v = ListValue(nil)
	case types.Dict:
		v = DictValue(NewDict())
	default:
		v = NoneValue()
	}
	idx := region.addConstant(v)
	region.emit(OP_LOAD_C, tok.File, tok.Line, tok.Column, int32(dst), idx)
}

func accessGetOpcode(k ast.AccessKind) Opcode {
	switch k {
	case ast.AccessList:
		return OP_LGET
	case ast.AccessDict:
		return OP_DGET
	default:
		return OP_SGET
	}
}

func accessSetOpcode(k ast.AccessKind) Opcode {
	switch k {
	case ast.AccessList:
		return OP_LSET
	case ast.AccessDict:
		return OP_DSET
	default:
		return OP_SSET
	}
}

func binaryFamily(op types.BinaryOp) string {
	switch op {
	case types.Add:
		return "ADD"
	case types.Sub:
		return "SUB"
	case types.Mul:
		return "MUL"
	case types.Div:
		return "DIV"
	case types.Eq:
		return "EQ"
	case types.Neq:
		return "NEQ"
	case types.Lt:
		return "LT"
	case types.Lte:
		return "LTE"
	case types.Gt:
		return "GT"
	case types.Gte:
		return "GTE"
	default:
		return ""
	}
}

func unaryFamily(op string) string {
	switch op {
	case "-":
		return "NEG"
	case "+":
		return "POS"
	case "!":
		return "NOT"
	default:
		return ""
	}
}

func lookupVariantOpcode(family string, variant types.Variant) (Opcode, bool) {
	op, ok := variantOpcodes[family+"."+string(variant)]
	return op, ok
}
