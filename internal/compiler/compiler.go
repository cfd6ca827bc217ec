package compiler

import (
	"github.com/nuua-io/nuua/internal/analyzer"
	"github.com/nuua-io/nuua/internal/ast"
	"github.com/nuua-io/nuua/internal/diagnostics"
	"github.com/nuua-io/nuua/internal/module"
	"github.com/nuua-io/nuua/internal/token"
	"github.com/nuua-io/nuua/internal/types"
)

// funValueBinding tracks one function-constant placeholder so its
// EntryOffset/FrameSize can be patched in once the function is actually
// compiled; functions referenced only through `use` are drained lazily,
// after the statement that first names them.
type funValueBinding struct {
	fn          *ast.Function
	constRegion *Region
	constIndex  int
}

// Compiler walks an analyzed module and emits its three memory regions.
// It mirrors the analyzer's own two-pass, block-by-block walk so that it
// can reuse the *analyzer.VariableBinding objects analysis produced:
// Register/IsGlobal are filled in here, at the point a name is bound to
// storage, rather than re-resolved from scratch.
type Compiler struct {
	sink      *diagnostics.Sink
	prog      *Program
	pending   []*ast.Function
	done      map[*ast.Function]bool
	funValues []funValueBinding
}

func New(sink *diagnostics.Sink) *Compiler {
	return &Compiler{sink: sink, prog: NewProgram(), done: make(map[*ast.Function]bool)}
}

// CompileModule compiles mod's top-level statements into the program
// region, then drains the queue of functions referenced along the way
// into the functions region. The entry module's program region ends in
// an OP_EXIT.
func (c *Compiler) CompileModule(mod *module.Module, top *analyzer.Block) *Program {
	frame := NewFrameInfo()
	region := &c.prog.ProgramRegion
	c.compileStatements(mod.Code, top, region, frame, true)
	c.drainPending()

	exitTok := lastToken(mod.Code)
	region.emit(OP_EXIT, exitTok.File, exitTok.Line, exitTok.Column, 0)
	c.prog.ProgramFrameSize = frame.Size()
	return c.prog
}

func lastToken(stmts []ast.Statement) token.Token {
	if len(stmts) == 0 {
		return token.Token{}
	}
	return stmts[len(stmts)-1].GetToken()
}

func (c *Compiler) drainPending() {
	for len(c.pending) > 0 {
		fn := c.pending[0]
		c.pending = c.pending[1:]
		if c.done[fn] {
			continue
		}
		c.compileFunction(fn)
	}
}

func (c *Compiler) enqueueFunction(fn *ast.Function) {
	if c.done[fn] {
		return
	}
	c.pending = append(c.pending, fn)
}

// compileFunction lowers fn's body into the functions region, then patches
// every constant placeholder registered for it with the real entry offset
// and frame size.
func (c *Compiler) compileFunction(fn *ast.Function) {
	c.done[fn] = true
	scope, _ := fn.ResolvedBlock.(*analyzer.Block)
	region := &c.prog.FunctionsRegion
	frame := NewFrameInfo()

	entry := len(region.Code)
	for _, p := range fn.Parameters {
		vb := scope.Variables[p.Name]
		reg := frame.GetRegister(true)
		vb.Register = reg
		vb.IsGlobal = false
	}
	c.compileStatements(fn.Body, scope, region, frame, false)

	fn.EntryOffset = entry
	fn.FrameSize = frame.Size()

	for _, fv := range c.funValues {
		if fv.fn == fn {
			fv.constRegion.Constants[fv.constIndex] = Value{
				Kind: ValueFun,
				Fun:  FunValue{Name: fn.Name, EntryOffset: entry, FrameSize: frame.Size(), ParamCount: len(fn.Parameters)},
			}
		}
	}
}

// --- statements ---

func (c *Compiler) compileStatements(stmts []ast.Statement, scope *analyzer.Block, region *Region, frame *FrameInfo, isTop bool) {
	for _, s := range stmts {
		c.compileStatement(s, scope, region, frame, isTop)
	}
}

func (c *Compiler) compileStatement(stmt ast.Statement, scope *analyzer.Block, region *Region, frame *FrameInfo, isTop bool) {
	switch s := stmt.(type) {
	case *ast.Declaration:
		c.compileDeclaration(s, scope, region, frame, isTop)
	case *ast.ExpressionStatement:
		reg, owned := c.compileExpr(s.Expression, scope, region, frame)
		if owned {
			frame.FreeRegister(reg, false)
		}
	case *ast.Print:
		c.compilePrint(s, scope, region, frame)
	case *ast.Return:
		c.compileReturn(s, scope, region, frame)
	case *ast.If:
		c.compileIf(s, scope, region, frame, isTop)
	case *ast.While:
		c.compileWhile(s, scope, region, frame, isTop)
	case *ast.For:
		c.compileFor(s, scope, region, frame, isTop)
	case *ast.Function:
		c.registerFunctionConstant(s, scope, region, frame, isTop)
		c.enqueueFunction(s)
	case *ast.Class:
		c.registerClassConstant(s)
	case *ast.Use:
		// Cross-module bindings are already wired into scope by the
		// analyzer; functions reachable through them are compiled lazily
		// the first time a declaration or call resolves to them.
	case *ast.Export:
		c.compileStatement(s.Inner, scope, region, frame, isTop)
	}
}

func (c *Compiler) compileDeclaration(d *ast.Declaration, scope *analyzer.Block, region *Region, frame *FrameInfo, isTop bool) {
	vb := scope.Variables[d.Name]
	if vb == nil {
		return
	}
	var valReg int
	var owned bool
	if d.Initializer != nil {
		valReg, owned = c.compileExpr(d.Initializer, scope, region, frame)
	} else {
		valReg = frame.GetRegister(false)
		owned = true
		c.emitZeroValue(*d.Type, region, d.Token, valReg)
	}

	if isTop {
		slot := c.prog.globalSlot(d.Name)
		region.emit(OP_SET_G, d.Token.File, d.Token.Line, d.Token.Column, slot, int32(valReg))
		vb.IsGlobal = true
		vb.Register = int(slot)
		if owned {
			frame.FreeRegister(valReg, false)
		}
		return
	}

	if !owned {
		// The initializer was itself a bare local variable reference; give
		// the declaration its own register so later writes to it don't
		// alias the source variable's register.
		fresh := frame.GetRegister(true)
		region.emit(OP_MOVE, d.Token.File, d.Token.Line, d.Token.Column, int32(fresh), int32(valReg))
		valReg = fresh
	}
	vb.IsGlobal = false
	vb.Register = valReg
}

func (c *Compiler) compilePrint(p *ast.Print, scope *analyzer.Block, region *Region, frame *FrameInfo) {
	reg, owned := c.compileExpr(p.Value, scope, region, frame)
	region.emit(OP_PRINT, p.Token.File, p.Token.Line, p.Token.Column, int32(reg))
	if owned {
		frame.FreeRegister(reg, false)
	}
}

func (c *Compiler) compileReturn(r *ast.Return, scope *analyzer.Block, region *Region, frame *FrameInfo) {
	if r.Value == nil {
		none := frame.GetRegister(false)
		c.emitZeroValue(types.NoTypeValue, region, r.Token, none)
		region.emit(OP_RETURN, r.Token.File, r.Token.Line, r.Token.Column, int32(none))
		frame.FreeRegister(none, false)
		return
	}
	reg, owned := c.compileExpr(r.Value, scope, region, frame)
	region.emit(OP_RETURN, r.Token.File, r.Token.Line, r.Token.Column, int32(reg))
	if owned {
		frame.FreeRegister(reg, false)
	}
}

func (c *Compiler) compileIf(s *ast.If, scope *analyzer.Block, region *Region, frame *FrameInfo, isTop bool) {
	var endJumps []int
	branches := append([]ast.IfBranch{s.Then}, s.Elifs...)
	hasTrailer := s.Else != nil || len(s.Elifs) > 0

	for _, br := range branches {
		ctok := br.Condition.GetToken()
		condReg, owned := c.compileExpr(br.Condition, scope, region, frame)
		skipPos := region.emit(OP_CFNJUMP, ctok.File, ctok.Line, ctok.Column, int32(condReg), 0)
		if owned {
			frame.FreeRegister(condReg, false)
		}

		nested, _ := br.Scope.(*analyzer.Block)
		c.compileStatements(br.Body, nested, region, frame, isTop)

		if hasTrailer {
			endJumps = append(endJumps, region.emit(OP_FJUMP, s.Token.File, s.Token.Line, s.Token.Column, 0))
		}
		c.patchForward(region, skipPos, 2)
	}

	if s.Else != nil {
		elseBlock, _ := s.ElseScope.(*analyzer.Block)
		c.compileStatements(s.Else, elseBlock, region, frame, isTop)
	}

	for _, pos := range endJumps {
		c.patchForward(region, pos, 1)
	}
}

func (c *Compiler) compileWhile(s *ast.While, scope *analyzer.Block, region *Region, frame *FrameInfo, isTop bool) {
	loopStart := len(region.Code)
	condReg, owned := c.compileExpr(s.Condition, scope, region, frame)
	skipPos := region.emit(OP_CFNJUMP, s.Token.File, s.Token.Line, s.Token.Column, int32(condReg), 0)
	if owned {
		frame.FreeRegister(condReg, false)
	}

	nested, _ := s.Scope.(*analyzer.Block)
	c.compileStatements(s.Body, nested, region, frame, isTop)
	c.emitBackwardJump(region, s.Token, loopStart)
	c.patchForward(region, skipPos, 2)
}

func (c *Compiler) compileFor(s *ast.For, scope *analyzer.Block, region *Region, frame *FrameInfo, isTop bool) {
	tok := s.Token
	iterReg, iterOwned := c.compileExpr(s.Iterator, scope, region, frame)
	iterType := s.Iterator.ResolvedType()

	idxReg := frame.GetRegister(true)
	c.emitIntLiteral(region, tok, idxReg, 0)
	lenReg := frame.GetRegister(true)
	region.emit(OP_LEN, tok.File, tok.Line, tok.Column, int32(lenReg), int32(iterReg))

	nested, _ := s.Scope.(*analyzer.Block)
	valueVB := nested.Variables[s.Variable]
	valReg := frame.GetRegister(true)
	valueVB.Register = valReg

	var idxVarReg int
	hasIndex := s.Index != ""
	if hasIndex {
		idxVarReg = frame.GetRegister(true)
		nested.Variables[s.Index].Register = idxVarReg
	}

	oneReg := frame.GetRegister(true)
	c.emitIntLiteral(region, tok, oneReg, 1)

	loopStart := len(region.Code)
	condReg := frame.GetRegister(false)
	region.emit(OP_LT_INT, tok.File, tok.Line, tok.Column, int32(condReg), int32(idxReg), int32(lenReg))
	skipPos := region.emit(OP_CFNJUMP, tok.File, tok.Line, tok.Column, int32(condReg), 0)
	frame.FreeRegister(condReg, false)

	switch iterType.Kind {
	case types.List:
		region.emit(OP_LGET, tok.File, tok.Line, tok.Column, int32(valReg), int32(iterReg), int32(idxReg))
		if hasIndex {
			region.emit(OP_MOVE, tok.File, tok.Line, tok.Column, int32(idxVarReg), int32(idxReg))
		}
	case types.Dict:
		keyDst := valReg
		if hasIndex {
			keyDst = idxVarReg
		}
		region.emit(OP_DENTRY, tok.File, tok.Line, tok.Column, int32(keyDst), int32(valReg), int32(iterReg), int32(idxReg))
	case types.String:
		region.emit(OP_SGET, tok.File, tok.Line, tok.Column, int32(valReg), int32(iterReg), int32(idxReg))
		if hasIndex {
			region.emit(OP_MOVE, tok.File, tok.Line, tok.Column, int32(idxVarReg), int32(idxReg))
		}
	}

	c.compileStatements(s.Body, nested, region, frame, isTop)

	region.emit(OP_ADD_INT, tok.File, tok.Line, tok.Column, int32(idxReg), int32(idxReg), int32(oneReg))
	c.emitBackwardJump(region, tok, loopStart)
	c.patchForward(region, skipPos, 2)

	if iterOwned {
		frame.FreeRegister(iterReg, false)
	}
}

// emitIntLiteral loads the small integer constant v into dst. It is split
// out because for-loop counter setup needs it outside the normal
// expression walk.
func (c *Compiler) emitIntLiteral(region *Region, tok token.Token, dst int, v int64) {
	idx := region.addConstant(IntValue(v))
	region.emit(OP_LOAD_C, tok.File, tok.Line, tok.Column, int32(dst), idx)
}

// patchForward patches the literal operand of a jump instruction that
// started at pos, where the literal sits litOffset words after the
// opcode, so execution lands at the current end of region.
func (c *Compiler) patchForward(region *Region, pos, litOffset int) {
	litIdx := pos + litOffset
	instrEnd := litIdx + 1
	region.patchLiteral(litIdx, int32(len(region.Code)-instrEnd))
}

func (c *Compiler) emitBackwardJump(region *Region, tok token.Token, target int) {
	pos := region.emit(OP_BJUMP, tok.File, tok.Line, tok.Column, 0)
	instrEnd := pos + 2
	region.patchLiteral(pos+1, int32(instrEnd-target))
}

func (c *Compiler) registerFunctionConstant(fn *ast.Function, scope *analyzer.Block, region *Region, frame *FrameInfo, isTop bool) {
	vb := scope.Variables[fn.Name]
	if vb == nil {
		return
	}
	constIdx := region.addConstant(Value{Kind: ValueFun, Fun: FunValue{Name: fn.Name}})
	c.funValues = append(c.funValues, funValueBinding{fn: fn, constRegion: region, constIndex: int(constIdx)})

	if isTop {
		dst := frame.GetRegister(false)
		region.emit(OP_LOAD_C, fn.Token.File, fn.Token.Line, fn.Token.Column, int32(dst), constIdx)
		slot := c.prog.globalSlot(fn.Name)
		region.emit(OP_SET_G, fn.Token.File, fn.Token.Line, fn.Token.Column, slot, int32(dst))
		frame.FreeRegister(dst, false)
		vb.IsGlobal = true
		vb.Register = int(slot)
		return
	}

	dst := frame.GetRegister(true)
	region.emit(OP_LOAD_C, fn.Token.File, fn.Token.Line, fn.Token.Column, int32(dst), constIdx)
	vb.IsGlobal = false
	vb.Register = dst
}

// registerClassConstant records a class's field layout as data in the
// classes region; the core resolves field/method access statically during
// analysis, so classes carry no executable code of their own, but keeping
// this region populated lets --opcodes disassemble a class's shape.
func (c *Compiler) registerClassConstant(cls *ast.Class) {
	region := &c.prog.ClassesRegion
	var fieldNames []Value
	for _, m := range cls.Members {
		if m.Field != nil {
			fieldNames = append(fieldNames, StringValue(m.Field.Name))
		}
	}
	region.addConstant(StringValue(cls.QualifiedName))
	region.addConstant(Value{Kind: ValueList, List: fieldNames})
}
