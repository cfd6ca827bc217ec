package analyzer

import (
	"github.com/nuua-io/nuua/internal/ast"
	"github.com/nuua-io/nuua/internal/diagnostics"
	"github.com/nuua-io/nuua/internal/module"
	"github.com/nuua-io/nuua/internal/token"
	"github.com/nuua-io/nuua/internal/types"
)

// Analyzer runs the two-pass semantic analysis over a module graph,
// recursing into `use` targets through the shared module resolver. It
// caches one top block per module path so a module imported from several
// places is only ever analyzed once.
//
// Module resolution itself (internal/module.Resolver) only ever parses one
// file at a time and never recurses into a file's own `use` targets, so it
// cannot see a cycle; the module graph is only walked here, by analyzeUse
// recursing into AnalyzeModule. The analyzer therefore owns the cyclic
// import check: analyzing tracks modules currently on this recursion's
// call stack, separately from analyzed, which only holds finished blocks.
type Analyzer struct {
	sink      *diagnostics.Sink
	resolver  *module.Resolver
	analyzed  map[string]*Block
	analyzing map[string]bool
}

func New(sink *diagnostics.Sink, resolver *module.Resolver) *Analyzer {
	return &Analyzer{
		sink:      sink,
		resolver:  resolver,
		analyzed:  make(map[string]*Block),
		analyzing: make(map[string]bool),
	}
}

// AnalyzeModule runs both passes over mod and returns its top block,
// reusing a cached result if mod was already analyzed. Callers recursing
// through a `use` must check analyzing first; this only guards against
// mod itself being analyzed twice, not against a cycle.
func (a *Analyzer) AnalyzeModule(mod *module.Module) *Block {
	if blk, ok := a.analyzed[mod.Path]; ok {
		mod.TopBlock = blk
		return blk
	}

	top := NewBlock(nil)
	a.analyzing[mod.Path] = true

	for _, stmt := range mod.Code {
		a.registerTLD(stmt, top, mod, false)
	}
	for _, stmt := range mod.Code {
		a.analyzeStatement(stmt, top, mod, nil)
	}

	delete(a.analyzing, mod.Path)
	a.analyzed[mod.Path] = top

	mod.TopBlock = top
	return top
}

// ValidateMain checks the invariant that the entry module declares `main`
// taking exactly one List(String) parameter.
func (a *Analyzer) ValidateMain(top *Block, at token.Token) {
	vb, ok := top.LookupVariable("main")
	if !ok || vb.Type.Kind != types.Fun {
		a.sink.Add(diagnostics.Structural, diagnostics.StructMainMissing, at, "module requires a 'main' function")
		return
	}
	wantParam := types.NewList(types.Simple(types.String))
	if len(vb.Type.Parameters) != 1 || !vb.Type.Parameters[0].Equal(wantParam) {
		a.sink.Add(diagnostics.Structural, diagnostics.StructMainMissing, at,
			"'main' must take exactly one parameter of type [string]")
	}
}

// --- TLD pass ---

func (a *Analyzer) registerTLD(stmt ast.Statement, block *Block, mod *module.Module, exported bool) {
	switch s := stmt.(type) {
	case *ast.Use:
		a.analyzeUse(s, block, mod)
	case *ast.Export:
		a.registerTLD(s.Inner, block, mod, true)
	case *ast.Class:
		a.registerClassTLD(s, block, mod, exported)
	case *ast.Function:
		a.registerFunctionTLD(s, block, mod, exported)
	}
}

func (a *Analyzer) registerFunctionTLD(fn *ast.Function, block *Block, mod *module.Module, exported bool) {
	if block.HasOwnVariable(fn.Name) {
		a.sink.Add(diagnostics.Resolution, diagnostics.ResDuplicateDecl, fn.Token, "function '%s' already declared", fn.Name)
		return
	}
	var params []types.Type
	for _, p := range fn.Parameters {
		params = append(params, *p.Type)
	}
	fnType := types.NewFun(params, fn.ReturnType)
	fn.Exported = exported
	block.DeclareVariable(fn.Name, &VariableBinding{Type: fnType, DefiningNode: fn, Exported: exported})
}

func (a *Analyzer) registerClassTLD(cls *ast.Class, block *Block, mod *module.Module, exported bool) {
	if block.HasOwnClass(cls.Name) {
		a.sink.Add(diagnostics.Resolution, diagnostics.ResDuplicateDecl, cls.Token, "class '%s' already declared", cls.Name)
		return
	}
	cls.QualifiedName = mod.Path + ":" + cls.Name
	cls.Exported = exported

	classBlock := NewBlock(nil)
	for _, m := range cls.Members {
		switch {
		case m.Field != nil:
			f := m.Field
			if f.Type == nil {
				a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, f.Token, "field '%s' requires an explicit type", f.Name)
				continue
			}
			if f.Initializer != nil {
				a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, f.Token, "field '%s' may not have an initializer", f.Name)
			}
			a.checkClasses(*f.Type, block, f.Token)
			classBlock.DeclareVariable(f.Name, &VariableBinding{Type: *f.Type, DefiningNode: f})
		case m.Method != nil:
			fn := m.Method
			var params []types.Type
			for _, p := range fn.Parameters {
				params = append(params, *p.Type)
			}
			classBlock.DeclareVariable(fn.Name, &VariableBinding{Type: types.NewFun(params, fn.ReturnType), DefiningNode: fn})
		}
	}

	cls.Block = classBlock
	block.DeclareClass(cls.Name, &ClassBinding{Members: classBlock, Defining: cls, Exported: exported})
}

func (a *Analyzer) analyzeUse(u *ast.Use, block *Block, mod *module.Module) {
	sub, ok := a.resolver.Resolve(u.ModulePath, mod.Path, u.Token)
	if !ok {
		return
	}
	if a.analyzing[sub.Path] {
		a.sink.Add(diagnostics.Module, diagnostics.ModCyclicImport, u.Token, "cyclic import involving %s", sub.Path)
		return
	}
	subBlock := a.AnalyzeModule(sub)
	u.ResolvedPath = sub.Path
	u.ResolvedCode = sub.Code
	u.ResolvedTop = subBlock

	if len(u.Targets) == 0 {
		for name, vb := range subBlock.Variables {
			if vb.Exported {
				block.DeclareVariable(name, vb)
			}
		}
		for name, cb := range subBlock.Classes {
			if cb.Exported {
				block.DeclareClass(name, cb)
			}
		}
		return
	}

	for _, name := range u.Targets {
		if vb, ok := subBlock.Variables[name]; ok {
			if !vb.Exported {
				a.sink.Add(diagnostics.Resolution, diagnostics.ResImportUnexported, u.Token, "'%s' is not exported by %s", name, u.ModulePath)
				continue
			}
			block.DeclareVariable(name, vb)
			continue
		}
		if cb, ok := subBlock.Classes[name]; ok {
			if !cb.Exported {
				a.sink.Add(diagnostics.Resolution, diagnostics.ResImportUnexported, u.Token, "'%s' is not exported by %s", name, u.ModulePath)
				continue
			}
			block.DeclareClass(name, cb)
			continue
		}
		a.sink.Add(diagnostics.Resolution, diagnostics.ResImportUndefined, u.Token, "'%s' is not defined in %s", name, u.ModulePath)
	}
}

// checkClasses walks t collecting every Object name it references and
// verifies each is declared in block (normally the module's top block).
func (a *Analyzer) checkClasses(t types.Type, block *Block, tok token.Token) {
	switch t.Kind {
	case types.Object:
		if _, ok := block.LookupClass(t.ClassName); !ok {
			a.sink.Add(diagnostics.Resolution, diagnostics.ResUndeclaredClass, tok, "undeclared class '%s'", t.ClassName)
		}
	case types.List, types.Dict:
		a.checkClasses(*t.Inner, block, tok)
	case types.Fun:
		for _, p := range t.Parameters {
			a.checkClasses(p, block, tok)
		}
		if t.Return != nil {
			a.checkClasses(*t.Return, block, tok)
		}
	}
}

// --- Code pass ---

func (a *Analyzer) analyzeStatements(stmts []ast.Statement, block *Block, mod *module.Module, retType *types.Type) {
	for _, s := range stmts {
		a.analyzeStatement(s, block, mod, retType)
	}
}

func (a *Analyzer) analyzeStatement(stmt ast.Statement, block *Block, mod *module.Module, retType *types.Type) {
	switch s := stmt.(type) {
	case *ast.Declaration:
		a.analyzeDeclaration(s, block, mod)
	case *ast.ExpressionStatement:
		a.analyzeExpression(s.Expression, block, mod)
	case *ast.Print:
		a.analyzeExpression(s.Value, block, mod)
	case *ast.Return:
		a.analyzeReturn(s, block, mod, retType)
	case *ast.If:
		a.analyzeIf(s, block, mod, retType)
	case *ast.While:
		a.analyzeWhile(s, block, mod, retType)
	case *ast.For:
		a.analyzeFor(s, block, mod, retType)
	case *ast.Function:
		a.analyzeFunctionBody(s, block, mod)
	case *ast.Class:
		a.analyzeClassBody(s, block, mod)
	case *ast.Use:
		// fully resolved during the TLD pass.
	case *ast.Export:
		a.analyzeStatement(s.Inner, block, mod, retType)
	}
}

func (a *Analyzer) analyzeDeclaration(d *ast.Declaration, block *Block, mod *module.Module) {
	var initType types.Type
	hasInit := d.Initializer != nil
	if hasInit {
		initType = a.analyzeExpression(d.Initializer, block, mod)
	}

	if d.Type == nil {
		if !hasInit {
			a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, d.Token, "declaration of '%s' needs a type or an initializer", d.Name)
			return
		}
		t := initType
		d.Type = &t
	} else {
		a.checkClasses(*d.Type, block, d.Token)
		if hasInit && !d.Type.Equal(initType) {
			a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, d.Token,
				"Expected '%s', got '%s'", d.Type.String(), initType.String())
		}
	}

	if d.NoDeclare {
		return
	}
	if block.HasOwnVariable(d.Name) {
		a.sink.Add(diagnostics.Resolution, diagnostics.ResDuplicateDecl, d.Token, "'%s' already declared in this scope", d.Name)
		return
	}
	block.DeclareVariable(d.Name, &VariableBinding{Type: *d.Type, DefiningNode: d, Exported: d.Exported})
}

func (a *Analyzer) analyzeReturn(r *ast.Return, block *Block, mod *module.Module, retType *types.Type) {
	if retType == nil {
		if r.Value != nil {
			a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, r.Token, "return with a value in a function with no declared return type")
			a.analyzeExpression(r.Value, block, mod)
		}
		return
	}
	if r.Value == nil {
		a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, r.Token, "missing return value; function declares return type '%s'", retType.String())
		return
	}
	vt := a.analyzeExpression(r.Value, block, mod)
	if !vt.Equal(*retType) {
		a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, r.Token, "Expected '%s', got '%s'", retType.String(), vt.String())
	}
}

func (a *Analyzer) analyzeIf(s *ast.If, block *Block, mod *module.Module, retType *types.Type) {
	a.analyzeBranch(&s.Then, block, mod, retType)
	for i := range s.Elifs {
		a.analyzeBranch(&s.Elifs[i], block, mod, retType)
	}
	if s.Else != nil {
		elseBlock := NewBlock(block)
		a.analyzeStatements(s.Else, elseBlock, mod, retType)
		s.ElseScope = elseBlock
	}
}

func (a *Analyzer) analyzeBranch(br *ast.IfBranch, block *Block, mod *module.Module, retType *types.Type) {
	ct := a.analyzeExpression(br.Condition, block, mod)
	if ct.Kind != types.Bool {
		a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, br.Condition.GetToken(), "condition must be 'bool', got '%s'", ct.String())
	}
	nested := NewBlock(block)
	a.analyzeStatements(br.Body, nested, mod, retType)
	br.Scope = nested
}

func (a *Analyzer) analyzeWhile(s *ast.While, block *Block, mod *module.Module, retType *types.Type) {
	ct := a.analyzeExpression(s.Condition, block, mod)
	if ct.Kind != types.Bool {
		a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, s.Condition.GetToken(), "condition must be 'bool', got '%s'", ct.String())
	}
	nested := NewBlock(block)
	a.analyzeStatements(s.Body, nested, mod, retType)
	s.Scope = nested
}

func (a *Analyzer) analyzeFor(s *ast.For, block *Block, mod *module.Module, retType *types.Type) {
	it := a.analyzeExpression(s.Iterator, block, mod)
	nested := NewBlock(block)

	var elemType types.Type
	var idxType *types.Type
	switch it.Kind {
	case types.List:
		elemType = it.Inner.Clone()
		if s.Index != "" {
			t := types.Simple(types.Int)
			idxType = &t
		}
	case types.Dict:
		elemType = it.Inner.Clone()
		if s.Index != "" {
			t := types.Simple(types.String)
			idxType = &t
		}
	case types.String:
		elemType = types.Simple(types.String)
		if s.Index != "" {
			t := types.Simple(types.Int)
			idxType = &t
		}
	default:
		a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, s.Iterator.GetToken(), "for requires a list, dict or string, got '%s'", it.String())
		elemType = types.NoTypeValue
	}

	nested.DeclareVariable(s.Variable, &VariableBinding{Type: elemType, DefiningNode: s})
	if s.Index != "" && idxType != nil {
		nested.DeclareVariable(s.Index, &VariableBinding{Type: *idxType, DefiningNode: s})
	}
	a.analyzeStatements(s.Body, nested, mod, retType)
	s.Scope = nested
}

func (a *Analyzer) analyzeFunctionBody(fn *ast.Function, block *Block, mod *module.Module) {
	fnBlock := NewBlock(block)
	for _, p := range fn.Parameters {
		a.checkClasses(*p.Type, block, p.Token)
		fnBlock.DeclareVariable(p.Name, &VariableBinding{Type: *p.Type, DefiningNode: p})
	}
	a.analyzeStatements(fn.Body, fnBlock, mod, fn.ReturnType)
	fn.ResolvedBlock = fnBlock

	if fn.ReturnType != nil {
		a.checkClasses(*fn.ReturnType, block, fn.Token)
		if !hasTopLevelReturn(fn.Body) {
			a.sink.Add(diagnostics.Structural, diagnostics.StructMissingReturn, fn.Token,
				"function '%s' declares a return type but has no top-level return", fn.Name)
		}
		return
	}
	if !hasTopLevelReturn(fn.Body) {
		fn.Body = append(fn.Body, &ast.Return{Token: fn.Token})
	}
}

func hasTopLevelReturn(body []ast.Statement) bool {
	for _, s := range body {
		if _, ok := s.(*ast.Return); ok {
			return true
		}
	}
	return false
}

func (a *Analyzer) analyzeClassBody(cls *ast.Class, block *Block, mod *module.Module) {
	for _, m := range cls.Members {
		if m.Method != nil {
			a.analyzeFunctionBody(m.Method, block, mod)
		}
	}
}

// --- Expressions ---

func (a *Analyzer) analyzeExpression(expr ast.Expression, block *Block, mod *module.Module) types.Type {
	switch e := expr.(type) {
	case *ast.Integer:
		return setType(e, types.Simple(types.Int))
	case *ast.Float:
		return setType(e, types.Simple(types.Float))
	case *ast.String:
		return setType(e, types.Simple(types.String))
	case *ast.Boolean:
		return setType(e, types.Simple(types.Bool))

	case *ast.List:
		return a.analyzeList(e, block, mod)
	case *ast.Dictionary:
		return a.analyzeDictionary(e, block, mod)
	case *ast.Object:
		return a.analyzeObject(e, block, mod)
	case *ast.Group:
		t := a.analyzeExpression(e.Inner, block, mod)
		return setType(e, t)

	case *ast.Cast:
		return a.analyzeCast(e, block, mod)
	case *ast.Unary:
		return a.analyzeUnary(e, block, mod)
	case *ast.Binary:
		return a.analyzeBinary(e, block, mod)
	case *ast.Logical:
		return a.analyzeLogical(e, block, mod)

	case *ast.Variable:
		return a.analyzeVariable(e, block, mod)
	case *ast.Assign:
		return a.analyzeAssign(e, block, mod)
	case *ast.Call:
		return a.analyzeCall(e, block, mod)
	case *ast.Access:
		return a.analyzeAccess(e, block, mod)
	case *ast.Slice:
		return a.analyzeSlice(e, block, mod)
	case *ast.Range:
		return a.analyzeRange(e, block, mod)
	case *ast.Property:
		return a.analyzeProperty(e, block, mod)
	}
	return types.NoTypeValue
}

func setType(e ast.Expression, t types.Type) types.Type {
	e.SetResolvedType(t)
	return t
}

func (a *Analyzer) analyzeList(e *ast.List, block *Block, mod *module.Module) types.Type {
	if len(e.Elements) == 0 {
		a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, e.Token, "list literal must not be empty")
		return setType(e, types.NoTypeValue)
	}
	elemType := a.analyzeExpression(e.Elements[0], block, mod)
	for _, el := range e.Elements[1:] {
		t := a.analyzeExpression(el, block, mod)
		if !t.Equal(elemType) {
			a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, el.GetToken(), "Expected '%s', got '%s'", elemType.String(), t.String())
		}
	}
	return setType(e, types.NewList(elemType))
}

func (a *Analyzer) analyzeDictionary(e *ast.Dictionary, block *Block, mod *module.Module) types.Type {
	if len(e.Keys) == 0 {
		a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, e.Token, "dictionary literal must not be empty")
		return setType(e, types.NoTypeValue)
	}
	valueType := a.analyzeExpression(e.Values[e.Keys[0]], block, mod)
	for _, k := range e.Keys[1:] {
		t := a.analyzeExpression(e.Values[k], block, mod)
		if !t.Equal(valueType) {
			a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, e.Token, "Expected '%s', got '%s'", valueType.String(), t.String())
		}
	}
	return setType(e, types.NewDict(valueType))
}

func (a *Analyzer) analyzeObject(e *ast.Object, block *Block, mod *module.Module) types.Type {
	cb, ok := block.LookupClass(e.ClassName)
	if !ok {
		a.sink.Add(diagnostics.Resolution, diagnostics.ResUndeclaredClass, e.Token, "undeclared class '%s'", e.ClassName)
		return setType(e, types.NoTypeValue)
	}
	for _, k := range e.Keys {
		fb, ok := cb.Members.Variables[k]
		if !ok {
			a.sink.Add(diagnostics.Access, diagnostics.AccUnknownProperty, e.Token, "'%s' has no field '%s'", e.ClassName, k)
			a.analyzeExpression(e.Arguments[k], block, mod)
			continue
		}
		at := a.analyzeExpression(e.Arguments[k], block, mod)
		if !at.Equal(fb.Type) {
			a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, e.Token, "field '%s': Expected '%s', got '%s'", k, fb.Type.String(), at.String())
		}
	}
	return setType(e, types.NewObject(e.ClassName))
}

func (a *Analyzer) analyzeCast(e *ast.Cast, block *Block, mod *module.Module) types.Type {
	srcT := a.analyzeExpression(e.Expr, block, mod)
	variant, ok := types.LookupCast(srcT.Kind, e.Target.Kind)
	if !ok {
		a.sink.Add(diagnostics.Type, diagnostics.TypeInvalidCast, e.Token, "cannot cast '%s' to '%s'", srcT.String(), e.Target.String())
		return setType(e, e.Target)
	}
	e.Variant = variant
	return setType(e, e.Target)
}

func (a *Analyzer) analyzeUnary(e *ast.Unary, block *Block, mod *module.Module) types.Type {
	rt := a.analyzeExpression(e.Right, block, mod)
	resultKind, variant, ok := types.LookupUnary(e.Op, rt.Kind)
	if !ok {
		a.sink.Add(diagnostics.Type, diagnostics.TypeNoOperator, e.Token, "no '%s' operator for '%s'", e.Op, rt.String())
		return setType(e, types.NoTypeValue)
	}
	e.Variant = variant
	return setType(e, types.Simple(resultKind))
}

func (a *Analyzer) analyzeBinary(e *ast.Binary, block *Block, mod *module.Module) types.Type {
	lt := a.analyzeExpression(e.Left, block, mod)
	rt := a.analyzeExpression(e.Right, block, mod)
	result, variant, ok := types.LookupBinary(e.Op, lt, rt)
	if !ok {
		a.sink.Add(diagnostics.Type, diagnostics.TypeNoOperator, e.Token, "no '%s' operator for '%s' and '%s'", e.Op, lt.String(), rt.String())
		return setType(e, types.NoTypeValue)
	}
	e.Variant = variant
	return setType(e, result)
}

func (a *Analyzer) analyzeLogical(e *ast.Logical, block *Block, mod *module.Module) types.Type {
	lt := a.analyzeExpression(e.Left, block, mod)
	rt := a.analyzeExpression(e.Right, block, mod)
	if lt.Kind != types.Bool || rt.Kind != types.Bool {
		a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, e.Token, "'%s' requires 'bool' operands, got '%s' and '%s'", e.Op, lt.String(), rt.String())
	}
	return setType(e, types.Simple(types.Bool))
}

func (a *Analyzer) analyzeVariable(e *ast.Variable, block *Block, mod *module.Module) types.Type {
	vb, ok := block.LookupVariable(e.Name)
	if !ok {
		a.sink.Add(diagnostics.Resolution, diagnostics.ResUndeclaredVariable, e.Token, "undeclared variable '%s'", e.Name)
		return setType(e, types.NoTypeValue)
	}
	vb.LastUse = e
	return setType(e, vb.Type)
}

func (a *Analyzer) analyzeAssign(e *ast.Assign, block *Block, mod *module.Module) types.Type {
	vt := a.analyzeExpression(e.Value, block, mod)
	tt := a.analyzeExpression(e.Target, block, mod)
	if !vt.Equal(tt) {
		a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, e.Token, "Expected '%s', got '%s'", tt.String(), vt.String())
	}
	if _, ok := e.Target.(*ast.Access); ok {
		e.IsAccess = true
	}
	return setType(e, tt)
}

func (a *Analyzer) analyzeCall(e *ast.Call, block *Block, mod *module.Module) types.Type {
	tt := a.analyzeExpression(e.Target, block, mod)
	if tt.Kind != types.Fun {
		for _, arg := range e.Arguments {
			a.analyzeExpression(arg, block, mod)
		}
		a.sink.Add(diagnostics.Type, diagnostics.TypeNotCallable, e.Token, "'%s' is not callable", tt.String())
		return setType(e, types.NoTypeValue)
	}
	if len(e.Arguments) != len(tt.Parameters) {
		a.sink.Add(diagnostics.Type, diagnostics.TypeArgCount, e.Token, "expected %d arguments, got %d", len(tt.Parameters), len(e.Arguments))
	}
	for i, arg := range e.Arguments {
		at := a.analyzeExpression(arg, block, mod)
		if i < len(tt.Parameters) && !at.Equal(tt.Parameters[i]) {
			a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, arg.GetToken(), "argument %d: Expected '%s', got '%s'", i, tt.Parameters[i].String(), at.String())
		}
	}
	e.HasReturn = tt.Return != nil
	if tt.Return != nil {
		return setType(e, *tt.Return)
	}
	return setType(e, types.NoTypeValue)
}

func (a *Analyzer) analyzeAccess(e *ast.Access, block *Block, mod *module.Module) types.Type {
	tt := a.analyzeExpression(e.Target, block, mod)
	it := a.analyzeExpression(e.Index, block, mod)
	switch tt.Kind {
	case types.String:
		if it.Kind != types.Int {
			a.sink.Add(diagnostics.Access, diagnostics.AccBadIndexType, e.Token, "string index must be 'int', got '%s'", it.String())
		}
		e.Kind = ast.AccessString
		return setType(e, types.Simple(types.String))
	case types.List:
		if it.Kind != types.Int {
			a.sink.Add(diagnostics.Access, diagnostics.AccBadIndexType, e.Token, "list index must be 'int', got '%s'", it.String())
		}
		e.Kind = ast.AccessList
		return setType(e, tt.Inner.Clone())
	case types.Dict:
		if it.Kind != types.String {
			a.sink.Add(diagnostics.Access, diagnostics.AccBadIndexType, e.Token, "dict key must be 'string', got '%s'", it.String())
		}
		e.Kind = ast.AccessDict
		return setType(e, tt.Inner.Clone())
	default:
		a.sink.Add(diagnostics.Access, diagnostics.AccNotSliceable, e.Token, "cannot index into '%s'", tt.String())
		return setType(e, types.NoTypeValue)
	}
}

func (a *Analyzer) analyzeSlice(e *ast.Slice, block *Block, mod *module.Module) types.Type {
	tt := a.analyzeExpression(e.Target, block, mod)
	check := func(b ast.Expression) {
		if b == nil {
			return
		}
		bt := a.analyzeExpression(b, block, mod)
		if bt.Kind != types.Int {
			a.sink.Add(diagnostics.Access, diagnostics.AccBadIndexType, b.GetToken(), "slice bound must be 'int', got '%s'", bt.String())
		}
	}
	check(e.Start)
	check(e.End)
	check(e.Step)

	switch tt.Kind {
	case types.List:
		e.IsList = true
		return setType(e, tt)
	case types.String:
		e.IsList = false
		return setType(e, tt)
	default:
		a.sink.Add(diagnostics.Access, diagnostics.AccNotSliceable, e.Token, "cannot slice '%s'", tt.String())
		return setType(e, types.NoTypeValue)
	}
}

func (a *Analyzer) analyzeRange(e *ast.Range, block *Block, mod *module.Module) types.Type {
	st := a.analyzeExpression(e.Start, block, mod)
	et := a.analyzeExpression(e.End, block, mod)
	if st.Kind != types.Int || et.Kind != types.Int {
		a.sink.Add(diagnostics.Type, diagnostics.TypeMismatch, e.Token, "range bounds must be 'int', got '%s' and '%s'", st.String(), et.String())
	}
	return setType(e, types.NewList(types.Simple(types.Int)))
}

func (a *Analyzer) analyzeProperty(e *ast.Property, block *Block, mod *module.Module) types.Type {
	ot := a.analyzeExpression(e.Object, block, mod)
	if ot.Kind != types.Object {
		a.sink.Add(diagnostics.Access, diagnostics.AccPropertyOnNonObj, e.Token, "'%s' is not an object", ot.String())
		return setType(e, types.NoTypeValue)
	}
	cb, ok := block.LookupClass(ot.ClassName)
	if !ok {
		a.sink.Add(diagnostics.Resolution, diagnostics.ResUndeclaredClass, e.Token, "undeclared class '%s'", ot.ClassName)
		return setType(e, types.NoTypeValue)
	}
	fb, ok := cb.Members.Variables[e.Name]
	if !ok {
		a.sink.Add(diagnostics.Access, diagnostics.AccUnknownProperty, e.Token, "'%s' has no field '%s'", ot.ClassName, e.Name)
		return setType(e, types.NoTypeValue)
	}
	return setType(e, fb.Type)
}
