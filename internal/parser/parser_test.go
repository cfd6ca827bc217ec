package parser_test

import (
	"testing"

	"github.com/nuua-io/nuua/internal/ast"
	"github.com/nuua-io/nuua/internal/diagnostics"
	"github.com/nuua-io/nuua/internal/lexer"
	"github.com/nuua-io/nuua/internal/parser"
	"github.com/nuua-io/nuua/internal/types"
)

func parseProgram(t *testing.T, source string) ([]ast.Statement, *diagnostics.Sink) {
	t.Helper()
	toks := lexer.New("test.nu", source).Tokens()
	sink := diagnostics.NewSink()
	stmts := parser.New(toks, sink).ParseProgram()
	return stmts, sink
}

func parseExpr(t *testing.T, source string) ast.Expression {
	t.Helper()
	stmts, sink := parseProgram(t, source)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
	if len(stmts) != 1 {
		t.Fatalf("expected one statement, got %d", len(stmts))
	}
	es, ok := stmts[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected an expression statement, got %T", stmts[0])
	}
	return es.Expression
}

func TestAdditivePrecedesMultiplicative(t *testing.T) {
	expr := parseExpr(t, "1 + 2 * 3")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != types.Add {
		t.Fatalf("expected a top-level Add, got %T", expr)
	}
	right, ok := bin.Right.(*ast.Binary)
	if !ok || right.Op != types.Mul {
		t.Fatalf("expected the right side to be a Mul, got %T", bin.Right)
	}
}

func TestComparisonPrecedesEquality(t *testing.T) {
	expr := parseExpr(t, "1 < 2 == 3 < 4")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != types.Eq {
		t.Fatalf("expected a top-level Eq, got %T", expr)
	}
	if _, ok := bin.Left.(*ast.Binary); !ok {
		t.Errorf("expected the left side to already be a comparison Binary")
	}
}

func TestLogicalAndOrPrecedence(t *testing.T) {
	expr := parseExpr(t, "true or false and true")
	logical, ok := expr.(*ast.Logical)
	if !ok || logical.Op != "or" {
		t.Fatalf("expected a top-level 'or', got %T", expr)
	}
	if right, ok := logical.Right.(*ast.Logical); !ok || right.Op != "and" {
		t.Errorf("expected 'and' to bind tighter than 'or', got %T", logical.Right)
	}
}

func TestUnaryAndCastPrecedence(t *testing.T) {
	expr := parseExpr(t, "-1 as float")
	cast, ok := expr.(*ast.Cast)
	if !ok {
		t.Fatalf("expected a Cast, got %T", expr)
	}
	if cast.Target.Kind != types.Float {
		t.Errorf("cast target = %s, want float", cast.Target)
	}
	if _, ok := cast.Expr.(*ast.Unary); !ok {
		t.Errorf("expected the cast's operand to be a Unary, got %T", cast.Expr)
	}
}

func TestRangeInclusiveFlag(t *testing.T) {
	exclusive := parseExpr(t, "1 .. 5").(*ast.Range)
	if exclusive.Inclusive {
		t.Errorf("expected '..' to be exclusive")
	}
	inclusive := parseExpr(t, "1 ..= 5").(*ast.Range)
	if !inclusive.Inclusive {
		t.Errorf("expected '..=' to be inclusive")
	}
}

func TestAccessVsSliceDisambiguation(t *testing.T) {
	access := parseExpr(t, "a[1]")
	if _, ok := access.(*ast.Access); !ok {
		t.Fatalf("expected an Access, got %T", access)
	}
	slice := parseExpr(t, "a[1:2]")
	if _, ok := slice.(*ast.Slice); !ok {
		t.Fatalf("expected a Slice, got %T", slice)
	}
	openEnded := parseExpr(t, "a[::2]").(*ast.Slice)
	if openEnded.Start != nil || openEnded.End != nil {
		t.Errorf("expected a[::2] to omit both start and end")
	}
	if openEnded.Step == nil {
		t.Errorf("expected a[::2] to carry an explicit step")
	}
}

func TestDeclarationWithTypeAndInitializer(t *testing.T) {
	stmts, sink := parseProgram(t, "x: int = 1 + 2")
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
	decl, ok := stmts[0].(*ast.Declaration)
	if !ok {
		t.Fatalf("expected a Declaration, got %T", stmts[0])
	}
	if decl.Name != "x" || decl.Type.Kind != types.Int {
		t.Errorf("decl = %+v, want name x, type int", decl)
	}
	if decl.Initializer == nil {
		t.Errorf("expected an initializer")
	}
}

func TestIfElifElseStructure(t *testing.T) {
	stmts, sink := parseProgram(t, `
if a {
	print 1
} elif b {
	print 2
} else {
	print 3
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
	ifStmt, ok := stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected an If, got %T", stmts[0])
	}
	if len(ifStmt.Elifs) != 1 {
		t.Fatalf("expected one elif branch, got %d", len(ifStmt.Elifs))
	}
	if len(ifStmt.Else) != 1 {
		t.Fatalf("expected one else statement, got %d", len(ifStmt.Else))
	}
}

func TestWhileLoopStructure(t *testing.T) {
	stmts, sink := parseProgram(t, `
while x < 10 {
	print x
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
	while, ok := stmts[0].(*ast.While)
	if !ok {
		t.Fatalf("expected a While, got %T", stmts[0])
	}
	if len(while.Body) != 1 {
		t.Errorf("expected one body statement, got %d", len(while.Body))
	}
}

func TestForLoopWithAndWithoutIndex(t *testing.T) {
	stmts, sink := parseProgram(t, `
for v in items {
	print v
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
	bare := stmts[0].(*ast.For)
	if bare.Variable != "v" || bare.Index != "" {
		t.Errorf("for = %+v, want variable v, no index", bare)
	}

	stmts, sink = parseProgram(t, `
for v, i in items {
	print v
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
	indexed := stmts[0].(*ast.For)
	if indexed.Variable != "v" || indexed.Index != "i" {
		t.Errorf("for = %+v, want variable v, index i", indexed)
	}
}

func TestFunctionDeclarationWithParamsAndReturnType(t *testing.T) {
	stmts, sink := parseProgram(t, `
fun add(a: int, b: int): int {
	return a + b
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
	fn, ok := stmts[0].(*ast.Function)
	if !ok {
		t.Fatalf("expected a Function, got %T", stmts[0])
	}
	if fn.Name != "add" || len(fn.Parameters) != 2 {
		t.Fatalf("fn = %+v, want name add, two parameters", fn)
	}
	if fn.ReturnType == nil || fn.ReturnType.Kind != types.Int {
		t.Errorf("expected a declared int return type")
	}
}

func TestClassDeclarationWithFieldsAndMethods(t *testing.T) {
	stmts, sink := parseProgram(t, `
class Point {
	x: int
	y: int

	fun sum(): int {
		return 0
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
	cls, ok := stmts[0].(*ast.Class)
	if !ok {
		t.Fatalf("expected a Class, got %T", stmts[0])
	}
	var fields, methods int
	for _, m := range cls.Members {
		if m.Field != nil {
			fields++
		}
		if m.Method != nil {
			methods++
		}
	}
	if fields != 2 || methods != 1 {
		t.Errorf("got %d fields, %d methods, want 2 fields, 1 method", fields, methods)
	}
}

func TestListDictAndObjectLiterals(t *testing.T) {
	list := parseExpr(t, "[1, 2, 3]").(*ast.List)
	if len(list.Elements) != 3 {
		t.Errorf("expected 3 list elements, got %d", len(list.Elements))
	}

	dict := parseExpr(t, `{a: 1, b: 2}`).(*ast.Dictionary)
	if len(dict.Keys) != 2 {
		t.Errorf("expected 2 dictionary keys, got %d", len(dict.Keys))
	}

	obj := parseExpr(t, "Point { x: 1, y: 2 }").(*ast.Object)
	if obj.ClassName != "Point" || len(obj.Keys) != 2 {
		t.Errorf("obj = %+v, want class Point with 2 fields", obj)
	}
}

func TestUseAndExportStatements(t *testing.T) {
	stmts, sink := parseProgram(t, `use helper, other from "lib"`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
	use, ok := stmts[0].(*ast.Use)
	if !ok || use.ModulePath != "lib" || len(use.Targets) != 2 {
		t.Fatalf("use = %+v, want module lib with 2 targets", use)
	}

	stmts, sink = parseProgram(t, `export fun helper() { print "hi" }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
	exp, ok := stmts[0].(*ast.Export)
	if !ok {
		t.Fatalf("expected an Export, got %T", stmts[0])
	}
	if _, ok := exp.Inner.(*ast.Function); !ok {
		t.Errorf("expected the exported statement to be a Function, got %T", exp.Inner)
	}
}

func TestMalformedExpressionEmitsDiagnostic(t *testing.T) {
	_, sink := parseProgram(t, "1 + ")
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic for a dangling operator")
	}
	first, _ := sink.First()
	if first.Code != diagnostics.SynUnexpectedToken {
		t.Errorf("code = %s, want %s", first.Code, diagnostics.SynUnexpectedToken)
	}
}
