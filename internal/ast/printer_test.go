package ast_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nuua-io/nuua/internal/ast"
	"github.com/nuua-io/nuua/internal/types"
)

func TestPrintProgramLiterals(t *testing.T) {
	tok := func() ast.Expression {
		return &ast.Integer{Value: 1}
	}
	stmts := []ast.Statement{
		&ast.Declaration{Name: "x", Type: typePtr(types.Simple(types.Int)), Initializer: tok()},
		&ast.Print{Value: &ast.String{Value: "hi"}},
	}
	out := ast.PrintProgram(stmts)
	if !strings.Contains(out, "Declaration x") {
		t.Errorf("expected declaration line, got:\n%s", out)
	}
	if !strings.Contains(out, "Integer 1") {
		t.Errorf("expected nested initializer, got:\n%s", out)
	}
	if !strings.Contains(out, `String "hi"`) {
		t.Errorf("expected string literal rendering, got:\n%s", out)
	}
}

func TestPrintProgramBinaryUsesOperatorSpelling(t *testing.T) {
	stmts := []ast.Statement{
		&ast.ExpressionStatement{
			Expression: &ast.Binary{
				Op:    types.Add,
				Left:  &ast.Integer{Value: 1},
				Right: &ast.Integer{Value: 2},
			},
		},
	}
	out := ast.PrintProgram(stmts)
	if !strings.Contains(out, "Binary +") {
		t.Errorf("expected the operator symbol, not its numeric tag, got:\n%s", out)
	}
}

func TestPrintProgramControlFlowNesting(t *testing.T) {
	stmts := []ast.Statement{
		&ast.If{
			Then: ast.IfBranch{
				Condition: &ast.Boolean{Value: true},
				Body:      []ast.Statement{&ast.Print{Value: &ast.Integer{Value: 1}}},
			},
			Else: []ast.Statement{&ast.Print{Value: &ast.Integer{Value: 2}}},
		},
	}
	out := ast.PrintProgram(stmts)
	for _, want := range []string{"If", "then:", "else:", "Integer 1", "Integer 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

// TestPrintProgramExactLayout pins the printer's indentation scheme
// against an exact expected rendering, since a stray depth++/depth-- is
// easy to get wrong and hard to notice from substring checks alone.
func TestPrintProgramExactLayout(t *testing.T) {
	stmts := []ast.Statement{
		&ast.Declaration{Name: "x", Type: typePtr(types.Simple(types.Int)), Initializer: &ast.Integer{Value: 1}},
		&ast.Print{Value: &ast.String{Value: "hi"}},
	}
	got := ast.PrintProgram(stmts)
	want := "Declaration x\n" +
		"  init:\n" +
		"    Integer 1\n" +
		"Print\n" +
		"  String \"hi\"\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PrintProgram() mismatch (-want +got):\n%s", diff)
	}
}

func typePtr(t types.Type) *types.Type { return &t }
