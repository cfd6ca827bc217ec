package analyzer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nuua-io/nuua/internal/analyzer"
	"github.com/nuua-io/nuua/internal/diagnostics"
	"github.com/nuua-io/nuua/internal/module"
)

// analyze parses source as an entry module and runs both analyzer passes,
// returning the resulting sink and top block for inspection.
func analyze(t *testing.T, source string) (*diagnostics.Sink, *analyzer.Block, *module.Module) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.nu")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	sink := diagnostics.NewSink()
	resolver := module.NewResolver("", sink)
	mod, ok := resolver.ResolveRoot(path)
	if !ok || sink.HasErrors() {
		t.Fatalf("parse failed: %v", sink.Entries())
	}

	a := analyzer.New(sink, resolver)
	top := a.AnalyzeModule(mod)
	return sink, top, mod
}

func firstCode(t *testing.T, sink *diagnostics.Sink) string {
	t.Helper()
	first, ok := sink.First()
	if !ok {
		t.Fatalf("expected at least one diagnostic")
	}
	return first.Code
}

func TestValidateMainMissing(t *testing.T) {
	sink, top, mod := analyze(t, `x: int = 1`)
	a := analyzer.New(sink, module.NewResolver("", sink))
	a.ValidateMain(top, mod.Code[0].GetToken())
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic for a missing main")
	}
	if code := firstCode(t, sink); code != diagnostics.StructMainMissing {
		t.Errorf("code = %s, want %s", code, diagnostics.StructMainMissing)
	}
}

func TestValidateMainWrongParameterType(t *testing.T) {
	sink, top, mod := analyze(t, `fun main(args: int) { print args }`)
	a := analyzer.New(sink, module.NewResolver("", sink))
	a.ValidateMain(top, mod.Code[0].GetToken())
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic for a wrong main signature")
	}
	if code := firstCode(t, sink); code != diagnostics.StructMainMissing {
		t.Errorf("code = %s, want %s", code, diagnostics.StructMainMissing)
	}
}

func TestValidateMainCorrectSignature(t *testing.T) {
	sink, top, mod := analyze(t, `fun main(args: [string]) { print "hi" }`)
	a := analyzer.New(sink, module.NewResolver("", sink))
	a.ValidateMain(top, mod.Code[0].GetToken())
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
}

func TestDuplicateDeclarationInSameScope(t *testing.T) {
	sink, _, _ := analyze(t, `
fun main(args: [string]) {
	x: int = 1
	x: int = 2
}
`)
	if !sink.HasErrors() {
		t.Fatalf("expected a duplicate-declaration diagnostic")
	}
	if code := firstCode(t, sink); code != diagnostics.ResDuplicateDecl {
		t.Errorf("code = %s, want %s", code, diagnostics.ResDuplicateDecl)
	}
}

func TestUndeclaredVariableReference(t *testing.T) {
	sink, _, _ := analyze(t, `
fun main(args: [string]) {
	print y
}
`)
	if !sink.HasErrors() {
		t.Fatalf("expected an undeclared-variable diagnostic")
	}
	if code := firstCode(t, sink); code != diagnostics.ResUndeclaredVariable {
		t.Errorf("code = %s, want %s", code, diagnostics.ResUndeclaredVariable)
	}
}

func TestUndeclaredClassInDeclarationType(t *testing.T) {
	sink, _, _ := analyze(t, `
fun main(args: [string]) {
	p: Ghost = args
}
`)
	if !sink.HasErrors() {
		t.Fatalf("expected an undeclared-class diagnostic")
	}
	if code := firstCode(t, sink); code != diagnostics.ResUndeclaredClass {
		t.Errorf("code = %s, want %s", code, diagnostics.ResUndeclaredClass)
	}
}

func TestNestedScopeSeesOuterVariable(t *testing.T) {
	sink, _, _ := analyze(t, `
fun main(args: [string]) {
	x: int = 1
	if true {
		print x
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
}

func TestReturnWithoutValueUnderDeclaredReturnTypeIsTypeMismatch(t *testing.T) {
	sink, _, _ := analyze(t, `
fun f(): int {
	return
}

fun main(args: [string]) {
	print f()
}
`)
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic for a valueless return under a declared return type")
	}
	if code := firstCode(t, sink); code != diagnostics.TypeMismatch {
		t.Errorf("code = %s, want %s (not a structural error)", code, diagnostics.TypeMismatch)
	}
}

func TestMissingReturnUnderDeclaredReturnTypeIsStructural(t *testing.T) {
	sink, _, _ := analyze(t, `
fun f(): int {
	x: int = 1
}

fun main(args: [string]) {
	print f()
}
`)
	if !sink.HasErrors() {
		t.Fatalf("expected a diagnostic for a function missing a top-level return")
	}
	if code := firstCode(t, sink); code != diagnostics.StructMissingReturn {
		t.Errorf("code = %s, want %s", code, diagnostics.StructMissingReturn)
	}
}

func TestDeclarationTypeMismatchWithInitializer(t *testing.T) {
	sink, _, _ := analyze(t, `
fun main(args: [string]) {
	x: int = "not an int"
}
`)
	if !sink.HasErrors() {
		t.Fatalf("expected a type-mismatch diagnostic")
	}
	if code := firstCode(t, sink); code != diagnostics.TypeMismatch {
		t.Errorf("code = %s, want %s", code, diagnostics.TypeMismatch)
	}
}

func TestForOverDictWithKeyBindsValueAndKeySeparately(t *testing.T) {
	sink, _, _ := analyze(t, `
fun main(args: [string]) {
	d: {int} = {a: 1, b: 2}
	for v, k in d {
		n: int = v
		s: string = k
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Entries())
	}
}

func TestForOverDictBareBindsValueNotKey(t *testing.T) {
	sink, _, _ := analyze(t, `
fun main(args: [string]) {
	d: {int} = {a: 1, b: 2}
	for v in d {
		s: string = v
	}
}
`)
	if !sink.HasErrors() {
		t.Fatalf("expected a type-mismatch diagnostic: a bare 'for v in d' binds v to the dict's value type (int), not its key type (string)")
	}
	if code := firstCode(t, sink); code != diagnostics.TypeMismatch {
		t.Errorf("code = %s, want %s", code, diagnostics.TypeMismatch)
	}
}

func TestCyclicImportBetweenTwoModulesIsDiagnosed(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.nu")
	bPath := filepath.Join(dir, "b.nu")
	if err := os.WriteFile(aPath, []byte(`use "b"` + "\nexport fun fromA(): int { return 1 }\n"), 0o644); err != nil {
		t.Fatalf("writing a.nu: %v", err)
	}
	if err := os.WriteFile(bPath, []byte(`use "a"` + "\nexport fun fromB(): int { return 2 }\n"), 0o644); err != nil {
		t.Fatalf("writing b.nu: %v", err)
	}

	sink := diagnostics.NewSink()
	resolver := module.NewResolver("", sink)
	mod, ok := resolver.ResolveRoot(aPath)
	if !ok || sink.HasErrors() {
		t.Fatalf("parse failed: %v", sink.Entries())
	}

	analyzer.New(sink, resolver).AnalyzeModule(mod)
	if !sink.HasErrors() {
		t.Fatalf("expected a cyclic-import diagnostic for a <-> b")
	}
	if code := firstCode(t, sink); code != diagnostics.ModCyclicImport {
		t.Errorf("code = %s, want %s", code, diagnostics.ModCyclicImport)
	}
}
