package vm

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/nuua-io/nuua/internal/analyzer"
	"github.com/nuua-io/nuua/internal/compiler"
	"github.com/nuua-io/nuua/internal/diagnostics"
	"github.com/nuua-io/nuua/internal/module"
)

// run lexes, parses, analyzes, compiles and executes source as the entry
// module's main.nu, returning everything written to stdout by OP_PRINT
// and the process exit code. It fails the test on any diagnostic.
func run(t *testing.T, source string) (string, int) {
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

	an := analyzer.New(sink, resolver)
	top := an.AnalyzeModule(mod)
	an.ValidateMain(top, mod.Code[0].GetToken())
	if sink.HasErrors() {
		t.Fatalf("analysis failed: %v", sink.Entries())
	}

	prog := compiler.New(sink).CompileModule(mod, top)
	if sink.HasErrors() {
		t.Fatalf("compilation failed: %v", sink.Entries())
	}

	return captureStdout(t, func() int {
		return New(sink, prog).Run(nil)
	})
}

// captureStdout redirects os.Stdout through a pipe for the duration of fn,
// since OP_PRINT writes directly to it via fmt.Println.
func captureStdout(t *testing.T, fn func() int) (string, int) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w

	code := fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), code
}

func TestArithmeticPrecedenceAndFloatDivision(t *testing.T) {
	out, code := run(t, `
fun main(args: [string]) {
	print 1 + 2 * 3
	print 10 / 4
}
`)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	want := "7\n2.5\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestStringAndListRepetition(t *testing.T) {
	out, code := run(t, `
fun main(args: [string]) {
	print "ab" * 3
	l: [int] = [1, 2] * 2
	print l
}
`)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	want := "ababab\n[1, 2, 1, 2]\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestStringAndListChunkedDivision(t *testing.T) {
	out, code := run(t, `
fun main(args: [string]) {
	print "abcdef" / 2
	l: [[int]] = [1, 2, 3, 4] / 2
	print l
}
`)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	want := "[ab, cd, ef]\n[[1, 2], [3, 4]]\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestDivisionByZeroFaultsAtRuntime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.nu")
	src := `
fun main(args: [string]) {
	x: float = 1 / 0
	print x
}
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	sink := diagnostics.NewSink()
	resolver := module.NewResolver("", sink)
	mod, ok := resolver.ResolveRoot(path)
	if !ok || sink.HasErrors() {
		t.Fatalf("parse failed: %v", sink.Entries())
	}
	an := analyzer.New(sink, resolver)
	top := an.AnalyzeModule(mod)
	an.ValidateMain(top, mod.Code[0].GetToken())
	if sink.HasErrors() {
		t.Fatalf("analysis failed: %v", sink.Entries())
	}
	prog := compiler.New(sink).CompileModule(mod, top)
	if sink.HasErrors() {
		t.Fatalf("compilation failed: %v", sink.Entries())
	}

	_, _ = captureStdout(t, func() int { return New(sink, prog).Run(nil) })
	if !sink.HasErrors() {
		t.Fatalf("expected a runtime diagnostic for division by zero")
	}
	first, _ := sink.First()
	if first.Code != diagnostics.RuntimeDivByZero {
		t.Errorf("diagnostic code = %s, want %s", first.Code, diagnostics.RuntimeDivByZero)
	}
}

func TestIfElifElse(t *testing.T) {
	out, _ := run(t, `
fun classify(n: int): string {
	result: string = ""
	if n < 0 {
		result = "negative"
	} elif n == 0 {
		result = "zero"
	} else {
		result = "positive"
	}
	return result
}

fun main(args: [string]) {
	print classify(-1)
	print classify(0)
	print classify(5)
}
`)
	want := "negative\nzero\npositive\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestWhileLoop(t *testing.T) {
	out, _ := run(t, `
fun main(args: [string]) {
	i: int = 0
	sum: int = 0
	while i < 5 {
		sum = sum + i
		i = i + 1
	}
	print sum
}
`)
	if out != "10\n" {
		t.Errorf("stdout = %q, want %q", out, "10\n")
	}
}

func TestForOverListWithIndex(t *testing.T) {
	out, _ := run(t, `
fun main(args: [string]) {
	for v, i in [10, 20, 30] {
		print i
		print v
	}
}
`)
	want := "0\n10\n1\n20\n2\n30\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestForOverString(t *testing.T) {
	out, _ := run(t, `
fun main(args: [string]) {
	for ch in "hi" {
		print ch
	}
}
`)
	want := "h\ni\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestFunctionCallAndRecursion(t *testing.T) {
	out, _ := run(t, `
fun factorial(n: int): int {
	if n <= 1 {
		return 1
	}
	return n * factorial(n - 1)
}

fun main(args: [string]) {
	print factorial(5)
}
`)
	if out != "120\n" {
		t.Errorf("stdout = %q, want %q", out, "120\n")
	}
}

func TestClassFieldsAndMethodCalls(t *testing.T) {
	out, _ := run(t, `
class Point {
	x: int
	y: int

	fun sum(): int {
		return 0
	}
}

fun main(args: [string]) {
	p: Point = Point { x: 1, y: 2 }
	print p.x
	print p.y
	p.x = 9
	print p.x
}
`)
	want := "1\n2\n9\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestSliceWithStartEndStep(t *testing.T) {
	out, _ := run(t, `
fun main(args: [string]) {
	l: [int] = [0, 1, 2, 3, 4, 5]
	print l[1:4]
	print l[::2]
	print l[5:0:-1]
}
`)
	// Bounds are clamped into [0,n] regardless of step direction, so a
	// backward slice's clamped end of 0 is never itself included (the
	// loop stops once i is no longer > end).
	want := "[1, 2, 3]\n[0, 2, 4]\n[5, 4, 3, 2, 1]\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestDictLiteralAccessAndAssignment(t *testing.T) {
	out, _ := run(t, `
fun main(args: [string]) {
	d: {int} = {a: 1, b: 2}
	print d
	print d["a"]
	d["a"] = 9
	print d["a"]
}
`)
	want := "{\"a\": 1, \"b\": 2}\n1\n9\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestDictMergeWithAddOperator(t *testing.T) {
	out, _ := run(t, `
fun main(args: [string]) {
	d1: {int} = {a: 1, b: 2}
	d2: {int} = {b: 20, c: 30}
	print d1 + d2
}
`)
	// Keys from d1 keep their insertion position; d2 overwrites the value
	// of any key it shares with d1 and appends the rest after it.
	want := "{\"a\": 1, \"b\": 20, \"c\": 30}\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestForOverDictWithKeyPrintsInsertionOrder(t *testing.T) {
	out, _ := run(t, `
fun main(args: [string]) {
	d: {int} = {a: 1, b: 2, c: 3}
	for v, k in d {
		print k
		print v
	}
}
`)
	want := "a\n1\nb\n2\nc\n3\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestForOverDictBareBindsValueNotKey(t *testing.T) {
	out, _ := run(t, `
fun main(args: [string]) {
	d: {int} = {a: 1, b: 2, c: 3}
	for v in d {
		print v
	}
}
`)
	// A bare 'for v in d' binds v to each value, not its key, matching
	// how a bare 'for v in list' binds to the element.
	want := "1\n2\n3\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestDictEqualityAndInequality(t *testing.T) {
	out, _ := run(t, `
fun main(args: [string]) {
	d1: {int} = {a: 1, b: 2}
	d2: {int} = {a: 1, b: 2}
	d3: {int} = {a: 1, b: 9}
	print d1 == d2
	print d1 != d3
}
`)
	want := "true\ntrue\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestMainReceivesCLIArgs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.nu")
	src := `
fun main(args: [string]) {
	print args
}
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}
	sink := diagnostics.NewSink()
	resolver := module.NewResolver("", sink)
	mod, ok := resolver.ResolveRoot(path)
	if !ok || sink.HasErrors() {
		t.Fatalf("parse failed: %v", sink.Entries())
	}
	an := analyzer.New(sink, resolver)
	top := an.AnalyzeModule(mod)
	an.ValidateMain(top, mod.Code[0].GetToken())
	if sink.HasErrors() {
		t.Fatalf("analysis failed: %v", sink.Entries())
	}
	prog := compiler.New(sink).CompileModule(mod, top)
	if sink.HasErrors() {
		t.Fatalf("compilation failed: %v", sink.Entries())
	}
	out, _ := captureStdout(t, func() int { return New(sink, prog).Run([]string{"alpha", "beta"}) })
	want := "[alpha, beta]\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}
