package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/nuua-io/nuua/internal/diagnostics"
	"github.com/nuua-io/nuua/internal/token"
)

func TestSinkAddAndEntries(t *testing.T) {
	sink := diagnostics.NewSink()
	if sink.HasErrors() {
		t.Fatalf("fresh sink should not report errors")
	}

	tok := token.Token{File: "main.nu", Line: 3, Column: 5}
	d := sink.Add(diagnostics.Type, diagnostics.TypeMismatch, tok, "expected %s, got %s", "int", "string")

	if !sink.HasErrors() {
		t.Fatalf("expected HasErrors() to be true after Add")
	}
	if d.ID == "" {
		t.Errorf("expected a non-empty diagnostic ID")
	}
	if d.Message != "expected int, got string" {
		t.Errorf("Message = %q, want %q", d.Message, "expected int, got string")
	}

	entries := sink.Entries()
	if len(entries) != 1 || entries[0].Code != diagnostics.TypeMismatch {
		t.Fatalf("Entries() = %+v, want one TYP001 entry", entries)
	}
}

func TestSinkFirst(t *testing.T) {
	sink := diagnostics.NewSink()
	if _, ok := sink.First(); ok {
		t.Fatalf("First() on an empty sink should report ok=false")
	}
	sink.Add(diagnostics.Lexical, diagnostics.LexUnexpectedChar, token.Token{}, "bad char")
	sink.Add(diagnostics.Syntactic, diagnostics.SynUnexpectedToken, token.Token{}, "bad token")
	first, ok := sink.First()
	if !ok || first.Code != diagnostics.LexUnexpectedChar {
		t.Errorf("First() = %+v, want the first-inserted diagnostic", first)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := diagnostics.Diagnostic{File: "a.nu", Line: 1, Column: 2, Code: diagnostics.RuntimeDivByZero, Message: "division by zero"}
	got := d.String()
	if !strings.Contains(got, "a.nu:1:2") || !strings.Contains(got, diagnostics.RuntimeDivByZero) || !strings.Contains(got, "division by zero") {
		t.Errorf("String() = %q, missing expected components", got)
	}
}
