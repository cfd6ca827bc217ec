package lexer_test

import (
	"testing"

	"github.com/nuua-io/nuua/internal/lexer"
	"github.com/nuua-io/nuua/internal/token"
)

func tokenTypes(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestTokensSimpleDeclaration(t *testing.T) {
	lx := lexer.New("test.nu", "x: int = 1 + 2")
	toks := lx.Tokens()
	want := []token.Type{
		token.IDENTIFIER, token.COLON, token.TYPE_INT, token.EQUAL,
		token.INTEGER, token.PLUS, token.INTEGER, token.EOF,
	}
	got := tokenTypes(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokensKeywordsAndOperators(t *testing.T) {
	lx := lexer.New("test.nu", `if a != b { print "hi" } else { a <= b }`)
	toks := lx.Tokens()
	got := tokenTypes(toks)
	want := []token.Type{
		token.IF, token.IDENTIFIER, token.BANG_EQUAL, token.IDENTIFIER, token.LEFT_BRACE,
		token.PRINT, token.STRING, token.RIGHT_BRACE, token.ELSE, token.LEFT_BRACE,
		token.IDENTIFIER, token.LOWER_EQUAL, token.IDENTIFIER, token.RIGHT_BRACE, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokensFloatAndRange(t *testing.T) {
	lx := lexer.New("test.nu", "1.5 .. 2 ..= 3")
	toks := lx.Tokens()
	if toks[0].Type != token.FLOAT || toks[0].Lexeme != "1.5" {
		t.Errorf("first token = %+v, want FLOAT 1.5", toks[0])
	}
	if toks[1].Type != token.DOT_DOT || toks[1].Lexeme != ".." {
		t.Errorf("second token = %+v, want DOT_DOT ..", toks[1])
	}
	if toks[3].Type != token.DOT_DOT || toks[3].Lexeme != "..=" {
		t.Errorf("fourth token = %+v, want DOT_DOT ..=", toks[3])
	}
}

func TestTokensLineCommentsAreSkipped(t *testing.T) {
	lx := lexer.New("test.nu", "x = 1 // trailing comment\ny = 2")
	toks := lx.Tokens()
	got := tokenTypes(toks)
	want := []token.Type{
		token.IDENTIFIER, token.EQUAL, token.INTEGER, token.NEWLINE,
		token.IDENTIFIER, token.EQUAL, token.INTEGER, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokensUnterminatedString(t *testing.T) {
	lx := lexer.New("test.nu", `"unterminated`)
	toks := lx.Tokens()
	if toks[0].Type != token.ERROR {
		t.Fatalf("expected an ERROR token for an unterminated string, got %s", toks[0].Type)
	}
}

func TestTokensTracksLineAndColumn(t *testing.T) {
	lx := lexer.New("test.nu", "a\nbc")
	toks := lx.Tokens()
	if toks[0].Line != 1 || toks[0].Column != 1 {
		t.Errorf("first identifier at %d:%d, want 1:1", toks[0].Line, toks[0].Column)
	}
	// toks[1] is the NEWLINE; toks[2] is "bc" on line 2.
	if toks[2].Line != 2 || toks[2].Column != 1 {
		t.Errorf("second identifier at %d:%d, want 2:1", toks[2].Line, toks[2].Column)
	}
}
