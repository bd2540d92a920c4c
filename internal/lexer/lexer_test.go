package lexer

import (
	"strings"
	"testing"

	"github.com/neon-lang/neon/internal/token"
)

func collect(input string) []token.Token {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestNextTokenOperators(t *testing.T) {
	input := `= == != < <= > >= + - * / % ! && || ++ -- += -= *= /= .. ..=`

	expected := []token.TokenType{
		token.ASSIGN, token.EQ, token.NOT_EQ, token.LT, token.LT_EQ,
		token.GT, token.GT_EQ, token.PLUS, token.MINUS, token.ASTERISK,
		token.SLASH, token.PERCENT, token.BANG, token.AND_AND, token.PIPE_PIPE,
		token.PLUS_PLUS, token.MINUS_MINUS, token.PLUS_ASSIGN, token.MINUS_ASSIGN,
		token.ASTERISK_ASSIGN, token.SLASH_ASSIGN, token.DOT_DOT, token.DOT_DOT_EQ,
		token.EOF,
	}

	toks := collect(input)
	if len(toks) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(toks))
	}
	for i, want := range expected {
		if toks[i].Type != want {
			t.Errorf("token %d: expected %q, got %q (%q)", i, want, toks[i].Type, toks[i].Lexeme)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `val var fn struct if else while for in return break continue import export print true false nil and or identifier`

	expected := []token.TokenType{
		token.VAL, token.VAR, token.FN, token.STRUCT, token.IF, token.ELSE,
		token.WHILE, token.FOR, token.IN, token.RETURN, token.BREAK,
		token.CONTINUE, token.IMPORT, token.EXPORT, token.PRINT, token.TRUE,
		token.FALSE, token.NIL, token.AND, token.OR, token.IDENT, token.EOF,
	}

	toks := collect(input)
	for i, want := range expected {
		if toks[i].Type != want {
			t.Errorf("token %d: expected %q, got %q", i, want, toks[i].Type)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input string
		value float64
	}{
		{"0", 0},
		{"42", 42},
		{"3.25", 3.25},
		{"1_000_000", 1000000},
		{"0xFF", 255},
		{"0X10", 16},
		{"0b1010", 10},
		{"0B11", 3},
		{"0o17", 15},
		{"0O7", 7},
		{"0xDEAD_BEEF", 3735928559},
		{"0b1010_0101", 165},
	}

	for _, tt := range tests {
		toks := collect(tt.input)
		if toks[0].Type != token.NUMBER {
			t.Errorf("%q: expected NUMBER, got %q (%v)", tt.input, toks[0].Type, toks[0].Literal)
			continue
		}
		if got := toks[0].Literal.(float64); got != tt.value {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.value, got)
		}
	}
}

func TestNumberLiteralErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"0b102", "invalid digit '2' in binary literal"},
		{"0o9", "invalid digit '9' in octal literal"},
		{"0x", "hexadecimal literal requires at least one digit"},
		{"0b", "binary literal requires at least one digit"},
		{"0o_", "octal literal requires at least one digit"},
		{"1_", "number literal cannot end with '_'"},
		{"0xAB_", "number literal cannot end with '_'"},
	}

	for _, tt := range tests {
		toks := collect(tt.input)
		if toks[0].Type != token.ERROR {
			t.Errorf("%q: expected ERROR token, got %q", tt.input, toks[0].Type)
			continue
		}
		if got := toks[0].Literal.(string); !strings.Contains(got, tt.message) {
			t.Errorf("%q: expected message containing %q, got %q", tt.input, tt.message, got)
		}
	}
}

func TestStrings(t *testing.T) {
	toks := collect(`"hello"`)
	if toks[0].Type != token.STRING || toks[0].Literal.(string) != "hello" {
		t.Fatalf("expected plain string 'hello', got %q %v", toks[0].Type, toks[0].Literal)
	}

	toks = collect(`"a\nb\t\"c\""`)
	if got := toks[0].Literal.(string); got != "a\nb\t\"c\"" {
		t.Fatalf("escape resolution failed: %q", got)
	}

	toks = collect(`"x = ${x + 1}!"`)
	if toks[0].Type != token.INTERP_STRING {
		t.Fatalf("expected INTERP_STRING, got %q", toks[0].Type)
	}
	if got := toks[0].Literal.(string); got != `x = ${x + 1}!` {
		t.Fatalf("interpolated raw content mismatch: %q", got)
	}

	// Escaped dollar stays a plain string.
	toks = collect(`"costs \${5}"`)
	if toks[0].Type != token.STRING {
		t.Fatalf("expected STRING for escaped interpolation, got %q", toks[0].Type)
	}

	toks = collect(`"unterminated`)
	if toks[0].Type != token.ERROR {
		t.Fatalf("expected ERROR for unterminated string, got %q", toks[0].Type)
	}
}

func TestNewlineCollapsing(t *testing.T) {
	input := "a\n\n\n\nb\n"
	toks := collect(input)

	expected := []token.TokenType{token.IDENT, token.NEWLINE, token.IDENT, token.NEWLINE, token.EOF}
	if len(toks) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(toks), toks)
	}
	for i, want := range expected {
		if toks[i].Type != want {
			t.Errorf("token %d: expected %q, got %q", i, want, toks[i].Type)
		}
	}
}

func TestCommentsSkipped(t *testing.T) {
	input := "a // trailing comment\nb"
	toks := collect(input)
	expected := []token.TokenType{token.IDENT, token.NEWLINE, token.IDENT, token.EOF}
	for i, want := range expected {
		if toks[i].Type != want {
			t.Errorf("token %d: expected %q, got %q", i, want, toks[i].Type)
		}
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	input := "val x\nval y"
	toks := collect(input)
	if toks[0].Line != 1 {
		t.Errorf("first token line: expected 1, got %d", toks[0].Line)
	}
	// tokens after the newline are on line 2
	if toks[3].Line != 2 {
		t.Errorf("post-newline token line: expected 2, got %d", toks[3].Line)
	}
}
