package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/neon-lang/neon/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.position = l.readPosition
		l.readPosition += w
		l.column++
		return
	}

	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '\n':
		// Consecutive blank lines collapse into a single terminator.
		tok = newToken(token.NEWLINE, '\n', l.line, l.column)
		for {
			l.readChar()
			l.skipWhitespace()
			if l.ch != '\n' {
				return tok
			}
		}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.EQ, Lexeme: "==", Literal: "==", Line: l.line, Column: l.column}
		} else {
			tok = newToken(token.ASSIGN, l.ch, l.line, l.column)
		}
	case '+':
		if l.peekChar() == '+' {
			l.readChar()
			tok = token.Token{Type: token.PLUS_PLUS, Lexeme: "++", Literal: "++", Line: l.line, Column: l.column}
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.PLUS_ASSIGN, Lexeme: "+=", Literal: "+=", Line: l.line, Column: l.column}
		} else {
			tok = newToken(token.PLUS, l.ch, l.line, l.column)
		}
	case '-':
		if l.peekChar() == '-' {
			l.readChar()
			tok = token.Token{Type: token.MINUS_MINUS, Lexeme: "--", Literal: "--", Line: l.line, Column: l.column}
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.MINUS_ASSIGN, Lexeme: "-=", Literal: "-=", Line: l.line, Column: l.column}
		} else {
			tok = newToken(token.MINUS, l.ch, l.line, l.column)
		}
	case '*':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.ASTERISK_ASSIGN, Lexeme: "*=", Literal: "*=", Line: l.line, Column: l.column}
		} else {
			tok = newToken(token.ASTERISK, l.ch, l.line, l.column)
		}
	case '/':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.SLASH_ASSIGN, Lexeme: "/=", Literal: "/=", Line: l.line, Column: l.column}
		} else {
			tok = newToken(token.SLASH, l.ch, l.line, l.column)
		}
	case '%':
		tok = newToken(token.PERCENT, l.ch, l.line, l.column)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.NOT_EQ, Lexeme: "!=", Literal: "!=", Line: l.line, Column: l.column}
		} else {
			tok = newToken(token.BANG, l.ch, l.line, l.column)
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.LT_EQ, Lexeme: "<=", Literal: "<=", Line: l.line, Column: l.column}
		} else {
			tok = newToken(token.LT, l.ch, l.line, l.column)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GT_EQ, Lexeme: ">=", Literal: ">=", Line: l.line, Column: l.column}
		} else {
			tok = newToken(token.GT, l.ch, l.line, l.column)
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = token.Token{Type: token.AND_AND, Lexeme: "&&", Literal: "&&", Line: l.line, Column: l.column}
		} else {
			tok = l.errorToken(fmt.Sprintf("unexpected character '%c'", l.ch))
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = token.Token{Type: token.PIPE_PIPE, Lexeme: "||", Literal: "||", Line: l.line, Column: l.column}
		} else {
			tok = l.errorToken(fmt.Sprintf("unexpected character '%c'", l.ch))
		}
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok = token.Token{Type: token.DOT_DOT_EQ, Lexeme: "..=", Literal: "..=", Line: l.line, Column: l.column}
			} else {
				tok = token.Token{Type: token.DOT_DOT, Lexeme: "..", Literal: "..", Line: l.line, Column: l.column}
			}
		} else {
			tok = newToken(token.DOT, l.ch, l.line, l.column)
		}
	case ',':
		tok = newToken(token.COMMA, l.ch, l.line, l.column)
	case ':':
		tok = newToken(token.COLON, l.ch, l.line, l.column)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, l.line, l.column)
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	case '{':
		tok = newToken(token.LBRACE, l.ch, l.line, l.column)
	case '}':
		tok = newToken(token.RBRACE, l.ch, l.line, l.column)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, l.line, l.column)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, l.line, l.column)
	case '"':
		return l.readStringToken()
	case 0:
		tok = token.Token{Type: token.EOF, Lexeme: "", Literal: "", Line: l.line, Column: l.column}
	default:
		if isLetter(l.ch) {
			line, col := l.line, l.column
			ident := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(ident), Lexeme: ident, Literal: ident, Line: line, Column: col}
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		tok = l.errorToken(fmt.Sprintf("unexpected character '%c'", l.ch))
	}

	l.readChar()
	return tok
}

// readNumber scans a decimal literal (with optional fraction) or a
// radix-prefixed integer (0x / 0b / 0o) with digit-group underscores.
func (l *Lexer) readNumber() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	base := 10
	baseName := "decimal"

	if l.ch == '0' {
		switch l.peekChar() {
		case 'x', 'X':
			l.readChar()
			l.readChar()
			base, baseName = 16, "hexadecimal"
		case 'b', 'B':
			l.readChar()
			l.readChar()
			base, baseName = 2, "binary"
		case 'o', 'O':
			l.readChar()
			l.readChar()
			base, baseName = 8, "octal"
		}
	}

	digitsStart := l.position
	lastWasUnderscore := false
	sawDigit := false
	for {
		if l.ch == '_' {
			lastWasUnderscore = true
			l.readChar()
			continue
		}
		if !isDigitInBase(l.ch, 16) {
			break
		}
		if !isDigitInBase(l.ch, base) {
			lexeme := l.input[position:l.readPosition]
			return token.Token{Type: token.ERROR, Lexeme: lexeme,
				Literal: fmt.Sprintf("invalid digit '%c' in %s literal", l.ch, baseName),
				Line:    startLine, Column: startCol}
		}
		lastWasUnderscore = false
		sawDigit = true
		l.readChar()
	}

	if base != 10 && !sawDigit {
		lexeme := l.input[position:l.position]
		return token.Token{Type: token.ERROR, Lexeme: lexeme,
			Literal: fmt.Sprintf("%s literal requires at least one digit", baseName),
			Line:    startLine, Column: startCol}
	}

	if base == 10 && l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			lastWasUnderscore = l.ch == '_'
			l.readChar()
		}
	}

	lexeme := l.input[position:l.position]

	if lastWasUnderscore {
		return token.Token{Type: token.ERROR, Lexeme: lexeme,
			Literal: "number literal cannot end with '_'",
			Line:    startLine, Column: startCol}
	}

	digits := strings.ReplaceAll(l.input[digitsStart:l.position], "_", "")
	if base != 10 {
		val, err := strconv.ParseUint(digits, base, 64)
		if err != nil {
			return token.Token{Type: token.ERROR, Lexeme: lexeme,
				Literal: fmt.Sprintf("invalid %s literal", baseName),
				Line:    startLine, Column: startCol}
		}
		return token.Token{Type: token.NUMBER, Lexeme: lexeme, Literal: float64(val), Line: startLine, Column: startCol}
	}

	val, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return token.Token{Type: token.ERROR, Lexeme: lexeme,
			Literal: "invalid number literal",
			Line:    startLine, Column: startCol}
	}
	return token.Token{Type: token.NUMBER, Lexeme: lexeme, Literal: val, Line: startLine, Column: startCol}
}

// readStringToken scans a double-quoted string. If the content contains an
// unescaped ${...} region the token is INTERP_STRING and Literal carries the
// raw (unprocessed) content for the parser to split; otherwise Literal is
// the content with escape sequences resolved.
func (l *Lexer) readStringToken() token.Token {
	startLine, startCol := l.line, l.column
	contentStart := l.readPosition

	var processed strings.Builder
	hasInterp := false
	// Brace depth inside an interpolation; a nested '"' toggles innerString
	// so braces inside embedded string literals are ignored.
	depth := 0
	innerString := false

	for {
		l.readChar()
		if l.ch == 0 {
			return token.Token{Type: token.ERROR, Lexeme: l.input[contentStart-1 : l.position],
				Literal: "unterminated string", Line: startLine, Column: startCol}
		}

		if depth > 0 {
			if innerString {
				if l.ch == '\\' {
					l.readChar()
				} else if l.ch == '"' {
					innerString = false
				}
				continue
			}
			switch l.ch {
			case '"':
				innerString = true
			case '{':
				depth++
			case '}':
				depth--
			case '\n':
				return token.Token{Type: token.ERROR, Lexeme: l.input[contentStart-1 : l.position],
					Literal: "unterminated string", Line: startLine, Column: startCol}
			}
			continue
		}

		if l.ch == '"' {
			break
		}
		if l.ch == '\n' {
			return token.Token{Type: token.ERROR, Lexeme: l.input[contentStart-1 : l.position],
				Literal: "unterminated string", Line: startLine, Column: startCol}
		}
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 {
				return token.Token{Type: token.ERROR, Lexeme: l.input[contentStart-1 : l.position],
					Literal: "unterminated string", Line: startLine, Column: startCol}
			}
			processed.WriteString(resolveEscape(l.ch))
			continue
		}
		if l.ch == '$' && l.peekChar() == '{' {
			hasInterp = true
			l.readChar() // {
			depth = 1
			continue
		}
		processed.WriteRune(l.ch)
	}

	raw := l.input[contentStart:l.position]
	l.readChar() // closing quote

	if hasInterp {
		return token.Token{Type: token.INTERP_STRING, Lexeme: raw, Literal: raw, Line: startLine, Column: startCol}
	}
	return token.Token{Type: token.STRING, Lexeme: raw, Literal: processed.String(), Line: startLine, Column: startCol}
}

func resolveEscape(ch rune) string {
	switch ch {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '"':
		return "\""
	case '\\':
		return "\\"
	case '$':
		return "$"
	case '0':
		return "\x00"
	default:
		return "\\" + string(ch)
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) errorToken(msg string) token.Token {
	return token.Token{Type: token.ERROR, Lexeme: string(l.ch), Literal: msg, Line: l.line, Column: l.column}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isDigitInBase(ch rune, base int) bool {
	switch {
	case '0' <= ch && ch <= '9':
		return int(ch-'0') < base
	case 'a' <= ch && ch <= 'f':
		return base == 16
	case 'A' <= ch && ch <= 'F':
		return base == 16
	default:
		return false
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		// Line comments run to end of line; the newline itself stays
		// significant as a statement terminator.
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}
