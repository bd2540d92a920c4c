package parser

import (
	"strings"

	"github.com/neon-lang/neon/internal/ast"
	"github.com/neon-lang/neon/internal/diagnostics"
	"github.com/neon-lang/neon/internal/lexer"
	"github.com/neon-lang/neon/internal/token"
)

// parseInterpolatedString splits the raw content of an INTERP_STRING token
// into literal and expression parts. Each ${...} region is parsed by a
// nested lexer+parser sharing this parser's diagnostic sink.
func (p *Parser) parseInterpolatedString() ast.Expression {
	strTok := p.curToken
	raw, _ := strTok.Literal.(string)

	node := &ast.InterpolatedString{Token: strTok}

	var literal strings.Builder
	flush := func() {
		node.Parts = append(node.Parts, &ast.StringLiteral{Token: strTok, Value: literal.String()})
		literal.Reset()
	}

	i := 0
	for i < len(raw) {
		ch := raw[i]
		if ch == '\\' && i+1 < len(raw) {
			literal.WriteString(resolveEscapeByte(raw[i+1]))
			i += 2
			continue
		}
		if ch == '$' && i+1 < len(raw) && raw[i+1] == '{' {
			end := findInterpEnd(raw, i+2)
			if end < 0 {
				p.addError(diagnostics.ErrP006, strTok, "unterminated '${' in string interpolation")
				return nil
			}
			exprText := raw[i+2 : end]
			expr := p.parseEmbeddedExpression(exprText, strTok)
			if expr == nil {
				return nil
			}
			if literal.Len() > 0 {
				flush()
			}
			node.Parts = append(node.Parts, expr)
			i = end + 1
			continue
		}
		literal.WriteByte(ch)
		i++
	}
	if literal.Len() > 0 {
		flush()
	}
	return node
}

// findInterpEnd locates the '}' closing an interpolation, skipping over
// nested braces and embedded string literals. Returns -1 if unbalanced.
func findInterpEnd(raw string, start int) int {
	depth := 1
	inString := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseEmbeddedExpression compiles one ${...} region. Diagnostics from the
// nested parse land in the shared context, anchored at the string token.
func (p *Parser) parseEmbeddedExpression(text string, strTok token.Token) ast.Expression {
	l := lexer.New(text)
	var toks []token.Token
	for {
		tok := l.NextToken()
		// Reanchor positions at the enclosing string literal.
		tok.Line = strTok.Line
		tok.Column = strTok.Column
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}

	sub := New(toks, p.ctx)
	expr := sub.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !sub.peekTokenIs(token.EOF) && !sub.curTokenIs(token.EOF) {
		p.addError(diagnostics.ErrP006, strTok, "invalid expression in string interpolation")
		return nil
	}
	return expr
}

func resolveEscapeByte(ch byte) string {
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
