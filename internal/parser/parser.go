package parser

import (
	"fmt"

	"github.com/neon-lang/neon/internal/ast"
	"github.com/neon-lang/neon/internal/diagnostics"
	"github.com/neon-lang/neon/internal/pipeline"
	"github.com/neon-lang/neon/internal/token"
)

// MaxRecursionDepth bounds nested expressions so pathological input fails
// with a diagnostic instead of a stack overflow.
const MaxRecursionDepth = 512

// Operator precedence, lowest to highest.
const (
	_ int = iota
	LOWEST
	ASSIGNMENT // =
	OR         // || or
	AND        // && and
	EQUALITY   // == !=
	COMPARISON // < > <= >=
	RANGE      // .. ..=
	TERM       // + -
	FACTOR     // * / %
	UNARY      // ! -x
	CALL       // foo(x) obj.field arr[i] x++
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:          ASSIGNMENT,
	token.PLUS_ASSIGN:     ASSIGNMENT,
	token.MINUS_ASSIGN:    ASSIGNMENT,
	token.ASTERISK_ASSIGN: ASSIGNMENT,
	token.SLASH_ASSIGN:    ASSIGNMENT,
	token.PIPE_PIPE:       OR,
	token.OR:              OR,
	token.AND_AND:         AND,
	token.AND:             AND,
	token.EQ:              EQUALITY,
	token.NOT_EQ:          EQUALITY,
	token.LT:              COMPARISON,
	token.GT:              COMPARISON,
	token.LT_EQ:           COMPARISON,
	token.GT_EQ:           COMPARISON,
	token.DOT_DOT:         RANGE,
	token.DOT_DOT_EQ:      RANGE,
	token.PLUS:            TERM,
	token.MINUS:           TERM,
	token.ASTERISK:        FACTOR,
	token.SLASH:           FACTOR,
	token.PERCENT:         FACTOR,
	token.LPAREN:          CALL,
	token.DOT:             CALL,
	token.LBRACKET:        CALL,
	token.PLUS_PLUS:       CALL,
	token.MINUS_MINUS:     CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	tokens   []token.Token
	position int

	curToken  token.Token
	prevToken token.Token
	peekToken token.Token

	ctx   *pipeline.PipelineContext
	depth int

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(tokens []token.Token, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{tokens: tokens, ctx: ctx}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT:         p.parseIdentifier,
		token.NUMBER:        p.parseNumberLiteral,
		token.STRING:        p.parseStringLiteral,
		token.INTERP_STRING: p.parseInterpolatedString,
		token.TRUE:          p.parseBooleanLiteral,
		token.FALSE:         p.parseBooleanLiteral,
		token.NIL:           p.parseNilLiteral,
		token.BANG:          p.parsePrefixExpression,
		token.MINUS:         p.parsePrefixExpression,
		token.LPAREN:        p.parseGroupedExpression,
		token.LBRACKET:      p.parseArrayLiteral,
		token.LBRACE:        p.parseBraceLiteral,
	}

	p.infixParseFns = map[token.TokenType]infixParseFn{
		token.PLUS:            p.parseInfixExpression,
		token.MINUS:           p.parseInfixExpression,
		token.ASTERISK:        p.parseInfixExpression,
		token.SLASH:           p.parseInfixExpression,
		token.PERCENT:         p.parseInfixExpression,
		token.EQ:              p.parseInfixExpression,
		token.NOT_EQ:          p.parseInfixExpression,
		token.LT:              p.parseInfixExpression,
		token.GT:              p.parseInfixExpression,
		token.LT_EQ:           p.parseInfixExpression,
		token.GT_EQ:           p.parseInfixExpression,
		token.AND_AND:         p.parseInfixExpression,
		token.PIPE_PIPE:       p.parseInfixExpression,
		token.AND:             p.parseLogicalKeyword,
		token.OR:              p.parseLogicalKeyword,
		token.DOT_DOT:         p.parseRangeExpression,
		token.DOT_DOT_EQ:      p.parseRangeExpression,
		token.ASSIGN:          p.parseAssignExpression,
		token.PLUS_ASSIGN:     p.parseCompoundAssign,
		token.MINUS_ASSIGN:    p.parseCompoundAssign,
		token.ASTERISK_ASSIGN: p.parseCompoundAssign,
		token.SLASH_ASSIGN:    p.parseCompoundAssign,
		token.LPAREN:          p.parseCallExpression,
		token.DOT:             p.parseDotExpression,
		token.LBRACKET:        p.parseIndexExpression,
		token.PLUS_PLUS:       p.parsePostfixExpression,
		token.MINUS_MINUS:     p.parsePostfixExpression,
	}

	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	if p.position < len(p.tokens) {
		p.peekToken = p.tokens[p.position]
		p.position++
	} else if len(p.tokens) > 0 {
		p.peekToken = p.tokens[len(p.tokens)-1] // EOF repeats
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) addError(code diagnostics.ErrorCode, tok token.Token, msg string) {
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(code, tok, msg))
}

func (p *Parser) peekError(t token.TokenType) {
	p.addError(diagnostics.ErrP001, p.peekToken,
		fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.addError(diagnostics.ErrP002, tok, "Expect expression")
}

// reportErrorToken converts a lexer ERROR token into a diagnostic.
func (p *Parser) reportErrorToken(tok token.Token) {
	msg, _ := tok.Literal.(string)
	p.addError(diagnostics.ErrL001, tok, msg)
}

// synchronize skips tokens after a parse error until a statement boundary
// (just past a newline, at EOF) or a keyword that begins a new declaration,
// so one parse surfaces every independent error.
func (p *Parser) synchronize() {
	if !p.curTokenIs(token.EOF) {
		p.nextToken() // always make progress
	}
	for !p.curTokenIs(token.EOF) {
		if p.prevToken.Type == token.NEWLINE {
			return
		}
		switch p.curToken.Type {
		case token.FN, token.STRUCT, token.VAL, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN,
			token.IMPORT, token.EXPORT:
			return
		}
		p.nextToken()
	}
}

// ParseProgram parses the whole token stream, accumulating diagnostics.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		errsBefore := len(p.ctx.Errors)
		stmt := p.parseStatement()
		if stmt != nil && len(p.ctx.Errors) == errsBefore {
			program.Statements = append(program.Statements, stmt)
			p.nextToken()
			p.expectTerminator()
		} else {
			p.synchronize()
		}
	}
	return program
}

// expectTerminator checks that the statement just parsed ends at a newline,
// EOF, or a closing brace. The newline itself is left for the caller's
// skip loop.
func (p *Parser) expectTerminator() {
	if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.EOF) || p.curTokenIs(token.RBRACE) {
		return
	}
	p.addError(diagnostics.ErrP003, p.curToken,
		fmt.Sprintf("Expecting '\\n' or '\\0' after statement, got %s", p.curToken.Type))
	p.synchronize()
}
