package parser

import (
	"fmt"

	"github.com/neon-lang/neon/internal/ast"
	"github.com/neon-lang/neon/internal/diagnostics"
	"github.com/neon-lang/neon/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.addError(diagnostics.ErrP006, p.curToken,
			"expression too complex: recursion depth limit exceeded")
		return nil
	}

	if p.curTokenIs(token.ERROR) {
		p.reportErrorToken(p.curToken)
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	value, ok := p.curToken.Literal.(float64)
	if !ok {
		p.addError(diagnostics.ErrP006, p.curToken,
			fmt.Sprintf("could not parse %q as number", p.curToken.Lexeme))
		return nil
	}
	return &ast.NumberLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	value, _ := p.curToken.Literal.(string)
	return &ast.StringLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNilLiteral() ast.Expression {
	return &ast.NilLiteral{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Lexeme}
	p.nextToken()
	expr.Right = p.parseExpression(UNARY)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{Token: p.curToken, Left: left, Operator: p.curToken.Lexeme}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

// parseLogicalKeyword maps the spelled operators to their symbolic forms so
// downstream stages see one representation.
func (p *Parser) parseLogicalKeyword(left ast.Expression) ast.Expression {
	op := "&&"
	if p.curTokenIs(token.OR) {
		op = "||"
	}
	expr := &ast.InfixExpression{Token: p.curToken, Left: left, Operator: op}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseRangeExpression(left ast.Expression) ast.Expression {
	expr := &ast.RangeExpression{
		Token:     p.curToken,
		Start:     left,
		Inclusive: p.curTokenIs(token.DOT_DOT_EQ),
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.End = p.parseExpression(precedence)
	if expr.End == nil {
		return nil
	}
	return expr
}

// parseAssignExpression handles "target = value" where target must be a
// variable, a field access, or an index access. Right-associative.
func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	assignTok := p.curToken
	p.nextToken()
	value := p.parseExpression(ASSIGNMENT - 1)
	if value == nil {
		return nil
	}
	return p.buildAssignTarget(assignTok, left, value)
}

// parseCompoundAssign desugars "x += e" into "x = x + e".
func (p *Parser) parseCompoundAssign(left ast.Expression) ast.Expression {
	assignTok := p.curToken
	op := string(assignTok.Lexeme[0]) // +, -, *, /
	p.nextToken()
	right := p.parseExpression(ASSIGNMENT - 1)
	if right == nil {
		return nil
	}
	value := &ast.InfixExpression{Token: assignTok, Left: left, Operator: op, Right: right}
	return p.buildAssignTarget(assignTok, left, value)
}

func (p *Parser) buildAssignTarget(assignTok token.Token, target ast.Expression, value ast.Expression) ast.Expression {
	switch t := target.(type) {
	case *ast.Identifier:
		return &ast.AssignExpression{Token: assignTok, Name: t, Value: value}
	case *ast.GetExpression:
		return &ast.SetExpression{Token: assignTok, Object: t.Object, Name: t.Name, Value: value}
	case *ast.IndexExpression:
		return &ast.IndexAssignExpression{Token: assignTok, Object: t.Object, Index: t.Index, Value: value}
	default:
		p.addError(diagnostics.ErrP004, assignTok, "Invalid assignment target")
		return nil
	}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	lparen := p.curToken
	args := p.parseExpressionList(token.RPAREN)
	if args == nil {
		return nil
	}
	// obj.method(...) keeps its receiver explicit for the calling convention.
	if get, ok := callee.(*ast.GetExpression); ok {
		return &ast.MethodCallExpression{
			Token:     get.Token,
			Object:    get.Object,
			Method:    get.Name,
			Arguments: args,
		}
	}
	return &ast.CallExpression{Token: lparen, Callee: callee, Arguments: args}
}

// parseExpressionList parses a comma-separated list with curToken on the
// opening delimiter; returns with curToken on end. A nil return signals a
// parse error (an empty list is a non-nil zero-length slice).
func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	list := []ast.Expression{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	list = append(list, expr)
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		expr = p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		list = append(list, expr)
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseDotExpression(object ast.Expression) ast.Expression {
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	return &ast.GetExpression{Token: p.curToken, Object: object, Name: name}
}

func (p *Parser) parseIndexExpression(object ast.Expression) ast.Expression {
	expr := &ast.IndexExpression{Token: p.curToken, Object: object}
	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)
	if expr.Index == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return expr
}

func (p *Parser) parsePostfixExpression(operand ast.Expression) ast.Expression {
	switch operand.(type) {
	case *ast.Identifier, *ast.GetExpression, *ast.IndexExpression:
	default:
		p.addError(diagnostics.ErrP004, p.curToken,
			fmt.Sprintf("invalid operand for '%s'", p.curToken.Lexeme))
		return nil
	}
	return &ast.PostfixExpression{Token: p.curToken, Operand: operand, Operator: p.curToken.Lexeme}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	arr := &ast.ArrayLiteral{Token: p.curToken}
	elements := p.parseExpressionList(token.RBRACKET)
	if elements == nil {
		return nil
	}
	arr.Elements = elements
	return arr
}

// parseBraceLiteral parses {..}: a map when any entry uses a colon, a set
// otherwise. {} is an empty map.
func (p *Parser) parseBraceLiteral() ast.Expression {
	braceTok := p.curToken

	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return &ast.MapLiteral{Token: braceTok}
	}

	p.nextToken()
	p.skipNewlines()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}

	if p.peekTokenIs(token.COLON) {
		return p.parseMapLiteral(braceTok, first)
	}
	return p.parseSetLiteral(braceTok, first)
}

func (p *Parser) parseMapLiteral(braceTok token.Token, firstKey ast.Expression) ast.Expression {
	m := &ast.MapLiteral{Token: braceTok}
	p.nextToken() // ':'
	p.nextToken()
	firstVal := p.parseExpression(LOWEST)
	if firstVal == nil {
		return nil
	}
	m.Keys = append(m.Keys, firstKey)
	m.Vals = append(m.Vals, firstVal)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		p.skipNewlines()
		key := p.parseExpression(LOWEST)
		if key == nil {
			return nil
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		val := p.parseExpression(LOWEST)
		if val == nil {
			return nil
		}
		m.Keys = append(m.Keys, key)
		m.Vals = append(m.Vals, val)
	}
	p.skipPeekNewlines()
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return m
}

func (p *Parser) parseSetLiteral(braceTok token.Token, first ast.Expression) ast.Expression {
	s := &ast.SetLiteral{Token: braceTok, Elements: []ast.Expression{first}}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		p.skipNewlines()
		el := p.parseExpression(LOWEST)
		if el == nil {
			return nil
		}
		s.Elements = append(s.Elements, el)
	}
	p.skipPeekNewlines()
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return s
}

func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) skipPeekNewlines() {
	for p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}
