package parser

import (
	"fmt"

	"github.com/neon-lang/neon/internal/ast"
	"github.com/neon-lang/neon/internal/diagnostics"
	"github.com/neon-lang/neon/internal/token"
)

// parseStatement dispatches on the current token. Every parse function
// returns with curToken on the last token of its construct.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.ERROR:
		p.reportErrorToken(p.curToken)
		return nil
	case token.VAL:
		return p.parseValStatement()
	case token.VAR:
		return p.parseVarStatement()
	case token.FN:
		return p.parseFunctionStatement()
	case token.STRUCT:
		return p.parseStructStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return &ast.BreakStatement{Token: p.curToken}
	case token.CONTINUE:
		return &ast.ContinueStatement{Token: p.curToken}
	case token.IMPORT:
		return p.parseImportStatement()
	case token.EXPORT:
		return p.parseExportStatement()
	case token.PRINT:
		return p.parsePrintStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseValStatement() ast.Statement {
	stmt := &ast.ValStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseVarStatement() ast.Statement {
	stmt := &ast.VarStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	stmt := &ast.FunctionStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	stmt.Params = p.parseParameterList()
	if stmt.Params == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

// parseParameterList parses "(a, b, c)" with curToken on '('; returns with
// curToken on ')'. An empty list returns a non-nil zero-length slice.
func (p *Parser) parseParameterList() []*ast.Identifier {
	params := []*ast.Identifier{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseStructStatement() ast.Statement {
	stmt := &ast.StructStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.NEWLINE:
			p.nextToken()
		case token.IDENT:
			stmt.Fields = append(stmt.Fields, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
			p.nextToken()
			p.expectTerminator()
		case token.FN:
			method := p.parseFunctionStatement()
			if method == nil {
				p.synchronize()
				continue
			}
			stmt.Methods = append(stmt.Methods, method)
			p.nextToken()
			p.expectTerminator()
		default:
			p.addError(diagnostics.ErrP001, p.curToken,
				fmt.Sprintf("expected field or method in struct body, got %s", p.curToken.Type))
			p.synchronize()
		}
	}
	if !p.curTokenIs(token.RBRACE) {
		p.addError(diagnostics.ErrP001, p.curToken, "expected '}' to close struct body")
		return nil
	}
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Then = p.parseBlockStatement()

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			stmt.Else = p.parseIfStatement()
		} else {
			if !p.expectPeek(token.LBRACE) {
				return nil
			}
			stmt.Else = p.parseBlockStatement()
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

// parseForStatement handles both loop forms:
//
//	for x in iterable { ... }
//	for init; cond; incr { ... }
func (p *Parser) parseForStatement() ast.Statement {
	forTok := p.curToken

	// for x in ...: peekToken is the IDENT, tokens[position] the one after it.
	if p.peekTokenIs(token.IDENT) && p.position < len(p.tokens) &&
		p.tokens[p.position].Type == token.IN {
		return p.parseForInStatement(forTok)
	}

	stmt := &ast.ForStatement{Token: forTok}
	p.nextToken()

	if !p.curTokenIs(token.SEMICOLON) {
		stmt.Init = p.parseSimpleStatement()
		if stmt.Init == nil {
			return nil
		}
		p.nextToken()
	}
	if !p.curTokenIs(token.SEMICOLON) {
		p.addError(diagnostics.ErrP001, p.curToken, "expected ';' after for-loop initializer")
		return nil
	}
	p.nextToken()

	if !p.curTokenIs(token.SEMICOLON) {
		stmt.Condition = p.parseExpression(LOWEST)
		if stmt.Condition == nil {
			return nil
		}
		p.nextToken()
	}
	if !p.curTokenIs(token.SEMICOLON) {
		p.addError(diagnostics.ErrP001, p.curToken, "expected ';' after for-loop condition")
		return nil
	}
	p.nextToken()

	if !p.curTokenIs(token.LBRACE) {
		stmt.Increment = p.parseSimpleStatement()
		if stmt.Increment == nil {
			return nil
		}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

// parseSimpleStatement parses the restricted statements legal in a for
// header: a val/var declaration or an expression.
func (p *Parser) parseSimpleStatement() ast.Statement {
	switch p.curToken.Type {
	case token.VAL:
		return p.parseValStatement()
	case token.VAR:
		return p.parseVarStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseForInStatement(forTok token.Token) ast.Statement {
	stmt := &ast.ForInStatement{Token: forTok}
	p.nextToken() // the loop variable
	stmt.Variable = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	p.nextToken() // 'in'
	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)
	if stmt.Iterable == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.EOF) || p.peekTokenIs(token.RBRACE) {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseImportStatement() ast.Statement {
	stmt := &ast.ImportStatement{Token: p.curToken}
	switch p.peekToken.Type {
	case token.STRING:
		p.nextToken()
		stmt.Path, _ = p.curToken.Literal.(string)
	case token.IDENT:
		p.nextToken()
		stmt.Path = p.curToken.Lexeme
		stmt.Alias = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	default:
		p.addError(diagnostics.ErrP001, p.peekToken,
			"expected module path (string or identifier) after 'import'")
		return nil
	}
	return stmt
}

func (p *Parser) parseExportStatement() ast.Statement {
	stmt := &ast.ExportStatement{Token: p.curToken}
	p.nextToken()
	switch p.curToken.Type {
	case token.VAL, token.VAR, token.FN, token.STRUCT:
		stmt.Inner = p.parseStatement()
	default:
		p.addError(diagnostics.ErrP001, p.curToken,
			"only val, var, fn and struct declarations can be exported")
		return nil
	}
	if stmt.Inner == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parsePrintStatement() ast.Statement {
	stmt := &ast.PrintStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

// parseBlockStatement parses "{ ... }" with curToken on '{'; returns with
// curToken on '}'.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		errsBefore := len(p.ctx.Errors)
		stmt := p.parseStatement()
		if stmt != nil && len(p.ctx.Errors) == errsBefore {
			block.Statements = append(block.Statements, stmt)
			p.nextToken()
			p.expectTerminator()
		} else {
			p.synchronize()
		}
	}
	if !p.curTokenIs(token.RBRACE) {
		p.addError(diagnostics.ErrP001, p.curToken, "expected '}' to close block")
	}
	return block
}
