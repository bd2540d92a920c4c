package ast

import (
	"github.com/neon-lang/neon/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string // Source file path
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// ValStatement is an immutable binding: val x = expr
type ValStatement struct {
	Token token.Token // the 'val' token
	Name  *Identifier
	Value Expression
}

func (vs *ValStatement) statementNode()        {}
func (vs *ValStatement) TokenLiteral() string  { return vs.Token.Lexeme }
func (vs *ValStatement) GetToken() token.Token { return vs.Token }

// VarStatement is a mutable binding: var x = expr
type VarStatement struct {
	Token token.Token // the 'var' token
	Name  *Identifier
	Value Expression
}

func (vs *VarStatement) statementNode()        {}
func (vs *VarStatement) TokenLiteral() string  { return vs.Token.Lexeme }
func (vs *VarStatement) GetToken() token.Token { return vs.Token }

// FunctionStatement declares a named function: fn name(params) { body }
type FunctionStatement struct {
	Token  token.Token // the 'fn' token
	Name   *Identifier
	Params []*Identifier
	Body   *BlockStatement
}

func (fs *FunctionStatement) statementNode()        {}
func (fs *FunctionStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token { return fs.Token }

// StructStatement declares a struct with fields and methods.
//
//	struct Point {
//	    x
//	    y
//	    fn dist(other) { ... }
//	}
type StructStatement struct {
	Token   token.Token // the 'struct' token
	Name    *Identifier
	Fields  []*Identifier
	Methods []*FunctionStatement
}

func (ss *StructStatement) statementNode()        {}
func (ss *StructStatement) TokenLiteral() string  { return ss.Token.Lexeme }
func (ss *StructStatement) GetToken() token.Token { return ss.Token }

// ExpressionStatement wraps an expression used in statement position.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }

// BlockStatement is a braced statement list with its own scope.
type BlockStatement struct {
	Token      token.Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()        {}
func (bs *BlockStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token { return bs.Token }

// IfStatement: if cond { ... } else { ... } — Else is a *BlockStatement or
// another *IfStatement (else-if chain), or nil.
type IfStatement struct {
	Token     token.Token
	Condition Expression
	Then      *BlockStatement
	Else      Statement
}

func (is *IfStatement) statementNode()        {}
func (is *IfStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token { return is.Token }

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()        {}
func (ws *WhileStatement) TokenLiteral() string  { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token { return ws.Token }

// ForStatement is the C-style loop: for init; cond; incr { body }.
// Continue jumps to the increment, not the condition.
type ForStatement struct {
	Token     token.Token
	Init      Statement  // nil when omitted
	Condition Expression // nil means always true
	Increment Statement  // nil when omitted
	Body      *BlockStatement
}

func (fs *ForStatement) statementNode()        {}
func (fs *ForStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token { return fs.Token }

// ForInStatement iterates arrays, sets, maps (keys), strings and ranges.
type ForInStatement struct {
	Token    token.Token
	Variable *Identifier
	Iterable Expression
	Body     *BlockStatement
}

func (fs *ForInStatement) statementNode()        {}
func (fs *ForInStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *ForInStatement) GetToken() token.Token { return fs.Token }

type ReturnStatement struct {
	Token token.Token
	Value Expression // nil for bare return
}

func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }

type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()        {}
func (bs *BreakStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BreakStatement) GetToken() token.Token { return bs.Token }

type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()        {}
func (cs *ContinueStatement) TokenLiteral() string  { return cs.Token.Lexeme }
func (cs *ContinueStatement) GetToken() token.Token { return cs.Token }

// ImportStatement: import "./lib" or import lib
type ImportStatement struct {
	Token token.Token
	Path  string
	Alias *Identifier // nil unless the identifier form names the binding
}

func (is *ImportStatement) statementNode()        {}
func (is *ImportStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *ImportStatement) GetToken() token.Token { return is.Token }

// ExportStatement wraps a val/var/fn/struct declaration.
type ExportStatement struct {
	Token token.Token
	Inner Statement
}

func (es *ExportStatement) statementNode()        {}
func (es *ExportStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExportStatement) GetToken() token.Token { return es.Token }

// PrintStatement: print expr
type PrintStatement struct {
	Token token.Token
	Value Expression
}

func (ps *PrintStatement) statementNode()        {}
func (ps *PrintStatement) TokenLiteral() string  { return ps.Token.Lexeme }
func (ps *PrintStatement) GetToken() token.Token { return ps.Token }
