package ast

import (
	"github.com/neon-lang/neon/internal/token"
)

type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()       {}
func (nl *NumberLiteral) TokenLiteral() string  { return nl.Token.Lexeme }
func (nl *NumberLiteral) GetToken() token.Token { return nl.Token }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }

// InterpolatedString holds the alternating parts of "a ${x} b": string
// literals and embedded expressions, in source order.
type InterpolatedString struct {
	Token token.Token
	Parts []Expression
}

func (is *InterpolatedString) expressionNode()       {}
func (is *InterpolatedString) TokenLiteral() string  { return is.Token.Lexeme }
func (is *InterpolatedString) GetToken() token.Token { return is.Token }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()       {}
func (bl *BooleanLiteral) TokenLiteral() string  { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token { return bl.Token }

type NilLiteral struct {
	Token token.Token
}

func (nl *NilLiteral) expressionNode()       {}
func (nl *NilLiteral) TokenLiteral() string  { return nl.Token.Lexeme }
func (nl *NilLiteral) GetToken() token.Token { return nl.Token }

// AssignExpression writes a variable: x = expr. Compound assignments are
// desugared by the parser into x = x <op> expr.
type AssignExpression struct {
	Token token.Token // the '=' token
	Name  *Identifier
	Value Expression
}

func (ae *AssignExpression) expressionNode()       {}
func (ae *AssignExpression) TokenLiteral() string  { return ae.Token.Lexeme }
func (ae *AssignExpression) GetToken() token.Token { return ae.Token }

// PrefixExpression: -x or !x
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }

// InfixExpression covers arithmetic, comparison and the short-circuiting
// logical operators (the code generator compiles && and || to jumps).
type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }

// PostfixExpression: x++ or x-- ; evaluates to the value before the update.
type PostfixExpression struct {
	Token    token.Token
	Operand  Expression
	Operator string
}

func (pe *PostfixExpression) expressionNode()       {}
func (pe *PostfixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PostfixExpression) GetToken() token.Token { return pe.Token }

type CallExpression struct {
	Token     token.Token // the '(' token
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

// MethodCallExpression: obj.method(args). Kept distinct from CallExpression
// so the receiver can take the frame's slot 0.
type MethodCallExpression struct {
	Token     token.Token // the method name token
	Object    Expression
	Method    *Identifier
	Arguments []Expression
}

func (mc *MethodCallExpression) expressionNode()       {}
func (mc *MethodCallExpression) TokenLiteral() string  { return mc.Token.Lexeme }
func (mc *MethodCallExpression) GetToken() token.Token { return mc.Token }

// GetExpression reads a field: obj.name
type GetExpression struct {
	Token  token.Token // the name token
	Object Expression
	Name   *Identifier
}

func (ge *GetExpression) expressionNode()       {}
func (ge *GetExpression) TokenLiteral() string  { return ge.Token.Lexeme }
func (ge *GetExpression) GetToken() token.Token { return ge.Token }

// SetExpression writes a field: obj.name = value
type SetExpression struct {
	Token  token.Token
	Object Expression
	Name   *Identifier
	Value  Expression
}

func (se *SetExpression) expressionNode()       {}
func (se *SetExpression) TokenLiteral() string  { return se.Token.Lexeme }
func (se *SetExpression) GetToken() token.Token { return se.Token }

type IndexExpression struct {
	Token  token.Token // the '[' token
	Object Expression
	Index  Expression
}

func (ie *IndexExpression) expressionNode()       {}
func (ie *IndexExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token { return ie.Token }

// IndexAssignExpression: obj[index] = value
type IndexAssignExpression struct {
	Token  token.Token
	Object Expression
	Index  Expression
	Value  Expression
}

func (ia *IndexAssignExpression) expressionNode()       {}
func (ia *IndexAssignExpression) TokenLiteral() string  { return ia.Token.Lexeme }
func (ia *IndexAssignExpression) GetToken() token.Token { return ia.Token }

type ArrayLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()       {}
func (al *ArrayLiteral) TokenLiteral() string  { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token { return al.Token }

// MapLiteral: {k: v, ...}. A brace literal is a map iff it contains a colon.
type MapLiteral struct {
	Token token.Token // the '{' token
	Keys  []Expression
	Vals  []Expression
}

func (ml *MapLiteral) expressionNode()       {}
func (ml *MapLiteral) TokenLiteral() string  { return ml.Token.Lexeme }
func (ml *MapLiteral) GetToken() token.Token { return ml.Token }

// SetLiteral: {a, b, c}
type SetLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (sl *SetLiteral) expressionNode()       {}
func (sl *SetLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *SetLiteral) GetToken() token.Token { return sl.Token }

// RangeExpression: a..b (exclusive) or a..=b (inclusive)
type RangeExpression struct {
	Token     token.Token
	Start     Expression
	End       Expression
	Inclusive bool
}

func (re *RangeExpression) expressionNode()       {}
func (re *RangeExpression) TokenLiteral() string  { return re.Token.Lexeme }
func (re *RangeExpression) GetToken() token.Token { return re.Token }
