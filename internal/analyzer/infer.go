package analyzer

import (
	"github.com/neon-lang/neon/internal/ast"
	"github.com/neon-lang/neon/internal/symbols"
)

// inferType computes a best-effort static type for expr. TypeUnknown means
// "don't know" and downstream checks must not fire on it.
func (a *Analyzer) inferType(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return TypeNumber
	case *ast.StringLiteral, *ast.InterpolatedString:
		return TypeString
	case *ast.BooleanLiteral:
		return TypeBoolean
	case *ast.NilLiteral:
		return TypeNil
	case *ast.ArrayLiteral:
		return TypeArray
	case *ast.MapLiteral:
		return TypeMap
	case *ast.SetLiteral:
		return TypeSet
	case *ast.RangeExpression:
		return TypeRange
	case *ast.Identifier:
		if sym, ok := a.table.Resolve(e.Value); ok {
			return a.typeEnv[sym]
		}
		return TypeUnknown
	case *ast.AssignExpression:
		return a.inferType(e.Value)
	case *ast.PrefixExpression:
		if e.Operator == "!" {
			return TypeBoolean
		}
		return TypeNumber
	case *ast.InfixExpression:
		return a.inferInfix(e)
	case *ast.PostfixExpression:
		return TypeNumber
	case *ast.CallExpression:
		if ident, ok := e.Callee.(*ast.Identifier); ok {
			if sym, found := a.table.Resolve(ident.Value); found && sym.Kind == symbols.StructSymbol {
				return sym.Name // constructor yields an instance
			}
		}
		return TypeUnknown
	case *ast.MethodCallExpression:
		recvType := a.inferType(e.Object)
		if recvType == TypeUnknown {
			return TypeUnknown
		}
		if sig, ok := a.registry.Lookup(recvType, e.Method.Value); ok {
			return sig.ReturnType
		}
		return TypeUnknown
	default:
		return TypeUnknown
	}
}

func (a *Analyzer) inferInfix(e *ast.InfixExpression) string {
	switch e.Operator {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return TypeBoolean
	case "+":
		left := a.inferType(e.Left)
		right := a.inferType(e.Right)
		if left == TypeString || right == TypeString {
			return TypeString
		}
		if left == TypeNumber && right == TypeNumber {
			return TypeNumber
		}
		return TypeUnknown
	case "-", "*", "/", "%":
		return TypeNumber
	default:
		return TypeUnknown
	}
}

// elementType guesses the type of values produced by iterating expr.
func (a *Analyzer) elementType(iterable ast.Expression) string {
	switch a.inferType(iterable) {
	case TypeRange:
		return TypeNumber
	case TypeString:
		return TypeString
	default:
		return TypeUnknown
	}
}
