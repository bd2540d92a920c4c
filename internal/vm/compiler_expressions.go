package vm

import (
	"github.com/neon-lang/neon/internal/ast"
)

func (c *Compiler) compileExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		tok := e.GetToken()
		c.emitConstant(NumberVal(e.Value), tok.Line, tok.Column)
	case *ast.StringLiteral:
		tok := e.GetToken()
		c.emitConstant(ObjVal(&StringObject{Value: e.Value}), tok.Line, tok.Column)
	case *ast.BooleanLiteral:
		tok := e.GetToken()
		if e.Value {
			c.emit(OpTrue, tok.Line, tok.Column)
		} else {
			c.emit(OpFalse, tok.Line, tok.Column)
		}
	case *ast.NilLiteral:
		tok := e.GetToken()
		c.emit(OpNil, tok.Line, tok.Column)
	case *ast.Identifier:
		c.compileIdentifier(e)
	case *ast.AssignExpression:
		c.compileAssign(e)
	case *ast.PrefixExpression:
		c.compilePrefix(e)
	case *ast.InfixExpression:
		c.compileInfix(e)
	case *ast.PostfixExpression:
		c.compilePostfix(e)
	case *ast.CallExpression:
		c.compileCall(e)
	case *ast.MethodCallExpression:
		c.compileMethodCall(e)
	case *ast.GetExpression:
		c.compileGet(e)
	case *ast.SetExpression:
		c.compileSet(e)
	case *ast.IndexExpression:
		tok := e.GetToken()
		c.compileExpression(e.Object)
		c.compileExpression(e.Index)
		c.emit(OpGetIndex, tok.Line, tok.Column)
	case *ast.IndexAssignExpression:
		tok := e.GetToken()
		c.compileExpression(e.Object)
		c.compileExpression(e.Index)
		c.compileExpression(e.Value)
		c.emit(OpSetIndex, tok.Line, tok.Column)
	case *ast.ArrayLiteral:
		c.compileArrayLiteral(e)
	case *ast.MapLiteral:
		c.compileMapLiteral(e)
	case *ast.SetLiteral:
		c.compileSetLiteral(e)
	case *ast.RangeExpression:
		tok := e.GetToken()
		c.compileExpression(e.Start)
		c.compileExpression(e.End)
		c.emit(OpMakeRange, tok.Line, tok.Column)
		inclusive := byte(0)
		if e.Inclusive {
			inclusive = 1
		}
		c.emitByte(inclusive, tok.Line, tok.Column)
	case *ast.InterpolatedString:
		c.compileInterpolation(e)
	default:
		tok := expr.GetToken()
		c.error(tok.Line, tok.Column, "cannot compile expression %T", expr)
	}
}

func (c *Compiler) compileIdentifier(e *ast.Identifier) {
	tok := e.GetToken()
	if slot := c.resolveLocal(e.Value); slot != -1 {
		c.emit(OpGetLocal, tok.Line, tok.Column)
		c.emitByte(byte(slot), tok.Line, tok.Column)
		return
	}
	if c.capturesEnclosingLocal(e.Value) {
		c.error(tok.Line, tok.Column, "cannot capture variable '%s' from an enclosing function", e.Value)
		c.emit(OpNil, tok.Line, tok.Column)
		return
	}
	c.emitIndexed(OpGetGlobal, c.globalIndex(e.Value), tok.Line, tok.Column)
}

// capturesEnclosingLocal reports whether name is a local of some
// enclosing function. Functions do not close over enclosing locals;
// referencing one is a compile error rather than a silent global read.
func (c *Compiler) capturesEnclosingLocal(name string) bool {
	for enc := c.enclosing; enc != nil; enc = enc.enclosing {
		for i := len(enc.locals) - 1; i >= 0; i-- {
			if enc.locals[i].Name == name {
				return true
			}
		}
	}
	return false
}

func (c *Compiler) compileAssign(e *ast.AssignExpression) {
	tok := e.GetToken()
	c.compileExpression(e.Value)
	if slot := c.resolveLocal(e.Name.Value); slot != -1 {
		c.emit(OpSetLocal, tok.Line, tok.Column)
		c.emitByte(byte(slot), tok.Line, tok.Column)
		return
	}
	if c.capturesEnclosingLocal(e.Name.Value) {
		c.error(tok.Line, tok.Column, "cannot capture variable '%s' from an enclosing function", e.Name.Value)
		return
	}
	c.emitIndexed(OpSetGlobal, c.globalIndex(e.Name.Value), tok.Line, tok.Column)
}

func (c *Compiler) compilePrefix(e *ast.PrefixExpression) {
	tok := e.GetToken()
	c.compileExpression(e.Right)
	switch e.Operator {
	case "-":
		c.emit(OpNegate, tok.Line, tok.Column)
	case "!":
		c.emit(OpNot, tok.Line, tok.Column)
	default:
		c.error(tok.Line, tok.Column, "unknown prefix operator '%s'", e.Operator)
	}
}

func (c *Compiler) compileInfix(e *ast.InfixExpression) {
	switch e.Operator {
	case "&&":
		c.compileAnd(e)
		return
	case "||":
		c.compileOr(e)
		return
	}

	tok := e.GetToken()
	c.compileExpression(e.Left)
	c.compileExpression(e.Right)
	switch e.Operator {
	case "+":
		c.emit(OpAdd, tok.Line, tok.Column)
	case "-":
		c.emit(OpSubtract, tok.Line, tok.Column)
	case "*":
		c.emit(OpMultiply, tok.Line, tok.Column)
	case "/":
		c.emit(OpDivide, tok.Line, tok.Column)
	case "%":
		c.emit(OpModulo, tok.Line, tok.Column)
	case "==":
		c.emit(OpEqual, tok.Line, tok.Column)
	case "!=":
		c.emit(OpEqual, tok.Line, tok.Column)
		c.emit(OpNot, tok.Line, tok.Column)
	case "<":
		c.emit(OpLess, tok.Line, tok.Column)
	case ">":
		c.emit(OpGreater, tok.Line, tok.Column)
	case "<=":
		c.emit(OpGreater, tok.Line, tok.Column)
		c.emit(OpNot, tok.Line, tok.Column)
	case ">=":
		c.emit(OpLess, tok.Line, tok.Column)
		c.emit(OpNot, tok.Line, tok.Column)
	default:
		c.error(tok.Line, tok.Column, "unknown infix operator '%s'", e.Operator)
	}
}

// compileAnd short-circuits: a falsy left side yields false without
// evaluating the right side.
func (c *Compiler) compileAnd(e *ast.InfixExpression) {
	tok := e.GetToken()
	c.compileExpression(e.Left)
	falseJump := c.emitJump(OpJumpIfFalse, tok.Line, tok.Column)
	c.compileExpression(e.Right)
	endJump := c.emitJump(OpJump, tok.Line, tok.Column)
	c.patchJump(falseJump)
	c.emit(OpFalse, tok.Line, tok.Column)
	c.patchJump(endJump)
}

// compileOr short-circuits: a truthy left side yields true without
// evaluating the right side.
func (c *Compiler) compileOr(e *ast.InfixExpression) {
	tok := e.GetToken()
	c.compileExpression(e.Left)
	rightJump := c.emitJump(OpJumpIfFalse, tok.Line, tok.Column)
	c.emit(OpTrue, tok.Line, tok.Column)
	endJump := c.emitJump(OpJump, tok.Line, tok.Column)
	c.patchJump(rightJump)
	c.compileExpression(e.Right)
	c.patchJump(endJump)
}

// compilePostfix leaves the operand's old value on the stack and stores
// old value ± 1 back into the target. Field and index targets evaluate
// their object expression twice.
func (c *Compiler) compilePostfix(e *ast.PostfixExpression) {
	tok := e.GetToken()

	delta := OpAdd
	if e.Operator == "--" {
		delta = OpSubtract
	}

	switch target := e.Operand.(type) {
	case *ast.Identifier:
		c.compileIdentifier(target)
		c.compileIdentifier(target)
		c.emitConstant(NumberVal(1), tok.Line, tok.Column)
		c.emit(delta, tok.Line, tok.Column)
		if slot := c.resolveLocal(target.Value); slot != -1 {
			c.emit(OpSetLocal, tok.Line, tok.Column)
			c.emitByte(byte(slot), tok.Line, tok.Column)
		} else {
			c.emitIndexed(OpSetGlobal, c.globalIndex(target.Value), tok.Line, tok.Column)
		}
		c.emit(OpPop, tok.Line, tok.Column)
	case *ast.GetExpression:
		nameIdx := c.makeNameConstant(target.Name.Value, tok.Line, tok.Column)
		c.compileExpression(target.Object)
		c.emit(OpGetProperty, tok.Line, tok.Column)
		c.currentChunk().WriteU16(uint16(nameIdx), tok.Line, tok.Column)
		c.compileExpression(target.Object)
		c.compileExpression(target.Object)
		c.emit(OpGetProperty, tok.Line, tok.Column)
		c.currentChunk().WriteU16(uint16(nameIdx), tok.Line, tok.Column)
		c.emitConstant(NumberVal(1), tok.Line, tok.Column)
		c.emit(delta, tok.Line, tok.Column)
		c.emit(OpSetProperty, tok.Line, tok.Column)
		c.currentChunk().WriteU16(uint16(nameIdx), tok.Line, tok.Column)
		c.emit(OpPop, tok.Line, tok.Column)
	case *ast.IndexExpression:
		c.compileExpression(target.Object)
		c.compileExpression(target.Index)
		c.emit(OpGetIndex, tok.Line, tok.Column)
		c.compileExpression(target.Object)
		c.compileExpression(target.Index)
		c.compileExpression(target.Object)
		c.compileExpression(target.Index)
		c.emit(OpGetIndex, tok.Line, tok.Column)
		c.emitConstant(NumberVal(1), tok.Line, tok.Column)
		c.emit(delta, tok.Line, tok.Column)
		c.emit(OpSetIndex, tok.Line, tok.Column)
		c.emit(OpPop, tok.Line, tok.Column)
	default:
		c.error(tok.Line, tok.Column, "invalid operand for '%s'", e.Operator)
	}
}

func (c *Compiler) compileCall(e *ast.CallExpression) {
	tok := e.GetToken()
	if len(e.Arguments) > 255 {
		c.error(tok.Line, tok.Column, "cannot have more than 255 arguments")
		return
	}
	c.compileExpression(e.Callee)
	for _, arg := range e.Arguments {
		c.compileExpression(arg)
	}
	c.emit(OpCall, tok.Line, tok.Column)
	c.emitByte(byte(len(e.Arguments)), tok.Line, tok.Column)
}

// compileMethodCall places the receiver where slot 0 of the callee
// frame will be, so methods and plain calls share one convention.
func (c *Compiler) compileMethodCall(e *ast.MethodCallExpression) {
	tok := e.GetToken()
	if len(e.Arguments) > 255 {
		c.error(tok.Line, tok.Column, "cannot have more than 255 arguments")
		return
	}
	nameIdx := c.makeNameConstant(e.Method.Value, tok.Line, tok.Column)
	c.compileExpression(e.Object)
	for _, arg := range e.Arguments {
		c.compileExpression(arg)
	}
	c.emit(OpInvoke, tok.Line, tok.Column)
	c.currentChunk().WriteU16(uint16(nameIdx), tok.Line, tok.Column)
	c.emitByte(byte(len(e.Arguments)), tok.Line, tok.Column)
}

func (c *Compiler) compileGet(e *ast.GetExpression) {
	tok := e.GetToken()
	nameIdx := c.makeNameConstant(e.Name.Value, tok.Line, tok.Column)
	c.compileExpression(e.Object)
	c.emit(OpGetProperty, tok.Line, tok.Column)
	c.currentChunk().WriteU16(uint16(nameIdx), tok.Line, tok.Column)
}

func (c *Compiler) compileSet(e *ast.SetExpression) {
	tok := e.GetToken()
	nameIdx := c.makeNameConstant(e.Name.Value, tok.Line, tok.Column)
	c.compileExpression(e.Object)
	c.compileExpression(e.Value)
	c.emit(OpSetProperty, tok.Line, tok.Column)
	c.currentChunk().WriteU16(uint16(nameIdx), tok.Line, tok.Column)
}

func (c *Compiler) compileArrayLiteral(e *ast.ArrayLiteral) {
	tok := e.GetToken()
	if len(e.Elements) > 0xffff {
		c.error(tok.Line, tok.Column, "array literal too large")
		return
	}
	for _, el := range e.Elements {
		c.compileExpression(el)
	}
	c.emit(OpMakeArray, tok.Line, tok.Column)
	c.currentChunk().WriteU16(uint16(len(e.Elements)), tok.Line, tok.Column)
}

func (c *Compiler) compileMapLiteral(e *ast.MapLiteral) {
	tok := e.GetToken()
	if len(e.Keys) > 0xffff {
		c.error(tok.Line, tok.Column, "map literal too large")
		return
	}
	for i := range e.Keys {
		c.compileExpression(e.Keys[i])
		c.compileExpression(e.Vals[i])
	}
	c.emit(OpMakeMap, tok.Line, tok.Column)
	c.currentChunk().WriteU16(uint16(len(e.Keys)), tok.Line, tok.Column)
}

func (c *Compiler) compileSetLiteral(e *ast.SetLiteral) {
	tok := e.GetToken()
	if len(e.Elements) > 0xffff {
		c.error(tok.Line, tok.Column, "set literal too large")
		return
	}
	for _, el := range e.Elements {
		c.compileExpression(el)
	}
	c.emit(OpMakeSet, tok.Line, tok.Column)
	c.currentChunk().WriteU16(uint16(len(e.Elements)), tok.Line, tok.Column)
}

func (c *Compiler) compileInterpolation(e *ast.InterpolatedString) {
	tok := e.GetToken()
	if len(e.Parts) > 255 {
		c.error(tok.Line, tok.Column, "interpolated string has too many parts")
		return
	}
	for _, part := range e.Parts {
		c.compileExpression(part)
	}
	c.emit(OpInterpolate, tok.Line, tok.Column)
	c.emitByte(byte(len(e.Parts)), tok.Line, tok.Column)
}
