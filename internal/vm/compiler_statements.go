package vm

import (
	"github.com/neon-lang/neon/internal/ast"
	"github.com/neon-lang/neon/internal/utils"
)

func (c *Compiler) compileStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ValStatement:
		c.compileBinding(s.Name.Value, s.Value, s.GetToken().Line, s.GetToken().Column)
	case *ast.VarStatement:
		c.compileBinding(s.Name.Value, s.Value, s.GetToken().Line, s.GetToken().Column)
	case *ast.FunctionStatement:
		c.compileFunctionStatement(s)
	case *ast.StructStatement:
		c.compileStructStatement(s)
	case *ast.ExpressionStatement:
		tok := s.GetToken()
		c.compileExpression(s.Expression)
		c.emit(OpPop, tok.Line, tok.Column)
	case *ast.BlockStatement:
		c.beginScope()
		for _, inner := range s.Statements {
			c.compileStatement(inner)
		}
		c.endScope(s.GetToken().Line)
	case *ast.IfStatement:
		c.compileIfStatement(s)
	case *ast.WhileStatement:
		c.compileWhileStatement(s)
	case *ast.ForStatement:
		c.compileForStatement(s)
	case *ast.ForInStatement:
		c.compileForInStatement(s)
	case *ast.ReturnStatement:
		tok := s.GetToken()
		if s.Value != nil {
			c.compileExpression(s.Value)
		} else {
			c.emit(OpNil, tok.Line, tok.Column)
		}
		c.emit(OpReturn, tok.Line, tok.Column)
	case *ast.BreakStatement:
		c.compileBreak(s)
	case *ast.ContinueStatement:
		c.compileContinue(s)
	case *ast.ImportStatement:
		c.compileImportStatement(s)
	case *ast.ExportStatement:
		c.compileStatement(s.Inner)
	case *ast.PrintStatement:
		tok := s.GetToken()
		c.compileExpression(s.Value)
		c.emit(OpPrint, tok.Line, tok.Column)
	default:
		tok := stmt.GetToken()
		c.error(tok.Line, tok.Column, "cannot compile statement %T", stmt)
	}
}

// compileBinding compiles a val/var declaration. At module scope the
// value lands in a global slot; inside any block it becomes a local.
func (c *Compiler) compileBinding(name string, value ast.Expression, line, col int) {
	c.compileExpression(value)
	if c.atGlobalScope() {
		c.emitIndexed(OpSetGlobal, c.globalIndex(name), line, col)
		c.emit(OpPop, line, col)
		return
	}
	c.declareLocal(name, line, col)
}

func (c *Compiler) compileFunctionStatement(s *ast.FunctionStatement) {
	tok := s.GetToken()
	name := s.Name.Value

	// For nested functions the slot must exist before the body is
	// compiled so the function can call itself.
	if !c.atGlobalScope() {
		c.emit(OpNil, tok.Line, tok.Column)
		c.declareLocal(name, tok.Line, tok.Column)
	}

	proto := c.compileFunction(name, s.Params, s.Body, typeFunction)
	idx := c.makeNameProtoConstant(ObjVal(proto), tok.Line, tok.Column)
	c.emit(OpMakeFunction, tok.Line, tok.Column)
	c.currentChunk().WriteU16(uint16(idx), tok.Line, tok.Column)

	if c.atGlobalScope() {
		c.emitIndexed(OpSetGlobal, c.globalIndex(name), tok.Line, tok.Column)
		c.emit(OpPop, tok.Line, tok.Column)
		return
	}
	slot := c.resolveLocal(name)
	c.emit(OpSetLocal, tok.Line, tok.Column)
	c.emitByte(byte(slot), tok.Line, tok.Column)
	c.emit(OpPop, tok.Line, tok.Column)
}

func (c *Compiler) compileStructStatement(s *ast.StructStatement) {
	tok := s.GetToken()

	proto := &StructProto{Name: s.Name.Value}
	for _, f := range s.Fields {
		proto.Fields = append(proto.Fields, f.Value)
	}
	for _, m := range s.Methods {
		mp := c.compileFunction(s.Name.Value+"."+m.Name.Value, m.Params, m.Body, typeMethod)
		mp.Name = m.Name.Value
		proto.Methods = append(proto.Methods, mp)
	}

	idx := c.makeNameProtoConstant(ObjVal(proto), tok.Line, tok.Column)
	c.emit(OpMakeStruct, tok.Line, tok.Column)
	c.currentChunk().WriteU16(uint16(idx), tok.Line, tok.Column)

	if c.atGlobalScope() {
		c.emitIndexed(OpSetGlobal, c.globalIndex(s.Name.Value), tok.Line, tok.Column)
		c.emit(OpPop, tok.Line, tok.Column)
		return
	}
	c.declareLocal(s.Name.Value, tok.Line, tok.Column)
}

// makeNameProtoConstant pools a prototype for u16-operand instructions
func (c *Compiler) makeNameProtoConstant(v Value, line, col int) int {
	idx := c.currentChunk().AddConstant(v)
	if idx > 0xffff {
		c.error(line, col, "too many constants in one chunk")
		return 0
	}
	return idx
}

func (c *Compiler) compileIfStatement(s *ast.IfStatement) {
	tok := s.GetToken()
	c.compileExpression(s.Condition)
	elseJump := c.emitJump(OpJumpIfFalse, tok.Line, tok.Column)

	c.compileStatement(s.Then)

	if s.Else != nil {
		endJump := c.emitJump(OpJump, tok.Line, tok.Column)
		c.patchJump(elseJump)
		c.compileStatement(s.Else)
		c.patchJump(endJump)
		return
	}
	c.patchJump(elseJump)
}

func (c *Compiler) compileImportStatement(s *ast.ImportStatement) {
	tok := s.GetToken()
	idx := c.makeNameConstant(s.Path, tok.Line, tok.Column)
	c.emit(OpImport, tok.Line, tok.Column)
	c.currentChunk().WriteU16(uint16(idx), tok.Line, tok.Column)

	name := utils.ExtractModuleName(s.Path)
	if s.Alias != nil {
		name = s.Alias.Value
	}
	if c.atGlobalScope() {
		c.emitIndexed(OpSetGlobal, c.globalIndex(name), tok.Line, tok.Column)
		c.emit(OpPop, tok.Line, tok.Column)
		return
	}
	c.declareLocal(name, tok.Line, tok.Column)
}
