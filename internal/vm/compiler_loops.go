package vm

import "github.com/neon-lang/neon/internal/ast"

func (c *Compiler) compileWhileStatement(s *ast.WhileStatement) {
	tok := s.GetToken()

	start := c.currentChunk().Len()
	c.compileExpression(s.Condition)
	exitJump := c.emitJump(OpJumpIfFalse, tok.Line, tok.Column)

	loop := c.pushLoop(start, false)
	c.compileStatement(s.Body)
	c.emitLoop(start, tok.Line, tok.Column)

	c.patchJump(exitJump)
	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
	c.popLoop()
}

func (c *Compiler) compileForStatement(s *ast.ForStatement) {
	tok := s.GetToken()
	c.beginScope()

	if s.Init != nil {
		c.compileStatement(s.Init)
	}

	start := c.currentChunk().Len()
	exitJump := -1
	if s.Condition != nil {
		c.compileExpression(s.Condition)
		exitJump = c.emitJump(OpJumpIfFalse, tok.Line, tok.Column)
	}

	loop := c.pushLoop(start, s.Increment != nil)
	c.compileStatement(s.Body)

	// continue lands on the increment clause, not the condition
	for _, j := range loop.continueJumps {
		c.patchJump(j)
	}
	if s.Increment != nil {
		c.compileStatement(s.Increment)
	}
	c.emitLoop(start, tok.Line, tok.Column)

	if exitJump != -1 {
		c.patchJump(exitJump)
	}
	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
	c.popLoop()

	c.endScope(tok.Line)
}

func (c *Compiler) compileForInStatement(s *ast.ForInStatement) {
	tok := s.GetToken()
	c.beginScope()

	// Hidden iterator local plus the visible loop variable.
	c.compileExpression(s.Iterable)
	c.emit(OpGetIterator, tok.Line, tok.Column)
	c.declareLocal(" iter", tok.Line, tok.Column)
	iterSlot := len(c.locals) - 1

	c.emit(OpNil, tok.Line, tok.Column)
	c.declareLocal(s.Variable.Value, tok.Line, tok.Column)
	varSlot := len(c.locals) - 1

	start := c.currentChunk().Len()
	c.emit(OpGetLocal, tok.Line, tok.Column)
	c.emitByte(byte(iterSlot), tok.Line, tok.Column)
	c.emit(OpIterHasNext, tok.Line, tok.Column)
	exitJump := c.emitJump(OpJumpIfFalse, tok.Line, tok.Column)

	c.emit(OpGetLocal, tok.Line, tok.Column)
	c.emitByte(byte(iterSlot), tok.Line, tok.Column)
	c.emit(OpIterNext, tok.Line, tok.Column)
	c.emit(OpSetLocal, tok.Line, tok.Column)
	c.emitByte(byte(varSlot), tok.Line, tok.Column)
	c.emit(OpPop, tok.Line, tok.Column)

	loop := c.pushLoop(start, false)
	c.compileStatement(s.Body)
	c.emitLoop(start, tok.Line, tok.Column)

	c.patchJump(exitJump)
	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
	c.popLoop()

	c.endScope(tok.Line)
}

func (c *Compiler) compileBreak(s *ast.BreakStatement) {
	tok := s.GetToken()
	loop := c.currentLoop()
	if loop == nil {
		c.error(tok.Line, tok.Column, "'break' outside of a loop")
		return
	}
	c.emitLoopExitPops(loop, tok.Line)
	loop.breakJumps = append(loop.breakJumps, c.emitJump(OpJump, tok.Line, tok.Column))
}

func (c *Compiler) compileContinue(s *ast.ContinueStatement) {
	tok := s.GetToken()
	loop := c.currentLoop()
	if loop == nil {
		c.error(tok.Line, tok.Column, "'continue' outside of a loop")
		return
	}
	c.emitLoopExitPops(loop, tok.Line)
	if loop.hasIncrement {
		loop.continueJumps = append(loop.continueJumps, c.emitJump(OpJump, tok.Line, tok.Column))
		return
	}
	c.emitLoop(loop.start, tok.Line, tok.Column)
}
