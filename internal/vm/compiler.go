package vm

import (
	"fmt"

	"github.com/neon-lang/neon/internal/ast"
	"github.com/neon-lang/neon/internal/diagnostics"
)

// Local represents a local variable during compilation. A local's stack
// slot is its index in the compiler's locals list; slot 0 is reserved
// for the callee or receiver.
type Local struct {
	Name  string
	Depth int
}

// FunctionType distinguishes top-level code from functions and methods
type FunctionType int

const (
	typeScript FunctionType = iota
	typeFunction
	typeMethod
)

// loopContext tracks jump targets for break/continue
type loopContext struct {
	start         int   // offset of the loop condition (backward target)
	breakJumps    []int // forward jumps patched to just past the loop
	continueJumps []int // forward jumps patched to the increment clause
	localBase     int   // locals count at loop entry, popped before jumping out
	hasIncrement  bool  // true for C-style loops with an increment clause
}

// sharedState is compilation state common to a module's compilers:
// the global index table, string interner and collected errors.
type sharedState struct {
	globalNames []string
	globalIndex map[string]int
	interner    *Interner
	exports     map[string]bool
	errors      []*diagnostics.DiagnosticError
	file        string
}

// Compiler compiles one function body to bytecode. Nested functions get
// their own compiler linked through enclosing.
type Compiler struct {
	enclosing *Compiler
	shared    *sharedState

	proto      *FunctionProto
	fnType     FunctionType
	locals     []Local
	scopeDepth int
	loops      []*loopContext

	// constant pool dedup for this chunk
	numberConsts map[float64]int
	stringConsts map[string]int
}

// Compile turns an analyzed program into a top-level function prototype.
// exports names the module's exported globals, as recorded by semantic
// analysis. Compilation continues past errors to collect all of them.
func Compile(program *ast.Program, exports map[string]bool) (*FunctionProto, []*diagnostics.DiagnosticError) {
	shared := &sharedState{
		globalIndex: make(map[string]int),
		interner:    NewInterner(),
		exports:     exports,
		file:        program.File,
	}

	c := newCompiler(nil, shared, "", 0, typeScript)
	c.proto.Chunk.File = program.File

	for i, stmt := range program.Statements {
		// A trailing top-level expression becomes the script's result.
		if i == len(program.Statements)-1 {
			if es, ok := stmt.(*ast.ExpressionStatement); ok {
				tok := es.GetToken()
				c.compileExpression(es.Expression)
				c.emit(OpReturn, tok.Line, tok.Column)
				break
			}
		}
		c.compileStatement(stmt)
	}
	c.emitImplicitReturn(lastLine(program))

	c.proto.GlobalNames = shared.globalNames
	c.proto.Exports = make(map[string]int, len(exports))
	for name := range exports {
		if idx, ok := shared.globalIndex[name]; ok {
			c.proto.Exports[name] = idx
		}
	}

	return c.proto, shared.errors
}

func newCompiler(enclosing *Compiler, shared *sharedState, name string, arity int, fnType FunctionType) *Compiler {
	c := &Compiler{
		enclosing:    enclosing,
		shared:       shared,
		fnType:       fnType,
		locals:       make([]Local, 0, 8),
		numberConsts: make(map[float64]int),
		stringConsts: make(map[string]int),
	}
	c.proto = &FunctionProto{
		Name:  name,
		Arity: arity,
		Chunk: NewChunk(name),
	}
	c.proto.Chunk.File = shared.file

	// Slot 0 holds the callee for plain calls and the receiver for
	// method calls.
	slot0 := ""
	if fnType == typeMethod {
		slot0 = "self"
	}
	c.locals = append(c.locals, Local{Name: slot0, Depth: 0})
	if fnType != typeScript {
		c.scopeDepth = 1
	}
	return c
}

func lastLine(program *ast.Program) int {
	if len(program.Statements) == 0 {
		return 1
	}
	return program.Statements[len(program.Statements)-1].GetToken().Line
}

// compileFunction compiles a function body in a fresh compiler and
// returns its prototype.
func (c *Compiler) compileFunction(name string, params []*ast.Identifier, body *ast.BlockStatement, fnType FunctionType) *FunctionProto {
	sub := newCompiler(c, c.shared, name, len(params), fnType)
	for _, p := range params {
		sub.locals = append(sub.locals, Local{Name: p.Value, Depth: sub.scopeDepth})
	}
	for _, stmt := range body.Statements {
		sub.compileStatement(stmt)
	}
	sub.emitImplicitReturn(body.GetToken().Line)
	return sub.proto
}

func (c *Compiler) emitImplicitReturn(line int) {
	c.emit(OpNil, line, 0)
	c.emit(OpReturn, line, 0)
}

// --- errors ---

func (c *Compiler) error(line, col int, format string, args ...interface{}) {
	err := diagnostics.NewErrorAt(diagnostics.ErrC001, line, col, fmt.Sprintf(format, args...))
	err.File = c.shared.file
	c.shared.errors = append(c.shared.errors, err)
}

// --- scopes and locals ---

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

func (c *Compiler) endScope(line int) {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].Depth > c.scopeDepth {
		c.emit(OpPop, line, 0)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// declareLocal binds the value on top of the stack as a new local
func (c *Compiler) declareLocal(name string, line, col int) {
	if len(c.locals) >= 256 {
		c.error(line, col, "too many local variables in function")
		return
	}
	c.locals = append(c.locals, Local{Name: name, Depth: c.scopeDepth})
}

func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].Name == name {
			return i
		}
	}
	return -1
}

// atGlobalScope reports whether declarations bind module globals here
func (c *Compiler) atGlobalScope() bool {
	return c.fnType == typeScript && c.scopeDepth == 0
}

// globalIndex resolves a name to its module global slot, assigning the
// next free slot on first use. Mutual recursion needs no hoisting pass:
// a forward reference allocates the slot the definition later fills.
func (c *Compiler) globalIndex(name string) int {
	if idx, ok := c.shared.globalIndex[name]; ok {
		return idx
	}
	idx := len(c.shared.globalNames)
	c.shared.globalIndex[name] = idx
	c.shared.globalNames = append(c.shared.globalNames, name)
	return idx
}

// --- emit helpers ---

func (c *Compiler) currentChunk() *Chunk {
	return c.proto.Chunk
}

func (c *Compiler) emit(op Opcode, line, col int) {
	c.currentChunk().WriteOp(op, line, col)
}

func (c *Compiler) emitByte(b byte, line, col int) {
	c.currentChunk().Write(b, line, col)
}

// emitIndexed writes op8, op8+1 or op8+2 depending on how wide the
// index is. The three width variants are adjacent in the opcode set.
func (c *Compiler) emitIndexed(op8 Opcode, idx, line, col int) {
	chunk := c.currentChunk()
	switch {
	case idx < 1<<8:
		chunk.WriteOp(op8, line, col)
		chunk.Write(byte(idx), line, col)
	case idx < 1<<16:
		chunk.WriteOp(op8+1, line, col)
		chunk.WriteU16(uint16(idx), line, col)
	default:
		chunk.WriteOp(op8+2, line, col)
		chunk.WriteU32(uint32(idx), line, col)
	}
}

// makeConstant adds a value to the pool, deduplicating numbers and
// strings. Strings are interned before insertion.
func (c *Compiler) makeConstant(v Value) int {
	chunk := c.currentChunk()
	switch {
	case v.Type == ValNumber:
		if idx, ok := c.numberConsts[v.AsNumber()]; ok {
			return idx
		}
		idx := chunk.AddConstant(v)
		c.numberConsts[v.AsNumber()] = idx
		return idx
	case v.AsString() != nil:
		s := v.AsString().Value
		if idx, ok := c.stringConsts[s]; ok {
			return idx
		}
		idx := chunk.AddConstant(ObjVal(c.shared.interner.Intern(s)))
		c.stringConsts[s] = idx
		return idx
	default:
		return chunk.AddConstant(v)
	}
}

func (c *Compiler) emitConstant(v Value, line, col int) {
	c.emitIndexed(OpConstant, c.makeConstant(v), line, col)
}

// makeNameConstant pools a string for u16-operand instructions
func (c *Compiler) makeNameConstant(name string, line, col int) int {
	idx := c.makeConstant(ObjVal(&StringObject{Value: name}))
	if idx > 0xffff {
		c.error(line, col, "too many constants in one chunk")
		return 0
	}
	return idx
}

// --- jumps ---

// emitJump writes op with a placeholder offset and returns the patch site
func (c *Compiler) emitJump(op Opcode, line, col int) int {
	c.emit(op, line, col)
	c.emitByte(0xff, line, col)
	c.emitByte(0xff, line, col)
	return c.currentChunk().Len() - 2
}

// patchJump points the jump at offset to the current end of the chunk
func (c *Compiler) patchJump(offset int) {
	jump := c.currentChunk().Len() - offset - 2
	if jump > 0xffff {
		line, col := c.currentChunk().PositionAt(offset)
		c.error(line, col, "too much code to jump over")
		return
	}
	c.currentChunk().Code[offset] = byte(jump >> 8)
	c.currentChunk().Code[offset+1] = byte(jump)
}

// emitLoop writes a backward jump to start
func (c *Compiler) emitLoop(start, line, col int) {
	c.emit(OpLoop, line, col)
	offset := c.currentChunk().Len() - start + 2
	if offset > 0xffff {
		c.error(line, col, "loop body too large")
		offset = 0
	}
	c.emitByte(byte(offset>>8), line, col)
	c.emitByte(byte(offset), line, col)
}

// --- loop contexts ---

func (c *Compiler) pushLoop(start int, hasIncrement bool) *loopContext {
	loop := &loopContext{
		start:        start,
		localBase:    len(c.locals),
		hasIncrement: hasIncrement,
	}
	c.loops = append(c.loops, loop)
	return loop
}

func (c *Compiler) popLoop() {
	c.loops = c.loops[:len(c.loops)-1]
}

func (c *Compiler) currentLoop() *loopContext {
	if len(c.loops) == 0 {
		return nil
	}
	return c.loops[len(c.loops)-1]
}

// emitLoopExitPops discards locals declared since the loop started,
// without disturbing compile-time scope tracking.
func (c *Compiler) emitLoopExitPops(loop *loopContext, line int) {
	for n := len(c.locals) - loop.localBase; n > 0; n-- {
		c.emit(OpPop, line, 0)
	}
}
