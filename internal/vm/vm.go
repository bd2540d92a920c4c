package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/neon-lang/neon/internal/analyzer"
	"github.com/neon-lang/neon/internal/config"
	"github.com/neon-lang/neon/internal/diagnostics"
	"github.com/neon-lang/neon/internal/lexer"
	"github.com/neon-lang/neon/internal/parser"
	"github.com/neon-lang/neon/internal/pipeline"
	"github.com/neon-lang/neon/internal/utils"
)

var errTruncatedBytecode = errors.New("truncated bytecode")
var errInvalidConstantIndex = errors.New("invalid constant index")

// InitialStackSize is the starting operand stack capacity; the stack
// grows on demand up to the configured maximum.
const InitialStackSize = 2048

// CallFrame represents a single ongoing function call
type CallFrame struct {
	fn    *FunctionObject
	chunk *Chunk // shortcut to fn.Proto.Chunk
	ip    int    // instruction pointer within this frame's chunk
	base  int    // where this frame's slot 0 sits in the stack
}

// moduleEntry is one module cache record: the module's global table,
// its export slots and whether its top-level code has run.
type moduleEntry struct {
	name     string
	path     string
	globals  []Value
	exports  map[string]int
	executed bool
}

// ModuleLoader resolves and compiles imported modules. Resolve
// canonicalizes an import path relative to the importing file; Load
// compiles the file at a canonical path into a prototype.
type ModuleLoader interface {
	Resolve(path, fromFile string) (string, error)
	Load(canonical string) (*FunctionProto, error)
}

// VM is the virtual machine that executes bytecode. All state is
// instance-local: interner, globals and module cache die with the VM.
type VM struct {
	stack []Value
	sp    int // points to next free slot

	frames     []CallFrame
	frameCount int
	frame      *CallFrame // current frame

	interner    *Interner
	moduleCache map[string]*moduleEntry
	loader      ModuleLoader

	// Host-provided surface: global bindings seeded into every module
	// and native method tables keyed by receiver type name.
	builtinGlobals map[string]Value
	methods        map[string]map[string]*NativeFunction

	out         io.Writer
	ctx         context.Context
	logger      commonlog.Logger
	runID       string
	currentFile string

	stackMax  int
	framesMax int
	steps     int
}

// New creates a VM with default limits
func New() *VM {
	vm := &VM{
		stack:          make([]Value, InitialStackSize),
		frames:         make([]CallFrame, config.DefaultFramesMax),
		interner:       NewInterner(),
		moduleCache:    make(map[string]*moduleEntry),
		builtinGlobals: make(map[string]Value),
		methods:        make(map[string]map[string]*NativeFunction),
		out:            os.Stdout,
		logger:         commonlog.GetLogger("neon.vm"),
		runID:          uuid.NewString(),
		stackMax:       config.DefaultStackMax,
		framesMax:      config.DefaultFramesMax,
	}
	return vm
}

// SetOutput redirects print output
func (vm *VM) SetOutput(w io.Writer) {
	vm.out = w
}

// SetContext installs a context checked periodically during execution
func (vm *VM) SetContext(ctx context.Context) {
	vm.ctx = ctx
}

// SetLoader installs the module loader used by import
func (vm *VM) SetLoader(l ModuleLoader) {
	vm.loader = l
}

// SetLimits overrides the stack and call-depth limits
func (vm *VM) SetLimits(stackMax, framesMax int) {
	vm.stackMax = stackMax
	vm.framesMax = framesMax
	if framesMax > len(vm.frames) {
		frames := make([]CallFrame, framesMax)
		copy(frames, vm.frames)
		vm.frames = frames
	}
}

// RegisterGlobal seeds a host value into every module's global table
func (vm *VM) RegisterGlobal(name string, v Value) {
	vm.builtinGlobals[name] = v
}

// RegisterMethods installs native methods for a receiver type name
func (vm *VM) RegisterMethods(typeName string, fns map[string]*NativeFunction) {
	tbl := vm.methods[typeName]
	if tbl == nil {
		tbl = make(map[string]*NativeFunction, len(fns))
		vm.methods[typeName] = tbl
	}
	for name, fn := range fns {
		tbl[name] = fn
	}
}

// Intern returns the VM's canonical string value for s
func (vm *VM) Intern(s string) Value {
	return ObjVal(vm.interner.Intern(s))
}

// CompileError is the terminal outcome of a failed compilation
type CompileError struct {
	Diagnostics []*diagnostics.DiagnosticError
}

func (e *CompileError) Error() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

// RuntimeError is the terminal outcome of a failed execution. Line is
// the source line of the faulting instruction.
type RuntimeError struct {
	Message string
	Line    int
	Trace   []string
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("[line %d] runtime error: %s", e.Line, e.Message)
	if len(e.Trace) > 0 {
		msg += "\n" + strings.Join(e.Trace, "\n")
	}
	return msg
}

// CompileSource runs the full front end on source and produces a
// top-level prototype. resolver may be nil when imports need no static
// export checking.
func CompileSource(source, file string, resolver analyzer.ModuleResolver) (*FunctionProto, []*diagnostics.DiagnosticError) {
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = file

	processors := []pipeline.Processor{
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{Resolver: resolver},
	}
	for _, p := range processors {
		ctx = p.Process(ctx)
	}
	if ctx.HasErrors() {
		return nil, ctx.Errors
	}

	return Compile(ctx.Program(), ctx.Exports)
}

// Interpret compiles and runs source. The returned error is a
// *CompileError or *RuntimeError depending on the failing phase.
func (vm *VM) Interpret(source, file string) (Value, error) {
	vm.logger.Debugf("run %s: compiling %s", vm.runID, file)

	resolver, _ := vm.loader.(analyzer.ModuleResolver)
	proto, diags := CompileSource(source, file, resolver)
	if len(diags) > 0 {
		return NilVal(), &CompileError{Diagnostics: diags}
	}
	return vm.Run(proto)
}

// Run executes a compiled top-level prototype to completion
func (vm *VM) Run(proto *FunctionProto) (Value, error) {
	vm.sp = 0
	vm.frameCount = 0
	vm.frame = nil
	vm.currentFile = proto.Chunk.File

	vm.internProto(proto)
	entry := vm.instantiate(proto, proto.Chunk.File)
	if entry.path != "" {
		// The entry script joins the module cache under its own path
		// before running, so importing it again is a cache hit rather
		// than a second execution.
		vm.moduleCache[entry.path] = entry
	}
	fn := &FunctionObject{Proto: proto, Globals: entry.globals}

	vm.push(ObjVal(fn))
	if err := vm.callValue(ObjVal(fn), 0); err != nil {
		return NilVal(), vm.formatError(err)
	}
	if err := vm.execute(0); err != nil {
		return NilVal(), vm.formatError(err)
	}
	entry.executed = true

	return vm.pop(), nil
}

// instantiate builds a module's runtime global table, seeding host
// bindings by name.
func (vm *VM) instantiate(proto *FunctionProto, path string) *moduleEntry {
	globals := make([]Value, len(proto.GlobalNames))
	for i, name := range proto.GlobalNames {
		if v, ok := vm.builtinGlobals[name]; ok {
			globals[i] = v
		}
	}
	name := utils.ExtractModuleName(path)
	if name == "" {
		name = "main"
	}
	return &moduleEntry{
		name:    name,
		path:    path,
		globals: globals,
		exports: proto.Exports,
	}
}

// internProto rewrites a prototype's string constants through the VM
// interner so runtime string identity holds across chunks.
func (vm *VM) internProto(proto *FunctionProto) {
	for i, c := range proto.Chunk.Constants {
		switch obj := c.Obj.(type) {
		case *StringObject:
			proto.Chunk.Constants[i] = ObjVal(vm.interner.Intern(obj.Value))
		case *FunctionProto:
			vm.internProto(obj)
		case *StructProto:
			for _, m := range obj.Methods {
				vm.internProto(m)
			}
		}
	}
}

// --- stack primitives ---

func (vm *VM) push(v Value) {
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.sp-1-distance]
}

// ensureStack guarantees room for one more push, growing the stack up
// to the configured maximum.
func (vm *VM) ensureStack() error {
	if vm.sp < len(vm.stack) {
		return nil
	}
	if len(vm.stack) >= vm.stackMax {
		return vm.runtimeError("stack overflow")
	}
	grown := len(vm.stack) * 2
	if grown > vm.stackMax {
		grown = vm.stackMax
	}
	stack := make([]Value, grown)
	copy(stack, vm.stack)
	vm.stack = stack
	return nil
}

// --- errors ---

func (vm *VM) runtimeError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// formatError tags a raw execution error with the faulting source line
// and a stack trace.
func (vm *VM) formatError(err error) error {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return err
	}

	line := 0
	if vm.frame != nil && vm.frame.ip > 0 {
		line = vm.frame.chunk.LineAt(vm.frame.ip - 1)
	}

	var trace []string
	for i := vm.frameCount - 1; i >= 0; i-- {
		frame := &vm.frames[i]
		frameLine := 0
		if frame.ip > 0 {
			frameLine = frame.chunk.LineAt(frame.ip - 1)
		}
		where := frame.fn.Proto.Name
		if where == "" {
			where = config.TrimSourceExt(frame.chunk.File)
			if where == "" {
				where = "<script>"
			}
		} else {
			where += "()"
		}
		trace = append(trace, fmt.Sprintf("\t[line %d] in %s", frameLine, where))
	}

	return &RuntimeError{Message: err.Error(), Line: line, Trace: trace}
}
