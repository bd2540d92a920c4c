package analyzer

import (
	"fmt"
	"strings"

	"github.com/neon-lang/neon/internal/ast"
	"github.com/neon-lang/neon/internal/config"
	"github.com/neon-lang/neon/internal/diagnostics"
	"github.com/neon-lang/neon/internal/symbols"
	"github.com/neon-lang/neon/internal/token"
	"github.com/neon-lang/neon/internal/utils"
)

// ModuleResolver is the boundary to the module loader: given an import path
// and the importing file, it returns the canonical path and export table.
type ModuleResolver interface {
	ResolveExports(importPath, fromFile string) (string, map[string]symbols.SymbolKind, error)
}

// Analyzer validates an AST in two passes: declaration collection (hoisting
// fn and struct names so mutual recursion works without forward syntax)
// followed by full resolution. Errors accumulate; analysis never
// short-circuits on the first problem.
type Analyzer struct {
	table    *symbols.SymbolTable
	registry *MethodRegistry
	resolver ModuleResolver

	currentFile string
	loopDepth   int
	fnDepth     int

	// typeEnv tracks the best-effort inferred type of each symbol.
	typeEnv map[*symbols.Symbol]string

	exports map[string]symbols.SymbolKind
	errors  []*diagnostics.DiagnosticError
}

func New() *Analyzer {
	return &Analyzer{
		table:    symbols.NewSymbolTable(),
		registry: NewMethodRegistry(),
		typeEnv:  make(map[*symbols.Symbol]string),
		exports:  make(map[string]symbols.SymbolKind),
	}
}

// SetResolver wires the module loader used for import validation.
func (a *Analyzer) SetResolver(r ModuleResolver) {
	a.resolver = r
}

// Registry exposes the method registry (struct methods registered during
// analysis are consulted by the code generator for native namespaces).
func (a *Analyzer) Registry() *MethodRegistry {
	return a.registry
}

// Exports returns the export table collected from export statements.
func (a *Analyzer) Exports() map[string]symbols.SymbolKind {
	return a.exports
}

// Analyze runs both passes over program and returns the populated symbol
// table plus every accumulated error.
func (a *Analyzer) Analyze(program *ast.Program) (*symbols.SymbolTable, []*diagnostics.DiagnosticError) {
	a.currentFile = program.File
	a.defineBuiltins()

	// Pass 1: hoist fn and struct declarations. val/var are not hoisted;
	// they become visible at their point of resolution.
	for _, stmt := range program.Statements {
		a.collectDeclaration(stmt, false)
	}

	// Pass 2: resolve everything.
	for _, stmt := range program.Statements {
		a.resolveStatement(stmt)
	}

	return a.table, a.errors
}

func (a *Analyzer) defineBuiltins() {
	for _, name := range []string{
		config.MathGlobalName, config.FileGlobalName,
		config.DbGlobalName, config.UuidGlobalName,
	} {
		sym := &symbols.Symbol{Name: name, Kind: symbols.NativeSymbol}
		a.table.Define(sym)
		a.typeEnv[sym] = name // namespace type equals its global name
	}
	argsSym := &symbols.Symbol{Name: config.ArgsGlobalName, Kind: symbols.ValueSymbol}
	a.table.Define(argsSym)
	a.typeEnv[argsSym] = TypeArray

	a.table.Define(&symbols.Symbol{Name: config.ClockFuncName, Kind: symbols.NativeSymbol})
}

func (a *Analyzer) errorAt(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) {
	err := diagnostics.NewError(code, tok, fmt.Sprintf(format, args...))
	err.File = a.currentFile
	a.errors = append(a.errors, err)
}

// collectDeclaration hoists fn/struct names. exported marks declarations
// wrapped in an export statement.
func (a *Analyzer) collectDeclaration(stmt ast.Statement, exported bool) {
	switch s := stmt.(type) {
	case *ast.FunctionStatement:
		sym := &symbols.Symbol{
			Name:  s.Name.Value,
			Kind:  symbols.FunctionSymbol,
			Arity: len(s.Params),
			Token: s.Name.Token,
		}
		if !a.table.Define(sym) {
			a.errorAt(diagnostics.ErrA004, s.Name.Token,
				"symbol '%s' is already declared in this scope", s.Name.Value)
			return
		}
		if exported {
			a.exports[s.Name.Value] = symbols.FunctionSymbol
		}
	case *ast.StructStatement:
		methods := make(map[string]int, len(s.Methods))
		fields := make([]string, 0, len(s.Fields))
		for _, f := range s.Fields {
			fields = append(fields, f.Value)
		}
		for _, m := range s.Methods {
			methods[m.Name.Value] = len(m.Params)
		}
		sym := &symbols.Symbol{
			Name:    s.Name.Value,
			Kind:    symbols.StructSymbol,
			Fields:  fields,
			Methods: methods,
			Arity:   len(s.Fields), // constructor arity
			Token:   s.Name.Token,
		}
		if !a.table.Define(sym) {
			a.errorAt(diagnostics.ErrA004, s.Name.Token,
				"symbol '%s' is already declared in this scope", s.Name.Value)
			return
		}
		a.registry.RegisterStruct(s.Name.Value, methods)
		if exported {
			a.exports[s.Name.Value] = symbols.StructSymbol
		}
	case *ast.ExportStatement:
		if a.table.Depth() != 0 {
			a.errorAt(diagnostics.ErrA006, s.Token, "export is only allowed at module top level")
			return
		}
		a.collectDeclaration(s.Inner, true)
	}
}

func (a *Analyzer) resolveStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ValStatement:
		a.resolveExpression(s.Value)
		a.declareBinding(s.Name, symbols.ValueSymbol, false, a.inferType(s.Value))
	case *ast.VarStatement:
		a.resolveExpression(s.Value)
		a.declareBinding(s.Name, symbols.VariableSymbol, true, a.inferType(s.Value))
	case *ast.FunctionStatement:
		a.resolveFunction(s)
	case *ast.StructStatement:
		a.resolveStruct(s)
	case *ast.ExpressionStatement:
		a.resolveExpression(s.Expression)
	case *ast.PrintStatement:
		a.resolveExpression(s.Value)
	case *ast.BlockStatement:
		a.table.EnterScope()
		for _, inner := range s.Statements {
			a.resolveStatement(inner)
		}
		a.table.ExitScope()
	case *ast.IfStatement:
		a.resolveExpression(s.Condition)
		a.resolveStatement(s.Then)
		if s.Else != nil {
			a.resolveStatement(s.Else)
		}
	case *ast.WhileStatement:
		a.resolveExpression(s.Condition)
		a.loopDepth++
		a.resolveStatement(s.Body)
		a.loopDepth--
	case *ast.ForStatement:
		a.table.EnterScope()
		if s.Init != nil {
			a.resolveStatement(s.Init)
		}
		if s.Condition != nil {
			a.resolveExpression(s.Condition)
		}
		a.loopDepth++
		a.resolveStatement(s.Body)
		if s.Increment != nil {
			a.resolveStatement(s.Increment)
		}
		a.loopDepth--
		a.table.ExitScope()
	case *ast.ForInStatement:
		a.resolveExpression(s.Iterable)
		a.table.EnterScope()
		a.declareBinding(s.Variable, symbols.ValueSymbol, false, a.elementType(s.Iterable))
		a.loopDepth++
		a.resolveStatement(s.Body)
		a.loopDepth--
		a.table.ExitScope()
	case *ast.ReturnStatement:
		if a.fnDepth == 0 {
			a.errorAt(diagnostics.ErrA007, s.Token, "'return' outside of a function")
		}
		if s.Value != nil {
			a.resolveExpression(s.Value)
		}
	case *ast.BreakStatement:
		if a.loopDepth == 0 {
			a.errorAt(diagnostics.ErrA007, s.Token, "'break' outside of a loop")
		}
	case *ast.ContinueStatement:
		if a.loopDepth == 0 {
			a.errorAt(diagnostics.ErrA007, s.Token, "'continue' outside of a loop")
		}
	case *ast.ImportStatement:
		a.resolveImport(s)
	case *ast.ExportStatement:
		if a.table.Depth() != 0 {
			a.errorAt(diagnostics.ErrA006, s.Token, "export is only allowed at module top level")
			return
		}
		a.resolveStatement(s.Inner)
		// fn/struct exports were collected during hoisting; val/var only
		// become known here.
		switch inner := s.Inner.(type) {
		case *ast.ValStatement:
			a.exports[inner.Name.Value] = symbols.ValueSymbol
		case *ast.VarStatement:
			a.exports[inner.Name.Value] = symbols.VariableSymbol
		}
	}
}

func (a *Analyzer) declareBinding(name *ast.Identifier, kind symbols.SymbolKind, mutable bool, typeName string) {
	sym := &symbols.Symbol{Name: name.Value, Kind: kind, Mutable: mutable, Token: name.Token}
	if !a.table.Define(sym) {
		a.errorAt(diagnostics.ErrA004, name.Token,
			"symbol '%s' is already declared in this scope", name.Value)
		return
	}
	a.typeEnv[sym] = typeName
}

func (a *Analyzer) resolveFunction(s *ast.FunctionStatement) {
	// The name itself was hoisted in pass 1 (top level); nested functions
	// are declared here.
	if _, ok := a.table.ResolveCurrent(s.Name.Value); !ok {
		sym := &symbols.Symbol{
			Name:  s.Name.Value,
			Kind:  symbols.FunctionSymbol,
			Arity: len(s.Params),
			Token: s.Name.Token,
		}
		if !a.table.Define(sym) {
			a.errorAt(diagnostics.ErrA004, s.Name.Token,
				"symbol '%s' is already declared in this scope", s.Name.Value)
		}
	}

	a.table.EnterScope()
	for _, param := range s.Params {
		a.declareBinding(param, symbols.ParameterSymbol, true, TypeUnknown)
	}
	a.fnDepth++
	savedLoop := a.loopDepth
	a.loopDepth = 0 // break may not escape a function boundary
	for _, inner := range s.Body.Statements {
		a.resolveStatement(inner)
	}
	a.loopDepth = savedLoop
	a.fnDepth--
	a.table.ExitScope()
}

func (a *Analyzer) resolveStruct(s *ast.StructStatement) {
	for _, m := range s.Methods {
		a.table.EnterScope()
		// Methods see the receiver as 'self'.
		self := &symbols.Symbol{Name: "self", Kind: symbols.ValueSymbol}
		a.table.Define(self)
		a.typeEnv[self] = s.Name.Value
		for _, param := range m.Params {
			a.declareBinding(param, symbols.ParameterSymbol, true, TypeUnknown)
		}
		a.fnDepth++
		savedLoop := a.loopDepth
		a.loopDepth = 0
		for _, inner := range m.Body.Statements {
			a.resolveStatement(inner)
		}
		a.loopDepth = savedLoop
		a.fnDepth--
		a.table.ExitScope()
	}
}

func (a *Analyzer) resolveImport(s *ast.ImportStatement) {
	bindName := utils.ExtractModuleName(s.Path)
	if s.Alias != nil {
		bindName = s.Alias.Value
	}

	sym := &symbols.Symbol{
		Name: bindName,
		Kind: symbols.ModuleSymbol,
		Path: s.Path,
	}

	if a.resolver != nil {
		canonical, exports, err := a.resolver.ResolveExports(s.Path, a.currentFile)
		if err != nil {
			a.errorAt(diagnostics.ErrA006, s.Token, "%s", err.Error())
			return
		}
		sym.Path = canonical
		sym.Exports = exports
	}

	// Importing the same module again is a no-op against the module
	// cache; only a name collision with something else is an error.
	if prev, ok := a.table.Resolve(bindName); ok &&
		prev.Kind == symbols.ModuleSymbol && prev.Path == sym.Path {
		return
	}

	if !a.table.Define(sym) {
		a.errorAt(diagnostics.ErrA004, s.Token,
			"symbol '%s' is already declared in this scope", bindName)
		return
	}
	a.typeEnv[sym] = TypeUnknown
}

func (a *Analyzer) resolveExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Identifier:
		if _, ok := a.table.Resolve(e.Value); !ok {
			a.errorAt(diagnostics.ErrA001, e.Token, "undefined variable '%s'", e.Value)
		}
	case *ast.AssignExpression:
		a.resolveExpression(e.Value)
		sym, ok := a.table.Resolve(e.Name.Value)
		if !ok {
			a.errorAt(diagnostics.ErrA001, e.Name.Token, "undefined variable '%s'", e.Name.Value)
			return
		}
		if !sym.Mutable {
			a.errorAt(diagnostics.ErrA002, e.Name.Token,
				"cannot assign to immutable binding '%s' (declared with 'val')", e.Name.Value)
			return
		}
		a.typeEnv[sym] = a.inferType(e.Value)
	case *ast.PrefixExpression:
		a.resolveExpression(e.Right)
	case *ast.InfixExpression:
		a.resolveExpression(e.Left)
		a.resolveExpression(e.Right)
	case *ast.PostfixExpression:
		a.resolveExpression(e.Operand)
		// x++ writes back to x, so a val binding rejects it just like
		// plain assignment. Field and index targets stay mutable.
		if ident, ok := e.Operand.(*ast.Identifier); ok {
			if sym, found := a.table.Resolve(ident.Value); found && !sym.Mutable {
				a.errorAt(diagnostics.ErrA002, ident.Token,
					"cannot assign to immutable binding '%s' (declared with 'val')", ident.Value)
			}
		}
	case *ast.CallExpression:
		a.resolveCall(e)
	case *ast.MethodCallExpression:
		a.resolveMethodCall(e)
	case *ast.GetExpression:
		a.resolveExpression(e.Object)
		a.checkModuleAccess(e.Object, e.Name)
	case *ast.SetExpression:
		a.resolveExpression(e.Object)
		a.resolveExpression(e.Value)
	case *ast.IndexExpression:
		a.resolveExpression(e.Object)
		a.resolveExpression(e.Index)
	case *ast.IndexAssignExpression:
		a.resolveExpression(e.Object)
		a.resolveExpression(e.Index)
		a.resolveExpression(e.Value)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			a.resolveExpression(el)
		}
	case *ast.MapLiteral:
		for i := range e.Keys {
			a.resolveExpression(e.Keys[i])
			a.resolveExpression(e.Vals[i])
		}
	case *ast.SetLiteral:
		for _, el := range e.Elements {
			a.resolveExpression(el)
		}
	case *ast.RangeExpression:
		a.resolveExpression(e.Start)
		a.resolveExpression(e.End)
	case *ast.InterpolatedString:
		for _, part := range e.Parts {
			a.resolveExpression(part)
		}
	}
}

func (a *Analyzer) resolveCall(e *ast.CallExpression) {
	for _, arg := range e.Arguments {
		a.resolveExpression(arg)
	}
	ident, ok := e.Callee.(*ast.Identifier)
	if !ok {
		a.resolveExpression(e.Callee)
		return
	}
	sym, found := a.table.Resolve(ident.Value)
	if !found {
		a.errorAt(diagnostics.ErrA001, ident.Token, "undefined variable '%s'", ident.Value)
		return
	}
	switch sym.Kind {
	case symbols.FunctionSymbol:
		if len(e.Arguments) != sym.Arity {
			a.errorAt(diagnostics.ErrA003, ident.Token,
				"function '%s' expects %d arguments but got %d",
				ident.Value, sym.Arity, len(e.Arguments))
		}
	case symbols.StructSymbol:
		if len(e.Arguments) != sym.Arity {
			a.errorAt(diagnostics.ErrA003, ident.Token,
				"struct '%s' expects %d arguments but got %d",
				ident.Value, sym.Arity, len(e.Arguments))
		}
	}
	// Values of function type held in val/var bindings are checked at
	// runtime only.
}

func (a *Analyzer) resolveMethodCall(e *ast.MethodCallExpression) {
	a.resolveExpression(e.Object)
	for _, arg := range e.Arguments {
		a.resolveExpression(arg)
	}

	// Module member calls validate against the export table instead.
	if modSym := a.moduleSymbol(e.Object); modSym != nil {
		a.checkModuleExport(modSym, e.Method)
		return
	}

	recvType := a.inferType(e.Object)
	if recvType == TypeUnknown || !a.registry.Knows(recvType) {
		return // graceful degradation: never flag uninferable receivers
	}

	sig, ok := a.registry.Lookup(recvType, e.Method.Value)
	if !ok {
		a.unknownMethodError(recvType, e.Method)
		return
	}
	if sig.Arity != VariadicArity && len(e.Arguments) != sig.Arity {
		a.errorAt(diagnostics.ErrA003, e.Method.Token,
			"method '%s.%s' expects %d arguments but got %d",
			recvType, e.Method.Value, sig.Arity, len(e.Arguments))
	}
}

func (a *Analyzer) unknownMethodError(recvType string, method *ast.Identifier) {
	candidates := a.registry.MethodNames(recvType)
	if suggestion := utils.ClosestMatch(method.Value, candidates); suggestion != "" {
		a.errorAt(diagnostics.ErrA005, method.Token,
			"Type '%s' has no method named '%s'. Did you mean '%s'?",
			recvType, method.Value, suggestion)
		return
	}
	a.errorAt(diagnostics.ErrA005, method.Token,
		"Type '%s' has no method named '%s'. Available methods: %s",
		recvType, method.Value, strings.Join(candidates, ", "))
}

// moduleSymbol returns the module symbol when expr is a bare module name.
func (a *Analyzer) moduleSymbol(expr ast.Expression) *symbols.Symbol {
	ident, ok := expr.(*ast.Identifier)
	if !ok {
		return nil
	}
	sym, found := a.table.Resolve(ident.Value)
	if !found || sym.Kind != symbols.ModuleSymbol {
		return nil
	}
	return sym
}

func (a *Analyzer) checkModuleAccess(object ast.Expression, name *ast.Identifier) {
	modSym := a.moduleSymbol(object)
	if modSym == nil {
		return
	}
	a.checkModuleExport(modSym, name)
}

func (a *Analyzer) checkModuleExport(modSym *symbols.Symbol, name *ast.Identifier) {
	if modSym.Exports == nil {
		return // loader absent: no static validation
	}
	if _, ok := modSym.Exports[name.Value]; !ok {
		a.errorAt(diagnostics.ErrA006, name.Token,
			"module '%s' has no exported member '%s'", modSym.Name, name.Value)
	}
}
