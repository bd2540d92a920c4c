package symbols

import (
	"github.com/neon-lang/neon/internal/token"
)

type SymbolKind int

const (
	ValueSymbol SymbolKind = iota // val binding
	VariableSymbol                // var binding
	ParameterSymbol
	FunctionSymbol
	StructSymbol
	ModuleSymbol
	NativeSymbol // pre-defined host namespace (Math, File, ...)
)

func (k SymbolKind) String() string {
	switch k {
	case ValueSymbol:
		return "value"
	case VariableSymbol:
		return "variable"
	case ParameterSymbol:
		return "parameter"
	case FunctionSymbol:
		return "function"
	case StructSymbol:
		return "struct"
	case ModuleSymbol:
		return "module"
	case NativeSymbol:
		return "native"
	default:
		return "unknown"
	}
}

type Symbol struct {
	Name       string
	Kind       SymbolKind
	Mutable    bool
	ScopeDepth int
	Token      token.Token

	Arity   int               // FunctionSymbol: declared parameter count
	Fields  []string          // StructSymbol: declared field names
	Methods map[string]int    // StructSymbol: method name -> arity
	Path    string            // ModuleSymbol: canonical module path
	Exports map[string]SymbolKind // ModuleSymbol: exported name -> kind
}

// Scope is one level of the lexical scope stack.
type Scope struct {
	symbols map[string]*Symbol
	depth   int
}

// SymbolTable is a stack of scopes; depth 0 is the global scope.
// EnterScope and ExitScope must balance exactly around every block and
// function body.
type SymbolTable struct {
	scopes []*Scope
}

func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{}
	st.scopes = append(st.scopes, &Scope{symbols: make(map[string]*Symbol), depth: 0})
	return st
}

func (st *SymbolTable) Depth() int {
	return len(st.scopes) - 1
}

func (st *SymbolTable) EnterScope() {
	st.scopes = append(st.scopes, &Scope{
		symbols: make(map[string]*Symbol),
		depth:   len(st.scopes),
	})
}

func (st *SymbolTable) ExitScope() {
	if len(st.scopes) > 1 {
		st.scopes = st.scopes[:len(st.scopes)-1]
	}
}

// Define inserts sym in the innermost scope. It reports false when the same
// name already exists at this depth; shadowing an outer scope is legal.
func (st *SymbolTable) Define(sym *Symbol) bool {
	scope := st.scopes[len(st.scopes)-1]
	if _, exists := scope.symbols[sym.Name]; exists {
		return false
	}
	sym.ScopeDepth = scope.depth
	scope.symbols[sym.Name] = sym
	return true
}

// Resolve searches innermost-to-outermost.
func (st *SymbolTable) Resolve(name string) (*Symbol, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if sym, ok := st.scopes[i].symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// ResolveCurrent looks only in the innermost scope.
func (st *SymbolTable) ResolveCurrent(name string) (*Symbol, bool) {
	scope := st.scopes[len(st.scopes)-1]
	sym, ok := scope.symbols[name]
	return sym, ok
}

// GlobalNames returns the names defined at depth 0, for tooling.
func (st *SymbolTable) GlobalNames() []string {
	var names []string
	for name := range st.scopes[0].symbols {
		names = append(names, name)
	}
	return names
}
