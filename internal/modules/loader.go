// Package modules resolves import paths to source files on disk and
// compiles them into function prototypes, caching the result so every
// import of the same file shares one compilation.
package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/neon-lang/neon/internal/analyzer"
	"github.com/neon-lang/neon/internal/config"
	"github.com/neon-lang/neon/internal/lexer"
	"github.com/neon-lang/neon/internal/parser"
	"github.com/neon-lang/neon/internal/pipeline"
	"github.com/neon-lang/neon/internal/symbols"
	"github.com/neon-lang/neon/internal/utils"
	"github.com/neon-lang/neon/internal/vm"
)

// Loader locates and compiles modules. It serves two consumers: the
// semantic analyzer asks for a module's export table while checking an
// importing file, and the virtual machine asks for the compiled
// prototype when an import statement executes. Both views are cached
// by canonical (absolute, cleaned) file path.
type Loader struct {
	// Roots are extra directories searched for bare import paths,
	// after the importing file's own directory. Typically populated
	// from the project config.
	Roots []string

	protos  map[string]*vm.FunctionProto
	exports map[string]map[string]symbols.SymbolKind

	// chain tracks the modules currently being loaded or analyzed,
	// in order, so a cycle can be reported as the path that formed it.
	chain  []string
	active map[string]bool

	logger commonlog.Logger
}

func NewLoader(roots ...string) *Loader {
	return &Loader{
		Roots:   roots,
		protos:  make(map[string]*vm.FunctionProto),
		exports: make(map[string]map[string]symbols.SymbolKind),
		active:  make(map[string]bool),
		logger:  commonlog.GetLogger("neon.modules"),
	}
}

// Resolve maps an import path, as written in source, to the canonical
// path of the file it names. Relative paths resolve against the
// importing file's directory; bare paths also try each configured
// root. A path without a source extension is probed with each
// recognized extension.
func (l *Loader) Resolve(path, fromFile string) (string, error) {
	if strings.HasPrefix(path, "system/") {
		return "", fmt.Errorf("unknown system module '%s'", path)
	}

	base := baseDir(fromFile)
	var candidates []string
	switch {
	case filepath.IsAbs(path):
		candidates = []string{path}
	case strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../"):
		candidates = []string{utils.ResolveImportPath(base, path)}
	default:
		candidates = []string{filepath.Join(base, path)}
		for _, root := range l.Roots {
			candidates = append(candidates, filepath.Join(root, path))
		}
	}

	for _, cand := range candidates {
		if found, ok := probe(cand); ok {
			canonical, err := filepath.Abs(found)
			if err != nil {
				return "", err
			}
			return filepath.Clean(canonical), nil
		}
	}
	return "", fmt.Errorf("cannot resolve module '%s'", path)
}

// probe checks whether cand names a source file, trying each
// recognized extension when cand has none.
func probe(cand string) (string, bool) {
	if config.HasSourceExt(cand) {
		if isFile(cand) {
			return cand, true
		}
		return "", false
	}
	for _, ext := range config.SourceFileExtensions {
		if isFile(cand + ext) {
			return cand + ext, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func baseDir(fromFile string) string {
	if fromFile == "" {
		return "."
	}
	return utils.GetModuleDir(fromFile)
}

// Load compiles the module at a canonical path into a function
// prototype, reusing the cached result on repeat imports. Importing a
// module that is itself still compiling is a cycle and an error.
func (l *Loader) Load(canonical string) (*vm.FunctionProto, error) {
	if proto, ok := l.protos[canonical]; ok {
		return proto, nil
	}
	if l.active[canonical] {
		return nil, l.cycleError(canonical)
	}
	l.enter(canonical)
	defer l.leave(canonical)

	src, err := os.ReadFile(canonical)
	if err != nil {
		return nil, fmt.Errorf("cannot read module '%s': %w", canonical, err)
	}

	l.logger.Debugf("compiling module %s", canonical)
	proto, diags := vm.CompileSource(string(src), canonical, l)
	if len(diags) > 0 {
		return nil, &vm.CompileError{Diagnostics: diags}
	}
	l.protos[canonical] = proto
	return proto, nil
}

// ResolveExports resolves an import path and returns the canonical
// path along with the exported names of the target module. Only the
// front end runs here: the module is lexed, parsed and analyzed, not
// compiled to bytecode. The analyzer calls this while checking each
// import statement.
func (l *Loader) ResolveExports(importPath, fromFile string) (string, map[string]symbols.SymbolKind, error) {
	canonical, err := l.Resolve(importPath, fromFile)
	if err != nil {
		return "", nil, err
	}
	if exports, ok := l.exports[canonical]; ok {
		return canonical, exports, nil
	}
	if l.active[canonical] {
		return "", nil, l.cycleError(canonical)
	}
	l.enter(canonical)
	defer l.leave(canonical)

	src, err := os.ReadFile(canonical)
	if err != nil {
		return "", nil, fmt.Errorf("cannot read module '%s': %w", canonical, err)
	}

	exports, err := l.analyzeExports(string(src), canonical)
	if err != nil {
		return "", nil, err
	}
	l.exports[canonical] = exports
	return canonical, exports, nil
}

func (l *Loader) analyzeExports(source, file string) (map[string]symbols.SymbolKind, error) {
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = file
	p := pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{})
	ctx = p.Run(ctx)
	if ctx.HasErrors() {
		return nil, moduleErrorf(file, ctx.Errors[0].Error())
	}

	a := analyzer.New()
	a.SetResolver(l)
	_, errs := a.Analyze(ctx.Program())
	if len(errs) > 0 {
		return nil, moduleErrorf(file, errs[0].Error())
	}
	return a.Exports(), nil
}

func moduleErrorf(file, first string) error {
	return fmt.Errorf("module '%s' failed to compile: %s",
		utils.ExtractModuleName(file), first)
}

func (l *Loader) enter(canonical string) {
	l.active[canonical] = true
	l.chain = append(l.chain, canonical)
}

func (l *Loader) leave(canonical string) {
	delete(l.active, canonical)
	l.chain = l.chain[:len(l.chain)-1]
}

// cycleError reports the import chain from the first occurrence of the
// repeated module back around to itself, by module name.
func (l *Loader) cycleError(canonical string) error {
	names := []string{}
	seen := false
	for _, p := range l.chain {
		if p == canonical {
			seen = true
		}
		if seen {
			names = append(names, utils.ExtractModuleName(p))
		}
	}
	names = append(names, utils.ExtractModuleName(canonical))
	return fmt.Errorf("circular import detected: %s", strings.Join(names, " -> "))
}
