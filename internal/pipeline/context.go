package pipeline

import (
	"github.com/neon-lang/neon/internal/ast"
	"github.com/neon-lang/neon/internal/diagnostics"
	"github.com/neon-lang/neon/internal/token"
)

// PipelineContext carries the artifacts of each compilation stage.
// Stages append to Errors instead of aborting so one compile surfaces
// diagnostics from every stage that could still run.
type PipelineContext struct {
	Source   string
	FilePath string

	TokenStream []token.Token
	AstRoot     ast.Node
	SymbolTable interface{} // *symbols.SymbolTable; typed loosely to keep stages decoupled
	Exports     map[string]bool

	Errors []*diagnostics.DiagnosticError
}

func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{Source: source}
}

// HasErrors reports whether any stage recorded a diagnostic.
func (ctx *PipelineContext) HasErrors() bool {
	return len(ctx.Errors) > 0
}

// Program returns the parsed AST root, or nil before parsing.
func (ctx *PipelineContext) Program() *ast.Program {
	if prog, ok := ctx.AstRoot.(*ast.Program); ok {
		return prog
	}
	return nil
}
