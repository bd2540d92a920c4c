package analyzer

import (
	"github.com/neon-lang/neon/internal/pipeline"
)

// SemanticAnalyzerProcessor runs semantic analysis as a pipeline stage.
type SemanticAnalyzerProcessor struct {
	Resolver ModuleResolver
}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	prog := ctx.Program()
	if prog == nil || len(ctx.Errors) > 0 {
		return ctx
	}

	a := New()
	if sap.Resolver != nil {
		a.SetResolver(sap.Resolver)
	}
	table, errs := a.Analyze(prog)
	ctx.SymbolTable = table
	ctx.Errors = append(ctx.Errors, errs...)

	exports := make(map[string]bool, len(a.Exports()))
	for name := range a.Exports() {
		exports[name] = true
	}
	ctx.Exports = exports

	return ctx
}
