package lexer

import (
	"github.com/neon-lang/neon/internal/pipeline"
	"github.com/neon-lang/neon/internal/token"
)

// LexerProcessor runs the lexer over the context source and fills the
// token stream. ERROR tokens stay in the stream; the parser converts them
// into diagnostics at the point of consumption.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := New(ctx.Source)
	var stream []token.Token
	for {
		tok := l.NextToken()
		stream = append(stream, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	ctx.TokenStream = stream
	return ctx
}
