package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Renderer writes diagnostics to a terminal, coloring them when the
// destination is a tty and color has not been disabled.
type Renderer struct {
	out   io.Writer
	color bool
}

func NewRenderer(out io.Writer, noColor bool) *Renderer {
	color := !noColor
	if f, ok := out.(*os.File); ok && color {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	} else if !ok {
		color = false
	}
	return &Renderer{out: out, color: color}
}

// Render writes one line per diagnostic.
func (r *Renderer) Render(errs []*DiagnosticError) {
	for _, e := range errs {
		if r.color {
			fmt.Fprintf(r.out, "%serror[%s]%s %s%s%s\n", ansiRed+ansiBold, e.Code, ansiReset, ansiBold, r.location(e)+e.Message, ansiReset)
		} else {
			fmt.Fprintf(r.out, "error[%s] %s%s\n", e.Code, r.location(e), e.Message)
		}
	}
}

func (r *Renderer) location(e *DiagnosticError) string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: ", e.File, e.Line, e.Column)
	}
	return fmt.Sprintf("%d:%d: ", e.Line, e.Column)
}
