package diagnostics

import (
	"fmt"

	"github.com/neon-lang/neon/internal/token"
)

// Phase identifies the compiler stage that produced a diagnostic.
type Phase int

const (
	PhaseLex Phase = iota
	PhaseParse
	PhaseSemantic
	PhaseCodegen
)

func (p Phase) String() string {
	switch p {
	case PhaseLex:
		return "lex"
	case PhaseParse:
		return "parse"
	case PhaseSemantic:
		return "semantic"
	case PhaseCodegen:
		return "codegen"
	default:
		return "unknown"
	}
}

type ErrorCode string

// Lex errors surface as ERROR tokens and are converted by the parser.
const (
	ErrL001 ErrorCode = "L001" // malformed number literal
	ErrL002 ErrorCode = "L002" // unterminated string
	ErrL003 ErrorCode = "L003" // unexpected character

	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // expect expression
	ErrP003 ErrorCode = "P003" // missing statement terminator
	ErrP004 ErrorCode = "P004" // invalid assignment target
	ErrP006 ErrorCode = "P006" // general parse error

	ErrA001 ErrorCode = "A001" // undefined symbol
	ErrA002 ErrorCode = "A002" // immutable assignment
	ErrA003 ErrorCode = "A003" // arity mismatch
	ErrA004 ErrorCode = "A004" // duplicate symbol
	ErrA005 ErrorCode = "A005" // unknown method
	ErrA006 ErrorCode = "A006" // module export access
	ErrA007 ErrorCode = "A007" // break/continue outside loop

	ErrC001 ErrorCode = "C001" // codegen failure
)

// DiagnosticError is a structured compile-time error with a source location.
type DiagnosticError struct {
	Code    ErrorCode
	Message string
	File    string
	Line    int
	Column  int
}

func (e *DiagnosticError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: [%s] %s", e.File, e.Line, e.Column, e.Code, e.Message)
	}
	return fmt.Sprintf("%d:%d: [%s] %s", e.Line, e.Column, e.Code, e.Message)
}

// Phase derives the compiler stage from the code prefix.
func (e *DiagnosticError) Phase() Phase {
	if len(e.Code) == 0 {
		return PhaseParse
	}
	switch e.Code[0] {
	case 'L':
		return PhaseLex
	case 'P':
		return PhaseParse
	case 'A':
		return PhaseSemantic
	case 'C':
		return PhaseCodegen
	default:
		return PhaseParse
	}
}

// NewError builds a diagnostic anchored at tok's position.
func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Message: message,
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

// NewErrorAt builds a diagnostic at an explicit position.
func NewErrorAt(code ErrorCode, line, column int, message string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Message: message,
		Line:    line,
		Column:  column,
	}
}
