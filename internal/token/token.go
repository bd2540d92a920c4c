package token

type TokenType string

// Token is a single lexical unit produced by the lexer.
// Literal holds the parsed value: float64 for NUMBER, processed content for
// STRING, raw content for INTERP_STRING, and the diagnostic message for ERROR.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	ERROR   = "ERROR" // malformed literal; Literal holds the message
	EOF     = "EOF"

	// Identifiers and literals
	IDENT         = "IDENT"
	NUMBER        = "NUMBER"
	STRING        = "STRING"
	INTERP_STRING = "INTERP_STRING" // double-quoted string containing ${...}

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"

	PLUS_ASSIGN     = "+="
	MINUS_ASSIGN    = "-="
	ASTERISK_ASSIGN = "*="
	SLASH_ASSIGN    = "/="

	PLUS_PLUS   = "++"
	MINUS_MINUS = "--"

	EQ     = "=="
	NOT_EQ = "!="
	LT     = "<"
	GT     = ">"
	LT_EQ  = "<="
	GT_EQ  = ">="

	AND_AND   = "&&"
	PIPE_PIPE = "||"

	DOT         = "."
	DOT_DOT     = ".."
	DOT_DOT_EQ  = "..="

	// Delimiters
	COMMA     = ","
	COLON     = ":"
	SEMICOLON = ";"
	NEWLINE  = "NEWLINE"
	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	VAL      = "VAL"
	VAR      = "VAR"
	FN       = "FN"
	STRUCT   = "STRUCT"
	IF       = "IF"
	ELSE     = "ELSE"
	WHILE    = "WHILE"
	FOR      = "FOR"
	IN       = "IN"
	RETURN   = "RETURN"
	BREAK    = "BREAK"
	CONTINUE = "CONTINUE"
	IMPORT   = "IMPORT"
	EXPORT   = "EXPORT"
	PRINT    = "PRINT"
	TRUE     = "TRUE"
	FALSE    = "FALSE"
	NIL      = "NIL"
	AND      = "AND"
	OR       = "OR"
)

var keywords = map[string]TokenType{
	"val":      VAL,
	"var":      VAR,
	"fn":       FN,
	"struct":   STRUCT,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"import":   IMPORT,
	"export":   EXPORT,
	"print":    PRINT,
	"true":     TRUE,
	"false":    FALSE,
	"nil":      NIL,
	"and":      AND,
	"or":       OR,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
