package compiler

import "fmt"

type TokenType string

const (
	// Meta / control
	TOK_ILLEGAL TokenType = "ILLEGAL"
	TOK_EOF     TokenType = "EOF"
	TOK_NEWLINE TokenType = "NEWLINE"

	// Words: line kinds, labels and operation names all lex as IDENT.
	TOK_IDENT TokenType = "IDENT"
	// Non-negative integer literal (line references).
	TOK_NUM TokenType = "NUM"

	// Punctuation
	TOK_LPAREN TokenType = "LPAREN" // (
	TOK_RPAREN TokenType = "RPAREN" // )
)

// Token is the unified lexical unit used by lexer and parser.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
	File   string
}

func NewToken(t TokenType, lex string, file string, line int, col int) Token {
	return Token{
		Type:   t,
		Lexeme: lex,
		File:   file,
		Line:   line,
		Column: col,
	}
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %s:%d:%d", t.Type, t.Lexeme, t.File, t.Line, t.Column)
}
