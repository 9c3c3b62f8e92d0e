package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func lexAll(src string) []Token {
	l := NewLexer(src, "test.txt")
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TOK_EOF {
			return toks
		}
	}
}

func TestLexerTokens(t *testing.T) {
	got := lexAll("R (a b)\nC closure_ref 2 12")

	want := []Token{
		{Type: TOK_IDENT, Lexeme: "R", Line: 1, Column: 1, File: "test.txt"},
		{Type: TOK_LPAREN, Lexeme: "(", Line: 1, Column: 3, File: "test.txt"},
		{Type: TOK_IDENT, Lexeme: "a", Line: 1, Column: 4, File: "test.txt"},
		{Type: TOK_IDENT, Lexeme: "b", Line: 1, Column: 6, File: "test.txt"},
		{Type: TOK_RPAREN, Lexeme: ")", Line: 1, Column: 7, File: "test.txt"},
		{Type: TOK_NEWLINE, Lexeme: "\n", Line: 1, Column: 0, File: "test.txt"},
		{Type: TOK_IDENT, Lexeme: "C", Line: 2, Column: 1, File: "test.txt"},
		{Type: TOK_IDENT, Lexeme: "closure_ref", Line: 2, Column: 3, File: "test.txt"},
		{Type: TOK_NUM, Lexeme: "2", Line: 2, Column: 15, File: "test.txt"},
		{Type: TOK_NUM, Lexeme: "12", Line: 2, Column: 17, File: "test.txt"},
		{Type: TOK_EOF, Lexeme: "", Line: 2, Column: 18, File: "test.txt"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerWhitespace(t *testing.T) {
	types := func(toks []Token) []TokenType {
		out := make([]TokenType, len(toks))
		for i, tok := range toks {
			out[i] = tok.Type
		}
		return out
	}

	// CR and tabs are plain whitespace; only LF ends a line.
	got := lexAll("U\ta  b\r\nS a\r\n")
	assert.Equal(t, []TokenType{
		TOK_IDENT, TOK_IDENT, TOK_IDENT, TOK_NEWLINE,
		TOK_IDENT, TOK_IDENT, TOK_NEWLINE,
		TOK_EOF,
	}, types(got))
	assert.Equal(t, 2, got[4].Line)
}

func TestLexerWordsAndNumbers(t *testing.T) {
	got := lexAll("a1 7x")
	assert.Equal(t, TOK_IDENT, got[0].Type)
	assert.Equal(t, "a1", got[0].Lexeme)
	// A number stops at the first non-digit.
	assert.Equal(t, TOK_NUM, got[1].Type)
	assert.Equal(t, "7", got[1].Lexeme)
	assert.Equal(t, TOK_IDENT, got[2].Type)
	assert.Equal(t, "x", got[2].Lexeme)
}

func TestLexerIllegal(t *testing.T) {
	got := lexAll("S a,b")
	assert.Equal(t, TOK_ILLEGAL, got[2].Type)
	assert.Equal(t, ",", got[2].Lexeme)
	assert.Equal(t, 4, got[2].Column)

	got = lexAll("C union -1")
	assert.Equal(t, TOK_ILLEGAL, got[2].Type)
	assert.Equal(t, "-", got[2].Lexeme)
}

func TestTokenString(t *testing.T) {
	tok := NewToken(TOK_NUM, "3", "p.txt", 4, 9)
	assert.Equal(t, `NUM("3") at p.txt:4:9`, tok.String())
}
