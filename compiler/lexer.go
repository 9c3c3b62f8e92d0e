package compiler

import (
	"unicode"
	"unicode/utf8"
)

/*
   setcal lexer

   - Supports:
     * Words: a letter followed by letters, digits or '_' (U, S, R, C,
       universe labels, operation names such as closure_ref)
     * Integers (line references)
     * Parentheses around relation pairs, attached or space-separated
     * Newline tracking; '\r' is treated as whitespace

   - API:
     * NewLexer(source, filename) *Lexer
     * (*Lexer).NextToken() Token
*/

type Lexer struct {
	src      string
	filename string

	pos    int // byte index into src
	line   int
	column int

	ch    rune // current rune
	width int  // width in bytes of ch
	done  bool
}

func NewLexer(src, filename string) *Lexer {
	l := &Lexer{
		src:      src,
		filename: filename,
		line:     1,
		column:   0,
	}
	l.readRune()
	return l
}

func (l *Lexer) readRune() {
	if l.pos >= len(l.src) {
		l.ch = 0
		l.width = 0
		l.done = true
		return
	}

	r, w := utf8.DecodeRuneInString(l.src[l.pos:])
	l.ch = r
	l.width = w
	l.pos += w
	if r == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) makeToken(tt TokenType, lexeme string, line, col int) Token {
	return NewToken(tt, lexeme, l.filename, line, col)
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	// Skip whitespace but keep NEWLINE as its own token
	for !l.done && (l.ch == ' ' || l.ch == '\t' || l.ch == '\r') {
		l.readRune()
	}

	if l.done {
		return l.makeToken(TOK_EOF, "", l.line, l.column)
	}

	// Newline token. readRune already bumped the line counter for it.
	if l.ch == '\n' {
		line, col := l.line-1, l.column
		l.readRune()
		return l.makeToken(TOK_NEWLINE, "\n", line, col)
	}

	line, col := l.line, l.column

	if isLetter(l.ch) {
		return l.lexWord()
	}

	if isDigit(l.ch) {
		return l.lexNumber()
	}

	ch := l.ch
	l.readRune()

	switch ch {
	case '(':
		return l.makeToken(TOK_LPAREN, "(", line, col)
	case ')':
		return l.makeToken(TOK_RPAREN, ")", line, col)
	default:
		return l.makeToken(TOK_ILLEGAL, string(ch), line, col)
	}
}

func (l *Lexer) lexNumber() Token {
	line, col := l.line, l.column
	start := l.pos - l.width

	for !l.done && isDigit(l.ch) {
		l.readRune()
	}

	return l.makeToken(TOK_NUM, l.src[start:l.end()], line, col)
}

func (l *Lexer) lexWord() Token {
	line, col := l.line, l.column
	start := l.pos - l.width

	for !l.done && (isLetter(l.ch) || isDigit(l.ch) || l.ch == '_') {
		l.readRune()
	}

	return l.makeToken(TOK_IDENT, l.src[start:l.end()], line, col)
}

// end is the byte offset just past the last consumed rune.
func (l *Lexer) end() int {
	if l.done {
		return len(l.src)
	}
	return l.pos - l.width
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
