package compiler

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/RobertP-SyndicateLabs/setcal/diag"
	"github.com/RobertP-SyndicateLabs/setcal/entity"
)

// Limits bounds what a program may contain and how long it may run.
type Limits struct {
	MaxLines       int
	MaxLabelLength int
	// StepFactor scales the executor's step budget:
	// StepFactor * lines * max(1, commands).
	StepFactor int
}

func DefaultLimits() Limits {
	return Limits{
		MaxLines:       1000,
		MaxLabelLength: 30,
		StepFactor:     8,
	}
}

// -------- PARSER CORE --------

type Parser struct {
	l         *Lexer
	curToken  Token
	peekToken Token

	limits Limits
	log    *zap.Logger

	prog *Program
}

func NewParser(l *Lexer, limits Limits, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Parser{
		l:      l,
		limits: limits,
		log:    log,
		prog: &Program{
			File:  l.filename,
			Store: entity.NewStore(OpNames()),
		},
	}
	// Load two tokens so cur/peek are valid.
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) atLineEnd() bool {
	return p.curToken.Type == TOK_NEWLINE || p.curToken.Type == TOK_EOF
}

// -------- TOP-LEVEL PARSE --------

// ParseProgram reads the whole input. The first error aborts parsing and
// no Program is returned.
func (p *Parser) ParseProgram() (*Program, error) {
	for p.curToken.Type != TOK_EOF {
		if err := p.parseLine(); err != nil {
			return nil, diag.WithFile(err, p.prog.File)
		}
	}

	if err := p.finish(); err != nil {
		return nil, diag.WithFile(err, p.prog.File)
	}

	p.log.Debug("parsed program",
		zap.String("file", p.prog.File),
		zap.Int("lines", len(p.prog.Lines)),
		zap.Int("commands", len(p.prog.Commands)))
	return p.prog, nil
}

func (p *Parser) parseLine() error {
	n := len(p.prog.Lines) + 1
	if p.limits.MaxLines > 0 && n > p.limits.MaxLines {
		return diag.New(diag.KindStructural, diag.CodeTooManyLines, n,
			"file exceeds %d lines", p.limits.MaxLines)
	}

	start := p.curToken
	if start.Type == TOK_NEWLINE {
		return diag.New(diag.KindStructural, diag.CodeUnknownLineKind, n, "empty line")
	}
	if start.Type != TOK_IDENT {
		return diag.New(diag.KindStructural, diag.CodeUnknownLineKind, n,
			"unrecognized line start %q", start.Lexeme)
	}
	p.nextToken() // past the line kind

	var (
		line = Line{Number: n}
		err  error
	)
	switch start.Lexeme {
	case "U":
		line.Kind = LineUniverse
		err = p.parseUniverse(n)
	case "S":
		line.Kind = LineSet
		err = p.parseSet(n)
	case "R":
		line.Kind = LineRelation
		err = p.parseRelation(n)
	case "C":
		line.Kind = LineCommand
		line.Command, err = p.parseCommand(n)
	default:
		return diag.New(diag.KindStructural, diag.CodeUnknownLineKind, n,
			"unrecognized line start %q", start.Lexeme)
	}
	if err != nil {
		return err
	}

	p.prog.Lines = append(p.prog.Lines, line)
	if line.Command != nil {
		p.prog.Commands = append(p.prog.Commands, line.Command)
	}

	// Expect end of line
	if !p.atLineEnd() {
		return diag.New(diag.KindSyntax, diag.CodeMalformedLine, n,
			"unexpected %q at column %d", p.curToken.Lexeme, p.curToken.Column)
	}
	if p.curToken.Type == TOK_NEWLINE {
		p.nextToken()
	}
	return nil
}

// finish applies the whole-file checks once every line is known.
func (p *Parser) finish() error {
	if p.prog.Store.Universe() == nil {
		return diag.New(diag.KindStructural, diag.CodeMissingUniverse, 0, "missing universe")
	}
	if len(p.prog.Commands) == 0 {
		return diag.New(diag.KindStructural, diag.CodeMissingCommands, 0, "no commands in file")
	}
	for _, c := range p.prog.Commands {
		if c.Target > len(p.prog.Lines) {
			return diag.New(diag.KindArgument, diag.CodeInvalidTarget, c.Line,
				"%s: jump target %d is past the last line %d", c.Op, c.Target, len(p.prog.Lines))
		}
	}
	return nil
}

// -------- DECLARATIONS --------

// readLabel consumes one label token.
func (p *Parser) readLabel(n int) (string, error) {
	tok := p.curToken
	switch tok.Type {
	case TOK_IDENT, TOK_NUM:
		// NUM is let through so the store reports it as an invalid label.
	default:
		return "", diag.New(diag.KindSyntax, diag.CodeMalformedLine, n,
			"unexpected %q at column %d", tok.Lexeme, tok.Column)
	}
	if p.limits.MaxLabelLength > 0 && len(tok.Lexeme) > p.limits.MaxLabelLength {
		return "", diag.New(diag.KindSyntax, diag.CodeTokenTooLong, n,
			"items cannot be more than %d characters long", p.limits.MaxLabelLength)
	}
	p.nextToken()
	return tok.Lexeme, nil
}

func (p *Parser) readLabels(n int) ([]string, error) {
	labels := []string{}
	for !p.atLineEnd() {
		l, err := p.readLabel(n)
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, nil
}

func (p *Parser) parseUniverse(n int) error {
	// U a b c
	// Any earlier line either was the universe or already failed.
	if n != 1 {
		return diag.New(diag.KindStructural, diag.CodeDuplicateUniverse, n,
			"universe already declared")
	}
	labels, err := p.readLabels(n)
	if err != nil {
		return err
	}
	return p.prog.Store.DeclareUniverse(n, labels)
}

func (p *Parser) checkDataPlacement(n int) error {
	if len(p.prog.Commands) > 0 {
		return diag.New(diag.KindStructural, diag.CodeMisplacedDeclaration, n,
			"sets and relations must precede commands")
	}
	return nil
}

func (p *Parser) parseSet(n int) error {
	// S a b
	if err := p.checkDataPlacement(n); err != nil {
		return err
	}
	labels, err := p.readLabels(n)
	if err != nil {
		return err
	}
	return p.prog.Store.DeclareSet(n, labels)
}

func (p *Parser) parseRelation(n int) error {
	// R (a b) (b c)
	if err := p.checkDataPlacement(n); err != nil {
		return err
	}

	pairs := []entity.LabelPair{}
	for !p.atLineEnd() {
		if p.curToken.Type != TOK_LPAREN {
			return diag.New(diag.KindSyntax, diag.CodeMissingDelimiter, n,
				"expected '(' at column %d, got %q", p.curToken.Column, p.curToken.Lexeme)
		}
		p.nextToken()

		var lp entity.LabelPair
		var err error
		if lp.X, err = p.readPairItem(n); err != nil {
			return err
		}
		if lp.Y, err = p.readPairItem(n); err != nil {
			return err
		}

		if p.curToken.Type != TOK_RPAREN {
			return diag.New(diag.KindSyntax, diag.CodeMissingDelimiter, n,
				"expected ')' at column %d, got %q", p.curToken.Column, p.curToken.Lexeme)
		}
		p.nextToken()
		pairs = append(pairs, lp)
	}
	return p.prog.Store.DeclareRelation(n, pairs)
}

func (p *Parser) readPairItem(n int) (string, error) {
	if p.atLineEnd() || p.curToken.Type == TOK_RPAREN {
		return "", diag.New(diag.KindSyntax, diag.CodeMissingDelimiter, n,
			"relation pair needs exactly two elements")
	}
	return p.readLabel(n)
}

// -------- COMMANDS --------

func (p *Parser) parseCommand(n int) (*Command, error) {
	// C <op> <line>... [target]
	store := p.prog.Store
	if store.Universe() == nil {
		return nil, diag.New(diag.KindStructural, diag.CodeMissingUniverse, n,
			"universe must be declared before commands")
	}
	if len(p.prog.Lines) < 2 {
		return nil, diag.New(diag.KindStructural, diag.CodeMissingData, n,
			"at least one set or relation must precede the first command")
	}

	if p.curToken.Type != TOK_IDENT {
		return nil, diag.New(diag.KindSyntax, diag.CodeMalformedLine, n,
			"expected operation name after C, got %q", p.curToken.Lexeme)
	}
	name := p.curToken.Lexeme
	op, ok := LookupOp(name)
	if !ok {
		return nil, diag.New(diag.KindSyntax, diag.CodeUnknownOperation, n,
			"unknown operation %q", name)
	}
	p.nextToken()

	var args []int
	for !p.atLineEnd() {
		tok := p.curToken
		if tok.Type != TOK_NUM {
			return nil, diag.New(diag.KindSyntax, diag.CodeMalformedLine, n,
				"%s: expected line number at column %d, got %q", name, tok.Column, tok.Lexeme)
		}
		v, err := strconv.Atoi(tok.Lexeme)
		if err != nil {
			return nil, diag.New(diag.KindArgument, diag.CodeInvalidOperand, n,
				"%s: line number %s out of range", name, tok.Lexeme)
		}
		args = append(args, v)
		p.nextToken()
	}

	cmd := &Command{Line: n, Op: op}
	switch {
	case len(args) == op.Arity():
		cmd.Args = args
	case len(args) == op.Arity()+1 && op.Branches():
		cmd.Args = args[:op.Arity()]
		cmd.Target = args[op.Arity()]
		if cmd.Target < 1 {
			return nil, diag.New(diag.KindArgument, diag.CodeInvalidTarget, n,
				"%s: jump target %d is not a line", name, cmd.Target)
		}
	default:
		want := strconv.Itoa(op.Arity())
		if op.Branches() {
			want += " or " + strconv.Itoa(op.Arity()+1)
		}
		return nil, diag.New(diag.KindArgument, diag.CodeInvalidArgumentCount, n,
			"%s takes %s arguments, got %d", name, want, len(args))
	}

	p.log.Debug("parsed command",
		zap.Int("line", n),
		zap.Stringer("op", op),
		zap.Ints("args", cmd.Args),
		zap.Int("target", cmd.Target))
	return cmd, nil
}
