// Package diag holds the error taxonomy shared by the scanner, parser,
// entity store and executor. Every failure aborts the run, so an error
// carries enough context (kind, code, source line) to be printed as a
// single line.
package diag

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindSyntax Kind = iota + 1
	KindSemantic
	KindStructural
	KindArgument
	KindRuntime
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindSemantic:
		return "semantic"
	case KindStructural:
		return "structural"
	case KindArgument:
		return "argument"
	case KindRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Code names the specific failure inside a Kind.
type Code string

const (
	// Syntax
	CodeMalformedLine    Code = "MalformedLine"
	CodeMissingDelimiter Code = "MissingDelimiter"
	CodeTokenTooLong     Code = "TokenTooLong"
	CodeUnknownOperation Code = "UnknownOperation"

	// Semantic
	CodeDuplicateLabel        Code = "DuplicateLabel"
	CodeInvalidLabel          Code = "InvalidLabel"
	CodeReservedLabel         Code = "ReservedLabel"
	CodeUnknownUniverseMember Code = "UnknownUniverseMember"
	CodeDuplicateMember       Code = "DuplicateMember"

	// Structural
	CodeMissingUniverse      Code = "MissingUniverse"
	CodeDuplicateUniverse    Code = "DuplicateUniverse"
	CodeMisplacedDeclaration Code = "MisplacedDeclaration"
	CodeMissingData          Code = "MissingData"
	CodeMissingCommands      Code = "MissingCommands"
	CodeTooManyLines         Code = "TooManyLines"
	CodeUnknownLineKind      Code = "UnknownLineKind"

	// Argument
	CodeInvalidArgumentCount Code = "InvalidArgumentCount"
	CodeInvalidOperand       Code = "InvalidOperand"
	CodeInvalidTarget        Code = "InvalidTarget"
	CodeNotFound             Code = "NotFound"

	// Runtime
	CodeEmptySelect        Code = "EmptySelect"
	CodeStepBudgetExceeded Code = "StepBudgetExceeded"
)

// Error is a located failure. Line is the 1-based source line, or 0 when
// the failure is not tied to a single line.
type Error struct {
	Kind Kind
	Code Code
	File string
	Line int
	Msg  string
}

// Sentinels for errors.Is matching on the kind alone.
var (
	ErrSyntax     = &Error{Kind: KindSyntax}
	ErrSemantic   = &Error{Kind: KindSemantic}
	ErrStructural = &Error{Kind: KindStructural}
	ErrArgument   = &Error{Kind: KindArgument}
	ErrRuntime    = &Error{Kind: KindRuntime}
)

func New(kind Kind, code Code, line int, format string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Code: code,
		Line: line,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	loc := ""
	switch {
	case e.File != "" && e.Line > 0:
		loc = fmt.Sprintf("%s:%d: ", e.File, e.Line)
	case e.File != "":
		loc = e.File + ": "
	case e.Line > 0:
		loc = fmt.Sprintf("line %d: ", e.Line)
	}
	return fmt.Sprintf("%s%s error: %s", loc, e.Kind, e.Msg)
}

// Is matches another *Error by kind, and by code when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// WithFile stamps the source file name on err if it is a *Error.
func WithFile(err error, file string) error {
	var de *Error
	if errors.As(err, &de) && de.File == "" {
		cp := *de
		cp.File = file
		return &cp
	}
	return err
}

// CodeOf returns the Code of err, or "" when err is not a *Error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
