package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := New(KindSemantic, CodeDuplicateLabel, 3, "duplicity in universe: %q", "a")
	assert.Equal(t, `line 3: semantic error: duplicity in universe: "a"`, err.Error())

	withFile := WithFile(err, "prog.txt")
	assert.Equal(t, `prog.txt:3: semantic error: duplicity in universe: "a"`, withFile.Error())

	// err itself keeps an empty File.
	assert.Empty(t, err.File)

	noLine := &Error{Kind: KindStructural, Code: CodeMissingCommands, File: "prog.txt", Msg: "no commands in file"}
	assert.Equal(t, "prog.txt: structural error: no commands in file", noLine.Error())
}

func TestErrorsIs(t *testing.T) {
	err := New(KindArgument, CodeInvalidOperand, 5, "bad operand")
	wrapped := fmt.Errorf("run failed: %w", err)

	assert.True(t, errors.Is(wrapped, ErrArgument))
	assert.False(t, errors.Is(wrapped, ErrRuntime))
	assert.True(t, errors.Is(wrapped, &Error{Kind: KindArgument, Code: CodeInvalidOperand}))
	assert.False(t, errors.Is(wrapped, &Error{Kind: KindArgument, Code: CodeInvalidTarget}))
	assert.Equal(t, CodeInvalidOperand, CodeOf(wrapped))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "syntax", KindSyntax.String())
	assert.Equal(t, "runtime", KindRuntime.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
