package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI writes src to a temp file and runs the CLI with args followed by
// that file's path. A missing config file is used so defaults apply.
func runCLI(t *testing.T, src string, args ...string) (cliResult, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.txt")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	full := append([]string{"--config", filepath.Join(dir, "none.yaml")}, args...)
	full = append(full, path)

	var stdout, stderr bytes.Buffer
	code := run(full, &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}, path
}

func TestRunSuccess(t *testing.T) {
	res, _ := runCLI(t, "U a b c\nS a b\nS b c\nC union 2 3\nC equals 2 3\n")
	assert.Equal(t, 0, res.code)
	assert.Empty(t, res.stderr)
	if diff := cmp.Diff("U a b c\nS a b\nS b c\nS a b c\nfalse\n", res.stdout); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func TestRunParseErrorPrintsNothing(t *testing.T) {
	res, path := runCLI(t, "U a b\nS a\nC union 2\n")
	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.Equal(t, 1, strings.Count(res.stderr, "\n"), res.stderr)
	assert.True(t, strings.HasPrefix(res.stderr, path+":3: argument error:"), res.stderr)
}

func TestRunRuntimeErrorKeepsOutput(t *testing.T) {
	res, path := runCLI(t, "U a\nS\nC card 2\nC select 2\n")
	assert.Equal(t, 1, res.code)
	assert.Equal(t, "U a\nS\n0\n", res.stdout)
	assert.Equal(t, 1, strings.Count(res.stderr, "\n"), res.stderr)
	assert.Contains(t, res.stderr, path+":4: runtime error:")
}

func TestRunMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	dir := t.TempDir()
	code := run([]string{"--config", filepath.Join(dir, "none.yaml"), filepath.Join(dir, "missing.txt")}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "read error")
}

func TestRunWrongArgCount(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{}, &stdout, &stderr))
	assert.NotEmpty(t, stderr.String())

	stderr.Reset()
	assert.Equal(t, 1, run([]string{"a.txt", "b.txt"}, &stdout, &stderr))
	assert.NotEmpty(t, stderr.String())
	assert.Empty(t, stdout.String())
}

func TestSeedFlagIsDeterministic(t *testing.T) {
	src := "U a b c d e f g h\nS a b c d e f g h\nC select 2\n"
	first, _ := runCLI(t, src, "--seed", "5")
	second, _ := runCLI(t, src, "--seed", "5")
	require.Equal(t, 0, first.code)
	assert.Equal(t, first.stdout, second.stdout)
}

func TestVerboseLogsToStderr(t *testing.T) {
	res, _ := runCLI(t, "U a\nS a\nC card 2\n", "-v")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "U a\nS a\n1\n", res.stdout)
	assert.Contains(t, res.stderr, "running program")
	assert.Contains(t, res.stderr, "run_id")
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "setcal.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logging:\n  level: loud\n"), 0o644))
	prog := filepath.Join(dir, "prog.txt")
	require.NoError(t, os.WriteFile(prog, []byte("U a\nS a\nC card 2\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", cfgPath, prog}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "logging.level")
}

func TestCheckCommand(t *testing.T) {
	res, _ := runCLI(t, "U a\nS a\nC card 2\n", "check")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "ok\n", res.stdout)

	res, _ = runCLI(t, "U a\nS b\nC card 2\n", "check")
	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "semantic error")
}

func TestLexCommand(t *testing.T) {
	res, _ := runCLI(t, "U a\n", "lex")
	assert.Equal(t, 0, res.code)
	lines := strings.Split(strings.TrimRight(res.stdout, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "IDENT"), lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "NEWLINE"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "EOF"), lines[3])

	res, _ = runCLI(t, "U a;\n", "lex")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "illegal character")
}

func TestVersionCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "version"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, cliToolVersion+"\n", stdout.String())
}

func TestFileNamedLikeSubcommand(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("check", []byte("U a\nS a\nC card 2\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", "none.yaml", "--", "check"}, &stdout, &stderr)
	assert.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "U a\nS a\n1\n", stdout.String())

	// Without "--" the name selects the subcommand, which wants a file.
	stdout.Reset()
	stderr.Reset()
	assert.Equal(t, 1, run([]string{"--config", "none.yaml", "check"}, &stdout, &stderr))
	assert.Empty(t, stdout.String())
}
