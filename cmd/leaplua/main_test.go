// Package main provides tests for the leaplua CLI.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplua/internal/cli"
	"github.com/leapstack-labs/leaplua/internal/cli/commands"
	"github.com/leapstack-labs/leaplua/internal/cli/testutil"
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runWithInput(t, "", args...)
}

// runWithInput is run with stdin reading from input.
func runWithInput(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leaplua v")
}

func TestHelpCommand(t *testing.T) {
	out, _, err := run(t, "--help")
	require.NoError(t, err)

	expectedCommands := []string{"compile", "lower", "matrix", "codes", "repl", "cache", "lsp", "serve", "completion"}
	for _, expected := range expectedCommands {
		assert.Contains(t, out, expected)
	}
}

func TestCompileProject(t *testing.T) {
	root := testutil.SetupTestProject(t, "target: 5.2\nout_dir: build\n", map[string]string{
		"main.ts":      "a |= b\n",
		"lib/shift.ts": "let c = a >> b\n",
	})
	t.Chdir(root)

	_, errOut, err := run(t, "compile", "src")
	require.NoError(t, err, errOut)

	mainLua, err := os.ReadFile(filepath.Join(root, "build", "src", "main.lua"))
	require.NoError(t, err)
	assert.Equal(t, "a = bit32.bor(a, b)\n", string(mainLua))

	shift, err := os.ReadFile(filepath.Join(root, "build", "src", "lib", "shift.lua"))
	require.NoError(t, err)
	assert.Equal(t, "local c = bit32.arshift(a, b)\n", string(shift))
}

func TestCompileProject_TargetFlagOverridesFile(t *testing.T) {
	root := testutil.SetupTestProject(t, "target: 5.2\n", map[string]string{
		"main.ts": "a |= b\nc = 1\n",
	})
	t.Chdir(root)

	out, errOut, err := run(t, "compile", "--target", "5.0", "src/main.ts")
	require.ErrorIs(t, err, commands.ErrDiagnostics)
	assert.Contains(t, errOut, "src/main.ts:1:")
	assert.Contains(t, errOut, "error LW01")
	assert.Contains(t, out, "c = 1")
	assert.NotContains(t, out, "bit32")
}

func TestCompileProject_Cache(t *testing.T) {
	root := testutil.SetupTestProject(t, "target: JIT\nout_dir: build\ncache: .leaplua/cache.db\n", map[string]string{
		"main.ts": "x >>>= 3\n",
	})
	t.Chdir(root)

	compile := func() map[string]any {
		out, errOut, err := run(t, "compile", "-o", "json", "src")
		require.NoError(t, err, errOut)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		return decoded
	}

	first := compile()
	assert.EqualValues(t, 0, first["cached_count"])
	assert.FileExists(t, filepath.Join(root, ".leaplua", "cache.db"))

	second := compile()
	assert.EqualValues(t, 1, second["cached_count"])

	lua, err := os.ReadFile(filepath.Join(root, "build", "src", "main.lua"))
	require.NoError(t, err)
	assert.Equal(t, "local bit = require(\"bit\")\nx = bit.rshift(x, 3)\n", string(lua))

	out, _, err := run(t, "cache", "runs", "-o", "json")
	require.NoError(t, err)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, second["run_id"], runs[0]["id"])
	assert.Equal(t, "JIT", runs[0]["target"])
	assert.EqualValues(t, 1, runs[0]["cached"])

	out, _, err = run(t, "cache", "clear", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 cached units")

	third := compile()
	assert.EqualValues(t, 0, third["cached_count"])
}

func TestCacheCommand_NotConfigured(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := run(t, "cache", "runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cache configured")
}

func TestLSPCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	var in strings.Builder
	for _, body := range []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":` +
			`{"uri":"file:///p/main.ts","languageId":"typescript","version":1,"text":"x = a >> b;"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	} {
		fmt.Fprintf(&in, "Content-Length: %d\r\n\r\n%s", len(body), body)
	}

	out, _, err := runWithInput(t, in.String(), "lsp", "--target", "5.3")
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"leaplua"`)
	assert.Contains(t, out, "textDocument/publishDiagnostics")
	assert.Contains(t, out, `"code":"LW02"`)
	assert.Contains(t, out, `"id":2`)
}

func TestLowerCommandJSON(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := run(t, "lower", "-t", "5.1", "-o", "json", "a >>> b")
	require.NoError(t, err)

	var decoded struct {
		Target string   `json:"target"`
		Value  string   `json:"value"`
		Chunk  string   `json:"chunk"`
		Helper []string `json:"helpers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "5.1", decoded.Target)
	assert.Equal(t, "__TS__UnsignedRightShift(a, b)", decoded.Value)
	assert.Contains(t, decoded.Helper, "__TS__UnsignedRightShift")
	assert.True(t, strings.HasSuffix(decoded.Chunk, "return __TS__UnsignedRightShift(a, b)\n"))
}

func TestMatrixCommandMarkdown(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := run(t, "matrix", "-o", "markdown")
	require.NoError(t, err)
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "# Operator capability matrix")
	assert.Contains(t, out, "library (bit32)")
	assert.Contains(t, out, "library (bit)")
}

func TestCodesCommandJSON(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := run(t, "codes", "-o", "json")
	require.NoError(t, err)

	var defs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	require.Len(t, defs, 2)
	assert.Equal(t, "LW01", defs[0]["code"])
	assert.Equal(t, "LW02", defs[1]["code"])
}

func TestInvalidTargetFlag(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := run(t, "matrix", "--target", "6.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown lua target")
}

func TestCompletionCommand(t *testing.T) {
	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			out, _, err := run(t, "completion", shell)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := run(t, "unknown-command")
	assert.Error(t, err, "unknown command should return an error")
}
