package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidateCommand(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestValidateCommand_ValidFixture(t *testing.T) {
	path := writeFixture(t, `
expression:
  op: add
  left: {column: a, type: int}
  right: {column: b, type: long}
`)

	buf, err := runValidateCommand(t, "text", path)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "expression is valid")
}

func TestValidateCommand_ValidFixtureJSON(t *testing.T) {
	withFixedTokens(t, NewFixedGenerator("run-1"))
	path := writeFixture(t, `
expression:
  op: add
  left: {column: a, type: int}
  right: {column: b, type: long}
`)

	buf, err := runValidateCommand(t, "json", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.RunToken)
}

func TestValidateCommand_NotFound(t *testing.T) {
	buf, err := runValidateCommand(t, "text", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "E003")
	assert.Contains(t, buf.String(), "not found")
}

func TestValidateCommand_MalformedFixture(t *testing.T) {
	path := writeFixture(t, "expression: {op: add}")

	buf, err := runValidateCommand(t, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "E002")
}
