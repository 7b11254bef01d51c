package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidDocument(t *testing.T) {
	doc := writeDocument(t, t.TempDir(), "history.cue", testDocument)

	out, _, err := execute(t, &RootOptions{Format: "text"}, NewValidateCommand, doc)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All queries valid (2)")
}

func TestValidateValidDirectoryJSON(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, "history.cue", testDocument)
	writeDocument(t, dir, "spacex.yaml", "queries:\n  spacex:\n    filter: {field: company, op: eq, value: SpaceX}\n")

	out, _, err := execute(t, &RootOptions{Format: "json", RunIDs: fixedRunIDs()}, NewValidateCommand, dir)
	require.NoError(t, err)

	var resp struct {
		Status  string           `json:"status"`
		Data    ValidationResult `json:"data"`
		TraceID string           `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Queries)
	assert.Equal(t, testRunID, resp.TraceID)
}

func TestValidateDefaultsToQueryDir(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, "history.cue", testDocument)

	opts := &RootOptions{Format: "text"}
	require.NoError(t, opts.prepare(NewValidateCommand(opts)))
	opts.Config.Query.Dir = dir

	out, _, err := execute(t, opts, NewValidateCommand)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All queries valid")
}

func TestValidateNonExistentPath(t *testing.T) {
	out, _, err := execute(t, &RootOptions{Format: "text"}, NewValidateCommand, "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, _, err := execute(t, &RootOptions{Format: "text"}, NewValidateCommand, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "no query documents found")
}

func TestValidateCompileError(t *testing.T) {
	bad := writeDocument(t, t.TempDir(), "bad.yaml", "queries:\n  bad:\n    filter: {field: year, op: nope, value: 1}\n")

	out, _, err := execute(t, &RootOptions{Format: "text"}, NewValidateCommand, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeDocument)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "unknown op")
}

const invalidDocument = `query: by_agency: filter: {field: "agency", op: "eq", value: "CASC"}
query: bogus: filter: {field: "launch_pad", op: "eq", value: "LC-39A"}
query: bad_date: filter: {field: "date", op: "gt", value: "last tuesday"}
`

func TestValidateInvalidQueries(t *testing.T) {
	doc := writeDocument(t, t.TempDir(), "bad.cue", invalidDocument)

	out, _, err := execute(t, &RootOptions{Format: "text"}, NewValidateCommand, doc)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 2 error(s)")

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "line 2: bogus")
	assert.Contains(t, out, "E120: launch_pad")
	assert.Contains(t, out, "bad_date")
	assert.Contains(t, out, "E121")
	assert.NotContains(t, out, "by_agency")
}

func TestValidateInvalidQueriesJSON(t *testing.T) {
	doc := writeDocument(t, t.TempDir(), "bad.cue", invalidDocument)

	out, _, err := execute(t, &RootOptions{Format: "json"}, NewValidateCommand, doc)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  CLIError         `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Queries)
	require.Len(t, resp.Data.Errors, 2)
	assert.Equal(t, "bogus", resp.Data.Errors[0].Query)
	assert.Equal(t, "E120", resp.Data.Errors[0].Code)
	assert.Equal(t, "bad_date", resp.Data.Errors[1].Query)
	assert.Equal(t, ErrCodeDocument, resp.Error.Code)
}

func TestValidateVerboseOutput(t *testing.T) {
	doc := writeDocument(t, t.TempDir(), "history.cue", testDocument)

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json", Verbose: true})
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{doc})
	require.NoError(t, cmd.Execute())

	// Verbose lines go to stderr so JSON stays parseable
	assert.Contains(t, errOut.String(), "Compiled 2 quer(ies) from "+doc)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
}
