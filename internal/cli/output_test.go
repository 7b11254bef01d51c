package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/launchdeck/internal/analytics"
	"github.com/roach88/launchdeck/internal/engine"
	"github.com/roach88/launchdeck/internal/loader"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E010", "dataset not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E010", resp.Error.Code)
	assert.Equal(t, "dataset not found", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]any{"source": "missions.csv", "line": 42}
	err := formatter.Error("E010", "malformed row", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("All queries valid")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "All queries valid")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E010", "dataset not found", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E010]")
	assert.Contains(t, buf.String(), "dataset not found")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"field": "bogus"}
	err := formatter.Error("E010", "dataset not found", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E010]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Loaded %s", "missions.csv")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Loaded missions.csv")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "E020",
		Message: "unknown field",
		Details: []string{"company", "status"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "E020", decoded.Code)
	assert.Equal(t, "unknown field", decoded.Message)
}

func TestOutputFormatter_JSONTraceID(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf, TraceID: "run-1"}

	require.NoError(t, formatter.Success(map[string]int{"total": 3}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.TraceID)
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	formatter.VerboseLog("matched %d", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "matched 3\n", errOut.String())
}

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		code string
	}{
		{"data load", &loader.DataLoadError{Code: loader.CodeNotFound, Source: "x.csv", Message: "no such file"}, ErrCodeDataLoad},
		{"wrapped data load", fmt.Errorf("startup: %w", &loader.DataLoadError{Code: loader.CodeEmpty}), ErrCodeDataLoad},
		{"invalid field", engine.NewInvalidFieldError("bogus"), ErrCodeInvalidField},
		{"query error", &engine.QueryError{Code: engine.ErrCodeInvalidValue, Field: "date", Message: "bad date"}, ErrCodeQuery},
		{"empty dataset", fmt.Errorf("most used rocket: %w", analytics.ErrEmptyDataset), ErrCodeEmpty},
		{"other", errors.New("boom"), ErrCodeGeneric},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, ErrorCode(tc.err))
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Fail(engine.NewInvalidFieldError("bogus"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, engine.IsInvalidFieldError(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeInvalidField, resp.Error.Code)
	assert.Equal(t, "bogus", resp.Error.Details["field"])
	assert.NotEmpty(t, resp.Error.Details["known_fields"])
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("run: %w", NewExitError(ExitFailure, "1 scenario(s) failed"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "67%", formatRate(0.67))
	assert.Equal(t, "100%", formatRate(1))
	assert.Equal(t, "0%", formatRate(0))
}
