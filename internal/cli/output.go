package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/roach88/launchdeck/internal/analytics"
	"github.com/roach88/launchdeck/internal/engine"
	"github.com/roach88/launchdeck/internal/loader"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Test/validation failure (scenarios failed, invalid query documents)
	ExitCommandError = 2 // Command error (bad dataset, rejected query, invalid paths)
)

// Error codes in CLI responses.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeConfig       = "E002" // Config file invalid
	ErrCodeNotFound     = "E005" // Path or name not found
	ErrCodeDataLoad     = "E010" // Dataset could not be loaded
	ErrCodeInvalidField = "E020" // Query names an unknown field
	ErrCodeQuery        = "E021" // Query value, operator or shape rejected
	ErrCodeEmpty        = "E022" // Question needs a non-empty dataset
	ErrCodeDocument     = "E030" // Query document invalid
	ErrCodeTestFailed   = "E040" // Scenarios failed
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode maps an error to its CLI error code.
func ErrorCode(err error) string {
	switch {
	case loader.IsDataLoadError(err):
		return ErrCodeDataLoad
	case engine.IsInvalidFieldError(err):
		return ErrCodeInvalidField
	case engine.IsQueryError(err):
		return ErrCodeQuery
	case errors.Is(err, analytics.ErrEmptyDataset):
		return ErrCodeEmpty
	default:
		return ErrCodeGeneric
	}
}

// errorDetails returns structured context for an error, if any.
func errorDetails(err error) any {
	var fe *engine.InvalidFieldError
	if errors.As(err, &fe) {
		return map[string]any{"field": fe.Field, "known_fields": fe.Known}
	}
	var qe *engine.QueryError
	if errors.As(err, &qe) {
		return map[string]any{"code": qe.Code, "field": qe.Field}
	}
	var de *loader.DataLoadError
	if errors.As(err, &de) {
		return map[string]any{"code": de.Code, "source": de.Source, "line": de.Line}
	}
	return nil
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
	TraceID   string // Run ID stamped on JSON responses
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`             // "ok" or "error"
	Data    any       `json:"data,omitempty"`     // success payload
	Error   *CLIError `json:"error,omitempty"`    // error details
	TraceID string    `json:"trace_id,omitempty"` // run correlation ID
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E010", "E020", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
// In text mode data is printed with its default format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status:  "ok",
			Data:    data,
			TraceID: f.TraceID,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
			TraceID: f.TraceID,
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns the ExitError
// the command should return.
func (f *OutputFormatter) Fail(err error) error {
	return f.FailCode(ErrorCode(err), err)
}

// FailCode is Fail with an explicit error code.
func (f *OutputFormatter) FailCode(code string, err error) error {
	_ = f.Error(code, err.Error(), errorDetails(err))
	return WrapExitError(ExitCommandError, code, err)
}

// encode writes an indented JSON response.
func (f *OutputFormatter) encode(resp CLIResponse) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// formatFloat renders f in its shortest exact form.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatRate renders a success fraction as a whole percentage.
func formatRate(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}
