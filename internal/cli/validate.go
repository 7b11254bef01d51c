package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/launchdeck/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Queries  int                        `json:"queries"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate query documents without running them",
		Long: `Validate CUE and YAML query documents without loading the dataset.

Compiles every named query and checks its fields, operators and values
against the field registry. path is a document or a directory of them;
it defaults to query.dir from the config.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			path := rootOpts.Config.Query.Dir
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	queries, code, err := loadDocuments(path)
	if err != nil {
		return outputValidateError(formatter, code, err.Error(), nil)
	}
	formatter.VerboseLog("Compiled %d quer(ies) from %s", len(queries), path)

	result := ValidationResult{Queries: len(queries)}
	for _, ve := range compiler.Validate(queries) {
		formatter.VerboseLog("%s", ve.Error())
		if ve.IsWarning() {
			result.Warnings = append(result.Warnings, ve)
		} else {
			result.Errors = append(result.Errors, ve)
		}
	}

	if len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result)
	}

	result.Valid = true
	return outputValidateSuccess(formatter, result)
}

// loadDocuments compiles the document at path, or every document under it
// when path is a directory.
func loadDocuments(path string) ([]compiler.NamedQuery, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCodeNotFound, fmt.Errorf("path not found: %s", path)
		}
		return nil, ErrCodeGeneric, err
	}

	if !info.IsDir() {
		queries, err := compiler.LoadFile(path)
		if err != nil {
			return nil, ErrCodeDocument, err
		}
		return queries, "", nil
	}

	files, err := compiler.FindQueryFiles(path)
	if err != nil {
		return nil, ErrCodeGeneric, err
	}
	if len(files) == 0 {
		return nil, ErrCodeNotFound, fmt.Errorf("no query documents found in %s", path)
	}
	queries, err := compiler.LoadDir(path)
	if err != nil {
		return nil, ErrCodeDocument, err
	}
	return queries, "", nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "warning: %s\n", w.Error())
	}
	fmt.Fprintf(formatter.Writer, "✓ All queries valid (%d)\n", result.Queries)
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every problem found.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeDocument,
				Message: errs[0].Error(),
			},
			TraceID: formatter.TraceID,
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range append(errs, result.Warnings...) {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d: %s\n", err.Line, err.Query)
		} else {
			fmt.Fprintln(formatter.Writer, err.Query)
		}
		if err.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
		}
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
