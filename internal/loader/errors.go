package loader

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes carried by DataLoadError.
const (
	CodeNotFound      = "NOT_FOUND"      // source file does not exist
	CodeReadFailed    = "READ_FAILED"    // source exists but could not be read
	CodeEmpty         = "EMPTY"          // no header row
	CodeMissingColumn = "MISSING_COLUMN" // a required column is absent
	CodeMalformedRow  = "MALFORMED_ROW"  // CSV syntax or field-count problem
	CodeInvalidValue  = "INVALID_VALUE"  // a cell does not parse for its field
)

// DataLoadError reports why a dataset could not be loaded.
type DataLoadError struct {
	Code    string
	Source  string
	Line    int    // 1-based source line, 0 when not tied to a line
	Column  string // CSV header of the offending cell, if any
	Message string
	Err     error
}

func (e *DataLoadError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Code)
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// IsDataLoadError reports whether err is or wraps a *DataLoadError.
func IsDataLoadError(err error) bool {
	var dle *DataLoadError
	return errors.As(err, &dle)
}

// Code returns the DataLoadError code of err, or "" if err is not one.
func Code(err error) string {
	var dle *DataLoadError
	if errors.As(err, &dle) {
		return dle.Code
	}
	return ""
}
