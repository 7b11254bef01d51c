package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/launchdeck/internal/mission"
)

// InvalidFieldError reports a query that names a field the dataset does
// not have. The query is rejected before any record is examined.
type InvalidFieldError struct {
	// Field is the name as written in the query.
	Field string

	// Known lists the canonical field names, for the user-visible message.
	Known []string
}

// Error implements the error interface.
func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("unknown field %q (known fields: %s)", e.Field, strings.Join(e.Known, ", "))
}

// NewInvalidFieldError creates an InvalidFieldError listing every known field.
func NewInvalidFieldError(field string) *InvalidFieldError {
	return &InvalidFieldError{Field: field, Known: mission.FieldNames()}
}

// IsInvalidFieldError returns true if err is or wraps an InvalidFieldError.
func IsInvalidFieldError(err error) bool {
	var fe *InvalidFieldError
	return errors.As(err, &fe)
}

// QueryError represents a query that names valid fields but cannot be
// answered as written.
type QueryError struct {
	// Code identifies the error category.
	Code QueryErrorCode

	// Field is the canonical field involved, if any.
	Field string

	// Message is a human-readable description.
	Message string
}

// QueryErrorCode categorizes query errors.
type QueryErrorCode string

const (
	// ErrCodeInvalidValue indicates a literal that does not parse as the
	// field's kind, e.g. date = "last tuesday".
	ErrCodeInvalidValue QueryErrorCode = "INVALID_VALUE"

	// ErrCodeInvalidOperator indicates an operator the field's kind does
	// not support, e.g. ordering on status.
	ErrCodeInvalidOperator QueryErrorCode = "INVALID_OPERATOR"

	// ErrCodeInvalidQuery indicates a malformed query shape: unknown
	// statistic or sort, missing or non-numeric stat field, nil operand.
	ErrCodeInvalidQuery QueryErrorCode = "INVALID_QUERY"
)

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsQueryError returns true if err is or wraps a QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

// QueryErrorCodeOf returns the code of a wrapped QueryError, or "".
func QueryErrorCodeOf(err error) QueryErrorCode {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

func invalidValue(field, format string, args ...any) *QueryError {
	return &QueryError{Code: ErrCodeInvalidValue, Field: field, Message: fmt.Sprintf(format, args...)}
}

func invalidOperator(field, format string, args ...any) *QueryError {
	return &QueryError{Code: ErrCodeInvalidOperator, Field: field, Message: fmt.Sprintf(format, args...)}
}

func invalidQuery(field, format string, args ...any) *QueryError {
	return &QueryError{Code: ErrCodeInvalidQuery, Field: field, Message: fmt.Sprintf(format, args...)}
}
