package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/launchdeck/internal/engine"
	"github.com/roach88/launchdeck/internal/queryir"
)

// Validation codes (E120-E129 errors, W120-W129 warnings)
const (
	ErrUnknownField    = "E120" // field not in the registry
	ErrInvalidValue    = "E121" // literal does not fit the field
	ErrInvalidOperator = "E122" // operator undefined on the field's kind
	ErrInvalidQuery    = "E123" // malformed query shape
	ErrDuplicateQuery  = "E124" // query name defined twice

	WarnSuspicious = "W120" // valid but probably not what was meant
)

// ValidationError represents a problem with one named query.
type ValidationError struct {
	Query   string `json:"query"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	prefix := fmt.Sprintf("[%s] %s", e.Code, e.Query)
	if e.Line > 0 {
		prefix = fmt.Sprintf("[%s] line %d: %s", e.Code, e.Line, e.Query)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// IsWarning reports whether the problem does not stop the query from running.
func (e ValidationError) IsWarning() bool {
	return e.Code == WarnSuspicious
}

// Validate checks compiled queries against the field registry without
// running them. Returns all problems found (does not fail-fast), warnings
// included.
func Validate(queries []NamedQuery) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for _, nq := range queries {
		line := 0
		if nq.Pos.IsValid() {
			line = nq.Pos.Line()
		}

		// E124: duplicate name
		if seen[nq.Name] {
			errs = append(errs, ValidationError{
				Query:   nq.Name,
				Message: "duplicate query name",
				Code:    ErrDuplicateQuery,
				Line:    line,
			})
		}
		seen[nq.Name] = true

		if _, err := engine.Normalize(nq.Query); err != nil {
			ve := fromQueryError(err)
			ve.Query, ve.Line = nq.Name, line
			errs = append(errs, ve)
			continue
		}

		// W120: warnings only for queries that would run
		if res := queryir.Validate(nq.Query); !res.Clean {
			for _, w := range res.Warnings {
				errs = append(errs, ValidationError{
					Query:   nq.Name,
					Message: w,
					Code:    WarnSuspicious,
					Line:    line,
				})
			}
		}
	}

	return errs
}

// HasErrors reports whether any problem is more than a warning.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if !e.IsWarning() {
			return true
		}
	}
	return false
}

func fromQueryError(err error) ValidationError {
	var fieldErr *engine.InvalidFieldError
	if errors.As(err, &fieldErr) {
		return ValidationError{Field: fieldErr.Field, Message: err.Error(), Code: ErrUnknownField}
	}

	var qe *engine.QueryError
	if errors.As(err, &qe) {
		ve := ValidationError{Field: qe.Field, Message: qe.Message}
		switch qe.Code {
		case engine.ErrCodeInvalidValue:
			ve.Code = ErrInvalidValue
		case engine.ErrCodeInvalidOperator:
			ve.Code = ErrInvalidOperator
		default:
			ve.Code = ErrInvalidQuery
		}
		return ve
	}

	return ValidationError{Message: err.Error(), Code: ErrInvalidQuery}
}
