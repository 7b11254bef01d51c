package harness

import (
	"github.com/roach88/launchdeck/internal/engine"
)

// StepResult is what one step produced on one backend.
type StepResult struct {
	Name      string            `json:"name"`
	Kind      engine.ResultKind `json:"kind,omitempty"`
	QueryHash string            `json:"query_hash,omitempty"`
	Total     int               `json:"total"`

	// Seqs lists the returned record positions (Select only).
	Seqs []int `json:"seqs,omitempty"`

	// Groups holds the aggregate result.
	Groups []engine.Group `json:"groups,omitempty"`

	// Error is the error kind (see ErrorKind) and ErrorMessage its text,
	// when the query was rejected.
	Error        string `json:"error,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation, assertion and backend
	// comparison held.
	Pass bool `json:"pass"`

	// Backend names the backend whose results Steps holds.
	Backend string `json:"backend"`

	// Steps holds one entry per scenario step, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(backend string) *Result {
	return &Result{
		Pass:    true,
		Backend: backend,
		Steps:   []StepResult{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Step returns the result of the named step.
func (r *Result) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}
