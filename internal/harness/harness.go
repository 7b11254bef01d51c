package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/roach88/launchdeck/internal/compiler"
	"github.com/roach88/launchdeck/internal/engine"
	"github.com/roach88/launchdeck/internal/loader"
	"github.com/roach88/launchdeck/internal/mission"
	"github.com/roach88/launchdeck/internal/queryir"
	"github.com/roach88/launchdeck/internal/store"
)

// Error kinds reported for rejected queries.
const (
	ErrorInvalidField    = "invalid_field"
	ErrorInvalidValue    = "invalid_value"
	ErrorInvalidOperator = "invalid_operator"
	ErrorInvalidQuery    = "invalid_query"
	ErrorOther           = "error"
)

// ErrorKinds lists the values accepted in expect.error.
func ErrorKinds() []string {
	return []string{ErrorInvalidField, ErrorInvalidValue, ErrorInvalidOperator, ErrorInvalidQuery, ErrorOther}
}

// ErrorKind classifies a query error.
func ErrorKind(err error) string {
	if engine.IsInvalidFieldError(err) {
		return ErrorInvalidField
	}
	if code := engine.QueryErrorCodeOf(err); code != "" {
		return strings.ToLower(string(code))
	}
	return ErrorOther
}

// Harness runs scenario steps against query backends.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness run.
type Option func(*Harness)

// WithLogger sets the logger for per-step debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Run executes a test scenario and returns the result.
//
// The dataset is loaded once and every step runs on each backend in
// scenario order. SQLite backends use a private in-memory database.
//
// Execution flow:
// 1. Load the dataset and query document
// 2. Build every query (document or inline)
// 3. Run each query on every backend
// 4. Compare backends, then check expectations and assertions
//
// A returned error means the scenario could not run; a failing scenario
// returns a Result with Pass false.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		opt(h)
	}

	ds, err := loader.LoadFile(scenario.Dataset, loader.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	queries, err := h.buildQueries(scenario)
	if err != nil {
		return nil, err
	}

	var runs [][]StepResult
	for _, name := range scenario.Backends {
		steps, err := h.runBackend(ctx, name, ds, scenario.Steps, queries)
		if err != nil {
			return nil, fmt.Errorf("backend %s: %w", name, err)
		}
		runs = append(runs, steps)
	}

	result := NewResult(scenario.Backends[0])
	result.Steps = runs[0]

	for i := 1; i < len(runs); i++ {
		for _, msg := range compareRuns(scenario.Backends[0], runs[0], scenario.Backends[i], runs[i]) {
			result.AddError(msg)
		}
	}

	for i, step := range scenario.Steps {
		for _, msg := range checkExpect(step, result.Steps[i]) {
			result.AddError(msg)
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"steps", len(scenario.Steps),
		"backends", len(scenario.Backends),
		"pass", result.Pass,
	)
	return result, nil
}

// buildQueries turns every step into a query. Document queries are looked
// up by name; inline queries are parsed from the step's Request.
func (h *Harness) buildQueries(s *Scenario) ([]queryir.Query, error) {
	var named []compiler.NamedQuery
	if s.Queries != "" {
		var err error
		named, err = compiler.LoadFile(s.Queries)
		if err != nil {
			return nil, fmt.Errorf("failed to load queries: %w", err)
		}
	}

	out := make([]queryir.Query, len(s.Steps))
	for i, step := range s.Steps {
		if step.Query != "" {
			nq, ok := compiler.Find(named, step.Query)
			if !ok {
				return nil, fmt.Errorf("step %q: query %q not found in %s", step.Name, step.Query, s.Queries)
			}
			out[i] = nq.Query
			continue
		}
		q, err := step.Build()
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", step.Name, err)
		}
		out[i] = q
	}
	return out, nil
}

// runBackend runs every query on one backend. Query rejections are part of
// the step result; only infrastructure failures abort the run.
func (h *Harness) runBackend(ctx context.Context, name string, ds *mission.Dataset, steps []Step, queries []queryir.Query) ([]StepResult, error) {
	var backend engine.Backend
	switch name {
	case engine.BackendMemory:
		backend = engine.New(ds, engine.WithLogger(h.logger))
	case store.BackendSQLite:
		st, err := store.Open(":memory:", store.WithLogger(h.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
		if err := st.Import(ctx, ds); err != nil {
			return nil, fmt.Errorf("failed to import dataset: %w", err)
		}
		backend = st
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}

	results := make([]StepResult, 0, len(steps))
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rs, err := backend.Execute(ctx, queries[i])
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		sr := stepResult(step.Name, rs, err)
		results = append(results, sr)

		h.logger.Debug("step completed",
			"backend", name,
			"step", step.Name,
			"kind", sr.Kind,
			"total", sr.Total,
			"error", sr.Error,
		)
	}
	return results, nil
}

func stepResult(name string, rs *engine.ResultSet, err error) StepResult {
	if err != nil {
		return StepResult{Name: name, Error: ErrorKind(err), ErrorMessage: err.Error()}
	}
	sr := StepResult{
		Name:      name,
		Kind:      rs.Kind,
		QueryHash: rs.QueryHash,
		Total:     rs.Total,
		Groups:    rs.Groups,
	}
	if rs.Kind == engine.ResultRows {
		sr.Seqs = make([]int, len(rs.Rows))
		for i, r := range rs.Rows {
			sr.Seqs[i] = r.Seq
		}
	}
	return sr
}

// compareRuns reports every step on which two backends disagree.
func compareRuns(baseName string, base []StepResult, otherName string, other []StepResult) []string {
	var msgs []string
	for i := range base {
		if !reflect.DeepEqual(base[i], other[i]) {
			msgs = append(msgs, fmt.Sprintf("step %q: backend %s disagrees with %s: %s",
				base[i].Name, otherName, baseName, describeDiff(base[i], other[i])))
		}
	}
	return msgs
}

func describeDiff(a, b StepResult) string {
	switch {
	case a.Error != b.Error || a.ErrorMessage != b.ErrorMessage:
		return fmt.Sprintf("error %q vs %q", a.ErrorMessage, b.ErrorMessage)
	case a.QueryHash != b.QueryHash:
		return fmt.Sprintf("query hash %s vs %s", engine.ShortHash(a.QueryHash), engine.ShortHash(b.QueryHash))
	case a.Total != b.Total:
		return fmt.Sprintf("total %d vs %d", a.Total, b.Total)
	case !reflect.DeepEqual(a.Seqs, b.Seqs):
		return fmt.Sprintf("rows %v vs %v", a.Seqs, b.Seqs)
	default:
		return fmt.Sprintf("groups %v vs %v", a.Groups, b.Groups)
	}
}

// checkExpect validates one step against its expect clause.
func checkExpect(step Step, sr StepResult) []string {
	exp := step.Expect
	if exp == nil {
		if sr.Error != "" {
			return []string{fmt.Sprintf("step %q: unexpected error: %s", step.Name, sr.ErrorMessage)}
		}
		return nil
	}

	if exp.Error != "" {
		switch {
		case sr.Error == "":
			return []string{fmt.Sprintf("step %q: expected %s error, query succeeded", step.Name, exp.Error)}
		case sr.Error != exp.Error:
			return []string{fmt.Sprintf("step %q: expected %s error, got %s: %s", step.Name, exp.Error, sr.Error, sr.ErrorMessage)}
		}
		return nil
	}

	if sr.Error != "" {
		return []string{fmt.Sprintf("step %q: unexpected error: %s", step.Name, sr.ErrorMessage)}
	}

	var msgs []string
	if exp.Total != nil && *exp.Total != sr.Total {
		msgs = append(msgs, fmt.Sprintf("step %q: expected total %d, got %d", step.Name, *exp.Total, sr.Total))
	}
	if exp.Rows != nil {
		rows := len(sr.Seqs)
		if sr.Kind == engine.ResultGroups {
			rows = len(sr.Groups)
		}
		if *exp.Rows != rows {
			msgs = append(msgs, fmt.Sprintf("step %q: expected %d rows, got %d", step.Name, *exp.Rows, rows))
		}
	}
	return msgs
}
