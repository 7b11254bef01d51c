package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/launchdeck/internal/engine"
)

// valueTolerance absorbs float noise in averages and rates.
const valueTolerance = 1e-9

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Step     string // Step the assertion inspected
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Step != "" {
		fmt.Fprintf(&buf, " (step %s)", e.Step)
	}
	buf.WriteString("\n")

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)

	return buf.String()
}

// stepFor fetches the step an assertion inspects. A rejected query fails
// every assertion on it.
func stepFor(result *Result, a Assertion) (StepResult, error) {
	sr, ok := result.Step(a.Step)
	if !ok {
		return StepResult{}, &AssertionError{
			Type:     a.Type,
			Step:     a.Step,
			Expected: "step to exist",
			Actual:   "no such step",
		}
	}
	if sr.Error != "" {
		return StepResult{}, &AssertionError{
			Type:     a.Type,
			Step:     a.Step,
			Expected: "a successful query",
			Actual:   sr.ErrorMessage,
		}
	}
	return sr, nil
}

// assertRowSeqs checks the step returned exactly the expected records, in
// order.
func assertRowSeqs(result *Result, a Assertion) error {
	sr, err := stepFor(result, a)
	if err != nil {
		return err
	}
	if sr.Kind != engine.ResultRows {
		return &AssertionError{Type: a.Type, Step: a.Step, Expected: "a row result", Actual: string(sr.Kind) + " result"}
	}
	got := sr.Seqs
	if got == nil {
		got = []int{}
	}
	if !slices.Equal(got, a.Seqs) {
		return &AssertionError{
			Type:     a.Type,
			Step:     a.Step,
			Expected: fmt.Sprintf("seqs %v", a.Seqs),
			Actual:   fmt.Sprintf("seqs %v", got),
		}
	}
	return nil
}

// assertGroupOrder checks the step's group keys, in order.
func assertGroupOrder(result *Result, a Assertion) error {
	sr, err := stepFor(result, a)
	if err != nil {
		return err
	}
	if sr.Kind != engine.ResultGroups {
		return &AssertionError{Type: a.Type, Step: a.Step, Expected: "a group result", Actual: string(sr.Kind) + " result"}
	}
	keys := groupKeys(sr.Groups)
	if !slices.Equal(keys, a.Keys) {
		return &AssertionError{
			Type:     a.Type,
			Step:     a.Step,
			Expected: fmt.Sprintf("keys %q", a.Keys),
			Actual:   fmt.Sprintf("keys %q", keys),
		}
	}
	return nil
}

// assertGroupValue checks one group's count and statistic.
func assertGroupValue(result *Result, a Assertion) error {
	sr, err := stepFor(result, a)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(sr.Groups, func(g engine.Group) bool { return g.Key == *a.Key })
	if idx < 0 {
		return &AssertionError{
			Type:     a.Type,
			Step:     a.Step,
			Expected: fmt.Sprintf("group %q", *a.Key),
			Actual:   fmt.Sprintf("groups %q", groupKeys(sr.Groups)),
		}
	}
	g := sr.Groups[idx]

	if a.Count != nil && g.Count != *a.Count {
		return &AssertionError{
			Type:     a.Type,
			Step:     a.Step,
			Expected: fmt.Sprintf("group %q count %d", g.Key, *a.Count),
			Actual:   fmt.Sprintf("count %d", g.Count),
		}
	}

	if !a.Value.IsZero() {
		want, err := expectedValue(&a.Value)
		if err != nil {
			return err
		}
		if !valuesEqual(want, g.Value) {
			return &AssertionError{
				Type:     a.Type,
				Step:     a.Step,
				Expected: fmt.Sprintf("group %q value %s", g.Key, describeValue(want)),
				Actual:   fmt.Sprintf("value %s", describeValue(g.Value)),
			}
		}
	}
	return nil
}

// assertSameHash checks that every listed step normalized to one query.
func assertSameHash(result *Result, a Assertion) error {
	var first StepResult
	for i, name := range a.Steps {
		sr, err := stepFor(result, Assertion{Type: a.Type, Step: name})
		if err != nil {
			return err
		}
		if i == 0 {
			first = sr
			continue
		}
		if sr.QueryHash != first.QueryHash {
			return &AssertionError{
				Type:     a.Type,
				Step:     name,
				Expected: fmt.Sprintf("hash of %s (%s)", first.Name, engine.ShortHash(first.QueryHash)),
				Actual:   engine.ShortHash(sr.QueryHash),
			}
		}
	}
	return nil
}

// expectedValue decodes a YAML number or null.
func expectedValue(n *yaml.Node) (engine.Value, error) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		return engine.Value{}, nil
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return engine.Value{}, fmt.Errorf("value must be a number or null: %w", err)
	}
	return engine.Number(f), nil
}

func valuesEqual(want, got engine.Value) bool {
	if want.Valid != got.Valid {
		return false
	}
	return !want.Valid || math.Abs(want.Number-got.Number) <= valueTolerance
}

func describeValue(v engine.Value) string {
	if !v.Valid {
		return "null"
	}
	return v.String()
}

func groupKeys(groups []engine.Group) []string {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRowSeqs:
			err = assertRowSeqs(result, assertion)
		case AssertGroupOrder:
			err = assertGroupOrder(result, assertion)
		case AssertGroupValue:
			err = assertGroupValue(result, assertion)
		case AssertSameHash:
			err = assertSameHash(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
