package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/launchdeck/internal/engine"
	"github.com/roach88/launchdeck/internal/queryir"
	"github.com/roach88/launchdeck/internal/store"
)

// Scenario defines a query test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dataset is the CSV file to load.
	// Relative paths are resolved against the scenario file's directory.
	Dataset string `yaml:"dataset"`

	// Queries is an optional query document (.cue, .yaml) whose queries
	// steps may run by name.
	Queries string `yaml:"queries,omitempty"`

	// Backends lists the backends to run on. Empty means memory and sqlite.
	Backends []string `yaml:"backends,omitempty"`

	// Steps are the queries to run, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the step results after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one query of a scenario.
type Step struct {
	// Name identifies the step in assertions and snapshots.
	Name string `yaml:"name"`

	// Query names a query in the scenario's query document.
	Query string `yaml:"query,omitempty"`

	// Inline query, used when Query is empty.
	queryir.Request `yaml:",inline"`

	// Expect specifies expected result properties.
	// If nil, the step only has to succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected step outcome. Unset fields are not
// checked.
type ExpectClause struct {
	// Error is the expected error kind (see ErrorKind). When set the query
	// must fail.
	Error string `yaml:"error,omitempty"`

	// Total is the expected match count (Select) or group count (Aggregate).
	Total *int `yaml:"total,omitempty"`

	// Rows is the expected number of returned rows or groups after Limit.
	Rows *int `yaml:"rows,omitempty"`
}

// Assertion validates step results.
type Assertion struct {
	// Type specifies the assertion type:
	// - "row_seqs": Check the step returned these record positions
	// - "group_order": Check the step's group keys in order
	// - "group_value": Check one group's count or value
	// - "same_hash": Check the steps normalized to one query
	Type string `yaml:"type"`

	// Step is the step checked (all types except same_hash).
	Step string `yaml:"step,omitempty"`

	// Seqs are the expected record positions (row_seqs).
	Seqs []int `yaml:"seqs,omitempty"`

	// Keys are the expected group keys (group_order).
	Keys []string `yaml:"keys,omitempty"`

	// Key selects the group (group_value).
	Key *string `yaml:"key,omitempty"`

	// Count is the expected group size (group_value).
	Count *int `yaml:"count,omitempty"`

	// Value is the expected statistic (group_value). Use null for a
	// missing value.
	Value yaml.Node `yaml:"value,omitempty"`

	// Steps are the steps compared (same_hash).
	Steps []string `yaml:"steps,omitempty"`
}

// Assertion type constants.
const (
	AssertRowSeqs    = "row_seqs"
	AssertGroupOrder = "group_order"
	AssertGroupValue = "group_value"
	AssertSameHash   = "same_hash"
)

// Backend names accepted in scenarios.
var knownBackends = []string{engine.BackendMemory, store.BackendSQLite}

// LoadScenario reads and parses a scenario YAML file, resolving the
// dataset and query document paths against the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving relative dataset and query document paths against basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve paths BEFORE validation
	scenario.Dataset = resolve(basePath, scenario.Dataset)
	scenario.Queries = resolve(basePath, scenario.Queries)

	if err := checkFiles(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes and validates a scenario without touching the
// file system.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(scenario.Backends) == 0 {
		scenario.Backends = slices.Clone(knownBackends)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

func checkFiles(s *Scenario) error {
	if _, err := os.Stat(s.Dataset); os.IsNotExist(err) {
		return fmt.Errorf("dataset file not found: %s", s.Dataset)
	}
	if s.Queries != "" {
		if _, err := os.Stat(s.Queries); os.IsNotExist(err) {
			return fmt.Errorf("query document not found: %s", s.Queries)
		}
	}
	return nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Backends))
	for i, b := range s.Backends {
		if !slices.Contains(knownBackends, b) {
			return fmt.Errorf("backends[%d]: unknown backend %q", i, b)
		}
		if seen[b] {
			return fmt.Errorf("backends[%d]: duplicate backend %q", i, b)
		}
		seen[b] = true
	}

	names := make(map[string]bool, len(s.Steps))
	for i, step := range s.Steps {
		if step.Name == "" {
			return fmt.Errorf("steps[%d]: name is required", i)
		}
		if names[step.Name] {
			return fmt.Errorf("steps[%d]: duplicate step name %q", i, step.Name)
		}
		names[step.Name] = true

		if step.Query != "" {
			if s.Queries == "" {
				return fmt.Errorf("steps[%d]: query %q needs a queries document", i, step.Query)
			}
			if len(step.Where) > 0 || step.IsAggregate() || step.Limit != 0 {
				return fmt.Errorf("steps[%d]: query cannot be combined with an inline query", i)
			}
		}

		if step.Expect != nil && step.Expect.Error != "" {
			if !slices.Contains(ErrorKinds(), step.Expect.Error) {
				return fmt.Errorf("steps[%d].expect: unknown error kind %q", i, step.Expect.Error)
			}
			if step.Expect.Total != nil || step.Expect.Rows != nil {
				return fmt.Errorf("steps[%d].expect: error cannot be combined with total or rows", i)
			}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], names); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Type != AssertSameHash {
		if a.Step == "" {
			return fmt.Errorf("assertions[%d]: step is required for %s", index, a.Type)
		}
		if !steps[a.Step] {
			return fmt.Errorf("assertions[%d]: unknown step %q", index, a.Step)
		}
	}

	switch a.Type {
	case AssertRowSeqs:
		if a.Seqs == nil {
			return fmt.Errorf("assertions[%d]: seqs is required for row_seqs", index)
		}
	case AssertGroupOrder:
		if a.Keys == nil {
			return fmt.Errorf("assertions[%d]: keys is required for group_order", index)
		}
	case AssertGroupValue:
		if a.Key == nil {
			return fmt.Errorf("assertions[%d]: key is required for group_value", index)
		}
		if a.Count == nil && a.Value.IsZero() {
			return fmt.Errorf("assertions[%d]: count or value is required for group_value", index)
		}
		if !a.Value.IsZero() {
			if _, err := expectedValue(&a.Value); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertSameHash:
		if len(a.Steps) < 2 {
			return fmt.Errorf("assertions[%d]: same_hash needs at least two steps", index)
		}
		for _, name := range a.Steps {
			if !steps[name] {
				return fmt.Errorf("assertions[%d]: unknown step %q", index, name)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
