package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/launchdeck/internal/ir"
)

// Snapshot captures the outcome of a scenario for golden comparison.
// Query hashes are left out so that snapshots survive hash domain changes;
// same_hash assertions cover them.
type Snapshot struct {
	ScenarioName string
	Steps        []StepResult
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. Statistics are rendered as text because canonical JSON
// carries no floats; a missing statistic is omitted.
func (s *Snapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Steps))
	for i, step := range s.Steps {
		m := map[string]any{
			"name": step.Name,
		}
		if step.Error != "" {
			m["error"] = step.Error
			steps[i] = m
			continue
		}
		m["kind"] = string(step.Kind)
		m["total"] = step.Total
		if step.Seqs != nil {
			seqs := make([]any, len(step.Seqs))
			for j, seq := range step.Seqs {
				seqs[j] = seq
			}
			m["seqs"] = seqs
		}
		if step.Groups != nil {
			groups := make([]any, len(step.Groups))
			for j, g := range step.Groups {
				gm := map[string]any{
					"key":   g.Key,
					"count": g.Count,
				}
				if g.Value.Valid {
					gm["value"] = g.Value.String()
				}
				groups[j] = gm
			}
			m["groups"] = groups
		}
		steps[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"steps":         steps,
	}
}

// SnapshotJSON renders the canonical golden form of a result.
func SnapshotJSON(scenarioName string, result *Result) ([]byte, error) {
	snapshot := Snapshot{ScenarioName: scenarioName, Steps: result.Steps}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// GoldenPath returns the golden file of a scenario file:
// <dir>/golden/<base>.golden.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := base[:len(base)-len(filepath.Ext(base))]
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGolden writes the snapshot of result to path.
func UpdateGolden(path, scenarioName string, result *Result) error {
	data, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the snapshot of result matches the golden
// file at path.
func CompareGolden(path, scenarioName string, result *Result) (bool, error) {
	golden, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	current, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return false, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return bytes.Equal(bytes.TrimSpace(golden), current), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
