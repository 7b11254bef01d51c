package harness

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SuiteOptions controls RunSuite.
type SuiteOptions struct {
	// Filter is a glob matched against scenario file names without
	// extension. Empty runs everything.
	Filter string

	// Update rewrites golden files instead of comparing against them.
	Update bool

	// Options are passed to every Run.
	Options []Option
}

// ScenarioOutcome is the verdict on one scenario file.
type ScenarioOutcome struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "" when absent
	Errors []string `json:"errors,omitempty"`
}

// SuiteResult contains results from running a directory of scenarios.
type SuiteResult struct {
	Scenarios []ScenarioOutcome `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Total     int               `json:"total"`
}

// FindScenarioFiles lists the .yaml and .yml files under dir, skipping
// golden directories. Paths come back in lexical order.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "golden" && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		// Apply filter if specified
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// RunSuite runs every scenario under dir.
//
// For each scenario file:
// 1. Load the scenario
// 2. Run it via Run
// 3. Compare (or with Update, rewrite) its golden file when one exists
// 4. Collect and report results
//
// Load and execution failures fail the scenario, not the suite. The
// returned error covers only an unreadable directory.
func RunSuite(ctx context.Context, dir string, opts SuiteOptions) (*SuiteResult, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("scenarios directory: %w", err)
	}

	files, err := FindScenarioFiles(dir, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find scenarios: %w", err)
	}

	result := &SuiteResult{
		Scenarios: make([]ScenarioOutcome, 0, len(files)),
		Total:     len(files),
	}

	for _, path := range files {
		outcome := runScenarioFile(ctx, path, opts)
		if outcome.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, outcome)
	}

	return result, nil
}

func runScenarioFile(ctx context.Context, path string, opts SuiteOptions) ScenarioOutcome {
	outcome := ScenarioOutcome{Name: filepath.Base(path), Path: path}

	scenario, err := LoadScenario(path)
	if err != nil {
		outcome.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return outcome
	}
	outcome.Name = scenario.Name

	result, err := Run(ctx, scenario, opts.Options...)
	if err != nil {
		outcome.Errors = []string{fmt.Sprintf("scenario execution failed: %v", err)}
		return outcome
	}
	outcome.Errors = result.Errors

	golden := GoldenPath(path)
	switch {
	case opts.Update:
		if err := UpdateGolden(golden, scenario.Name, result); err != nil {
			outcome.Errors = append(outcome.Errors, err.Error())
			return outcome
		}
		outcome.Golden = "updated"
	case fileExists(golden):
		match, err := CompareGolden(golden, scenario.Name, result)
		if err != nil {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("golden comparison failed: %v", err))
			return outcome
		}
		if !match {
			outcome.Errors = append(outcome.Errors, "result does not match golden file (run with --update to regenerate)")
			return outcome
		}
		outcome.Golden = "match"
	}

	outcome.Pass = result.Pass
	return outcome
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
