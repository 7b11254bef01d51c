package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// copyScenarios copies the checked-in scenario directory into a temp dir.
func copyScenarios(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"missions.csv", "queries.cue", "fixture_tour.yaml"} {
		data, err := os.ReadFile(filepath.Join("testdata", "scenarios", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return dir
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := FindScenarioFiles("testdata/scenarios", "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("testdata", "scenarios", "fixture_tour.yaml")}, files)

	files, err = FindScenarioFiles("testdata/scenarios", "fixture_*")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	files, err = FindScenarioFiles("testdata/scenarios", "cart-*")
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = FindScenarioFiles("testdata/scenarios", "[")
	assert.Error(t, err)
}

func TestRunSuite(t *testing.T) {
	result, err := RunSuite(context.Background(), "testdata/scenarios", SuiteOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "fixture_tour", result.Scenarios[0].Name)
	assert.Equal(t, "match", result.Scenarios[0].Golden)
	assert.Empty(t, result.Scenarios[0].Errors)
}

func TestRunSuiteWithoutGolden(t *testing.T) {
	dir := copyScenarios(t)

	result, err := RunSuite(context.Background(), dir, SuiteOptions{})
	require.NoError(t, err)
	require.Len(t, result.Scenarios, 1)
	assert.True(t, result.Scenarios[0].Pass)
	assert.Empty(t, result.Scenarios[0].Golden)
}

func TestRunSuiteUpdate(t *testing.T) {
	dir := copyScenarios(t)

	result, err := RunSuite(context.Background(), dir, SuiteOptions{Update: true})
	require.NoError(t, err)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "updated", result.Scenarios[0].Golden)

	written, err := os.ReadFile(filepath.Join(dir, "golden", "fixture_tour.golden"))
	require.NoError(t, err)
	checkedIn, err := os.ReadFile(filepath.Join("testdata", "scenarios", "golden", "fixture_tour.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(checkedIn), string(written))

	// The next run compares against the new file
	result, err = RunSuite(context.Background(), dir, SuiteOptions{})
	require.NoError(t, err)
	assert.Equal(t, "match", result.Scenarios[0].Golden)
}

func TestRunSuiteGoldenMismatch(t *testing.T) {
	dir := copyScenarios(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "fixture_tour.golden"), []byte(`{}`), 0o644))

	result, err := RunSuite(context.Background(), dir, SuiteOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Scenarios[0].Errors[0], "does not match golden file")
}

func TestRunSuiteCountsBrokenScenarios(t *testing.T) {
	dir := copyScenarios(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0o644))

	result, err := RunSuite(context.Background(), dir, SuiteOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)

	broken := result.Scenarios[0]
	assert.Equal(t, "broken.yaml", broken.Name)
	assert.False(t, broken.Pass)
	assert.Contains(t, broken.Errors[0], "failed to load scenario")
}

func TestRunSuiteMissingDir(t *testing.T) {
	_, err := RunSuite(context.Background(), filepath.Join(t.TempDir(), "nope"), SuiteOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory")
}
