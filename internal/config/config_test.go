package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendMemory, cfg.Backend.Kind)
	assert.Equal(t, 3, cfg.Query.DefaultTop)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
dataset:
  path: /data/missions.csv
backend:
  kind: sqlite
  sqlite_path: /tmp/mirror.db
log:
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "/data/missions.csv", cfg.Dataset.Path)
	assert.Equal(t, BackendSQLite, cfg.Backend.Kind)
	assert.Equal(t, "/tmp/mirror.db", cfg.Backend.SQLitePath)
	assert.Equal(t, "json", cfg.Log.Format)

	// Untouched sections keep defaults
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Query.DefaultTop)
	assert.Equal(t, "queries", cfg.Query.Dir)
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		message string
	}{
		{
			name:    "unknown key",
			yaml:    "dataset:\n  file: x.csv\n",
			message: "field file not found",
		},
		{
			name:    "unknown section",
			yaml:    "server:\n  port: 80\n",
			message: "field server not found",
		},
		{
			name:    "bad backend",
			yaml:    "backend:\n  kind: postgres\n",
			message: `backend.kind: "postgres" is not one of [memory sqlite]`,
		},
		{
			name:    "sqlite without path",
			yaml:    "backend:\n  kind: sqlite\n  sqlite_path: \"\"\n",
			message: "backend.sqlite_path: is required",
		},
		{
			name:    "empty dataset path",
			yaml:    "dataset:\n  path: \"\"\n",
			message: "dataset.path: is required",
		},
		{
			name:    "top too small",
			yaml:    "query:\n  default_top: 0\n",
			message: "query.default_top: must be at least 1",
		},
		{
			name:    "top too large",
			yaml:    "query:\n  default_top: 5000\n",
			message: "query.default_top: must be at most 1000",
		},
		{
			name:    "bad log level",
			yaml:    "log:\n  level: trace\n",
			message: `log.level: "trace" is not one of [debug info warn error]`,
		},
		{
			name:    "malformed yaml",
			yaml:    "dataset: [\n",
			message: "parse config",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	cfg := Default()
	cfg.Backend.Kind = "oracle"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.kind")
	assert.Contains(t, err.Error(), "log.format")
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "query:\n  default_top: 10\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Query.DefaultTop)
}

func TestLoadErrorNamesFile(t *testing.T) {
	path := writeConfig(t, "bogus: 1\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "Load requires the file")

	path := writeConfig(t, "log:\n  level: nope\n")
	_, err = LoadOrDefault(path)
	assert.Error(t, err, "an existing invalid file is not replaced by defaults")
}

func TestSlogLevel(t *testing.T) {
	testCases := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, LogConfig{Level: tc.level}.SlogLevel(), tc.level)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf, false)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "v", entry["k"])

	buf.Reset()
	verbose := LogConfig{Level: "error", Format: "text"}.NewLogger(&buf, true)
	verbose.Debug("detail")
	assert.Contains(t, buf.String(), "msg=detail")
}
