// Package config loads launchdeck.yaml: where the dataset lives, which
// backend answers queries, and how the CLI logs.
//
// Decoding is strict: unknown keys are errors, so a typo never silently
// falls back to a default. Command-line flags override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "launchdeck.yaml"

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the parsed configuration file.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset"`
	Backend BackendConfig `yaml:"backend"`
	Query   QueryConfig   `yaml:"query"`
	Log     LogConfig     `yaml:"log"`
}

// DatasetConfig locates the source CSV.
type DatasetConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// BackendConfig selects the query backend.
type BackendConfig struct {
	Kind string `yaml:"kind" validate:"oneof=memory sqlite"`

	// SQLitePath is the mirror database; ":memory:" keeps it private to
	// the process. A file mirror is reused while the dataset fingerprint
	// is unchanged.
	SQLitePath string `yaml:"sqlite_path" validate:"required_if=Kind sqlite"`
}

// QueryConfig holds query defaults.
type QueryConfig struct {
	// DefaultTop is the number of companies in summaries.
	DefaultTop int `yaml:"default_top" validate:"gte=1,lte=1000"`

	// Dir holds query documents (.cue, .yaml) for `query --name`.
	Dir string `yaml:"dir"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their YAML keys
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{Path: "data/space_missions.csv"},
		Backend: BackendConfig{Kind: BackendMemory, SQLitePath: ":memory:"},
		Query:   QueryConfig{DefaultTop: 3, Dir: "queries"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads and validates the config at path. Keys missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and returns Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints and reports all
// violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// describe renders one violation as "section.key: problem".
func describe(fe validator.FieldError) string {
	// Namespace is "Config.backend.kind"; drop the root type
	_, field, _ := strings.Cut(fe.Namespace(), ".")

	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s: is required", field)
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of [%s]", field, fe.Value(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s: must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s: must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s", field, fe.Tag())
	}
}

// SlogLevel maps the configured level to slog.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the CLI logger writing to w. verbose forces debug level.
func (c LogConfig) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
