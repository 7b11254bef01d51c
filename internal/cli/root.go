package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/launchdeck/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string // --config; empty tries launchdeck.yaml
	DataPath   string // --data overrides dataset.path
	Backend    string // --backend overrides backend.kind
	DBPath     string // --db overrides backend.sqlite_path
	Metrics    bool   // --metrics dumps query metrics to stderr

	// RunIDs generates the trace_id of each response. Tests pin it.
	RunIDs RunIDGenerator

	// Resolved by prepare.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the launchdeck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "launchdeck",
		Short: "launchdeck - space mission launch records",
		Long: `Query and summarize the space missions dataset.

Filters and aggregates run in memory or against a SQLite mirror of the
dataset. Settings come from launchdeck.yaml; flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare(cmd)
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default launchdeck.yaml if present)")
	flags.StringVar(&opts.DataPath, "data", "", "dataset CSV (overrides dataset.path)")
	flags.StringVar(&opts.Backend, "backend", "", "query backend: memory|sqlite (overrides backend.kind)")
	flags.StringVar(&opts.DBPath, "db", "", "SQLite mirror path (overrides backend.sqlite_path)")
	flags.BoolVar(&opts.Metrics, "metrics", false, "print query metrics to stderr on exit")

	// Add subcommands
	cmd.AddCommand(NewFieldsCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewCompanyCommand(opts))
	cmd.AddCommand(NewRangeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// prepare validates global flags, loads the config and builds the logger.
// Commands call it too, so they work when run without the root command.
func (o *RootOptions) prepare(cmd *cobra.Command) error {
	if o.Config != nil {
		return nil
	}

	if o.Format == "" {
		o.Format = "text"
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	var (
		cfg *config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.Load(o.ConfigPath)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultPath)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeConfig, err)
	}

	if o.DataPath != "" {
		cfg.Dataset.Path = o.DataPath
	}
	if o.Backend != "" {
		cfg.Backend.Kind = o.Backend
	}
	if o.DBPath != "" {
		cfg.Backend.SQLitePath = o.DBPath
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeConfig, err)
	}

	if o.RunIDs == nil {
		o.RunIDs = UUIDv7Generator{}
	}
	o.Config = cfg
	o.Logger = cfg.Log.NewLogger(cmd.ErrOrStderr(), o.Verbose)
	return nil
}

// formatter creates the output formatter for one command run, stamped
// with a fresh run ID.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
		TraceID:   o.RunIDs.Generate(),
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
