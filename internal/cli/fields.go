package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/launchdeck/internal/mission"
)

// FieldInfo describes one queryable field.
type FieldInfo struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Column   string   `json:"column,omitempty"`
	Required bool     `json:"required"`
	Aliases  []string `json:"aliases,omitempty"`
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List queryable fields",
		Long: `List every field queries can name, with its type, source column
and accepted aliases. Derived fields have no column.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			return runFields(rootOpts.formatter(cmd))
		},
	}
}

func runFields(out *OutputFormatter) error {
	registry := mission.Fields()
	infos := make([]FieldInfo, len(registry))
	for i, f := range registry {
		infos[i] = FieldInfo{
			Name:     f.Name,
			Kind:     f.Kind.String(),
			Column:   f.Column,
			Required: f.Required,
			Aliases:  f.Aliases,
		}
	}

	if out.Format == "json" {
		return out.Success(infos)
	}

	tw := tabwriter.NewWriter(out.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tKIND\tCOLUMN\tALIASES")
	for _, fi := range infos {
		column := fi.Column
		if column == "" {
			column = "(derived)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", fi.Name, fi.Kind, column, strings.Join(fi.Aliases, ", "))
	}
	return tw.Flush()
}
