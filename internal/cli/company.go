package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewCompanyCommand creates the company command.
func NewCompanyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "company <name>",
		Short: "Show one company's missions and success rate",
		Long: `Show the number of missions a company launched and the fraction that
succeeded. Names match exactly; an unknown company has no missions.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			return runCompany(rootOpts, args[0], cmd)
		},
	}
}

func runCompany(opts *RootOptions, company string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	return opts.withSession(cmd, out, func(ctx context.Context, s *session) error {
		detail, err := s.analytics().CompanyDetails(ctx, company)
		if err != nil {
			return out.Fail(err)
		}
		if out.Format == "json" {
			return out.Success(detail)
		}
		fmt.Fprintf(out.Writer, "%s: %d missions, %s success\n",
			detail.Company, detail.Missions, formatRate(detail.SuccessRate))
		return nil
	})
}
