package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/launchdeck/internal/analytics"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard summary",
		Long: `Show every dashboard panel at once: mission and company totals, outcome
counts, the busiest companies with their success rates, the most used
rocket and launches per year.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			if !cmd.Flags().Changed("top") {
				top = rootOpts.Config.Query.DefaultTop
			}
			return runSummary(rootOpts, top, cmd)
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "number of companies to rank (default query.default_top)")

	return cmd
}

func runSummary(opts *RootOptions, top int, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	return opts.withSession(cmd, out, func(ctx context.Context, s *session) error {
		summary, err := s.analytics().Summary(ctx, top)
		if err != nil {
			return out.Fail(err)
		}
		if out.Format == "json" {
			return out.Success(summary)
		}
		return writeSummary(out.Writer, summary)
	})
}

func writeSummary(w io.Writer, s *analytics.Summary) error {
	fmt.Fprintf(w, "Missions: %d from %d companies\n", s.Missions, s.Companies)
	if s.Missions == 0 {
		return nil
	}
	fmt.Fprintf(w, "Years: %d-%d, %s missions per year\n", s.FirstYear, s.LastYear, formatFloat(s.AveragePerYear))
	if s.MostUsedRocket != nil {
		fmt.Fprintf(w, "Most used rocket: %s (%d missions)\n", s.MostUsedRocket.Rocket, s.MostUsedRocket.Missions)
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tMISSIONS")
	for _, sc := range s.Statuses {
		fmt.Fprintf(tw, "%s\t%d\n", sc.Status, sc.Missions)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPANY\tMISSIONS\tSUCCESS")
	for _, d := range s.TopSuccessRates {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", d.Company, d.Missions, formatRate(d.SuccessRate))
	}
	return tw.Flush()
}
