package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/launchdeck/internal/analytics"
)

// RangeResult is the JSON payload of the range command. Dates fill
// Missions; years fill PerYear and Average.
type RangeResult struct {
	Start    string                `json:"start"`
	End      string                `json:"end"`
	Missions []string              `json:"missions,omitempty"`
	PerYear  []analytics.YearCount `json:"per_year,omitempty"`
	Average  *float64              `json:"average,omitempty"`
}

// NewRangeCommand creates the range command.
func NewRangeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "range <start> <end>",
		Short: "List missions between two dates or count them per year",
		Long: `With two dates (YYYY-MM-DD), list the missions launched between them,
inclusive, in launch order.

With two years, count the missions of each year and the average per year.
A reversed range is empty.

Examples:
  launchdeck range 1957-10-01 1957-12-31
  launchdeck range 1957 1960`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			return runRange(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runRange(opts *RootOptions, start, end string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	startYear, startErr := strconv.Atoi(start)
	endYear, endErr := strconv.Atoi(end)
	byYear := startErr == nil && endErr == nil

	return opts.withSession(cmd, out, func(ctx context.Context, s *session) error {
		a := s.analytics()
		result := RangeResult{Start: start, End: end}

		if !byYear {
			missions, err := a.MissionsInRange(ctx, start, end)
			if err != nil {
				return out.FailCode(ErrCodeQuery, err)
			}
			result.Missions = missions
			if out.Format == "json" {
				return out.Success(result)
			}
			for _, m := range missions {
				fmt.Fprintln(out.Writer, m)
			}
			fmt.Fprintf(out.Writer, "(%d missions)\n", len(missions))
			return nil
		}

		for y := startYear; y <= endYear; y++ {
			n, err := a.MissionsInYear(ctx, y)
			if err != nil {
				return out.Fail(err)
			}
			result.PerYear = append(result.PerYear, analytics.YearCount{Year: y, Missions: n})
		}
		avg, err := a.AverageMissionsPerYear(ctx, startYear, endYear)
		if err != nil {
			return out.Fail(err)
		}
		result.Average = &avg

		if out.Format == "json" {
			return out.Success(result)
		}
		for _, yc := range result.PerYear {
			fmt.Fprintf(out.Writer, "%d\t%d\n", yc.Year, yc.Missions)
		}
		fmt.Fprintf(out.Writer, "average: %s per year\n", formatFloat(avg))
		return nil
	})
}
