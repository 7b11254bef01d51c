package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/launchdeck/internal/compiler"
	"github.com/roach88/launchdeck/internal/engine"
	"github.com/roach88/launchdeck/internal/queryir"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	queryir.Request

	File string // query document holding the named query
	Name string // named query to run
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [condition...]",
		Short: "Filter or aggregate launch records",
		Long: `Run one query against the dataset.

Conditions are ANDed together:
  field=v  field!=v  field<v  field<=v  field>v  field>=v
  field~v       contains (case-insensitive)
  field=a|b     in
  field=lo..hi  between (inclusive)
  field=        is missing; field!= is present

Any of --group-by, --stat, --field or --sort turns the query into an
aggregate. --name runs a named query from --file, or from the documents
in query.dir when --file is not set.

Examples:
  launchdeck query company=SpaceX
  launchdeck query year=1957..1958 --limit 5
  launchdeck query --group-by company --stat sum --field price --sort value_desc
  launchdeck query --name space_race --file queries/history.cue`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Where = args
			return runQuery(opts, cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.GroupBy, "group-by", "", "field to group by")
	flags.StringVar(&opts.Stat, "stat", "", "statistic: count|sum|avg|min|max|success_rate")
	flags.StringVar(&opts.Field, "field", "", "field the statistic reads")
	flags.StringVar(&opts.Sort, "sort", "", "group order: none|value_desc|value_asc|key_asc|key_desc|count_desc")
	flags.IntVar(&opts.Limit, "limit", 0, "maximum rows or groups (0 = all)")
	flags.StringVarP(&opts.File, "file", "f", "", "query document (.cue, .yaml)")
	flags.StringVarP(&opts.Name, "name", "n", "", "named query to run")

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	out := opts.formatter(cmd)

	q, code, err := opts.resolve()
	if err != nil {
		return out.FailCode(code, err)
	}

	return opts.withSession(cmd, out, func(ctx context.Context, s *session) error {
		rs, err := s.backend.Execute(ctx, q)
		if err != nil {
			return out.Fail(err)
		}
		out.VerboseLog("query %s matched %d", engine.ShortHash(rs.QueryHash), rs.Total)

		if out.Format == "json" {
			return out.Success(rs)
		}
		return writeResultSet(out.Writer, rs)
	})
}

// resolve builds the query from flags, or loads the named document query.
// Failures are returned with the error code to report.
func (o *QueryOptions) resolve() (queryir.Query, string, error) {
	if o.Name == "" && o.File == "" {
		q, err := o.Request.Build()
		if err != nil {
			return nil, ErrCodeQuery, err
		}
		return q, "", nil
	}

	if len(o.Where) > 0 || o.Request.IsAggregate() || o.Limit != 0 {
		return nil, ErrCodeGeneric, errors.New("conditions and aggregate flags cannot be combined with --name or --file")
	}

	var (
		queries []compiler.NamedQuery
		source  string
		err     error
	)
	if o.File != "" {
		source = o.File
		queries, err = compiler.LoadFile(o.File)
	} else {
		source = o.Config.Query.Dir
		queries, err = compiler.LoadDir(source)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCodeNotFound, err
	}
	if err != nil {
		return nil, ErrCodeDocument, err
	}

	if o.Name == "" {
		if len(queries) != 1 {
			return nil, ErrCodeGeneric, fmt.Errorf("%s defines %d queries; pick one with --name (%s)",
				source, len(queries), queryNames(queries))
		}
		return queries[0].Query, "", nil
	}

	nq, ok := compiler.Find(queries, o.Name)
	if !ok {
		return nil, ErrCodeNotFound, fmt.Errorf("query %q not found in %s (have %s)", o.Name, source, queryNames(queries))
	}
	return nq.Query, "", nil
}

func queryNames(queries []compiler.NamedQuery) string {
	names := make([]string, len(queries))
	for i, nq := range queries {
		names[i] = nq.Name
	}
	return strings.Join(names, ", ")
}

// writeResultSet renders rows or groups as an aligned table followed by a
// count line.
func writeResultSet(w io.Writer, rs *engine.ResultSet) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	switch rs.Kind {
	case engine.ResultGroups:
		stat := string(rs.Stat)
		if stat == "" {
			stat = string(queryir.StatCount)
		}
		fmt.Fprintf(tw, "KEY\tCOUNT\t%s\n", strings.ToUpper(stat))
		for _, g := range rs.Groups {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", displayKey(g.Key), g.Count, displayValue(g.Value))
		}
	default:
		fmt.Fprintln(tw, "SEQ\tDATE\tCOMPANY\tROCKET\tMISSION\tSTATUS\tPRICE")
		for _, r := range rs.Rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Seq, r.Date, r.Company, r.Rocket, r.Mission, r.Status, displayText(r.Price.String()))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	shown, noun := len(rs.Rows), "records"
	if rs.Kind == engine.ResultGroups {
		shown, noun = len(rs.Groups), "groups"
	}
	if shown < rs.Total {
		fmt.Fprintf(w, "(%d of %d %s)\n", shown, rs.Total, noun)
	} else {
		fmt.Fprintf(w, "(%d %s)\n", rs.Total, noun)
	}
	return nil
}

func displayKey(key string) string {
	if key == "" {
		return "(none)"
	}
	return key
}

func displayValue(v engine.Value) string {
	return displayText(v.String())
}

func displayText(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
