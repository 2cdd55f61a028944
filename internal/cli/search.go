package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Arthur1/request-cache/jobs"
)

type queryFlags struct {
	location   string
	limit      int
	categories []string
	jobTypes   []string
	asJSON     bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.location, "location", "l", "", "keep listings whose required location contains this text")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", jobs.DefaultLimit, "maximum number of listings requested upstream")
	cmd.Flags().StringSliceVarP(&f.categories, "category", "c", nil, "upstream category, repeatable")
	cmd.Flags().StringSliceVarP(&f.jobTypes, "job-type", "t", nil, "keep listings of these job types, repeatable")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print results as JSON")
}

func (f *queryFlags) query(search string) jobs.Query {
	return jobs.Query{
		Search:     search,
		Location:   f.location,
		Limit:      f.limit,
		Categories: f.categories,
		JobTypes:   f.jobTypes,
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search job listings once",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.jobsClient()
			if err != nil {
				return err
			}
			var q string
			if len(args) > 0 {
				q = args[0]
			}
			results, err := client.Search(cmd.Context(), flags.query(q))
			if err != nil {
				return err
			}
			return printJobs(cmd.OutOrStdout(), results, flags.asJSON)
		},
	}
	flags.register(cmd)
	return cmd
}

func printJobs(w io.Writer, results []jobs.Job, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no jobs found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tCOMPANY\tLOCATION\tTYPE\tURL")
	for _, j := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.Title, j.Company, j.Location, strings.ReplaceAll(j.JobType, "_", " "), j.URL)
	}
	return tw.Flush()
}
