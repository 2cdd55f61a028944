package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Arthur1/request-cache/jobs"
)

func newSavedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "List, save and remove bookmarked jobs",
		Long: `saved manages the bookmarks kept by the saved-jobs endpoint
(upstream.savedJobsURL). The list is read through the response cache and
every change invalidates it.`,
	}
	cmd.PersistentFlags().String("saved-jobs-url", "", "saved jobs endpoint")
	bindFlags(a.v, cmd.PersistentFlags(), map[string]string{
		"upstream.savedJobsURL": "saved-jobs-url",
	})

	cmd.AddCommand(
		newSavedListCmd(a),
		newSavedSaveCmd(a),
		newSavedRemoveCmd(a),
	)
	return cmd
}

func newSavedListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := a.savedJobs()
			if err != nil {
				return err
			}
			list, err := saved.List(cmd.Context())
			if err != nil {
				return err
			}
			return printSavedJobs(cmd.OutOrStdout(), list, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print saved jobs as JSON")
	return cmd
}

func newSavedSaveCmd(a *app) *cobra.Command {
	var (
		job    jobs.Job
		params map[string]string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Bookmark a job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := a.savedJobs()
			if err != nil {
				return err
			}
			err = saved.Save(cmd.Context(), job, params)
			if errors.Is(err, jobs.ErrAlreadySaved) {
				fmt.Fprintf(cmd.OutOrStdout(), "already saved: %s\n", job.URL)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved: %s\n", job.URL)
			return nil
		},
	}
	cmd.Flags().StringVar(&job.Title, "title", "", "job title")
	cmd.Flags().StringVar(&job.Company, "company", "", "company name")
	cmd.Flags().StringVar(&job.Location, "location", "", "required candidate location")
	cmd.Flags().StringVar(&job.JobType, "job-type", "", "job type, e.g. full_time")
	cmd.Flags().StringVar(&job.URL, "url", "", "job posting URL")
	cmd.Flags().StringToStringVar(&params, "param", nil, "search parameter the job was found with, key=value, repeatable")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("url")
	return cmd
}

func newSavedRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <job-url>",
		Short: "Remove a bookmarked job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := a.savedJobs()
			if err != nil {
				return err
			}
			if err := saved.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed: %s\n", args[0])
			return nil
		},
	}
}

func printSavedJobs(w io.Writer, list []jobs.SavedJob, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "no saved jobs")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SAVED\tTITLE\tCOMPANY\tURL")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.CreatedAt.Format("2006-01-02"), s.Job.Title, s.Job.Company, s.Job.URL)
	}
	return tw.Flush()
}
