package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/sheetsync/internal/syncer"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List tracked rows with the current state of their JIRA issues",
		Long: `For every row in DATA_RANGE whose status is tracked, fetch the linked JIRA
issue and print its key, status and summary next to the reminder bucket the
row currently falls into. Nothing is written to JIRA or the sheet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := todayFlag(cmd)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			opts := syncer.OptionsFromConfig(cfg)
			opts.Today = today

			s, err := newSyncer(cmd.Context(), cfg, opts)
			if err != nil {
				return err
			}

			statuses, err := s.Inspect(cmd.Context())
			printStatuses(cmd.OutOrStdout(), statuses)
			return err
		},
	}

	cmd.Flags().String("today", "", "Reference date as YYYY-MM-DD (default: current date)")

	return cmd
}

func printStatuses(w io.Writer, statuses []syncer.RowStatus) {
	if len(statuses) == 0 {
		fmt.Fprintln(w, "No tracked rows found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tCID\tISSUE\tSHEET STATUS\tJIRA STATUS\tSUMMARY\tBUCKET")
	failed := 0
	for _, s := range statuses {
		jiraStatus, summary := "-", "-"
		if s.Err != nil {
			failed++
			jiraStatus, summary = "error", s.Err.Error()
		} else if s.Issue != nil {
			jiraStatus, summary = s.Issue.Status, s.Issue.Summary
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Row, s.Record.CID, s.Record.IssueKey, s.Record.Status, jiraStatus, summary, bucketLabel(s.Bucket))
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\nTracked rows: %d", len(statuses))
	if failed > 0 {
		fmt.Fprintf(w, " (%s could not be fetched)", red(failed))
	}
	fmt.Fprintln(w)
}
