package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/sheetsync/internal/config"
	"github.com/danielolaszy/sheetsync/internal/jira"
	"github.com/danielolaszy/sheetsync/internal/logging"
	"github.com/danielolaszy/sheetsync/internal/reminder"
	"github.com/danielolaszy/sheetsync/internal/sheets"
	"github.com/danielolaszy/sheetsync/internal/syncer"
)

// todayLayout is the format accepted by --today.
const todayLayout = "2006-01-02"

func newRemindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Post due-date reminders on the JIRA tickets of tracked rows",
		Long: `Read every row in DATA_RANGE of the tracking sheet and post the reminder
that matches its due date:

- due later this month: reminder with the number of working days left
- due today: reminder that the review is due
- 7 to 13 days overdue: reminder with the assignee's manager copied
- 14 or more days (or a month) overdue: a risk issue is created in
  RISK_PROJECT, linked from the sheet, and referenced in the reminder

Rows whose status is not tracked, or whose assignee has no account
identifier in the users tab, are skipped.

Example:
  sheetsync remind --config sheetsync.yaml
  sheetsync remind --dry-run --today 2026-10-19`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, err := cmd.Flags().GetBool("dry-run")
			if err != nil {
				return err
			}
			today, err := todayFlag(cmd)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			opts := syncer.OptionsFromConfig(cfg)
			opts.DryRun = dryRun
			opts.Today = today

			s, err := newSyncer(cmd.Context(), cfg, opts)
			if err != nil {
				return err
			}

			summary, err := s.Run(cmd.Context())
			printSummary(cmd.OutOrStdout(), summary, dryRun)
			if err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d rows failed", summary.Failed, summary.Processed)
			}
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Classify and render reminders without writing to JIRA or the sheet")
	cmd.Flags().String("today", "", "Reference date as YYYY-MM-DD (default: current date)")

	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// todayFlag returns the --today value, or the current local date.
func todayFlag(cmd *cobra.Command) (time.Time, error) {
	value, err := cmd.Flags().GetString("today")
	if err != nil {
		return time.Time{}, err
	}
	return parseToday(value, time.Now())
}

func parseToday(value string, now time.Time) (time.Time, error) {
	if value == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(todayLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --today %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

func newSyncer(ctx context.Context, cfg *config.Config, opts syncer.Options) (*syncer.Syncer, error) {
	sheetClient, err := sheets.NewClient(ctx, cfg.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	jiraClient, err := jira.NewClient(cfg.Jira)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jira client: %w", err)
	}

	if name, err := jiraClient.Myself(ctx); err != nil {
		logging.Warn("could not verify jira credentials", "error", err)
	} else {
		logging.Info("connected to jira", "url", cfg.Jira.URL, "user", name)
	}

	renderer, err := reminder.NewRenderer(cfg.Templates, cfg.Risk.PolicyURL)
	if err != nil {
		return nil, err
	}

	return syncer.New(sheetClient, jiraClient, renderer, opts)
}

func printSummary(w io.Writer, s syncer.Summary, dryRun bool) {
	title := "Run summary"
	if dryRun {
		title += " (dry run)"
	}
	fmt.Fprintf(w, "\n%s:\n", bold(title))
	fmt.Fprintf(w, "- Rows processed: %d\n", s.Processed)
	fmt.Fprintf(w, "- Reminders posted: %s\n", green(s.Commented))
	fmt.Fprintf(w, "- Risk issues created: %s\n", yellow(s.RisksCreated))
	fmt.Fprintf(w, "- No reminder due: %d\n", s.NoAction)
	fmt.Fprintf(w, "- Skipped: %d\n", s.Skipped)
	fmt.Fprintf(w, "- Failed: %s\n", red(s.Failed))
}
