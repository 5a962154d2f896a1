package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/sheetsync/internal/config"
	"github.com/danielolaszy/sheetsync/internal/reminder"
	"github.com/danielolaszy/sheetsync/internal/syncer"
	"github.com/danielolaszy/sheetsync/pkg/models"
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Show which reminder a due date would receive",
		Long: `Classify a single due date without contacting the sheet or JIRA. Prints the
calendar offset, the working days left and the reminder bucket, followed by
a preview of the comment that would be posted.

Example:
  sheetsync classify --due 2026-10-24 --today 2026-10-19 --cid AC-2 --assignee "Jane Doe"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			dueValue, _ := flags.GetString("due")
			due, err := syncer.ParseDate(dueValue, config.DefaultDateLayouts)
			if err != nil {
				return err
			}
			today, err := todayFlag(cmd)
			if err != nil {
				return err
			}

			var thresholds reminder.Thresholds
			thresholds.WeekFrom, _ = flags.GetInt("week-from")
			thresholds.WeekTo, _ = flags.GetInt("week-to")
			thresholds.EscalateAt, _ = flags.GetInt("escalate-at")
			if err := thresholds.Validate(); err != nil {
				return err
			}

			rec := models.Record{DueDate: due}
			rec.CID, _ = flags.GetString("cid")
			rec.IssueKey, _ = flags.GetString("issue")
			rec.AssigneeName, _ = flags.GetString("assignee")
			rec.ManagerName, _ = flags.GetString("manager")
			rec.RiskKey, _ = flags.GetString("risk")
			rec.AssigneeID = rec.AssigneeName
			rec.ManagerID = rec.ManagerName

			policyURL, _ := flags.GetString("policy-url")
			renderer, err := reminder.NewRenderer(reminder.Templates{}, policyURL)
			if err != nil {
				return err
			}

			return writeClassification(cmd.OutOrStdout(), renderer, rec, today, thresholds)
		},
	}

	defaults := reminder.DefaultThresholds()
	cmd.Flags().String("due", "", "Due date to classify (required)")
	cmd.Flags().String("today", "", "Reference date as YYYY-MM-DD (default: current date)")
	cmd.Flags().String("cid", "CID", "Control identifier used in the preview")
	cmd.Flags().String("issue", "ISSUE-1", "Issue key used in the preview")
	cmd.Flags().String("assignee", "Assignee", "Assignee name used in the preview")
	cmd.Flags().String("manager", "", "Manager name used in the preview")
	cmd.Flags().String("risk", "", "Existing risk issue key used in the preview")
	cmd.Flags().String("policy-url", "", "Risk policy link used in the preview")
	cmd.Flags().Int("week-from", defaults.WeekFrom, "Most overdue day offset that copies the manager")
	cmd.Flags().Int("week-to", defaults.WeekTo, "Least overdue day offset that copies the manager")
	cmd.Flags().Int("escalate-at", defaults.EscalateAt, "Day offset at or below which a risk issue is raised")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}

func writeClassification(w io.Writer, renderer *reminder.Renderer, rec models.Record, today time.Time, thresholds reminder.Thresholds) error {
	delta := reminder.Delta(rec.DueDate, today)
	bucket := reminder.BucketFor(delta, thresholds)

	fmt.Fprintf(w, "Due date:     %s\n", rec.DueDate.Format(reminder.DateLayout))
	fmt.Fprintf(w, "Today:        %s\n", today.Format(reminder.DateLayout))
	fmt.Fprintf(w, "Offset:       %d months, %d days\n", delta.Months, delta.Days)
	fmt.Fprintf(w, "Working days: %d\n", reminder.WorkingDays(today, rec.DueDate))
	fmt.Fprintf(w, "Bucket:       %s\n", bucketLabel(bucket))

	if bucket == reminder.None {
		reason := "time remaining"
		if delta.Passed() {
			reason = "recently passed"
		}
		fmt.Fprintf(w, "\nNo reminder would be posted (%s).\n", reason)
		return nil
	}

	opts := reminder.RenderOptions{Today: today}
	if bucket == reminder.OverdueEscalate && rec.RiskKey == "" {
		summary, _, err := renderer.RenderRisk(rec, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nA risk issue would be created: %s\n", summary)
	}

	doc, err := renderer.Render(bucket, rec, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s\n%s\n", bold("Comment preview:"), doc.PlainText())
	return nil
}
