package cmd

import (
	"github.com/fatih/color"

	"github.com/danielolaszy/sheetsync/internal/reminder"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// bucketLabel colours a bucket name by urgency.
func bucketLabel(b reminder.Bucket) string {
	switch b {
	case reminder.Upcoming:
		return cyan(b.String())
	case reminder.DueToday:
		return green(b.String())
	case reminder.OverdueWeek:
		return yellow(b.String())
	case reminder.OverdueEscalate:
		return red(b.String())
	default:
		return gray(b.String())
	}
}
