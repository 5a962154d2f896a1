package syncer

import (
	"context"

	"github.com/danielolaszy/sheetsync/internal/logging"
	"github.com/danielolaszy/sheetsync/internal/reminder"
	"github.com/danielolaszy/sheetsync/pkg/models"
)

// RowStatus describes a tracked row and the current state of its issue.
type RowStatus struct {
	Row    int
	Record models.Record
	Bucket reminder.Bucket
	Issue  *models.Issue
	// Err is set when the issue could not be fetched.
	Err error
}

// Inspect returns the tracked rows in range together with their issues.
// Nothing is written to the sheet or the tracker.
func (s *Syncer) Inspect(ctx context.Context) ([]RowStatus, error) {
	var result []RowStatus

	for row := s.opts.FirstRow; row <= s.opts.LastRow; row++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		cells, err := s.rows.ReadRow(ctx, s.opts.MainTab, row)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logging.Error("failed to read row", "row", row, "error", err)
			continue
		}

		rec, err := s.parseRecord(row, cells)
		if err != nil {
			logging.Warn("skipping malformed row", "row", row, "error", err)
			continue
		}
		if !s.opts.Statuses.Tracks(rec.Status) {
			continue
		}

		status := RowStatus{
			Row:    row,
			Record: rec,
			Bucket: reminder.Classify(rec.DueDate, s.opts.Today, s.opts.Thresholds),
		}
		status.Issue, status.Err = s.tracker.GetIssue(ctx, rec.IssueKey)
		if status.Err != nil && ctx.Err() != nil {
			return result, ctx.Err()
		}
		result = append(result, status)
	}

	return result, nil
}
