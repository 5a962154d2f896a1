// Package syncer walks the tracking sheet row by row and turns each
// control review into the matching ticket action.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/danielolaszy/sheetsync/internal/adf"
	"github.com/danielolaszy/sheetsync/internal/config"
	"github.com/danielolaszy/sheetsync/internal/logging"
	"github.com/danielolaszy/sheetsync/internal/reminder"
	"github.com/danielolaszy/sheetsync/internal/sheets"
	"github.com/danielolaszy/sheetsync/pkg/models"
)

// RowSource is the tabular side of the sync.
type RowSource interface {
	ReadRow(ctx context.Context, tab, row int) ([]string, error)
	FindRow(ctx context.Context, tab, col int, text string) ([]string, error)
	WriteCell(ctx context.Context, tab, row, col int, value string) error
}

// Tracker is the ticketing side of the sync.
type Tracker interface {
	GetIssue(ctx context.Context, key string) (*models.Issue, error)
	AddComment(ctx context.Context, key string, doc *adf.Document) error
	CreateIssue(ctx context.Context, req models.NewIssue) (*models.Issue, error)
	BrowseURL(key string) string
}

// Options controls which rows are read and how they are interpreted.
type Options struct {
	Layout      config.Layout
	MainTab     int
	UsersTab    int
	FirstRow    int
	LastRow     int
	DateLayouts []string
	Thresholds  reminder.Thresholds
	Statuses    reminder.StatusSet
	Risk        config.RiskConfig
	DryRun      bool
	// Today is the reference date; zero means the current date.
	Today time.Time
}

// OptionsFromConfig copies the relevant settings out of a loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Layout:      cfg.Columns.Layout(),
		MainTab:     cfg.Sheet.MainTab,
		UsersTab:    cfg.Sheet.UsersTab,
		FirstRow:    cfg.Sheet.FirstRow,
		LastRow:     cfg.Sheet.LastRow,
		DateLayouts: cfg.Sheet.DateLayouts,
		Thresholds:  cfg.Thresholds,
		Statuses:    reminder.NewStatusSet(cfg.Statuses...),
		Risk:        cfg.Risk,
	}
}

// Summary counts what happened to the rows of a run.
type Summary struct {
	Processed    int
	NoAction     int
	Skipped      int
	Commented    int
	RisksCreated int
	Failed       int
}

// Syncer processes rows sequentially.
type Syncer struct {
	rows     RowSource
	tracker  Tracker
	renderer *reminder.Renderer
	opts     Options
	users    *lru.Cache[string, Lookup]
}

const userCacheSize = 512

// New creates a Syncer.
func New(rows RowSource, tracker Tracker, renderer *reminder.Renderer, opts Options) (*Syncer, error) {
	if opts.Today.IsZero() {
		opts.Today = time.Now()
	}
	if opts.Statuses == nil {
		opts.Statuses = reminder.NewStatusSet()
	}
	if len(opts.DateLayouts) == 0 {
		opts.DateLayouts = config.DefaultDateLayouts
	}

	users, err := lru.New[string, Lookup](userCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create user cache: %w", err)
	}

	return &Syncer{
		rows:     rows,
		tracker:  tracker,
		renderer: renderer,
		opts:     opts,
		users:    users,
	}, nil
}

// Run processes every configured row. A failing row is logged and counted;
// only cancellation of ctx stops the run early.
func (s *Syncer) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	logging.Info("starting reminder run",
		"first_row", s.opts.FirstRow,
		"last_row", s.opts.LastRow,
		"today", s.opts.Today.Format("2006-01-02"),
		"dry_run", s.opts.DryRun)

	for row := s.opts.FirstRow; row <= s.opts.LastRow; row++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Processed++
		outcome, err := s.ProcessRow(ctx, row)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			logging.Error("failed to process row", "row", row, "error", err)
			summary.Failed++
			continue
		}
		summary.add(outcome)
	}

	logging.Info("reminder run complete",
		"processed", summary.Processed,
		"commented", summary.Commented,
		"risks_created", summary.RisksCreated,
		"no_action", summary.NoAction,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return summary, nil
}

// Outcome describes what ProcessRow did with a row.
type Outcome int

const (
	// OutcomeSkipped means the row was malformed, untracked or unassigned.
	OutcomeSkipped Outcome = iota
	// OutcomeNoAction means the row is tracked but no reminder is due.
	OutcomeNoAction
	// OutcomeCommented means a reminder was posted (or would be, in a dry run).
	OutcomeCommented
	// OutcomeEscalated means a risk issue was created and a reminder posted.
	OutcomeEscalated
)

func (s *Summary) add(o Outcome) {
	switch o {
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeNoAction:
		s.NoAction++
	case OutcomeCommented:
		s.Commented++
	case OutcomeEscalated:
		s.Commented++
		s.RisksCreated++
	}
}

// ProcessRow reads one row and performs its reminder action. Problems with
// the row's own data are logged and reported as OutcomeSkipped; errors are
// returned only for failed API calls.
func (s *Syncer) ProcessRow(ctx context.Context, row int) (Outcome, error) {
	cells, err := s.rows.ReadRow(ctx, s.opts.MainTab, row)
	if err != nil {
		return OutcomeSkipped, err
	}

	rec, err := s.parseRecord(row, cells)
	if err != nil {
		logging.Warn("skipping malformed row", "row", row, "error", err)
		return OutcomeSkipped, nil
	}

	if !s.opts.Statuses.Tracks(rec.Status) {
		logging.Debug("status not tracked", "row", row, "issue", rec.IssueKey, "status", rec.Status)
		return OutcomeSkipped, nil
	}

	delta := reminder.Delta(rec.DueDate, s.opts.Today)
	bucket := reminder.BucketFor(delta, s.opts.Thresholds)
	if bucket == reminder.None {
		reason := "time remaining"
		if delta.Passed() {
			reason = "recently passed"
		}
		logging.Info("no reminder due",
			"row", row,
			"issue", rec.IssueKey,
			"due_date", rec.DueDate.Format("2006-01-02"),
			"reason", reason)
		return OutcomeNoAction, nil
	}

	assignee := s.lookupUser(ctx, rec.AssigneeName)
	switch assignee.Status {
	case LookupNotFound:
		logging.Warn("assignee has no account identifier, skipping",
			"row", row,
			"issue", rec.IssueKey,
			"assignee", rec.AssigneeName)
		return OutcomeSkipped, nil
	case LookupFailed:
		return OutcomeSkipped, fmt.Errorf("failed to look up assignee %q: %w", rec.AssigneeName, assignee.Err)
	}
	rec.AssigneeID = assignee.ID

	if bucket == reminder.OverdueWeek && rec.ManagerName != "" {
		manager := s.lookupUser(ctx, rec.ManagerName)
		if manager.Status == LookupFailed {
			logging.Warn("failed to look up manager", "row", row, "manager", rec.ManagerName, "error", manager.Err)
		}
		rec.ManagerID = manager.ID
	}

	outcome := OutcomeCommented
	if bucket == reminder.OverdueEscalate && rec.RiskKey == "" {
		key, err := s.createRisk(ctx, rec)
		if err != nil {
			return OutcomeSkipped, err
		}
		rec.RiskKey = key
		outcome = OutcomeEscalated
	}

	opts := reminder.RenderOptions{Today: s.opts.Today}
	if rec.RiskKey != "" {
		opts.RiskURL = s.tracker.BrowseURL(rec.RiskKey)
	}

	doc, err := s.renderer.Render(bucket, rec, opts)
	if err != nil {
		return OutcomeSkipped, err
	}

	if s.opts.DryRun {
		logging.Info("dry run: would post comment",
			"row", row,
			"issue", rec.IssueKey,
			"bucket", bucket.String(),
			"text", doc.PlainText())
		return outcome, nil
	}

	if err := s.tracker.AddComment(ctx, rec.IssueKey, doc); err != nil {
		return OutcomeSkipped, err
	}

	logging.Info("reminder posted",
		"row", row,
		"issue", rec.IssueKey,
		"cid", rec.CID,
		"bucket", bucket.String())

	return outcome, nil
}

// createRisk opens a risk issue for rec and links it from the sheet. A
// failed write-back is only logged: the issue exists and the comment will
// still reference it.
func (s *Syncer) createRisk(ctx context.Context, rec models.Record) (string, error) {
	summary, description, err := s.renderer.RenderRisk(rec, reminder.RenderOptions{Today: s.opts.Today})
	if err != nil {
		return "", err
	}

	if s.opts.DryRun {
		logging.Info("dry run: would create risk issue",
			"row", rec.Row,
			"issue", rec.IssueKey,
			"project", s.opts.Risk.Project,
			"summary", summary)
		return "", nil
	}

	issue, err := s.tracker.CreateIssue(ctx, models.NewIssue{
		Project:     s.opts.Risk.Project,
		Summary:     summary,
		Description: description.Wiki(),
		Type:        s.opts.Risk.IssueType,
		AssigneeID:  rec.AssigneeID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create risk issue for %s: %w", rec.IssueKey, err)
	}

	logging.Info("risk issue created", "row", rec.Row, "issue", rec.IssueKey, "risk", issue.Key)

	formula := sheets.HyperlinkFormula(issue.URL, issue.Key)
	if err := s.rows.WriteCell(ctx, s.opts.MainTab, rec.Row, s.opts.Layout.Risk, formula); err != nil {
		logging.Warn("failed to link risk issue in sheet",
			"row", rec.Row,
			"risk", issue.Key,
			"error", err)
	}

	return issue.Key, nil
}

// parseRecord maps a row's cells onto a Record.
func (s *Syncer) parseRecord(row int, cells []string) (models.Record, error) {
	l := s.opts.Layout
	rec := models.Record{
		Row:          row,
		CID:          cell(cells, l.CID),
		AssigneeName: cell(cells, l.Assignee),
		ManagerName:  cell(cells, l.Manager),
		IssueKey:     cell(cells, l.IssueKey),
		Status:       cell(cells, l.Status),
		RiskKey:      cell(cells, l.Risk),
	}

	var missing []string
	if rec.IssueKey == "" {
		missing = append(missing, "issue key")
	}
	due := cell(cells, l.DueDate)
	if due == "" {
		missing = append(missing, "due date")
	}
	if len(missing) > 0 {
		return rec, fmt.Errorf("empty %s", strings.Join(missing, " and "))
	}

	date, err := ParseDate(due, s.opts.DateLayouts)
	if err != nil {
		return rec, err
	}
	rec.DueDate = date
	return rec, nil
}

// ParseDate parses value with every layout. A value that two layouts read
// as different dates is rejected as ambiguous.
func ParseDate(value string, layouts []string) (time.Time, error) {
	var found time.Time
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if !found.IsZero() && !t.Equal(found) {
			return time.Time{}, fmt.Errorf("ambiguous due date %q: could be %s or %s",
				value, found.Format("2006-01-02"), t.Format("2006-01-02"))
		}
		found = t
	}
	if found.IsZero() {
		return time.Time{}, fmt.Errorf("unrecognized due date %q", value)
	}
	return found, nil
}

func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// LookupStatus distinguishes a missing user from a failed lookup.
type LookupStatus int

const (
	// LookupFound means the name resolved to an account identifier.
	LookupFound LookupStatus = iota
	// LookupNotFound means the users tab has no row for the name.
	LookupNotFound
	// LookupFailed means the users tab could not be read.
	LookupFailed
)

// Lookup is the result of resolving a user name to an account identifier.
type Lookup struct {
	Status LookupStatus
	ID     string
	Err    error
}

// lookupUser resolves name through the users tab. Found and not-found
// results are cached; failures are retried on the next row that needs them.
func (s *Syncer) lookupUser(ctx context.Context, name string) Lookup {
	if name == "" {
		return Lookup{Status: LookupNotFound}
	}
	if cached, ok := s.users.Get(name); ok {
		return cached
	}

	l := s.opts.Layout
	cells, err := s.rows.FindRow(ctx, s.opts.UsersTab, l.UserName, name)
	var result Lookup
	switch {
	case errors.Is(err, sheets.ErrNotFound):
		result = Lookup{Status: LookupNotFound}
	case err != nil:
		return Lookup{Status: LookupFailed, Err: err}
	default:
		if id := cell(cells, l.UserID); id != "" {
			result = Lookup{Status: LookupFound, ID: id}
		} else {
			result = Lookup{Status: LookupNotFound}
		}
	}

	s.users.Add(name, result)
	return result
}
