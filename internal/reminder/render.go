package reminder

import (
	"fmt"
	"time"

	"github.com/osteele/liquid"

	"github.com/danielolaszy/sheetsync/internal/adf"
	"github.com/danielolaszy/sheetsync/pkg/models"
)

// DateLayout is how due dates are written in messages.
const DateLayout = "02 Jan 2006"

// Templates holds the liquid sources for each message body. Available
// bindings: cid, issue_key, assignee, manager, due_date, days, overdue_days,
// working_days, risk_key.
type Templates struct {
	Upcoming        string
	DueToday        string
	OverdueWeek     string
	OverdueEscalate string
	RiskSummary     string
	RiskDescription string
}

// DefaultTemplates returns the built-in message wording.
func DefaultTemplates() Templates {
	return Templates{
		Upcoming: "the review of control {{ cid }} is due on {{ due_date }}, " +
			"in {{ working_days }} working {{ working_days | pluralize: 'day', 'days' }}. " +
			"Please make sure it is completed on time.",
		DueToday: "the review of control {{ cid }} is due today ({{ due_date }}). " +
			"Please complete it and update this ticket.",
		OverdueWeek: "the review of control {{ cid }} is overdue by {{ overdue_days }} " +
			"{{ overdue_days | pluralize: 'day', 'days' }} (due {{ due_date }}). " +
			"This reminder has been escalated to your manager.",
		OverdueEscalate: "the review of control {{ cid }} is overdue by {{ overdue_days }} " +
			"{{ overdue_days | pluralize: 'day', 'days' }} (due {{ due_date }}) and has been recorded in the risk log.",
		RiskSummary: "Overdue control review {{ cid }} ({{ issue_key }})",
		RiskDescription: "The review of control {{ cid }} tracked in {{ issue_key }} was due on {{ due_date }} " +
			"and is {{ overdue_days }} days overdue. Assignee: {{ assignee }}.",
	}
}

// withDefaults fills empty templates from DefaultTemplates.
func (t Templates) withDefaults() Templates {
	d := DefaultTemplates()
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return Templates{
		Upcoming:        pick(t.Upcoming, d.Upcoming),
		DueToday:        pick(t.DueToday, d.DueToday),
		OverdueWeek:     pick(t.OverdueWeek, d.OverdueWeek),
		OverdueEscalate: pick(t.OverdueEscalate, d.OverdueEscalate),
		RiskSummary:     pick(t.RiskSummary, d.RiskSummary),
		RiskDescription: pick(t.RiskDescription, d.RiskDescription),
	}
}

// RenderOptions carries the per-run values a message depends on.
type RenderOptions struct {
	Today   time.Time
	RiskURL string
}

// Renderer turns a bucket and record into a comment document.
type Renderer struct {
	bodies          map[Bucket]*liquid.Template
	riskSummary     *liquid.Template
	riskDescription *liquid.Template
	policyURL       string
}

// NewRenderer parses all templates up front so a bad override fails at
// startup rather than halfway through a run.
func NewRenderer(templates Templates, policyURL string) (*Renderer, error) {
	engine := liquid.NewEngine()
	engine.RegisterFilter("pluralize", func(n int, singular, plural string) string {
		if n == 1 || n == -1 {
			return singular
		}
		return plural
	})

	templates = templates.withDefaults()
	r := &Renderer{
		bodies:    make(map[Bucket]*liquid.Template, 4),
		policyURL: policyURL,
	}

	byBucket := map[Bucket]string{
		Upcoming:        templates.Upcoming,
		DueToday:        templates.DueToday,
		OverdueWeek:     templates.OverdueWeek,
		OverdueEscalate: templates.OverdueEscalate,
	}
	for bucket, source := range byBucket {
		tpl, err := engine.ParseString(source)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", bucket, err)
		}
		r.bodies[bucket] = tpl
	}

	sources := []struct {
		name   string
		source string
		dst    **liquid.Template
	}{
		{name: "risk_summary", source: templates.RiskSummary, dst: &r.riskSummary},
		{name: "risk_description", source: templates.RiskDescription, dst: &r.riskDescription},
	}
	for _, s := range sources {
		tpl, err := engine.ParseString(s.source)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", s.name, err)
		}
		*s.dst = tpl
	}

	return r, nil
}

// Render builds the comment for bucket. It returns nil without error for
// None, which means nothing should be posted.
func (r *Renderer) Render(bucket Bucket, rec models.Record, opts RenderOptions) (*adf.Document, error) {
	tpl, ok := r.bodies[bucket]
	if !ok {
		return nil, nil
	}

	body, err := tpl.RenderString(bindings(rec, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to render %s message: %w", bucket, err)
	}

	doc := adf.New().Paragraph(
		adf.Text("Hi "),
		adf.Mention(rec.AssigneeID, rec.AssigneeName),
		adf.Textf(", %s", body),
	)

	switch bucket {
	case OverdueWeek:
		if rec.ManagerName != "" {
			doc.Paragraph(adf.Text("cc "), adf.Mention(rec.ManagerID, rec.ManagerName))
		}
	case OverdueEscalate:
		if rec.RiskKey != "" {
			doc.Paragraph(adf.Strong("Risk log entry:"), adf.Text(" "), adf.Link(rec.RiskKey, opts.RiskURL))
		}
		if r.policyURL != "" {
			doc.Paragraph(
				adf.Text("Please follow the "),
				adf.Link("risk management policy", r.policyURL),
				adf.Text(" to agree a remediation date or accept the risk."),
			)
		}
	}

	return doc, nil
}

// RenderRisk builds the summary and description of a new risk issue.
func (r *Renderer) RenderRisk(rec models.Record, opts RenderOptions) (string, *adf.Document, error) {
	b := bindings(rec, opts)

	summary, err := r.riskSummary.RenderString(b)
	if err != nil {
		return "", nil, fmt.Errorf("failed to render risk summary: %w", err)
	}
	text, err := r.riskDescription.RenderString(b)
	if err != nil {
		return "", nil, fmt.Errorf("failed to render risk description: %w", err)
	}

	doc := adf.New().Paragraph(adf.Text(text))
	if r.policyURL != "" {
		doc.Paragraph(adf.Text("Policy: "), adf.Link("", r.policyURL))
	}
	return summary, doc, nil
}

func bindings(rec models.Record, opts RenderOptions) liquid.Bindings {
	days := DaysBetween(opts.Today, rec.DueDate)
	return liquid.Bindings{
		"cid":          rec.CID,
		"issue_key":    rec.IssueKey,
		"assignee":     rec.AssigneeName,
		"manager":      rec.ManagerName,
		"due_date":     rec.DueDate.Format(DateLayout),
		"days":         days,
		"overdue_days": -days,
		"working_days": WorkingDays(opts.Today, rec.DueDate),
		"risk_key":     rec.RiskKey,
	}
}
