package reminder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/sheetsync/pkg/models"
)

const policyURL = "https://wiki.example.com/risk-policy"

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(Templates{}, policyURL)
	require.NoError(t, err)
	return r
}

func testRecord() models.Record {
	return models.Record{
		Row:          7,
		CID:          "AC-2",
		AssigneeName: "Jane Doe",
		AssigneeID:   "acc-jane",
		IssueKey:     "CTRL-42",
		Status:       "Open",
	}
}

func TestRenderUpcomingIncludesWorkingDays(t *testing.T) {
	r := newTestRenderer(t)
	expected := map[int]int{1: 2, 5: 5, 10: 9}

	for n, workingDays := range expected {
		rec := testRecord()
		rec.DueDate = today.AddDate(0, 0, n)
		require.Equal(t, Upcoming, Classify(rec.DueDate, today, DefaultThresholds()))

		doc, err := r.Render(Upcoming, rec, RenderOptions{Today: today})
		require.NoError(t, err)
		require.NotNil(t, doc)

		text := doc.PlainText()
		assert.Contains(t, text, fmt.Sprintf("in %d working days", workingDays), "due in %d days", n)
		assert.Contains(t, text, "Hi @Jane Doe, the review of control AC-2")
	}
}

func TestRenderDueToday(t *testing.T) {
	rec := testRecord()
	rec.DueDate = today

	doc, err := newTestRenderer(t).Render(DueToday, rec, RenderOptions{Today: today})
	require.NoError(t, err)
	assert.Contains(t, doc.PlainText(), "is due today (19 Oct 2026)")
}

func TestRenderOverdueWeekCopiesManager(t *testing.T) {
	rec := testRecord()
	rec.DueDate = today.AddDate(0, 0, -10)
	rec.ManagerName = "Sam Boss"
	rec.ManagerID = "acc-sam"

	doc, err := newTestRenderer(t).Render(OverdueWeek, rec, RenderOptions{Today: today})
	require.NoError(t, err)
	require.Len(t, doc.Content, 2)
	assert.Contains(t, doc.PlainText(), "overdue by 10 days")
	assert.Contains(t, doc.Wiki(), "cc [~acc-sam]")
}

func TestRenderOverdueWeekWithoutManager(t *testing.T) {
	rec := testRecord()
	rec.DueDate = today.AddDate(0, 0, -8)

	doc, err := newTestRenderer(t).Render(OverdueWeek, rec, RenderOptions{Today: today})
	require.NoError(t, err)
	assert.Len(t, doc.Content, 1)
}

func TestRenderOverdueEscalateLinksRisk(t *testing.T) {
	rec := testRecord()
	rec.DueDate = today.AddDate(0, 0, -20)
	rec.RiskKey = "RISK-7"

	doc, err := newTestRenderer(t).Render(OverdueEscalate, rec, RenderOptions{
		Today:   today,
		RiskURL: "https://jira.example.com/browse/RISK-7",
	})
	require.NoError(t, err)

	wiki := doc.Wiki()
	assert.Contains(t, wiki, "overdue by 20 days")
	assert.Contains(t, wiki, "*Risk log entry:* [RISK-7|https://jira.example.com/browse/RISK-7]")
	assert.Contains(t, wiki, "[risk management policy|"+policyURL+"]")

	label := doc.Content[1].Content[0]
	assert.Equal(t, "Risk log entry:", label.Text)
	require.Len(t, label.Marks, 1)
	assert.Equal(t, "strong", label.Marks[0].Type)
}

func TestRenderNoneReturnsNil(t *testing.T) {
	doc, err := newTestRenderer(t).Render(None, testRecord(), RenderOptions{Today: today})
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestRenderWithoutAssigneeIDWritesName(t *testing.T) {
	rec := testRecord()
	rec.AssigneeID = ""
	rec.DueDate = today

	doc, err := newTestRenderer(t).Render(DueToday, rec, RenderOptions{Today: today})
	require.NoError(t, err)
	assert.Equal(t, "text", doc.Content[0].Content[1].Type)
}

func TestRenderRisk(t *testing.T) {
	rec := testRecord()
	rec.DueDate = today.AddDate(0, 0, -20)

	summary, doc, err := newTestRenderer(t).RenderRisk(rec, RenderOptions{Today: today})
	require.NoError(t, err)
	assert.Equal(t, "Overdue control review AC-2 (CTRL-42)", summary)
	assert.Contains(t, doc.PlainText(), "is 20 days overdue. Assignee: Jane Doe.")
	assert.Contains(t, doc.PlainText(), policyURL)
}

func TestCustomTemplates(t *testing.T) {
	r, err := NewRenderer(Templates{DueToday: "{{ issue_key }} needs you {{ days | pluralize: 'now', 'later' }}"}, "")
	require.NoError(t, err)

	rec := testRecord()
	rec.DueDate = today
	doc, err := r.Render(DueToday, rec, RenderOptions{Today: today})
	require.NoError(t, err)
	assert.Equal(t, "Hi @Jane Doe, CTRL-42 needs you later", doc.PlainText())
}

func TestNewRendererRejectsBadTemplate(t *testing.T) {
	_, err := NewRenderer(Templates{Upcoming: "{% if cid %}unterminated"}, "")
	assert.Error(t, err)
}
