package adf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	return New().
		Paragraph(Text("Hi "), Mention("5b10ac8d82e05b22cc7d4ef5", "Jane Doe"), Text(",")).
		Paragraph(Text("See "), Link("RISK-7", "https://jira.example.com/browse/RISK-7"), Text(" for "), Strong("details"))
}

func TestDocumentJSONShape(t *testing.T) {
	data, err := json.Marshal(sampleDocument())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.EqualValues(t, 1, doc["version"])
	assert.Equal(t, "doc", doc["type"])

	content := doc["content"].([]any)
	require.Len(t, content, 2)

	first := content[0].(map[string]any)
	assert.Equal(t, "paragraph", first["type"])
	inlines := first["content"].([]any)
	require.Len(t, inlines, 3)

	mention := inlines[1].(map[string]any)
	assert.Equal(t, "mention", mention["type"])
	attrs := mention["attrs"].(map[string]any)
	assert.Equal(t, "5b10ac8d82e05b22cc7d4ef5", attrs["id"])
	assert.Equal(t, "@Jane Doe", attrs["text"])
	_, hasText := mention["text"]
	assert.False(t, hasText)

	link := content[1].(map[string]any)["content"].([]any)[1].(map[string]any)
	marks := link["marks"].([]any)
	require.Len(t, marks, 1)
	mark := marks[0].(map[string]any)
	assert.Equal(t, "link", mark["type"])
	assert.Equal(t, "https://jira.example.com/browse/RISK-7", mark["attrs"].(map[string]any)["href"])
}

func TestParagraphDropsEmptyText(t *testing.T) {
	doc := New().Paragraph(Text(""), Text("due today"), Text(""))
	require.Len(t, doc.Content, 1)
	assert.Len(t, doc.Content[0].Content, 1)
}

func TestMentionWithoutAccountFallsBackToText(t *testing.T) {
	n := Mention("", "Jane Doe")
	assert.Equal(t, "text", n.Type)
	assert.Equal(t, "Jane Doe", n.Text)
}

func TestLinkWithoutTextUsesHref(t *testing.T) {
	n := Link("", "https://policy.example.com")
	assert.Equal(t, "https://policy.example.com", n.Text)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hi @Jane Doe,\n\nSee RISK-7 for details", sampleDocument().PlainText())
}

func TestWiki(t *testing.T) {
	expected := "Hi [~5b10ac8d82e05b22cc7d4ef5],\n\nSee [RISK-7|https://jira.example.com/browse/RISK-7] for *details*"
	assert.Equal(t, expected, sampleDocument().Wiki())
}

func TestTextf(t *testing.T) {
	assert.Equal(t, "due in 3 days", Textf("due in %d days", 3).Text)
}
