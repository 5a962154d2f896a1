// Package adf builds rich-text documents for Jira comments and descriptions.
//
// Documents are assembled from paragraphs of inline nodes (text, strong text,
// mentions and links). The same document marshals to Atlassian Document
// Format JSON for the Cloud REST v3 API and renders to wiki markup for
// Server/Data Center installations that only accept REST v2 strings.
package adf

import (
	"fmt"
	"strings"
)

const (
	typeDoc       = "doc"
	typeParagraph = "paragraph"
	typeText      = "text"
	typeMention   = "mention"

	markStrong = "strong"
	markLink   = "link"
)

// Mark decorates a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node is a block or inline element of a document.
type Node struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Content []Node         `json:"content,omitempty"`
}

// Document is the root of an ADF tree.
type Document struct {
	Version int    `json:"version"`
	Type    string `json:"type"`
	Content []Node `json:"content"`
}

// New returns an empty document.
func New() *Document {
	return &Document{
		Version: 1,
		Type:    typeDoc,
		Content: []Node{},
	}
}

// Paragraph appends a paragraph holding the given inline nodes. Empty text
// nodes are dropped because the Jira API rejects them.
func (d *Document) Paragraph(inlines ...Node) *Document {
	content := make([]Node, 0, len(inlines))
	for _, n := range inlines {
		if n.Type == typeText && n.Text == "" {
			continue
		}
		content = append(content, n)
	}
	d.Content = append(d.Content, Node{Type: typeParagraph, Content: content})
	return d
}

// Text is a plain text run.
func Text(s string) Node {
	return Node{Type: typeText, Text: s}
}

// Textf is Text with fmt formatting.
func Textf(format string, args ...any) Node {
	return Text(fmt.Sprintf(format, args...))
}

// Strong is a bold text run.
func Strong(s string) Node {
	return Node{Type: typeText, Text: s, Marks: []Mark{{Type: markStrong}}}
}

// Mention references a user account. Without an account id the name is
// written as plain text so the document stays valid.
func Mention(accountID, name string) Node {
	if accountID == "" {
		return Text(name)
	}
	return Node{
		Type: typeMention,
		Attrs: map[string]any{
			"id":   accountID,
			"text": "@" + name,
		},
	}
}

// Link is a text run pointing at href.
func Link(text, href string) Node {
	if text == "" {
		text = href
	}
	return Node{
		Type:  typeText,
		Text:  text,
		Marks: []Mark{{Type: markLink, Attrs: map[string]any{"href": href}}},
	}
}

// PlainText flattens the document, one line per paragraph.
func (d *Document) PlainText() string {
	return d.render(func(n Node) string {
		if n.Type == typeMention {
			return fmt.Sprint(n.Attrs["text"])
		}
		return n.Text
	})
}

// Wiki renders the document as Jira wiki markup.
func (d *Document) Wiki() string {
	return d.render(func(n Node) string {
		if n.Type == typeMention {
			return fmt.Sprintf("[~%v]", n.Attrs["id"])
		}
		text := n.Text
		for _, m := range n.Marks {
			switch m.Type {
			case markStrong:
				text = "*" + text + "*"
			case markLink:
				text = fmt.Sprintf("[%s|%v]", text, m.Attrs["href"])
			}
		}
		return text
	})
}

func (d *Document) render(inline func(Node) string) string {
	paragraphs := make([]string, 0, len(d.Content))
	for _, block := range d.Content {
		var b strings.Builder
		for _, n := range block.Content {
			b.WriteString(inline(n))
		}
		paragraphs = append(paragraphs, b.String())
	}
	return strings.Join(paragraphs, "\n\n")
}
