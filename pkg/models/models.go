// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// Record is one control-review row of the tracking sheet.
type Record struct {
	// Row is the 1-based sheet row the record was read from
	Row int

	// CID is the control identifier (e.g., "AC-2")
	CID string

	// DueDate is the calendar date the review is due, at midnight UTC
	DueDate time.Time

	// AssigneeName is the display name as written in the sheet
	AssigneeName string

	// AssigneeID is the ticketing account identifier; empty when unknown
	AssigneeID string

	// ManagerName and ManagerID are optional; empty when the column is not configured
	ManagerName string
	ManagerID   string

	// IssueKey is the Jira issue the reminder is posted on (e.g., "CTRL-42")
	IssueKey string

	// Status is the free-text review status from the sheet
	Status string

	// RiskKey is the key of an existing risk issue, if the sheet already links one
	RiskKey string
}

// Issue represents a Jira issue with the fields the tool reads.
type Issue struct {
	// ID is the numeric identifier assigned by Jira
	ID string

	// Key is the full issue identifier (e.g., "RISK-7")
	Key string

	// Summary is the issue's title
	Summary string

	// Status is the workflow status name (e.g., "In Review")
	Status string

	// URL is the browse link for humans
	URL string
}

// NewIssue carries the fields required to create an issue.
type NewIssue struct {
	Project     string
	Summary     string
	Description string
	Type        string
	AssigneeID  string
}
