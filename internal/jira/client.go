// Package jira wraps the go-jira client with the few operations the reminder
// run needs: fetching an issue, commenting on it and creating risk issues.
package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/sheetsync/internal/adf"
	"github.com/danielolaszy/sheetsync/internal/config"
	"github.com/danielolaszy/sheetsync/internal/logging"
	"github.com/danielolaszy/sheetsync/pkg/models"
)

var (
	// ErrNotFound is returned when the issue does not exist.
	ErrNotFound = errors.New("issue not found")
	// ErrForbidden is returned when the credentials may not see or change the issue.
	ErrForbidden = errors.New("permission denied")
)

// Client handles interactions with the JIRA API.
type Client struct {
	client     *jira.Client
	baseURL    string
	apiVersion int
}

// NewClient creates a JIRA client authenticated with basic auth (username and
// API token). APIVersion 3 targets Jira Cloud and posts comments as ADF;
// version 2 targets Server/Data Center and posts wiki markup.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	if err := config.ValidateJiraConfig(&config.Config{Jira: cfg}); err != nil {
		return nil, err
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Username,
		Password: cfg.Token,
	}

	return newClient(tp.Client(), cfg)
}

func newClient(httpClient *http.Client, cfg config.JiraConfig) (*Client, error) {
	client, err := jira.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	apiVersion := cfg.APIVersion
	if apiVersion == 0 {
		apiVersion = 3
	}

	logging.Debug("jira client configured",
		"url", cfg.URL,
		"username", cfg.Username,
		"token", logging.MaskSensitive(cfg.Token),
		"api_version", apiVersion)

	return &Client{
		client:     client,
		baseURL:    cfg.URL,
		apiVersion: apiVersion,
	}, nil
}

// Myself returns the display name of the authenticated account.
func (c *Client) Myself(ctx context.Context) (string, error) {
	user, resp, err := c.client.User.GetSelfWithContext(ctx)
	if err != nil {
		return "", wrapError(resp, err, "failed to fetch current user")
	}
	return user.DisplayName, nil
}

// GetIssue fetches an issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (*models.Issue, error) {
	issue, resp, err := c.client.Issue.GetWithContext(ctx, key, &jira.GetQueryOptions{Fields: "summary,status"})
	if err != nil {
		return nil, wrapError(resp, err, "failed to fetch issue %s", key)
	}

	result := &models.Issue{
		ID:  issue.ID,
		Key: issue.Key,
		URL: c.BrowseURL(issue.Key),
	}
	if issue.Fields != nil {
		result.Summary = issue.Fields.Summary
		if issue.Fields.Status != nil {
			result.Status = issue.Fields.Status.Name
		}
	}
	return result, nil
}

// AddComment posts doc as a comment on the issue.
func (c *Client) AddComment(ctx context.Context, key string, doc *adf.Document) error {
	if c.apiVersion == 2 {
		_, resp, err := c.client.Issue.AddCommentWithContext(ctx, key, &jira.Comment{Body: doc.Wiki()})
		if err != nil {
			return wrapError(resp, err, "failed to comment on %s", key)
		}
		return nil
	}

	endpoint := fmt.Sprintf("rest/api/3/issue/%s/comment", url.PathEscape(key))
	req, err := c.client.NewRequestWithContext(ctx, http.MethodPost, endpoint, map[string]any{"body": doc})
	if err != nil {
		return fmt.Errorf("failed to build comment request for %s: %w", key, err)
	}

	var created struct {
		ID string `json:"id"`
	}
	resp, err := c.client.Do(req, &created)
	if err != nil {
		return wrapError(resp, err, "failed to comment on %s", key)
	}

	logging.Debug("comment created", "issue", key, "comment_id", created.ID)
	return nil
}

// CreateIssue creates a new issue and returns it with its assigned key.
func (c *Client) CreateIssue(ctx context.Context, req models.NewIssue) (*models.Issue, error) {
	fields := &jira.IssueFields{
		Project: jira.Project{
			Key: req.Project,
		},
		Summary:     req.Summary,
		Description: req.Description,
		Type: jira.IssueType{
			Name: req.Type,
		},
	}

	if req.AssigneeID != "" {
		if c.apiVersion == 2 {
			fields.Assignee = &jira.User{Name: req.AssigneeID}
		} else {
			fields.Assignee = &jira.User{AccountID: req.AssigneeID}
		}
	}

	created, resp, err := c.client.Issue.CreateWithContext(ctx, &jira.Issue{Fields: fields})
	if err != nil {
		return nil, wrapError(resp, err, "failed to create %s issue in %s", req.Type, req.Project)
	}

	return &models.Issue{
		ID:      created.ID,
		Key:     created.Key,
		Summary: req.Summary,
		URL:     c.BrowseURL(created.Key),
	}, nil
}

// BrowseURL returns the human-facing link to an issue.
func (c *Client) BrowseURL(key string) string {
	return c.baseURL + "/browse/" + key
}

// wrapError attaches ErrNotFound or ErrForbidden based on the HTTP status so
// callers can tell missing issues apart from transport failures.
func wrapError(resp *jira.Response, err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if resp == nil || resp.Response == nil {
		return fmt.Errorf("%s: %w", msg, err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w (status: %d)", msg, ErrForbidden, resp.StatusCode)
	default:
		return fmt.Errorf("%s: %v (status: %d)", msg, err, resp.StatusCode)
	}
}
