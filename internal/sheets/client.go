// Package sheets reads and writes the tracking spreadsheet through the
// Google Sheets v4 API.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/danielolaszy/sheetsync/internal/config"
	"github.com/danielolaszy/sheetsync/internal/logging"
)

// ErrNotFound is returned by FindRow when no row holds the searched text.
var ErrNotFound = errors.New("no matching row")

// Client reads rows from a spreadsheet, addressing tabs by their position.
type Client struct {
	service       *sheets.Service
	spreadsheetID string
	limiter       *rate.Limiter

	mu     sync.Mutex
	titles map[int]string
}

// NewClient authenticates with the credentials file in cfg and returns a
// client whose reads are spaced by cfg.ReadInterval.
func NewClient(ctx context.Context, cfg config.SheetConfig) (*Client, error) {
	data, err := os.ReadFile(cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	ts, err := tokenSource(ctx, data, cfg.TokenFile)
	if err != nil {
		return nil, err
	}

	svc, err := sheets.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewClientFromService(svc, cfg.ID, cfg.ReadInterval), nil
}

// NewClientFromService wraps an existing service.
func NewClientFromService(svc *sheets.Service, spreadsheetID string, readInterval time.Duration) *Client {
	limit := rate.Inf
	if readInterval > 0 {
		limit = rate.Every(readInterval)
	}

	return &Client{
		service:       svc,
		spreadsheetID: spreadsheetID,
		limiter:       rate.NewLimiter(limit, 1),
		titles:        make(map[int]string),
	}
}

// tokenSource accepts a service-account key, or an installed-app OAuth client
// together with a previously authorized token file.
func tokenSource(ctx context.Context, credentials []byte, tokenFile string) (oauth2.TokenSource, error) {
	if jwt, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope); err == nil {
		return jwt.TokenSource(ctx), nil
	}

	oauthConfig, err := google.ConfigFromJSON(credentials, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unsupported credentials format: %w", err)
	}
	if tokenFile == "" {
		return nil, fmt.Errorf("oauth client credentials need a token file (SHEET_TOKEN)")
	}

	tokenData, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenData, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return oauthConfig.TokenSource(ctx, &tok), nil
}

// ReadRow returns the cells of a 1-based row as displayed in the sheet.
// Trailing empty cells are not included.
func (c *Client) ReadRow(ctx context.Context, tab, row int) ([]string, error) {
	title, err := c.tabTitle(ctx, tab)
	if err != nil {
		return nil, err
	}

	rows, err := c.read(ctx, fmt.Sprintf("%s!%d:%d", quoteTitle(title), row, row))
	if err != nil {
		return nil, fmt.Errorf("failed to read row %d of %q: %w", row, title, err)
	}
	if len(rows) == 0 {
		return []string{}, nil
	}
	return rows[0], nil
}

// FindRow returns the first row of tab whose cell in column col, trimmed,
// equals text. It returns ErrNotFound when there is none.
func (c *Client) FindRow(ctx context.Context, tab, col int, text string) ([]string, error) {
	title, err := c.tabTitle(ctx, tab)
	if err != nil {
		return nil, err
	}

	rows, err := c.read(ctx, quoteTitle(title))
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", title, err)
	}

	for _, row := range rows {
		if col < len(row) && strings.TrimSpace(row[col]) == text {
			return row, nil
		}
	}
	return nil, fmt.Errorf("%q in column %s of %q: %w", text, ColumnLetter(col), title, ErrNotFound)
}

// WriteCell stores value in the cell at a 1-based row and zero-based column.
// Values are parsed as if typed by a user, so formulas are evaluated.
func (c *Client) WriteCell(ctx context.Context, tab, row, col int, value string) error {
	title, err := c.tabTitle(ctx, tab)
	if err != nil {
		return err
	}

	cell := fmt.Sprintf("%s!%s%d", quoteTitle(title), ColumnLetter(col), row)
	body := &sheets.ValueRange{Values: [][]interface{}{{value}}}

	_, err = c.service.Spreadsheets.Values.Update(c.spreadsheetID, cell, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", cell, err)
	}

	logging.Debug("cell updated", "cell", cell)
	return nil
}

func (c *Client) read(ctx context.Context, rng string) ([][]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	logging.Debug("reading range", "range", rng)
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		rows[i] = make([]string, len(values))
		for j, v := range values {
			rows[i][j] = fmt.Sprint(v)
		}
	}
	return rows, nil
}

// tabTitle maps a tab position to its title, loading all titles on first use.
func (c *Client) tabTitle(ctx context.Context, tab int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.titles) == 0 {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
		spreadsheet, err := c.service.Spreadsheets.Get(c.spreadsheetID).
			Fields("sheets.properties").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("failed to fetch spreadsheet %s: %w", c.spreadsheetID, err)
		}
		for _, s := range spreadsheet.Sheets {
			if s.Properties != nil {
				c.titles[int(s.Properties.Index)] = s.Properties.Title
			}
		}
	}

	title, ok := c.titles[tab]
	if !ok {
		return "", fmt.Errorf("spreadsheet %s has no tab at index %d", c.spreadsheetID, tab)
	}
	return title, nil
}

// ColumnLetter is the inverse of config.ColumnIndex for columns A to Z.
func ColumnLetter(col int) string {
	return string(rune('A' + col))
}

// HyperlinkFormula returns a formula that displays text linking to url.
func HyperlinkFormula(url, text string) string {
	escape := func(s string) string { return strings.ReplaceAll(s, `"`, `""`) }
	return fmt.Sprintf(`=HYPERLINK("%s","%s")`, escape(url), escape(text))
}

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
