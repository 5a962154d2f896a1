// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/danielolaszy/sheetsync/internal/reminder"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Sheet      SheetConfig
	Columns    ColumnConfig
	Jira       JiraConfig
	Risk       RiskConfig
	Thresholds reminder.Thresholds
	Templates  reminder.Templates
	Statuses   []string
}

// SheetConfig locates the tracking spreadsheet and controls how it is read.
type SheetConfig struct {
	ID           string
	Credentials  string
	TokenFile    string
	MainTab      int
	UsersTab     int
	FirstRow     int
	LastRow      int
	ReadInterval time.Duration
	DateLayouts  []string
}

// ColumnConfig maps each tracked attribute to a column letter.
type ColumnConfig struct {
	CID      string
	DueDate  string
	IssueKey string
	Status   string
	Assignee string
	Risk     string
	Manager  string
	UserName string
	UserID   string
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL        string
	Username   string
	Token      string
	APIVersion int
}

// RiskConfig describes where escalation issues are created.
type RiskConfig struct {
	Project   string
	IssueType string
	PolicyURL string
}

// Layout is ColumnConfig resolved to zero-based column indices. Manager is -1
// when no manager column is configured.
type Layout struct {
	CID      int
	DueDate  int
	IssueKey int
	Status   int
	Assignee int
	Risk     int
	Manager  int
	UserName int
	UserID   int
}

// DefaultDateLayouts are tried when parsing due-date cells. Slash dates are
// read day first; sheets written month first must set sheet.date_layouts.
var DefaultDateLayouts = []string{"2006-01-02", "2/1/2006", "2 Jan 2006", "Jan 2, 2006"}

// env names each setting can be supplied through, keyed by viper key.
var envBindings = map[string]string{
	"sheet.id":               "SHEET_ID",
	"sheet.credentials":      "SHEET_CREDENTIALS",
	"sheet.token":            "SHEET_TOKEN",
	"sheet.main_tab":         "SHEET_MAIN_TAB",
	"sheet.users_tab":        "SHEET_USERS_TAB",
	"sheet.rows":             "DATA_RANGE",
	"sheet.read_interval":    "SHEET_READ_INTERVAL",
	"sheet.date_layouts":     "SHEET_DATE_LAYOUTS",
	"columns.cid":            "CID",
	"columns.due_date":       "DUE_DATE",
	"columns.issue_key":      "JIRA_ISSUE_KEY",
	"columns.status":         "TICKET_STATUS",
	"columns.assignee":       "ASSIGNEE",
	"columns.risk":           "RISK_ISSUE",
	"columns.manager":        "MANAGER",
	"columns.user_name":      "USER_NAME",
	"columns.user_id":        "USER_ID",
	"jira.url":               "JIRA_URL",
	"jira.username":          "JIRA_USERNAME",
	"jira.token":             "JIRA_TOKEN",
	"jira.api_version":       "JIRA_API_VERSION",
	"risk.project":           "RISK_PROJECT",
	"risk.issue_type":        "RISK_ISSUE_TYPE",
	"risk.policy_url":        "RISK_POLICY_URL",
	"thresholds.week_from":   "OVERDUE_WEEK_FROM",
	"thresholds.week_to":     "OVERDUE_WEEK_TO",
	"thresholds.escalate_at": "ESCALATE_AT",
	"statuses":               "TRACKED_STATUSES",
}

// LoadConfig reads configuration from the environment and, when present, a
// YAML file. An empty path looks for sheetsync.yaml in the working directory
// and silently continues without one.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetDefault("sheet.read_interval", "1s")
	v.SetDefault("jira.api_version", 3)
	defaults := reminder.DefaultThresholds()
	v.SetDefault("thresholds.week_from", defaults.WeekFrom)
	v.SetDefault("thresholds.week_to", defaults.WeekTo)
	v.SetDefault("thresholds.escalate_at", defaults.EscalateAt)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("sheetsync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	config, invalid := build(v)

	if err := validateConfig(v, config, invalid); err != nil {
		return nil, err
	}

	return config, nil
}

// build copies viper values into a Config. Values that cannot be parsed are
// reported rather than returned as an error so that validation can list
// every problem at once.
func build(v *viper.Viper) (*Config, []string) {
	var invalid []string

	config := &Config{
		Sheet: SheetConfig{
			ID:           v.GetString("sheet.id"),
			Credentials:  v.GetString("sheet.credentials"),
			TokenFile:    v.GetString("sheet.token"),
			MainTab:      intSetting(v, "sheet.main_tab", &invalid),
			UsersTab:     intSetting(v, "sheet.users_tab", &invalid),
			ReadInterval: durationSetting(v, "sheet.read_interval", &invalid),
			DateLayouts:  stringList(v, "sheet.date_layouts"),
		},
		Columns: ColumnConfig{
			CID:      v.GetString("columns.cid"),
			DueDate:  v.GetString("columns.due_date"),
			IssueKey: v.GetString("columns.issue_key"),
			Status:   v.GetString("columns.status"),
			Assignee: v.GetString("columns.assignee"),
			Risk:     v.GetString("columns.risk"),
			Manager:  v.GetString("columns.manager"),
			UserName: v.GetString("columns.user_name"),
			UserID:   v.GetString("columns.user_id"),
		},
		Jira: JiraConfig{
			URL:        strings.TrimRight(v.GetString("jira.url"), "/"),
			Username:   v.GetString("jira.username"),
			Token:      v.GetString("jira.token"),
			APIVersion: intSetting(v, "jira.api_version", &invalid),
		},
		Risk: RiskConfig{
			Project:   v.GetString("risk.project"),
			IssueType: v.GetString("risk.issue_type"),
			PolicyURL: v.GetString("risk.policy_url"),
		},
		Thresholds: reminder.Thresholds{
			WeekFrom:   intSetting(v, "thresholds.week_from", &invalid),
			WeekTo:     intSetting(v, "thresholds.week_to", &invalid),
			EscalateAt: intSetting(v, "thresholds.escalate_at", &invalid),
		},
		Templates: reminder.Templates{
			Upcoming:        v.GetString("templates.upcoming"),
			DueToday:        v.GetString("templates.due_today"),
			OverdueWeek:     v.GetString("templates.overdue_week"),
			OverdueEscalate: v.GetString("templates.overdue_escalate"),
			RiskSummary:     v.GetString("templates.risk_summary"),
			RiskDescription: v.GetString("templates.risk_description"),
		},
		Statuses: stringList(v, "statuses"),
	}

	if len(config.Sheet.DateLayouts) == 0 {
		config.Sheet.DateLayouts = DefaultDateLayouts
	}

	if rows := v.GetString("sheet.rows"); rows != "" {
		first, last, err := ParseRowRange(rows)
		if err != nil {
			invalid = append(invalid, fmt.Sprintf("DATA_RANGE: %v", err))
		} else {
			config.Sheet.FirstRow, config.Sheet.LastRow = first, last
		}
	}

	return config, invalid
}

// stringList reads a list setting. Environment values are comma separated so
// entries may contain spaces (e.g. "to do").
func stringList(v *viper.Viper, key string) []string {
	var items []string
	switch raw := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		items = strings.Split(raw, ",")
	default:
		items = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// intSetting reads an integer setting, reporting values that are not numbers
// instead of reading them as zero.
func intSetting(v *viper.Viper, key string, invalid *[]string) int {
	n, err := cast.ToIntE(v.Get(key))
	if err != nil {
		*invalid = append(*invalid, fmt.Sprintf("%s: %q is not a number", envBindings[key], v.GetString(key)))
		return 0
	}
	return n
}

func durationSetting(v *viper.Viper, key string, invalid *[]string) time.Duration {
	d, err := cast.ToDurationE(v.Get(key))
	if err != nil {
		*invalid = append(*invalid, fmt.Sprintf("%s: %q is not a duration", envBindings[key], v.GetString(key)))
		return 0
	}
	return d
}

// validateConfig ensures that all required configuration values are provided
// and well formed, listing every problem in a single error.
func validateConfig(v *viper.Viper, config *Config, invalid []string) error {
	var missingVars []string

	required := map[string]string{
		"sheet.id":          config.Sheet.ID,
		"sheet.credentials": config.Sheet.Credentials,
		"sheet.rows":        v.GetString("sheet.rows"),
		"columns.cid":       config.Columns.CID,
		"columns.due_date":  config.Columns.DueDate,
		"columns.issue_key": config.Columns.IssueKey,
		"columns.status":    config.Columns.Status,
		"columns.assignee":  config.Columns.Assignee,
		"columns.risk":      config.Columns.Risk,
		"columns.user_name": config.Columns.UserName,
		"columns.user_id":   config.Columns.UserID,
		"risk.project":      config.Risk.Project,
		"risk.issue_type":   config.Risk.IssueType,
		"risk.policy_url":   config.Risk.PolicyURL,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			missingVars = append(missingVars, envBindings[key])
		}
	}
	for _, key := range []string{"sheet.main_tab", "sheet.users_tab"} {
		if !v.IsSet(key) {
			missingVars = append(missingVars, envBindings[key])
		}
	}

	if err := ValidateJiraConfig(config); err != nil {
		var missing *MissingError
		if errors.As(err, &missing) {
			missingVars = append(missingVars, missing.Vars...)
		}
	}

	letters := map[string]string{
		"CID":            config.Columns.CID,
		"DUE_DATE":       config.Columns.DueDate,
		"JIRA_ISSUE_KEY": config.Columns.IssueKey,
		"TICKET_STATUS":  config.Columns.Status,
		"ASSIGNEE":       config.Columns.Assignee,
		"RISK_ISSUE":     config.Columns.Risk,
		"MANAGER":        config.Columns.Manager,
		"USER_NAME":      config.Columns.UserName,
		"USER_ID":        config.Columns.UserID,
	}
	for env, letter := range letters {
		if letter == "" {
			continue
		}
		if _, err := ColumnIndex(letter); err != nil {
			invalid = append(invalid, fmt.Sprintf("%s: %v", env, err))
		}
	}

	if config.Sheet.MainTab < 0 {
		invalid = append(invalid, "SHEET_MAIN_TAB: must not be negative")
	}
	if config.Sheet.UsersTab < 0 {
		invalid = append(invalid, "SHEET_USERS_TAB: must not be negative")
	}
	if config.Sheet.ReadInterval < 0 {
		invalid = append(invalid, "SHEET_READ_INTERVAL: must not be negative")
	}
	if config.Jira.APIVersion != 2 && config.Jira.APIVersion != 3 {
		invalid = append(invalid, fmt.Sprintf("JIRA_API_VERSION: must be 2 or 3, got %d", config.Jira.APIVersion))
	}
	if err := config.Thresholds.Validate(); err != nil {
		invalid = append(invalid, fmt.Sprintf("thresholds: %v", err))
	}

	return newValidationError(missingVars, invalid)
}

// MissingError lists required environment variables that were not set.
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required environment variables: %v", e.Vars)
}

func newValidationError(missing, invalid []string) error {
	var errs []error
	if len(missing) > 0 {
		sort.Strings(missing)
		errs = append(errs, &MissingError{Vars: missing})
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		errs = append(errs, fmt.Errorf("invalid settings: %s", strings.Join(invalid, "; ")))
	}
	return errors.Join(errs...)
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	if len(missingVars) > 0 {
		return &MissingError{Vars: missingVars}
	}

	return nil
}

// ColumnIndex converts a column letter to its zero-based index: uppercase
// letter minus 'A'. Only single letters A to Z are accepted.
func ColumnIndex(letter string) (int, error) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return 0, fmt.Errorf("column must be a single letter A-Z, got %q", letter)
	}
	return int(letter[0] - 'A'), nil
}

// ParseRowRange parses "start:end" into inclusive 1-based row numbers.
func ParseRowRange(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected start:end, got %q", s)
	}

	first, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start row %q", parts[0])
	}
	last, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end row %q", parts[1])
	}

	if first < 1 {
		return 0, 0, fmt.Errorf("start row must be at least 1, got %d", first)
	}
	if last < first {
		return 0, 0, fmt.Errorf("end row %d is before start row %d", last, first)
	}
	return first, last, nil
}

// Layout resolves the column letters. It must only be called on a validated
// configuration.
func (c ColumnConfig) Layout() Layout {
	index := func(letter string) int {
		if letter == "" {
			return -1
		}
		i, _ := ColumnIndex(letter)
		return i
	}
	return Layout{
		CID:      index(c.CID),
		DueDate:  index(c.DueDate),
		IssueKey: index(c.IssueKey),
		Status:   index(c.Status),
		Assignee: index(c.Assignee),
		Risk:     index(c.Risk),
		Manager:  index(c.Manager),
		UserName: index(c.UserName),
		UserID:   index(c.UserID),
	}
}
