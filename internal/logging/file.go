package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultLogDir returns ~/.<appName>/logs.
func DefaultLogDir(appName string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "."+appName, "logs"), nil
}

// OpenLogFile opens (creating if needed) the log file for the given day in
// dir, named <appName>-YYYY-MM-DD.log. Records are appended.
func OpenLogFile(dir, appName string, day time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.log", appName, day.Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
