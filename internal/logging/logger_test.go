package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name     string
		level    LogLevel
		expected slog.Level
	}{
		{name: "Debug level", level: LevelDebug, expected: slog.LevelDebug},
		{name: "Info level", level: LevelInfo, expected: slog.LevelInfo},
		{name: "Warn level", level: LevelWarn, expected: slog.LevelWarn},
		{name: "Error level", level: LevelError, expected: slog.LevelError},
		{name: "Empty defaults to Info", level: "", expected: slog.LevelInfo},
		{name: "Invalid defaults to Info", level: LogLevel("verbose"), expected: slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.level))
		})
	}
}

func TestSetupLoggerFiltersByLevel(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
		slog.SetDefault(originalLogger)
	}()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelWarn, FormatText)

	Info("row skipped", "row", 4)
	assert.Empty(t, buf.String())

	Warn("row skipped", "row", 4)
	output := buf.String()
	assert.Contains(t, output, "WARN")
	assert.Contains(t, output, "row skipped")
	assert.Contains(t, output, "row=4")
}

func TestSetupLoggerJSONFormat(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
		slog.SetDefault(originalLogger)
	}()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelDebug, FormatJSON)
	Debug("comment posted", "issue", "CTRL-12")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "comment posted", record["msg"])
	assert.Equal(t, "CTRL-12", record["issue"])
}

func TestLoggingFunctions(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
		slog.SetDefault(originalLogger)
	}()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelDebug, FormatText)

	tests := []struct {
		name    string
		logFunc func(string, ...any)
		level   string
	}{
		{name: "Debug logging", logFunc: Debug, level: "DEBUG"},
		{name: "Info logging", logFunc: Info, level: "INFO"},
		{name: "Warn logging", logFunc: Warn, level: "WARN"},
		{name: "Error logging", logFunc: Error, level: "ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf.Reset()
			tc.logFunc("message", "key", "value")

			output := buf.String()
			assert.True(t, strings.Contains(output, "level="+tc.level), output)
			assert.Contains(t, output, "key=value")
		})
	}
}

func TestGetLogger(t *testing.T) {
	require.NotNil(t, GetLogger())
}

func TestMaskSensitive(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty string", input: "", expected: "<not set>"},
		{name: "Short string", input: "abc", expected: "<set>"},
		{name: "Exactly 4 characters", input: "abcd", expected: "<set>"},
		{name: "Token-like string", input: "2Dn5j8fk39Dkf0s", expected: "2Dn5...***"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MaskSensitive(tc.input))
		})
	}
}
