// pkg/logging/logging_test.go

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelWarn, ParseLevel("Warning"))
	assert.Equal(t, LevelDebug, ParseLevel(" debug "))
	assert.Equal(t, LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, LevelInfo, ParseLevel(""), "unknown levels default to INFO")
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestSessionLoggerWritesFiles(t *testing.T) {
	base := t.TempDir()
	logger, err := newLoggerWithConfig(LoggerConfig{
		BaseDir:    base,
		SessionID:  "test-session",
		Component:  "ansysdeploy",
		Retention:  DefaultRetentionPolicy(),
		EnableJSON: true,
		Level:      LevelDebug,
	})
	require.NoError(t, err)

	logger.logMessage(LevelInfo, "Starting deployment phase", "type", "Install")
	logger.logMessage(LevelDebug, "detail line")

	data, err := os.ReadFile(filepath.Join(logger.logDir, "deploy.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Starting deployment phase")
	assert.Contains(t, string(data), "type=Install")

	jsonData, err := os.ReadFile(filepath.Join(logger.logDir, "events.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(jsonData)), "\n")
	require.Len(t, lines, 2)

	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "Starting deployment phase", entry.Message)
	assert.Equal(t, "test-session", entry.SessionID)
	assert.Equal(t, "Install", entry.Properties["type"])
}

func TestSessionLoggerHonorsLevel(t *testing.T) {
	base := t.TempDir()
	logger, err := newLoggerWithConfig(LoggerConfig{
		BaseDir:    base,
		SessionID:  "test-session",
		Component:  "ansysdeploy",
		Retention:  DefaultRetentionPolicy(),
		EnableJSON: false,
		Level:      LevelWarn,
	})
	require.NoError(t, err)

	logger.logMessage(LevelDebug, "too chatty")
	logger.logMessage(LevelError, "something failed")

	data, err := os.ReadFile(filepath.Join(logger.logDir, "deploy.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "too chatty")
	assert.Contains(t, string(data), "something failed")
}

func TestRetentionPrunesOldSessions(t *testing.T) {
	base := t.TempDir()

	// Older session directories in the expected name format.
	old := []string{"2020-01-01-010101", "2020-01-02-010101", "2020-01-03-010101"}
	for _, name := range old {
		require.NoError(t, os.MkdirAll(filepath.Join(base, name), 0755))
	}

	logger, err := newLoggerWithConfig(LoggerConfig{
		BaseDir:   base,
		SessionID: "test-session",
		Component: "ansysdeploy",
		Retention: RetentionPolicy{KeepRuns: 2, MaxAgeDays: 3650},
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(base)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, filepath.Base(logger.logDir), "the active session dir always survives")
	assert.NotContains(t, names, "2020-01-01-010101")
	assert.NotContains(t, names, "2020-01-02-010101")
}

func TestConsoleLoggerPrintf(t *testing.T) {
	logger := New(true)
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	logger.Printf("hello %s", "world")

	assert.Contains(t, buf.String(), "hello world")
}
