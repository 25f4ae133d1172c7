// pkg/logging/logging.go - timestamped session logging for ansysdeploy
//
// Each deployment run gets its own timestamped subdirectory (YYYY-MM-DD-HHMMss)
// under the base log directory, holding a plain deploy.log and a structured
// events.jsonl for external log shippers. Old session directories are pruned
// on a retention policy.

package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/windows"

	"github.com/windowsadmins/ansysdeploy/pkg/config"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a configuration string to a LogLevel, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// LogEntry is one structured record in events.jsonl.
type LogEntry struct {
	Time       int64                  `json:"time"`
	Timestamp  string                 `json:"timestamp"`
	Level      string                 `json:"level"`
	Message    string                 `json:"message"`
	Component  string                 `json:"component"`
	PID        int64                  `json:"pid"`
	Hostname   string                 `json:"hostname"`
	SessionID  string                 `json:"session_id"`
	Phase      string                 `json:"phase,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// RetentionPolicy defines log retention rules.
type RetentionPolicy struct {
	KeepRuns   int // Keep last N session directories
	MaxAgeDays int // Maximum age in days before deletion
}

// LoggerConfig holds configuration for the session logger.
type LoggerConfig struct {
	BaseDir       string
	SessionID     string
	Component     string
	Retention     RetentionPolicy
	EnableJSON    bool
	EnableConsole bool
	Level         LogLevel
}

// Logger encapsulates session logging with a timestamped directory.
type Logger struct {
	mu           sync.RWMutex
	logger       *log.Logger
	logLevel     LogLevel
	logFile      *os.File
	jsonFile     *os.File
	config       LoggerConfig
	sessionStart time.Time
	logDir       string
	hostname     string
	phase        string
}

var (
	instance *Logger
	once     sync.Once
)

// DefaultRetentionPolicy returns sensible defaults for log retention.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		KeepRuns:   20,
		MaxAgeDays: 90,
	}
}

// Init initializes the singleton Logger based on the provided configuration.
// It must be called before any logging functions are used. When disableFiles
// is set, only console output is produced (the --disable-logging request).
func Init(cfg *config.Configuration, disableFiles bool) error {
	var initErr error
	once.Do(func() {
		logCfg := LoggerConfig{
			BaseDir:       `C:\ProgramData\AnsysDeploy\logs`,
			SessionID:     generateSessionID(),
			Component:     "ansysdeploy",
			Retention:     DefaultRetentionPolicy(),
			EnableJSON:    !disableFiles,
			EnableConsole: true,
			Level:         ParseLevel(cfg.LogLevel),
		}
		if cfg.Debug {
			logCfg.Level = LevelDebug
		}
		if disableFiles {
			instance = &Logger{
				config:       logCfg,
				logLevel:     logCfg.Level,
				sessionStart: time.Now(),
				logger:       log.New(os.Stdout, "", 0),
			}
			return
		}
		instance, initErr = newLoggerWithConfig(logCfg)
	})
	return initErr
}

// generateSessionID creates a unique session identifier.
func generateSessionID() string {
	return fmt.Sprintf("ansysdeploy-%d-%s", os.Getpid(),
		time.Now().Format("2006-01-02-150405"))
}

// createTimestampedLogDir creates a timestamped log directory.
func createTimestampedLogDir(baseDir string, sessionStart time.Time) (string, error) {
	timestamp := sessionStart.Format("2006-01-02-150405")
	logDir := filepath.Join(baseDir, timestamp)

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create timestamped log directory %s: %w", logDir, err)
	}

	return logDir, nil
}

// newLoggerWithConfig creates a new Logger instance with explicit configuration.
func newLoggerWithConfig(cfg LoggerConfig) (*Logger, error) {
	sessionStart := time.Now()

	if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base log directory: %w", err)
	}

	logDir, err := createTimestampedLogDir(cfg.BaseDir, sessionStart)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	logger := &Logger{
		config:       cfg,
		logLevel:     cfg.Level,
		sessionStart: sessionStart,
		logDir:       logDir,
		hostname:     hostname,
	}

	if err := logger.initializeLogFiles(); err != nil {
		return nil, err
	}

	if cfg.EnableConsole {
		multiWriter := io.MultiWriter(os.Stdout, logger.logFile)
		logger.logger = log.New(multiWriter, "", 0)
	} else {
		logger.logger = log.New(logger.logFile, "", 0)
	}

	logger.performCleanup()

	return logger, nil
}

// initializeLogFiles creates and opens all log files.
func (l *Logger) initializeLogFiles() error {
	var err error

	logFilePath := filepath.Join(l.logDir, "deploy.log")
	l.logFile, err = os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open main log file: %w", err)
	}

	if l.config.EnableJSON {
		jsonPath := filepath.Join(l.logDir, "events.jsonl")
		l.jsonFile, err = os.OpenFile(jsonPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open JSON log file: %w", err)
		}
	}

	return nil
}

// performCleanup removes old session directories based on retention policy.
func (l *Logger) performCleanup() {
	baseDir := l.config.BaseDir
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return
	}

	var logDirs []os.DirEntry
	now := time.Now()

	for _, entry := range entries {
		if entry.IsDir() {
			// Session dir names are YYYY-MM-DD-HHMMss
			if len(entry.Name()) == 17 && strings.Count(entry.Name(), "-") == 3 {
				logDirs = append(logDirs, entry)
			}
		}
	}

	sort.Slice(logDirs, func(i, j int) bool {
		return logDirs[i].Name() > logDirs[j].Name() // Newest first
	})

	retention := l.config.Retention
	toDelete := []string{}

	if len(logDirs) > retention.KeepRuns {
		for i := retention.KeepRuns; i < len(logDirs); i++ {
			toDelete = append(toDelete, logDirs[i].Name())
		}
	}

	maxAge := time.Duration(retention.MaxAgeDays) * 24 * time.Hour
	for _, dir := range logDirs {
		dirPath := filepath.Join(baseDir, dir.Name())
		if info, err := os.Stat(dirPath); err == nil {
			if now.Sub(info.ModTime()) > maxAge {
				toDelete = append(toDelete, dir.Name())
			}
		}
	}

	deletedDirs := make(map[string]bool)
	for _, dirName := range toDelete {
		if !deletedDirs[dirName] && dirName != filepath.Base(l.logDir) {
			os.RemoveAll(filepath.Join(baseDir, dirName)) // Best effort
			deletedDirs[dirName] = true
		}
	}
}

// SetPhase tags subsequent structured entries with the active deployment phase.
func SetPhase(phase string) {
	if instance == nil {
		return
	}
	instance.mu.Lock()
	instance.phase = phase
	instance.mu.Unlock()
}

// LogDir returns the current session's log directory, or "" when file
// logging is disabled.
func LogDir() string {
	if instance == nil {
		return ""
	}
	return instance.logDir
}

// createLogEntry creates a structured log entry.
func (l *Logger) createLogEntry(level LogLevel, message string, properties map[string]interface{}) LogEntry {
	now := time.Now()

	return LogEntry{
		Time:       now.Unix(),
		Timestamp:  now.Format(time.RFC3339),
		Level:      level.String(),
		Message:    message,
		Component:  l.config.Component,
		PID:        int64(os.Getpid()),
		Hostname:   l.hostname,
		SessionID:  l.config.SessionID,
		Phase:      l.phase,
		Properties: properties,
	}
}

// CloseLogger closes all log files if they're open.
func CloseLogger() {
	if instance == nil {
		return
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()

	if instance.logFile != nil {
		if err := instance.logFile.Close(); err != nil {
			fmt.Printf("Failed to close main log file: %v\n", err)
		}
		instance.logFile = nil
	}

	if instance.jsonFile != nil {
		if err := instance.jsonFile.Close(); err != nil {
			fmt.Printf("Failed to close JSON log file: %v\n", err)
		}
		instance.jsonFile = nil
	}
}

// logMessage is the core logging method that writes to all configured outputs.
func (l *Logger) logMessage(level LogLevel, message string, keyValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logger == nil {
		fmt.Printf("LOGGING NOT INITIALIZED: %s %s %v\n", level.String(), message, keyValues)
		return
	}

	if level > l.logLevel {
		return
	}

	properties := make(map[string]interface{})
	for i := 0; i < len(keyValues); i += 2 {
		if i+1 < len(keyValues) {
			key := fmt.Sprintf("%v", keyValues[i])
			properties[key] = keyValues[i+1]
		}
	}

	entry := l.createLogEntry(level, message, properties)

	l.writeMainLog(entry, keyValues)

	if l.config.EnableJSON && l.jsonFile != nil {
		l.writeJSONLog(entry)
	}

	l.syncFiles()
}

// writeMainLog writes to deploy.log in the traditional line format.
func (l *Logger) writeMainLog(entry LogEntry, keyValues []interface{}) {
	ts := time.Unix(entry.Time, 0).Format("2006-01-02 15:04:05")
	baseLine := fmt.Sprintf("[%s] %-5s %s", ts, entry.Level, entry.Message)

	for i := 0; i < len(keyValues); i += 2 {
		if i+1 < len(keyValues) {
			key := fmt.Sprintf("%v", keyValues[i])
			val := keyValues[i+1]
			baseLine += fmt.Sprintf(" %s=%v", key, val)
		}
	}

	if entry.Level == "ERROR" {
		baseLine = "\n----------------------------------------\n" + baseLine
	}

	l.logger.Println(baseLine)
}

// writeJSONLog writes a structured JSON log entry.
func (l *Logger) writeJSONLog(entry LogEntry) {
	if data, err := json.Marshal(entry); err == nil {
		l.jsonFile.WriteString(string(data) + "\n")
	}
}

// syncFiles forces sync on all open log files.
func (l *Logger) syncFiles() {
	if l.logFile != nil {
		l.logFile.Sync()
	}
	if l.jsonFile != nil {
		l.jsonFile.Sync()
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
)

// enableColors enables ANSI colors for the Windows console.
func enableColors() {
	handle := windows.Handle(windows.STD_OUTPUT_HANDLE)
	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err == nil {
		mode |= windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
		_ = windows.SetConsoleMode(handle, mode)
	}
}

// Info logs informational messages.
func Info(message string, keyValues ...interface{}) {
	if instance == nil {
		fmt.Printf("LOGGING NOT INITIALIZED: INFO %s %v\n", message, keyValues)
		return
	}
	instance.logMessage(LevelInfo, message, keyValues...)
}

// Debug logs debug messages.
func Debug(message string, keyValues ...interface{}) {
	if instance == nil {
		fmt.Printf("LOGGING NOT INITIALIZED: DEBUG %s %v\n", message, keyValues)
		return
	}
	instance.logMessage(LevelDebug, message, keyValues...)
}

// Warn logs warning messages.
func Warn(message string, keyValues ...interface{}) {
	if instance == nil {
		fmt.Printf("LOGGING NOT INITIALIZED: WARN %s %v\n", message, keyValues)
		return
	}
	instance.logMessage(LevelWarn, message, keyValues...)
}

// Error logs error messages.
func Error(message string, keyValues ...interface{}) {
	if instance == nil {
		fmt.Printf("LOGGING NOT INITIALIZED: ERROR %s %v\n", message, keyValues)
		return
	}
	instance.logMessage(LevelError, message, keyValues...)
}

// New creates a console-only Logger instance for early startup, before the
// session logger is initialized.
func New(verbose bool) *Logger {
	enableColors()

	output := os.Stdout
	if !verbose {
		output = os.Stderr
	}
	l := log.New(output, "", 0)
	return &Logger{
		logger:   l,
		logLevel: LevelInfo,
		logFile:  nil,
	}
}

// SetOutput changes the output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

// colorPrintf prints a colored message.
func (l *Logger) colorPrintf(color, format string, v ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ts := time.Now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, v...)
	l.logger.Printf("%s[%s] %s%s", color, ts, msg, colorReset)
}

// Printf prints a regular message.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ts := time.Now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, v...)
	l.logger.Printf("[%s] %s", ts, msg)
}

// Info prints an informational message (instance method counterpart to the package-level Info).
func (l *Logger) Info(format string, v ...interface{}) {
	l.Printf(format, v...)
}

// Success prints a success message in green.
func (l *Logger) Success(format string, v ...interface{}) {
	l.colorPrintf(colorGreen, format, v...)
}

// Error prints an error message in red.
func (l *Logger) Error(format string, v ...interface{}) {
	l.colorPrintf(colorRed, format, v...)
}

// Warning prints a warning message in yellow.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.colorPrintf(colorYellow, format, v...)
}

// Debug prints a debug message in blue.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.colorPrintf(colorBlue, format, v...)
}

// Fatal prints an error message in red and exits.
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.Error(format, v...)
	os.Exit(1)
}
