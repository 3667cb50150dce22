package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kyleking/gh-star-scout/internal/config"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

const (
	logDirPerm  = 0755
	logFilePerm = 0644

	callerSkip = 3
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Logger provides structured logging capabilities.
// A nil *Logger is valid and discards everything.
type Logger struct {
	level      LogLevel
	format     string
	output     io.Writer
	file       *os.File
	mu         *sync.Mutex
	fields     map[string]interface{}
	showCaller bool
	now        func() time.Time
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// InitializeLogger replaces the global logger with one built from cfg
func InitializeLogger(cfg config.LoggingConfig) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return err
	}

	SetLogger(logger)

	return nil
}

// SetLogger installs logger as the global logger, closing the previous one
func SetLogger(logger *Logger) {
	globalMu.Lock()
	previous := globalLogger
	globalLogger = logger
	globalMu.Unlock()

	if previous != nil && previous != logger {
		_ = previous.Close()
	}
}

// NewLogger creates a new logger with the given configuration
func NewLogger(cfg config.LoggingConfig) (*Logger, error) {
	level := parseLogLevel(cfg.Level)

	var output io.Writer

	var file *os.File

	switch strings.ToLower(cfg.Output) {
	case "stdout":
		output = os.Stdout
	case "stderr", "":
		output = os.Stderr
	case "file":
		if cfg.File == "" {
			return nil, errors.New("log file path is required when output is 'file'")
		}

		if err := os.MkdirAll(filepath.Dir(cfg.File), logDirPerm); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		file = f
		output = f
	default:
		return nil, fmt.Errorf("invalid log output: %s", cfg.Output)
	}

	logger := New(output, level, cfg.Format)
	logger.file = file
	logger.showCaller = cfg.AddSource || level == DebugLevel

	return logger, nil
}

// New creates a logger writing to w
func New(w io.Writer, level LogLevel, format string) *Logger {
	return &Logger{
		level:  level,
		format: strings.ToLower(format),
		output: w,
		mu:     &sync.Mutex{},
		fields: make(map[string]interface{}),
		now:    time.Now,
	}
}

// parseLogLevel parses a string log level into LogLevel
func parseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l *Logger) clone(extra int) *Logger {
	fields := make(map[string]interface{}, len(l.fields)+extra)
	for k, v := range l.fields {
		fields[k] = v
	}

	return &Logger{
		level:      l.level,
		format:     l.format,
		output:     l.output,
		file:       l.file,
		mu:         l.mu,
		fields:     fields,
		showCaller: l.showCaller,
		now:        l.now,
	}
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	if l == nil {
		return nil
	}

	newLogger := l.clone(1)
	newLogger.fields[key] = value

	return newLogger
}

// WithFields adds multiple fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	if l == nil {
		return nil
	}

	newLogger := l.clone(len(fields))
	for k, v := range fields {
		newLogger.fields[k] = v
	}

	return newLogger
}

// WithError adds an error to the logger context
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	return l.WithField("error", err.Error())
}

// Enabled reports whether messages at level would be written
func (l *Logger) Enabled(level LogLevel) bool {
	return l != nil && level >= l.level
}

// log writes a log entry at the specified level; keyvals are alternating key/value pairs
func (l *Logger) log(level LogLevel, message string, err error, keyvals []interface{}) {
	if !l.Enabled(level) {
		return
	}

	fields := l.fields
	if len(keyvals) > 0 {
		fields = l.clone(len(keyvals) / 2).fields
		for i := 0; i < len(keyvals); i += 2 {
			key := fmt.Sprint(keyvals[i])
			if i+1 < len(keyvals) {
				fields[key] = keyvals[i+1]
			} else {
				fields[key] = "(missing)"
			}
		}
	}

	entry := LogEntry{
		Timestamp: l.now().Format(time.RFC3339),
		Level:     level.String(),
		Message:   message,
		Fields:    fields,
	}

	if err != nil {
		entry.Error = err.Error()
	}

	if l.showCaller {
		entry.Caller = getCaller()
	}

	var output string

	if l.format == "json" {
		data, _ := json.Marshal(entry)
		output = string(data)
	} else {
		output = formatText(entry)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.output, output)
}

// formatText formats a log entry as human-readable text with fields in key order
func formatText(entry LogEntry) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[%s] %s", entry.Timestamp, entry.Level))

	if entry.Caller != "" {
		parts = append(parts, fmt.Sprintf("(%s)", entry.Caller))
	}

	parts = append(parts, entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		fieldParts := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}

		parts = append(parts, fmt.Sprintf("{%s}", strings.Join(fieldParts, " ")))
	}

	if entry.Error != "" {
		parts = append(parts, "error="+entry.Error)
	}

	return strings.Join(parts, " ")
}

// getCaller returns information about the calling function
func getCaller() string {
	_, file, line, ok := runtime.Caller(callerSkip)
	if !ok {
		return "unknown"
	}

	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// Debug logs a debug message
func (l *Logger) Debug(message string, keyvals ...interface{}) {
	l.log(DebugLevel, message, nil, keyvals)
}

// Info logs an info message
func (l *Logger) Info(message string, keyvals ...interface{}) {
	l.log(InfoLevel, message, nil, keyvals)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, keyvals ...interface{}) {
	l.log(WarnLevel, message, nil, keyvals)
}

// Error logs an error message
func (l *Logger) Error(message string, keyvals ...interface{}) {
	l.log(ErrorLevel, message, nil, keyvals)
}

// ErrorWithErr logs an error message with an associated error
func (l *Logger) ErrorWithErr(message string, err error, keyvals ...interface{}) {
	l.log(ErrorLevel, message, err, keyvals)
}

// Close closes the logger and any associated resources
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// GetLogger returns the global logger instance, which may be nil
func GetLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	return globalLogger
}

// Debug logs a debug message using the global logger
func Debug(message string, keyvals ...interface{}) {
	GetLogger().log(DebugLevel, message, nil, keyvals)
}

// Info logs an info message using the global logger
func Info(message string, keyvals ...interface{}) {
	GetLogger().log(InfoLevel, message, nil, keyvals)
}

// Warn logs a warning message using the global logger
func Warn(message string, keyvals ...interface{}) {
	GetLogger().log(WarnLevel, message, nil, keyvals)
}

// Error logs an error message using the global logger
func Error(message string, keyvals ...interface{}) {
	GetLogger().log(ErrorLevel, message, nil, keyvals)
}

// ErrorWithErr logs an error message with an associated error using the global logger
func ErrorWithErr(message string, err error, keyvals ...interface{}) {
	GetLogger().log(ErrorLevel, message, err, keyvals)
}

// WithField adds a field to the global logger context
func WithField(key string, value interface{}) *Logger {
	return GetLogger().WithField(key, value)
}

// WithFields adds multiple fields to the global logger context
func WithFields(fields map[string]interface{}) *Logger {
	return GetLogger().WithFields(fields)
}

// SetupFallbackLogger sets up a basic logger for cases where configuration fails
func SetupFallbackLogger() {
	SetLogger(New(os.Stderr, InfoLevel, "text"))
}

// Timed runs fn and logs its duration and outcome under the operation name
func Timed(operation string, fn func() error) error {
	logger := WithField("operation", operation)
	logger.Debug("Starting operation")

	start := time.Now()
	err := fn()
	duration := time.Since(start)

	if err != nil {
		logger.WithField("duration", duration).ErrorWithErr("Operation failed", err)
	} else {
		logger.WithField("duration", duration).Debug("Operation completed successfully")
	}

	return err
}
