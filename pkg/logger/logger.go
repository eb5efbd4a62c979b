package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents the available log levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ParseLogLevel converts a settings or flag value into a LogLevel, defaulting to info
func ParseLogLevel(value string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(value))) {
	case LogLevelDebug:
		return LogLevelDebug
	case LogLevelWarn, "warning":
		return LogLevelWarn
	case LogLevelError:
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger provides a structured logger instance configured for the application
type Logger struct {
	*slog.Logger
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new structured logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(os.Stderr, level)
}

// NewLoggerWithWriter creates a logger writing to w, used by tests to capture output
func NewLoggerWithWriter(w io.Writer, level LogLevel) *Logger {
	opts := &slog.HandlerOptions{
		Level: toSlogLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize time format for readability
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "time",
					Value: slog.StringValue(a.Value.Time().Format("15:04:05")),
				}
			}
			return a
		},
	}

	handler := slog.NewTextHandler(w, opts)
	return &Logger{Logger: slog.New(handler)}
}

// NewDefaultLogger creates a logger with INFO level for general use
func NewDefaultLogger() *Logger {
	return NewLogger(LogLevelInfo)
}

// NewDebugLogger creates a logger with DEBUG level for development
func NewDebugLogger() *Logger {
	return NewLogger(LogLevelDebug)
}

// WithComponent creates a logger with a component context for better tracing
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
	}
}

// WithScenario tags every record with the scenario id
func (l *Logger) WithScenario(scenarioID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("scenario", scenarioID),
	}
}

// WithProvider tags every record with the provider id and model
func (l *Logger) WithProvider(providerID, model string) *Logger {
	return &Logger{
		Logger: l.Logger.With("provider", providerID, "model", model),
	}
}

// InfoWithIcon logs info message with emoji for user-friendly output
func (l *Logger) InfoWithIcon(icon string, msg string, args ...any) {
	l.Info(icon+" "+msg, args...)
}

// WarnWithIcon logs warning message with emoji for user-friendly output
func (l *Logger) WarnWithIcon(icon string, msg string, args ...any) {
	l.Warn(icon+" "+msg, args...)
}

// ErrorWithIcon logs error message with emoji for user-friendly output
func (l *Logger) ErrorWithIcon(icon string, msg string, args ...any) {
	l.Error(icon+" "+msg, args...)
}

// DebugWithIcon logs debug message with emoji for development
func (l *Logger) DebugWithIcon(icon string, msg string, args ...any) {
	l.Debug(icon+" "+msg, args...)
}

// Default logger instance - single instance for the entire application
var Default = NewDefaultLogger()

// SetGlobalLogLevel updates the global default logger with a new log level
// This affects all component loggers created after this call
func SetGlobalLogLevel(level LogLevel) {
	Default = NewLogger(level)
}

// NewComponentLogger creates a new logger for a specific component
func NewComponentLogger(component string) *Logger {
	return Default.WithComponent(component)
}
