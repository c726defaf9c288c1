package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel type
type LogLevel int

// Log levels, from the most verbose to the least verbose
const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
)

// String returns the label printed in front of every message
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DEBUG
	case "warning", "warn":
		return WARNING
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger struct
type Logger struct {
	logger   *log.Logger
	logLevel LogLevel
	prefix   string
}

// NewLogger creates a new logger instance writing to stdout
func NewLogger(level string) *Logger {
	return NewLoggerWithWriter(level, os.Stdout)
}

// NewLoggerWithWriter creates a logger writing to w
func NewLoggerWithWriter(level string, w io.Writer) *Logger {
	return &Logger{
		logger:   log.New(w, "", log.Ldate|log.Ltime),
		logLevel: ParseLogLevel(level),
	}
}

// Named returns a logger that prefixes every message with the component name.
// Both loggers share the underlying writer.
func (l *Logger) Named(component string) *Logger {
	prefix := component
	if l.prefix != "" {
		prefix = l.prefix + "." + component
	}
	return &Logger{
		logger:   l.logger,
		logLevel: l.logLevel,
		prefix:   prefix,
	}
}

func (l *Logger) print(level LogLevel, msg string) {
	if level < l.logLevel {
		return
	}
	if l.prefix != "" {
		l.logger.Println(level.String() + ": [" + l.prefix + "] " + msg)
		return
	}
	l.logger.Println(level.String() + ": " + msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.print(DEBUG, msg)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.print(INFO, msg)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.print(WARNING, msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.print(ERROR, msg)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...any) {
	if DEBUG >= l.logLevel {
		l.print(DEBUG, fmt.Sprintf(format, args...))
	}
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...any) {
	l.print(INFO, fmt.Sprintf(format, args...))
}

// Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...any) {
	l.print(WARNING, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) {
	l.print(ERROR, fmt.Sprintf(format, args...))
}
