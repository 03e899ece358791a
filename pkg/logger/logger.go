// Package logger provides structured logging for the payment linking engine,
// backed by logrus. Components take the Logger interface so tests can swap in
// a silent logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger interface defines the logging contract
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
	WithComponent(component string) Logger
}

// Fields represents a map of key-value pairs for structured logging
type Fields map[string]interface{}

// Level represents log levels
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Format represents log output formats
type Format string

const (
	JSONFormat Format = "json"
	TextFormat Format = "text"
)

// Config holds configuration options for the logger
type Config struct {
	Level  Level  `json:"level"`
	Format Format `json:"format"`
	// Output defaults to stderr; set File to log to a file instead
	File string `json:"file,omitempty"`
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  InfoLevel,
		Format: TextFormat,
	}
}

// Validate validates the logger configuration
func (c *Config) Validate() error {
	switch c.Level {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
	default:
		return fmt.Errorf("invalid log level: %s", c.Level)
	}

	switch c.Format {
	case JSONFormat, TextFormat:
	default:
		return fmt.Errorf("invalid log format: %s", c.Format)
	}

	return nil
}

// logrusLogger wraps a logrus.Logger to implement the Logger interface
type logrusLogger struct {
	logger *logrus.Logger
}

// entryLogger wraps a logrus.Entry so field-scoped loggers keep the interface
type entryLogger struct {
	entry *logrus.Entry
}

// NewLogger creates a new logger with the given configuration
func NewLogger(config *Config) (Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger configuration: %w", err)
	}

	log := logrus.New()

	level, err := logrus.ParseLevel(string(config.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", config.Level, err)
	}
	log.SetLevel(level)

	var writer io.Writer = os.Stderr
	if strings.TrimSpace(config.File) != "" {
		f, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.File, err)
		}
		writer = f
	}
	log.SetOutput(writer)

	if config.Format == JSONFormat {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &logrusLogger{logger: log}, nil
}

// NewSilentLogger returns a logger that discards everything, for tests
func NewSilentLogger() Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &logrusLogger{logger: log}
}

func (l *logrusLogger) Debug(args ...interface{})                 { l.logger.Debug(args...) }
func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.logger.Debugf(format, args...) }
func (l *logrusLogger) Info(args ...interface{})                  { l.logger.Info(args...) }
func (l *logrusLogger) Infof(format string, args ...interface{})  { l.logger.Infof(format, args...) }
func (l *logrusLogger) Warn(args ...interface{})                  { l.logger.Warn(args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.logger.Warnf(format, args...) }
func (l *logrusLogger) Error(args ...interface{})                 { l.logger.Error(args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.logger.Errorf(format, args...) }

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &entryLogger{entry: l.logger.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields Fields) Logger {
	return &entryLogger{entry: l.logger.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) WithError(err error) Logger {
	return &entryLogger{entry: l.logger.WithError(err)}
}

func (l *logrusLogger) WithComponent(component string) Logger {
	return l.WithField("component", component)
}

func (e *entryLogger) Debug(args ...interface{})                 { e.entry.Debug(args...) }
func (e *entryLogger) Debugf(format string, args ...interface{}) { e.entry.Debugf(format, args...) }
func (e *entryLogger) Info(args ...interface{})                  { e.entry.Info(args...) }
func (e *entryLogger) Infof(format string, args ...interface{})  { e.entry.Infof(format, args...) }
func (e *entryLogger) Warn(args ...interface{})                  { e.entry.Warn(args...) }
func (e *entryLogger) Warnf(format string, args ...interface{})  { e.entry.Warnf(format, args...) }
func (e *entryLogger) Error(args ...interface{})                 { e.entry.Error(args...) }
func (e *entryLogger) Errorf(format string, args ...interface{}) { e.entry.Errorf(format, args...) }

func (e *entryLogger) WithField(key string, value interface{}) Logger {
	return &entryLogger{entry: e.entry.WithField(key, value)}
}

func (e *entryLogger) WithFields(fields Fields) Logger {
	return &entryLogger{entry: e.entry.WithFields(logrus.Fields(fields))}
}

func (e *entryLogger) WithError(err error) Logger {
	return &entryLogger{entry: e.entry.WithError(err)}
}

func (e *entryLogger) WithComponent(component string) Logger {
	return e.WithField("component", component)
}

var (
	globalLogger Logger
	globalMu     sync.RWMutex
)

// SetGlobalLogger replaces the process-wide logger
func SetGlobalLogger(l Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// GetGlobalLogger returns the process-wide logger, creating a default one
// on first use
func GetGlobalLogger() Logger {
	globalMu.RLock()
	if globalLogger != nil {
		defer globalMu.RUnlock()
		return globalLogger
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		l, err := NewLogger(DefaultConfig())
		if err != nil {
			l = NewSilentLogger()
		}
		globalLogger = l
	}
	return globalLogger
}
