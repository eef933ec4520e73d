package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

// LogConfig represents logger configuration
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json or text
	Output string `json:"output"` // stdout, stderr, or file path
}

// LogFields represents structured log fields
type LogFields map[string]interface{}

// Logger interface for abstraction
type Logger interface {
	Debug(msg string, fields ...LogFields)
	Info(msg string, fields ...LogFields)
	Warn(msg string, fields ...LogFields)
	Error(msg string, err error, fields ...LogFields)
	Fatal(msg string, err error, fields ...LogFields)
	WithFields(fields LogFields) Logger
	WithContext(ctx context.Context) Logger
}

// AppLogger implements Logger interface using logrus
type AppLogger struct {
	entry *logrus.Entry
}

// InitLogger initializes the global logger
func InitLogger(config *LogConfig) error {
	logger = logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
		logger.Warnf("Invalid log level '%s', defaulting to info", config.Level)
	}
	logger.SetLevel(level)

	switch strings.ToLower(config.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		return fmt.Errorf("unsupported log format: %s", config.Format)
	}

	switch strings.ToLower(config.Output) {
	case "stdout", "":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(file)
	}

	return nil
}

// GetLogger returns a new AppLogger instance
func GetLogger() Logger {
	if logger == nil {
		log.Println("Warning: Logger not initialized, using fallback")
		InitLogger(&LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		})
	}

	return &AppLogger{
		entry: logger.WithFields(logrus.Fields{}),
	}
}

// Raw returns the underlying logrus logger for middleware that needs it.
func Raw() *logrus.Logger {
	if logger == nil {
		GetLogger()
	}
	return logger
}

func (l *AppLogger) Debug(msg string, fields ...LogFields) {
	entry := l.entry
	if len(fields) > 0 {
		entry = entry.WithFields(logrus.Fields(fields[0]))
	}
	entry.Debug(msg)
}

func (l *AppLogger) Info(msg string, fields ...LogFields) {
	entry := l.entry
	if len(fields) > 0 {
		entry = entry.WithFields(logrus.Fields(fields[0]))
	}
	entry.Info(msg)
}

func (l *AppLogger) Warn(msg string, fields ...LogFields) {
	entry := l.entry
	if len(fields) > 0 {
		entry = entry.WithFields(logrus.Fields(fields[0]))
	}
	entry.Warn(msg)
}

func (l *AppLogger) Error(msg string, err error, fields ...LogFields) {
	entry := l.entry
	if err != nil {
		entry = entry.WithError(err)
	}
	if len(fields) > 0 {
		entry = entry.WithFields(logrus.Fields(fields[0]))
	}
	entry.Error(msg)
}

func (l *AppLogger) Fatal(msg string, err error, fields ...LogFields) {
	entry := l.entry
	if err != nil {
		entry = entry.WithError(err)
	}
	if len(fields) > 0 {
		entry = entry.WithFields(logrus.Fields(fields[0]))
	}
	entry.Fatal(msg)
}

func (l *AppLogger) WithFields(fields LogFields) Logger {
	return &AppLogger{
		entry: l.entry.WithFields(logrus.Fields(fields)),
	}
}

// WithContext returns a logger enriched with request-scoped IDs.
func (l *AppLogger) WithContext(ctx context.Context) Logger {
	entry := l.entry

	if requestID := ctxString(ctx, "request_id"); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	if userID := ctxUint(ctx, "user_id"); userID != 0 {
		entry = entry.WithField("user_id", userID)
	}
	if orgID := ctxUint(ctx, "organization_id"); orgID != 0 {
		entry = entry.WithField("organization_id", orgID)
	}

	return &AppLogger{entry: entry}
}

// LogAICall logs LLM backend calls with token usage and latency.
func LogAICall(model string, tokenCount int, duration time.Duration, err error, fields ...LogFields) {
	l := GetLogger()
	logFields := LogFields{
		"model":       model,
		"token_count": tokenCount,
		"duration":    duration.String(),
	}
	if len(fields) > 0 {
		for k, v := range fields[0] {
			logFields[k] = v
		}
	}

	message := fmt.Sprintf("AI call (%s)", model)
	if err != nil {
		l.WithFields(logFields).Error(message, err)
	} else {
		l.WithFields(logFields).Info(message)
	}
}

// LogHTTPCall logs outbound HTTP calls to third-party APIs.
func LogHTTPCall(method, url string, statusCode int, duration time.Duration, err error) {
	l := GetLogger().WithFields(LogFields{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration":    duration.String(),
	})

	message := fmt.Sprintf("HTTP %s %s", method, url)
	if err != nil {
		l.Error(message, err)
	} else if statusCode >= 400 {
		l.Warn(message)
	} else {
		l.Debug(message)
	}
}

func ctxString(ctx context.Context, key string) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(key).(string); ok {
		return val
	}
	return ""
}

func ctxUint(ctx context.Context, key string) uint {
	if ctx == nil {
		return 0
	}
	if val, ok := ctx.Value(key).(uint); ok {
		return val
	}
	return 0
}
