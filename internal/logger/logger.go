package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured event log shared by all risk components.
// Every entry carries an event name plus typed fields, so downstream
// sinks can filter on event rather than parsing message text.
type Logger struct {
	zap *zap.Logger
}

// New creates a logger writing console output to stdout and JSON entries
// to <logDir>/risk_kernel.log. The level string accepts zap level names
// ("debug", "info", "warn", "error"); unknown values fall back to info.
func New(logDir, level string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	var logLevel zapcore.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "event",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		logLevel,
	)

	logFile, err := os.OpenFile(filepath.Join(logDir, "risk_kernel.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logFile),
		logLevel,
	)

	zl := zap.New(zapcore.NewTee(consoleCore, fileCore))
	return &Logger{zap: zl}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// Component returns a child logger tagged with a component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{zap: l.zap.With(zap.String("component", name))}
}

// Event records an informational event with its data fields.
func (l *Logger) Event(event string, fields ...zap.Field) {
	l.zap.Info(event, fields...)
}

// Warn records a recoverable problem, e.g. a collaborator fetch that
// degraded to a default value.
func (l *Logger) Warn(event string, fields ...zap.Field) {
	l.zap.Warn(event, fields...)
}

// Error records a failure that was handled but should be investigated.
func (l *Logger) Error(event string, fields ...zap.Field) {
	l.zap.Error(event, fields...)
}

// Sync flushes buffered entries. Call before process exit.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}
