// Package logging provides component-tagged leveled logging on zap, with console output
// and a size-rotated JSON log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelInfo:
		return zapcore.InfoLevel
	default:
		// Above every level we emit.
		return zapcore.FatalLevel
	}
}

// ParseLevel converts a string to a Level
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field (shorthand for structured logging)
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration
type Config struct {
	Level      string `mapstructure:"level" toml:"level"`             // debug, info, warn, error
	File       string `mapstructure:"file" toml:"file"`               // log file path (empty = default under the config dir)
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb"` // max size before rotation (default: 10)
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups"` // number of backups to keep (default: 5)
	Quiet      bool   `mapstructure:"quiet" toml:"quiet"`             // file only, nothing on stderr
}

// DefaultConfig returns default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		File:       "", // Will be set to ~/.config/stellar/logs/stellar.log
		MaxSizeMB:  10,
		MaxBackups: 5,
	}
}

// Logger provides structured logging with file output
type Logger struct {
	level    zap.AtomicLevel
	zl       *zap.Logger
	file     *rotatingFile
	filePath string
}

// New creates a Logger writing human-readable lines to stderr and JSON lines to the
// configured file.
func New(cfg Config) (*Logger, error) {
	maxSize := int64(cfg.MaxSizeMB) * 1024 * 1024
	if maxSize == 0 {
		maxSize = 10 * 1024 * 1024 // 10MB default
	}
	maxBackups := cfg.MaxBackups
	if maxBackups == 0 {
		maxBackups = 5
	}

	// Set default log file path if not specified
	if cfg.File == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("unable to get config dir: %w", err)
		}
		cfg.File = filepath.Join(configDir, "stellar", "logs", "stellar.log")
	}

	// Expand ~ in file path
	if strings.HasPrefix(cfg.File, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("unable to get home dir: %w", err)
		}
		cfg.File = filepath.Join(home, cfg.File[1:])
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}

	file, err := openRotatingFile(cfg.File, maxSize, maxBackups)
	if err != nil {
		return nil, err
	}

	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level).zapLevel())
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig()), zapcore.AddSync(file), level),
	}
	if !cfg.Quiet {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoderConfig()), zapcore.Lock(os.Stderr), level))
	}

	return &Logger{
		level:    level,
		zl:       zap.New(zapcore.NewTee(cores...)),
		file:     file,
		filePath: cfg.File,
	}, nil
}

// NewWriter creates a Logger that writes console-formatted lines to w only.
func NewWriter(w io.Writer, level string) *Logger {
	atomic := zap.NewAtomicLevelAt(ParseLevel(level).zapLevel())
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig()), zapcore.AddSync(w), atomic)
	return &Logger{level: atomic, zl: zap.New(core)}
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.CallerKey = zapcore.OmitKey
	cfg.StacktraceKey = zapcore.OmitKey
	return cfg
}

func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// log writes a log entry
func (l *Logger) log(level Level, component, msg string, err error, fields ...Field) {
	if l == nil || l.zl == nil {
		return
	}
	ce := l.zl.Check(level.zapLevel(), msg)
	if ce == nil {
		return
	}

	zf := make([]zap.Field, 0, len(fields)+2)
	zf = append(zf, zap.String("component", component))
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	for _, f := range fields {
		zf = append(zf, zap.Any(f.Key, f.Value))
	}
	ce.Write(zf...)
}

// Debug logs a debug message
func (l *Logger) Debug(component, msg string, fields ...Field) {
	l.log(LevelDebug, component, msg, nil, fields...)
}

// Info logs an info message
func (l *Logger) Info(component, msg string, fields ...Field) {
	l.log(LevelInfo, component, msg, nil, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(component, msg string, fields ...Field) {
	l.log(LevelWarn, component, msg, nil, fields...)
}

// Error logs an error message with an error
func (l *Logger) Error(component, msg string, err error, fields ...Field) {
	l.log(LevelError, component, msg, err, fields...)
}

// Close flushes buffered entries and closes the log file
func (l *Logger) Close() error {
	if l == nil || l.zl == nil {
		return nil
	}
	_ = l.zl.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	switch l.level.Level() {
	case zapcore.DebugLevel:
		return LevelDebug
	case zapcore.InfoLevel:
		return LevelInfo
	case zapcore.WarnLevel:
		return LevelWarn
	case zapcore.ErrorLevel:
		return LevelError
	default:
		return LevelError + 1
	}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zapLevel())
}

// FilePath returns the log file path
func (l *Logger) FilePath() string {
	return l.filePath
}

// Zap exposes the underlying zap logger for libraries that take one.
func (l *Logger) Zap() *zap.Logger {
	if l == nil || l.zl == nil {
		return zap.NewNop()
	}
	return l.zl
}

// Nop returns a no-operation logger that discards all output
func Nop() *Logger {
	return &Logger{
		level: zap.NewAtomicLevelAt(zapcore.FatalLevel),
		zl:    zap.NewNop(),
	}
}
