// Package logger provides leveled logging for weldsafe.
//
// Console output is gated by the --verbose flag and goes to stderr. When a
// log file is configured with Configure, every message is also written there as
// JSON lines through zap, rotated by lumberjack, regardless of verbosity.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	sink              = zap.NewNop()
)

// Options configures the structured file sink.
type Options struct {
	// File is the log path. Empty disables the file sink.
	File string

	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	MaxBackups int

	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int
}

// Rotation defaults for the JSON log file.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
)

// Configure opens a rotating JSON log file and routes all messages to it.
// The returned function flushes and detaches the file sink.
func Configure(opts Options) (func() error, error) {
	if opts.File == "" {
		return func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = DefaultMaxSizeMB
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = DefaultMaxBackups
	}
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = DefaultMaxAgeDays
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	l := zap.New(zapcore.NewCore(jsonEncoder(), zapcore.AddSync(rotator), zap.DebugLevel),
		zap.AddCaller(), zap.AddCallerSkip(2))

	mu.Lock()
	sink = l
	mu.Unlock()

	return func() error {
		mu.Lock()
		sink = zap.NewNop()
		mu.Unlock()
		_ = l.Sync()
		return rotator.Close()
	}, nil
}

// SetSink replaces the structured sink. Tests use zaptest/observer cores.
func SetSink(core zapcore.Core) {
	mu.Lock()
	defer mu.Unlock()
	sink = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.MessageKey = "message"
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// SetVerbose enables or disables verbose console logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the console writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func emit(level zapcore.Level, tag, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	msg := fmt.Sprintf(format, args...)
	if verbose {
		fmt.Fprintf(output, "[%s] %s\n", tag, msg)
	}
	if ce := sink.Check(level, msg); ce != nil {
		ce.Write()
	}
}

// Debug logs a diagnostic message.
func Debug(format string, args ...any) {
	emit(zapcore.DebugLevel, "DEBUG", format, args...)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	emit(zapcore.InfoLevel, "INFO", format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	emit(zapcore.WarnLevel, "WARN", format, args...)
}

// Error logs a failure. Errors are always written to the console.
func Error(format string, args ...any) {
	mu.RLock()
	msg := fmt.Sprintf(format, args...)
	if !verbose {
		fmt.Fprintf(output, "[ERROR] %s\n", msg)
	}
	mu.RUnlock()
	emit(zapcore.ErrorLevel, "ERROR", format, args...)
}

// Section prints a section header to the console if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Event writes a structured record to the sink only.
func Event(msg string, fields ...zap.Field) {
	mu.RLock()
	defer mu.RUnlock()
	sink.WithOptions(zap.AddCallerSkip(-1)).Info(msg, fields...)
}

// Sync flushes the structured sink.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return sink.Sync()
}
