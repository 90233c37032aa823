// Package logging is the structured logging contract of the customizer and
// its zap implementation.  Nothing outside this package imports zap except
// tests that observe entries.
package logging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Logger is injected into every component through its constructor.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// Fatal exits the process after logging.  Startup only.
	Fatal(msg string, fields ...Field)

	With(fields ...Field) Logger
	// WithContext adds the request id carried by ctx, if any.
	WithContext(ctx context.Context) Logger
	// WithError adds err and, for coded errors, its code.  nil is a no-op.
	WithError(err error) Logger
	// Named appends name to the logger name, dot separated.
	Named(name string) Logger
	Sync() error
}

// LogConfig is the "log" section of the service configuration.
type LogConfig struct {
	// Level is debug, info, warn or error; anything else means info.
	Level string `mapstructure:"level" yaml:"level" json:"level"`
	// Format is "json" (default) or "console".
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	// OutputPaths defaults to stdout when nil.  An empty slice is an error.
	OutputPaths      []string `mapstructure:"output_paths" yaml:"output_paths" json:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths" yaml:"error_output_paths" json:"error_output_paths"`
	// Sampling is enabled when SamplingInitial is positive.
	SamplingInitial    int               `mapstructure:"sampling_initial" yaml:"sampling_initial" json:"sampling_initial"`
	SamplingThereafter int               `mapstructure:"sampling_thereafter" yaml:"sampling_thereafter" json:"sampling_thereafter"`
	InitialFields      map[string]string `mapstructure:"initial_fields" yaml:"initial_fields" json:"initial_fields"`
}

// ─────────────────────────────────────────────────────────────────────────────
// zap
// ─────────────────────────────────────────────────────────────────────────────

type zapLogger struct {
	z *zap.Logger
	// level is shared by every child; nil for loggers built on a bare core.
	level *zap.AtomicLevel
}

func (l *zapLogger) derive(z *zap.Logger) *zapLogger { return &zapLogger{z: z, level: l.level} }

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, zapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, zapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, zapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, zapFields(fields)...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, zapFields(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return l.derive(l.z.With(zapFields(fields)...))
}

func (l *zapLogger) WithContext(ctx context.Context) Logger {
	id := RequestIDFromContext(ctx)
	if id == "" {
		return l
	}
	return l.With(RequestID(id))
}

// coded is implemented by pkg/errors.AppError, which this package cannot
// import.
type coded interface{ ErrorCode() string }

func (l *zapLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	var c coded
	if errors.As(err, &c) {
		return l.With(Err(err), String("error_code", c.ErrorCode()))
	}
	return l.With(Err(err))
}

func (l *zapLogger) Named(name string) Logger { return l.derive(l.z.Named(name)) }

// Sync ignores the errors a terminal returns when asked to fsync.
func (l *zapLogger) Sync() error {
	err := l.z.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn, "warning":
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

func encoderFor(format string) (string, zapcore.EncoderConfig) {
	name, enc := "json", zap.NewProductionEncoderConfig()
	if format == "console" {
		name, enc = "console", zap.NewDevelopmentEncoderConfig()
	}
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return name, enc
}

// NewLogger builds a zap logger from cfg.
func NewLogger(cfg LogConfig) (Logger, error) {
	out := cfg.OutputPaths
	if out == nil {
		out = []string{"stdout"}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("logging: output_paths must not be empty")
	}
	errOut := cfg.ErrorOutputPaths
	if len(errOut) == 0 {
		errOut = []string{"stderr"}
	}

	encoding, enc := encoderFor(cfg.Format)
	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Development:      encoding == "console",
		Encoding:         encoding,
		EncoderConfig:    enc,
		OutputPaths:      out,
		ErrorOutputPaths: errOut,
	}
	if cfg.SamplingInitial > 0 {
		zc.Sampling = &zap.SamplingConfig{Initial: cfg.SamplingInitial, Thereafter: cfg.SamplingThereafter}
	}
	if len(cfg.InitialFields) > 0 {
		zc.InitialFields = make(map[string]interface{}, len(cfg.InitialFields))
		for k, v := range cfg.InitialFields {
			zc.InitialFields[k] = v
		}
	}

	z, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: build zap logger: %w", err)
	}
	return &zapLogger{z: z, level: &zc.Level}, nil
}

// SetLevel changes the minimum level of l and of every logger derived from
// it.  It reports false for loggers NewLogger did not build.
func SetLevel(l Logger, level string) bool {
	zl, ok := l.(*zapLogger)
	if !ok || zl.level == nil {
		return false
	}
	zl.level.SetLevel(parseLevel(level))
	return true
}

// NewLoggerFromCore wraps core, typically an observer in tests.
func NewLoggerFromCore(core zapcore.Core) Logger {
	return &zapLogger{z: zap.New(core, zap.AddCallerSkip(1))}
}

// LogOperationDuration logs the time since start, at warn level once it
// exceeds slow.
func LogOperationDuration(l Logger, op string, start time.Time, slow time.Duration, fields ...Field) {
	elapsed := time.Since(start)
	fields = append(fields, String("operation", op), Int64("duration_ms", elapsed.Milliseconds()))
	if slow > 0 && elapsed > slow {
		l.Warn("slow operation", fields...)
		return
	}
	l.Info("operation completed", fields...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Request id
// ─────────────────────────────────────────────────────────────────────────────

type requestIDKey struct{}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns "" when ctx carries no request id.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ─────────────────────────────────────────────────────────────────────────────
// nop
// ─────────────────────────────────────────────────────────────────────────────

type nopLogger struct{}

// NewNopLogger discards everything.  Constructors fall back to it on a nil
// logger.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...Field)               {}
func (nopLogger) Info(string, ...Field)                {}
func (nopLogger) Warn(string, ...Field)                {}
func (nopLogger) Error(string, ...Field)               {}
func (nopLogger) Fatal(string, ...Field)               {}
func (n nopLogger) With(...Field) Logger               { return n }
func (n nopLogger) WithContext(context.Context) Logger { return n }
func (n nopLogger) WithError(error) Logger             { return n }
func (n nopLogger) Named(string) Logger                { return n }
func (nopLogger) Sync() error                          { return nil }

//Personal.AI order the ending
