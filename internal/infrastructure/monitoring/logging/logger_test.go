package logging

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "github.com/turtacn/PrintShop-Customizer/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// newTestLogger returns a logger writing JSON into a buffer for inspection.
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo, Format: "json", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleWithSampling(t *testing.T) {
	l, err := NewLogger(LogConfig{
		Level:              LevelDebug,
		Format:             "console",
		SamplingInitial:    100,
		SamplingThereafter: 10,
		InitialFields:      map[string]string{"service": "customizer"},
	})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_EmptyOutputPathsRejected(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.WithContext(context.Background()))
	assert.Equal(t, l, l.WithError(errors.New("x")))
	assert.Equal(t, l, l.Named("n"))
	assert.NoError(t, l.Sync())
}

func TestZapLogger_Levels(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")
	out := buf.String()
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		assert.Contains(t, out, `"level":"`+lvl+`"`)
		assert.Contains(t, out, lvl+" msg")
	}
}

func TestZapLogger_DomainFields(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Info("placement updated",
		DesignID("d-1"), LogoID("l-1"), LocationID("front-center"),
		Float64("size_percent", 35), Strings("selection", []string{"a", "b"}),
		Duration("elapsed", time.Millisecond), Int("revision", 7))
	out := buf.String()
	assert.Contains(t, out, `"design_id":"d-1"`)
	assert.Contains(t, out, `"logo_id":"l-1"`)
	assert.Contains(t, out, `"location_id":"front-center"`)
	assert.Contains(t, out, `"size_percent":35`)
	assert.Contains(t, out, `"selection":["a","b"]`)
	assert.Contains(t, out, `"revision":7`)
}

func TestZapLogger_WithContext_ExtractsRequestID(t *testing.T) {
	l, buf := newTestLogger(t)
	ctx := ContextWithRequestID(context.Background(), "req-123")
	l.WithContext(ctx).Info("msg")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
}

func TestZapLogger_WithContext_NoRequestID(t *testing.T) {
	l, buf := newTestLogger(t)
	l.WithContext(context.Background()).Info("msg")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestZapLogger_WithError_AppError(t *testing.T) {
	l, buf := newTestLogger(t)
	l.WithError(errs.New(errs.ErrCodeDesignNotFound, "design not found")).Error("msg")
	assert.Contains(t, buf.String(), `"error_code":"DESIGN_001"`)
	assert.Contains(t, buf.String(), `"error":"[DESIGN_001] design not found"`)
}

func TestZapLogger_WithError_Nil(t *testing.T) {
	l, buf := newTestLogger(t)
	l.WithError(nil).Info("msg")
	assert.NotContains(t, buf.String(), `"error"`)
}

func TestLogOperationDuration(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core)

	LogOperationDuration(l, "fast", time.Now(), time.Hour)
	LogOperationDuration(l, "slow", time.Now().Add(-time.Second), time.Millisecond)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "operation completed", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "slow", entries[1].ContextMap()["operation"])
}

func TestZapLogger_WithError_WrappedAppError(t *testing.T) {
	l, buf := newTestLogger(t)
	wrapped := fmt.Errorf("loading design: %w", errs.New(errs.ErrCodeDesignNotFound, "design not found"))
	l.WithError(wrapped).Error("msg")
	assert.Contains(t, buf.String(), `"error_code":"DESIGN_001"`)
}

func TestSetLevel(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo, OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	child := l.Named("http").With(String("k", "v"))

	require.True(t, SetLevel(l, LevelError))
	assert.False(t, child.(*zapLogger).z.Core().Enabled(zapcore.WarnLevel))
	require.True(t, SetLevel(child, LevelDebug))
	assert.True(t, l.(*zapLogger).z.Core().Enabled(zapcore.DebugLevel))

	assert.False(t, SetLevel(NewNopLogger(), LevelDebug))
	core, _ := observer.New(zapcore.InfoLevel)
	assert.False(t, SetLevel(NewLoggerFromCore(core), LevelDebug))
}

func TestZapLogger_Named(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	NewLoggerFromCore(core).Named("customizer").Named("http").Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "customizer.http", logs.All()[0].LoggerName)
}

//Personal.AI order the ending
