// Package logger provides a zap-based application logger.
package logger

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a logging priority.
type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// TraceIDFn extracts a trace id from a context.
type TraceIDFn func(ctx context.Context) string

// Logger writes structured records enriched with request and trace ids.
type Logger struct {
	z       *zap.SugaredLogger
	traceID TraceIDFn
}

// New builds a JSON logger writing to w.
func New(w io.Writer, level Level, service string, traceID TraceIDFn) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), level)
	return NewFromCore(core, service, traceID)
}

// NewFromCore builds a logger on an existing zap core.
func NewFromCore(core zapcore.Core, service string, traceID TraceIDFn) *Logger {
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).With(zap.String("service", service))
	return &Logger{z: z.Sugar(), traceID: traceID}
}

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return LevelInfo
	}
	return l
}

func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.z.Debugw(msg, l.fields(ctx, kv)...)
}

func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.z.Infow(msg, l.fields(ctx, kv)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.z.Warnw(msg, l.fields(ctx, kv)...)
}

func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.z.Errorw(msg, l.fields(ctx, kv)...)
}

// Sync flushes buffered records.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

func (l *Logger) fields(ctx context.Context, kv []any) []any {
	kv = kv[:len(kv):len(kv)]
	if id := RequestID(ctx); id != "" {
		kv = append(kv, "request_id", id)
	}
	if l.traceID != nil {
		if id := l.traceID(ctx); id != "" {
			kv = append(kv, "trace_id", id)
		}
	}
	return kv
}

type requestIDKey struct{}

// WithRequestID stores a request id for later log records.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
