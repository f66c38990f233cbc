// Package logging builds the process logger: a zap core exposed as a
// *slog.Logger so every package can take the standard library type.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Config selects level and encoding.
type Config struct {
	// Level is debug, info, warn or error. Unknown values mean info.
	Level string
	// Format is json or console.
	Format string
	// OutputPaths defaults to stderr.
	OutputPaths []string
}

// New returns the logger and a function that flushes buffered entries.
func New(cfg Config) (*slog.Logger, func() error, error) {
	var zapCfg zap.Config
	switch strings.ToLower(cfg.Format) {
	case "console", "text":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.Development = false
	case "", "json":
		zapCfg = zap.NewProductionConfig()
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	zapCfg.Sampling = nil
	zapCfg.OutputPaths = []string{"stderr"}
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}

	z, err := zapCfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build zap logger: %w", err)
	}

	handler := zapslog.NewHandler(z.Core(), zapslog.WithCaller(true))
	return slog.New(handler), z.Sync, nil
}

// ParseLevel converts a level name to a zap level.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type ctxKey struct{}

// WithContext stores a request-scoped logger in ctx.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by WithContext, or fallback.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	if fallback == nil {
		return slog.Default()
	}
	return fallback
}
