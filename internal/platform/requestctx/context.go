package requestctx

import (
	"context"

	"go.uber.org/zap"

	"github.com/floorhouse/site/internal/domain"
)

type contextKey string

const (
	loggerContextKey contextKey = "github.com/floorhouse/site/internal/platform/requestctx/logger"
	traceContextKey  contextKey = "github.com/floorhouse/site/internal/platform/requestctx/trace"
	localeContextKey contextKey = "github.com/floorhouse/site/internal/platform/requestctx/locale"
)

var noopLogger = zap.NewNop()

// TraceInfo captures trace metadata propagated through request context.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

// WithLogger stores the logger in context for downstream consumers.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerContextKey, logger)
}

// Logger retrieves the zap logger from context or returns a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return noopLogger
	}
	if logger, ok := ctx.Value(loggerContextKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger exposes the shared noop logger instance.
func NoopLogger() *zap.Logger { return noopLogger }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	return context.WithValue(ctx, traceContextKey, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	if ctx == nil {
		return TraceInfo{}, false
	}
	info, ok := ctx.Value(traceContextKey).(TraceInfo)
	return info, ok
}

// TraceID extracts the trace identifier from context when present.
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// WithLocale records the locale negotiated for the request.
func WithLocale(ctx context.Context, locale domain.Locale) context.Context {
	return context.WithValue(ctx, localeContextKey, locale)
}

// Locale returns the request locale, defaulting to domain.DefaultLocale.
func Locale(ctx context.Context) domain.Locale {
	if ctx == nil {
		return domain.DefaultLocale
	}
	if locale, ok := ctx.Value(localeContextKey).(domain.Locale); ok && locale != "" {
		return locale
	}
	return domain.DefaultLocale
}
