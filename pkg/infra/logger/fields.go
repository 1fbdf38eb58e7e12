// Package logger carries request-scoped log fields through a context.
package logger

import (
	"context"

	"github.com/kart-io/logger"
	"github.com/kart-io/logger/core"
	"go.opentelemetry.io/otel/trace"
)

type contextKey struct{}

// Field keys set by the server.
const (
	KeyRequestID = "request_id"
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
)

// fields is an immutable ordered key/value list; copies are made on write.
type fields []interface{}

func fromContext(ctx context.Context) fields {
	if f, ok := ctx.Value(contextKey{}).(fields); ok {
		return f
	}
	return nil
}

// WithFields returns a context whose logger adds keysAndValues. A key that
// is already present is replaced. A dangling key without value is dropped.
func WithFields(ctx context.Context, keysAndValues ...interface{}) context.Context {
	if len(keysAndValues) < 2 {
		return ctx
	}
	cur := fromContext(ctx)
	next := make(fields, len(cur), len(cur)+len(keysAndValues))
	copy(next, cur)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		replaced := false
		for j := 0; j+1 < len(next); j += 2 {
			if next[j] == key {
				next[j+1] = keysAndValues[i+1]
				replaced = true
				break
			}
		}
		if !replaced {
			next = append(next, key, keysAndValues[i+1])
		}
	}
	return context.WithValue(ctx, contextKey{}, next)
}

// WithRequestID adds request_id to the context fields.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return WithFields(ctx, KeyRequestID, requestID)
}

// Fields returns the context fields plus trace_id and span_id of a valid
// OpenTelemetry span, if any.
func Fields(ctx context.Context) []interface{} {
	out := append([]interface{}(nil), fromContext(ctx)...)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		out = append(out, KeyTraceID, sc.TraceID().String(), KeySpanID, sc.SpanID().String())
	}
	return out
}

// FromContext returns the global logger with the context fields attached.
func FromContext(ctx context.Context) core.Logger {
	base := logger.Global()
	if f := Fields(ctx); len(f) > 0 {
		return base.With(f...)
	}
	return base
}
