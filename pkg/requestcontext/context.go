// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware and the queue listener set these values; the dispatcher, the
// scheduler and the stores only read them, so none of them import net/http.
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	sourceKey      struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeySource      = sourceKey{}
)

// Source names the inbound channel an operation arrived on.
type Source string

const (
	SourceHTTP  Source = "http"
	SourceQueue Source = "queue"
)

// RequestID retrieves the transport-level request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// OperationSource reports where the operation came from. Defaults to HTTP.
func OperationSource(ctx context.Context) Source {
	if s, ok := ctx.Value(ContextKeySource).(Source); ok {
		return s
	}
	return SourceHTTP
}

// WithSource tags the context with the inbound channel.
func WithSource(ctx context.Context, s Source) context.Context {
	return context.WithValue(ctx, ContextKeySource, s)
}
