package testutil

import (
	"net/http"
	"time"

	"mockabis/pkg/requestcontext"
)

// WithRequestID adds a request id to the request context, as the request id
// middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithRequestTime pins the request time in the context.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
