package common

import "context"

// ContextKey represents a context key type
type ContextKey string

const contextKeyRequestID ContextKey = "request_id"

// WithRequestID adds a request ID to the context so error responses can
// echo it without depending on the HTTP framework
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// GetRequestID extracts the request ID from the context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(contextKeyRequestID).(string)
	return requestID, ok && requestID != ""
}
