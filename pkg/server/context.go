package server

import "context"

// contextKey is a private key type so request-scoped values cannot
// collide with values stored by other packages.
type contextKey string

const (
	contextKeyRequestID  contextKey = "requestID"
	contextKeyAPIVersion contextKey = "apiVersion"
)

// withRequestID returns a context carrying the request correlation ID.
func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// requestIDFromContext returns the request correlation ID, or the
// empty string when the request-ID middleware did not run.
func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// withAPIVersion returns a context carrying the negotiated API version.
func withAPIVersion(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, contextKeyAPIVersion, version)
}

// apiVersionFromContext returns the negotiated API version, or the
// empty string when negotiation did not run.
func apiVersionFromContext(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyAPIVersion).(string)
	return v
}
