// Package requestctx carries per-request identifiers through context.Context
// so layers below HTTP can tag logs and events without importing gin.
package requestctx

import "context"

type key int

const (
	requestIDKey key = iota
	clientIDKey
)

// WithRequestID returns ctx carrying the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(orBackground(ctx), requestIDKey, requestID)
}

// RequestID returns the request id, or "".
func RequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithClientID returns ctx carrying the authenticated client id.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(orBackground(ctx), clientIDKey, clientID)
}

// ClientID returns the authenticated client id, or "" for anonymous requests.
func ClientID(ctx context.Context) string {
	return stringValue(ctx, clientIDKey)
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func stringValue(ctx context.Context, k key) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(k).(string)
	return s
}
