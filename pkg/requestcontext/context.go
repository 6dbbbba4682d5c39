// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets values; handlers and services read them without importing
// net/http. Tests inject values directly.
package requestcontext

import "context"

// Context key types (unexported for encapsulation).
type (
	requestIDKey struct{}
	clientIPKey  struct{}
	userAgentKey struct{}
	adminUserKey struct{}
)

// RequestID retrieves the request correlation ID, or "" if unset.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a request correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// ClientIP retrieves the client IP recorded by the middleware, or "" if unset.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClientIP injects the client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// UserAgent retrieves the client user agent, or "" if unset.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// WithUserAgent injects the client user agent.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, ua)
}

// AdminUser retrieves the authenticated admin username, or "" if the request
// is not an authenticated admin request.
func AdminUser(ctx context.Context) string {
	if v, ok := ctx.Value(adminUserKey{}).(string); ok {
		return v
	}
	return ""
}

// WithAdminUser injects the authenticated admin username.
func WithAdminUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, adminUserKey{}, username)
}
