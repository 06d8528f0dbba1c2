package auth

import "context"

type contextKey int

const clientIPKey contextKey = iota

// WithClientIP tags a request context with the caller's IP so audit events
// can record it. Transports set this in their middleware; absent the tag,
// events simply omit the field.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if ip, ok := ctx.Value(clientIPKey).(string); ok {
		return ip
	}
	return ""
}
