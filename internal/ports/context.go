package ports

import "context"

type sessionHandleKey struct{}

// WithSessionHandle attaches the browser session handle to ctx. Adapters
// resolve their token material through it.
func WithSessionHandle(ctx context.Context, handle string) context.Context {
	return context.WithValue(ctx, sessionHandleKey{}, handle)
}

// SessionHandle extracts the browser session handle, if any.
func SessionHandle(ctx context.Context) (string, bool) {
	handle, ok := ctx.Value(sessionHandleKey{}).(string)
	return handle, ok && handle != ""
}
