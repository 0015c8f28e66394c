package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the request session to the context so that
// handlers downstream of the session middleware can reach it.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the session stored by the session middleware,
// or nil when the request carries none.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
