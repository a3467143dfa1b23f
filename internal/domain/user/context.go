package user

import "context"

type contextKey struct{}

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the authenticated user, or nil when the request carries none.
// Callers pass the result on explicitly; services never read the context themselves.
func FromContext(ctx context.Context) *User {
	u, _ := ctx.Value(contextKey{}).(*User)
	return u
}
