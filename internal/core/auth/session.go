package auth

import (
	"context"

	"agro-advisor/internal/domain"
)

type sessionKey struct{}

// WithSession attaches the authenticated session user to ctx.
func WithSession(ctx context.Context, u *domain.SessionUser) context.Context {
	return context.WithValue(ctx, sessionKey{}, u)
}

// SessionFrom returns the session user in ctx, or nil.
func SessionFrom(ctx context.Context) *domain.SessionUser {
	u, _ := ctx.Value(sessionKey{}).(*domain.SessionUser)
	return u
}
