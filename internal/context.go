package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

// AuthenticatedUser is the caller identity the bearer gate attaches to a request.
type AuthenticatedUser struct {
	ID    string
	Email string
}

func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	if ctx == nil {
		return AuthenticatedUser{}, false
	}
	u, ok := ctx.Value(ContextUserKey).(AuthenticatedUser)
	return u, ok && u.ID != ""
}

func UserIDFromContext(ctx context.Context) string {
	u, _ := UserFromContext(ctx)
	return u.ID
}

func ContextWithUser(ctx context.Context, u AuthenticatedUser) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
