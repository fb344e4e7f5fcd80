package auth

import (
	"context"

	"github.com/2beens/fittrack/internal/users"

	"github.com/google/uuid"
)

type contextKey string

const userKey contextKey = "fittrack-auth-user"

func WithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(userKey).(*users.User)
	return user, ok && user != nil
}

// UserIDFromContext returns uuid.Nil when the request is unauthenticated.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	user, ok := UserFromContext(ctx)
	if !ok {
		return uuid.Nil
	}
	return user.ID
}
