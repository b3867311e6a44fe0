package middleware

import (
	"context"

	"github.com/electroworld/auth-service/internal/domain"
)

type ctxKey string

const ctxUser ctxKey = "user"

func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxUser).(domain.User)
	return u, ok && u.ID != ""
}
