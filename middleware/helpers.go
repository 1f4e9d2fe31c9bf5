package middleware

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v4"

	"github.com/NicoBaldowine/pickleplay/services"
)

type contextKey string

const userContextKey contextKey = "user"

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("user claims not found in context or invalid type")
	}
	return services.UserIDFromClaims(claims)
}

// WithClaims stores claims the way Authenticate does. Handlers' tests use
// it to skip token signing.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}
