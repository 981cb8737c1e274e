package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/service/identity/models"
)

type contextKey int

const principalKey contextKey = iota

// WithPrincipal кладет аутентифицированного пользователя в контекст
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal достает пользователя, положенного middleware Auth
func GetPrincipal(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

// GetUserID достает ID пользователя из контекста
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	p, ok := GetPrincipal(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return p.UserID, true
}
