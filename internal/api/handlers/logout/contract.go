package logout

import (
	"context"

	"github.com/google/uuid"
)

type IdentityService interface {
	Logout(ctx context.Context, userID uuid.UUID) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
