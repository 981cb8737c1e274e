package register

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/identity/models"
)

type IdentityService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
