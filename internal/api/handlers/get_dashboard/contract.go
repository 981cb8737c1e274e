package get_dashboard

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/dashboard"
)

type DashboardService interface {
	Get(ctx context.Context) (*dashboard.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
