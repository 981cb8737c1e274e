package get_profits

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/profits"
)

type ProfitService interface {
	List(ctx context.Context, from, to string) (*profits.ProfitListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
