package get_parking_map

import (
	"context"

	getParkingMap "github.com/m04kA/SMC-ParkingService/internal/usecase/get_parking_map"
)

type GetParkingMapUseCase interface {
	Execute(ctx context.Context, req *getParkingMap.Request) (*getParkingMap.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
