package stream_events

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/events"
)

type Hub interface {
	Register(ctx context.Context, client *events.Client)
	Unregister(ctx context.Context, client *events.Client)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
