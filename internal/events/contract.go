package events

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Publisher внешний получатель событий (брокер сообщений)
type Publisher interface {
	Publish(ctx context.Context, event *domain.BookingEvent) error
}

// MetricsRecorder счетчик доставки событий
type MetricsRecorder interface {
	RecordPublish(sink string, err error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
