package expiry

import "context"

// Expirer завершает истекшие бронирования
type Expirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
