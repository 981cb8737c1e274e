package broker

import "errors"

var (
	// ErrUnavailable возвращается, когда брокер недоступен
	ErrUnavailable = errors.New("broker: unavailable")

	// ErrPublish возвращается, когда сообщение не удалось отправить
	ErrPublish = errors.New("broker: publish failed")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
