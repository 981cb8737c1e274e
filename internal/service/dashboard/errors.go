package dashboard

import "errors"

var (
	// ErrUnavailable возвращается при временной недоступности хранилища
	ErrUnavailable = errors.New("dashboard: storage unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("dashboard: internal error")
)
