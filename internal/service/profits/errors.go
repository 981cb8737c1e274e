package profits

import "errors"

var (
	// ErrInvalidInput возвращается при некорректном диапазоне дат
	ErrInvalidInput = errors.New("profits: invalid input data")

	// ErrUnavailable возвращается при временной недоступности хранилища
	ErrUnavailable = errors.New("profits: storage unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("profits: internal error")
)
