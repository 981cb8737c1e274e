package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition возвращается, когда операция недопустима в текущем статусе
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrNotPaid возвращается при выезде без отметки об оплате
	ErrNotPaid = errors.New("booking is not paid")

	// ErrSlotConflict возвращается, когда статус слота не соответствует бронированию
	ErrSlotConflict = errors.New("slot state conflict")

	// ErrConcurrentUpdate возвращается, когда бронирование меняли параллельно и повторы исчерпаны
	ErrConcurrentUpdate = errors.New("booking was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrUnavailable возвращается при временной недоступности хранилища, запрос можно повторить
	ErrUnavailable = errors.New("service: storage unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
