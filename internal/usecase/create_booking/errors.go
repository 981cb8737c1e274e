package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrSlotNotSelected возвращается, когда слот не выбран
	ErrSlotNotSelected = errors.New("create_booking: slot is not selected")

	// ErrInvalidHours возвращается, когда длительность вне диапазона 1..8 часов
	ErrInvalidHours = errors.New("create_booking: hours must be between 1 and 8")

	// ErrInvalidCheckIn возвращается, когда время заезда в прошлом или дальше чем через 24 часа
	ErrInvalidCheckIn = errors.New("create_booking: check-in must be within the next 24 hours")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("create_booking: user not found")

	// ErrUserInactive возвращается, когда у пользователя нет активной сессии (вышел из системы)
	ErrUserInactive = errors.New("create_booking: user is not logged in")

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("create_booking: slot not found")

	// ErrActiveBookingExists возвращается, когда у пользователя уже есть pending/approved бронирование
	ErrActiveBookingExists = errors.New("create_booking: user already has an active booking")

	// ErrSlotConflict возвращается, когда слот уже занят или зарезервирован
	ErrSlotConflict = errors.New("create_booking: slot is not available")

	// ErrUnavailable возвращается при временной недоступности хранилища, запрос можно повторить
	ErrUnavailable = errors.New("create_booking: storage unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
