package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrVersionConflict возвращается, когда бронирование изменили после чтения
	ErrVersionConflict = errors.New("booking.repository: version conflict")

	// ErrActiveBookingExists возвращается при нарушении "одно активное бронирование на пользователя"
	ErrActiveBookingExists = errors.New("booking.repository: user already has an active booking")

	// ErrSlotTaken возвращается при нарушении "одно активное бронирование на слот"
	ErrSlotTaken = errors.New("booking.repository: slot already has an active booking")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
