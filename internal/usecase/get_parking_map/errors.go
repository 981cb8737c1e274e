package get_parking_map

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_parking_map: invalid input data")

	// ErrPartitionNotFound возвращается, когда для площадки и класса нет слотов
	ErrPartitionNotFound = errors.New("get_parking_map: no slots for area and vehicle class")

	// ErrUnavailable возвращается при временной недоступности хранилища
	ErrUnavailable = errors.New("get_parking_map: storage unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_parking_map: internal error")
)
