package create_booking

import (
	"time"

	"github.com/google/uuid"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID       uuid.UUID // ID пользователя (из JWT)
	Area         string    // Площадка: parking3, parking4, roofdeck или "Parking 3"
	VehicleClass string    // car или motorcycle
	SlotID       string    // Выбранный слот, например parking3-car-A-1
	Hours        int       // Длительность 1..8
	IsPWD        bool      // Бронирование для человека с инвалидностью

	// Время заезда: либо полная метка CheckIn, либо CheckInTime "HH:MM" на сегодня
	CheckIn     *time.Time
	CheckInTime string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Area         string
	AreaName     string
	VehicleClass string
	SlotID       string
	SlotLabel    string
	Hours        int
	TotalAmount  int64
	IsPWD        bool
	CheckIn      time.Time
	ExpiresAt    time.Time
	Status       string
	IsPaid       bool
	Version      int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
