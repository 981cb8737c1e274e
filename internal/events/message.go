package events

import (
	"encoding/json"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Message формат события для websocket и брокера
type Message struct {
	Seq        int64     `json:"seq"`
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	BookingID  string    `json:"bookingId"`
	UserID     string    `json:"userId"`
	SlotID     string    `json:"slotId"`
	Status     string    `json:"status"`
	SlotStatus string    `json:"slotStatus"`
	IsPaid     bool      `json:"isPaid"`
	OccurredAt time.Time `json:"occurredAt"`
}

// FromDomainEvent конвертирует событие в сообщение
func FromDomainEvent(e *domain.BookingEvent) Message {
	return Message{
		Seq:        e.Seq,
		ID:         e.ID.String(),
		Type:       string(e.Type),
		BookingID:  e.BookingID.String(),
		UserID:     e.UserID.String(),
		SlotID:     e.SlotID,
		Status:     string(e.Status),
		SlotStatus: string(e.SlotStatus),
		IsPaid:     e.IsPaid,
		OccurredAt: e.OccurredAt,
	}
}

// Encode сериализует событие в JSON
func Encode(e *domain.BookingEvent) ([]byte, error) {
	return json.Marshal(FromDomainEvent(e))
}
