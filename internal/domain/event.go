package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a booking change
type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingApproved  EventType = "booking.approved"
	EventBookingDeclined  EventType = "booking.declined"
	EventBookingPaid      EventType = "booking.paid"
	EventBookingUnpaid    EventType = "booking.unpaid"
	EventBookingCompleted EventType = "booking.completed"
	EventBookingExpired   EventType = "booking.expired"
)

// BookingEvent is an ordered change notification. Seq is assigned by the store
// on commit and is strictly increasing, consumers resume from the last Seq seen.
type BookingEvent struct {
	Seq        int64
	ID         uuid.UUID
	Type       EventType
	BookingID  uuid.UUID
	UserID     uuid.UUID
	SlotID     string
	Status     BookingStatus
	SlotStatus SlotStatus
	IsPaid     bool
	OccurredAt time.Time
}

// NewBookingEvent builds an event from the booking state after a change
func NewBookingEvent(t EventType, b *Booking, slotStatus SlotStatus, at time.Time) *BookingEvent {
	return &BookingEvent{
		ID:         uuid.New(),
		Type:       t,
		BookingID:  b.ID,
		UserID:     b.UserID,
		SlotID:     b.SlotID,
		Status:     b.Status,
		SlotStatus: slotStatus,
		IsPaid:     b.IsPaid,
		OccurredAt: at,
	}
}
