package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusApproved  BookingStatus = "approved"
	StatusDeclined  BookingStatus = "declined"
	StatusCompleted BookingStatus = "completed"
)

// bookingTransitions is the booking lifecycle: pending -> approved|declined, approved -> completed
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusApproved, StatusDeclined},
	StatusApproved:  {StatusCompleted},
	StatusDeclined:  {},
	StatusCompleted: {},
}

// ActiveStatuses statuses that hold a slot and count as the user's active booking
var ActiveStatuses = []BookingStatus{StatusPending, StatusApproved}

// IsValid returns true if the status is a recognized booking status
func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo returns true if the lifecycle allows moving to target
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// IsActive returns true for pending and approved
func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

// ParseBookingStatus converts a string to a BookingStatus
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown booking status %q", ErrInvalidInput, s)
	}
	return status, nil
}

// Booking is a user's reservation of one slot for a bounded time window
type Booking struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Area         Area
	VehicleClass VehicleClass
	SlotID       string
	Hours        int
	TotalAmount  int64
	IsPWD        bool
	CheckIn      time.Time
	ExpiresAt    time.Time
	Status       BookingStatus
	IsPaid       bool
	PaidAt       *time.Time
	ApprovedAt   *time.Time
	CompletedAt  *time.Time

	// Version is bumped on every update and checked on write
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still holds its slot
func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

// IsDue returns true if an approved booking has reached its expiration time
func (b *Booking) IsDue(now time.Time) bool {
	return b.Status == StatusApproved && !now.Before(b.ExpiresAt)
}

// TransitionTo moves the booking along the lifecycle
func (b *Booking) TransitionTo(target BookingStatus, at time.Time) error {
	if !b.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, target)
	}
	b.Status = target
	switch target {
	case StatusApproved:
		b.ApprovedAt = &at
	case StatusCompleted:
		b.CompletedAt = &at
	}
	return nil
}

// BookingFilter фильтр для списка бронирований (все поля опциональны)
type BookingFilter struct {
	UserID       *uuid.UUID
	Status       *BookingStatus
	IsPaid       *bool
	Area         *Area
	VehicleClass *VehicleClass
	Limit        int
}
