package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Request модели

// Requester тот, кто выполняет запрос (из JWT)
type Requester struct {
	UserID uuid.UUID
	Role   domain.Role
}

// IsAdmin true для администратора
func (r Requester) IsAdmin() bool {
	return r.Role == domain.RoleAdmin
}

// ListBookingsRequest фильтр списка бронирований для администратора
type ListBookingsRequest struct {
	Status       *string `json:"status,omitempty"`
	IsPaid       *bool   `json:"paid,omitempty"`
	Area         *string `json:"area,omitempty"`
	VehicleClass *string `json:"vehicleClass,omitempty"`
	Limit        int     `json:"limit,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	Area         string `json:"area"`
	AreaName     string `json:"areaName"`
	VehicleClass string `json:"vehicleClass"`
	SlotID       string `json:"slotId"`
	SlotLabel    string `json:"slotLabel"`
	Hours        int    `json:"hours"`
	TotalAmount  int64  `json:"totalAmount"`
	IsPWD        bool   `json:"isPwd"`
	Status       string `json:"status"`
	IsPaid       bool   `json:"isPaid"`
	Version      int64  `json:"version"`

	CheckIn     time.Time  `json:"checkIn"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Заполняются в списке для администратора
	UserName    *string `json:"userName,omitempty"`
	PlateNumber *string `json:"plateNumber,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// EventResponse событие журнала
type EventResponse struct {
	Seq        int64     `json:"seq"`
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	BookingID  string    `json:"bookingId"`
	SlotID     string    `json:"slotId"`
	Status     string    `json:"status"`
	SlotStatus string    `json:"slotStatus"`
	IsPaid     bool      `json:"isPaid"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventListResponse страница журнала событий
type EventListResponse struct {
	Events []EventResponse `json:"events"`
	// LastSeq передается в следующий запрос как since
	LastSeq int64 `json:"lastSeq"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:           b.ID.String(),
		UserID:       b.UserID.String(),
		Area:         string(b.Area),
		AreaName:     b.Area.DisplayName(),
		VehicleClass: string(b.VehicleClass),
		SlotID:       b.SlotID,
		SlotLabel:    domain.SlotLabelFromID(b.SlotID),
		Hours:        b.Hours,
		TotalAmount:  b.TotalAmount,
		IsPWD:        b.IsPWD,
		Status:       string(b.Status),
		IsPaid:       b.IsPaid,
		Version:      b.Version,
		CheckIn:      b.CheckIn,
		ExpiresAt:    b.ExpiresAt,
		PaidAt:       b.PaidAt,
		ApprovedAt:   b.ApprovedAt,
		CompletedAt:  b.CompletedAt,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список и дополняет именем и номером владельца
func FromDomainBookingList(bookings []*domain.Booking, owners map[uuid.UUID]*domain.User) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		item := FromDomainBooking(booking)
		if owner, ok := owners[booking.UserID]; ok {
			name := owner.FullName()
			plate := owner.PlateNumber
			item.UserName = &name
			item.PlateNumber = &plate
		}
		resp.Bookings = append(resp.Bookings, *item)
	}
	resp.Total = len(resp.Bookings)

	return resp
}

// FromDomainEvents конвертирует страницу журнала
func FromDomainEvents(events []*domain.BookingEvent, since int64) *EventListResponse {
	resp := &EventListResponse{
		Events:  make([]EventResponse, 0, len(events)),
		LastSeq: since,
	}

	for _, e := range events {
		resp.Events = append(resp.Events, EventResponse{
			Seq:        e.Seq,
			ID:         e.ID.String(),
			Type:       string(e.Type),
			BookingID:  e.BookingID.String(),
			SlotID:     e.SlotID,
			Status:     string(e.Status),
			SlotStatus: string(e.SlotStatus),
			IsPaid:     e.IsPaid,
			OccurredAt: e.OccurredAt,
		})
		resp.LastSeq = e.Seq
	}

	return resp
}
