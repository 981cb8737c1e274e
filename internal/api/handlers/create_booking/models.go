package create_booking

import (
	"time"

	"github.com/google/uuid"

	createBooking "github.com/m04kA/SMC-ParkingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	Area         string `json:"area"`         // "parking3" или "Parking 3"
	VehicleClass string `json:"vehicleClass"` // "car" или "motorcycle"
	SlotID       string `json:"slotId"`       // "parking3-car-A-1"
	Hours        int    `json:"hours"`
	IsPWD        bool   `json:"isPwd"`

	// Одно из двух: полная метка RFC3339 или "HH:MM" на сегодня
	CheckIn     *string `json:"checkIn,omitempty"`
	CheckInTime string  `json:"checkInTime,omitempty"`
}

// BookingResponse HTTP response model
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
	CheckIn      string `json:"checkIn"`
	ExpiresAt    string `json:"expiresAt"`
	Status       string `json:"status"`
	IsPaid       bool   `json:"isPaid"`
	Version      int64  `json:"version"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID uuid.UUID) (*createBooking.Request, error) {
	req := &createBooking.Request{
		UserID:       userID,
		Area:         r.Area,
		VehicleClass: r.VehicleClass,
		SlotID:       r.SlotID,
		Hours:        r.Hours,
		IsPWD:        r.IsPWD,
		CheckInTime:  r.CheckInTime,
	}

	if r.CheckIn != nil && *r.CheckIn != "" {
		checkIn, err := time.Parse(time.RFC3339, *r.CheckIn)
		if err != nil {
			return nil, err
		}
		req.CheckIn = &checkIn
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:           resp.ID.String(),
		UserID:       resp.UserID.String(),
		Area:         resp.Area,
		AreaName:     resp.AreaName,
		VehicleClass: resp.VehicleClass,
		SlotID:       resp.SlotID,
		SlotLabel:    resp.SlotLabel,
		Hours:        resp.Hours,
		TotalAmount:  resp.TotalAmount,
		IsPWD:        resp.IsPWD,
		CheckIn:      resp.CheckIn.Format(time.RFC3339),
		ExpiresAt:    resp.ExpiresAt.Format(time.RFC3339),
		Status:       resp.Status,
		IsPaid:       resp.IsPaid,
		Version:      resp.Version,
		CreatedAt:    resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    resp.UpdatedAt.Format(time.RFC3339),
	}
}
