package create_booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// validated нормализованные поля запроса
type validated struct {
	area    domain.Area
	class   domain.VehicleClass
	slotID  string
	checkIn time.Time
	expires time.Time
	total   int64
}

// validateRequest проверяет запрос без обращения к хранилищу.
// now - текущее время в часовом поясе парковки.
func validateRequest(req *Request, now time.Time, hourlyRate int64) (*validated, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	if req.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}

	area, err := domain.ParseArea(req.Area)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	class, err := domain.ParseVehicleClass(req.VehicleClass)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	slotID := strings.TrimSpace(req.SlotID)
	if slotID == "" {
		return nil, ErrSlotNotSelected
	}

	total, err := domain.ComputeFare(req.Hours, hourlyRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHours, err)
	}

	checkIn, err := resolveCheckIn(req, now)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateCheckIn(checkIn, now); err != nil {
		switch {
		case errors.Is(err, domain.ErrCheckInInPast):
			return nil, fmt.Errorf("%w: check-in %s is in the past", ErrInvalidCheckIn, checkIn.Format(time.RFC3339))
		case errors.Is(err, domain.ErrCheckInTooFar):
			return nil, fmt.Errorf("%w: check-in %s is more than 24 hours ahead", ErrInvalidCheckIn, checkIn.Format(time.RFC3339))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCheckIn, err)
	}

	return &validated{
		area:    area,
		class:   class,
		slotID:  slotID,
		checkIn: checkIn,
		expires: domain.ExpirationOf(checkIn, req.Hours),
		total:   total,
	}, nil
}

// resolveCheckIn берет полную метку времени, а если ее нет - "HH:MM" на сегодняшнюю дату
func resolveCheckIn(req *Request, now time.Time) (time.Time, error) {
	if req.CheckIn != nil && !req.CheckIn.IsZero() {
		return req.CheckIn.In(now.Location()).Truncate(time.Minute), nil
	}

	if strings.TrimSpace(req.CheckInTime) == "" {
		return time.Time{}, fmt.Errorf("%w: check-in time is required", ErrInvalidCheckIn)
	}

	checkIn, err := domain.ParseCheckInClock(strings.TrimSpace(req.CheckInTime), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidCheckIn, err)
	}
	return checkIn, nil
}

// validateSlot проверяет, что выбранный слот относится к площадке и классу из запроса
func validateSlot(slot *domain.Slot, v *validated) error {
	if slot.Area != v.area || slot.VehicleClass != v.class {
		return fmt.Errorf("%w: slot %s belongs to %s/%s, requested %s/%s",
			ErrInvalidInput, slot.ID, slot.Area, slot.VehicleClass, v.area, v.class)
	}
	return nil
}
