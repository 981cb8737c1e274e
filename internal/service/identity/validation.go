package identity

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/service/identity/models"
)

// normalizeEmail приводит email к виду, в котором он хранится и ищется
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateRegister проверяет данные регистрации и строит пользователя без хэша пароля
func validateRegister(req *models.RegisterRequest) (*domain.User, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(firstName) > domain.MaxNameLength || utf8.RuneCountInString(lastName) > domain.MaxNameLength {
		return nil, fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, domain.MaxNameLength)
	}

	email := normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	if utf8.RuneCountInString(req.Password) < domain.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, domain.MinPasswordLength)
	}

	vehicleType, err := domain.ParseVehicleClass(req.VehicleType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	plate := strings.ToUpper(strings.TrimSpace(req.PlateNumber))
	if plate == "" || utf8.RuneCountInString(plate) > domain.MaxPlateNumberLength {
		return nil, fmt.Errorf("%w: plate number is required and at most %d characters", ErrInvalidInput, domain.MaxPlateNumberLength)
	}

	role, err := domain.ParseRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return &domain.User{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		VehicleType: vehicleType,
		PlateNumber: plate,
		Role:        role,
	}, nil
}
