package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Request модели

// RegisterRequest данные регистрации
type RegisterRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	VehicleType string `json:"vehicleType"`
	PlateNumber string `json:"plateNumber"`
	Role        string `json:"role,omitempty"`
}

// LoginRequest данные входа
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Response модели

// UserResponse данные пользователя без хэша пароля
type UserResponse struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	VehicleType string    `json:"vehicleType"`
	PlateNumber string    `json:"plateNumber"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LoginResponse токен и пользователь
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// Principal аутентифицированный пользователь из токена
type Principal struct {
	UserID uuid.UUID
	Role   domain.Role
}

// IsAdmin true для администратора
func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

// FromDomainUser конвертирует domain модель в DTO
func FromDomainUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		VehicleType: string(u.VehicleType),
		PlateNumber: u.PlateNumber,
		Role:        string(u.Role),
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
	}
}
