package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the user's permission level
type Role string

const (
	RoleRegular Role = "regular"
	RoleAdmin   Role = "admin"
)

// ParseRole converts a string to a Role, empty means regular
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleRegular:
		return RoleRegular, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

// User is a registered driver or administrator
type User struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	VehicleType  VehicleClass
	PlateNumber  string
	Role         Role

	// Active marks a logged-in session
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsAdmin returns true for administrators
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
