package domain

import "time"

// Booking rules
const (
	DefaultHourlyRate int64 = 50
	DefaultHours            = 3
	MinHours                = 1
	MaxHours                = 8
	MaxCheckInAhead         = 24 * time.Hour
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Validation limits for user-provided fields
const (
	MaxNameLength        = 100
	MaxPlateNumberLength = 20
	MinPasswordLength    = 6
)
