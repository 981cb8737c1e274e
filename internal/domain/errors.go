package domain

import "errors"

var (
	// ErrInvalidInput is returned for malformed enum values and request fields
	ErrInvalidInput = errors.New("domain: invalid input")

	// ErrInvalidTransition is returned when the lifecycle does not allow the move
	ErrInvalidTransition = errors.New("domain: invalid status transition")

	// ErrInvalidHours is returned when hours are outside MinHours..MaxHours
	ErrInvalidHours = errors.New("domain: invalid hours")

	// ErrCheckInInPast is returned when the check-in time has already passed
	ErrCheckInInPast = errors.New("domain: check-in is in the past")

	// ErrCheckInTooFar is returned when the check-in is more than MaxCheckInAhead away
	ErrCheckInTooFar = errors.New("domain: check-in is too far in the future")
)
